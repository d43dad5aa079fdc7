// Package services contiene la lógica de negocio que no es cobertura: ciclo
// de vida de usuarios, encuestas bimestrales y mensajería con contactos.
package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/worldwide-sa/wfsa-api/internal/auth"
	"github.com/worldwide-sa/wfsa-api/internal/models"
	"github.com/worldwide-sa/wfsa-api/internal/warehouse"
)

// almacenUsuarios es lo que este servicio necesita del warehouse.
// *warehouse.Gestion lo satisface; los tests inyectan un almacén falso.
type almacenUsuarios interface {
	UsuarioPorEmail(ctx context.Context, email string) (*models.Usuario, error)
	ActualizarFirebaseUID(ctx context.Context, email, uid string) error
	ActualizarTokenFCM(ctx context.Context, email, token string) error
}

// Usuarios resuelve identidades verificadas contra el padrón de la app.
type Usuarios struct {
	gestion almacenUsuarios
	log     *zap.Logger
}

// NewUsuarios crea el servicio de usuarios.
func NewUsuarios(gestion almacenUsuarios, log *zap.Logger) *Usuarios {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usuarios{gestion: gestion, log: log}
}

// ResolverIdentidad carga el usuario y sus permisos a partir de una identidad
// Firebase ya verificada. Un usuario inactivo nunca se resuelve.
func (s *Usuarios) ResolverIdentidad(ctx context.Context, identidad *auth.Identidad) (*models.Usuario, error) {
	usuario, err := s.gestion.UsuarioPorEmail(ctx, identidad.Email)
	if err != nil {
		if errors.Is(err, warehouse.ErrNoEncontrado) {
			return nil, fmt.Errorf("%w: %s", ErrUsuarioNoEncontrado, identidad.Email)
		}
		return nil, err
	}
	if !usuario.Activo {
		return nil, fmt.Errorf("%w: %s", ErrUsuarioInactivo, identidad.Email)
	}

	// El UID de Firebase puede cambiar si el usuario se recreó en la consola.
	// La sincronización es best effort: no bloquea el request.
	if err := s.gestion.ActualizarFirebaseUID(ctx, identidad.Email, identidad.UID); err != nil {
		s.log.Warn("no se pudo sincronizar el firebase_uid",
			zap.String("email", identidad.Email),
			zap.Error(err),
		)
	}

	return usuario, nil
}

// ActualizarTokenFCM registra el token de notificaciones push del dispositivo.
func (s *Usuarios) ActualizarTokenFCM(ctx context.Context, email, token string) error {
	if err := s.gestion.ActualizarTokenFCM(ctx, email, token); err != nil {
		return err
	}
	s.log.Info("token FCM actualizado", zap.String("email", email))
	return nil
}
