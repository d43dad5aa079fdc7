// Package auth verifica los ID tokens de Firebase con que la app móvil se
// autentica contra esta API.
package auth

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/worldwide-sa/wfsa-api/internal/config"
)

// ErrTokenInvalido indica un token ausente, malformado, expirado o revocado.
var ErrTokenInvalido = errors.New("token inválido")

// Identidad es el resultado de verificar un token: la identidad federada,
// todavía sin permisos (esos viven en el warehouse).
type Identidad struct {
	UID             string
	Email           string
	EmailVerificado bool
}

// VerificadorToken valida un ID token y extrae la identidad. Se define como
// interfaz para que los tests del middleware inyecten un verificador falso.
type VerificadorToken interface {
	Verificar(ctx context.Context, idToken string) (*Identidad, error)
}

// VerificadorFirebase valida tokens contra Firebase Auth.
type VerificadorFirebase struct {
	cliente *fbauth.Client
}

// NewVerificadorFirebase inicializa el SDK de Firebase Admin con las mismas
// credenciales de servicio que BigQuery.
func NewVerificadorFirebase(ctx context.Context, cfg *config.Config) (*VerificadorFirebase, error) {
	var opts []option.ClientOption
	if cfg.CredencialesGCP != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredencialesGCP))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("inicializando Firebase: %w", err)
	}

	cliente, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("inicializando Firebase Auth: %w", err)
	}

	return &VerificadorFirebase{cliente: cliente}, nil
}

// Verificar valida el token y retorna la identidad contenida.
func (v *VerificadorFirebase) Verificar(ctx context.Context, idToken string) (*Identidad, error) {
	if idToken == "" {
		return nil, ErrTokenInvalido
	}

	token, err := v.cliente.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalido, err)
	}

	identidad := &Identidad{UID: token.UID}
	if email, ok := token.Claims["email"].(string); ok {
		identidad.Email = email
	}
	if verificado, ok := token.Claims["email_verified"].(bool); ok {
		identidad.EmailVerificado = verificado
	}
	if identidad.Email == "" {
		return nil, fmt.Errorf("%w: el token no trae email", ErrTokenInvalido)
	}
	return identidad, nil
}
