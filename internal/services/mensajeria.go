package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/worldwide-sa/wfsa-api/internal/models"
)

// almacenMensajeria es lo que este servicio necesita del warehouse.
// *warehouse.Gestion lo satisface; los tests inyectan un almacén falso.
type almacenMensajeria interface {
	ContactosInstalacion(ctx context.Context, email, instalacionRol string) ([]models.Contacto, error)
	ContactosContactables(ctx context.Context, email, instalacionRol string) ([]models.Contacto, error)
	RegistrarMensaje(ctx context.Context, m models.MensajeWhatsapp) error
	MensajesRecibidos(ctx context.Context, email string, limite int) ([]models.MensajeRecibido, error)
	ContactosDeUsuario(ctx context.Context, email string) ([]models.UsuarioMensajeria, error)
	UsuariosWFSAInstalacion(ctx context.Context, instalacionRol string) ([]models.UsuarioMensajeria, error)
}

// Mensajeria gestiona los contactos de instalación y el registro de mensajes
// WhatsApp. El despacho real corre por un proceso externo que consume la
// tabla de mensajes.
type Mensajeria struct {
	gestion almacenMensajeria
	log     *zap.Logger
}

// NewMensajeria crea el servicio de mensajería.
func NewMensajeria(gestion almacenMensajeria, log *zap.Logger) *Mensajeria {
	if log == nil {
		log = zap.NewNop()
	}
	return &Mensajeria{gestion: gestion, log: log}
}

// ContactosInstalacion retorna los contactos activos de una instalación
// visible para el usuario.
func (s *Mensajeria) ContactosInstalacion(ctx context.Context, usuario *models.Usuario, instalacionRol string) ([]models.Contacto, error) {
	return s.gestion.ContactosInstalacion(ctx, usuario.Email, instalacionRol)
}

// EnviarMensaje registra el mensaje para cada contacto contactable de las
// instalaciones seleccionadas. Los mensajes quedan en estado pendiente.
func (s *Mensajeria) EnviarMensaje(ctx context.Context, usuario *models.Usuario, req *models.EnviarMensajeRequest) ([]models.MensajeRegistrado, error) {
	var registrados []models.MensajeRegistrado

	for _, instalacionRol := range req.Instalaciones {
		contactos, err := s.gestion.ContactosContactables(ctx, usuario.Email, instalacionRol)
		if err != nil {
			return nil, err
		}

		for _, contacto := range contactos {
			mensaje := models.MensajeWhatsapp{
				MensajeID:      uuid.New().String(),
				EmailUsuario:   usuario.Email,
				ClienteRol:     usuario.ClienteRol,
				InstalacionRol: instalacionRol,
				ContactoID:     contacto.ContactoID,
				Mensaje:        req.Mensaje,
				Estado:         models.MensajePendiente,
			}
			if err := s.gestion.RegistrarMensaje(ctx, mensaje); err != nil {
				return nil, err
			}
			registrados = append(registrados, models.MensajeRegistrado{
				MensajeID:      mensaje.MensajeID,
				ContactoID:     contacto.ContactoID,
				InstalacionRol: instalacionRol,
				Estado:         mensaje.Estado,
			})
		}
	}

	s.log.Info("mensajes registrados",
		zap.String("email", usuario.Email),
		zap.Int("total", len(registrados)),
	)
	return registrados, nil
}

// MensajesRecibidos retorna los últimos mensajes dirigidos al usuario.
func (s *Mensajeria) MensajesRecibidos(ctx context.Context, usuario *models.Usuario) ([]models.MensajeRecibido, error) {
	if !usuario.Permisos.PuedeVerMensajesRecibidos {
		return nil, ErrSinPermiso
	}
	return s.gestion.MensajesRecibidos(ctx, usuario.Email, 100)
}

// ContactosDeUsuario retorna los clientes que comparten instalaciones con el
// email consultado. Solo un admin puede consultar contactos ajenos.
func (s *Mensajeria) ContactosDeUsuario(ctx context.Context, usuario *models.Usuario, emailConsultado string) ([]models.UsuarioMensajeria, error) {
	if emailConsultado != usuario.Email && !usuario.Permisos.EsAdmin {
		return nil, ErrSinPermiso
	}
	return s.gestion.ContactosDeUsuario(ctx, emailConsultado)
}

// UsuariosWFSAInstalacion retorna los usuarios de la operación asignados a
// una instalación, para iniciar conversaciones desde la app.
func (s *Mensajeria) UsuariosWFSAInstalacion(ctx context.Context, instalacionRol string) ([]models.UsuarioMensajeria, error) {
	return s.gestion.UsuariosWFSAInstalacion(ctx, instalacionRol)
}
