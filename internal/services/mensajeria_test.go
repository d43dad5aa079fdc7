package services

import (
	"context"
	"errors"
	"testing"

	"github.com/worldwide-sa/wfsa-api/internal/models"
)

type gestionMensajeriaFake struct {
	contactables map[string][]models.Contacto
	registrados  []models.MensajeWhatsapp
}

func (g *gestionMensajeriaFake) ContactosInstalacion(context.Context, string, string) ([]models.Contacto, error) {
	return nil, nil
}

func (g *gestionMensajeriaFake) ContactosContactables(_ context.Context, _, instalacionRol string) ([]models.Contacto, error) {
	return g.contactables[instalacionRol], nil
}

func (g *gestionMensajeriaFake) RegistrarMensaje(_ context.Context, m models.MensajeWhatsapp) error {
	g.registrados = append(g.registrados, m)
	return nil
}

func (g *gestionMensajeriaFake) MensajesRecibidos(context.Context, string, int) ([]models.MensajeRecibido, error) {
	return []models.MensajeRecibido{{Mensaje: "hola"}}, nil
}

func (g *gestionMensajeriaFake) ContactosDeUsuario(_ context.Context, email string) ([]models.UsuarioMensajeria, error) {
	return []models.UsuarioMensajeria{{EmailLogin: email}}, nil
}

func (g *gestionMensajeriaFake) UsuariosWFSAInstalacion(context.Context, string) ([]models.UsuarioMensajeria, error) {
	return nil, nil
}

func TestEnviarMensajeRegistraPorContacto(t *testing.T) {
	gestion := &gestionMensajeriaFake{contactables: map[string][]models.Contacto{
		"Torre Centro": {{ContactoID: "c1"}, {ContactoID: "c2"}},
		"Bodega Norte": {{ContactoID: "c3"}},
	}}
	svc := NewMensajeria(gestion, nil)
	usuario := &models.Usuario{Email: "cliente@acme.cl", ClienteRol: "ACME"}

	registrados, err := svc.EnviarMensaje(context.Background(), usuario, &models.EnviarMensajeRequest{
		Instalaciones: []string{"Torre Centro", "Bodega Norte"},
		Mensaje:       "corte de luz programado",
	})
	if err != nil {
		t.Fatalf("EnviarMensaje() error = %v", err)
	}
	if len(registrados) != 3 {
		t.Fatalf("registrados = %d, esperados 3", len(registrados))
	}

	vistos := map[string]bool{}
	for _, m := range gestion.registrados {
		if m.MensajeID == "" {
			t.Error("mensaje sin identificador")
		}
		if m.Estado != models.MensajePendiente {
			t.Errorf("estado = %q, esperado pendiente", m.Estado)
		}
		if m.Mensaje != "corte de luz programado" {
			t.Errorf("mensaje = %q", m.Mensaje)
		}
		vistos[m.ContactoID] = true
	}
	for _, id := range []string{"c1", "c2", "c3"} {
		if !vistos[id] {
			t.Errorf("falta mensaje para el contacto %s", id)
		}
	}
}

func TestMensajesRecibidosRequierePermiso(t *testing.T) {
	svc := NewMensajeria(&gestionMensajeriaFake{}, nil)

	sinPermiso := &models.Usuario{Email: "cliente@acme.cl"}
	if _, err := svc.MensajesRecibidos(context.Background(), sinPermiso); !errors.Is(err, ErrSinPermiso) {
		t.Errorf("error = %v, esperado ErrSinPermiso", err)
	}

	conPermiso := &models.Usuario{
		Email:    "sub@wfsa.cl",
		Permisos: models.Permisos{PuedeVerMensajesRecibidos: true},
	}
	mensajes, err := svc.MensajesRecibidos(context.Background(), conPermiso)
	if err != nil {
		t.Fatalf("MensajesRecibidos() error = %v", err)
	}
	if len(mensajes) != 1 {
		t.Errorf("mensajes = %d, esperado 1", len(mensajes))
	}
}

func TestContactosDeUsuarioSoloPropiosOAdmin(t *testing.T) {
	svc := NewMensajeria(&gestionMensajeriaFake{}, nil)

	cliente := &models.Usuario{Email: "cliente@acme.cl"}
	if _, err := svc.ContactosDeUsuario(context.Background(), cliente, "otro@acme.cl"); !errors.Is(err, ErrSinPermiso) {
		t.Errorf("error = %v, esperado ErrSinPermiso", err)
	}
	if _, err := svc.ContactosDeUsuario(context.Background(), cliente, "cliente@acme.cl"); err != nil {
		t.Errorf("consultar los propios contactos falló: %v", err)
	}

	admin := &models.Usuario{Email: "admin@wfsa.cl", Permisos: models.Permisos{EsAdmin: true}}
	if _, err := svc.ContactosDeUsuario(context.Background(), admin, "otro@acme.cl"); err != nil {
		t.Errorf("un admin debería poder consultar contactos ajenos: %v", err)
	}
}
