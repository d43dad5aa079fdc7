package models

import "time"

// Estados de un mensaje WhatsApp registrado.
const (
	MensajePendiente = "pendiente"
	MensajeEnviado   = "enviado"
)

// Contacto es un contacto de WhatsApp asignado a una instalación.
type Contacto struct {
	ContactoID string `json:"contacto_id"`
	Nombre     string `json:"nombre"`
	Telefono   string `json:"telefono"`
	Cargo      string `json:"cargo,omitempty"`
	Email      string `json:"email,omitempty"`
}

// MensajeWhatsapp es un mensaje registrado para despacho a un contacto.
type MensajeWhatsapp struct {
	MensajeID      string    `json:"mensaje_id"`
	EmailUsuario   string    `json:"email_usuario"`
	ClienteRol     string    `json:"cliente_rol"`
	InstalacionRol string    `json:"instalacion_rol"`
	ContactoID     string    `json:"contacto_id"`
	Mensaje        string    `json:"mensaje"`
	Estado         string    `json:"estado"`
	FechaEnvio     time.Time `json:"fecha_envio"`
}

// MensajeRegistrado es el acuse de un mensaje encolado para despacho.
type MensajeRegistrado struct {
	MensajeID      string `json:"mensaje_id"`
	ContactoID     string `json:"contacto_id"`
	InstalacionRol string `json:"instalacion"`
	Estado         string `json:"estado"`
}

// MensajeRecibido es la vista de un mensaje desde el lado del destinatario.
type MensajeRecibido struct {
	MensajeID            string     `json:"mensaje_id"`
	RemitenteEmail       string     `json:"remitente_email"`
	RemitenteNombre      string     `json:"remitente_nombre"`
	RemitenteCliente     string     `json:"remitente_cliente"`
	InstalacionRol       string     `json:"instalacion_rol"`
	InstalacionDireccion string     `json:"instalacion_direccion,omitempty"`
	InstalacionComuna    string     `json:"instalacion_comuna,omitempty"`
	Mensaje              string     `json:"mensaje"`
	Estado               string     `json:"estado"`
	FechaEnvio           time.Time  `json:"fecha_envio"`
	FechaLectura         *time.Time `json:"fecha_lectura,omitempty"`
	Leido                bool       `json:"leido"`
}

// UsuarioMensajeria es un usuario visible para el módulo de chat.
type UsuarioMensajeria struct {
	EmailLogin     string `json:"email_login"`
	FirebaseUID    string `json:"firebase_uid,omitempty"`
	NombreCompleto string `json:"nombre_completo"`
	RolID          string `json:"rol_id"`
	ClienteRol     string `json:"cliente_rol,omitempty"`
}
