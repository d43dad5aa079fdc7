package models

// Cuerpos de request de la API.

// FCMTokenRequest actualiza el token de notificaciones push del usuario.
type FCMTokenRequest struct {
	FCMToken string `json:"fcm_token" binding:"required"`
}

// EnviarMensajeRequest registra un mensaje para los contactos de las
// instalaciones seleccionadas.
type EnviarMensajeRequest struct {
	Instalaciones []string `json:"instalaciones" binding:"required,min=1"`
	Mensaje       string   `json:"mensaje" binding:"required"`
}

// RespuestaPregunta es una respuesta individual dentro del envío de encuesta.
type RespuestaPregunta struct {
	PreguntaID     string `json:"pregunta_id" binding:"required"`
	RespuestaValor string `json:"respuesta_valor" binding:"required"`
	Comentario     string `json:"comentario"`
}

// RespuestaEncuestaRequest es el envío completo de una encuesta.
type RespuestaEncuestaRequest struct {
	Respuestas []RespuestaPregunta `json:"respuestas" binding:"required,min=1,dive"`
}
