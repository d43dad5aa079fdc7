package models

import "time"

// Estados de una solicitud de encuesta.
const (
	EncuestaPendiente  = "pendiente"
	EncuestaCompletada = "completada"
)

// Modos de respuesta de una encuesta.
const (
	EncuestaCompartida = "compartida"
	EncuestaIndividual = "individual"
)

// EncuestaSolicitud es una encuesta de satisfacción emitida para una
// instalación en un período bimestral (AAAAMM, solo meses pares).
type EncuestaSolicitud struct {
	EncuestaID         string     `json:"encuesta_id"`
	Periodo            string     `json:"periodo"`
	ClienteRol         string     `json:"cliente_rol"`
	InstalacionRol     string     `json:"instalacion_rol"`
	Modo               string     `json:"modo"`
	EmailDestinatario  string     `json:"email_destinatario,omitempty"`
	Estado             string     `json:"estado"`
	FechaCreacion      time.Time  `json:"fecha_creacion"`
	FechaLimite        time.Time  `json:"fecha_limite"`
	RespondidoPorEmail string     `json:"respondido_por_email,omitempty"`
	RespondidoPorNombre string    `json:"respondido_por_nombre,omitempty"`
	TipoRespuesta      string     `json:"tipo_respuesta,omitempty"`
	FechaRespuesta     *time.Time `json:"fecha_respuesta,omitempty"`
}

// EncuestaPregunta es una pregunta activa del cuestionario vigente.
type EncuestaPregunta struct {
	PreguntaID         string `json:"pregunta_id"`
	Orden              int    `json:"orden"`
	TextoPregunta      string `json:"texto_pregunta"`
	TipoRespuesta      string `json:"tipo_respuesta"`
	RequiereComentario bool   `json:"requiere_comentario"`
	Obligatoria        bool   `json:"obligatoria"`
	Categoria          string `json:"categoria,omitempty"`
}

// EncuestaRespuesta es la respuesta guardada a una pregunta.
type EncuestaRespuesta struct {
	RespuestaID    string    `json:"respuesta_id"`
	EncuestaID     string    `json:"encuesta_id"`
	PreguntaID     string    `json:"pregunta_id"`
	RespuestaValor string    `json:"respuesta_valor"`
	Comentario     string    `json:"comentario,omitempty"`
	FechaRespuesta time.Time `json:"fecha_respuesta"`

	// Campos de la pregunta, presentes al listar respuestas.
	TextoPregunta string `json:"texto_pregunta,omitempty"`
	TipoRespuesta string `json:"tipo_respuesta,omitempty"`
	Orden         int    `json:"orden,omitempty"`
}

// EncuestaVista es la solicitud anotada con lo que el usuario actual puede
// hacer con ella.
type EncuestaVista struct {
	EncuestaSolicitud
	PuedeResponder     bool `json:"puede_responder"`
	PuedeVerRespuestas bool `json:"puede_ver_respuestas"`
}

// ResumenEncuestasInstalacion agrupa las encuestas de una instalación.
type ResumenEncuestasInstalacion struct {
	ClienteRol              string          `json:"cliente_rol"`
	InstalacionRol          string          `json:"instalacion_rol"`
	TotalEncuestas          int             `json:"total_encuestas"`
	Respondidas             int             `json:"respondidas"`
	Pendientes              int             `json:"pendientes"`
	FechaVencimientoProxima *time.Time      `json:"fecha_vencimiento_proxima,omitempty"`
	Encuestas               []EncuestaVista `json:"encuestas"`
}
