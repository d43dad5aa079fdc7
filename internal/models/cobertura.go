package models

import "time"

// InstalacionGeneral identifica la métrica agregada de todas las instalaciones
// visibles para un usuario, en contraste con una instalación puntual.
const InstalacionGeneral = "general"

// EstadoSemaforo clasifica un porcentaje de cobertura. GRIS no es un nivel de
// cobertura sino ausencia de dato: no hay turnos activos que clasificar.
type EstadoSemaforo string

const (
	SemaforoVerde    EstadoSemaforo = "VERDE"
	SemaforoAmarillo EstadoSemaforo = "AMARILLO"
	SemaforoRojo     EstadoSemaforo = "ROJO"
	SemaforoGris     EstadoSemaforo = "GRIS"
)

// RegistroTurno es una fila cruda de asistencia producida por el warehouse.
// El motor nunca la modifica; solo la agrega y clasifica.
type RegistroTurno struct {
	InstalacionRol string    `json:"instalacion_rol"`
	ClienteRol     string    `json:"cliente_rol"`
	Zona           string    `json:"zona,omitempty"`
	Empresa        string    `json:"empresa,omitempty"`
	TipoDeServicio string    `json:"tipo_de_servicio,omitempty"`
	Fecha          time.Time `json:"fecha"`

	CodigoTurno          string `json:"codigo_turno"`
	Cargo                string `json:"cargo,omitempty"`
	HoraEntradaPlan      string `json:"hora_entrada_planificada,omitempty"`
	HoraSalidaPlan       string `json:"hora_salida_planificada,omitempty"`
	RutPlanificado       string `json:"rut_planificado,omitempty"`
	NombrePlanificado    string `json:"nombre_planificado,omitempty"`
	RutAsistente         string `json:"rut_asistente,omitempty"`
	NombreAsistente      string `json:"nombre_asistente,omitempty"`
	HoraEntradaReal      string `json:"hora_entrada_real,omitempty"`
	HoraSalidaReal       string `json:"hora_salida_real,omitempty"`
	Asistio              bool   `json:"asistio"`
	EstadoCobertura      string `json:"estado_cobertura,omitempty"`
	TurnoExtra           string `json:"turno_extra,omitempty"`
	MotivoIncumplimiento string `json:"motivo_incumplimiento,omitempty"`

	GuardiasRequeridos int `json:"total_guardias_requeridos"`
	GuardiasPresentes  int `json:"guardias_presentes"`

	// Marca de frescura que el warehouse actualiza en cada ciclo de refresco.
	UltimaActualizacion time.Time `json:"ultima_actualizacion"`
}

// EquipoFaceID es el snapshot del dispositivo de marcación de una instalación.
type EquipoFaceID struct {
	InstalacionRol string    `json:"instalacion_rol"`
	Numero         string    `json:"numero"`
	UltimaConexion time.Time `json:"ultima_conexion"`
}

// PuestoPorCubrir (PPC) es un puesto requerido sin guardia asignado para el día.
type PuestoPorCubrir struct {
	InstalacionRol string `json:"instalacion_rol"`
	Turno          string `json:"turno"`
	Jornada        string `json:"jornada,omitempty"`
	HoraEntrada    string `json:"hora_entrada"`
	HoraSalida     string `json:"hora_salida"`
}

// MetricaCobertura es el resultado clasificado para una instalación o para el
// agregado general. Inmutable: un nuevo cálculo la reemplaza, nunca la muta.
type MetricaCobertura struct {
	InstalacionRol string `json:"instalacion_rol"`
	Zona           string `json:"zona,omitempty"`
	ClienteRol     string `json:"cliente_rol,omitempty"`
	Empresa        string `json:"empresa,omitempty"`

	GuardiasRequeridos int `json:"total_guardias_requeridos"`
	GuardiasPresentes  int `json:"guardias_presentes"`
	GuardiasAusentes   int `json:"guardias_ausentes"`
	PPC                int `json:"ppc"`

	PorcentajeCobertura float64        `json:"porcentaje_cobertura"`
	EstadoSemaforo      EstadoSemaforo `json:"estado_semaforo"`

	TieneFaceID          bool       `json:"tiene_faceid"`
	FaceIDNumero         string     `json:"faceid_numero,omitempty"`
	FaceIDUltimaConexion *time.Time `json:"faceid_ultima_conexion,omitempty"`

	CalculadoEn time.Time `json:"calculado_en"`
	// Frescura es la marca de actualización de los datos de origen con que se
	// calculó la métrica, no el momento del cálculo.
	Frescura time.Time `json:"ultima_actualizacion"`
}

// SemanaHistorica es un bucket de cobertura agregada por semana ISO.
type SemanaHistorica struct {
	InstalacionRol string `json:"instalacion_rol"`
	Ano            int    `json:"ano"`
	SemanaISO      int    `json:"isoweek"`
	Periodo        string `json:"periodo"`

	FechaInicio time.Time `json:"fecha_inicio"`
	FechaFin    time.Time `json:"fecha_fin"`

	GuardiasRequeridos  int            `json:"total_guardias_requeridos"`
	GuardiasPresentes   int            `json:"guardias_presentes"`
	PorcentajeCobertura float64        `json:"porcentaje_cobertura"`
	EstadoSemaforo      EstadoSemaforo `json:"estado_semaforo"`
	TotalRegistros      int            `json:"total_registros"`

	// EnCurso indica que la semana aún no cierra: se recalcula en cada
	// llamada y nunca se cachea como definitiva.
	EnCurso bool `json:"en_curso"`
}

// ResumenGeneral es la cobertura agregada de todas las instalaciones visibles,
// con la ventana de refresco del origen expuesta al cliente.
type ResumenGeneral struct {
	TotalTurnosActivos  int            `json:"total_turnos_activos"`
	TurnosCubiertos     int            `json:"turnos_cubiertos"`
	TurnosDescubiertos  int            `json:"turnos_descubiertos"`
	PorcentajeCobertura float64        `json:"porcentaje_cobertura_general"`
	EstadoSemaforo      EstadoSemaforo `json:"estado_semaforo"`
	TotalPPC            int            `json:"total_ppc"`
	Empresas            []string       `json:"empresas"`

	UltimaActualizacion  *time.Time `json:"ultima_actualizacion,omitempty"`
	ProximaActualizacion *time.Time `json:"proxima_actualizacion,omitempty"`
}

// ResumenPPC agrupa los puestos por cubrir de una instalación.
type ResumenPPC struct {
	Instalacion string     `json:"instalacion"`
	TotalPPC    int        `json:"total_ppc"`
	PPCPorTurno []GrupoPPC `json:"ppc_por_turno"`
}

// TurnoDetalle es la vista de un turno individual para el detalle por instalación.
type TurnoDetalle struct {
	CodigoTurno          string `json:"codigo_turno"`
	Cargo                string `json:"cargo,omitempty"`
	TipoDeServicio       string `json:"tipo_de_servicio"`
	HoraEntradaPlan      string `json:"hora_entrada_planificada,omitempty"`
	HoraSalidaPlan       string `json:"hora_salida_planificada,omitempty"`
	RutPlanificado       string `json:"rut_planificado,omitempty"`
	NombrePlanificado    string `json:"nombre_planificado,omitempty"`
	RutAsistente         string `json:"rut_asistente,omitempty"`
	NombreAsistente      string `json:"nombre_asistente,omitempty"`
	HoraEntradaReal      string `json:"hora_entrada_real,omitempty"`
	HoraSalidaReal       string `json:"hora_salida_real,omitempty"`
	Asistio              bool   `json:"asistio"`
	EstadoCobertura      string `json:"estado_cobertura,omitempty"`
	TurnoExtra           string `json:"turno_extra,omitempty"`
	MotivoIncumplimiento string `json:"motivo_incumplimiento,omitempty"`
	Puntualidad          string `json:"puntualidad,omitempty"`
}

// GrupoPPC agrupa los PPC de una instalación por horario de turno.
type GrupoPPC struct {
	Turno       string `json:"turno"`
	Jornada     string `json:"jornada,omitempty"`
	HoraEntrada string `json:"hora_entrada"`
	HoraSalida  string `json:"hora_salida"`
	Horario     string `json:"horario"`
	CantidadPPC int    `json:"cantidad_ppc"`
}

// DetalleInstalacion es el detalle completo de turnos y PPC de una instalación.
type DetalleInstalacion struct {
	Instalacion string         `json:"instalacion"`
	Empresa     string         `json:"empresa,omitempty"`
	Turnos      []TurnoDetalle `json:"turnos"`
	TotalTurnos int            `json:"total_turnos"`
	TotalPPC    int            `json:"total_ppc"`
	PPCPorTurno []GrupoPPC     `json:"ppc_por_turno"`
}
