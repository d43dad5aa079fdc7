package warehouse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"google.golang.org/api/iterator"

	"github.com/worldwide-sa/wfsa-api/internal/models"
)

// Reportes lee las tablas de cobertura del sistema origen. Implementa la
// fuente de datos del motor: filas crudas, sin agregación; clasificar y
// agregar es trabajo del motor, no del SQL.
type Reportes struct {
	cliente *Cliente
}

// NewReportes crea la capa de lectura de reportes sobre un cliente abierto.
func NewReportes(cliente *Cliente) *Reportes {
	return &Reportes{cliente: cliente}
}

// filaTurno normaliza los nombres crudos del origen (her, hsr, rutrol, COB)
// a los alias que las consultas exponen.
type filaTurno struct {
	InstalacionRol       string                 `bigquery:"instalacion_rol"`
	ClienteRol           bigquery.NullString    `bigquery:"cliente_rol"`
	Zona                 bigquery.NullString    `bigquery:"zona"`
	Empresa              bigquery.NullString    `bigquery:"empresa"`
	TipoDeServicio       bigquery.NullString    `bigquery:"tipo_de_servicio"`
	Fecha                civil.Date             `bigquery:"fecha"`
	CodigoTurno          bigquery.NullString    `bigquery:"codigo_turno"`
	Cargo                bigquery.NullString    `bigquery:"cargo"`
	HoraEntradaPlan      bigquery.NullString    `bigquery:"hora_entrada_planificada"`
	HoraSalidaPlan       bigquery.NullString    `bigquery:"hora_salida_planificada"`
	RutPlanificado       bigquery.NullString    `bigquery:"rut_planificado"`
	NombrePlanificado    bigquery.NullString    `bigquery:"nombre_planificado"`
	RutAsistente         bigquery.NullString    `bigquery:"rut_asistente"`
	NombreAsistente      bigquery.NullString    `bigquery:"nombre_asistente"`
	HoraEntradaReal      bigquery.NullString    `bigquery:"hora_entrada_real"`
	HoraSalidaReal       bigquery.NullString    `bigquery:"hora_salida_real"`
	Asistencia           bigquery.NullInt64     `bigquery:"asistencia"`
	EstadoCobertura      bigquery.NullString    `bigquery:"estado_cobertura"`
	TurnoExtra           bigquery.NullString    `bigquery:"turno_extra"`
	MotivoIncumplimiento bigquery.NullString    `bigquery:"motivo_incumplimiento"`
	GuardiasRequeridos   int64                  `bigquery:"total_guardias_requeridos"`
	GuardiasPresentes    int64                  `bigquery:"guardias_presentes"`
	UltimaActualizacion  bigquery.NullTimestamp `bigquery:"ultima_actualizacion"`
}

func (f *filaTurno) aModelo() models.RegistroTurno {
	t := models.RegistroTurno{
		InstalacionRol:       f.InstalacionRol,
		ClienteRol:           f.ClienteRol.StringVal,
		Zona:                 f.Zona.StringVal,
		Empresa:              f.Empresa.StringVal,
		TipoDeServicio:       f.TipoDeServicio.StringVal,
		Fecha:                f.Fecha.In(time.UTC),
		CodigoTurno:          f.CodigoTurno.StringVal,
		Cargo:                f.Cargo.StringVal,
		HoraEntradaPlan:      f.HoraEntradaPlan.StringVal,
		HoraSalidaPlan:       f.HoraSalidaPlan.StringVal,
		RutPlanificado:       f.RutPlanificado.StringVal,
		NombrePlanificado:    f.NombrePlanificado.StringVal,
		RutAsistente:         f.RutAsistente.StringVal,
		NombreAsistente:      f.NombreAsistente.StringVal,
		HoraEntradaReal:      f.HoraEntradaReal.StringVal,
		HoraSalidaReal:       f.HoraSalidaReal.StringVal,
		Asistio:              f.Asistencia.Valid && f.Asistencia.Int64 == 1,
		EstadoCobertura:      f.EstadoCobertura.StringVal,
		TurnoExtra:           f.TurnoExtra.StringVal,
		MotivoIncumplimiento: f.MotivoIncumplimiento.StringVal,
		GuardiasRequeridos:   int(f.GuardiasRequeridos),
		GuardiasPresentes:    int(f.GuardiasPresentes),
	}
	if f.UltimaActualizacion.Valid {
		t.UltimaActualizacion = f.UltimaActualizacion.Timestamp
	}
	return t
}

// TurnosActuales trae los turnos activos del ciclo vigente. Un filtro vacío
// trae todas las instalaciones.
func (r *Reportes) TurnosActuales(ctx context.Context, instalaciones []string) ([]models.RegistroTurno, error) {
	sql := fmt.Sprintf(`
		SELECT
		  ci.instalacion_rol,
		  ci.cliente_rol,
		  ci.zona,
		  ci.empresa,
		  ci.tipo_de_servicio,
		  ci.fecha,
		  ci.turno AS codigo_turno,
		  ci.cargo,
		  FORMAT_DATETIME('%%H:%%M', ci.her) AS hora_entrada_planificada,
		  FORMAT_DATETIME('%%H:%%M', ci.hsr) AS hora_salida_planificada,
		  ci.rutrol AS rut_planificado,
		  ci.nomrol AS nombre_planificado,
		  ci.rutasi AS rut_asistente,
		  ci.nomasi AS nombre_asistente,
		  FORMAT_DATETIME('%%H:%%M', ci.entrada) AS hora_entrada_real,
		  FORMAT_DATETIME('%%H:%%M', ci.salida) AS hora_salida_real,
		  ci.asistencia,
		  ci.COB AS estado_cobertura,
		  ci.tvf AS turno_extra,
		  ci.motivoppc AS motivo_incumplimiento,
		  ci.total_guardias_requeridos,
		  ci.guardias_presentes,
		  ci.ultima_actualizacion
		FROM %s ci
		WHERE (ARRAY_LENGTH(@instalaciones) = 0 OR ci.instalacion_rol IN UNNEST(@instalaciones))
		ORDER BY ci.instalacion_rol, ci.turno, ci.her
	`, "`"+r.cliente.cfg.TablaCobertura()+"`")

	return r.leerTurnos(ctx, sql, []bigquery.QueryParameter{
		{Name: "instalaciones", Value: noNil(instalaciones)},
	})
}

// TurnosHistoricos trae la asistencia diaria cerrada del rango [desde, hasta].
// Cada fila es un puesto-día: un requerido y cero o un presente.
func (r *Reportes) TurnosHistoricos(ctx context.Context, desde, hasta time.Time, instalaciones []string) ([]models.RegistroTurno, error) {
	sql := fmt.Sprintf(`
		SELECT
		  ah.instalacion_rol,
		  ah.cliente_rol,
		  ah.dia AS fecha,
		  ah.asistencia,
		  1 AS total_guardias_requeridos,
		  CAST(ah.asistencia AS INT64) AS guardias_presentes,
		  ah.ultima_actualizacion
		FROM %s ah
		WHERE ah.dia BETWEEN @desde AND @hasta
		  AND (ARRAY_LENGTH(@instalaciones) = 0 OR ah.instalacion_rol IN UNNEST(@instalaciones))
		ORDER BY ah.dia, ah.instalacion_rol
	`, "`"+r.cliente.cfg.TablaHistorico()+"`")

	return r.leerTurnos(ctx, sql, []bigquery.QueryParameter{
		{Name: "desde", Value: civil.DateOf(desde)},
		{Name: "hasta", Value: civil.DateOf(hasta)},
		{Name: "instalaciones", Value: noNil(instalaciones)},
	})
}

func (r *Reportes) leerTurnos(ctx context.Context, sql string, params []bigquery.QueryParameter) ([]models.RegistroTurno, error) {
	it, err := r.cliente.consultar(ctx, sql, params)
	if err != nil {
		return nil, err
	}

	var turnos []models.RegistroTurno
	for {
		var fila filaTurno
		err := it.Next(&fila)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, clasificarError(err)
		}
		turnos = append(turnos, fila.aModelo())
	}
	return turnos, nil
}

// EquiposFaceID trae el snapshot de los dispositivos de marcación.
func (r *Reportes) EquiposFaceID(ctx context.Context) ([]models.EquipoFaceID, error) {
	sql := fmt.Sprintf(`
		SELECT
		  f.nombre AS instalacion_rol,
		  f.numero,
		  f.ult_conexion AS ultima_conexion
		FROM %s f
		WHERE f.nombre IS NOT NULL
	`, "`"+r.cliente.cfg.TablaFaceID()+"`")

	it, err := r.cliente.consultar(ctx, sql, nil)
	if err != nil {
		return nil, err
	}

	type filaEquipo struct {
		InstalacionRol string                 `bigquery:"instalacion_rol"`
		Numero         bigquery.NullString    `bigquery:"numero"`
		UltimaConexion bigquery.NullTimestamp `bigquery:"ultima_conexion"`
	}

	var equipos []models.EquipoFaceID
	for {
		var fila filaEquipo
		err := it.Next(&fila)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, clasificarError(err)
		}
		equipo := models.EquipoFaceID{
			InstalacionRol: fila.InstalacionRol,
			Numero:         fila.Numero.StringVal,
		}
		if fila.UltimaConexion.Valid {
			equipo.UltimaConexion = fila.UltimaConexion.Timestamp
		}
		equipos = append(equipos, equipo)
	}
	return equipos, nil
}

// PuestosPorCubrir trae los puestos sin guardia asignado del día.
func (r *Reportes) PuestosPorCubrir(ctx context.Context, instalaciones []string) ([]models.PuestoPorCubrir, error) {
	sql := fmt.Sprintf(`
		SELECT
		  ppc.instalacion_rol,
		  ppc.turno,
		  ppc.jornada,
		  FORMAT_DATETIME('%%H:%%M', ppc.her) AS hora_entrada,
		  FORMAT_DATETIME('%%H:%%M', ppc.hsr) AS hora_salida
		FROM %s ppc
		WHERE (ARRAY_LENGTH(@instalaciones) = 0 OR ppc.instalacion_rol IN UNNEST(@instalaciones))
		ORDER BY ppc.instalacion_rol, ppc.her, ppc.hsr
	`, "`"+r.cliente.cfg.TablaPPC()+"`")

	it, err := r.cliente.consultar(ctx, sql, []bigquery.QueryParameter{
		{Name: "instalaciones", Value: noNil(instalaciones)},
	})
	if err != nil {
		return nil, err
	}

	type filaPPC struct {
		InstalacionRol string              `bigquery:"instalacion_rol"`
		Turno          bigquery.NullString `bigquery:"turno"`
		Jornada        bigquery.NullString `bigquery:"jornada"`
		HoraEntrada    bigquery.NullString `bigquery:"hora_entrada"`
		HoraSalida     bigquery.NullString `bigquery:"hora_salida"`
	}

	var puestos []models.PuestoPorCubrir
	for {
		var fila filaPPC
		err := it.Next(&fila)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, clasificarError(err)
		}
		puestos = append(puestos, models.PuestoPorCubrir{
			InstalacionRol: fila.InstalacionRol,
			Turno:          fila.Turno.StringVal,
			Jornada:        fila.Jornada.StringVal,
			HoraEntrada:    fila.HoraEntrada.StringVal,
			HoraSalida:     fila.HoraSalida.StringVal,
		})
	}
	return puestos, nil
}

// noNil garantiza un array vacío en vez de NULL para los parámetros ARRAY.
func noNil(valores []string) []string {
	if valores == nil {
		return []string{}
	}
	return valores
}
