package coverage

import (
	"fmt"
	"sort"
	"time"

	"github.com/worldwide-sa/wfsa-api/internal/models"
)

// AgregadorHistorico particiona registros de asistencia por semana ISO y les
// aplica la misma fórmula de cobertura que el clasificador instantáneo.
type AgregadorHistorico struct {
	clasificador *Clasificador
}

// NewAgregadorHistorico crea un agregador sobre un clasificador ya configurado.
func NewAgregadorHistorico(clasificador *Clasificador) *AgregadorHistorico {
	return &AgregadorHistorico{clasificador: clasificador}
}

// InicioSemanaISO retorna el lunes (00:00, misma zona horaria) de la semana
// ISO a la que pertenece la fecha.
func InicioSemanaISO(fecha time.Time) time.Time {
	dia := time.Date(fecha.Year(), fecha.Month(), fecha.Day(), 0, 0, 0, 0, fecha.Location())
	desplazamiento := int(dia.Weekday())
	if desplazamiento == 0 {
		desplazamiento = 7 // domingo cierra la semana ISO
	}
	return dia.AddDate(0, 0, -(desplazamiento - 1))
}

type claveSemana struct {
	ano    int
	semana int
	inst   string
}

type bucketSemana struct {
	inicio     time.Time
	fin        time.Time
	requeridos int
	presentes  int
	registros  int
}

// Semanas agrega los registros del ámbito en buckets semanales generales,
// ordenados de la más antigua a la más reciente. La semana que contiene
// `ahora` se marca EnCurso.
func (a *AgregadorHistorico) Semanas(
	turnos []models.RegistroTurno,
	ambito *models.AmbitoAcceso,
	ahora time.Time,
) []models.SemanaHistorica {
	return a.agregar(turnos, ambito, ahora, false)
}

// SemanasPorInstalacion agrega en buckets semanales por instalación,
// ordenados por semana ascendente y luego por instalación.
func (a *AgregadorHistorico) SemanasPorInstalacion(
	turnos []models.RegistroTurno,
	ambito *models.AmbitoAcceso,
	ahora time.Time,
) []models.SemanaHistorica {
	return a.agregar(turnos, ambito, ahora, true)
}

func (a *AgregadorHistorico) agregar(
	turnos []models.RegistroTurno,
	ambito *models.AmbitoAcceso,
	ahora time.Time,
	porInstalacion bool,
) []models.SemanaHistorica {
	buckets := make(map[claveSemana]*bucketSemana)

	for _, t := range turnos {
		if !ambito.PuedeVer(t.InstalacionRol) {
			continue
		}

		ano, semana := t.Fecha.ISOWeek()
		clave := claveSemana{ano: ano, semana: semana}
		if porInstalacion {
			clave.inst = t.InstalacionRol
		}

		b, ok := buckets[clave]
		if !ok {
			inicio := InicioSemanaISO(t.Fecha)
			b = &bucketSemana{inicio: inicio, fin: inicio.AddDate(0, 0, 6)}
			buckets[clave] = b
		}
		b.requeridos += t.GuardiasRequeridos
		b.presentes += t.GuardiasPresentes
		b.registros++
	}

	anoActual, semanaActual := ahora.ISOWeek()

	semanas := make([]models.SemanaHistorica, 0, len(buckets))
	for clave, b := range buckets {
		porcentaje := a.clasificador.Porcentaje(b.presentes, b.requeridos)

		instalacion := clave.inst
		if !porInstalacion {
			instalacion = models.InstalacionGeneral
		}

		semanas = append(semanas, models.SemanaHistorica{
			InstalacionRol:      instalacion,
			Ano:                 clave.ano,
			SemanaISO:           clave.semana,
			Periodo:             fmt.Sprintf("Semana %d - %d", clave.semana, clave.ano),
			FechaInicio:         b.inicio,
			FechaFin:            b.fin,
			GuardiasRequeridos:  b.requeridos,
			GuardiasPresentes:   b.presentes,
			PorcentajeCobertura: porcentaje,
			EstadoSemaforo:      a.clasificador.Estado(porcentaje),
			TotalRegistros:      b.registros,
			EnCurso:             clave.ano == anoActual && clave.semana == semanaActual,
		})
	}

	// Orden determinista independiente del orden de fetch.
	sort.Slice(semanas, func(i, j int) bool {
		if semanas[i].Ano != semanas[j].Ano {
			return semanas[i].Ano < semanas[j].Ano
		}
		if semanas[i].SemanaISO != semanas[j].SemanaISO {
			return semanas[i].SemanaISO < semanas[j].SemanaISO
		}
		return semanas[i].InstalacionRol < semanas[j].InstalacionRol
	})

	return semanas
}
