package coverage

import (
	"math"
	"sort"
	"time"

	"github.com/worldwide-sa/wfsa-api/internal/models"
)

// Clasificador convierte conteos crudos en porcentajes de cobertura y estados
// de semáforo. Es puro: no consulta el warehouse ni guarda estado mutable.
// Los umbrales se fijan al construirlo, una vez por proceso.
type Clasificador struct {
	verde    float64
	amarillo float64
}

// NewClasificador crea un clasificador con umbrales decimales en [0,1].
func NewClasificador(verde, amarillo float64) *Clasificador {
	return &Clasificador{verde: verde, amarillo: amarillo}
}

// Porcentaje calcula el porcentaje de cobertura con dos decimales.
// Por convención, cero guardias requeridos es cobertura completa: evita que
// una división por cero aparezca como estado de error ante los operadores.
func (c *Clasificador) Porcentaje(presentes, requeridos int) float64 {
	if requeridos == 0 {
		return 100.0
	}
	return math.Round(float64(presentes)/float64(requeridos)*100*100) / 100
}

// Estado clasifica un porcentaje (0-100) contra los umbrales configurados.
// Los límites son inclusivos hacia el mejor estado: un porcentaje exactamente
// igual al umbral resuelve al nivel superior.
func (c *Clasificador) Estado(porcentaje float64) models.EstadoSemaforo {
	switch {
	case porcentaje >= c.verde*100:
		return models.SemaforoVerde
	case porcentaje >= c.amarillo*100:
		return models.SemaforoAmarillo
	default:
		return models.SemaforoRojo
	}
}

// acumulado agrupa los conteos de una instalación durante la clasificación.
type acumulado struct {
	zona       string
	clienteRol string
	empresa    string
	requeridos int
	presentes  int
}

// Clasificar agrega los registros por instalación y produce una métrica
// clasificada por cada instalación del ámbito, ordenadas de peor a mejor
// (más ausentes primero, luego menor porcentaje, luego nombre).
// Los registros fuera del ámbito se descartan aunque vengan del origen.
func (c *Clasificador) Clasificar(
	turnos []models.RegistroTurno,
	ambito *models.AmbitoAcceso,
	faceID map[string]models.EquipoFaceID,
	ppcPorInstalacion map[string]int,
	frescura time.Time,
	calculadoEn time.Time,
) []models.MetricaCobertura {
	porInstalacion := make(map[string]*acumulado)

	for _, t := range turnos {
		if !ambito.PuedeVer(t.InstalacionRol) {
			continue
		}
		acc, ok := porInstalacion[t.InstalacionRol]
		if !ok {
			acc = &acumulado{zona: t.Zona, clienteRol: t.ClienteRol, empresa: t.Empresa}
			porInstalacion[t.InstalacionRol] = acc
		}
		acc.requeridos += t.GuardiasRequeridos
		acc.presentes += t.GuardiasPresentes
	}

	metricas := make([]models.MetricaCobertura, 0, len(porInstalacion))
	for inst, acc := range porInstalacion {
		porcentaje := c.Porcentaje(acc.presentes, acc.requeridos)

		m := models.MetricaCobertura{
			InstalacionRol:      inst,
			Zona:                acc.zona,
			ClienteRol:          acc.clienteRol,
			Empresa:             acc.empresa,
			GuardiasRequeridos:  acc.requeridos,
			GuardiasPresentes:   acc.presentes,
			GuardiasAusentes:    acc.requeridos - acc.presentes,
			PPC:                 ppcPorInstalacion[inst],
			PorcentajeCobertura: porcentaje,
			EstadoSemaforo:      c.Estado(porcentaje),
			CalculadoEn:         calculadoEn,
			Frescura:            frescura,
		}

		if equipo, ok := faceID[inst]; ok {
			m.TieneFaceID = true
			m.FaceIDNumero = equipo.Numero
			conexion := equipo.UltimaConexion
			m.FaceIDUltimaConexion = &conexion
		}

		metricas = append(metricas, m)
	}

	sort.Slice(metricas, func(i, j int) bool {
		if metricas[i].GuardiasAusentes != metricas[j].GuardiasAusentes {
			return metricas[i].GuardiasAusentes > metricas[j].GuardiasAusentes
		}
		if metricas[i].PorcentajeCobertura != metricas[j].PorcentajeCobertura {
			return metricas[i].PorcentajeCobertura < metricas[j].PorcentajeCobertura
		}
		return metricas[i].InstalacionRol < metricas[j].InstalacionRol
	})

	return metricas
}

// General produce la métrica agregada de todas las instalaciones del ámbito.
// Sin ningún turno visible no hay dato que clasificar: el semáforo queda en
// GRIS con cobertura cero.
func (c *Clasificador) General(
	turnos []models.RegistroTurno,
	ambito *models.AmbitoAcceso,
	totalPPC int,
	frescura time.Time,
	calculadoEn time.Time,
) models.MetricaCobertura {
	var requeridos, presentes, visibles int
	for _, t := range turnos {
		if !ambito.PuedeVer(t.InstalacionRol) {
			continue
		}
		visibles++
		requeridos += t.GuardiasRequeridos
		presentes += t.GuardiasPresentes
	}

	metrica := models.MetricaCobertura{
		InstalacionRol:     models.InstalacionGeneral,
		GuardiasRequeridos: requeridos,
		GuardiasPresentes:  presentes,
		GuardiasAusentes:   requeridos - presentes,
		PPC:                totalPPC,
		EstadoSemaforo:     models.SemaforoGris,
		CalculadoEn:        calculadoEn,
		Frescura:           frescura,
	}
	if visibles == 0 {
		return metrica
	}

	metrica.PorcentajeCobertura = c.Porcentaje(presentes, requeridos)
	metrica.EstadoSemaforo = c.Estado(metrica.PorcentajeCobertura)
	return metrica
}
