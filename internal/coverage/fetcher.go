package coverage

import (
	"context"
	"sort"
	"time"

	"github.com/worldwide-sa/wfsa-api/internal/models"
)

// Fuente es el contrato de lectura contra el warehouse. Un filtro de
// instalaciones nil o vacío significa "sin filtro". Las implementaciones son
// de solo lectura y no reintentan por su cuenta: un fallo se propaga para que
// el llamador decida, porque un reintento automático puede enmascarar una
// carrera con el ciclo de refresco del origen.
type Fuente interface {
	TurnosActuales(ctx context.Context, instalaciones []string) ([]models.RegistroTurno, error)
	TurnosHistoricos(ctx context.Context, desde, hasta time.Time, instalaciones []string) ([]models.RegistroTurno, error)
	EquiposFaceID(ctx context.Context) ([]models.EquipoFaceID, error)
	PuestosPorCubrir(ctx context.Context, instalaciones []string) ([]models.PuestoPorCubrir, error)
}

// FotoCobertura es el resultado de un fetch instantáneo: registros ordenados,
// snapshot de equipos Face-ID y la marca de frescura del origen.
type FotoCobertura struct {
	Turnos   []models.RegistroTurno
	FaceID   map[string]models.EquipoFaceID
	Frescura time.Time
}

// Fetcher normaliza lo que entrega la Fuente: ordena los registros de forma
// determinista (el origen no garantiza orden) y calcula la frescura como la
// marca de actualización más reciente observada.
type Fetcher struct {
	fuente Fuente
}

// NewFetcher crea un fetcher sobre una fuente.
func NewFetcher(fuente Fuente) *Fetcher {
	return &Fetcher{fuente: fuente}
}

// Instantanea trae los turnos activos y el snapshot Face-ID en una pasada.
func (f *Fetcher) Instantanea(ctx context.Context, instalaciones []string) (*FotoCobertura, error) {
	turnos, err := f.fuente.TurnosActuales(ctx, instalaciones)
	if err != nil {
		return nil, err
	}

	equipos, err := f.fuente.EquiposFaceID(ctx)
	if err != nil {
		return nil, err
	}

	ordenarTurnos(turnos)

	faceID := make(map[string]models.EquipoFaceID, len(equipos))
	for _, e := range equipos {
		faceID[e.InstalacionRol] = e
	}

	return &FotoCobertura{
		Turnos:   turnos,
		FaceID:   faceID,
		Frescura: frescuraDe(turnos),
	}, nil
}

// Historico trae los registros de un rango de días, ordenados, con su frescura.
func (f *Fetcher) Historico(ctx context.Context, desde, hasta time.Time, instalaciones []string) ([]models.RegistroTurno, time.Time, error) {
	turnos, err := f.fuente.TurnosHistoricos(ctx, desde, hasta, instalaciones)
	if err != nil {
		return nil, time.Time{}, err
	}
	ordenarTurnos(turnos)
	return turnos, frescuraDe(turnos), nil
}

// PPC trae los puestos por cubrir del día para el filtro dado.
func (f *Fetcher) PPC(ctx context.Context, instalaciones []string) ([]models.PuestoPorCubrir, error) {
	ppc, err := f.fuente.PuestosPorCubrir(ctx, instalaciones)
	if err != nil {
		return nil, err
	}
	sort.Slice(ppc, func(i, j int) bool {
		if ppc[i].InstalacionRol != ppc[j].InstalacionRol {
			return ppc[i].InstalacionRol < ppc[j].InstalacionRol
		}
		if ppc[i].HoraEntrada != ppc[j].HoraEntrada {
			return ppc[i].HoraEntrada < ppc[j].HoraEntrada
		}
		return ppc[i].HoraSalida < ppc[j].HoraSalida
	})
	return ppc, nil
}

func ordenarTurnos(turnos []models.RegistroTurno) {
	sort.Slice(turnos, func(i, j int) bool {
		if turnos[i].InstalacionRol != turnos[j].InstalacionRol {
			return turnos[i].InstalacionRol < turnos[j].InstalacionRol
		}
		if turnos[i].CodigoTurno != turnos[j].CodigoTurno {
			return turnos[i].CodigoTurno < turnos[j].CodigoTurno
		}
		return turnos[i].HoraEntradaPlan < turnos[j].HoraEntradaPlan
	})
}

func frescuraDe(turnos []models.RegistroTurno) time.Time {
	var max time.Time
	for _, t := range turnos {
		if t.UltimaActualizacion.After(max) {
			max = t.UltimaActualizacion
		}
	}
	return max
}
