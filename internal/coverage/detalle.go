package coverage

import (
	"fmt"
	"sort"
	"time"

	"github.com/worldwide-sa/wfsa-api/internal/models"
)

// armarDetalles particiona en memoria el resultado de un fetch masivo en un
// detalle por instalación. Una instalación que solo tiene PPC (sin turnos)
// igual aparece en el resultado.
func armarDetalles(turnos []models.RegistroTurno, ppc []models.PuestoPorCubrir) map[string]*models.DetalleInstalacion {
	detalles := make(map[string]*models.DetalleInstalacion)

	obtener := func(instalacion string) *models.DetalleInstalacion {
		d, ok := detalles[instalacion]
		if !ok {
			d = &models.DetalleInstalacion{
				Instalacion: instalacion,
				Turnos:      []models.TurnoDetalle{},
				PPCPorTurno: []models.GrupoPPC{},
			}
			detalles[instalacion] = d
		}
		return d
	}

	for _, t := range turnos {
		d := obtener(t.InstalacionRol)
		if d.Empresa == "" {
			d.Empresa = t.Empresa
		}
		d.Turnos = append(d.Turnos, models.TurnoDetalle{
			CodigoTurno:          t.CodigoTurno,
			Cargo:                t.Cargo,
			TipoDeServicio:       t.TipoDeServicio,
			HoraEntradaPlan:      t.HoraEntradaPlan,
			HoraSalidaPlan:       t.HoraSalidaPlan,
			RutPlanificado:       t.RutPlanificado,
			NombrePlanificado:    t.NombrePlanificado,
			RutAsistente:         t.RutAsistente,
			NombreAsistente:      t.NombreAsistente,
			HoraEntradaReal:      t.HoraEntradaReal,
			HoraSalidaReal:       t.HoraSalidaReal,
			Asistio:              t.Asistio,
			EstadoCobertura:      t.EstadoCobertura,
			TurnoExtra:           t.TurnoExtra,
			MotivoIncumplimiento: t.MotivoIncumplimiento,
			Puntualidad:          puntualidad(t),
		})
		d.TotalTurnos = len(d.Turnos)
	}

	for _, grupos := range agruparPPC(ppc) {
		d := obtener(grupos.Instalacion)
		d.PPCPorTurno = grupos.PPCPorTurno
		d.TotalPPC = grupos.TotalPPC
	}

	for _, d := range detalles {
		ordenarTurnosDetalle(d.Turnos)
	}
	return detalles
}

func ordenarTurnosDetalle(turnos []models.TurnoDetalle) {
	sort.SliceStable(turnos, func(i, j int) bool {
		if turnos[i].HoraEntradaPlan != turnos[j].HoraEntradaPlan {
			return turnos[i].HoraEntradaPlan < turnos[j].HoraEntradaPlan
		}
		return turnos[i].CodigoTurno < turnos[j].CodigoTurno
	})
}

// puntualidad compara la hora real de entrada con la planificada. Retorna
// vacío cuando falta alguna de las dos marcas o el guardia no asistió.
func puntualidad(t models.RegistroTurno) string {
	if !t.Asistio || t.HoraEntradaPlan == "" || t.HoraEntradaReal == "" {
		return ""
	}
	plan, err := time.Parse("15:04", recortarHora(t.HoraEntradaPlan))
	if err != nil {
		return ""
	}
	real, err := time.Parse("15:04", recortarHora(t.HoraEntradaReal))
	if err != nil {
		return ""
	}
	retraso := real.Sub(plan)
	if retraso <= 0 {
		return "A tiempo"
	}
	return fmt.Sprintf("Retraso: %d minutos", int(retraso.Minutes()))
}

// recortarHora reduce "HH:MM:SS" a "HH:MM"; deja otros formatos intactos.
func recortarHora(hora string) string {
	if len(hora) > 5 && hora[5] == ':' {
		return hora[:5]
	}
	return hora
}

// agruparPPC agrupa los puestos por cubrir por instalación y horario de turno,
// en orden estable por instalación y hora de entrada.
func agruparPPC(ppc []models.PuestoPorCubrir) []models.ResumenPPC {
	type claveGrupo struct {
		instalacion string
		turno       string
		jornada     string
		entrada     string
		salida      string
	}

	cuentas := make(map[claveGrupo]int)
	orden := []claveGrupo{}
	for _, p := range ppc {
		k := claveGrupo{p.InstalacionRol, p.Turno, p.Jornada, p.HoraEntrada, p.HoraSalida}
		if _, visto := cuentas[k]; !visto {
			orden = append(orden, k)
		}
		cuentas[k]++
	}

	sort.Slice(orden, func(i, j int) bool {
		if orden[i].instalacion != orden[j].instalacion {
			return orden[i].instalacion < orden[j].instalacion
		}
		if orden[i].entrada != orden[j].entrada {
			return orden[i].entrada < orden[j].entrada
		}
		return orden[i].turno < orden[j].turno
	})

	resumenes := []models.ResumenPPC{}
	indice := make(map[string]int)
	for _, k := range orden {
		i, ok := indice[k.instalacion]
		if !ok {
			resumenes = append(resumenes, models.ResumenPPC{
				Instalacion: k.instalacion,
				PPCPorTurno: []models.GrupoPPC{},
			})
			i = len(resumenes) - 1
			indice[k.instalacion] = i
		}
		cantidad := cuentas[k]
		resumenes[i].PPCPorTurno = append(resumenes[i].PPCPorTurno, models.GrupoPPC{
			Turno:       k.turno,
			Jornada:     k.jornada,
			HoraEntrada: k.entrada,
			HoraSalida:  k.salida,
			Horario:     k.entrada + " - " + k.salida,
			CantidadPPC: cantidad,
		})
		resumenes[i].TotalPPC += cantidad
	}
	return resumenes
}
