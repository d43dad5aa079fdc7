package coverage

import (
	"testing"

	"github.com/worldwide-sa/wfsa-api/internal/models"
)

func TestPuntualidad(t *testing.T) {
	tests := []struct {
		nombre   string
		turno    models.RegistroTurno
		esperado string
	}{
		{
			"a tiempo",
			models.RegistroTurno{Asistio: true, HoraEntradaPlan: "08:00", HoraEntradaReal: "07:55"},
			"A tiempo",
		},
		{
			"entrada exacta",
			models.RegistroTurno{Asistio: true, HoraEntradaPlan: "08:00", HoraEntradaReal: "08:00"},
			"A tiempo",
		},
		{
			"con retraso",
			models.RegistroTurno{Asistio: true, HoraEntradaPlan: "08:00", HoraEntradaReal: "08:17"},
			"Retraso: 17 minutos",
		},
		{
			"hora con segundos",
			models.RegistroTurno{Asistio: true, HoraEntradaPlan: "08:00:00", HoraEntradaReal: "08:05:30"},
			"Retraso: 5 minutos",
		},
		{
			"no asistio",
			models.RegistroTurno{Asistio: false, HoraEntradaPlan: "08:00", HoraEntradaReal: ""},
			"",
		},
		{
			"sin marca real",
			models.RegistroTurno{Asistio: true, HoraEntradaPlan: "08:00"},
			"",
		},
		{
			"hora ilegible",
			models.RegistroTurno{Asistio: true, HoraEntradaPlan: "mediodia", HoraEntradaReal: "08:00"},
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.nombre, func(t *testing.T) {
			if resultado := puntualidad(tt.turno); resultado != tt.esperado {
				t.Errorf("puntualidad = %q, se esperaba %q", resultado, tt.esperado)
			}
		})
	}
}

func TestArmarDetalles(t *testing.T) {
	turnos := []models.RegistroTurno{
		{InstalacionRol: "Planta Norte - Guardia", Empresa: "Minera Andina", CodigoTurno: "T2", HoraEntradaPlan: "20:00", Asistio: true, HoraEntradaReal: "20:00"},
		{InstalacionRol: "Planta Norte - Guardia", Empresa: "Minera Andina", CodigoTurno: "T1", HoraEntradaPlan: "08:00", Asistio: true, HoraEntradaReal: "08:10"},
	}
	ppc := []models.PuestoPorCubrir{
		{InstalacionRol: "Planta Norte - Guardia", Turno: "Dia", HoraEntrada: "08:00", HoraSalida: "20:00"},
		{InstalacionRol: "Solo PPC - Guardia", Turno: "Noche", HoraEntrada: "20:00", HoraSalida: "08:00"},
	}

	detalles := armarDetalles(turnos, ppc)

	if len(detalles) != 2 {
		t.Fatalf("se esperaban 2 instalaciones, se obtuvieron %d", len(detalles))
	}

	planta := detalles["Planta Norte - Guardia"]
	if planta == nil {
		t.Fatal("falta el detalle de Planta Norte")
	}
	if planta.TotalTurnos != 2 || planta.Empresa != "Minera Andina" {
		t.Errorf("detalle de Planta Norte = %+v", planta)
	}
	// Orden por hora de entrada planificada.
	if planta.Turnos[0].CodigoTurno != "T1" || planta.Turnos[1].CodigoTurno != "T2" {
		t.Errorf("los turnos deben ordenarse por hora planificada: %s, %s",
			planta.Turnos[0].CodigoTurno, planta.Turnos[1].CodigoTurno)
	}
	if planta.Turnos[0].Puntualidad != "Retraso: 10 minutos" {
		t.Errorf("puntualidad de T1 = %q", planta.Turnos[0].Puntualidad)
	}
	if planta.TotalPPC != 1 {
		t.Errorf("TotalPPC de Planta Norte = %d, se esperaba 1", planta.TotalPPC)
	}

	soloPPC := detalles["Solo PPC - Guardia"]
	if soloPPC == nil {
		t.Fatal("una instalacion con PPC y sin turnos igual debe aparecer")
	}
	if len(soloPPC.Turnos) != 0 || soloPPC.TotalPPC != 1 {
		t.Errorf("detalle solo PPC = %+v", soloPPC)
	}
}

func TestAgruparPPC(t *testing.T) {
	ppc := []models.PuestoPorCubrir{
		{InstalacionRol: "Bodega Central - Guardia", Turno: "Dia", HoraEntrada: "08:00", HoraSalida: "20:00"},
		{InstalacionRol: "Aeropuerto - Guardia", Turno: "Noche", HoraEntrada: "20:00", HoraSalida: "08:00"},
		{InstalacionRol: "Bodega Central - Guardia", Turno: "Dia", HoraEntrada: "08:00", HoraSalida: "20:00"},
	}

	resumenes := agruparPPC(ppc)

	if len(resumenes) != 2 {
		t.Fatalf("se esperaban 2 instalaciones, se obtuvieron %d", len(resumenes))
	}
	// Orden alfabético por instalación.
	if resumenes[0].Instalacion != "Aeropuerto - Guardia" {
		t.Errorf("primera instalacion = %s", resumenes[0].Instalacion)
	}
	bodega := resumenes[1]
	if bodega.TotalPPC != 2 || len(bodega.PPCPorTurno) != 1 {
		t.Errorf("resumen de Bodega Central = %+v", bodega)
	}
	if bodega.PPCPorTurno[0].Horario != "08:00 - 20:00" || bodega.PPCPorTurno[0].CantidadPPC != 2 {
		t.Errorf("grupo de Bodega Central = %+v", bodega.PPCPorTurno[0])
	}
}
