package coverage

import (
	"testing"
	"time"

	"github.com/worldwide-sa/wfsa-api/internal/models"
)

func TestPorcentaje(t *testing.T) {
	clasificador := NewClasificador(0.95, 0.80)

	tests := []struct {
		nombre     string
		presentes  int
		requeridos int
		esperado   float64
	}{
		{"cobertura completa", 20, 20, 100.0},
		{"cobertura parcial", 19, 20, 95.0},
		{"redondeo a dos decimales", 2, 3, 66.67},
		{"sin presentes", 0, 10, 0.0},
		{"sin requeridos es cobertura completa", 0, 0, 100.0},
		{"sin requeridos con presentes", 3, 0, 100.0},
	}

	for _, tt := range tests {
		t.Run(tt.nombre, func(t *testing.T) {
			resultado := clasificador.Porcentaje(tt.presentes, tt.requeridos)
			if resultado != tt.esperado {
				t.Errorf("Porcentaje(%d, %d) = %v, se esperaba %v",
					tt.presentes, tt.requeridos, resultado, tt.esperado)
			}
		})
	}
}

func TestEstado(t *testing.T) {
	clasificador := NewClasificador(0.95, 0.80)

	tests := []struct {
		nombre     string
		porcentaje float64
		esperado   models.EstadoSemaforo
	}{
		{"cobertura total", 100.0, models.SemaforoVerde},
		{"sobre el umbral verde", 96.0, models.SemaforoVerde},
		{"limite verde exacto es verde", 95.0, models.SemaforoVerde},
		{"bajo el umbral verde", 94.99, models.SemaforoAmarillo},
		{"limite amarillo exacto es amarillo", 80.0, models.SemaforoAmarillo},
		{"bajo el umbral amarillo", 79.99, models.SemaforoRojo},
		{"cobertura baja", 76.0, models.SemaforoRojo},
		{"cobertura nula", 0.0, models.SemaforoRojo},
	}

	for _, tt := range tests {
		t.Run(tt.nombre, func(t *testing.T) {
			resultado := clasificador.Estado(tt.porcentaje)
			if resultado != tt.esperado {
				t.Errorf("Estado(%v) = %s, se esperaba %s", tt.porcentaje, resultado, tt.esperado)
			}
		})
	}
}

func TestClasificar(t *testing.T) {
	clasificador := NewClasificador(0.95, 0.80)
	frescura := time.Date(2026, 3, 10, 14, 35, 0, 0, time.UTC)
	ahora := frescura.Add(2 * time.Minute)

	turnos := []models.RegistroTurno{
		{InstalacionRol: "Planta Norte - Guardia", GuardiasRequeridos: 10, GuardiasPresentes: 10},
		{InstalacionRol: "Planta Norte - Guardia", GuardiasRequeridos: 10, GuardiasPresentes: 9},
		{InstalacionRol: "Bodega Central - Guardia", GuardiasRequeridos: 8, GuardiasPresentes: 5},
		{InstalacionRol: "Oficina Sur - Guardia", GuardiasRequeridos: 4, GuardiasPresentes: 4},
		{InstalacionRol: "Fuera del Ambito - Guardia", GuardiasRequeridos: 6, GuardiasPresentes: 0},
	}

	ambito := &models.AmbitoAcceso{
		Instalaciones: []string{
			"Planta Norte - Guardia",
			"Bodega Central - Guardia",
			"Oficina Sur - Guardia",
		},
	}

	faceID := map[string]models.EquipoFaceID{
		"Planta Norte - Guardia": {InstalacionRol: "Planta Norte - Guardia", Numero: "FID-042", UltimaConexion: frescura},
	}
	ppc := map[string]int{"Bodega Central - Guardia": 2}

	metricas := clasificador.Clasificar(turnos, ambito, faceID, ppc, frescura, ahora)

	if len(metricas) != 3 {
		t.Fatalf("se esperaban 3 metricas, se obtuvieron %d", len(metricas))
	}

	// Peor cobertura primero: más ausentes, luego menor porcentaje.
	if metricas[0].InstalacionRol != "Bodega Central - Guardia" {
		t.Errorf("la peor instalacion debe ir primero, se obtuvo %s", metricas[0].InstalacionRol)
	}
	if metricas[0].GuardiasAusentes != 3 {
		t.Errorf("ausentes de Bodega Central = %d, se esperaban 3", metricas[0].GuardiasAusentes)
	}
	if metricas[0].EstadoSemaforo != models.SemaforoRojo {
		t.Errorf("Bodega Central debe ser ROJO, se obtuvo %s", metricas[0].EstadoSemaforo)
	}
	if metricas[0].PPC != 2 {
		t.Errorf("PPC de Bodega Central = %d, se esperaban 2", metricas[0].PPC)
	}

	for _, m := range metricas {
		if m.InstalacionRol == "Fuera del Ambito - Guardia" {
			t.Fatal("una instalacion fuera del ambito no debe aparecer en el resultado")
		}
		if !m.Frescura.Equal(frescura) {
			t.Errorf("frescura de %s = %v, se esperaba %v", m.InstalacionRol, m.Frescura, frescura)
		}
	}

	for _, m := range metricas {
		if m.InstalacionRol != "Planta Norte - Guardia" {
			continue
		}
		if m.PorcentajeCobertura != 95.0 {
			t.Errorf("porcentaje de Planta Norte = %v, se esperaba 95.0", m.PorcentajeCobertura)
		}
		if m.EstadoSemaforo != models.SemaforoVerde {
			t.Errorf("Planta Norte en el limite verde debe ser VERDE, se obtuvo %s", m.EstadoSemaforo)
		}
		if !m.TieneFaceID || m.FaceIDNumero != "FID-042" {
			t.Errorf("Planta Norte debe reportar su equipo Face-ID")
		}
	}
}

func TestGeneral(t *testing.T) {
	clasificador := NewClasificador(0.95, 0.80)
	frescura := time.Date(2026, 3, 10, 14, 35, 0, 0, time.UTC)

	turnos := []models.RegistroTurno{
		{InstalacionRol: "Planta Norte - Guardia", GuardiasRequeridos: 10, GuardiasPresentes: 9},
		{InstalacionRol: "Bodega Central - Guardia", GuardiasRequeridos: 10, GuardiasPresentes: 8},
		{InstalacionRol: "Oculta - Guardia", GuardiasRequeridos: 100, GuardiasPresentes: 0},
	}
	ambito := &models.AmbitoAcceso{
		Instalaciones: []string{"Planta Norte - Guardia", "Bodega Central - Guardia"},
	}

	general := clasificador.General(turnos, ambito, 4, frescura, frescura)

	if general.InstalacionRol != models.InstalacionGeneral {
		t.Errorf("instalacion = %s, se esperaba %s", general.InstalacionRol, models.InstalacionGeneral)
	}
	if general.GuardiasRequeridos != 20 || general.GuardiasPresentes != 17 {
		t.Errorf("conteos = %d/%d, se esperaban 17/20",
			general.GuardiasPresentes, general.GuardiasRequeridos)
	}
	if general.PorcentajeCobertura != 85.0 {
		t.Errorf("porcentaje general = %v, se esperaba 85.0", general.PorcentajeCobertura)
	}
	if general.EstadoSemaforo != models.SemaforoAmarillo {
		t.Errorf("estado general = %s, se esperaba AMARILLO", general.EstadoSemaforo)
	}
	if general.PPC != 4 {
		t.Errorf("PPC general = %d, se esperaban 4", general.PPC)
	}
}

func TestGeneralSinTurnosEsGris(t *testing.T) {
	clasificador := NewClasificador(0.95, 0.80)
	ahora := time.Date(2026, 3, 10, 14, 35, 0, 0, time.UTC)

	tests := []struct {
		name   string
		turnos []models.RegistroTurno
		ambito *models.AmbitoAcceso
	}{
		{
			name:   "origen sin filas",
			turnos: nil,
			ambito: &models.AmbitoAcceso{TodasInstalaciones: true},
		},
		{
			name: "todas las filas fuera del ambito",
			turnos: []models.RegistroTurno{
				{InstalacionRol: "Oculta - Guardia", GuardiasRequeridos: 5, GuardiasPresentes: 5},
			},
			ambito: &models.AmbitoAcceso{Instalaciones: []string{"Planta Norte - Guardia"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			general := clasificador.General(tt.turnos, tt.ambito, 0, ahora, ahora)

			if general.EstadoSemaforo != models.SemaforoGris {
				t.Errorf("estado = %s, se esperaba GRIS", general.EstadoSemaforo)
			}
			if general.PorcentajeCobertura != 0 {
				t.Errorf("porcentaje = %v, se esperaba 0 sin datos", general.PorcentajeCobertura)
			}
		})
	}
}

func TestGeneralRequeridosCeroConFilas(t *testing.T) {
	clasificador := NewClasificador(0.95, 0.80)
	ahora := time.Date(2026, 3, 10, 14, 35, 0, 0, time.UTC)

	// Hay filas activas pero ninguna exige dotación: rige la convención de
	// cobertura completa, no el estado sin datos.
	turnos := []models.RegistroTurno{
		{InstalacionRol: "Planta Norte - Guardia", GuardiasRequeridos: 0, GuardiasPresentes: 0},
	}
	ambito := &models.AmbitoAcceso{TodasInstalaciones: true}

	general := clasificador.General(turnos, ambito, 0, ahora, ahora)

	if general.EstadoSemaforo != models.SemaforoVerde {
		t.Errorf("estado = %s, se esperaba VERDE", general.EstadoSemaforo)
	}
	if general.PorcentajeCobertura != 100.0 {
		t.Errorf("porcentaje = %v, se esperaba 100.0", general.PorcentajeCobertura)
	}
}
