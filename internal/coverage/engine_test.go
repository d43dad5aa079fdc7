package coverage

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/worldwide-sa/wfsa-api/internal/models"
)

// fuenteFake simula el warehouse en memoria, aplicando el filtro de
// instalaciones como lo haría la consulta real.
type fuenteFake struct {
	turnos     []models.RegistroTurno
	historicos []models.RegistroTurno
	equipos    []models.EquipoFaceID
	ppc        []models.PuestoPorCubrir
	err        error

	// bloqueo, si no es nil, demora TurnosActuales hasta su cierre.
	bloqueo chan struct{}

	llamadasActuales   int32
	llamadasHistoricas int32
	llamadasPPC        int32

	mu      sync.Mutex
	filtros [][]string
}

func (f *fuenteFake) TurnosActuales(ctx context.Context, instalaciones []string) ([]models.RegistroTurno, error) {
	atomic.AddInt32(&f.llamadasActuales, 1)
	f.mu.Lock()
	f.filtros = append(f.filtros, instalaciones)
	f.mu.Unlock()
	if f.bloqueo != nil {
		<-f.bloqueo
	}
	if f.err != nil {
		return nil, f.err
	}
	return filtrarRegistros(f.turnos, instalaciones), nil
}

func (f *fuenteFake) TurnosHistoricos(ctx context.Context, desde, hasta time.Time, instalaciones []string) ([]models.RegistroTurno, error) {
	atomic.AddInt32(&f.llamadasHistoricas, 1)
	if f.err != nil {
		return nil, f.err
	}
	var filtrados []models.RegistroTurno
	for _, t := range filtrarRegistros(f.historicos, instalaciones) {
		if t.Fecha.Before(desde) || t.Fecha.After(hasta.AddDate(0, 0, 1)) {
			continue
		}
		filtrados = append(filtrados, t)
	}
	return filtrados, nil
}

func (f *fuenteFake) EquiposFaceID(ctx context.Context) ([]models.EquipoFaceID, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.equipos, nil
}

func (f *fuenteFake) PuestosPorCubrir(ctx context.Context, instalaciones []string) ([]models.PuestoPorCubrir, error) {
	atomic.AddInt32(&f.llamadasPPC, 1)
	if f.err != nil {
		return nil, f.err
	}
	var filtrados []models.PuestoPorCubrir
	for _, p := range f.ppc {
		if len(instalaciones) > 0 && !contiene(instalaciones, p.InstalacionRol) {
			continue
		}
		filtrados = append(filtrados, p)
	}
	return filtrados, nil
}

func filtrarRegistros(turnos []models.RegistroTurno, instalaciones []string) []models.RegistroTurno {
	if len(instalaciones) == 0 {
		return turnos
	}
	var filtrados []models.RegistroTurno
	for _, t := range turnos {
		if contiene(instalaciones, t.InstalacionRol) {
			filtrados = append(filtrados, t)
		}
	}
	return filtrados
}

func contiene(lista []string, valor string) bool {
	for _, v := range lista {
		if v == valor {
			return true
		}
	}
	return false
}

type permisosFake struct {
	porEmail map[string][]string
	err      error
}

func (p *permisosFake) InstalacionesVisibles(ctx context.Context, email string) ([]string, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.porEmail[email], nil
}

var (
	ahoraPrueba    = time.Date(2026, 3, 11, 10, 2, 0, 0, time.UTC)
	frescuraPrueba = time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC)
)

func nuevoMotorPrueba(fuente Fuente, permisos FuentePermisos) *Engine {
	reloj := func() time.Time { return ahoraPrueba }
	cache := NewCacheCobertura(time.Minute, 5*time.Minute, 32, reloj)
	return NewEngine(fuente, permisos, NewClasificador(0.95, 0.80), cache, 5*time.Minute, 90, reloj, nil)
}

func turnosPrueba() []models.RegistroTurno {
	return []models.RegistroTurno{
		{InstalacionRol: "Planta Norte - Guardia", Empresa: "Minera Andina", GuardiasRequeridos: 10, GuardiasPresentes: 10, UltimaActualizacion: frescuraPrueba},
		{InstalacionRol: "Bodega Central - Guardia", Empresa: "Logistica Sur", GuardiasRequeridos: 8, GuardiasPresentes: 6, UltimaActualizacion: frescuraPrueba},
		{InstalacionRol: "Oficina Reservada - Guardia", Empresa: "Banco Privado", GuardiasRequeridos: 5, GuardiasPresentes: 5, UltimaActualizacion: frescuraPrueba},
	}
}

func TestCoberturaPorInstalacionRespetaAmbito(t *testing.T) {
	fuente := &fuenteFake{turnos: turnosPrueba()}
	permisos := &permisosFake{porEmail: map[string][]string{
		"sub@wfsa.cl": {"Planta Norte - Guardia", "Bodega Central - Guardia"},
	}}
	motor := nuevoMotorPrueba(fuente, permisos)

	usuario := &models.Usuario{Email: "sub@wfsa.cl", RolID: models.RolSubgerente}
	metricas, err := motor.CoberturaPorInstalacion(context.Background(), usuario)
	if err != nil {
		t.Fatalf("error inesperado: %v", err)
	}

	if len(metricas) != 2 {
		t.Fatalf("se esperaban 2 metricas, se obtuvieron %d", len(metricas))
	}
	for _, m := range metricas {
		if m.InstalacionRol == "Oficina Reservada - Guardia" {
			t.Fatal("una instalacion fuera del ambito no debe aparecer jamas en la respuesta")
		}
	}

	// El filtro del ámbito debe viajar hasta el warehouse, no solo aplicarse
	// en memoria.
	fuente.mu.Lock()
	defer fuente.mu.Unlock()
	for _, filtro := range fuente.filtros {
		if len(filtro) != 2 {
			t.Errorf("el fetch debe ir filtrado a las 2 instalaciones del ambito, fue %v", filtro)
		}
	}
}

func TestCoberturaPorInstalacionAdminVeTodas(t *testing.T) {
	fuente := &fuenteFake{turnos: turnosPrueba()}
	motor := nuevoMotorPrueba(fuente, &permisosFake{})

	admin := &models.Usuario{Email: "admin@wfsa.cl", RolID: models.RolAdmin}
	metricas, err := motor.CoberturaPorInstalacion(context.Background(), admin)
	if err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	if len(metricas) != 3 {
		t.Errorf("un rol privilegiado debe ver las 3 instalaciones, vio %d", len(metricas))
	}
}

func TestCoberturaGeneralAmbitoVacio(t *testing.T) {
	fuente := &fuenteFake{turnos: turnosPrueba()}
	motor := nuevoMotorPrueba(fuente, &permisosFake{porEmail: map[string][]string{}})

	cliente := &models.Usuario{Email: "nuevo@cliente.cl", RolID: models.RolCliente}
	resumen, err := motor.CoberturaGeneral(context.Background(), cliente)
	if err != nil {
		t.Fatalf("una operacion agregado-segura no debe fallar con ambito vacio: %v", err)
	}
	if resumen.TotalTurnosActivos != 0 || resumen.TotalPPC != 0 {
		t.Errorf("el resumen de un ambito vacio debe ir en cero, se obtuvo %+v", resumen)
	}
	if resumen.EstadoSemaforo != models.SemaforoGris {
		t.Errorf("estado = %s, sin datos el semaforo debe quedar en GRIS", resumen.EstadoSemaforo)
	}
	if atomic.LoadInt32(&fuente.llamadasActuales) != 0 {
		t.Error("un ambito vacio no debe tocar el warehouse")
	}
}

func TestCoberturaGeneralSinFilasEsGris(t *testing.T) {
	fuente := &fuenteFake{turnos: turnosPrueba()}
	motor := nuevoMotorPrueba(fuente, &permisosFake{porEmail: map[string][]string{
		"cliente@acme.cl": {"Sucursal Sin Marcajes"},
	}})

	cliente := &models.Usuario{Email: "cliente@acme.cl", RolID: models.RolCliente}
	resumen, err := motor.CoberturaGeneral(context.Background(), cliente)
	if err != nil {
		t.Fatalf("CoberturaGeneral() error = %v", err)
	}

	if resumen.EstadoSemaforo != models.SemaforoGris {
		t.Errorf("estado = %s, se esperaba GRIS para un ambito sin turnos activos", resumen.EstadoSemaforo)
	}
	if resumen.PorcentajeCobertura != 0 || resumen.TotalTurnosActivos != 0 {
		t.Errorf("resumen sin datos inesperado: %+v", resumen)
	}
	if atomic.LoadInt32(&fuente.llamadasActuales) != 1 {
		t.Errorf("llamadas al warehouse = %d, se esperaba 1", atomic.LoadInt32(&fuente.llamadasActuales))
	}
}

func TestOperacionesFallanCerradoConAmbitoVacio(t *testing.T) {
	fuente := &fuenteFake{turnos: turnosPrueba()}
	motor := nuevoMotorPrueba(fuente, &permisosFake{porEmail: map[string][]string{}})
	cliente := &models.Usuario{Email: "nuevo@cliente.cl", RolID: models.RolCliente}
	ctx := context.Background()

	tests := []struct {
		nombre string
		op     func() error
	}{
		{"cobertura por instalacion", func() error {
			_, err := motor.CoberturaPorInstalacion(ctx, cliente)
			return err
		}},
		{"detalle todas", func() error {
			_, err := motor.DetalleTodas(ctx, cliente)
			return err
		}},
		{"historico semanal", func() error {
			_, err := motor.HistoricoSemanal(ctx, cliente, 30)
			return err
		}},
		{"ppc todas", func() error {
			_, err := motor.PPCTodasInstalaciones(ctx, cliente)
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.nombre, func(t *testing.T) {
			if err := tt.op(); !errors.Is(err, ErrAccesoDenegado) {
				t.Errorf("se esperaba ErrAccesoDenegado, se obtuvo %v", err)
			}
		})
	}
}

func TestUsuarioNilNoAutorizado(t *testing.T) {
	motor := nuevoMotorPrueba(&fuenteFake{}, &permisosFake{})
	if _, err := motor.CoberturaGeneral(context.Background(), nil); !errors.Is(err, ErrNoAutorizado) {
		t.Errorf("se esperaba ErrNoAutorizado, se obtuvo %v", err)
	}
}

func TestDetalleInstalacionFueraDeAmbito(t *testing.T) {
	fuente := &fuenteFake{turnos: turnosPrueba()}
	permisos := &permisosFake{porEmail: map[string][]string{
		"sub@wfsa.cl": {"Planta Norte - Guardia"},
	}}
	motor := nuevoMotorPrueba(fuente, permisos)

	usuario := &models.Usuario{Email: "sub@wfsa.cl", RolID: models.RolSubgerente}
	_, err := motor.DetalleInstalacion(context.Background(), usuario, "Oficina Reservada - Guardia")
	if !errors.Is(err, ErrInstalacionFueraDeAmbito) {
		t.Errorf("se esperaba ErrInstalacionFueraDeAmbito, se obtuvo %v", err)
	}
	if atomic.LoadInt32(&fuente.llamadasActuales) != 0 {
		t.Error("un pedido fuera de ambito debe rechazarse antes de tocar el warehouse")
	}
}

func TestHistoricoDiasInvalido(t *testing.T) {
	motor := nuevoMotorPrueba(&fuenteFake{}, &permisosFake{})
	admin := &models.Usuario{Email: "admin@wfsa.cl", RolID: models.RolAdmin}

	for _, dias := range []int{0, -7} {
		if _, err := motor.HistoricoSemanal(context.Background(), admin, dias); !errors.Is(err, ErrParametroInvalido) {
			t.Errorf("dias=%d: se esperaba ErrParametroInvalido, se obtuvo %v", dias, err)
		}
	}
}

func TestHistoricoSemanasCerradasCacheadas(t *testing.T) {
	fuente := &fuenteFake{historicos: []models.RegistroTurno{
		{InstalacionRol: "Planta Norte - Guardia", Fecha: time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), GuardiasRequeridos: 10, GuardiasPresentes: 8, UltimaActualizacion: frescuraPrueba},
		{InstalacionRol: "Planta Norte - Guardia", Fecha: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), GuardiasRequeridos: 10, GuardiasPresentes: 10, UltimaActualizacion: frescuraPrueba},
	}}
	motor := nuevoMotorPrueba(fuente, &permisosFake{})
	admin := &models.Usuario{Email: "admin@wfsa.cl", RolID: models.RolAdmin}

	semanas, err := motor.HistoricoSemanal(context.Background(), admin, 7)
	if err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	if len(semanas) != 2 {
		t.Fatalf("se esperaban 2 buckets (semana cerrada y en curso), se obtuvieron %d", len(semanas))
	}
	if semanas[0].EnCurso || !semanas[1].EnCurso {
		t.Error("solo el ultimo bucket debe estar en curso")
	}

	// Primera llamada: un fetch para las semanas cerradas y otro para la
	// semana en curso. Segunda llamada: las cerradas salen de cache y solo
	// la semana en curso vuelve al warehouse.
	if n := atomic.LoadInt32(&fuente.llamadasHistoricas); n != 2 {
		t.Fatalf("la primera llamada debe hacer 2 fetches historicos, hizo %d", n)
	}
	if _, err := motor.HistoricoSemanal(context.Background(), admin, 7); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt32(&fuente.llamadasHistoricas); n != 3 {
		t.Errorf("la segunda llamada debe refetchear solo la semana en curso: %d fetches totales, se esperaban 3", n)
	}
}

func TestCoberturaGeneralMemoizada(t *testing.T) {
	fuente := &fuenteFake{turnos: turnosPrueba(), ppc: []models.PuestoPorCubrir{
		{InstalacionRol: "Bodega Central - Guardia", Turno: "Dia", HoraEntrada: "08:00", HoraSalida: "20:00"},
	}}
	motor := nuevoMotorPrueba(fuente, &permisosFake{})
	admin := &models.Usuario{Email: "admin@wfsa.cl", RolID: models.RolAdmin}

	primero, err := motor.CoberturaGeneral(context.Background(), admin)
	if err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	segundo, err := motor.CoberturaGeneral(context.Background(), admin)
	if err != nil {
		t.Fatalf("error inesperado: %v", err)
	}

	if atomic.LoadInt32(&fuente.llamadasActuales) != 1 {
		t.Errorf("la segunda llamada dentro del TTL no debe tocar el warehouse")
	}
	if primero != segundo {
		t.Error("ambas llamadas deben recibir el mismo resultado memoizado")
	}
	if primero.TotalTurnosActivos != 23 || primero.TurnosCubiertos != 21 {
		t.Errorf("conteos = %d/%d, se esperaban 21/23", primero.TurnosCubiertos, primero.TotalTurnosActivos)
	}
	if primero.TotalPPC != 1 {
		t.Errorf("TotalPPC = %d, se esperaba 1", primero.TotalPPC)
	}
	if primero.UltimaActualizacion == nil || !primero.UltimaActualizacion.Equal(frescuraPrueba) {
		t.Errorf("la ultima actualizacion debe ser la frescura del origen")
	}
	if primero.ProximaActualizacion == nil || !primero.ProximaActualizacion.Equal(frescuraPrueba.Add(5*time.Minute)) {
		t.Errorf("la proxima actualizacion debe proyectar la cadencia del origen")
	}
}

func TestErrorCompartidoEntreSuscritos(t *testing.T) {
	falla := errors.New("warehouse caido")
	fuente := &fuenteFake{err: falla, bloqueo: make(chan struct{})}
	motor := nuevoMotorPrueba(fuente, &permisosFake{})
	admin := &models.Usuario{Email: "admin@wfsa.cl", RolID: models.RolAdmin}

	const concurrentes = 3
	var wg sync.WaitGroup
	errs := make([]error, concurrentes)
	for i := 0; i < concurrentes; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = motor.CoberturaPorInstalacion(context.Background(), admin)
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(fuente.bloqueo)
	wg.Wait()

	for i, err := range errs {
		if !errors.Is(err, falla) {
			t.Errorf("suscrito %d: se esperaba el error del unico computo, se obtuvo %v", i, err)
		}
	}
	if n := atomic.LoadInt32(&fuente.llamadasActuales); n != 1 {
		t.Errorf("el fetch fallido debe correr una sola vez, corrio %d", n)
	}

	// El error no quedó cacheado: un reintento posterior vuelve a computar.
	fuente.err = nil
	fuente.bloqueo = nil
	fuente.turnos = turnosPrueba()
	if _, err := motor.CoberturaPorInstalacion(context.Background(), admin); err != nil {
		t.Errorf("el reintento tras la falla debe funcionar: %v", err)
	}
}

func TestInvalidarVaciaElCache(t *testing.T) {
	fuente := &fuenteFake{turnos: turnosPrueba()}
	motor := nuevoMotorPrueba(fuente, &permisosFake{})
	admin := &models.Usuario{Email: "admin@wfsa.cl", RolID: models.RolAdmin}

	if _, err := motor.CoberturaPorInstalacion(context.Background(), admin); err != nil {
		t.Fatal(err)
	}
	motor.Invalidar()
	if _, err := motor.CoberturaPorInstalacion(context.Background(), admin); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt32(&fuente.llamadasActuales); n != 2 {
		t.Errorf("tras invalidar, la consulta debe volver al warehouse: %d fetches, se esperaban 2", n)
	}
}

func TestPPCPorInstalacion(t *testing.T) {
	fuente := &fuenteFake{ppc: []models.PuestoPorCubrir{
		{InstalacionRol: "Bodega Central - Guardia", Turno: "Dia", Jornada: "4x4", HoraEntrada: "08:00", HoraSalida: "20:00"},
		{InstalacionRol: "Bodega Central - Guardia", Turno: "Dia", Jornada: "4x4", HoraEntrada: "08:00", HoraSalida: "20:00"},
		{InstalacionRol: "Bodega Central - Guardia", Turno: "Noche", Jornada: "4x4", HoraEntrada: "20:00", HoraSalida: "08:00"},
	}}
	permisos := &permisosFake{porEmail: map[string][]string{
		"sub@wfsa.cl": {"Bodega Central - Guardia"},
	}}
	motor := nuevoMotorPrueba(fuente, permisos)
	usuario := &models.Usuario{Email: "sub@wfsa.cl", RolID: models.RolSubgerente}

	resumen, err := motor.PPCPorInstalacion(context.Background(), usuario, "Bodega Central - Guardia")
	if err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	if resumen.TotalPPC != 3 {
		t.Errorf("TotalPPC = %d, se esperaban 3", resumen.TotalPPC)
	}
	if len(resumen.PPCPorTurno) != 2 {
		t.Fatalf("se esperaban 2 grupos de horario, se obtuvieron %d", len(resumen.PPCPorTurno))
	}
	if resumen.PPCPorTurno[0].CantidadPPC != 2 || resumen.PPCPorTurno[0].Horario != "08:00 - 20:00" {
		t.Errorf("grupo diurno = %+v, se esperaban 2 PPC con horario 08:00 - 20:00", resumen.PPCPorTurno[0])
	}
}
