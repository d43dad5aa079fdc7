package coverage

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/worldwide-sa/wfsa-api/internal/models"
	"github.com/worldwide-sa/wfsa-api/internal/utils"
)

// Engine es el motor de agregación y cache de cobertura: resuelve el ámbito
// de acceso, trae datos del warehouse, los clasifica y memoiza el resultado.
// Se construye una vez por proceso y se inyecta en los handlers; el cache es
// su único estado mutable.
type Engine struct {
	fetcher      *Fetcher
	resolver     *ResolverAmbito
	clasificador *Clasificador
	historico    *AgregadorHistorico
	cache        *CacheCobertura
	cadencia     time.Duration
	diasDefault  int
	reloj        func() time.Time
	log          *zap.Logger
}

// NewEngine crea el motor. `reloj` nil usa time.Now.
func NewEngine(
	fuente Fuente,
	permisos FuentePermisos,
	clasificador *Clasificador,
	cache *CacheCobertura,
	cadencia time.Duration,
	diasDefault int,
	reloj func() time.Time,
	log *zap.Logger,
) *Engine {
	if reloj == nil {
		reloj = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		fetcher:      NewFetcher(fuente),
		resolver:     NewResolverAmbito(permisos),
		clasificador: clasificador,
		historico:    NewAgregadorHistorico(clasificador),
		cache:        cache,
		cadencia:     cadencia,
		diasDefault:  diasDefault,
		reloj:        reloj,
		log:          log,
	}
}

// DiasDefault es la ventana histórica por defecto configurada.
func (e *Engine) DiasDefault() int {
	return e.diasDefault
}

// Invalidar vacía el cache completo (operación administrativa).
func (e *Engine) Invalidar() {
	e.cache.Invalidar()
	e.log.Info("cache de cobertura invalidado manualmente")
}

// filtro traduce el ámbito al filtro de instalaciones del warehouse.
// nil significa sin filtro; un ámbito no privilegiado nunca llega aquí vacío
// porque las operaciones cortan antes (VerificarAmbito o retorno en cero).
func filtro(ambito *models.AmbitoAcceso) []string {
	if ambito.TodasInstalaciones {
		return nil
	}
	return ambito.Instalaciones
}

// CoberturaGeneral retorna la métrica agregada de todas las instalaciones
// visibles. Operación agregado-segura: un ámbito vacío produce el resumen en
// cero, no un error.
func (e *Engine) CoberturaGeneral(ctx context.Context, usuario *models.Usuario) (*models.ResumenGeneral, error) {
	ambito, err := e.resolver.Resolver(ctx, usuario)
	if err != nil {
		return nil, err
	}
	if err := VerificarAmbito(ambito, true); err != nil {
		return nil, err
	}
	if ambito.Vacio() {
		return &models.ResumenGeneral{
			EstadoSemaforo: models.SemaforoGris,
			Empresas:       []string{},
		}, nil
	}

	clave := Clave("cobertura_general", ambito.Huella())
	valor, hit, err := e.cache.Obtener(ctx, clave, ClaseInstantanea, func(ctx context.Context) (*Calculo, error) {
		foto, ppc, err := e.fetchInstantaneo(ctx, ambito)
		if err != nil {
			return nil, err
		}

		general := e.clasificador.General(foto.Turnos, ambito, len(ppc), foto.Frescura, e.reloj())

		resumen := &models.ResumenGeneral{
			TotalTurnosActivos:  general.GuardiasRequeridos,
			TurnosCubiertos:     general.GuardiasPresentes,
			TurnosDescubiertos:  general.GuardiasAusentes,
			PorcentajeCobertura: general.PorcentajeCobertura,
			EstadoSemaforo:      general.EstadoSemaforo,
			TotalPPC:            len(ppc),
			Empresas:            empresasDistintas(foto.Turnos, ambito),
		}
		if !foto.Frescura.IsZero() {
			ultima := foto.Frescura
			proxima := ultima.Add(e.cadencia)
			resumen.UltimaActualizacion = &ultima
			resumen.ProximaActualizacion = &proxima
		}

		return &Calculo{Valor: resumen, Frescura: e.frescuraEfectiva(foto.Frescura)}, nil
	})
	if err != nil {
		return nil, err
	}
	e.logConsulta("cobertura_general", ambito, hit)
	return valor.(*models.ResumenGeneral), nil
}

// CoberturaPorInstalacion retorna una métrica clasificada por instalación
// visible, ordenadas de peor a mejor. Falla cerrado con ámbito vacío.
func (e *Engine) CoberturaPorInstalacion(ctx context.Context, usuario *models.Usuario) ([]models.MetricaCobertura, error) {
	ambito, err := e.resolver.Resolver(ctx, usuario)
	if err != nil {
		return nil, err
	}
	if err := VerificarAmbito(ambito, false); err != nil {
		return nil, err
	}

	clave := Clave("cobertura_instalaciones", ambito.Huella())
	valor, hit, err := e.cache.Obtener(ctx, clave, ClaseInstantanea, func(ctx context.Context) (*Calculo, error) {
		foto, ppc, err := e.fetchInstantaneo(ctx, ambito)
		if err != nil {
			return nil, err
		}

		ppcPorInstalacion := make(map[string]int)
		for _, p := range ppc {
			ppcPorInstalacion[p.InstalacionRol]++
		}

		metricas := e.clasificador.Clasificar(foto.Turnos, ambito, foto.FaceID, ppcPorInstalacion, foto.Frescura, e.reloj())
		return &Calculo{Valor: metricas, Frescura: e.frescuraEfectiva(foto.Frescura)}, nil
	})
	if err != nil {
		return nil, err
	}
	e.logConsulta("cobertura_instalaciones", ambito, hit)
	return valor.([]models.MetricaCobertura), nil
}

// DetalleInstalacion retorna el detalle de turnos y PPC de una instalación.
func (e *Engine) DetalleInstalacion(ctx context.Context, usuario *models.Usuario, instalacionRol string) (*models.DetalleInstalacion, error) {
	ambito, err := e.resolver.Resolver(ctx, usuario)
	if err != nil {
		return nil, err
	}
	if err := VerificarAmbito(ambito, false); err != nil {
		return nil, err
	}
	instalacionRol = resolverInstalacion(ambito, instalacionRol)
	if !ambito.PuedeVer(instalacionRol) {
		return nil, fmt.Errorf("%w: %s", ErrInstalacionFueraDeAmbito, instalacionRol)
	}

	clave := Clave("detalle", ambito.Huella(), instalacionRol)
	valor, hit, err := e.cache.Obtener(ctx, clave, ClaseInstantanea, func(ctx context.Context) (*Calculo, error) {
		soloEsta := []string{instalacionRol}

		grupo, gctx := errgroup.WithContext(ctx)
		var turnos []models.RegistroTurno
		var frescura time.Time
		var ppc []models.PuestoPorCubrir

		grupo.Go(func() error {
			var err error
			turnos, err = e.fuenteTurnos(gctx, soloEsta)
			frescura = frescuraDe(turnos)
			return err
		})
		grupo.Go(func() error {
			var err error
			ppc, err = e.fetcher.PPC(gctx, soloEsta)
			return err
		})
		if err := grupo.Wait(); err != nil {
			return nil, err
		}

		detalles := armarDetalles(turnos, ppc)
		detalle, ok := detalles[instalacionRol]
		if !ok {
			detalle = &models.DetalleInstalacion{
				Instalacion: instalacionRol,
				Turnos:      []models.TurnoDetalle{},
				PPCPorTurno: []models.GrupoPPC{},
			}
		}

		return &Calculo{Valor: detalle, Frescura: e.frescuraEfectiva(frescura)}, nil
	})
	if err != nil {
		return nil, err
	}
	e.logConsulta("detalle", ambito, hit)
	return valor.(*models.DetalleInstalacion), nil
}

// DetalleTodas es el ensamblador batch: trae el detalle de todas las
// instalaciones del ámbito con un único fetch masivo (turnos y PPC en
// paralelo) particionado en memoria, bajo una sola clave compuesta de cache.
// Nunca emite un fetch por instalación.
func (e *Engine) DetalleTodas(ctx context.Context, usuario *models.Usuario) ([]models.DetalleInstalacion, error) {
	ambito, err := e.resolver.Resolver(ctx, usuario)
	if err != nil {
		return nil, err
	}
	if err := VerificarAmbito(ambito, false); err != nil {
		return nil, err
	}

	clave := Clave("detalle_todas", ambito.Huella())
	valor, hit, err := e.cache.Obtener(ctx, clave, ClaseInstantanea, func(ctx context.Context) (*Calculo, error) {
		grupo, gctx := errgroup.WithContext(ctx)
		var turnos []models.RegistroTurno
		var frescura time.Time
		var ppc []models.PuestoPorCubrir

		grupo.Go(func() error {
			var err error
			turnos, err = e.fuenteTurnos(gctx, filtro(ambito))
			frescura = frescuraDe(turnos)
			return err
		})
		grupo.Go(func() error {
			var err error
			ppc, err = e.fetcher.PPC(gctx, filtro(ambito))
			return err
		})
		if err := grupo.Wait(); err != nil {
			return nil, err
		}

		detalles := armarDetalles(turnosEnAmbito(turnos, ambito), ppcEnAmbito(ppc, ambito))

		lista := make([]models.DetalleInstalacion, 0, len(detalles))
		for _, d := range detalles {
			lista = append(lista, *d)
		}
		sort.Slice(lista, func(i, j int) bool { return lista[i].Instalacion < lista[j].Instalacion })

		return &Calculo{Valor: lista, Frescura: e.frescuraEfectiva(frescura)}, nil
	})
	if err != nil {
		return nil, err
	}
	e.logConsulta("detalle_todas", ambito, hit)
	return valor.([]models.DetalleInstalacion), nil
}

// HistoricoSemanal retorna la cobertura agregada por semana ISO de los últimos
// `dias` días, de la más antigua a la más reciente. Las semanas cerradas se
// sirven de cache; la semana en curso se recalcula fresca en cada llamada.
func (e *Engine) HistoricoSemanal(ctx context.Context, usuario *models.Usuario, dias int) ([]models.SemanaHistorica, error) {
	return e.consultaHistorica(ctx, usuario, dias, "historico_semanal", e.historico.Semanas)
}

// HistoricoPorInstalacion retorna la cobertura por instalación y semana ISO.
func (e *Engine) HistoricoPorInstalacion(ctx context.Context, usuario *models.Usuario, dias int) ([]models.SemanaHistorica, error) {
	return e.consultaHistorica(ctx, usuario, dias, "historico_instalaciones", e.historico.SemanasPorInstalacion)
}

func (e *Engine) consultaHistorica(
	ctx context.Context,
	usuario *models.Usuario,
	dias int,
	operacion string,
	agregar func([]models.RegistroTurno, *models.AmbitoAcceso, time.Time) []models.SemanaHistorica,
) ([]models.SemanaHistorica, error) {
	if dias <= 0 {
		return nil, fmt.Errorf("%w: dias debe ser positivo, recibido %d", ErrParametroInvalido, dias)
	}

	ambito, err := e.resolver.Resolver(ctx, usuario)
	if err != nil {
		return nil, err
	}
	if err := VerificarAmbito(ambito, false); err != nil {
		return nil, err
	}

	ahora := e.reloj()
	hoy := time.Date(ahora.Year(), ahora.Month(), ahora.Day(), 0, 0, 0, 0, ahora.Location())
	desde := hoy.AddDate(0, 0, -dias)
	inicioSemanaActual := InicioSemanaISO(hoy)

	var cerradas []models.SemanaHistorica

	// Semanas cerradas: el origen ya no las modifica, la entrada solo cae por
	// invalidación explícita o presión LRU. La ventana entra a la clave para
	// que el cambio de día genere una clave nueva en vez de datos corridos.
	if desde.Before(inicioSemanaActual) {
		finCerradas := inicioSemanaActual.AddDate(0, 0, -1)
		clave := Clave(operacion, ambito.Huella(),
			desde.Format("2006-01-02"), finCerradas.Format("2006-01-02"))

		valor, hit, err := e.cache.Obtener(ctx, clave, ClaseHistorica, func(ctx context.Context) (*Calculo, error) {
			turnos, frescura, err := e.fetcher.Historico(ctx, desde, finCerradas, filtro(ambito))
			if err != nil {
				return nil, err
			}
			semanas := agregar(turnos, ambito, ahora)
			return &Calculo{Valor: semanas, Frescura: e.frescuraEfectiva(frescura)}, nil
		})
		if err != nil {
			return nil, err
		}
		e.logConsulta(operacion, ambito, hit)
		cerradas = valor.([]models.SemanaHistorica)
	}

	// Semana en curso: siempre recalculada, nunca servida como definitiva.
	inicioParcial := inicioSemanaActual
	if desde.After(inicioParcial) {
		inicioParcial = desde
	}
	turnos, _, err := e.fetcher.Historico(ctx, inicioParcial, hoy, filtro(ambito))
	if err != nil {
		return nil, err
	}
	enCurso := agregar(turnos, ambito, ahora)

	return append(append([]models.SemanaHistorica{}, cerradas...), enCurso...), nil
}

// PPCTotal retorna el total de puestos por cubrir del ámbito. Operación
// agregado-segura: ámbito vacío retorna cero.
func (e *Engine) PPCTotal(ctx context.Context, usuario *models.Usuario) (int, error) {
	ambito, err := e.resolver.Resolver(ctx, usuario)
	if err != nil {
		return 0, err
	}
	if err := VerificarAmbito(ambito, true); err != nil {
		return 0, err
	}
	if ambito.Vacio() {
		return 0, nil
	}

	clave := Clave("ppc_total", ambito.Huella())
	valor, hit, err := e.cache.Obtener(ctx, clave, ClaseInstantanea, func(ctx context.Context) (*Calculo, error) {
		ppc, err := e.fetcher.PPC(ctx, filtro(ambito))
		if err != nil {
			return nil, err
		}
		return &Calculo{Valor: len(ppcEnAmbito(ppc, ambito)), Frescura: e.frescuraEfectiva(time.Time{})}, nil
	})
	if err != nil {
		return 0, err
	}
	e.logConsulta("ppc_total", ambito, hit)
	return valor.(int), nil
}

// PPCTodasInstalaciones retorna los PPC de todas las instalaciones del ámbito
// agrupados por horario, con un solo fetch.
func (e *Engine) PPCTodasInstalaciones(ctx context.Context, usuario *models.Usuario) ([]models.ResumenPPC, error) {
	ambito, err := e.resolver.Resolver(ctx, usuario)
	if err != nil {
		return nil, err
	}
	if err := VerificarAmbito(ambito, false); err != nil {
		return nil, err
	}

	clave := Clave("ppc_instalaciones", ambito.Huella())
	valor, hit, err := e.cache.Obtener(ctx, clave, ClaseInstantanea, func(ctx context.Context) (*Calculo, error) {
		ppc, err := e.fetcher.PPC(ctx, filtro(ambito))
		if err != nil {
			return nil, err
		}
		return &Calculo{Valor: agruparPPC(ppcEnAmbito(ppc, ambito)), Frescura: e.frescuraEfectiva(time.Time{})}, nil
	})
	if err != nil {
		return nil, err
	}
	e.logConsulta("ppc_instalaciones", ambito, hit)
	return valor.([]models.ResumenPPC), nil
}

// PPCPorInstalacion retorna los PPC de una instalación agrupados por horario.
func (e *Engine) PPCPorInstalacion(ctx context.Context, usuario *models.Usuario, instalacionRol string) (*models.ResumenPPC, error) {
	ambito, err := e.resolver.Resolver(ctx, usuario)
	if err != nil {
		return nil, err
	}
	if err := VerificarAmbito(ambito, false); err != nil {
		return nil, err
	}
	instalacionRol = resolverInstalacion(ambito, instalacionRol)
	if !ambito.PuedeVer(instalacionRol) {
		return nil, fmt.Errorf("%w: %s", ErrInstalacionFueraDeAmbito, instalacionRol)
	}

	clave := Clave("ppc_instalacion", ambito.Huella(), instalacionRol)
	valor, hit, err := e.cache.Obtener(ctx, clave, ClaseInstantanea, func(ctx context.Context) (*Calculo, error) {
		ppc, err := e.fetcher.PPC(ctx, []string{instalacionRol})
		if err != nil {
			return nil, err
		}
		resumenes := agruparPPC(ppc)
		for i := range resumenes {
			if resumenes[i].Instalacion == instalacionRol {
				return &Calculo{Valor: &resumenes[i], Frescura: e.frescuraEfectiva(time.Time{})}, nil
			}
		}
		vacio := &models.ResumenPPC{Instalacion: instalacionRol, PPCPorTurno: []models.GrupoPPC{}}
		return &Calculo{Valor: vacio, Frescura: e.frescuraEfectiva(time.Time{})}, nil
	})
	if err != nil {
		return nil, err
	}
	e.logConsulta("ppc_instalacion", ambito, hit)
	return valor.(*models.ResumenPPC), nil
}

// fetchInstantaneo trae foto de cobertura y PPC en paralelo, ya filtrados al
// ámbito tanto en el warehouse como en memoria.
func (e *Engine) fetchInstantaneo(ctx context.Context, ambito *models.AmbitoAcceso) (*FotoCobertura, []models.PuestoPorCubrir, error) {
	grupo, gctx := errgroup.WithContext(ctx)

	var foto *FotoCobertura
	var ppc []models.PuestoPorCubrir

	grupo.Go(func() error {
		var err error
		foto, err = e.fetcher.Instantanea(gctx, filtro(ambito))
		return err
	})
	grupo.Go(func() error {
		var err error
		ppc, err = e.fetcher.PPC(gctx, filtro(ambito))
		return err
	})
	if err := grupo.Wait(); err != nil {
		return nil, nil, err
	}

	foto.Turnos = turnosEnAmbito(foto.Turnos, ambito)
	return foto, ppcEnAmbito(ppc, ambito), nil
}

func (e *Engine) fuenteTurnos(ctx context.Context, instalaciones []string) ([]models.RegistroTurno, error) {
	foto, err := e.fetcher.Instantanea(ctx, instalaciones)
	if err != nil {
		return nil, err
	}
	return foto.Turnos, nil
}

// resolverInstalacion admite identificadores con tildes o mayúsculas distintas
// a las del warehouse, resolviéndolos contra las instalaciones del ámbito.
func resolverInstalacion(ambito *models.AmbitoAcceso, instalacionRol string) string {
	if ambito.TodasInstalaciones || ambito.PuedeVer(instalacionRol) {
		return instalacionRol
	}
	return utils.ResolverInstalacion(utils.NormalizarInstalacion(instalacionRol), ambito.Instalaciones)
}

// frescuraEfectiva reemplaza una frescura desconocida (origen sin marca, por
// ejemplo PPC) por el límite del ciclo vigente, para no degradar la
// invariante de frescura del cache.
func (e *Engine) frescuraEfectiva(frescura time.Time) time.Time {
	if frescura.IsZero() {
		return e.cache.LimiteRefresco()
	}
	return frescura
}

func (e *Engine) logConsulta(operacion string, ambito *models.AmbitoAcceso, hit bool) {
	e.log.Debug("consulta de cobertura",
		zap.String("operacion", operacion),
		zap.String("usuario", ambito.Email),
		zap.String("rol", ambito.RolID),
		zap.Bool("cache_hit", hit),
	)
}

func turnosEnAmbito(turnos []models.RegistroTurno, ambito *models.AmbitoAcceso) []models.RegistroTurno {
	if ambito.TodasInstalaciones {
		return turnos
	}
	filtrados := turnos[:0:0]
	for _, t := range turnos {
		if ambito.PuedeVer(t.InstalacionRol) {
			filtrados = append(filtrados, t)
		}
	}
	return filtrados
}

func ppcEnAmbito(ppc []models.PuestoPorCubrir, ambito *models.AmbitoAcceso) []models.PuestoPorCubrir {
	if ambito.TodasInstalaciones {
		return ppc
	}
	filtrados := ppc[:0:0]
	for _, p := range ppc {
		if ambito.PuedeVer(p.InstalacionRol) {
			filtrados = append(filtrados, p)
		}
	}
	return filtrados
}

func empresasDistintas(turnos []models.RegistroTurno, ambito *models.AmbitoAcceso) []string {
	vistas := make(map[string]bool)
	empresas := []string{}
	for _, t := range turnos {
		if t.Empresa == "" || vistas[t.Empresa] || !ambito.PuedeVer(t.InstalacionRol) {
			continue
		}
		vistas[t.Empresa] = true
		empresas = append(empresas, t.Empresa)
	}
	sort.Strings(empresas)
	return empresas
}
