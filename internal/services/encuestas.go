package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/worldwide-sa/wfsa-api/internal/models"
)

// almacenEncuestas es lo que este servicio necesita del warehouse.
// *warehouse.Gestion lo satisface; los tests inyectan un almacén falso.
type almacenEncuestas interface {
	EncuestasDeUsuario(ctx context.Context, email string, periodos []string, soloPropias bool) ([]models.EncuestaSolicitud, error)
	EncuestaPorID(ctx context.Context, encuestaID string) (*models.EncuestaSolicitud, error)
	PreguntasActivas(ctx context.Context) ([]models.EncuestaPregunta, error)
	GuardarRespuestas(ctx context.Context, respuestas []models.EncuestaRespuesta) error
	MarcarCompletada(ctx context.Context, encuestaID, email, nombre, tipoRespuesta string) error
	RespuestasDeEncuesta(ctx context.Context, encuestaID string) ([]models.EncuestaRespuesta, error)
	PuedeVerInstalacion(ctx context.Context, email, instalacionRol string) (bool, error)
}

// Encuestas gestiona las encuestas de satisfacción bimestrales.
type Encuestas struct {
	gestion almacenEncuestas
	reloj   func() time.Time
	log     *zap.Logger
}

// NewEncuestas crea el servicio de encuestas. `reloj` nil usa time.Now.
func NewEncuestas(gestion almacenEncuestas, reloj func() time.Time, log *zap.Logger) *Encuestas {
	if reloj == nil {
		reloj = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Encuestas{gestion: gestion, reloj: reloj, log: log}
}

// PeriodosValidos calcula los dos períodos bimestrales vigentes en formato
// AAAAMM. Las encuestas se emiten solo en meses pares: en un mes impar el
// período en curso es el mes par anterior.
func PeriodosValidos(ahora time.Time) []string {
	ano, mes := ahora.Year(), int(ahora.Month())

	periodo := func(a, m int) string {
		return fmt.Sprintf("%04d%02d", a, m)
	}

	var enCurso, anterior string
	if mes%2 == 0 {
		enCurso = periodo(ano, mes)
		if mes == 2 {
			anterior = periodo(ano-1, 12)
		} else {
			anterior = periodo(ano, mes-2)
		}
	} else if mes == 1 {
		enCurso = periodo(ano-1, 12)
		anterior = periodo(ano-1, 10)
	} else {
		mesPar := mes - 1
		enCurso = periodo(ano, mesPar)
		if mesPar == 2 {
			anterior = periodo(ano-1, 12)
		} else {
			anterior = periodo(ano, mesPar-2)
		}
	}

	return []string{enCurso, anterior}
}

// MisEncuestas retorna las encuestas de los períodos vigentes agrupadas por
// instalación, anotadas con lo que el usuario puede hacer con cada una.
// Un rol CLIENTE solo ve las compartidas y sus individuales; la operación ve
// todas las de sus instalaciones.
func (s *Encuestas) MisEncuestas(ctx context.Context, usuario *models.Usuario) ([]models.ResumenEncuestasInstalacion, error) {
	esWFSA := usuario.EsWFSA()

	encuestas, err := s.gestion.EncuestasDeUsuario(ctx, usuario.Email, PeriodosValidos(s.reloj()), !esWFSA)
	if err != nil {
		return nil, err
	}

	porInstalacion := make(map[string]*models.ResumenEncuestasInstalacion)
	orden := []string{}

	for _, e := range encuestas {
		resumen, ok := porInstalacion[e.InstalacionRol]
		if !ok {
			resumen = &models.ResumenEncuestasInstalacion{
				ClienteRol:     e.ClienteRol,
				InstalacionRol: e.InstalacionRol,
				Encuestas:      []models.EncuestaVista{},
			}
			porInstalacion[e.InstalacionRol] = resumen
			orden = append(orden, e.InstalacionRol)
		}

		vista := models.EncuestaVista{EncuestaSolicitud: e}

		switch e.Estado {
		case models.EncuestaPendiente:
			vista.PuedeResponder = e.Modo == models.EncuestaCompartida ||
				(e.Modo == models.EncuestaIndividual && e.EmailDestinatario == usuario.Email)

			limite := e.FechaLimite
			if resumen.FechaVencimientoProxima == nil || limite.Before(*resumen.FechaVencimientoProxima) {
				resumen.FechaVencimientoProxima = &limite
			}
			resumen.Pendientes++

		case models.EncuestaCompletada:
			vista.PuedeVerRespuestas = esWFSA ||
				e.Modo == models.EncuestaCompartida ||
				(e.Modo == models.EncuestaIndividual && e.EmailDestinatario == usuario.Email)
			resumen.Respondidas++
		}

		resumen.Encuestas = append(resumen.Encuestas, vista)
		resumen.TotalEncuestas++
	}

	resumenes := make([]models.ResumenEncuestasInstalacion, 0, len(orden))
	for _, inst := range orden {
		resumenes = append(resumenes, *porInstalacion[inst])
	}
	return resumenes, nil
}

// Preguntas retorna la solicitud y el cuestionario vigente, verificando que
// la instalación de la encuesta sea visible para el usuario.
func (s *Encuestas) Preguntas(ctx context.Context, usuario *models.Usuario, encuestaID string) (*models.EncuestaSolicitud, []models.EncuestaPregunta, error) {
	encuesta, err := s.gestion.EncuestaPorID(ctx, encuestaID)
	if err != nil {
		return nil, nil, err
	}

	if err := s.verificarAcceso(ctx, usuario, encuesta.InstalacionRol); err != nil {
		return nil, nil, err
	}

	preguntas, err := s.gestion.PreguntasActivas(ctx)
	if err != nil {
		return nil, nil, err
	}
	return encuesta, preguntas, nil
}

// Responder guarda las respuestas y cierra la solicitud. Aplica las reglas de
// modo: una individual solo la responde su destinatario, una compartida la
// responde el primero que llegue.
func (s *Encuestas) Responder(ctx context.Context, usuario *models.Usuario, encuestaID string, respuestas []models.RespuestaPregunta) (int, error) {
	encuesta, err := s.gestion.EncuestaPorID(ctx, encuestaID)
	if err != nil {
		return 0, err
	}

	if encuesta.Modo == models.EncuestaIndividual && encuesta.EmailDestinatario != usuario.Email {
		return 0, ErrEncuestaNoAutorizada
	}
	if encuesta.Estado == models.EncuestaCompletada {
		if encuesta.Modo == models.EncuestaCompartida {
			return 0, fmt.Errorf("%w por %s", ErrEncuestaYaRespondida, encuesta.RespondidoPorNombre)
		}
		return 0, ErrEncuestaYaRespondida
	}

	ahora := s.reloj()
	if encuesta.FechaLimite.Before(ahora) {
		return 0, ErrEncuestaExpirada
	}

	filas := make([]models.EncuestaRespuesta, 0, len(respuestas))
	for _, r := range respuestas {
		filas = append(filas, models.EncuestaRespuesta{
			RespuestaID:    uuid.New().String(),
			EncuestaID:     encuestaID,
			PreguntaID:     r.PreguntaID,
			RespuestaValor: r.RespuestaValor,
			Comentario:     r.Comentario,
			FechaRespuesta: ahora,
		})
	}

	if err := s.gestion.GuardarRespuestas(ctx, filas); err != nil {
		return 0, err
	}

	tipoRespuesta := "wfsa"
	if usuario.RolID == models.RolCliente {
		tipoRespuesta = "cliente"
	}
	nombre := usuario.NombreCompleto
	if nombre == "" {
		nombre = usuario.Email
	}
	if err := s.gestion.MarcarCompletada(ctx, encuestaID, usuario.Email, nombre, tipoRespuesta); err != nil {
		return 0, err
	}

	s.log.Info("encuesta respondida",
		zap.String("encuesta_id", encuestaID),
		zap.String("email", usuario.Email),
		zap.Int("respuestas", len(filas)),
	)
	return len(filas), nil
}

// VerRespuestas retorna las respuestas de una encuesta completada.
func (s *Encuestas) VerRespuestas(ctx context.Context, usuario *models.Usuario, encuestaID string) (*models.EncuestaSolicitud, []models.EncuestaRespuesta, error) {
	encuesta, err := s.gestion.EncuestaPorID(ctx, encuestaID)
	if err != nil {
		return nil, nil, err
	}

	if !usuario.EsWFSA() &&
		encuesta.Modo == models.EncuestaIndividual &&
		encuesta.EmailDestinatario != usuario.Email {
		return nil, nil, ErrEncuestaNoAutorizada
	}
	if encuesta.Estado != models.EncuestaCompletada {
		return nil, nil, ErrEncuestaSinResponder
	}

	respuestas, err := s.gestion.RespuestasDeEncuesta(ctx, encuestaID)
	if err != nil {
		return nil, nil, err
	}
	return encuesta, respuestas, nil
}

func (s *Encuestas) verificarAcceso(ctx context.Context, usuario *models.Usuario, instalacionRol string) error {
	if usuario.RolID == models.RolAdmin || usuario.RolID == models.RolJefe || usuario.Permisos.VerTodasInstalaciones {
		return nil
	}
	puede, err := s.gestion.PuedeVerInstalacion(ctx, usuario.Email, instalacionRol)
	if err != nil {
		return err
	}
	if !puede {
		return fmt.Errorf("%w: instalación %s", ErrSinPermiso, instalacionRol)
	}
	return nil
}
