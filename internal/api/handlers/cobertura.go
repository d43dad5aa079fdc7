package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/worldwide-sa/wfsa-api/internal/coverage"
)

// CoberturaHandler expone las métricas de cobertura de guardias.
type CoberturaHandler struct {
	engine *coverage.Engine
	log    *zap.Logger
}

// NewCoberturaHandler crea el handler de cobertura.
func NewCoberturaHandler(engine *coverage.Engine, log *zap.Logger) *CoberturaHandler {
	return &CoberturaHandler{engine: engine, log: log}
}

// General godoc
// @Summary Resumen general de cobertura
// @Description Porcentaje agregado de cobertura sobre todas las instalaciones visibles para el usuario, con estado de semáforo.
// @Tags cobertura
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.ResumenGeneral
// @Failure 401 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/v1/cobertura/general [get]
func (h *CoberturaHandler) General(c *gin.Context) {
	usuario, ok := usuarioDe(c)
	if !ok {
		return
	}

	resumen, err := h.engine.CoberturaGeneral(c.Request.Context(), usuario)
	if err != nil {
		responderError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, resumen)
}

// PorInstalacion godoc
// @Summary Cobertura por instalación
// @Description Métricas de cobertura de cada instalación visible, ordenadas de peor a mejor cobertura.
// @Tags cobertura
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.MetricaCobertura
// @Failure 403 {object} map[string]string
// @Router /api/v1/cobertura/instalaciones [get]
func (h *CoberturaHandler) PorInstalacion(c *gin.Context) {
	usuario, ok := usuarioDe(c)
	if !ok {
		return
	}

	metricas, err := h.engine.CoberturaPorInstalacion(c.Request.Context(), usuario)
	if err != nil {
		responderError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, metricas)
}

// Detalle godoc
// @Summary Detalle de turnos de una instalación
// @Description Turnos del día con puntualidad por guardia y puestos por cubrir agrupados por turno.
// @Tags cobertura
// @Produce json
// @Security BearerAuth
// @Param instalacion_rol path string true "Identificador de la instalación"
// @Success 200 {object} models.DetalleInstalacion
// @Failure 403 {object} map[string]string
// @Router /api/v1/cobertura/detalle/{instalacion_rol} [get]
func (h *CoberturaHandler) Detalle(c *gin.Context) {
	usuario, ok := usuarioDe(c)
	if !ok {
		return
	}
	instalacionRol := c.Param("instalacion_rol")

	detalle, err := h.engine.DetalleInstalacion(c.Request.Context(), usuario, instalacionRol)
	if err != nil {
		responderError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, detalle)
}

// DetalleTodas godoc
// @Summary Detalle de turnos de todas las instalaciones visibles
// @Tags cobertura
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.DetalleInstalacion
// @Failure 403 {object} map[string]string
// @Router /api/v1/cobertura/detalle [get]
func (h *CoberturaHandler) DetalleTodas(c *gin.Context) {
	usuario, ok := usuarioDe(c)
	if !ok {
		return
	}

	detalles, err := h.engine.DetalleTodas(c.Request.Context(), usuario)
	if err != nil {
		responderError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, detalles)
}

// Historico godoc
// @Summary Histórico semanal agregado
// @Description Cobertura por semana ISO dentro de la ventana solicitada, de la más antigua a la más reciente. La semana en curso se recalcula siempre con datos frescos.
// @Tags cobertura
// @Produce json
// @Security BearerAuth
// @Param dias query int false "Días hacia atrás de la ventana" minimum(1)
// @Success 200 {array} models.SemanaHistorica
// @Failure 400 {object} map[string]string
// @Router /api/v1/cobertura/historico [get]
func (h *CoberturaHandler) Historico(c *gin.Context) {
	usuario, ok := usuarioDe(c)
	if !ok {
		return
	}
	dias, ok := h.parseDias(c)
	if !ok {
		return
	}

	semanas, err := h.engine.HistoricoSemanal(c.Request.Context(), usuario, dias)
	if err != nil {
		responderError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, semanas)
}

// HistoricoPorInstalacion godoc
// @Summary Histórico semanal por instalación
// @Tags cobertura
// @Produce json
// @Security BearerAuth
// @Param dias query int false "Días hacia atrás de la ventana" minimum(1)
// @Success 200 {array} models.SemanaHistorica
// @Failure 400 {object} map[string]string
// @Router /api/v1/cobertura/historico/instalaciones [get]
func (h *CoberturaHandler) HistoricoPorInstalacion(c *gin.Context) {
	usuario, ok := usuarioDe(c)
	if !ok {
		return
	}
	dias, ok := h.parseDias(c)
	if !ok {
		return
	}

	semanas, err := h.engine.HistoricoPorInstalacion(c.Request.Context(), usuario, dias)
	if err != nil {
		responderError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, semanas)
}

// parseDias lee el query param `dias`, con el default configurado del motor.
func (h *CoberturaHandler) parseDias(c *gin.Context) (int, bool) {
	valor := c.Query("dias")
	if valor == "" {
		return h.engine.DiasDefault(), true
	}
	dias, err := strconv.Atoi(valor)
	if err != nil || dias < 1 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Parámetro dias inválido",
			"details": "dias debe ser un entero mayor o igual a 1",
		})
		return 0, false
	}
	return dias, true
}
