package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/worldwide-sa/wfsa-api/internal/coverage"
)

// PPCHandler expone los puestos por cubrir.
type PPCHandler struct {
	engine *coverage.Engine
	log    *zap.Logger
}

// NewPPCHandler crea el handler de puestos por cubrir.
func NewPPCHandler(engine *coverage.Engine, log *zap.Logger) *PPCHandler {
	return &PPCHandler{engine: engine, log: log}
}

// Total godoc
// @Summary Total de puestos por cubrir
// @Description Conteo agregado de puestos sin guardia asignado en las instalaciones visibles.
// @Tags ppc
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]int
// @Router /api/v1/ppc/total [get]
func (h *PPCHandler) Total(c *gin.Context) {
	usuario, ok := usuarioDe(c)
	if !ok {
		return
	}

	total, err := h.engine.PPCTotal(c.Request.Context(), usuario)
	if err != nil {
		responderError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total_ppc": total})
}

// Todas godoc
// @Summary Puestos por cubrir por instalación
// @Description Puestos sin cubrir de cada instalación visible, agrupados por turno y horario.
// @Tags ppc
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.ResumenPPC
// @Failure 403 {object} map[string]string
// @Router /api/v1/ppc/instalaciones [get]
func (h *PPCHandler) Todas(c *gin.Context) {
	usuario, ok := usuarioDe(c)
	if !ok {
		return
	}

	resumenes, err := h.engine.PPCTodasInstalaciones(c.Request.Context(), usuario)
	if err != nil {
		responderError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, resumenes)
}

// PorInstalacion godoc
// @Summary Puestos por cubrir de una instalación
// @Tags ppc
// @Produce json
// @Security BearerAuth
// @Param instalacion_rol path string true "Identificador de la instalación"
// @Success 200 {object} models.ResumenPPC
// @Failure 403 {object} map[string]string
// @Router /api/v1/ppc/instalaciones/{instalacion_rol} [get]
func (h *PPCHandler) PorInstalacion(c *gin.Context) {
	usuario, ok := usuarioDe(c)
	if !ok {
		return
	}
	instalacionRol := c.Param("instalacion_rol")

	resumen, err := h.engine.PPCPorInstalacion(c.Request.Context(), usuario, instalacionRol)
	if err != nil {
		responderError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, resumen)
}
