package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/worldwide-sa/wfsa-api/internal/coverage"
)

// AdminHandler expone operaciones administrativas del motor de cobertura.
type AdminHandler struct {
	engine *coverage.Engine
	log    *zap.Logger
}

// NewAdminHandler crea el handler administrativo.
func NewAdminHandler(engine *coverage.Engine, log *zap.Logger) *AdminHandler {
	return &AdminHandler{engine: engine, log: log}
}

// InvalidarCache godoc
// @Summary Invalidar el cache de cobertura
// @Description Vacía todas las entradas del cache. La siguiente consulta de cada operación recalcula contra el warehouse.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /api/v1/admin/cache/invalidar [post]
func (h *AdminHandler) InvalidarCache(c *gin.Context) {
	usuario, ok := usuarioDe(c)
	if !ok {
		return
	}

	h.engine.Invalidar()
	h.log.Info("cache invalidado por administrador", zap.String("email", usuario.Email))
	c.JSON(http.StatusOK, gin.H{"mensaje": "Cache invalidado"})
}
