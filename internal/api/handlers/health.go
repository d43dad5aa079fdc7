package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/worldwide-sa/wfsa-api/internal/warehouse"
)

// HealthHandler expone los probes de salud del servicio.
type HealthHandler struct {
	cliente *warehouse.Cliente
}

// NewHealthHandler crea el handler de health check.
func NewHealthHandler(cliente *warehouse.Cliente) *HealthHandler {
	return &HealthHandler{cliente: cliente}
}

// HealthResponse es la respuesta de los probes.
type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks,omitempty"`
	Error     string            `json:"error,omitempty"`
	Timestamp int64             `json:"timestamp"`
}

// Liveness godoc
// @Summary Liveness probe
// @Description Confirma que el proceso está vivo, sin tocar dependencias externas.
// @Tags health
// @Produce json
// @Success 200 {object} handlers.HealthResponse
// @Router /liveness [get]
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "alive",
		Timestamp: time.Now().Unix(),
	})
}

// Readiness godoc
// @Summary Readiness probe
// @Description Verifica la conectividad con BigQuery antes de aceptar tráfico.
// @Tags health
// @Produce json
// @Success 200 {object} handlers.HealthResponse
// @Failure 503 {object} handlers.HealthResponse
// @Router /readiness [get]
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	response := HealthResponse{
		Status:    "ready",
		Checks:    make(map[string]string),
		Timestamp: time.Now().Unix(),
	}

	if err := h.cliente.Ping(ctx); err != nil {
		response.Checks["bigquery"] = "failed"
		response.Status = "not_ready"
		response.Error = "BigQuery no disponible"
	} else {
		response.Checks["bigquery"] = "ok"
	}

	statusCode := http.StatusOK
	if response.Status == "not_ready" {
		statusCode = http.StatusServiceUnavailable
	}
	c.JSON(statusCode, response)
}
