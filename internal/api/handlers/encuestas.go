package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/worldwide-sa/wfsa-api/internal/models"
	"github.com/worldwide-sa/wfsa-api/internal/services"
)

// EncuestasHandler expone las encuestas de satisfacción.
type EncuestasHandler struct {
	encuestas *services.Encuestas
	log       *zap.Logger
}

// NewEncuestasHandler crea el handler de encuestas.
func NewEncuestasHandler(encuestas *services.Encuestas, log *zap.Logger) *EncuestasHandler {
	return &EncuestasHandler{encuestas: encuestas, log: log}
}

// MisEncuestas godoc
// @Summary Encuestas de los períodos vigentes
// @Description Encuestas pendientes y completadas de los dos períodos bimestrales vigentes, agrupadas por instalación.
// @Tags encuestas
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.ResumenEncuestasInstalacion
// @Router /api/v1/encuestas/mis-encuestas [get]
func (h *EncuestasHandler) MisEncuestas(c *gin.Context) {
	usuario, ok := usuarioDe(c)
	if !ok {
		return
	}

	resumen, err := h.encuestas.MisEncuestas(c.Request.Context(), usuario)
	if err != nil {
		responderError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, resumen)
}

// Preguntas godoc
// @Summary Preguntas de una encuesta
// @Tags encuestas
// @Produce json
// @Security BearerAuth
// @Param encuesta_id path string true "Identificador de la encuesta"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/encuestas/{encuesta_id}/preguntas [get]
func (h *EncuestasHandler) Preguntas(c *gin.Context) {
	usuario, ok := usuarioDe(c)
	if !ok {
		return
	}
	encuestaID := c.Param("encuesta_id")

	encuesta, preguntas, err := h.encuestas.Preguntas(c.Request.Context(), usuario, encuestaID)
	if err != nil {
		responderError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"encuesta":  encuesta,
		"preguntas": preguntas,
	})
}

// Responder godoc
// @Summary Responder una encuesta
// @Description Registra las respuestas y marca la encuesta como completada. Una encuesta compartida la responde el primer usuario de la instalación que llegue.
// @Tags encuestas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param encuesta_id path string true "Identificador de la encuesta"
// @Param request body models.RespuestaEncuestaRequest true "Respuestas"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /api/v1/encuestas/{encuesta_id}/responder [post]
func (h *EncuestasHandler) Responder(c *gin.Context) {
	usuario, ok := usuarioDe(c)
	if !ok {
		return
	}
	encuestaID := c.Param("encuesta_id")

	var req models.RespuestaEncuestaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cuerpo inválido", "details": err.Error()})
		return
	}

	guardadas, err := h.encuestas.Responder(c.Request.Context(), usuario, encuestaID, req.Respuestas)
	if err != nil {
		responderError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"mensaje":              "Encuesta respondida",
		"respuestas_guardadas": guardadas,
	})
}

// Respuestas godoc
// @Summary Respuestas de una encuesta completada
// @Tags encuestas
// @Produce json
// @Security BearerAuth
// @Param encuesta_id path string true "Identificador de la encuesta"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /api/v1/encuestas/{encuesta_id}/respuestas [get]
func (h *EncuestasHandler) Respuestas(c *gin.Context) {
	usuario, ok := usuarioDe(c)
	if !ok {
		return
	}
	encuestaID := c.Param("encuesta_id")

	encuesta, respuestas, err := h.encuestas.VerRespuestas(c.Request.Context(), usuario, encuestaID)
	if err != nil {
		responderError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"encuesta":   encuesta,
		"respuestas": respuestas,
	})
}
