package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/worldwide-sa/wfsa-api/internal/models"
	"github.com/worldwide-sa/wfsa-api/internal/services"
)

// UsuarioHandler expone el perfil del usuario autenticado.
type UsuarioHandler struct {
	usuarios *services.Usuarios
	log      *zap.Logger
}

// NewUsuarioHandler crea el handler de usuario.
func NewUsuarioHandler(usuarios *services.Usuarios, log *zap.Logger) *UsuarioHandler {
	return &UsuarioHandler{usuarios: usuarios, log: log}
}

// Me godoc
// @Summary Perfil y permisos del usuario autenticado
// @Tags usuario
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Usuario
// @Failure 401 {object} map[string]string
// @Router /api/v1/usuario/me [get]
func (h *UsuarioHandler) Me(c *gin.Context) {
	usuario, ok := usuarioDe(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, usuario)
}

// ActualizarTokenFCM godoc
// @Summary Actualizar el token de notificaciones push
// @Tags usuario
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.FCMTokenRequest true "Token FCM del dispositivo"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /api/v1/usuario/fcm-token [post]
func (h *UsuarioHandler) ActualizarTokenFCM(c *gin.Context) {
	usuario, ok := usuarioDe(c)
	if !ok {
		return
	}

	var req models.FCMTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cuerpo inválido", "details": err.Error()})
		return
	}

	if err := h.usuarios.ActualizarTokenFCM(c.Request.Context(), usuario.Email, req.FCMToken); err != nil {
		responderError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "Token actualizado"})
}
