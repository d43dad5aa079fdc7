package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/worldwide-sa/wfsa-api/internal/models"
	"github.com/worldwide-sa/wfsa-api/internal/services"
)

// MensajeriaHandler expone contactos de instalación y mensajería WhatsApp.
type MensajeriaHandler struct {
	mensajeria *services.Mensajeria
	log        *zap.Logger
}

// NewMensajeriaHandler crea el handler de mensajería.
func NewMensajeriaHandler(mensajeria *services.Mensajeria, log *zap.Logger) *MensajeriaHandler {
	return &MensajeriaHandler{mensajeria: mensajeria, log: log}
}

// ContactosInstalacion godoc
// @Summary Contactos activos de una instalación
// @Tags mensajeria
// @Produce json
// @Security BearerAuth
// @Param instalacion_rol path string true "Identificador de la instalación"
// @Success 200 {array} models.Contacto
// @Router /api/v1/contactos/{instalacion_rol} [get]
func (h *MensajeriaHandler) ContactosInstalacion(c *gin.Context) {
	usuario, ok := usuarioDe(c)
	if !ok {
		return
	}
	instalacionRol := c.Param("instalacion_rol")

	contactos, err := h.mensajeria.ContactosInstalacion(c.Request.Context(), usuario, instalacionRol)
	if err != nil {
		responderError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, contactos)
}

// EnviarMensaje godoc
// @Summary Registrar un mensaje WhatsApp
// @Description Registra el mensaje para cada contacto contactable de las instalaciones indicadas. El despacho lo ejecuta un proceso externo.
// @Tags mensajeria
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.EnviarMensajeRequest true "Mensaje e instalaciones destino"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /api/v1/whatsapp/enviar [post]
func (h *MensajeriaHandler) EnviarMensaje(c *gin.Context) {
	usuario, ok := usuarioDe(c)
	if !ok {
		return
	}

	var req models.EnviarMensajeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cuerpo inválido", "details": err.Error()})
		return
	}

	registrados, err := h.mensajeria.EnviarMensaje(c.Request.Context(), usuario, &req)
	if err != nil {
		responderError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"mensajes_registrados": registrados,
		"total":                len(registrados),
	})
}

// MensajesRecibidos godoc
// @Summary Mensajes recibidos por el usuario
// @Tags mensajeria
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.MensajeRecibido
// @Failure 403 {object} map[string]string
// @Router /api/v1/whatsapp/recibidos [get]
func (h *MensajeriaHandler) MensajesRecibidos(c *gin.Context) {
	usuario, ok := usuarioDe(c)
	if !ok {
		return
	}

	mensajes, err := h.mensajeria.MensajesRecibidos(c.Request.Context(), usuario)
	if err != nil {
		responderError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, mensajes)
}

// ContactosDeUsuario godoc
// @Summary Clientes que comparten instalaciones con un usuario
// @Description Consultar contactos de otro usuario requiere permiso de administrador.
// @Tags mensajeria
// @Produce json
// @Security BearerAuth
// @Param email path string true "Email del usuario consultado"
// @Success 200 {array} models.UsuarioMensajeria
// @Failure 403 {object} map[string]string
// @Router /api/v1/mensajeria/contactos/{email} [get]
func (h *MensajeriaHandler) ContactosDeUsuario(c *gin.Context) {
	usuario, ok := usuarioDe(c)
	if !ok {
		return
	}
	email := c.Param("email")

	contactos, err := h.mensajeria.ContactosDeUsuario(c.Request.Context(), usuario, email)
	if err != nil {
		responderError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, contactos)
}

// UsuariosWFSA godoc
// @Summary Usuarios de la operación asignados a una instalación
// @Tags mensajeria
// @Produce json
// @Security BearerAuth
// @Param instalacion_rol path string true "Identificador de la instalación"
// @Success 200 {array} models.UsuarioMensajeria
// @Router /api/v1/mensajeria/usuarios-wfsa/{instalacion_rol} [get]
func (h *MensajeriaHandler) UsuariosWFSA(c *gin.Context) {
	if _, ok := usuarioDe(c); !ok {
		return
	}
	instalacionRol := c.Param("instalacion_rol")

	usuarios, err := h.mensajeria.UsuariosWFSAInstalacion(c.Request.Context(), instalacionRol)
	if err != nil {
		responderError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, usuarios)
}
