package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/worldwide-sa/wfsa-api/internal/auth"
	"github.com/worldwide-sa/wfsa-api/internal/coverage"
	middlewares "github.com/worldwide-sa/wfsa-api/internal/middleware"
	"github.com/worldwide-sa/wfsa-api/internal/models"
	"github.com/worldwide-sa/wfsa-api/internal/services"
	"github.com/worldwide-sa/wfsa-api/internal/warehouse"
)

// responderError traduce los errores centinela de los servicios a códigos
// HTTP. Los errores no clasificados se registran y salen como 500 sin
// detalle interno.
func responderError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, coverage.ErrNoAutorizado), errors.Is(err, auth.ErrTokenInvalido):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No autorizado"})
	case errors.Is(err, coverage.ErrAccesoDenegado):
		c.JSON(http.StatusForbidden, gin.H{"error": "No tiene instalaciones asignadas"})
	case errors.Is(err, coverage.ErrInstalacionFueraDeAmbito):
		c.JSON(http.StatusForbidden, gin.H{"error": "Instalación fuera de su ámbito de acceso"})
	case errors.Is(err, services.ErrSinPermiso), errors.Is(err, services.ErrEncuestaNoAutorizada):
		c.JSON(http.StatusForbidden, gin.H{"error": "Acceso denegado"})
	case errors.Is(err, services.ErrUsuarioInactivo):
		c.JSON(http.StatusForbidden, gin.H{"error": "Usuario desactivado"})
	case errors.Is(err, coverage.ErrParametroInvalido):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Parámetro inválido", "details": err.Error()})
	case errors.Is(err, services.ErrEncuestaYaRespondida),
		errors.Is(err, services.ErrEncuestaExpirada),
		errors.Is(err, services.ErrEncuestaSinResponder):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrUsuarioNoEncontrado), errors.Is(err, warehouse.ErrNoEncontrado):
		c.JSON(http.StatusNotFound, gin.H{"error": "Recurso no encontrado"})
	case errors.Is(err, warehouse.ErrFuenteNoDisponible):
		log.Error("fuente de datos no disponible", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Fuente de datos no disponible, intente más tarde"})
	case errors.Is(err, warehouse.ErrEsquemaIncompatible):
		log.Error("esquema del warehouse incompatible", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno del servidor"})
	default:
		log.Error("error no clasificado", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno del servidor"})
	}
}

// usuarioDe retorna el usuario autenticado o corta con 401.
func usuarioDe(c *gin.Context) (*models.Usuario, bool) {
	usuario := middlewares.UsuarioActual(c)
	if usuario == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Usuario no autenticado"})
		return nil, false
	}
	return usuario, true
}
