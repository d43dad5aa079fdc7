package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/worldwide-sa/wfsa-api/internal/auth"
	"github.com/worldwide-sa/wfsa-api/internal/models"
	"github.com/worldwide-sa/wfsa-api/internal/services"
)

// UsuarioKey es la clave del contexto gin donde queda el usuario resuelto.
const UsuarioKey = "usuario_actual"

// AuthMiddleware verifica el token Firebase del header Authorization y
// resuelve la identidad contra el padrón de usuarios. El *models.Usuario
// resultante queda disponible para los handlers vía UsuarioActual.
func AuthMiddleware(verificador auth.VerificadorToken, usuarios *services.Usuarios, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token no proporcionado"})
			c.Abort()
			return
		}

		idToken := strings.TrimPrefix(authHeader, "Bearer ")
		if idToken == authHeader || idToken == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Formato de autorización inválido"})
			c.Abort()
			return
		}

		identidad, err := verificador.Verificar(c.Request.Context(), idToken)
		if err != nil {
			if !errors.Is(err, auth.ErrTokenInvalido) {
				log.Warn("error verificando token", zap.Error(err))
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token inválido o expirado"})
			c.Abort()
			return
		}

		usuario, err := usuarios.ResolverIdentidad(c.Request.Context(), identidad)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUsuarioNoEncontrado):
				c.JSON(http.StatusNotFound, gin.H{"error": "Usuario no registrado en la plataforma"})
			case errors.Is(err, services.ErrUsuarioInactivo):
				c.JSON(http.StatusForbidden, gin.H{"error": "Usuario desactivado"})
			default:
				log.Error("error resolviendo identidad", zap.String("email", identidad.Email), zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No fue posible validar el usuario"})
			}
			c.Abort()
			return
		}

		c.Set(UsuarioKey, usuario)
		c.Next()
	}
}

// UsuarioActual retorna el usuario autenticado del contexto, o nil si el
// middleware de autenticación no corrió.
func UsuarioActual(c *gin.Context) *models.Usuario {
	valor, existe := c.Get(UsuarioKey)
	if !existe {
		return nil
	}
	usuario, ok := valor.(*models.Usuario)
	if !ok {
		return nil
	}
	return usuario
}

// RequirePermiso corta con 403 cuando el permiso indicado no está asignado.
func RequirePermiso(permiso func(models.Permisos) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		usuario := UsuarioActual(c)
		if usuario == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Usuario no autenticado"})
			c.Abort()
			return
		}
		if !permiso(usuario.Permisos) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Acceso denegado: permiso insuficiente"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireCobertura exige el permiso de consulta de cobertura.
func RequireCobertura() gin.HandlerFunc {
	return RequirePermiso(func(p models.Permisos) bool { return p.PuedeVerCobertura })
}

// RequireEncuestas exige el permiso de encuestas.
func RequireEncuestas() gin.HandlerFunc {
	return RequirePermiso(func(p models.Permisos) bool { return p.PuedeVerEncuestas })
}

// RequireEnvioMensajes exige el permiso de envío de mensajes.
func RequireEnvioMensajes() gin.HandlerFunc {
	return RequirePermiso(func(p models.Permisos) bool { return p.PuedeEnviarMensajes })
}

// RequireAdmin exige la marca de administrador.
func RequireAdmin() gin.HandlerFunc {
	return RequirePermiso(func(p models.Permisos) bool { return p.EsAdmin })
}
