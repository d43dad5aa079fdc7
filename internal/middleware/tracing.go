package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// RequestTracing abre un span OpenTelemetry por request HTTP.
func RequestTracing() gin.HandlerFunc {
	return func(c *gin.Context) {
		inicio := time.Now()

		ctx, span := otel.Tracer("http").Start(c.Request.Context(), "http.request")
		defer span.End()

		span.SetAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", c.FullPath()),
			attribute.String("http.client_ip", c.ClientIP()),
			attribute.String("http.host", c.Request.Host),
		)

		c.Request = c.Request.WithContext(ctx)

		c.Next()

		duracion := time.Since(inicio)
		status := c.Writer.Status()

		span.SetAttributes(
			attribute.Int("http.status_code", status),
			attribute.Int64("http.duration_ms", duracion.Milliseconds()),
			attribute.Int("http.response_size", c.Writer.Size()),
		)

		if usuario := UsuarioActual(c); usuario != nil {
			span.SetAttributes(attribute.String("usuario.rol", usuario.RolID))
		}

		if status >= 400 {
			span.SetStatus(codes.Error, "request con error")
			if len(c.Errors) > 0 {
				span.SetAttributes(attribute.String("http.error_message", c.Errors.String()))
			}
		} else {
			span.SetStatus(codes.Ok, "request exitoso")
		}
	}
}
