package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/worldwide-sa/wfsa-api/internal/api/handlers"
	"github.com/worldwide-sa/wfsa-api/internal/auth"
	"github.com/worldwide-sa/wfsa-api/internal/coverage"
	middlewares "github.com/worldwide-sa/wfsa-api/internal/middleware"
	"github.com/worldwide-sa/wfsa-api/internal/services"
	"github.com/worldwide-sa/wfsa-api/internal/warehouse"
)

// Dependencias son los componentes ya construidos que el router necesita.
type Dependencias struct {
	Engine      *coverage.Engine
	Cliente     *warehouse.Cliente
	Verificador auth.VerificadorToken
	Usuarios    *services.Usuarios
	Encuestas   *services.Encuestas
	Mensajeria  *services.Mensajeria
	Log         *zap.Logger
}

// SetupRouter arma el router gin con middlewares, probes y rutas de la API.
func SetupRouter(deps Dependencias) *gin.Engine {
	r := gin.Default()

	r.Use(corsMiddleware())
	r.Use(middlewares.RequestTracing())

	health := handlers.NewHealthHandler(deps.Cliente)
	r.GET("/liveness", health.Liveness)
	r.GET("/readiness", health.Readiness)
	r.GET("/health", health.Readiness)

	cobertura := handlers.NewCoberturaHandler(deps.Engine, deps.Log)
	ppc := handlers.NewPPCHandler(deps.Engine, deps.Log)
	encuestas := handlers.NewEncuestasHandler(deps.Encuestas, deps.Log)
	mensajeria := handlers.NewMensajeriaHandler(deps.Mensajeria, deps.Log)
	usuario := handlers.NewUsuarioHandler(deps.Usuarios, deps.Log)
	admin := handlers.NewAdminHandler(deps.Engine, deps.Log)

	api := r.Group("/api/v1")
	api.Use(middlewares.AuthMiddleware(deps.Verificador, deps.Usuarios, deps.Log))
	{
		api.GET("/usuario/me", usuario.Me)
		api.POST("/usuario/fcm-token", usuario.ActualizarTokenFCM)

		grupoCobertura := api.Group("/cobertura", middlewares.RequireCobertura())
		{
			grupoCobertura.GET("/general", cobertura.General)
			grupoCobertura.GET("/instalaciones", cobertura.PorInstalacion)
			grupoCobertura.GET("/detalle", cobertura.DetalleTodas)
			grupoCobertura.GET("/detalle/:instalacion_rol", cobertura.Detalle)
			grupoCobertura.GET("/historico", cobertura.Historico)
			grupoCobertura.GET("/historico/instalaciones", cobertura.HistoricoPorInstalacion)
		}

		grupoPPC := api.Group("/ppc", middlewares.RequireCobertura())
		{
			grupoPPC.GET("/total", ppc.Total)
			grupoPPC.GET("/instalaciones", ppc.Todas)
			grupoPPC.GET("/instalaciones/:instalacion_rol", ppc.PorInstalacion)
		}

		grupoEncuestas := api.Group("/encuestas", middlewares.RequireEncuestas())
		{
			grupoEncuestas.GET("/mis-encuestas", encuestas.MisEncuestas)
			grupoEncuestas.GET("/:encuesta_id/preguntas", encuestas.Preguntas)
			grupoEncuestas.POST("/:encuesta_id/responder", encuestas.Responder)
			grupoEncuestas.GET("/:encuesta_id/respuestas", encuestas.Respuestas)
		}

		api.GET("/contactos/:instalacion_rol", mensajeria.ContactosInstalacion)

		grupoWhatsapp := api.Group("/whatsapp")
		{
			grupoWhatsapp.POST("/enviar", middlewares.RequireEnvioMensajes(), mensajeria.EnviarMensaje)
			grupoWhatsapp.GET("/recibidos", mensajeria.MensajesRecibidos)
		}

		grupoMensajeria := api.Group("/mensajeria")
		{
			grupoMensajeria.GET("/contactos/:email", mensajeria.ContactosDeUsuario)
			grupoMensajeria.GET("/usuarios-wfsa/:instalacion_rol", mensajeria.UsuariosWFSA)
		}

		grupoAdmin := api.Group("/admin", middlewares.RequireAdmin())
		{
			grupoAdmin.POST("/cache/invalidar", admin.InvalidarCache)
		}
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
