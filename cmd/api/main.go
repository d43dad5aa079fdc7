package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	_ "github.com/worldwide-sa/wfsa-api/docs"
	"github.com/worldwide-sa/wfsa-api/internal/api/routes"
	"github.com/worldwide-sa/wfsa-api/internal/auth"
	"github.com/worldwide-sa/wfsa-api/internal/config"
	"github.com/worldwide-sa/wfsa-api/internal/coverage"
	"github.com/worldwide-sa/wfsa-api/internal/observability"
	"github.com/worldwide-sa/wfsa-api/internal/services"
	"github.com/worldwide-sa/wfsa-api/internal/warehouse"
)

// @title           WFSA Cobertura API
// @version         1.0
// @description     API de métricas de cobertura de guardias, puestos por cubrir, encuestas de satisfacción y mensajería para clientes de Worldwide Security.

// @contact.name   Worldwide Security SA

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("configuración inválida: %v", err)
	}

	logger, err := nuevoLogger(cfg)
	if err != nil {
		log.Fatalf("no se pudo crear el logger: %v", err)
	}
	defer logger.Sync()

	observability.InitTracer(cfg, logger)
	defer observability.ShutdownTracer(logger)

	ctx := context.Background()

	cliente, err := warehouse.NewCliente(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("no se pudo conectar a BigQuery", zap.Error(err))
	}
	defer cliente.Close()

	verificador, err := auth.NewVerificadorFirebase(ctx, cfg)
	if err != nil {
		logger.Fatal("no se pudo inicializar Firebase", zap.Error(err))
	}

	reportes := warehouse.NewReportes(cliente)
	gestion := warehouse.NewGestion(cliente)

	clasificador := coverage.NewClasificador(cfg.SemaforoVerde, cfg.SemaforoAmarillo)
	cache := coverage.NewCacheCobertura(cfg.CacheTTL, cfg.CadenciaRefresco, cfg.CacheMaxEntradas, nil)
	engine := coverage.NewEngine(
		reportes,
		gestion,
		clasificador,
		cache,
		cfg.CadenciaRefresco,
		cfg.DiasHistoricoDefault,
		nil,
		logger,
	)

	usuarios := services.NewUsuarios(gestion, logger)
	encuestas := services.NewEncuestas(gestion, nil, logger)
	mensajeria := services.NewMensajeria(gestion, logger)

	r := routes.SetupRouter(routes.Dependencias{
		Engine:      engine,
		Cliente:     cliente,
		Verificador: verificador,
		Usuarios:    usuarios,
		Encuestas:   encuestas,
		Mensajeria:  mensajeria,
		Log:         logger,
	})

	logger.Info("servidor iniciado",
		zap.String("puerto", cfg.ServerPort),
		zap.String("entorno", cfg.Environment),
	)
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		logger.Fatal("error iniciando el servidor", zap.Error(err))
	}
}

func nuevoLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
