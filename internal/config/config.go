// Package config gestiona la configuración de la aplicación vía variables de entorno.
//
// # Variables de Entorno
//
// ## BigQuery
//   - GCP_PROJECT_ID: Proyecto de GCP (default: worldwide-470917)
//   - DATASET_REPORTES: Dataset de cobertura del sistema origen (default: cr_reportes)
//   - DATASET_APP: Dataset de gestión de la app (default: app_clientes)
//   - GOOGLE_APPLICATION_CREDENTIALS_FILE: Ruta opcional a credenciales de servicio
//
// ## Semáforos
//   - SEMAFORO_VERDE: Umbral inclusivo para VERDE (default: 0.95)
//   - SEMAFORO_AMARILLO: Umbral inclusivo para AMARILLO (default: 0.80)
//
// ## Cobertura
//   - DIAS_HISTORICO_DEFAULT: Ventana histórica por defecto en días (default: 90)
//   - CADENCIA_REFRESCO_MINUTOS: Cadencia de refresco del warehouse (default: 5)
//
// ## Cache
//   - CACHE_TTL_SEGUNDOS: TTL de las entradas instantáneas (default: 60)
//   - CACHE_MAX_ENTRADAS: Capacidad del cache LRU (default: 512)
//
// ## Servidor
//   - SERVER_PORT: Puerto HTTP (default: 8080)
//   - ENVIRONMENT: Ambiente de ejecución (default: development)
//   - TRACING_ENABLED: Habilita exportación OTLP (default: false)
//   - TRACING_ENDPOINT: Endpoint del collector (default: localhost:4317)
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config agrupa toda la configuración del proceso. Se carga una sola vez en el
// arranque; los umbrales no se recalculan por request.
type Config struct {
	ProjectID       string `validate:"required"`
	DatasetReportes string `validate:"required"`
	DatasetApp      string `validate:"required"`
	CredencialesGCP string

	// Umbrales del semáforo, decimales en [0,1] con verde > amarillo.
	SemaforoVerde    float64 `validate:"gt=0,lte=1,gtfield=SemaforoAmarillo"`
	SemaforoAmarillo float64 `validate:"gt=0,lte=1"`

	DiasHistoricoDefault int           `validate:"gt=0"`
	CadenciaRefresco     time.Duration `validate:"gt=0"`

	CacheTTL         time.Duration `validate:"gt=0"`
	CacheMaxEntradas int           `validate:"gt=0"`

	ServerPort  string
	Environment string

	TracingEnabled  bool
	TracingEndpoint string
}

// Tablas del sistema origen (solo lectura para este servicio).

func (c *Config) TablaCobertura() string {
	return fmt.Sprintf("%s.%s.cobertura_instantanea", c.ProjectID, c.DatasetReportes)
}

func (c *Config) TablaHistorico() string {
	return fmt.Sprintf("%s.%s.cr_asistencia_hist_tb", c.ProjectID, c.DatasetReportes)
}

func (c *Config) TablaFaceID() string {
	return fmt.Sprintf("%s.%s.cr_equipos_faceid", c.ProjectID, c.DatasetReportes)
}

func (c *Config) TablaPPC() string {
	return fmt.Sprintf("%s.cr_vistas_reporte.cr_ppc_dia", c.ProjectID)
}

// Tablas de gestión de la app (el servicio sí escribe en estas).

func (c *Config) TablaUsuarios() string {
	return fmt.Sprintf("%s.%s.usuarios_app", c.ProjectID, c.DatasetApp)
}

func (c *Config) TablaUsuarioInstalaciones() string {
	return fmt.Sprintf("%s.%s.usuario_instalaciones", c.ProjectID, c.DatasetApp)
}

func (c *Config) TablaContactos() string {
	return fmt.Sprintf("%s.%s.contactos", c.ProjectID, c.DatasetApp)
}

func (c *Config) TablaInstalacionContacto() string {
	return fmt.Sprintf("%s.%s.instalacion_contacto", c.ProjectID, c.DatasetApp)
}

func (c *Config) TablaUsuarioContactos() string {
	return fmt.Sprintf("%s.%s.usuario_contactos", c.ProjectID, c.DatasetApp)
}

func (c *Config) TablaMensajes() string {
	return fmt.Sprintf("%s.%s.mensajes_whatsapp", c.ProjectID, c.DatasetApp)
}

func (c *Config) VistaPermisos() string {
	return fmt.Sprintf("%s.%s.v_permisos_usuarios", c.ProjectID, c.DatasetApp)
}

func (c *Config) VistaMensajesRecibidos() string {
	return fmt.Sprintf("%s.%s.v_mensajes_recibidos", c.ProjectID, c.DatasetApp)
}

func (c *Config) TablaEncuestasSolicitudes() string {
	return fmt.Sprintf("%s.%s.encuestas_solicitudes", c.ProjectID, c.DatasetApp)
}

func (c *Config) TablaEncuestasPreguntas() string {
	return fmt.Sprintf("%s.%s.encuestas_preguntas", c.ProjectID, c.DatasetApp)
}

func (c *Config) TablaEncuestasRespuestas() string {
	return fmt.Sprintf("%s.%s.encuestas_respuestas", c.ProjectID, c.DatasetApp)
}

// LoadConfig carga la configuración desde el entorno y la valida.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ProjectID:       getEnv("GCP_PROJECT_ID", "worldwide-470917"),
		DatasetReportes: getEnv("DATASET_REPORTES", "cr_reportes"),
		DatasetApp:      getEnv("DATASET_APP", "app_clientes"),
		CredencialesGCP: getEnv("GOOGLE_APPLICATION_CREDENTIALS_FILE", ""),

		SemaforoVerde:    getEnvFloat("SEMAFORO_VERDE", 0.95),
		SemaforoAmarillo: getEnvFloat("SEMAFORO_AMARILLO", 0.80),

		DiasHistoricoDefault: getEnvInt("DIAS_HISTORICO_DEFAULT", 90),
		CadenciaRefresco:     time.Duration(getEnvInt("CADENCIA_REFRESCO_MINUTOS", 5)) * time.Minute,

		CacheTTL:         time.Duration(getEnvInt("CACHE_TTL_SEGUNDOS", 60)) * time.Second,
		CacheMaxEntradas: getEnvInt("CACHE_MAX_ENTRADAS", 512),

		ServerPort:  getEnv("SERVER_PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		TracingEnabled:  getEnv("TRACING_ENABLED", "false") == "true",
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4317"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuración inválida: %w", err)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
