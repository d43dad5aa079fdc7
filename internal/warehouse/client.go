package warehouse

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/worldwide-sa/wfsa-api/internal/config"
)

// Cliente envuelve la conexión a BigQuery con la configuración de tablas del
// proyecto. Las capas de reportes y gestión comparten esta conexión.
type Cliente struct {
	bq  *bigquery.Client
	cfg *config.Config
	log *zap.Logger
}

// NewCliente abre la conexión a BigQuery. Si la configuración trae una ruta
// de credenciales se usa esa cuenta de servicio; si no, las credenciales por
// defecto del ambiente.
func NewCliente(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Cliente, error) {
	var opts []option.ClientOption
	if cfg.CredencialesGCP != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredencialesGCP))
	}

	bq, err := bigquery.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("conectando a BigQuery: %w", err)
	}

	if log == nil {
		log = zap.NewNop()
	}
	return &Cliente{bq: bq, cfg: cfg, log: log}, nil
}

// Close libera la conexión subyacente.
func (c *Cliente) Close() error {
	return c.bq.Close()
}

// Ping verifica la conectividad con una consulta trivial. Lo usa el health
// check profundo; un fallo aquí significa warehouse inaccesible.
func (c *Cliente) Ping(ctx context.Context) error {
	it, err := c.bq.Query("SELECT 1").Read(ctx)
	if err != nil {
		return clasificarError(err)
	}
	var fila []bigquery.Value
	if err := it.Next(&fila); err != nil {
		return clasificarError(err)
	}
	return nil
}

// consultar ejecuta una consulta parametrizada y retorna el iterador de
// filas. Nunca interpola valores en el SQL: todo dato del request viaja como
// parámetro.
func (c *Cliente) consultar(ctx context.Context, sql string, params []bigquery.QueryParameter) (*bigquery.RowIterator, error) {
	inicio := time.Now()

	q := c.bq.Query(sql)
	q.Parameters = params

	it, err := q.Read(ctx)
	if err != nil {
		c.log.Warn("consulta a BigQuery fallida",
			zap.Error(err),
			zap.Duration("duracion", time.Since(inicio)),
		)
		return nil, clasificarError(err)
	}

	c.log.Debug("consulta a BigQuery",
		zap.Duration("duracion", time.Since(inicio)),
		zap.Uint64("filas", it.TotalRows),
	)
	return it, nil
}

// ejecutar corre una sentencia DML parametrizada y espera su término.
func (c *Cliente) ejecutar(ctx context.Context, sql string, params []bigquery.QueryParameter) error {
	q := c.bq.Query(sql)
	q.Parameters = params

	job, err := q.Run(ctx)
	if err != nil {
		return clasificarError(err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return clasificarError(err)
	}
	if status.Err() != nil {
		return clasificarError(status.Err())
	}
	return nil
}

// insertar escribe filas vía streaming insert en la tabla indicada.
func (c *Cliente) insertar(ctx context.Context, dataset, tabla string, filas interface{}) error {
	ins := c.bq.Dataset(dataset).Table(tabla).Inserter()
	if err := ins.Put(ctx, filas); err != nil {
		return clasificarError(err)
	}
	return nil
}

// clasificarError separa los fallos de esquema (el origen cambió de forma y
// reintentar no sirve) de la indisponibilidad transitoria. Todo lo demás se
// reporta como fuente no disponible para que el handler responda 503.
func clasificarError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code == http.StatusBadRequest && esErrorDeEsquema(gerr.Message) {
			return fmt.Errorf("%w: %s", ErrEsquemaIncompatible, gerr.Message)
		}
	}
	if msg := err.Error(); esErrorDeEsquema(msg) {
		return fmt.Errorf("%w: %s", ErrEsquemaIncompatible, msg)
	}
	return fmt.Errorf("%w: %v", ErrFuenteNoDisponible, err)
}

func esErrorDeEsquema(mensaje string) bool {
	return strings.Contains(mensaje, "Unrecognized name") ||
		strings.Contains(mensaje, "Name not found") ||
		strings.Contains(mensaje, "Not found: Table")
}
