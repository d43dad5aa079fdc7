package warehouse

import "errors"

var (
	// ErrFuenteNoDisponible indica que el warehouse no respondió o falló la
	// consulta. El motor nunca cachea resultados derivados de este error.
	ErrFuenteNoDisponible = errors.New("fuente de datos no disponible")

	// ErrEsquemaIncompatible indica que el origen cambió de esquema (columnas
	// renombradas o eliminadas). Se distingue de la indisponibilidad porque
	// reintentar no lo arregla: requiere un despliegue.
	ErrEsquemaIncompatible = errors.New("esquema del origen incompatible")
)
