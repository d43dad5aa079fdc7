package coverage

import "errors"

var (
	// ErrNoAutorizado indica un request sin identidad verificada.
	ErrNoAutorizado = errors.New("identidad no verificada")
	// ErrAccesoDenegado indica una identidad verificada pero sin instalaciones
	// visibles en una operación que no admite ámbito vacío.
	ErrAccesoDenegado = errors.New("sin instalaciones visibles para el usuario")
	// ErrParametroInvalido indica un parámetro fuera de rango (ej. dias <= 0).
	ErrParametroInvalido = errors.New("parámetro inválido")
	// ErrInstalacionFueraDeAmbito indica una instalación solicitada que el
	// ámbito del usuario no cubre.
	ErrInstalacionFueraDeAmbito = errors.New("instalación fuera del ámbito del usuario")
)
