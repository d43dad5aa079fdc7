package warehouse

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"google.golang.org/api/googleapi"
)

func TestClasificarError(t *testing.T) {
	tests := []struct {
		nombre   string
		err      error
		esperado error
	}{
		{
			"columna renombrada en el origen",
			&googleapi.Error{Code: http.StatusBadRequest, Message: "Unrecognized name: guardias_presentes at [3:7]"},
			ErrEsquemaIncompatible,
		},
		{
			"tabla eliminada",
			&googleapi.Error{Code: http.StatusNotFound, Message: "Not found: Table proyecto.dataset.cobertura_instantanea"},
			ErrEsquemaIncompatible,
		},
		{
			"error de cuota",
			&googleapi.Error{Code: http.StatusForbidden, Message: "Quota exceeded"},
			ErrFuenteNoDisponible,
		},
		{
			"timeout de red",
			errors.New("context deadline exceeded"),
			ErrFuenteNoDisponible,
		},
		{
			"error envuelto",
			fmt.Errorf("ejecutando job: %w", &googleapi.Error{Code: http.StatusBadRequest, Message: "Unrecognized name: zona"}),
			ErrEsquemaIncompatible,
		},
	}

	for _, tt := range tests {
		t.Run(tt.nombre, func(t *testing.T) {
			resultado := clasificarError(tt.err)
			if !errors.Is(resultado, tt.esperado) {
				t.Errorf("clasificarError(%v) = %v, se esperaba %v", tt.err, resultado, tt.esperado)
			}
		})
	}
}
