package coverage

import (
	"context"
	"fmt"

	"github.com/worldwide-sa/wfsa-api/internal/models"
)

// FuentePermisos entrega el conjunto de instalaciones visibles para una
// identidad de rol no privilegiado. El colaborador puede cachear sus propios
// resultados; este motor no lo hace.
type FuentePermisos interface {
	InstalacionesVisibles(ctx context.Context, email string) ([]string, error)
}

// ResolverAmbito produce el AmbitoAcceso canónico de un usuario verificado.
// Toda autorización por instalación del motor pasa por aquí: los handlers no
// reimplementan lógica de roles por endpoint.
type ResolverAmbito struct {
	permisos FuentePermisos
}

// NewResolverAmbito crea el resolver sobre una fuente de permisos.
func NewResolverAmbito(permisos FuentePermisos) *ResolverAmbito {
	return &ResolverAmbito{permisos: permisos}
}

// Resolver calcula el ámbito una vez por request. ADMIN_WFSA y JEFE_WFSA
// (o la marca ver_todas_instalaciones) resuelven a todas las instalaciones;
// los demás roles a su conjunto explícito. Un ámbito vacío no es un error
// aquí: cada operación del motor decide si falla cerrado o si admite el
// agregado vacío (ver VerificarAmbito).
func (r *ResolverAmbito) Resolver(ctx context.Context, usuario *models.Usuario) (*models.AmbitoAcceso, error) {
	if usuario == nil {
		return nil, ErrNoAutorizado
	}

	ambito := &models.AmbitoAcceso{
		Email: usuario.Email,
		RolID: usuario.RolID,
	}

	if usuario.RolID == models.RolAdmin || usuario.RolID == models.RolJefe || usuario.Permisos.VerTodasInstalaciones {
		ambito.TodasInstalaciones = true
		return ambito, nil
	}

	instalaciones, err := r.permisos.InstalacionesVisibles(ctx, usuario.Email)
	if err != nil {
		return nil, fmt.Errorf("resolviendo instalaciones de %s: %w", usuario.Email, err)
	}
	ambito.Instalaciones = instalaciones

	return ambito, nil
}

// VerificarAmbito aplica la política de ámbito vacío de una operación.
// Las operaciones agregado-seguras (cobertura general, PPC total) toleran un
// ámbito vacío y retornan una métrica en cero; el resto falla cerrado con
// ErrAccesoDenegado en vez de devolver silenciosamente datos vacíos.
func VerificarAmbito(ambito *models.AmbitoAcceso, agregadoSeguro bool) error {
	if ambito == nil {
		return ErrNoAutorizado
	}
	if ambito.Vacio() && !agregadoSeguro {
		return ErrAccesoDenegado
	}
	return nil
}
