package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/worldwide-sa/wfsa-api/internal/auth"
	"github.com/worldwide-sa/wfsa-api/internal/models"
	"github.com/worldwide-sa/wfsa-api/internal/services"
	"github.com/worldwide-sa/wfsa-api/internal/warehouse"
)

type verificadorFake struct {
	identidades map[string]*auth.Identidad
}

func (v *verificadorFake) Verificar(_ context.Context, idToken string) (*auth.Identidad, error) {
	identidad, ok := v.identidades[idToken]
	if !ok {
		return nil, auth.ErrTokenInvalido
	}
	return identidad, nil
}

type almacenFake struct {
	usuarios map[string]*models.Usuario
}

func (a *almacenFake) UsuarioPorEmail(_ context.Context, email string) (*models.Usuario, error) {
	usuario, ok := a.usuarios[email]
	if !ok {
		return nil, warehouse.ErrNoEncontrado
	}
	copia := *usuario
	return &copia, nil
}

func (a *almacenFake) ActualizarFirebaseUID(context.Context, string, string) error { return nil }
func (a *almacenFake) ActualizarTokenFCM(context.Context, string, string) error    { return nil }

func routerPrueba(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	verificador := &verificadorFake{identidades: map[string]*auth.Identidad{
		"token-cliente":  {UID: "u1", Email: "cliente@acme.cl"},
		"token-admin":    {UID: "u2", Email: "admin@wfsa.cl"},
		"token-baja":     {UID: "u3", Email: "baja@acme.cl"},
		"token-fantasma": {UID: "u4", Email: "nadie@acme.cl"},
	}}
	almacen := &almacenFake{usuarios: map[string]*models.Usuario{
		"cliente@acme.cl": {Email: "cliente@acme.cl", RolID: models.RolCliente, Activo: true},
		"admin@wfsa.cl": {
			Email:    "admin@wfsa.cl",
			RolID:    models.RolAdmin,
			Activo:   true,
			Permisos: models.Permisos{EsAdmin: true},
		},
		"baja@acme.cl": {Email: "baja@acme.cl", RolID: models.RolCliente, Activo: false},
	}}
	usuarios := services.NewUsuarios(almacen, nil)

	r := gin.New()
	r.Use(AuthMiddleware(verificador, usuarios, zap.NewNop()))
	r.GET("/perfil", func(c *gin.Context) {
		usuario := UsuarioActual(c)
		c.JSON(http.StatusOK, gin.H{"email": usuario.Email})
	})
	r.POST("/admin", RequireAdmin(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	r := routerPrueba(t)

	tests := []struct {
		name       string
		ruta       string
		metodo     string
		authHeader string
		esperado   int
	}{
		{"sin header", "/perfil", http.MethodGet, "", http.StatusUnauthorized},
		{"sin prefijo bearer", "/perfil", http.MethodGet, "token-cliente", http.StatusUnauthorized},
		{"token inválido", "/perfil", http.MethodGet, "Bearer token-falso", http.StatusUnauthorized},
		{"usuario no registrado", "/perfil", http.MethodGet, "Bearer token-fantasma", http.StatusNotFound},
		{"usuario inactivo", "/perfil", http.MethodGet, "Bearer token-baja", http.StatusForbidden},
		{"cliente autenticado", "/perfil", http.MethodGet, "Bearer token-cliente", http.StatusOK},
		{"cliente sin permiso admin", "/admin", http.MethodPost, "Bearer token-cliente", http.StatusForbidden},
		{"admin con permiso", "/admin", http.MethodPost, "Bearer token-admin", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.metodo, tt.ruta, nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.esperado {
				t.Errorf("status = %d, esperado %d (body: %s)", w.Code, tt.esperado, w.Body.String())
			}
		})
	}
}

func TestUsuarioActualSinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if usuario := UsuarioActual(c); usuario != nil {
		t.Errorf("UsuarioActual() = %+v, esperado nil", usuario)
	}
}
