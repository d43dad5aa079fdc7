package models

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Roles reconocidos por la API. ADMIN_WFSA y JEFE_WFSA ven todas las
// instalaciones; SUBGERENTE_WFSA y CLIENTE ven un conjunto explícito.
const (
	RolAdmin      = "ADMIN_WFSA"
	RolJefe       = "JEFE_WFSA"
	RolSubgerente = "SUBGERENTE_WFSA"
	RolCliente    = "CLIENTE"
)

// Permisos son las capacidades que la vista de permisos asigna a un usuario.
type Permisos struct {
	PuedeVerCobertura         bool `json:"puede_ver_cobertura"`
	PuedeVerEncuestas         bool `json:"puede_ver_encuestas"`
	PuedeEnviarMensajes       bool `json:"puede_enviar_mensajes"`
	PuedeVerMensajesRecibidos bool `json:"puede_ver_mensajes_recibidos"`
	EsAdmin                   bool `json:"es_admin"`
	VerTodasInstalaciones     bool `json:"ver_todas_instalaciones"`
}

// Usuario es la identidad verificada más su fila de permisos, resuelta una vez
// por request por el middleware de autenticación.
type Usuario struct {
	Email          string   `json:"email"`
	NombreCompleto string   `json:"nombre_completo"`
	ClienteRol     string   `json:"cliente_rol"`
	RolID          string   `json:"rol_id"`
	NombreRol      string   `json:"nombre_rol"`
	Permisos       Permisos `json:"permisos"`
	Activo         bool     `json:"activo"`
}

// EsWFSA indica si el usuario pertenece a la operación (no es cliente final).
func (u *Usuario) EsWFSA() bool {
	return u.RolID != RolCliente
}

// AmbitoAcceso es el conjunto de instalaciones que una identidad puede ver.
// Vive lo que dura el request; el motor nunca lo persiste.
type AmbitoAcceso struct {
	Email string
	RolID string

	// TodasInstalaciones marca los roles privilegiados: Instalaciones queda
	// vacío y ninguna instalación se filtra.
	TodasInstalaciones bool
	Instalaciones      []string
}

// PuedeVer responde si la instalación está dentro del ámbito.
func (a *AmbitoAcceso) PuedeVer(instalacionRol string) bool {
	if a.TodasInstalaciones {
		return true
	}
	for _, inst := range a.Instalaciones {
		if inst == instalacionRol {
			return true
		}
	}
	return false
}

// Vacio indica un ámbito sin instalaciones visibles en un rol no privilegiado.
func (a *AmbitoAcceso) Vacio() bool {
	return !a.TodasInstalaciones && len(a.Instalaciones) == 0
}

// Huella es el fingerprint canónico del ámbito, usado como parte de las claves
// de cache: dos usuarios con el mismo conjunto visible comparten entradas.
func (a *AmbitoAcceso) Huella() string {
	if a.TodasInstalaciones {
		return "todas"
	}
	ordenadas := make([]string, len(a.Instalaciones))
	copy(ordenadas, a.Instalaciones)
	sort.Strings(ordenadas)

	hash := sha256.Sum256([]byte(strings.Join(ordenadas, "|")))
	return hex.EncodeToString(hash[:16])
}
