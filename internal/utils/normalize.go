package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizarInstalacion remueve acentos y baja a minúsculas un identificador de
// instalación, para que filtros y claves de cache sean insensibles a tildes.
// Ejemplo: "Edificio Ñuñoa" -> "edificio nunoa"
func NormalizarInstalacion(instalacion string) string {
	if instalacion == "" {
		return instalacion
	}

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	normalizada, _, _ := transform.String(t, instalacion)

	return strings.ToLower(strings.TrimSpace(normalizada))
}

// ResolverInstalacion busca el identificador original a partir de su versión
// normalizada dentro de un conjunto de instalaciones válidas.
func ResolverInstalacion(normalizada string, validas []string) string {
	for _, inst := range validas {
		if NormalizarInstalacion(inst) == normalizada {
			return inst
		}
	}
	return normalizada
}
