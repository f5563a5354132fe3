// Package textnorm normaliza nombres de parámetros de calidad para compararlos
// sin importar mayúsculas, acentos ni separadores ("Aloína (%)" == "aloina_%").
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Key devuelve la forma canónica de s.
func Key(s string) string {
	// la cadena de transformadores guarda estado: una por llamada
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	out = strings.ToLower(out)
	var b strings.Builder
	b.Grow(len(out))
	space := false
	for _, r := range out {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '%':
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		default:
			space = true
		}
	}
	return b.String()
}

// Equal compara dos nombres por su forma canónica.
func Equal(a, b string) bool { return Key(a) == Key(b) }
