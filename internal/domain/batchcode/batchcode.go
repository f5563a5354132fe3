// Package batchcode decodifica el "número dorado" embebido en el código de un lote:
// fecha de producción y secuencia. Conviven dos formatos:
//
//	compacto: AAWWDSSS...   año(2) semana ISO(2) día ISO(1) secuencia(3-7)
//	legado:   PPPPFFFAAPSS  producto(4) folio/día juliano(3) año(2) planta(1) secuencia(2-6)
//
// Se intentan en ese orden y gana el primero que coincide estructuralmente.
// Un código que no coincide no es un error: simplemente no tiene identificador.
package batchcode

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Format codificación reconocida.
type Format string

const (
	FormatCompact Format = "compact"
	FormatLegacy  Format = "legacy"
)

// Identifier estructura decodificada de un código de lote.
type Identifier struct {
	Format    Format
	Raw       string
	Year      int
	Week      int // solo compacto
	Weekday   int // solo compacto, 1 = lunes
	Product   string
	Folio     int // solo legado: día del año
	Plant     int
	Sequence  int
	SubLot    int
	Date      time.Time
	SortKey   int64
	Ambiguous bool // el código también coincide con el otro formato
}

var (
	// prefijo alfabético opcional, corrida de dígitos y sublote opcional ("AL-2502100112-02").
	codeRe = regexp.MustCompile(`^(?:[A-Z]+[-_ ]?)?([0-9]{8,16})(?:[-_/]([0-9]{1,3}))?$`)

	compactRe = regexp.MustCompile(`^([0-9]{2})([0-9]{2})([1-7])([0-9]{3,7})$`)
	legacyRe  = regexp.MustCompile(`^([0-9]{4})([0-9]{3})([0-9]{2})([0-9])([0-9]{2,6})$`)
)

// Parse decodifica code. ok es false cuando ningún formato coincide.
func Parse(code string) (Identifier, bool) {
	norm := strings.ToUpper(strings.TrimSpace(code))
	m := codeRe.FindStringSubmatch(norm)
	if m == nil {
		return Identifier{}, false
	}
	digits := m[1]
	subLot := 0
	if m[2] != "" {
		subLot, _ = strconv.Atoi(m[2])
	}

	compact, compactOK := parseCompact(digits)
	legacy, legacyOK := parseLegacy(digits)

	var id Identifier
	switch {
	case compactOK:
		id = compact
		id.Ambiguous = legacyOK
	case legacyOK:
		id = legacy
	default:
		return Identifier{}, false
	}
	id.Raw = code
	id.SubLot = subLot
	id.SortKey = sortKey(id.Date, id.Sequence)
	return id, true
}

// Ambiguous indica si code coincide con ambos formatos.
func Ambiguous(code string) bool {
	id, ok := Parse(code)
	return ok && id.Ambiguous
}

// ISOWeekStart lunes de la semana ISO week del año year.
// La semana 1 es la que contiene el 4 de enero.
func ISOWeekStart(year, week int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7 // lunes = 0
	week1 := jan4.AddDate(0, 0, -offset)
	return week1.AddDate(0, 0, (week-1)*7)
}

// ISOWeeksInYear 52 o 53 según el año.
func ISOWeeksInYear(year int) int {
	_, w := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return w
}

func parseCompact(digits string) (Identifier, bool) {
	m := compactRe.FindStringSubmatch(digits)
	if m == nil {
		return Identifier{}, false
	}
	yy, _ := strconv.Atoi(m[1])
	week, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	seq, _ := strconv.Atoi(m[4])
	year := 2000 + yy
	if week < 1 || week > ISOWeeksInYear(year) {
		return Identifier{}, false
	}
	return Identifier{
		Format:   FormatCompact,
		Year:     year,
		Week:     week,
		Weekday:  day,
		Sequence: seq,
		Date:     ISOWeekStart(year, week).AddDate(0, 0, day-1),
	}, true
}

func parseLegacy(digits string) (Identifier, bool) {
	m := legacyRe.FindStringSubmatch(digits)
	if m == nil {
		return Identifier{}, false
	}
	folio, _ := strconv.Atoi(m[2])
	yy, _ := strconv.Atoi(m[3])
	plant, _ := strconv.Atoi(m[4])
	seq, _ := strconv.Atoi(m[5])
	year := 2000 + yy
	if folio < 1 || folio > daysInYear(year) {
		return Identifier{}, false
	}
	return Identifier{
		Format:   FormatLegacy,
		Year:     year,
		Product:  m[1],
		Folio:    folio,
		Plant:    plant,
		Sequence: seq,
		Date:     time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, folio-1),
	}, true
}

func daysInYear(year int) int {
	return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC).YearDay()
}

// sortKey AAAAMMDD seguido de 7 dígitos de secuencia.
func sortKey(d time.Time, seq int) int64 {
	ymd := int64(d.Year()*10000 + int(d.Month())*100 + d.Day())
	return ymd*10_000_000 + int64(seq)
}
