package allocation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/entity"
)

// DefaultNearExpiryDays ventana informativa de próxima caducidad.
const DefaultNearExpiryDays = 30

// Options parámetros de una selección. Se pasan explícitamente en cada llamada.
type Options struct {
	Warehouse       string // filtro exacto; vacío = todas
	IncludeExpired  bool
	NearExpiryDays  int // 0 = DefaultNearExpiryDays, negativo = sin etiqueta
	ExcludeBatchIDs map[string]struct{}
	Strategy        StrategyKind
	AsOf            time.Time
	UnitCosts       map[string]decimal.Decimal // costo unitario resuelto por lote
	Weights         BalanceWeights
}

func (o Options) asOf() time.Time {
	if o.AsOf.IsZero() {
		return time.Now().UTC()
	}
	return o.AsOf
}

func (o Options) nearExpiryDays() int {
	if o.NearExpiryDays == 0 {
		return DefaultNearExpiryDays
	}
	return o.NearExpiryDays
}

// Eligible aplica el paso de filtrado: bodega, exclusiones, caducidad y existencia positiva.
// Devuelve copias; la lista de entrada no se modifica.
func Eligible(candidates []entity.Batch, opts Options) []entity.Batch {
	asOf := opts.asOf()
	out := make([]entity.Batch, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, b := range candidates {
		if opts.Warehouse != "" && b.Warehouse != opts.Warehouse {
			continue
		}
		if _, excluded := opts.ExcludeBatchIDs[b.ID]; excluded {
			continue
		}
		if !opts.IncludeExpired && b.IsExpired(asOf) {
			continue
		}
		if !b.QuantityAvailable.IsPositive() {
			continue
		}
		// un lote no puede aparecer dos veces en la misma asignación
		if _, dup := seen[b.ID]; dup {
			continue
		}
		seen[b.ID] = struct{}{}
		out = append(out, b.Clone())
	}
	return out
}

// Select asigna lotes de forma voraz en el orden de la estrategia hasta cubrir required.
// Un faltante no es error: se devuelve estado SHORT con la asignación parcial.
func Select(itemCode string, required decimal.Decimal, candidates []entity.Batch, opts Options) (entity.Allocation, error) {
	if !required.IsPositive() {
		return entity.Allocation{}, &domain.ValidationError{
			Field: "required_qty", ItemCode: itemCode, Required: required,
			Reason: "la cantidad requerida debe ser positiva",
		}
	}
	kind := opts.Strategy
	if kind == 0 {
		kind = StrategyStrictFEFO
	}
	strat, err := ForKind(kind, opts.Weights)
	if err != nil {
		return entity.Allocation{}, domain.NewValidationError("strategy", err.Error())
	}

	eligible := Eligible(candidates, opts)
	cands := make([]Candidate, len(eligible))
	for i, b := range eligible {
		cands[i] = NewCandidate(b, opts.UnitCosts)
	}
	strat.Sort(cands)

	return consume(itemCode, required, cands, opts), nil
}

// consume toma min(disponible, restante) de cada candidato en orden.
func consume(itemCode string, required decimal.Decimal, cands []Candidate, opts Options) entity.Allocation {
	asOf := opts.asOf()
	window := opts.nearExpiryDays()
	remaining := required
	alloc := entity.Allocation{ItemCode: itemCode, Required: required, Lines: []entity.AllocationLine{}}

	for i := range cands {
		if !remaining.IsPositive() {
			break
		}
		c := &cands[i]
		take := decimal.Min(remaining, c.Batch.QuantityAvailable)
		line := entity.AllocationLine{
			BatchID:         c.Batch.ID,
			Warehouse:       c.Batch.Warehouse,
			QuantityTaken:   take,
			ExpiryDate:      c.Batch.ExpiryDate,
			ManufactureDate: c.ProductionDate(),
		}
		if days, ok := c.Batch.DaysToExpiry(asOf); ok {
			line.DaysToExpiry = &days
			if c.Batch.IsExpired(asOf) {
				line.Warnings = append(line.Warnings, entity.WarningExpired)
			} else if window > 0 && days <= window {
				line.Warnings = append(line.Warnings, entity.WarningNearExpiry)
			}
		}
		alloc.Lines = append(alloc.Lines, line)
		remaining = remaining.Sub(take)
	}

	alloc.Allocated = required.Sub(remaining)
	alloc.Shortage = remaining
	alloc.Status = entity.AllocationFulfilled
	if remaining.IsPositive() {
		alloc.Status = entity.AllocationShort
	}
	return alloc
}
