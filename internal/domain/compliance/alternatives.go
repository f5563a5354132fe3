package compliance

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/allocation"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/entity"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/inventory"
)

// DefaultMaxAlternatives límite de alternativas devueltas.
const DefaultMaxAlternatives = 5

// AlternativeKind origen de una alternativa.
type AlternativeKind string

const (
	AlternativeSingleBatch AlternativeKind = "single_batch"
	AlternativeReselection AlternativeKind = "reselection"
	AlternativeBlend       AlternativeKind = "blend"
)

// CostFunc estima el costo total de una asignación; ok=false si no se puede valorar.
type CostFunc func(entity.Allocation) (total decimal.Decimal, ok bool)

// SuggestOptions parámetros del buscador de alternativas.
type SuggestOptions struct {
	MaxAlternatives int
	Warehouse       string
	IncludeExpired  bool
	AsOf            time.Time
	Cost            CostFunc
}

// AlternativeOption una asignación alternativa que cumple la especificación.
type AlternativeOption struct {
	Kind       AlternativeKind
	Allocation entity.Allocation
	Compliance entity.ComplianceResult
	TotalCost  decimal.Decimal
	CostKnown  bool
	Parameter  string          // solo mezclas: parámetro que se corrige
	Proportion decimal.Decimal // solo mezclas: fracción del lote "alto"
}

// Analysis explica el resultado de la búsqueda.
type Analysis struct {
	LimitingParameter          string
	MaxDeviation               decimal.Decimal
	CompliantAlternativesFound int
	CandidatesEvaluated        int
}

// Suggestion resultado de SuggestAlternatives.
type Suggestion struct {
	Options  []AlternativeOption
	Analysis Analysis
}

// SuggestAlternatives busca reemplazos de un solo lote, una reselección sin los lotes
// fallidos y mezclas de dos lotes que devuelvan el cumplimiento. Nunca falla: si no
// hay alternativas devuelve una lista vacía con el análisis del parámetro limitante.
func SuggestAlternatives(failed entity.Allocation, spec *entity.Specification, pool []entity.Batch, opts SuggestOptions) Suggestion {
	out := Suggestion{Options: []AlternativeOption{}}
	if spec == nil || len(spec.Parameters) == 0 || !failed.Required.IsPositive() {
		return out
	}
	limit := opts.MaxAlternatives
	if limit <= 0 {
		limit = DefaultMaxAlternatives
	}

	failedRes := Check(failed, spec, pool)
	out.Analysis.LimitingParameter, out.Analysis.MaxDeviation = limiting(failedRes)

	failedIDs := make(map[string]struct{}, len(failed.Lines))
	for _, l := range failed.Lines {
		failedIDs[l.BatchID] = struct{}{}
	}
	selOpts := allocation.Options{
		Warehouse:      opts.Warehouse,
		IncludeExpired: opts.IncludeExpired,
		AsOf:           opts.AsOf,
		Strategy:       allocation.StrategyStrictFEFO,
	}
	eligible := allocation.Eligible(pool, selOpts)

	found := map[string]AlternativeOption{}
	consider := func(opt AlternativeOption) {
		out.Analysis.CandidatesEvaluated++
		opt.Compliance = Check(opt.Allocation, spec, pool)
		if !opt.Compliance.Passed || !opt.Allocation.Fulfilled() {
			return
		}
		if opts.Cost != nil {
			opt.TotalCost, opt.CostKnown = opts.Cost(opt.Allocation)
		}
		key := allocationKey(opt.Allocation)
		if _, dup := found[key]; dup {
			return
		}
		found[key] = opt
	}

	// 1. Reemplazos de un solo lote y reselección sin los lotes fallidos.
	for _, b := range eligible {
		if _, bad := failedIDs[b.ID]; bad || b.QuantityAvailable.LessThan(failed.Required) {
			continue
		}
		alloc, err := allocation.Select(failed.ItemCode, failed.Required, []entity.Batch{b}, selOpts)
		if err != nil {
			continue
		}
		consider(AlternativeOption{Kind: AlternativeSingleBatch, Allocation: alloc})
	}
	if len(failedIDs) > 0 {
		reOpts := selOpts
		reOpts.ExcludeBatchIDs = failedIDs
		if alloc, err := allocation.Select(failed.ItemCode, failed.Required, eligible, reOpts); err == nil && len(alloc.Lines) > 0 {
			consider(AlternativeOption{Kind: AlternativeReselection, Allocation: alloc})
		}
	}

	// 2. Mezclas de dos lotes por cada parámetro que falla.
	for _, pr := range failedRes.Failing() {
		ps, ok := findSpec(spec, pr.Name)
		if !ok {
			continue
		}
		for _, opt := range blendCandidates(failed, ps, *pr.Value, eligible) {
			consider(opt)
		}
	}

	for _, opt := range found {
		out.Options = append(out.Options, opt)
	}
	rank(out.Options)
	out.Analysis.CompliantAlternativesFound = len(out.Options)
	if len(out.Options) > limit {
		out.Options = out.Options[:limit]
	}
	return out
}

// blendCandidates resuelve p tal que p*alto + (1-p)*bajo caiga dentro del rango.
// El objetivo es el punto medio si hay dos límites; si no, el límite violado.
func blendCandidates(failed entity.Allocation, ps entity.ParameterSpec, current decimal.Decimal, eligible []entity.Batch) []AlternativeOption {
	target, tooHigh, ok := blendTarget(ps, current)
	if !ok {
		return nil
	}
	type valued struct {
		b entity.Batch
		v decimal.Decimal
	}
	var highs, lows []valued
	for _, b := range eligible {
		v, ok := LookupParameter(b.QualityParameters, ps.Name)
		if !ok {
			continue
		}
		switch v.Cmp(target) {
		case 1:
			highs = append(highs, valued{b, v})
		case -1:
			lows = append(lows, valued{b, v})
		}
	}

	required := failed.Required
	var opts []AlternativeOption
	for _, h := range highs {
		for _, l := range lows {
			p, ok := inventory.BlendProportion(h.v, l.v, target)
			if !ok || p.IsZero() || p.Equal(decimal.NewFromInt(1)) {
				continue
			}
			qHigh := p.Mul(required)
			// redondear hacia el lado seguro del límite violado
			if tooHigh {
				qHigh = qHigh.RoundFloor(4)
			} else {
				qHigh = qHigh.RoundCeil(4)
			}
			qLow := required.Sub(qHigh)
			if !qHigh.IsPositive() || !qLow.IsPositive() ||
				qHigh.GreaterThan(h.b.QuantityAvailable) || qLow.GreaterThan(l.b.QuantityAvailable) {
				continue
			}
			opts = append(opts, AlternativeOption{
				Kind:       AlternativeBlend,
				Allocation: blendAllocation(failed, h.b, qHigh, l.b, qLow),
				Parameter:  ps.Name,
				Proportion: qHigh.Div(required).Round(4),
			})
		}
	}
	return opts
}

func blendTarget(ps entity.ParameterSpec, current decimal.Decimal) (target decimal.Decimal, tooHigh, ok bool) {
	tooHigh = ps.Max != nil && current.GreaterThan(*ps.Max)
	tooLow := ps.Min != nil && current.LessThan(*ps.Min)
	switch {
	case !tooHigh && !tooLow:
		return decimal.Zero, false, false
	case ps.Min != nil && ps.Max != nil:
		return ps.Min.Add(*ps.Max).Div(decimal.NewFromInt(2)), tooHigh, true
	case tooHigh:
		return *ps.Max, true, true
	default:
		return *ps.Min, false, true
	}
}

func blendAllocation(failed entity.Allocation, a entity.Batch, qa decimal.Decimal, b entity.Batch, qb decimal.Decimal) entity.Allocation {
	first, second := lineFor(a, qa), lineFor(b, qb)
	if expiresBefore(b, a) {
		first, second = second, first
	}
	return entity.Allocation{
		ItemCode:  failed.ItemCode,
		Required:  failed.Required,
		Lines:     []entity.AllocationLine{first, second},
		Allocated: failed.Required,
		Shortage:  decimal.Zero,
		Status:    entity.AllocationFulfilled,
	}
}

func lineFor(b entity.Batch, q decimal.Decimal) entity.AllocationLine {
	return entity.AllocationLine{
		BatchID:         b.ID,
		Warehouse:       b.Warehouse,
		QuantityTaken:   q,
		ExpiryDate:      b.ExpiryDate,
		ManufactureDate: b.ManufactureDate,
	}
}

func expiresBefore(a, b entity.Batch) bool {
	if a.ExpiryDate == nil {
		return false
	}
	return b.ExpiryDate == nil || a.ExpiryDate.Before(*b.ExpiryDate)
}

// limiting parámetro con mayor desviación relativa al límite violado.
func limiting(res entity.ComplianceResult) (string, decimal.Decimal) {
	name := ""
	worst := decimal.Zero
	worstRel := decimal.NewFromInt(-1)
	for _, p := range res.Failing() {
		rel := p.Deviation
		bound := p.Max
		if p.Min != nil && p.Value != nil && p.Value.LessThan(*p.Min) {
			bound = p.Min
		}
		if bound != nil && !bound.IsZero() {
			rel = p.Deviation.Div(bound.Abs())
		}
		if rel.GreaterThan(worstRel) {
			name, worst, worstRel = p.Name, p.Deviation, rel
		}
	}
	return name, worst
}

func findSpec(spec *entity.Specification, name string) (entity.ParameterSpec, bool) {
	for _, p := range spec.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return entity.ParameterSpec{}, false
}

// rank: puntaje desc, costo asc (valorados primero), menos lotes, clave para desempatar.
func rank(opts []AlternativeOption) {
	sort.SliceStable(opts, func(i, j int) bool {
		a, b := opts[i], opts[j]
		if r := a.Compliance.Score.Cmp(b.Compliance.Score); r != 0 {
			return r > 0
		}
		if a.CostKnown != b.CostKnown {
			return a.CostKnown
		}
		if a.CostKnown {
			if r := a.TotalCost.Cmp(b.TotalCost); r != 0 {
				return r < 0
			}
		}
		if len(a.Allocation.Lines) != len(b.Allocation.Lines) {
			return len(a.Allocation.Lines) < len(b.Allocation.Lines)
		}
		return allocationKey(a.Allocation) < allocationKey(b.Allocation)
	})
}

func allocationKey(a entity.Allocation) string {
	parts := make([]string, len(a.Lines))
	for i, l := range a.Lines {
		parts[i] = l.BatchID + "=" + l.QuantityTaken.String()
	}
	return strings.Join(parts, ",")
}
