package allocation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// StrategyKind estrategia de ordenamiento de lotes.
type StrategyKind int

const (
	StrategyBalanced StrategyKind = iota + 1
	StrategyStrictFEFO
	StrategyMinimumBatches
	StrategyMinimizeCost
)

// Kinds devuelve todas las estrategias en orden de prioridad para la recomendación.
func Kinds() []StrategyKind {
	return []StrategyKind{StrategyBalanced, StrategyStrictFEFO, StrategyMinimumBatches, StrategyMinimizeCost}
}

func (k StrategyKind) String() string {
	switch k {
	case StrategyBalanced:
		return "balanced"
	case StrategyStrictFEFO:
		return "strict_fefo"
	case StrategyMinimumBatches:
		return "minimum_batches"
	case StrategyMinimizeCost:
		return "minimize_cost"
	default:
		return fmt.Sprintf("strategy(%d)", int(k))
	}
}

// IsValid indica si k es una estrategia conocida.
func (k StrategyKind) IsValid() bool {
	return k >= StrategyBalanced && k <= StrategyMinimizeCost
}

// MarshalText para serializar el nombre en DTOs.
func (k StrategyKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText acepta los mismos alias que ParseStrategyKind.
func (k *StrategyKind) UnmarshalText(b []byte) error {
	parsed, err := ParseStrategyKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseStrategyKind traduce el nombre recibido en el borde de transporte.
func ParseStrategyKind(s string) (StrategyKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "balanced", "fefo_cost_balanced", "hybrid", "":
		return StrategyBalanced, nil
	case "fefo", "strict_fefo":
		return StrategyStrictFEFO, nil
	case "min_batches", "minimum_batches":
		return StrategyMinimumBatches, nil
	case "min_cost", "minimize_cost", "cost":
		return StrategyMinimizeCost, nil
	}
	return 0, fmt.Errorf("estrategia desconocida: %q", s)
}

// BalanceWeights pesos de la estrategia balanceada FEFO/costo.
type BalanceWeights struct {
	ExpiryUrgency decimal.Decimal
	Cost          decimal.Decimal
}

// DefaultBalanceWeights ponderación igual.
func DefaultBalanceWeights() BalanceWeights {
	half := decimal.NewFromFloat(0.5)
	return BalanceWeights{ExpiryUrgency: half, Cost: half}
}

func (w BalanceWeights) isZero() bool {
	return w.ExpiryUrgency.IsZero() && w.Cost.IsZero()
}

// AllocationStrategy ordena los candidatos ya filtrados; el selector consume en ese orden.
type AllocationStrategy interface {
	Kind() StrategyKind
	Sort(cands []Candidate)
}

// ForKind construye la estrategia correspondiente.
func ForKind(k StrategyKind, weights BalanceWeights) (AllocationStrategy, error) {
	switch k {
	case StrategyStrictFEFO:
		return strictFEFO{}, nil
	case StrategyMinimizeCost:
		return minimizeCost{}, nil
	case StrategyMinimumBatches:
		return minimumBatches{}, nil
	case StrategyBalanced:
		if weights.isZero() {
			weights = DefaultBalanceWeights()
		}
		return balanced{weights: weights}, nil
	}
	return nil, fmt.Errorf("estrategia no soportada: %s", k)
}

type strictFEFO struct{}

func (strictFEFO) Kind() StrategyKind { return StrategyStrictFEFO }

func (strictFEFO) Sort(c []Candidate) {
	sort.SliceStable(c, func(i, j int) bool { return compareFEFO(&c[i], &c[j]) < 0 })
}

// minimizeCost ordena por costo unitario resuelto; la caducidad solo desempata.
// Un lote sin precio se ordena con costo 0, igual que se costea.
type minimizeCost struct{}

func (minimizeCost) Kind() StrategyKind { return StrategyMinimizeCost }

func (minimizeCost) Sort(c []Candidate) {
	sort.SliceStable(c, func(i, j int) bool {
		if r := compareCost(&c[i], &c[j]); r != 0 {
			return r < 0
		}
		return compareFEFO(&c[i], &c[j]) < 0
	})
}

// minimumBatches prefiere menos lotes y más grandes.
type minimumBatches struct{}

func (minimumBatches) Kind() StrategyKind { return StrategyMinimumBatches }

func (minimumBatches) Sort(c []Candidate) {
	sort.SliceStable(c, func(i, j int) bool {
		if r := c[i].Batch.QuantityAvailable.Cmp(c[j].Batch.QuantityAvailable); r != 0 {
			return r > 0
		}
		return compareFEFO(&c[i], &c[j]) < 0
	})
}

// balanced clave compuesta = pesoUrgencia*rangoCaducidad + pesoCosto*rangoCosto.
type balanced struct {
	weights BalanceWeights
}

func (balanced) Kind() StrategyKind { return StrategyBalanced }

func (b balanced) Sort(c []Candidate) {
	assignDenseRanks(c, func(x, y *Candidate) int { return compareExpiryOnly(x, y) }, func(x *Candidate, r int) { x.expiryRank = r })
	assignDenseRanks(c, compareCost, func(x *Candidate, r int) { x.costRank = r })
	for i := range c {
		c[i].score = b.weights.ExpiryUrgency.Mul(decimal.NewFromInt(int64(c[i].expiryRank))).
			Add(b.weights.Cost.Mul(decimal.NewFromInt(int64(c[i].costRank))))
	}
	sort.SliceStable(c, func(i, j int) bool {
		if r := c[i].score.Cmp(c[j].score); r != 0 {
			return r < 0
		}
		return compareFEFO(&c[i], &c[j]) < 0
	})
}

// assignDenseRanks asigna rangos densos (1..n) según cmp sin alterar el orden de c.
func assignDenseRanks(c []Candidate, cmp func(x, y *Candidate) int, set func(x *Candidate, r int)) {
	idx := make([]int, len(c))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return cmp(&c[idx[i]], &c[idx[j]]) < 0 })
	rank := 0
	for n, i := range idx {
		if n == 0 || cmp(&c[idx[n-1]], &c[i]) != 0 {
			rank++
		}
		set(&c[i], rank)
	}
}
