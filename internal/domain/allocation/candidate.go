package allocation

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/batchcode"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/entity"
)

// Candidate lote elegible con los datos derivados que usan las estrategias.
type Candidate struct {
	Batch      entity.Batch
	UnitCost   decimal.Decimal
	CostKnown  bool
	Identifier *batchcode.Identifier

	expiryRank int
	costRank   int
	score      decimal.Decimal
}

// NewCandidate decodifica el código del lote y adjunta el costo resuelto si existe.
func NewCandidate(b entity.Batch, unitCosts map[string]decimal.Decimal) Candidate {
	c := Candidate{Batch: b}
	if id, ok := batchcode.Parse(b.ID); ok {
		c.Identifier = &id
	}
	if cost, ok := unitCosts[b.ID]; ok {
		c.UnitCost, c.CostKnown = cost, true
	} else if b.UnitCostHint != nil {
		c.UnitCost, c.CostKnown = *b.UnitCostHint, true
	}
	return c
}

// ProductionDate fecha de fabricación explícita o, en su defecto, la decodificada del código.
func (c *Candidate) ProductionDate() *time.Time {
	if c.Batch.ManufactureDate != nil {
		return c.Batch.ManufactureDate
	}
	if c.Identifier != nil {
		d := c.Identifier.Date
		return &d
	}
	return nil
}

// expiryClass: 0 con caducidad, 1 solo fecha decodificada, 2 desconocida.
func expiryClass(c *Candidate) int {
	switch {
	case c.Batch.ExpiryDate != nil:
		return 0
	case c.Identifier != nil:
		return 1
	default:
		return 2
	}
}

// compareExpiryOnly compara solo la urgencia de caducidad (sin desempates).
func compareExpiryOnly(a, b *Candidate) int {
	ca, cb := expiryClass(a), expiryClass(b)
	if ca != cb {
		return ca - cb
	}
	switch ca {
	case 0:
		return a.Batch.ExpiryDate.Compare(*b.Batch.ExpiryDate)
	case 1:
		return a.Identifier.Date.Compare(b.Identifier.Date)
	}
	return 0
}

// compareFEFO orden FEFO total: caducidad, luego clave del identificador,
// fecha de fabricación y finalmente el ID del lote para que el resultado sea determinista.
func compareFEFO(a, b *Candidate) int {
	if r := compareExpiryOnly(a, b); r != 0 {
		return r
	}
	if a.Identifier != nil && b.Identifier != nil && a.Identifier.SortKey != b.Identifier.SortKey {
		if a.Identifier.SortKey < b.Identifier.SortKey {
			return -1
		}
		return 1
	}
	ma, mb := a.ProductionDate(), b.ProductionDate()
	if ma != nil && mb != nil {
		if r := ma.Compare(*mb); r != 0 {
			return r
		}
	}
	return strings.Compare(a.Batch.ID, b.Batch.ID)
}

// compareCost costo unitario ascendente. Un lote sin precio cuenta como 0,
// el mismo valor con el que entra al desglose de costos.
func compareCost(a, b *Candidate) int {
	return a.effectiveCost().Cmp(b.effectiveCost())
}

func (c *Candidate) effectiveCost() decimal.Decimal {
	if !c.CostKnown {
		return decimal.Zero
	}
	return c.UnitCost
}
