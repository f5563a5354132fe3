package inventory

import (
	"time"

	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/entity"
)

// FEFOViolations cuenta los pares (lote omitido, lote usado) en los que el lote omitido
// vence antes que el usado. Lotes sin fecha de caducidad no participan.
func FEFOViolations(used []entity.AllocationLine, eligible []entity.Batch) int {
	usedIDs := make(map[string]struct{}, len(used))
	for _, l := range used {
		usedIDs[l.BatchID] = struct{}{}
	}
	violations := 0
	for _, skipped := range eligible {
		if _, ok := usedIDs[skipped.ID]; ok || skipped.ExpiryDate == nil || !skipped.QuantityAvailable.IsPositive() {
			continue
		}
		for _, l := range used {
			if l.ExpiryDate != nil && skipped.ExpiryDate.Before(*l.ExpiryDate) {
				violations++
			}
		}
	}
	return violations
}

// MaxAgeDays edad en días del lote más antiguo usado, a partir de su fecha de fabricación.
// ok es false si ningún lote usado tiene fecha de fabricación conocida.
func MaxAgeDays(used []entity.AllocationLine, asOf time.Time) (days int, ok bool) {
	for _, l := range used {
		if l.ManufactureDate == nil {
			continue
		}
		age := int(asOf.Sub(*l.ManufactureDate).Hours() / 24)
		if !ok || age > days {
			days, ok = age, true
		}
	}
	return days, ok
}
