package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	appalloc "github.com/rogerboy38/raven-ai-agent-sub002/internal/application/allocation"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/entity"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/repository"
	"github.com/rogerboy38/raven-ai-agent-sub002/pkg/textnorm"
)

var (
	_ repository.BatchRepository         = (*Store)(nil)
	_ repository.SpecificationRepository = (*Store)(nil)
	_ repository.PriceRepository         = (*Store)(nil)
	_ repository.ItemRepository          = (*Store)(nil)
	_ repository.WarehouseRepository     = (*Store)(nil)
)

// Price precio con vigencia [ValidFrom, ValidTo]; extremos nil = abiertos.
type Price struct {
	ItemCode  string
	BatchID   string
	PriceList string
	Rate      decimal.Decimal
	Currency  string
	ValidFrom *time.Time
	ValidTo   *time.Time
}

func (p Price) validAt(t time.Time) bool {
	if p.ValidFrom != nil && p.ValidFrom.After(t) {
		return false
	}
	if p.ValidTo != nil && p.ValidTo.Before(t) {
		return false
	}
	return true
}

// Store implementa todos los puertos de lectura en memoria. Seguro para uso concurrente.
type Store struct {
	mu         sync.RWMutex
	items      map[string]entity.Item
	warehouses map[string]entity.Warehouse
	batches    []entity.Batch
	specs      []entity.Specification
	batchPrice []Price
	listPrice  []Price
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{items: map[string]entity.Item{}, warehouses: map[string]entity.Warehouse{}}
}

func (s *Store) AddItem(it entity.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[it.Code] = it
}

func (s *Store) AddWarehouse(w entity.Warehouse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warehouses[w.Name] = w
}

func (s *Store) AddBatch(b entity.Batch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, b.Clone())
}

func (s *Store) AddSpecification(spec entity.Specification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.specs = append(s.specs, spec)
}

func (s *Store) AddBatchPrice(p Price) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batchPrice = append(s.batchPrice, p)
}

func (s *Store) AddPriceListRate(p Price) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listPrice = append(s.listPrice, p)
}

// Runner devuelve un SnapshotRunner que entrega este almacén para todos los puertos.
func (s *Store) Runner() appalloc.StaticRunner {
	return appalloc.StaticRunner{Batches: s, Specifications: s, Prices: s, Items: s, Warehouses: s}
}

// GetAvailableBatches lotes del artículo con existencia positiva, en orden de carga.
func (s *Store) GetAvailableBatches(ctx context.Context, itemCode, warehouse string) ([]entity.Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []entity.Batch{}
	for _, b := range s.batches {
		if b.ItemCode != itemCode || !b.QuantityAvailable.IsPositive() {
			continue
		}
		if warehouse != "" && b.Warehouse != warehouse {
			continue
		}
		out = append(out, b.Clone())
	}
	return out, nil
}

// GetSpecification prefiere la especificación del cliente y cae en la general.
func (s *Store) GetSpecification(ctx context.Context, itemCode, customer string) (*entity.Specification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var general *entity.Specification
	for i := range s.specs {
		sp := s.specs[i]
		if sp.ItemCode != itemCode {
			continue
		}
		if customer != "" && textnorm.Equal(sp.Customer, customer) {
			out := sp
			return &out, nil
		}
		if sp.Customer == "" && general == nil {
			out := sp
			general = &out
		}
	}
	return general, nil
}

// GetBatchPrice precio vigente más reciente del lote.
func (s *Store) GetBatchPrice(ctx context.Context, itemCode, batchID string, asOf time.Time) (*entity.PriceQuote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return latest(s.batchPrice, asOf, func(p Price) bool { return p.ItemCode == itemCode && p.BatchID == batchID }), nil
}

// GetPriceListRate precio vigente más reciente del artículo en la lista.
func (s *Store) GetPriceListRate(ctx context.Context, itemCode, priceList string, asOf time.Time) (*entity.PriceQuote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return latest(s.listPrice, asOf, func(p Price) bool { return p.ItemCode == itemCode && p.PriceList == priceList }), nil
}

func (s *Store) GetByCode(ctx context.Context, code string) (*entity.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[code]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

func (s *Store) GetByName(ctx context.Context, name string) (*entity.Warehouse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.warehouses[name]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (s *Store) List(ctx context.Context) ([]entity.Warehouse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.Warehouse, 0, len(s.warehouses))
	for _, w := range s.warehouses {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func latest(prices []Price, asOf time.Time, match func(Price) bool) *entity.PriceQuote {
	var best *Price
	for i := range prices {
		p := &prices[i]
		if !match(*p) || !p.validAt(asOf) {
			continue
		}
		if best == nil || (p.ValidFrom != nil && (best.ValidFrom == nil || p.ValidFrom.After(*best.ValidFrom))) {
			best = p
		}
	}
	if best == nil {
		return nil
	}
	return &entity.PriceQuote{Rate: best.Rate, Currency: best.Currency}
}
