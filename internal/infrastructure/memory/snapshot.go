// Package memory implementa los puertos de lectura sobre una foto de datos en memoria,
// cargada desde un archivo YAML o JSON. La usan el CLI y las pruebas de casos de uso.
package memory

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/entity"
)

// SnapshotFile formato del archivo de foto. JSON también se acepta (subconjunto de YAML).
type SnapshotFile struct {
	Items          []ItemRecord          `yaml:"items"`
	Warehouses     []WarehouseRecord     `yaml:"warehouses"`
	Batches        []BatchRecord         `yaml:"batches"`
	Specifications []SpecificationRecord `yaml:"specifications"`
	BatchPrices    []PriceRecord         `yaml:"batch_prices"`
	PriceLists     []PriceRecord         `yaml:"price_lists"`
}

type ItemRecord struct {
	Code             string           `yaml:"code"`
	Name             string           `yaml:"name"`
	StockUOM         string           `yaml:"stock_uom"`
	DefaultWarehouse string           `yaml:"default_warehouse"`
	StandardRate     *decimal.Decimal `yaml:"standard_rate"`
	LastPurchaseRate *decimal.Decimal `yaml:"last_purchase_rate"`
	ValuationRate    *decimal.Decimal `yaml:"valuation_rate"`
}

type WarehouseRecord struct {
	Name    string `yaml:"name"`
	Company string `yaml:"company"`
}

type BatchRecord struct {
	ID              string                     `yaml:"id"`
	ItemCode        string                     `yaml:"item_code"`
	Warehouse       string                     `yaml:"warehouse"`
	Quantity        decimal.Decimal            `yaml:"qty"`
	ExpiryDate      string                     `yaml:"expiry_date"`
	ManufactureDate string                     `yaml:"manufacture_date"`
	UnitCost        *decimal.Decimal           `yaml:"unit_cost"`
	Currency        string                     `yaml:"currency"`
	Quality         map[string]decimal.Decimal `yaml:"quality"`
}

type SpecificationRecord struct {
	ItemCode   string            `yaml:"item_code"`
	Customer   string            `yaml:"customer"`
	Parameters []ParameterRecord `yaml:"parameters"`
}

type ParameterRecord struct {
	Name string           `yaml:"name"`
	Min  *decimal.Decimal `yaml:"min"`
	Max  *decimal.Decimal `yaml:"max"`
}

// PriceRecord precio de lote (BatchID) o de lista (PriceList) con vigencia opcional.
type PriceRecord struct {
	ItemCode  string          `yaml:"item_code"`
	BatchID   string          `yaml:"batch_id"`
	PriceList string          `yaml:"price_list"`
	Rate      decimal.Decimal `yaml:"rate"`
	Currency  string          `yaml:"currency"`
	ValidFrom string          `yaml:"valid_from"`
	ValidTo   string          `yaml:"valid_to"`
}

// LoadFile lee y valida un archivo de foto.
func LoadFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("abrir foto: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodifica una foto desde r.
func Load(r io.Reader) (*Store, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("leer foto: %w", err)
	}
	var file SnapshotFile
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decodificar foto: %w", err)
	}
	return FromFile(file)
}

// FromFile construye el almacén a partir del archivo ya decodificado.
func FromFile(file SnapshotFile) (*Store, error) {
	s := NewStore()
	for _, it := range file.Items {
		s.AddItem(entity.Item{
			Code: it.Code, Name: it.Name, StockUOM: it.StockUOM, DefaultWarehouse: it.DefaultWarehouse,
			StandardRate: it.StandardRate, LastPurchaseRate: it.LastPurchaseRate, ValuationRate: it.ValuationRate,
		})
	}
	for _, w := range file.Warehouses {
		s.AddWarehouse(entity.Warehouse{Name: w.Name, Company: w.Company})
	}
	for i, b := range file.Batches {
		if b.ID == "" || b.ItemCode == "" {
			return nil, fmt.Errorf("lote %d: id e item_code son obligatorios", i)
		}
		exp, err := parseDate(b.ExpiryDate)
		if err != nil {
			return nil, fmt.Errorf("lote %s: expiry_date: %w", b.ID, err)
		}
		mfg, err := parseDate(b.ManufactureDate)
		if err != nil {
			return nil, fmt.Errorf("lote %s: manufacture_date: %w", b.ID, err)
		}
		s.AddBatch(entity.Batch{
			ID: b.ID, ItemCode: b.ItemCode, Warehouse: b.Warehouse, QuantityAvailable: b.Quantity,
			ExpiryDate: exp, ManufactureDate: mfg, UnitCostHint: b.UnitCost, Currency: b.Currency,
			QualityParameters: b.Quality,
		})
	}
	for _, sp := range file.Specifications {
		spec := entity.Specification{ItemCode: sp.ItemCode, Customer: sp.Customer}
		for _, p := range sp.Parameters {
			spec.Parameters = append(spec.Parameters, entity.ParameterSpec{Name: p.Name, Min: p.Min, Max: p.Max})
		}
		s.AddSpecification(spec)
	}
	for _, p := range file.BatchPrices {
		pr, err := toPrice(p)
		if err != nil {
			return nil, err
		}
		s.AddBatchPrice(pr)
	}
	for _, p := range file.PriceLists {
		pr, err := toPrice(p)
		if err != nil {
			return nil, err
		}
		s.AddPriceListRate(pr)
	}
	return s, nil
}

func toPrice(p PriceRecord) (Price, error) {
	from, err := parseDate(p.ValidFrom)
	if err != nil {
		return Price{}, fmt.Errorf("precio %s: valid_from: %w", p.ItemCode, err)
	}
	to, err := parseDate(p.ValidTo)
	if err != nil {
		return Price{}, fmt.Errorf("precio %s: valid_to: %w", p.ItemCode, err)
	}
	return Price{ItemCode: p.ItemCode, BatchID: p.BatchID, PriceList: p.PriceList, Rate: p.Rate, Currency: p.Currency, ValidFrom: from, ValidTo: to}, nil
}

// parseDate acepta fecha (2006-01-02) o RFC3339; vacío = sin fecha.
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			u := t.UTC()
			return &u, nil
		}
	}
	return nil, fmt.Errorf("fecha inválida %q", s)
}
