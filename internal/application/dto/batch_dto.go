package dto

import "github.com/rogerboy38/raven-ai-agent-sub002/internal/domain/batchcode"

// IdentifierResponse identificador decodificado de un código de lote.
type IdentifierResponse struct {
	Code      string `json:"code"`
	Parsed    bool   `json:"parsed"`
	Format    string `json:"format,omitempty"`
	Date      string `json:"date,omitempty"`
	Year      int    `json:"year,omitempty"`
	Week      int    `json:"week,omitempty"`
	Weekday   int    `json:"weekday,omitempty"`
	Product   string `json:"product,omitempty"`
	Folio     int    `json:"folio,omitempty"`
	Plant     int    `json:"plant,omitempty"`
	Sequence  int    `json:"sequence,omitempty"`
	SubLot    int    `json:"sub_lot,omitempty"`
	SortKey   int64  `json:"sort_key,omitempty"`
	Ambiguous bool   `json:"ambiguous,omitempty"`
}

// NewIdentifierResponse arma la respuesta; ok false significa "sin identificador".
func NewIdentifierResponse(code string, id batchcode.Identifier, ok bool) IdentifierResponse {
	if !ok {
		return IdentifierResponse{Code: code}
	}
	return IdentifierResponse{
		Code: code, Parsed: true, Format: string(id.Format), Date: id.Date.Format(DateLayout),
		Year: id.Year, Week: id.Week, Weekday: id.Weekday, Product: id.Product, Folio: id.Folio,
		Plant: id.Plant, Sequence: id.Sequence, SubLot: id.SubLot, SortKey: id.SortKey,
		Ambiguous: id.Ambiguous,
	}
}
