package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// HTSValue is one ranked entry of a summary's top-HTS breakdown.
type HTSValue struct {
	HTSCode string          `json:"hts_code"`
	Value   decimal.Decimal `json:"value"`
}

// InvoiceSummary is a read-only aggregate over a line-item collection.
// It is recomputed in full on every request, never updated in place.
type InvoiceSummary struct {
	InvoiceNumber    string          `json:"invoice_number,omitempty"`
	TotalLines       int             `json:"total_lines"`
	TotalQuantity    decimal.Decimal `json:"total_quantity"`
	TotalNetWeight   decimal.Decimal `json:"total_net_weight"`
	TotalGrossWeight decimal.Decimal `json:"total_gross_weight"`
	TotalValue       decimal.Decimal `json:"total_value"`
	UniqueHTSCodes   int             `json:"unique_hts_codes"`
	UniqueSKUs       int             `json:"unique_skus"`
	Countries        map[string]int  `json:"countries"`
	TopHTSCodes      []HTSValue      `json:"top_hts_codes"`
	GeneratedAt      time.Time       `json:"generated_at"`
}
