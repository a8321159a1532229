package model

import "github.com/shopspring/decimal"

// Format classifies an input file for extraction dispatch.
type Format string

const (
	FormatStructuredText   Format = "structured-text"
	FormatUnstructuredText Format = "unstructured-text"
	FormatPDFText          Format = "pdf-text"
	FormatCSV              Format = "csv"
)

// SourceTag records which parse produced a line item.
type SourceTag string

const (
	SourcePDF      SourceTag = "pdf"
	SourceTXT      SourceTag = "txt"
	SourceCSV      SourceTag = "csv"
	SourceCombined SourceTag = "combined"
)

// File is one input handed to the engine: a filename plus either an
// on-disk path or in-memory content. Content wins when both are set.
type File struct {
	Filename string `json:"filename"`
	Path     string `json:"path,omitempty"`
	Content  []byte `json:"-"`
}

// RawRow maps source-specific field names to raw string values as they
// appeared in the input. Keys are matched case-insensitively by the
// normalizer; a RawRow lives only between extraction and normalization.
type RawRow map[string]string

// LineItem is the canonical invoice line every source converges to.
// Value is always recomputed as Quantity × UnitPrice; a conflicting
// source value is discarded. Immutable once emitted.
type LineItem struct {
	SKU             string          `json:"sku"`
	Description     string          `json:"description"`
	HTSCode         string          `json:"hts_code"`
	CountryOfOrigin string          `json:"country_of_origin"`
	PackageCount    int             `json:"package_count"`
	Quantity        decimal.Decimal `json:"quantity"`
	NetWeightKg     decimal.Decimal `json:"net_weight_kg"`
	GrossWeightKg   decimal.Decimal `json:"gross_weight_kg"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Value           decimal.Decimal `json:"value"`
	QtyUnit         string          `json:"qty_unit"`
	InvoiceNumber   string          `json:"invoice_number,omitempty"`
	Source          SourceTag       `json:"source_tag"`
}

// HasIdentity reports whether the row carries at least one identifying
// field. Rows without identity are dropped during normalization.
func (li LineItem) HasIdentity() bool {
	return li.SKU != "" || li.HTSCode != ""
}

// FilePair is a proposed PDF↔TXT pairing describing the same shipment.
// It exists only as a pairing-resolver proposal and is consumed once.
type FilePair struct {
	PDF   File    `json:"pdf"`
	TXT   File    `json:"txt"`
	Score float64 `json:"score"`
}
