// Package normalize maps extracted raw rows onto the canonical
// line-item schema: alias resolution, numeric coercion, and the
// value-recompute policy all live here.
package normalize

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sells-group/invoice-cli/internal/config"
	"github.com/sells-group/invoice-cli/internal/model"
)

// Normalizer converts raw rows into canonical line items.
type Normalizer struct {
	aliases        *AliasTable
	defaultQtyUnit string
}

// NewNormalizer builds a Normalizer from config, loading the alias
// override file when one is configured.
func NewNormalizer(cfg config.NormalizeConfig) (*Normalizer, error) {
	aliases := DefaultAliasTable()
	if cfg.AliasFile != "" {
		var err error
		aliases, err = LoadAliasFile(cfg.AliasFile)
		if err != nil {
			return nil, err
		}
	}

	unit := cfg.DefaultQtyUnit
	if unit == "" {
		unit = "EA"
	}
	return &Normalizer{aliases: aliases, defaultQtyUnit: unit}, nil
}

// Aliases exposes the alias table, which the format detector uses for
// header recognition.
func (n *Normalizer) Aliases() *AliasTable {
	return n.aliases
}

// Normalize converts raw rows into line items tagged with the source.
// Rows carrying neither sku nor hts_code are dropped and tallied in
// the returned skip count. When invoiceFilter is non-empty, rows whose
// invoice number does not match it (case-insensitive exact) are
// excluded without counting as skipped.
func (n *Normalizer) Normalize(rows []model.RawRow, tag model.SourceTag, invoiceFilter string) ([]model.LineItem, int) {
	items := make([]model.LineItem, 0, len(rows))
	skipped := 0

	for _, row := range rows {
		item := n.buildItem(row, tag)
		if !item.HasIdentity() {
			skipped++
			continue
		}
		if invoiceFilter != "" && !strings.EqualFold(item.InvoiceNumber, invoiceFilter) {
			continue
		}
		items = append(items, item)
	}
	return items, skipped
}

// buildItem resolves aliases and coerces values for a single row.
// When several raw keys alias to the same canonical field, the first
// non-empty value in sorted key order wins, keeping output stable
// across runs.
func (n *Normalizer) buildItem(row model.RawRow, tag model.SourceTag) model.LineItem {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	canon := make(map[string]string, len(model.CanonicalFields))
	for _, k := range keys {
		field, ok := n.aliases.Canonical(k)
		if !ok {
			continue
		}
		v := trimQuotes(row[k])
		if v == "" {
			continue
		}
		if _, exists := canon[field]; !exists {
			canon[field] = v
		}
	}

	item := model.LineItem{
		SKU:             canon[model.FieldSKU],
		Description:     canon[model.FieldDescription],
		HTSCode:         canon[model.FieldHTSCode],
		CountryOfOrigin: canon[model.FieldCountryOfOrigin],
		PackageCount:    parseCountOr(canon[model.FieldPackageCount], 0),
		Quantity:        parseDecimalOr(canon[model.FieldQuantity], decimal.Zero),
		NetWeightKg:     parseDecimalOr(canon[model.FieldNetWeightKg], decimal.Zero),
		GrossWeightKg:   parseDecimalOr(canon[model.FieldGrossWeightKg], decimal.Zero),
		UnitPrice:       parseDecimalOr(canon[model.FieldUnitPrice], decimal.Zero),
		QtyUnit:         canon[model.FieldQtyUnit],
		InvoiceNumber:   canon[model.FieldInvoiceNumber],
		Source:          tag,
	}

	// Supplier exports list one WEIGHT column; gross mirrors net then.
	if item.GrossWeightKg.IsZero() {
		item.GrossWeightKg = item.NetWeightKg
	}
	if item.QtyUnit == "" {
		item.QtyUnit = n.defaultQtyUnit
	}

	// Value is recomputed unconditionally; a source VALUE cell that
	// disagrees with quantity × unit price is discarded.
	item.Value = item.Quantity.Mul(item.UnitPrice)

	return item
}
