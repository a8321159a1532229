// Package aggregate computes read-only summaries over a line-item
// collection. Every summary is rebuilt from scratch per call; nothing
// here mutates or caches.
package aggregate

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sells-group/invoice-cli/internal/config"
	"github.com/sells-group/invoice-cli/internal/model"
)

// Aggregator builds InvoiceSummary values.
type Aggregator struct {
	topHTS int
}

// NewAggregator creates an Aggregator from config.
func NewAggregator(cfg config.AggregateConfig) *Aggregator {
	top := cfg.TopHTS
	if top <= 0 {
		top = 10
	}
	return &Aggregator{topHTS: top}
}

// Summarize computes the invoice summary in a single pass over items,
// with exact decimal totals. The invoice number is taken from the
// first row that carries one.
func (a *Aggregator) Summarize(items []model.LineItem) *model.InvoiceSummary {
	s := &model.InvoiceSummary{
		TotalLines:  len(items),
		Countries:   map[string]int{},
		GeneratedAt: time.Now().UTC(),
	}

	htsValues := map[string]decimal.Decimal{}
	skus := map[string]struct{}{}

	for _, item := range items {
		s.TotalQuantity = s.TotalQuantity.Add(item.Quantity)
		s.TotalNetWeight = s.TotalNetWeight.Add(item.NetWeightKg)
		s.TotalGrossWeight = s.TotalGrossWeight.Add(item.GrossWeightKg)
		s.TotalValue = s.TotalValue.Add(item.Value)

		if item.CountryOfOrigin != "" {
			s.Countries[item.CountryOfOrigin]++
		}
		if item.HTSCode != "" {
			htsValues[item.HTSCode] = htsValues[item.HTSCode].Add(item.Value)
		}
		if item.SKU != "" {
			skus[item.SKU] = struct{}{}
		}
		if s.InvoiceNumber == "" {
			s.InvoiceNumber = item.InvoiceNumber
		}
	}

	s.UniqueHTSCodes = len(htsValues)
	s.UniqueSKUs = len(skus)
	s.TopHTSCodes = a.rankHTS(htsValues)

	return s
}

// rankHTS orders HTS buckets by summed value descending, ties by HTS
// code ascending, truncated to the configured top N.
func (a *Aggregator) rankHTS(htsValues map[string]decimal.Decimal) []model.HTSValue {
	ranked := make([]model.HTSValue, 0, len(htsValues))
	for code, value := range htsValues {
		ranked = append(ranked, model.HTSValue{HTSCode: code, Value: value})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if !ranked[i].Value.Equal(ranked[j].Value) {
			return ranked[i].Value.GreaterThan(ranked[j].Value)
		}
		return ranked[i].HTSCode < ranked[j].HTSCode
	})
	if len(ranked) > a.topHTS {
		ranked = ranked[:a.topHTS]
	}
	return ranked
}

// BySKU collapses items to one row per distinct sku, in order of
// first appearance. Quantities, package counts, weights, and values
// are summed; unit price is recomputed as value/quantity (zero when
// quantity is zero); the first non-empty description, hts, country,
// and qty unit per sku win. Rows without a sku pass through unmerged.
func BySKU(items []model.LineItem) []model.LineItem {
	index := map[string]int{}
	out := make([]model.LineItem, 0, len(items))

	for _, item := range items {
		if item.SKU == "" {
			out = append(out, item)
			continue
		}

		i, seen := index[item.SKU]
		if !seen {
			index[item.SKU] = len(out)
			out = append(out, item)
			continue
		}

		agg := &out[i]
		agg.Quantity = agg.Quantity.Add(item.Quantity)
		agg.PackageCount += item.PackageCount
		agg.NetWeightKg = agg.NetWeightKg.Add(item.NetWeightKg)
		agg.GrossWeightKg = agg.GrossWeightKg.Add(item.GrossWeightKg)
		agg.Value = agg.Value.Add(item.Value)

		if agg.Description == "" {
			agg.Description = item.Description
		}
		if agg.HTSCode == "" {
			agg.HTSCode = item.HTSCode
		}
		if agg.CountryOfOrigin == "" {
			agg.CountryOfOrigin = item.CountryOfOrigin
		}
		if agg.QtyUnit == "" {
			agg.QtyUnit = item.QtyUnit
		}
		if agg.InvoiceNumber == "" {
			agg.InvoiceNumber = item.InvoiceNumber
		}
	}

	for i := range out {
		if out[i].SKU == "" {
			continue
		}
		if out[i].Quantity.IsZero() {
			out[i].UnitPrice = decimal.Zero
		} else {
			out[i].UnitPrice = out[i].Value.DivRound(out[i].Quantity, 4)
		}
	}
	return out
}
