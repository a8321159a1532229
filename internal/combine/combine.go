// Package combine merges the two normalized row-sets of one file pair
// into a single collection under the TXT-authoritative policy.
package combine

import "github.com/sells-group/invoice-cli/internal/model"

// Merge fuses the txt-sourced and pdf-sourced parses of one pair.
//
// The TXT parse is authoritative whenever it produced at least one
// row: TXT values are never overwritten, and PDF rows contribute only
// by backfilling fields that are empty or zero on every TXT row. Only
// identity-free PDF rows backfill — a PDF row carrying its own sku or
// hts_code is a competing line item, not document-level data. When
// the TXT parse is empty the PDF rows pass through unchanged. Every
// merged row is retagged as combined.
//
// Merging an already-combined set with an empty set returns the set
// unchanged apart from the (already-set) tag, so combining is
// idempotent.
func Merge(txtItems, pdfItems []model.LineItem) []model.LineItem {
	if len(txtItems) == 0 {
		return retag(pdfItems)
	}

	merged := retag(txtItems)
	for _, pdf := range pdfItems {
		if pdf.HasIdentity() {
			continue
		}
		backfill(merged, pdf)
	}
	return merged
}

// retag copies items with source_tag set to combined.
func retag(items []model.LineItem) []model.LineItem {
	out := make([]model.LineItem, len(items))
	for i, item := range items {
		item.Source = model.SourceCombined
		out[i] = item
	}
	return out
}

// backfill fills each canonical field from the PDF row on every
// merged row, but only when the field is empty or zero on ALL of
// them. A field any TXT row filled stays TXT-owned everywhere.
func backfill(merged []model.LineItem, pdf model.LineItem) {
	if pdf.Description != "" && allEmpty(merged, func(li model.LineItem) bool { return li.Description == "" }) {
		for i := range merged {
			merged[i].Description = pdf.Description
		}
	}
	if pdf.CountryOfOrigin != "" && allEmpty(merged, func(li model.LineItem) bool { return li.CountryOfOrigin == "" }) {
		for i := range merged {
			merged[i].CountryOfOrigin = pdf.CountryOfOrigin
		}
	}
	if pdf.InvoiceNumber != "" && allEmpty(merged, func(li model.LineItem) bool { return li.InvoiceNumber == "" }) {
		for i := range merged {
			merged[i].InvoiceNumber = pdf.InvoiceNumber
		}
	}
	if pdf.QtyUnit != "" && allEmpty(merged, func(li model.LineItem) bool { return li.QtyUnit == "" }) {
		for i := range merged {
			merged[i].QtyUnit = pdf.QtyUnit
		}
	}
	if pdf.PackageCount > 0 && allEmpty(merged, func(li model.LineItem) bool { return li.PackageCount == 0 }) {
		for i := range merged {
			merged[i].PackageCount = pdf.PackageCount
		}
	}
	if !pdf.GrossWeightKg.IsZero() && allEmpty(merged, func(li model.LineItem) bool { return li.GrossWeightKg.IsZero() }) {
		for i := range merged {
			merged[i].GrossWeightKg = pdf.GrossWeightKg
		}
	}
	if !pdf.NetWeightKg.IsZero() && allEmpty(merged, func(li model.LineItem) bool { return li.NetWeightKg.IsZero() }) {
		for i := range merged {
			merged[i].NetWeightKg = pdf.NetWeightKg
		}
	}

	recompute := false
	if !pdf.Quantity.IsZero() && allEmpty(merged, func(li model.LineItem) bool { return li.Quantity.IsZero() }) {
		for i := range merged {
			merged[i].Quantity = pdf.Quantity
		}
		recompute = true
	}
	if !pdf.UnitPrice.IsZero() && allEmpty(merged, func(li model.LineItem) bool { return li.UnitPrice.IsZero() }) {
		for i := range merged {
			merged[i].UnitPrice = pdf.UnitPrice
		}
		recompute = true
	}
	// Backfilled quantity or price invalidates the precomputed value.
	if recompute {
		for i := range merged {
			merged[i].Value = merged[i].Quantity.Mul(merged[i].UnitPrice)
		}
	}
}

func allEmpty(items []model.LineItem, empty func(model.LineItem) bool) bool {
	for _, item := range items {
		if !empty(item) {
			return false
		}
	}
	return true
}
