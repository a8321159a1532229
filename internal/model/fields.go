package model

// Canonical field names as they appear in raw rows and alias tables.
const (
	FieldSKU             = "sku"
	FieldDescription     = "description"
	FieldHTSCode         = "hts_code"
	FieldCountryOfOrigin = "country_of_origin"
	FieldPackageCount    = "package_count"
	FieldQuantity        = "quantity"
	FieldNetWeightKg     = "net_weight_kg"
	FieldGrossWeightKg   = "gross_weight_kg"
	FieldUnitPrice       = "unit_price"
	FieldValue           = "value"
	FieldQtyUnit         = "qty_unit"
	FieldInvoiceNumber   = "invoice_number"
)

// CanonicalFields lists every canonical field in schema order.
var CanonicalFields = []string{
	FieldSKU,
	FieldDescription,
	FieldHTSCode,
	FieldCountryOfOrigin,
	FieldPackageCount,
	FieldQuantity,
	FieldNetWeightKg,
	FieldGrossWeightKg,
	FieldUnitPrice,
	FieldValue,
	FieldQtyUnit,
	FieldInvoiceNumber,
}

// IsCanonicalField reports whether name is a canonical field name.
func IsCanonicalField(name string) bool {
	for _, f := range CanonicalFields {
		if f == name {
			return true
		}
	}
	return false
}
