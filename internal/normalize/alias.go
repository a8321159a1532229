package normalize

import (
	"os"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/invoice-cli/internal/model"
)

// multiSpace collapses runs of whitespace in header tokens.
var multiSpace = regexp.MustCompile(`\s+`)

// normalizeKey canonicalizes a raw column name for alias lookup:
// quotes and parentheses stripped, whitespace collapsed, uppercased.
// "net weight (kg)" and "NET  WEIGHT KG" resolve identically.
func normalizeKey(raw string) string {
	s := strings.Trim(strings.TrimSpace(raw), `"'`)
	s = strings.NewReplacer("(", " ", ")", " ").Replace(s)
	s = multiSpace.ReplaceAllString(strings.TrimSpace(s), " ")
	return strings.ToUpper(s)
}

// defaultAliases maps normalized raw column names to canonical fields.
// The raw side covers the layouts seen in supplier exports plus the
// canonical names and our own CSV export headers, so re-importing an
// exported file round-trips.
var defaultAliases = map[string]string{
	// supplier tab exports
	"HTTS":        model.FieldHTSCode,
	"C/N":         model.FieldCountryOfOrigin,
	"PART":        model.FieldSKU,
	"PART_DESC":   model.FieldDescription,
	"QUANTITY":    model.FieldQuantity,
	"AMT":         model.FieldUnitPrice,
	"AMOUNT":      model.FieldUnitPrice,
	"WEIGHT":      model.FieldNetWeightKg,
	"INVOICE_NBR": model.FieldInvoiceNumber,

	// common spellings
	"HTS":            model.FieldHTSCode,
	"HTS CODE":       model.FieldHTSCode,
	"QTY":            model.FieldQuantity,
	"INVOICE NO":     model.FieldInvoiceNumber,
	"INVOICE NO.":    model.FieldInvoiceNumber,
	"INVOICE NUMBER": model.FieldInvoiceNumber,
	"NET WEIGHT KG":  model.FieldNetWeightKg,
	"PACKAGE COUNT":  model.FieldPackageCount,
	"PACKAGES":       model.FieldPackageCount,

	// canonical names map to themselves
	"SKU":               model.FieldSKU,
	"DESCRIPTION":       model.FieldDescription,
	"HTS_CODE":          model.FieldHTSCode,
	"COUNTRY_OF_ORIGIN": model.FieldCountryOfOrigin,
	"PACKAGE_COUNT":     model.FieldPackageCount,
	"NET_WEIGHT_KG":     model.FieldNetWeightKg,
	"GROSS_WEIGHT_KG":   model.FieldGrossWeightKg,
	"UNIT_PRICE":        model.FieldUnitPrice,
	"VALUE":             model.FieldValue,
	"QTY_UNIT":          model.FieldQtyUnit,
	"INVOICE_NUMBER":    model.FieldInvoiceNumber,

	// export headers
	"COUNTRY OF ORIGIN": model.FieldCountryOfOrigin,
	"NO. OF PACKAGE":    model.FieldPackageCount,
	"NET WEIGHT":        model.FieldNetWeightKg,
	"GROSS WEIGHT":      model.FieldGrossWeightKg,
	"UNIT PRICE":        model.FieldUnitPrice,
	"QTY UNIT":          model.FieldQtyUnit,
}

// AliasTable resolves raw column names to canonical field names.
type AliasTable struct {
	aliases map[string]string
}

// DefaultAliasTable returns the built-in alias mapping.
func DefaultAliasTable() *AliasTable {
	aliases := make(map[string]string, len(defaultAliases))
	for k, v := range defaultAliases {
		aliases[k] = v
	}
	return &AliasTable{aliases: aliases}
}

// aliasFile is the on-disk YAML shape of an alias override file.
type aliasFile struct {
	Version int               `yaml:"version"`
	Aliases map[string]string `yaml:"aliases"`
}

// LoadAliasFile reads a YAML alias file and merges its entries over
// the built-in defaults, so a site file only lists additions and
// overrides. Every target must be a canonical field name.
func LoadAliasFile(path string) (*AliasTable, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "normalize: read alias file %s", path)
	}

	var f aliasFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, eris.Wrapf(err, "normalize: parse alias file %s", path)
	}

	t := DefaultAliasTable()
	for raw, field := range f.Aliases {
		if !model.IsCanonicalField(field) {
			return nil, eris.Errorf("normalize: alias %q maps to unknown field %q", raw, field)
		}
		t.aliases[normalizeKey(raw)] = field
	}
	return t, nil
}

// Canonical resolves a raw column name to its canonical field.
func (t *AliasTable) Canonical(raw string) (string, bool) {
	field, ok := t.aliases[normalizeKey(raw)]
	return field, ok
}

// Knows reports whether the raw column name is a recognized header.
// The format detector uses this to count structured columns.
func (t *AliasTable) Knows(raw string) bool {
	_, ok := t.Canonical(raw)
	return ok
}
