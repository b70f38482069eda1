package csvimport

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/models"
	"github.com/shopspring/decimal"
)

// Column names in the legacy export, lower-cased.
const (
	colID          = "id"
	colName        = "name"
	colShort       = "short description"
	colDescription = "description"
	colCategories  = "categories"
	colImages      = "images"
	colSalePrice   = "sale price"
	colRegular     = "regular price"
	colPublished   = "published"
	colFeatured    = "is featured?"
	colExternalURL = "external url"
	colButtonText  = "button text"
)

var ErrMissingColumns = errors.New("csv: export needs ID and Name columns")

// ImportedProduct is one export row mapped onto a product. Line is the
// 1-based record number in the file, header included.
type ImportedProduct struct {
	Line    int
	Product models.Product
}

type Result struct {
	Products []ImportedProduct
	Skipped  int
	Problems []string
}

// Import parses the legacy export. Rows without a name or with an unusable
// id or price are skipped and reported in Problems.
func Import(r io.Reader) (*Result, error) {
	records, err := Parse(r)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrMissingColumns
	}

	cols := make(map[string]int)
	for i, name := range records[0] {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, dup := cols[key]; !dup {
			cols[key] = i
		}
	}
	if _, ok := cols[colID]; !ok {
		return nil, ErrMissingColumns
	}
	if _, ok := cols[colName]; !ok {
		return nil, ErrMissingColumns
	}

	get := func(row []string, col string) string {
		i, ok := cols[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	res := &Result{}
	skip := func(line int, format string, args ...any) {
		res.Skipped++
		res.Problems = append(res.Problems, fmt.Sprintf("line %d: ", line)+fmt.Sprintf(format, args...))
	}

	for n, row := range records[1:] {
		line := n + 2

		name := get(row, colName)
		if name == "" {
			skip(line, "no name")
			continue
		}

		legacyID, err := strconv.ParseInt(get(row, colID), 10, 64)
		if err != nil || legacyID <= 0 {
			skip(line, "invalid id %q", get(row, colID))
			continue
		}

		sale, err := ParsePrice(get(row, colSalePrice))
		if err != nil {
			skip(line, "sale price: %v", err)
			continue
		}
		regular, err := ParsePrice(get(row, colRegular))
		if err != nil {
			skip(line, "regular price: %v", err)
			continue
		}
		// Products with no sale price sell at the regular price.
		if sale.IsZero() {
			sale = regular
		}
		if regular.IsZero() {
			regular = sale
		}

		published := true
		if _, ok := cols[colPublished]; ok {
			published = parseFlag(get(row, colPublished))
		}

		purchaseURL := get(row, colExternalURL)
		if purchaseURL == "" && looksLikeURL(get(row, colButtonText)) {
			purchaseURL = get(row, colButtonText)
		}

		id := legacyID
		res.Products = append(res.Products, ImportedProduct{
			Line: line,
			Product: models.Product{
				LegacyID:        &id,
				Name:            name,
				Description:     unescape(get(row, colShort)),
				LongDescription: unescape(get(row, colDescription)),
				Category:        firstCategory(get(row, colCategories)),
				ImageURL:        firstItem(get(row, colImages)),
				SalePrice:       sale,
				RegularPrice:    regular,
				PurchaseURL:     purchaseURL,
				Featured:        parseFlag(get(row, colFeatured)),
				Published:       published,
				SortOrder:       n,
			},
		})
	}

	return res, nil
}

var priceReplacer = strings.NewReplacer("₹", "", "INR", "", "Rs.", "", "Rs", "", ",", "", " ", "")

// ParsePrice reads a rupee amount such as "₹1,299.00". Empty is zero.
func ParsePrice(s string) (decimal.Decimal, error) {
	cleaned := priceReplacer.Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price %q", s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative price %q", s)
	}
	if !d.Equal(d.Round(2)) {
		return decimal.Zero, fmt.Errorf("price %q has more than two decimal places", s)
	}
	return d, nil
}

func parseFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}

// firstCategory keeps the top level of the first category, so
// "OTT > Netflix, Music" becomes "OTT".
func firstCategory(s string) string {
	first := firstItem(s)
	if i := strings.Index(first, ">"); i >= 0 {
		first = first[:i]
	}
	return strings.TrimSpace(first)
}

func firstItem(s string) string {
	if i := strings.Index(s, ","); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// The export writes line breaks inside descriptions as a literal \n.
func unescape(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}

func looksLikeURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
