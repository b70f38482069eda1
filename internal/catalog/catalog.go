// Package catalog holds the storefront's pricing arithmetic and the catalog
// search, category filter and sort applied to the fetched product list.
package catalog

import (
	"sort"
	"strings"

	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/models"
	"github.com/shopspring/decimal"
)

// Sort orders accepted by Filter.
const (
	SortDefault   = ""
	SortDiscount  = "discount"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

// AllCategories is the category value that disables the category filter.
const AllCategories = "all"

var hundred = decimal.NewFromInt(100)

// CalcDiscount returns the whole-number percentage saved on regular. It is 0
// unless regular is positive and sale is below it.
func CalcDiscount(regular, sale decimal.Decimal) int {
	if !regular.IsPositive() || !sale.LessThan(regular) {
		return 0
	}
	return int(regular.Sub(sale).Div(regular).Mul(hundred).Round(0).IntPart())
}

// Discount is CalcDiscount for a product.
func Discount(p models.Product) int {
	return CalcDiscount(p.RegularPrice, p.SalePrice)
}

// Savings is the rupee amount saved, never negative.
func Savings(p models.Product) decimal.Decimal {
	if p.SalePrice.LessThan(p.RegularPrice) {
		return p.RegularPrice.Sub(p.SalePrice)
	}
	return decimal.Zero
}

type Query struct {
	Search   string
	Category string
	Sort     string
}

// Filter applies q to products and returns a new slice. products is not
// modified. Sorting is stable so equal items keep their catalog order.
func Filter(products []models.Product, q Query) []models.Product {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	category := strings.TrimSpace(q.Category)
	if strings.EqualFold(category, AllCategories) {
		category = ""
	}

	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		if search != "" && !matches(p, search) {
			continue
		}
		out = append(out, p)
	}

	switch q.Sort {
	case SortDiscount:
		sort.SliceStable(out, func(i, j int) bool { return Discount(out[i]) > Discount(out[j]) })
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].SalePrice.LessThan(out[j].SalePrice) })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].SalePrice.GreaterThan(out[j].SalePrice) })
	}
	return out
}

func matches(p models.Product, lowered string) bool {
	return strings.Contains(strings.ToLower(p.Name), lowered) ||
		strings.Contains(strings.ToLower(p.Description), lowered) ||
		strings.Contains(strings.ToLower(p.Category), lowered)
}

// Featured returns the featured products in catalog order.
func Featured(products []models.Product) []models.Product {
	var out []models.Product
	for _, p := range products {
		if p.Featured {
			out = append(out, p)
		}
	}
	return out
}

// Categories lists distinct categories in first-seen order.
func Categories(products []models.Product) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range products {
		key := strings.ToLower(p.Category)
		if p.Category == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p.Category)
	}
	return out
}

// Group buckets products by category, keyed as in Categories.
func Group(products []models.Product) map[string][]models.Product {
	groups := make(map[string][]models.Product)
	index := make(map[string]string)
	for _, p := range products {
		key := strings.ToLower(p.Category)
		name, ok := index[key]
		if !ok {
			name = p.Category
			index[key] = name
		}
		groups[name] = append(groups[name], p)
	}
	return groups
}

var categoryIcons = map[string]string{
	"ott":           "🎬",
	"streaming":     "🎬",
	"music":         "🎵",
	"ai":            "🤖",
	"ai tools":      "🤖",
	"software":      "💻",
	"productivity":  "📈",
	"design":        "🎨",
	"education":     "🎓",
	"vpn":           "🛡️",
	"security":      "🛡️",
	"cloud storage": "☁️",
	"gaming":        "🎮",
}

const defaultCategoryIcon = "✨"

func CategoryIcon(category string) string {
	if icon, ok := categoryIcons[strings.ToLower(strings.TrimSpace(category))]; ok {
		return icon
	}
	return defaultCategoryIcon
}

// FormatINR renders an amount with the rupee sign and Indian digit grouping,
// e.g. ₹1,29,999. The amount is rounded to the paisa, and paise are shown
// only when present.
func FormatINR(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	d = d.Round(2)
	whole := d.Truncate(0)
	digits := whole.String()

	var grouped string
	if len(digits) <= 3 {
		grouped = digits
	} else {
		head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
		var parts []string
		for len(head) > 2 {
			parts = append([]string{head[len(head)-2:]}, parts...)
			head = head[:len(head)-2]
		}
		if head != "" {
			parts = append([]string{head}, parts...)
		}
		grouped = strings.Join(parts, ",") + "," + tail
	}

	out := sign + "₹" + grouped
	if frac := d.Sub(whole); !frac.IsZero() {
		out += frac.StringFixed(2)[1:]
	}
	return out
}
