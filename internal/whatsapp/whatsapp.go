// Package whatsapp builds wa.me chat links, which stand in for checkout.
package whatsapp

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/catalog"
	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/models"
)

const baseURL = "https://wa.me/"

// Digits strips everything but 0-9 from a phone number.
func Digits(number string) string {
	var b strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Link returns https://wa.me/<digits>?text=<escaped text>. An empty text
// leaves the query off.
func Link(number, text string) string {
	link := baseURL + Digits(number)
	if text == "" {
		return link
	}
	return link + "?text=" + url.QueryEscape(text)
}

// ProductMessage is the prefilled enquiry for a product.
func ProductMessage(p models.Product, pageURL string) string {
	msg := fmt.Sprintf("Hi! I'm interested in %s (%s).", p.Name, catalog.FormatINR(p.SalePrice))
	if pageURL != "" {
		msg += " " + pageURL
	}
	return msg
}
