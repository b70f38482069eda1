// Package content reads the editable site-content blobs.
package content

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Well-known keys.
const (
	KeySiteConfig   = "site.config"
	KeyHomeHero     = "home.hero"
	KeyHomeAbout    = "home.about"
	KeyPagesFAQ     = "pages.faq"
	KeyPagesRefunds = "pages.refunds"
	KeyPagesContact = "pages.contact"
	KeyPagesAbout   = "pages.about"
)

const DefaultBrandName = "Dreamcrest"

// SiteConfig is the decoded form of the site.config blob.
type SiteConfig struct {
	BrandName      string
	WhatsAppNumber string
	SupportEmail   string
	InstagramURL   string
	Tagline        string
}

// ParseSiteConfig reads raw with fallbacks for absent fields. Invalid JSON
// yields the fallbacks.
func ParseSiteConfig(raw, fallbackWhatsApp string) SiteConfig {
	cfg := SiteConfig{
		BrandName:      DefaultBrandName,
		WhatsAppNumber: fallbackWhatsApp,
	}
	if !gjson.Valid(raw) {
		return cfg
	}
	res := gjson.GetMany(raw, "brand_name", "whatsapp_number", "support_email", "instagram_url", "tagline")
	if v := res[0].String(); v != "" {
		cfg.BrandName = v
	}
	if v := res[1].String(); v != "" {
		cfg.WhatsAppNumber = v
	}
	cfg.SupportEmail = res[2].String()
	cfg.InstagramURL = res[3].String()
	cfg.Tagline = res[4].String()
	return cfg
}

// Lookup returns the string at path in raw, or def.
func Lookup(raw, path, def string) string {
	r := gjson.Get(raw, path)
	if !r.Exists() || r.String() == "" {
		return def
	}
	return r.String()
}

// Decode turns a blob into a value usable from templates: objects become
// maps, arrays slices. Invalid or empty input returns nil.
func Decode(raw string) any {
	if raw == "" || !gjson.Valid(raw) {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil
	}
	return v
}

// FAQ is one question/answer pair of the pages.faq blob.
type FAQ struct {
	Question string
	Answer   string
}

// FAQs reads {"items":[{"question":..,"answer":..}]} or a bare array.
func FAQs(raw string) []FAQ {
	items := gjson.Get(raw, "items")
	if !items.Exists() {
		items = gjson.Parse(raw)
	}
	if !items.IsArray() {
		return nil
	}
	var out []FAQ
	items.ForEach(func(_, item gjson.Result) bool {
		q := item.Get("question").String()
		if q != "" {
			out = append(out, FAQ{Question: q, Answer: item.Get("answer").String()})
		}
		return true
	})
	return out
}

// Object is Decode restricted to JSON objects, so templates can index it
// safely.
func Object(raw string) map[string]any {
	m, _ := Decode(raw).(map[string]any)
	return m
}
