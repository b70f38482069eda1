// Package sitemap renders sitemaps.org urlset documents.
package sitemap

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"strings"
	"time"

	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/models"
)

const xmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"

// StaticRoutes are the public pages that exist regardless of data.
var StaticRoutes = []Entry{
	{Path: "/", ChangeFreq: "daily", Priority: 1.0},
	{Path: "/products", ChangeFreq: "daily", Priority: 0.9},
	{Path: "/alltools", ChangeFreq: "weekly", Priority: 0.8},
	{Path: "/blog", ChangeFreq: "weekly", Priority: 0.7},
	{Path: "/about", ChangeFreq: "monthly", Priority: 0.5},
	{Path: "/contact", ChangeFreq: "monthly", Priority: 0.5},
	{Path: "/faq", ChangeFreq: "monthly", Priority: 0.5},
	{Path: "/refunds", ChangeFreq: "yearly", Priority: 0.3},
}

type Entry struct {
	Path       string
	LastMod    time.Time
	ChangeFreq string
	Priority   float64
}

type urlset struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []url    `xml:"url"`
}

type url struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// Build renders entries under baseURL. Duplicate paths keep the first
// entry.
func Build(baseURL string, entries []Entry) ([]byte, error) {
	base := strings.TrimRight(baseURL, "/")
	set := urlset{Xmlns: xmlns}
	seen := make(map[string]bool, len(entries))

	for _, e := range entries {
		path := e.Path
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		if seen[path] {
			continue
		}
		seen[path] = true

		u := url{Loc: base + path, ChangeFreq: e.ChangeFreq}
		if !e.LastMod.IsZero() {
			u.LastMod = e.LastMod.UTC().Format("2006-01-02")
		}
		if e.Priority > 0 {
			u.Priority = strconv.FormatFloat(min(e.Priority, 1), 'f', 1, 64)
		}
		set.URLs = append(set.URLs, u)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// ForProducts lists product pages under their public path ids.
func ForProducts(products []models.Product) []Entry {
	entries := make([]Entry, 0, len(products))
	for _, p := range products {
		entries = append(entries, Entry{
			Path:       "/product/" + p.PathID(),
			LastMod:    p.UpdatedAt,
			ChangeFreq: "weekly",
			Priority:   0.8,
		})
	}
	return entries
}

func ForPosts(posts []models.BlogPost) []Entry {
	entries := make([]Entry, 0, len(posts))
	for _, p := range posts {
		lastMod := p.UpdatedAt
		if p.PublishedAt != nil && p.PublishedAt.After(lastMod) {
			lastMod = *p.PublishedAt
		}
		entries = append(entries, Entry{
			Path:       "/blog/" + p.Slug,
			LastMod:    lastMod,
			ChangeFreq: "monthly",
			Priority:   0.6,
		})
	}
	return entries
}
