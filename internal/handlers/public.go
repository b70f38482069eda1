package handlers

import (
	"net/http"
	"strings"

	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/catalog"
	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/content"
	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/metrics"
	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/models"
	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/whatsapp"
)

const (
	homeFeaturedLimit = 8
	homePostLimit     = 3
	relatedLimit      = 4
)

// PublicHandler serves the storefront.
type PublicHandler struct {
	*Site
}

func (h *PublicHandler) Home(w http.ResponseWriter, r *http.Request) {
	products, err := h.Reads.Products(r.Context())
	if err != nil {
		h.serverError(w, "Error fetching products", err)
		return
	}
	posts, err := h.Reads.Posts(r.Context())
	if err != nil {
		h.serverError(w, "Error fetching posts", err)
		return
	}

	featured := catalog.Featured(products)
	if len(featured) > homeFeaturedLimit {
		featured = featured[:homeFeaturedLimit]
	}
	if len(posts) > homePostLimit {
		posts = posts[:homePostLimit]
	}

	data := h.pageData(w, r)
	data["Hero"] = content.Object(h.contentBlob(r, content.KeyHomeHero))
	data["About"] = content.Object(h.contentBlob(r, content.KeyHomeAbout))
	data["Categories"] = catalog.Categories(products)
	data["Featured"] = featured
	data["Posts"] = posts
	h.Templates.Render(w, http.StatusOK, "home.html", data)
}

func (h *PublicHandler) Products(w http.ResponseWriter, r *http.Request) {
	products, err := h.Reads.Products(r.Context())
	if err != nil {
		h.serverError(w, "Error fetching products", err)
		return
	}

	q := catalog.Query{
		Search:   strings.TrimSpace(r.URL.Query().Get("q")),
		Category: r.URL.Query().Get("category"),
		Sort:     r.URL.Query().Get("sort"),
	}
	if q.Category == "" {
		q.Category = catalog.AllCategories
	}

	data := h.pageData(w, r)
	data["Query"] = q
	data["Categories"] = catalog.Categories(products)
	data["Products"] = catalog.Filter(products, q)
	data["Total"] = len(products)
	h.Templates.Render(w, http.StatusOK, "products.html", data)
}

// findProduct resolves a public product id, which is either the legacy
// numeric id or the UUID. Only published products are found.
func (h *PublicHandler) findProduct(r *http.Request, id string) (*models.Product, []models.Product, error) {
	products, err := h.Reads.Products(r.Context())
	if err != nil {
		return nil, nil, err
	}
	for i := range products {
		if products[i].PathID() == id || products[i].ID == id {
			p := products[i]
			return &p, products, nil
		}
	}
	return nil, products, nil
}

func (h *PublicHandler) Product(w http.ResponseWriter, r *http.Request) {
	p, products, err := h.findProduct(r, r.PathValue("id"))
	if err != nil {
		h.serverError(w, "Error fetching product", err)
		return
	}
	if p == nil {
		h.notFound(w, r)
		return
	}

	var related []models.Product
	for _, other := range products {
		if other.ID != p.ID && strings.EqualFold(other.Category, p.Category) {
			related = append(related, other)
			if len(related) == relatedLimit {
				break
			}
		}
	}

	data := h.pageData(w, r)
	site := data["Site"].(content.SiteConfig)
	data["Product"] = p
	data["Discount"] = catalog.Discount(*p)
	data["Savings"] = catalog.Savings(*p)
	data["WhatsAppLink"] = whatsapp.Link(site.WhatsAppNumber, whatsapp.ProductMessage(*p, h.productURL(*p)))
	data["Related"] = related
	h.Templates.Render(w, http.StatusOK, "product.html", data)
}

func (h *PublicHandler) productURL(p models.Product) string {
	return h.BaseURL + "/product/" + p.PathID()
}

// Buy sends the visitor to the product's checkout page, or to WhatsApp when
// the product has none.
func (h *PublicHandler) Buy(w http.ResponseWriter, r *http.Request) {
	p, _, err := h.findProduct(r, r.PathValue("id"))
	if err != nil {
		h.serverError(w, "Error fetching product", err)
		return
	}
	if p == nil {
		h.notFound(w, r)
		return
	}
	if p.PurchaseURL != "" {
		metrics.RecordRedirect("buy")
		http.Redirect(w, r, p.PurchaseURL, http.StatusFound)
		return
	}
	metrics.RecordRedirect("whatsapp")
	site := h.siteConfig(r)
	http.Redirect(w, r, whatsapp.Link(site.WhatsAppNumber, whatsapp.ProductMessage(*p, h.productURL(*p))), http.StatusFound)
}

// WhatsApp opens a chat about one product, or a general chat when no id is
// given.
func (h *PublicHandler) WhatsApp(w http.ResponseWriter, r *http.Request) {
	site := h.siteConfig(r)
	text := "Hi! I have a question about " + site.BrandName + "."
	if id := r.PathValue("id"); id != "" {
		p, _, err := h.findProduct(r, id)
		if err != nil {
			h.serverError(w, "Error fetching product", err)
			return
		}
		if p == nil {
			h.notFound(w, r)
			return
		}
		text = whatsapp.ProductMessage(*p, h.productURL(*p))
	}
	metrics.RecordRedirect("whatsapp")
	http.Redirect(w, r, whatsapp.Link(site.WhatsAppNumber, text), http.StatusFound)
}

func (h *PublicHandler) AllTools(w http.ResponseWriter, r *http.Request) {
	products, err := h.Reads.Products(r.Context())
	if err != nil {
		h.serverError(w, "Error fetching products", err)
		return
	}
	data := h.pageData(w, r)
	data["Categories"] = catalog.Categories(products)
	data["Groups"] = catalog.Group(products)
	h.Templates.Render(w, http.StatusOK, "alltools.html", data)
}

func (h *PublicHandler) About(w http.ResponseWriter, r *http.Request) {
	h.copyPage(w, r, "about.html", content.KeyPagesAbout)
}

func (h *PublicHandler) Contact(w http.ResponseWriter, r *http.Request) {
	h.copyPage(w, r, "contact.html", content.KeyPagesContact)
}

func (h *PublicHandler) Refunds(w http.ResponseWriter, r *http.Request) {
	h.copyPage(w, r, "refunds.html", content.KeyPagesRefunds)
}

// copyPage renders a page whose text lives in one content blob.
func (h *PublicHandler) copyPage(w http.ResponseWriter, r *http.Request, name, key string) {
	data := h.pageData(w, r)
	data["Copy"] = content.Object(h.contentBlob(r, key))
	h.Templates.Render(w, http.StatusOK, name, data)
}

func (h *PublicHandler) FAQ(w http.ResponseWriter, r *http.Request) {
	data := h.pageData(w, r)
	data["FAQs"] = content.FAQs(h.contentBlob(r, content.KeyPagesFAQ))
	h.Templates.Render(w, http.StatusOK, "faq.html", data)
}

func (h *PublicHandler) Blog(w http.ResponseWriter, r *http.Request) {
	posts, err := h.Reads.Posts(r.Context())
	if err != nil {
		h.serverError(w, "Error fetching posts", err)
		return
	}

	var categories []string
	seen := make(map[string]bool)
	for _, p := range posts {
		key := strings.ToLower(p.Category)
		if p.Category != "" && !seen[key] {
			seen[key] = true
			categories = append(categories, p.Category)
		}
	}

	category := r.URL.Query().Get("category")
	shown := posts
	if category != "" && category != catalog.AllCategories {
		shown = nil
		for _, p := range posts {
			if strings.EqualFold(p.Category, category) {
				shown = append(shown, p)
			}
		}
	}

	data := h.pageData(w, r)
	data["Categories"] = categories
	data["Category"] = category
	data["Posts"] = shown
	h.Templates.Render(w, http.StatusOK, "blog.html", data)
}

// BlogPost resolves a published post by slug, falling back to its id.
func (h *PublicHandler) BlogPost(w http.ResponseWriter, r *http.Request) {
	posts, err := h.Reads.Posts(r.Context())
	if err != nil {
		h.serverError(w, "Error fetching posts", err)
		return
	}
	id := r.PathValue("id")
	var post *models.BlogPost
	for i := range posts {
		if posts[i].Slug == id || posts[i].ID == id {
			p := posts[i]
			post = &p
			break
		}
	}
	if post == nil {
		h.notFound(w, r)
		return
	}

	data := h.pageData(w, r)
	data["Post"] = post
	h.Templates.Render(w, http.StatusOK, "blog_post.html", data)
}

// NotFound is the catch-all for unmatched paths.
func (h *PublicHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.notFound(w, r)
}

func (h *PublicHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DB.PingContext(r.Context()); err != nil {
		h.serverError(w, "Database unavailable", err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

func (h *PublicHandler) Robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("User-agent: *\nAllow: /\nDisallow: /admin\nDisallow: /api/\n\nSitemap: " + h.BaseURL + "/sitemap.xml\n"))
}
