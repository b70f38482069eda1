package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/csvimport"
	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/models"
	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/store"
	"github.com/shopspring/decimal"
)

// maxImportProblems caps how many skipped rows are echoed back as flashes.
const maxImportProblems = 5

func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Store.GetAllProducts(r.Context())
	if err != nil {
		h.serverError(w, "Error fetching products", err)
		return
	}
	data := h.pageData(w, r)
	data["Products"] = products
	h.Templates.Render(w, http.StatusOK, "admin_products.html", data)
}

func (h *AdminHandler) NewProduct(w http.ResponseWriter, r *http.Request) {
	h.renderProductForm(w, r, http.StatusOK, &models.Product{Published: true}, nil)
}

func (h *AdminHandler) EditProduct(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadProduct(w, r)
	if !ok {
		return
	}
	h.renderProductForm(w, r, http.StatusOK, p, nil)
}

func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		http.Error(w, "Invalid form. Uploads are limited to 10MB.", http.StatusBadRequest)
		return
	}
	p := &models.Product{}
	if errs := productFromForm(r, p); len(errs) > 0 {
		h.renderProductForm(w, r, http.StatusUnprocessableEntity, p, errs)
		return
	}

	imageURL, err := h.saveImage(r)
	if err != nil {
		h.renderProductForm(w, r, http.StatusUnprocessableEntity, p, map[string]string{"image": err.Error()})
		return
	}
	p.ImageURL = imageURL

	if err := h.Store.CreateProduct(r.Context(), p); err != nil {
		p.ID = ""
		if errors.Is(err, store.ErrDuplicate) {
			h.renderProductForm(w, r, http.StatusUnprocessableEntity, p, map[string]string{"legacy_id": "Another product already uses this legacy id."})
			return
		}
		h.serverError(w, "Error saving product", err)
		return
	}
	h.Reads.PurgeProducts()

	slog.Info("Product created", "id", p.ID, "name", p.Name)
	session, _ := h.SessionStore.Get(r, adminSessionName)
	flash(session, "success", "Product added.")
	redirect(w, r, session, "/admin/products")
}

func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadProduct(w, r)
	if !ok {
		return
	}
	if err := parseForm(r); err != nil {
		http.Error(w, "Invalid form. Uploads are limited to 10MB.", http.StatusBadRequest)
		return
	}
	if errs := productFromForm(r, p); len(errs) > 0 {
		h.renderProductForm(w, r, http.StatusUnprocessableEntity, p, errs)
		return
	}

	imageURL, err := h.saveImage(r)
	if err != nil {
		h.renderProductForm(w, r, http.StatusUnprocessableEntity, p, map[string]string{"image": err.Error()})
		return
	}

	if err := h.Store.UpdateProduct(r.Context(), p); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			h.renderProductForm(w, r, http.StatusUnprocessableEntity, p, map[string]string{"legacy_id": "Another product already uses this legacy id."})
			return
		}
		h.serverError(w, "Error saving product", err)
		return
	}
	if imageURL != "" {
		if err := h.Store.UpdateProductImage(r.Context(), p.ID, imageURL); err != nil {
			h.serverError(w, "Error saving product image", err)
			return
		}
	}
	h.Reads.PurgeProducts()

	session, _ := h.SessionStore.Get(r, adminSessionName)
	flash(session, "success", "Product updated.")
	redirect(w, r, session, "/admin/products")
}

func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, adminSessionName)
	err := h.Store.DeleteProduct(r.Context(), r.PathValue("id"))
	switch {
	case errors.Is(err, store.ErrNotFound):
		flash(session, "error", "Product not found.")
	case err != nil:
		slog.Error("Failed to delete product", "id", r.PathValue("id"), "error", err)
		flash(session, "error", "Error deleting product.")
	default:
		h.Reads.PurgeProducts()
		flash(session, "success", "Product deleted.")
	}
	redirect(w, r, session, "/admin/products")
}

// ImportProducts loads a WooCommerce-style CSV export. Rows are matched on
// their legacy id, so importing the same file twice updates in place.
func (h *AdminHandler) ImportProducts(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, adminSessionName)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		flash(session, "error", "Please choose a CSV file under 10MB.")
		redirect(w, r, session, "/admin/products")
		return
	}
	file, _, err := r.FormFile("csv")
	if err != nil {
		flash(session, "error", "Please choose a CSV file.")
		redirect(w, r, session, "/admin/products")
		return
	}
	defer file.Close()

	res, err := csvimport.Import(file)
	if err != nil {
		flash(session, "error", "Import failed: "+err.Error())
		redirect(w, r, session, "/admin/products")
		return
	}

	created, updated, failed := 0, 0, 0
	problems := res.Problems
	for _, item := range res.Products {
		p := item.Product
		isNew, err := h.Store.UpsertProductByLegacyID(r.Context(), &p)
		if err != nil {
			failed++
			problems = append(problems, fmt.Sprintf("line %d: %v", item.Line, err))
			continue
		}
		if isNew {
			created++
		} else {
			updated++
		}
	}
	h.Reads.PurgeProducts()

	slog.Info("Products imported", "created", created, "updated", updated, "skipped", res.Skipped, "failed", failed)
	flash(session, "success", fmt.Sprintf("Imported %d new and %d updated products. %d rows skipped.", created, updated, res.Skipped+failed))
	for i, msg := range problems {
		if i == maxImportProblems {
			flash(session, "error", fmt.Sprintf("…and %d more problems.", len(problems)-maxImportProblems))
			break
		}
		flash(session, "error", msg)
	}
	redirect(w, r, session, "/admin/products")
}

func (h *AdminHandler) loadProduct(w http.ResponseWriter, r *http.Request) (*models.Product, bool) {
	p, err := h.Store.GetProductByID(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		h.notFound(w, r)
		return nil, false
	}
	if err != nil {
		h.serverError(w, "Error fetching product", err)
		return nil, false
	}
	return p, true
}

func (h *AdminHandler) renderProductForm(w http.ResponseWriter, r *http.Request, status int, p *models.Product, errs map[string]string) {
	data := h.pageData(w, r)
	data["Product"] = p
	data["Errors"] = errs
	h.Templates.Render(w, status, "admin_product_form.html", data)
}

type productForm struct {
	Name         string `form:"name" validate:"required,max=200"`
	Category     string `form:"category" validate:"max=100"`
	LegacyID     string `form:"legacy_id" validate:"omitempty,number"`
	SalePrice    string `form:"sale_price" validate:"price"`
	RegularPrice string `form:"regular_price" validate:"price"`
	SortOrder    string `form:"sort_order" validate:"omitempty,integer"`
	PurchaseURL  string `form:"purchase_url" validate:"omitempty,http_url"`
}

var productMessages = map[string]string{
	"name.required": "Name is required.",
	"name.max":      "Name must be at most 200 characters.",
	"category":      "Category must be at most 100 characters.",
	"legacy_id":     "Legacy id must be a positive number.",
	"sale_price":    "Invalid sale price.",
	"regular_price": "Invalid regular price.",
	"sort_order":    "Sort order must be a whole number.",
	"purchase_url":  "Purchase link must start with http:// or https://.",
}

// productFromForm copies the submitted fields onto p and returns the
// validation errors keyed by field.
func productFromForm(r *http.Request, p *models.Product) map[string]string {
	form := productForm{
		Name:         strings.TrimSpace(r.FormValue("name")),
		Category:     strings.TrimSpace(r.FormValue("category")),
		LegacyID:     strings.TrimSpace(r.FormValue("legacy_id")),
		SalePrice:    r.FormValue("sale_price"),
		RegularPrice: r.FormValue("regular_price"),
		SortOrder:    strings.TrimSpace(r.FormValue("sort_order")),
		PurchaseURL:  strings.TrimSpace(r.FormValue("purchase_url")),
	}
	errs := formErrors(form, productMessages)

	p.Name = form.Name
	p.Category = form.Category
	p.Description = strings.TrimSpace(r.FormValue("description"))
	p.LongDescription = strings.TrimSpace(r.FormValue("long_description"))
	p.PurchaseURL = form.PurchaseURL
	p.Featured = r.FormValue("featured") != ""
	p.Published = r.FormValue("published") != ""

	p.LegacyID = nil
	if form.LegacyID != "" {
		if id, err := strconv.ParseInt(form.LegacyID, 10, 64); err == nil && id > 0 {
			p.LegacyID = &id
		} else {
			errs["legacy_id"] = productMessages["legacy_id"]
		}
	}

	sale, _ := csvimport.ParsePrice(form.SalePrice)
	regular, _ := csvimport.ParsePrice(form.RegularPrice)
	if regular.IsZero() {
		regular = sale
	}
	if sale.IsZero() {
		sale = regular
	}
	if sale.LessThanOrEqual(decimal.Zero) && errs["sale_price"] == "" {
		errs["sale_price"] = "Price must be positive."
	}
	p.SalePrice, p.RegularPrice = sale, regular

	p.SortOrder, _ = strconv.Atoi(form.SortOrder)
	return errs
}
