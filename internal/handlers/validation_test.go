package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func formRequest(values url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func validProductValues() url.Values {
	return url.Values{
		"name":          {"Netflix Premium"},
		"category":      {"OTT"},
		"sale_price":    {"199"},
		"regular_price": {"649"},
		"purchase_url":  {"https://buy.example/netflix"},
	}
}

func TestProductFormAcceptsValidInput(t *testing.T) {
	var p models.Product
	errs := productFromForm(formRequest(validProductValues()), &p)
	require.Empty(t, errs)
	assert.Equal(t, "Netflix Premium", p.Name)
	assert.Equal(t, "199", p.SalePrice.String())
	assert.Nil(t, p.LegacyID)
}

func TestProductFormRejectsBadFields(t *testing.T) {
	cases := []struct {
		field, value, want string
	}{
		{"name", "", "Name is required."},
		{"name", strings.Repeat("x", 201), "Name must be at most 200 characters."},
		{"purchase_url", "ftp://files.example/x", "Purchase link must start with http:// or https://."},
		{"purchase_url", "buy.example", "Purchase link must start with http:// or https://."},
		{"sale_price", "free", "Invalid sale price."},
		{"sale_price", "99.995", "Invalid sale price."},
		{"legacy_id", "-3", "Legacy id must be a positive number."},
		{"legacy_id", "0", "Legacy id must be a positive number."},
		{"sort_order", "first", "Sort order must be a whole number."},
	}
	for _, tc := range cases {
		values := validProductValues()
		values.Set(tc.field, tc.value)
		var p models.Product
		errs := productFromForm(formRequest(values), &p)
		assert.Equal(t, tc.want, errs[tc.field], "%s=%q", tc.field, tc.value)
	}
}

func validPopupValues() url.Values {
	return url.Values{
		"title":         {"Diwali sale"},
		"popup_type":    {"modal"},
		"bg_color":      {"#4c1d95"},
		"text_color":    {"#fff"},
		"button_url":    {"/products"},
		"delay_seconds": {"5"},
		"start_date":    {"2026-10-20T00:00"},
		"end_date":      {"2026-10-25T23:59"},
	}
}

func TestPopupFormAcceptsValidInput(t *testing.T) {
	var p models.Popup
	errs := popupFromForm(formRequest(validPopupValues()), &p)
	require.Empty(t, errs)
	assert.Equal(t, 5, p.DelaySeconds)
	require.NotNil(t, p.EndDate)

	values := validPopupValues()
	values.Set("start_date", "")
	values.Set("button_url", "https://dreamcrest.in/offers")
	assert.Empty(t, popupFromForm(formRequest(values), &p))
}

func TestPopupFormRejectsBadFields(t *testing.T) {
	cases := []struct {
		field, value, want string
	}{
		{"title", "", "Title is required."},
		{"popup_type", "banner", "Choose modal, slide_in or bar."},
		{"bg_color", "purple", "Background must be a hex colour like #4c1d95."},
		{"text_color", "#12345z", "Text colour must be a hex colour like #ffffff."},
		{"button_url", "javascript:alert(1)", "Button link must be a path or an http(s) URL."},
		{"delay_seconds", "601", "Delay must be between 0 and 600 seconds."},
		{"delay_seconds", "-1", "Delay must be between 0 and 600 seconds."},
		{"delay_seconds", "soon", "Delay must be between 0 and 600 seconds."},
		{"start_date", "tomorrow", "Invalid start date."},
		{"end_date", "2026-10-19T10:00", "End date must be after the start date."},
	}
	for _, tc := range cases {
		values := validPopupValues()
		values.Set(tc.field, tc.value)
		var p models.Popup
		errs := popupFromForm(formRequest(values), &p)
		assert.Equal(t, tc.want, errs[tc.field], "%s=%q", tc.field, tc.value)
	}
}

func TestPostFormReportsTitleOnly(t *testing.T) {
	errs := formErrors(postForm{}, postMessages)
	assert.Equal(t, map[string]string{"title": "Title is required."}, errs)

	errs = formErrors(postForm{Title: "!!!"}, postMessages)
	assert.Equal(t, "Slug needs at least one letter or digit.", errs["slug"])

	assert.Empty(t, formErrors(postForm{Title: "Hello", Slug: "hello"}, postMessages))
}

func TestSignUpFormReportsFirstProblem(t *testing.T) {
	assert.Equal(t, "Email is required.", firstFormError(signUpForm{Password: "short"}, signUpMessages))
	assert.Equal(t, "Please enter a valid email address.",
		firstFormError(signUpForm{Email: "not-an-email", Password: "short"}, signUpMessages))
	assert.Equal(t, "Password must be at least 8 characters.",
		firstFormError(signUpForm{Email: "a@b.in", Password: "short", Confirm: "short"}, signUpMessages))
	assert.Equal(t, "Passwords do not match.",
		firstFormError(signUpForm{Email: "a@b.in", Password: "longenough", Confirm: "different"}, signUpMessages))
	assert.Empty(t, firstFormError(signUpForm{Email: "a@b.in", Password: "longenough", Confirm: "longenough"}, signUpMessages))
}

func TestContentKeyForm(t *testing.T) {
	assert.Empty(t, formErrors(contentForm{Key: "pages.faq"}, contentMessages))
	assert.NotEmpty(t, formErrors(contentForm{Key: "Pages FAQ"}, contentMessages))
	assert.NotEmpty(t, formErrors(contentForm{Key: ""}, contentMessages))
	assert.NotEmpty(t, formErrors(contentForm{Key: strings.Repeat("a", 101)}, contentMessages))
}
