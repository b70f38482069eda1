package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// IST is the business time zone. Days in analytics and the dates admins
// enter are IST days.
var IST = time.FixedZone("IST", 5*3600+30*60)

// StartOfDay returns midnight IST of the day t falls on.
func StartOfDay(t time.Time) time.Time {
	t = t.In(IST)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, IST)
}

type Product struct {
	ID              string          `db:"id" json:"id"`
	LegacyID        *int64          `db:"legacy_id" json:"legacy_id,omitempty"` // id from the pre-database export
	Name            string          `db:"name" json:"name"`
	Description     string          `db:"description" json:"description"`
	LongDescription string          `db:"long_description" json:"long_description"`
	Category        string          `db:"category" json:"category"`
	ImageURL        string          `db:"image_url" json:"image_url"`
	SalePrice       decimal.Decimal `db:"sale_price" json:"sale_price"`
	RegularPrice    decimal.Decimal `db:"regular_price" json:"regular_price"`
	PurchaseURL     string          `db:"purchase_url" json:"purchase_url"`
	Featured        bool            `db:"featured" json:"featured"`
	Published       bool            `db:"published" json:"published"`
	SortOrder       int             `db:"sort_order" json:"sort_order"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// PathID is the identifier used in public URLs. Legacy ids win so that
// links from the old site keep resolving.
func (p Product) PathID() string {
	if p.LegacyID != nil {
		return fmt.Sprintf("%d", *p.LegacyID)
	}
	return p.ID
}

type BlogPost struct {
	ID          string     `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	Slug        string     `db:"slug" json:"slug"`
	Excerpt     string     `db:"excerpt" json:"excerpt"`
	Content     string     `db:"content" json:"content"` // markdown or plain text
	Category    string     `db:"category" json:"category"`
	ImageURL    string     `db:"image_url" json:"image_url,omitempty"`
	Published   bool       `db:"published" json:"published"`
	PublishedAt *time.Time `db:"published_at" json:"published_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// Popup types
const (
	PopupModal   = "modal"
	PopupSlideIn = "slide_in"
	PopupBar     = "bar"
)

type Popup struct {
	ID           string     `db:"id" json:"id"`
	Title        string     `db:"title" json:"title"`
	Content      string     `db:"content" json:"content"`
	PopupType    string     `db:"popup_type" json:"popup_type"` // "modal", "slide_in", "bar"
	TargetPages  StringList `db:"target_pages" json:"target_pages"`
	StartDate    *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate      *time.Time `db:"end_date" json:"end_date,omitempty"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	BgColor      string     `db:"bg_color" json:"bg_color"`
	TextColor    string     `db:"text_color" json:"text_color"`
	ButtonText   string     `db:"button_text" json:"button_text,omitempty"`
	ButtonURL    string     `db:"button_url" json:"button_url,omitempty"`
	DelaySeconds int        `db:"delay_seconds" json:"delay_seconds"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// SiteContent is one editable JSON blob. Value always holds valid JSON.
type SiteContent struct {
	Key       string    `db:"key" json:"key"`
	Value     string    `db:"value" json:"value"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func (c SiteContent) Raw() json.RawMessage {
	return json.RawMessage(c.Value)
}

type PageView struct {
	ID        int64     `db:"id" json:"id"`
	Path      string    `db:"path" json:"path"`
	Referrer  string    `db:"referrer" json:"referrer"`
	UserAgent string    `db:"user_agent" json:"user_agent"`
	SessionID string    `db:"session_id" json:"session_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// User roles
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	ID           int       `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// StringList is stored as a JSON array in a text column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return errors.New("models: unsupported StringList source")
	}
	if len(raw) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(raw, (*[]string)(l))
}
