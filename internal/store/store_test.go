package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/models"
	"github.com/dreamcrest1/dreamcrest-refresh-sub000/migrations"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(DriverSQLite, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background(), migrations.FS))
	return s
}

func int64Ptr(v int64) *int64 { return &v }

func TestMigrateIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Migrate(context.Background(), migrations.FS))

	var n int
	require.NoError(t, s.DB.Get(&n, `SELECT COUNT(*) FROM schema_migrations`))
	assert.Equal(t, 2, n)
}

func TestProductLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	p := &models.Product{
		LegacyID:     int64Ptr(101),
		Name:         "Netflix Premium",
		Description:  "4K UHD, 4 screens",
		Category:     "OTT",
		SalePrice:    decimal.NewFromInt(199),
		RegularPrice: decimal.NewFromInt(649),
		PurchaseURL:  "https://example.com/buy/netflix",
		Published:    true,
		Featured:     true,
	}
	require.NoError(t, s.CreateProduct(ctx, p))
	require.NotEmpty(t, p.ID)

	hidden := &models.Product{Name: "Draft tool", Category: "AI", SalePrice: decimal.NewFromInt(10), RegularPrice: decimal.NewFromInt(20)}
	require.NoError(t, s.CreateProduct(ctx, hidden))

	got, err := s.GetProductByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Netflix Premium", got.Name)
	assert.True(t, got.SalePrice.Equal(decimal.NewFromInt(199)))
	assert.True(t, got.Published)
	require.NotNil(t, got.LegacyID)
	assert.Equal(t, int64(101), *got.LegacyID)

	byLegacy, err := s.GetProductByLegacyID(ctx, 101)
	require.NoError(t, err)
	assert.Equal(t, p.ID, byLegacy.ID)

	all, err := s.GetAllProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	public, err := s.GetPublishedProducts(ctx)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, p.ID, public[0].ID)

	got.Name = "Netflix Premium 4K"
	got.Published = false
	require.NoError(t, s.UpdateProduct(ctx, got))
	require.NoError(t, s.UpdateProductImage(ctx, got.ID, "/static/uploads/x.jpg"))

	got, err = s.GetProductByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Netflix Premium 4K", got.Name)
	assert.Equal(t, "/static/uploads/x.jpg", got.ImageURL)
	assert.False(t, got.Published)

	require.NoError(t, s.DeleteProduct(ctx, p.ID))
	_, err = s.GetProductByID(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteProduct(ctx, p.ID), ErrNotFound)
}

func TestCreateProductRejectsDuplicateLegacyID(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.CreateProduct(ctx, &models.Product{LegacyID: int64Ptr(7), Name: "A"}))
	err := s.CreateProduct(ctx, &models.Product{LegacyID: int64Ptr(7), Name: "B"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestUpsertProductByLegacyID(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first := &models.Product{LegacyID: int64Ptr(55), Name: "ChatGPT Plus", ImageURL: "https://cdn/a.png", SortOrder: 3}
	created, err := s.UpsertProductByLegacyID(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)

	again := &models.Product{LegacyID: int64Ptr(55), Name: "ChatGPT Plus (1 month)"}
	created, err = s.UpsertProductByLegacyID(ctx, again)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)

	got, err := s.GetProductByLegacyID(ctx, 55)
	require.NoError(t, err)
	assert.Equal(t, "ChatGPT Plus (1 month)", got.Name)
	assert.Equal(t, "https://cdn/a.png", got.ImageURL, "empty import image keeps the stored one")
	assert.Equal(t, 3, got.SortOrder)

	_, err = s.UpsertProductByLegacyID(ctx, &models.Product{Name: "no legacy"})
	assert.Error(t, err)
}

func TestBlogPostPublishStamp(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return fixed })

	draft := &models.BlogPost{Title: "Best OTT bundles", Slug: "best-ott-bundles", Content: "# Hello"}
	require.NoError(t, s.CreatePost(ctx, draft))
	assert.Nil(t, draft.PublishedAt)

	published, err := s.GetPublishedPosts(ctx)
	require.NoError(t, err)
	assert.Empty(t, published)

	draft.Published = true
	require.NoError(t, s.UpdatePost(ctx, draft))
	require.NotNil(t, draft.PublishedAt)

	got, err := s.GetPostBySlug(ctx, "best-ott-bundles")
	require.NoError(t, err)
	require.NotNil(t, got.PublishedAt)
	assert.True(t, got.PublishedAt.Equal(fixed))

	// A second save keeps the original publish time.
	s.SetClock(func() time.Time { return fixed.Add(48 * time.Hour) })
	require.NoError(t, s.UpdatePost(ctx, got))
	got, err = s.GetPostByID(ctx, draft.ID)
	require.NoError(t, err)
	assert.True(t, got.PublishedAt.Equal(fixed))

	err = s.CreatePost(ctx, &models.BlogPost{Title: "dup", Slug: "best-ott-bundles"})
	assert.ErrorIs(t, err, ErrDuplicate)

	require.NoError(t, s.DeletePost(ctx, draft.ID))
	_, err = s.GetPostBySlug(ctx, "best-ott-bundles")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPopupRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	end := time.Date(2026, 12, 31, 23, 59, 0, 0, time.UTC)
	p := &models.Popup{
		Title:        "Diwali sale",
		Content:      "Flat 70% off",
		PopupType:    models.PopupBar,
		TargetPages:  models.StringList{"/", "/products"},
		EndDate:      &end,
		IsActive:     true,
		DelaySeconds: 5,
	}
	require.NoError(t, s.CreatePopup(ctx, p))
	require.NoError(t, s.CreatePopup(ctx, &models.Popup{Title: "Off", PopupType: models.PopupModal}))

	got, err := s.GetPopupByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StringList{"/", "/products"}, got.TargetPages)
	assert.Nil(t, got.StartDate)
	require.NotNil(t, got.EndDate)
	assert.True(t, got.EndDate.Equal(end))

	active, err := s.GetActivePopups(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, p.ID, active[0].ID)

	got.IsActive = false
	require.NoError(t, s.UpdatePopup(ctx, got))
	active, err = s.GetActivePopups(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, s.DeletePopup(ctx, p.ID))
	all, err := s.GetAllPopups(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSiteContentUpsert(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.UpsertContent(ctx, "home.hero", `{"title":"Premium tools, Indian prices"}`))
	require.NoError(t, s.UpsertContent(ctx, "home.hero", `{"title":"Updated"}`))
	assert.ErrorIs(t, s.UpsertContent(ctx, "home.about", `{"broken"`), ErrInvalidJSON)

	got, err := s.GetContent(ctx, "home.hero")
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Updated"}`, got.Value)

	all, err := s.GetAllContent(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, s.DeleteContent(ctx, "home.hero"))
	_, err = s.GetContent(ctx, "home.hero")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPageViewStats(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	day1 := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	views := []models.PageView{
		{Path: "/", SessionID: "a", CreatedAt: day1},
		{Path: "/", SessionID: "b", Referrer: "https://google.com/", CreatedAt: day1.Add(time.Hour)},
		{Path: "/products", SessionID: "a", Referrer: "https://google.com/", CreatedAt: day2},
		{Path: "/blog", SessionID: "", CreatedAt: day2.Add(time.Minute)},
		{Path: "/old", SessionID: "z", CreatedAt: day1.AddDate(0, 0, -10)},
	}
	for i := range views {
		require.NoError(t, s.RecordPageView(ctx, &views[i]))
	}

	stats, err := s.GetPageViewStats(ctx, day1.Add(-time.Hour), 10)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.UniqueSessions)
	assert.Equal(t, []Count{{"/", 2}, {"/blog", 1}, {"/products", 1}}, stats.ByPath)
	assert.Equal(t, []Count{{"2026-05-01", 2}, {"2026-05-02", 2}}, stats.ByDay)
	assert.Equal(t, []Count{{DirectReferrer, 2}, {"https://google.com/", 2}}, stats.ByReferrer)

	recent, err := s.GetRecentPageViews(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "/blog", recent[0].Path)
}

func TestDashboardStats(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return now })

	require.NoError(t, s.CreateProduct(ctx, &models.Product{Name: "A", Published: true, Featured: true}))
	require.NoError(t, s.CreateProduct(ctx, &models.Product{Name: "B", Published: false, Featured: true}))
	require.NoError(t, s.CreatePost(ctx, &models.BlogPost{Title: "P", Slug: "p", Published: true}))
	require.NoError(t, s.CreatePopup(ctx, &models.Popup{Title: "X", PopupType: models.PopupModal, IsActive: true}))
	require.NoError(t, s.RecordPageView(ctx, &models.PageView{Path: "/", CreatedAt: now.Add(-time.Hour)}))
	require.NoError(t, s.RecordPageView(ctx, &models.PageView{Path: "/", CreatedAt: now.AddDate(0, 0, -3)}))
	require.NoError(t, s.RecordPageView(ctx, &models.PageView{Path: "/", CreatedAt: now.AddDate(0, 0, -60)}))

	stats, err := s.GetDashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalProducts)
	assert.Equal(t, 1, stats.PublishedProducts)
	assert.Equal(t, 1, stats.FeaturedProducts)
	assert.Equal(t, 1, stats.PublishedPosts)
	assert.Equal(t, 1, stats.ActivePopups)
	assert.Equal(t, 1, stats.ViewsToday)
	assert.Equal(t, 2, stats.Views30Days)
}

func TestPageViewDaysFollowIST(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	// 20:00 UTC on 1 May is 01:30 IST on 2 May.
	late := time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC)
	require.NoError(t, s.RecordPageView(ctx, &models.PageView{Path: "/", CreatedAt: late}))
	require.NoError(t, s.RecordPageView(ctx, &models.PageView{Path: "/", CreatedAt: late.Add(-4 * time.Hour)}))

	stats, err := s.GetPageViewStats(ctx, models.StartOfDay(late).AddDate(0, 0, -1), 10)
	require.NoError(t, err)
	assert.Equal(t, []Count{{"2026-05-01", 1}, {"2026-05-02", 1}}, stats.ByDay)
}

func TestDashboardTodayStartsAtISTMidnight(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	// 01:30 IST on 11 June.
	now := time.Date(2026, 6, 10, 20, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return now })

	require.NoError(t, s.RecordPageView(ctx, &models.PageView{Path: "/", CreatedAt: time.Date(2026, 6, 10, 19, 0, 0, 0, time.UTC)}))
	require.NoError(t, s.RecordPageView(ctx, &models.PageView{Path: "/", CreatedAt: time.Date(2026, 6, 10, 18, 0, 0, 0, time.UTC)}))

	stats, err := s.GetDashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ViewsToday)
	assert.Equal(t, 2, stats.Views30Days)
}

func TestStartOfDay(t *testing.T) {
	got := models.StartOfDay(time.Date(2026, 6, 10, 19, 0, 0, 0, time.UTC))
	assert.True(t, got.Equal(time.Date(2026, 6, 10, 18, 30, 0, 0, time.UTC)), got)
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u, err := s.GetUserByEmail(ctx, "admin@dreamcrest.in")
	require.NoError(t, err)
	assert.Nil(t, u)

	require.NoError(t, s.CreateUser(ctx, "Admin@Dreamcrest.in", "hash", models.RoleAdmin))
	assert.ErrorIs(t, s.CreateUser(ctx, "admin@dreamcrest.in", "hash", ""), ErrDuplicate)

	u, err = s.GetUserByEmail(ctx, "admin@dreamcrest.in")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.True(t, u.IsAdmin())

	require.NoError(t, s.SetUserRole(ctx, "admin@dreamcrest.in", models.RoleUser))
	u, err = s.GetUserByEmail(ctx, "admin@dreamcrest.in")
	require.NoError(t, err)
	assert.False(t, u.IsAdmin())
	assert.ErrorIs(t, s.SetUserRole(ctx, "nobody@x.in", models.RoleAdmin), ErrNotFound)
}

func TestDashboardStatsPropagatesErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewStoreFromDB(sqlx.NewDb(db, "sqlmock"))
	mock.ExpectQuery("SELECT COUNT").WillReturnError(errors.New("connection reset"))

	_, err = s.GetDashboardStats(context.Background())
	assert.EqualError(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPlaceholders(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewStoreFromDB(sqlx.NewDb(db, DriverPostgres))
	mock.ExpectExec(`DELETE FROM site_content WHERE key = \$1`).
		WithArgs("home.hero").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.DeleteContent(context.Background(), "home.hero"))
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Contains(t, s.dayExpr("created_at"), "to_char")
	assert.Contains(t, s.dayExpr("created_at"), "330 minutes")
}
