package handlers

import (
	"context"
	"time"

	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/cache"
	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/models"
	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/store"
)

// ReadCache fronts the public reads of the store. Returned slices and maps
// are shared between requests and must not be modified.
type ReadCache struct {
	store    *store.Store
	products *cache.Cache[[]models.Product]
	posts    *cache.Cache[[]models.BlogPost]
	popups   *cache.Cache[[]models.Popup]
	content  *cache.Cache[map[string]string]
}

const cacheKey = "published"

func NewReadCache(s *store.Store, ttl time.Duration) *ReadCache {
	return &ReadCache{
		store:    s,
		products: cache.New[[]models.Product]("products", 1, ttl),
		posts:    cache.New[[]models.BlogPost]("posts", 1, ttl),
		popups:   cache.New[[]models.Popup]("popups", 1, ttl),
		content:  cache.New[map[string]string]("content", 1, ttl),
	}
}

// Products returns the published catalog.
func (c *ReadCache) Products(ctx context.Context) ([]models.Product, error) {
	return c.products.Get(ctx, cacheKey, c.store.GetPublishedProducts)
}

// Posts returns published posts, newest first.
func (c *ReadCache) Posts(ctx context.Context) ([]models.BlogPost, error) {
	return c.posts.Get(ctx, cacheKey, c.store.GetPublishedPosts)
}

func (c *ReadCache) ActivePopups(ctx context.Context) ([]models.Popup, error) {
	return c.popups.Get(ctx, cacheKey, c.store.GetActivePopups)
}

// Content returns every site-content blob keyed by its key.
func (c *ReadCache) Content(ctx context.Context) (map[string]string, error) {
	return c.content.Get(ctx, cacheKey, func(ctx context.Context) (map[string]string, error) {
		items, err := c.store.GetAllContent(ctx)
		if err != nil {
			return nil, err
		}
		m := make(map[string]string, len(items))
		for _, item := range items {
			m[item.Key] = item.Value
		}
		return m, nil
	})
}

func (c *ReadCache) PurgeProducts() { c.products.Purge() }
func (c *ReadCache) PurgePosts()    { c.posts.Purge() }
func (c *ReadCache) PurgePopups()   { c.popups.Purge() }
func (c *ReadCache) PurgeContent()  { c.content.Purge() }
