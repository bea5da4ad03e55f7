package policydesk

import (
	"database/sql"
	"strings"
	"sync"
	"time"
)

// ErrNotFound is returned when a requested article or page does not exist.
var ErrNotFound = sql.ErrNoRows

// ArticleCache is an in-memory cache of published articles and categories with TTL.
type ArticleCache struct {
	mu         sync.RWMutex
	articles   []Article
	categories []string
	fetched    time.Time
	ttl        time.Duration
	store      *Store
}

// NewArticleCache creates an ArticleCache backed by the given Store.
func NewArticleCache(s *Store, ttl time.Duration) *ArticleCache {
	return &ArticleCache{store: s, ttl: ttl}
}

func (c *ArticleCache) valid() bool {
	return c.articles != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *ArticleCache) Invalidate() {
	c.mu.Lock()
	c.articles = nil
	c.categories = nil
	c.mu.Unlock()
}

func (c *ArticleCache) load() error {
	if c.valid() {
		return nil
	}
	articles, err := c.store.ListArticles("")
	if err != nil {
		return err
	}
	categories, err := c.store.ListCategories()
	if err != nil {
		return err
	}
	if articles == nil {
		// An empty site is still a loaded cache.
		articles = []Article{}
	}
	c.articles = articles
	c.categories = categories
	c.fetched = time.Now()
	return nil
}

// ensureLoaded returns cached articles and categories after ensuring the
// cache is fresh. Only a reload takes the write lock.
func (c *ArticleCache) ensureLoaded() ([]Article, []string, error) {
	c.mu.RLock()
	if c.valid() {
		articles, categories := c.articles, c.categories
		c.mu.RUnlock()
		return articles, categories, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return nil, nil, err
	}
	return c.articles, c.categories, nil
}

// ListArticles returns published articles, optionally filtered by category.
func (c *ArticleCache) ListArticles(category string) ([]Article, error) {
	articles, _, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	category = strings.TrimSpace(category)
	if category == "" {
		return articles, nil
	}
	var filtered []Article
	for _, a := range articles {
		if a.Category == category {
			filtered = append(filtered, a)
		}
	}
	return filtered, nil
}

// ListCategories returns the categories of published articles.
func (c *ArticleCache) ListCategories() ([]string, error) {
	_, categories, err := c.ensureLoaded()
	return categories, err
}

// GetArticle returns a single published article by slug from the cache.
func (c *ArticleCache) GetArticle(slug string) (Article, error) {
	articles, _, err := c.ensureLoaded()
	if err != nil {
		return Article{}, err
	}
	for _, a := range articles {
		if a.Slug == slug {
			return a, nil
		}
	}
	return Article{}, ErrNotFound
}
