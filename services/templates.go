package services

import (
	"context"
	"time"

	"esgportal/models"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// TemplateStore reads questionnaire templates. Lookups return nil, nil when absent.
type TemplateStore interface {
	Get(ctx context.Context, jurisdiction, version string) (*models.QuestionnaireTemplate, error)
	GetByID(ctx context.Context, id string) (*models.QuestionnaireTemplate, error)
	List(ctx context.Context, jurisdiction string) ([]models.QuestionnaireTemplate, error)
}

// TemplateCatalog caches template lookups for ttl. Misses are not cached, so a
// template published later is seen on the next lookup.
type TemplateCatalog struct {
	store TemplateStore
	cache *expirable.LRU[string, *models.QuestionnaireTemplate]
}

func NewTemplateCatalog(store TemplateStore, size int, ttl time.Duration) *TemplateCatalog {
	return &TemplateCatalog{
		store: store,
		cache: expirable.NewLRU[string, *models.QuestionnaireTemplate](size, nil, ttl),
	}
}

// Get returns the template for jurisdiction and version, or nil when none exists.
func (c *TemplateCatalog) Get(ctx context.Context, jurisdiction, version string) (*models.QuestionnaireTemplate, error) {
	return c.lookup("jv:"+jurisdiction+"/"+version, func() (*models.QuestionnaireTemplate, error) {
		return c.store.Get(ctx, jurisdiction, version)
	})
}

// GetByID returns the template with id, or nil.
func (c *TemplateCatalog) GetByID(ctx context.Context, id string) (*models.QuestionnaireTemplate, error) {
	return c.lookup("id:"+id, func() (*models.QuestionnaireTemplate, error) {
		return c.store.GetByID(ctx, id)
	})
}

// List always reads through to the store.
func (c *TemplateCatalog) List(ctx context.Context, jurisdiction string) ([]models.QuestionnaireTemplate, error) {
	return c.store.List(ctx, jurisdiction)
}

func (c *TemplateCatalog) lookup(key string, load func() (*models.QuestionnaireTemplate, error)) (*models.QuestionnaireTemplate, error) {
	if t, ok := c.cache.Get(key); ok {
		return t, nil
	}
	t, err := load()
	if err != nil || t == nil {
		return nil, err
	}
	c.cache.Add(key, t)
	return t, nil
}
