package services

import (
	"context"
	"strings"
	"time"

	"github.com/Govind-619/DishDash/models"
	"github.com/Govind-619/DishDash/repository"
	"github.com/Govind-619/DishDash/utils"
	gocache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
)

const (
	IndexCacheTTL = 60 * time.Second
	MenuCacheTTL  = 5 * time.Minute

	indexCacheKey = "index"
	menuCacheKey  = "menu:"
)

// MenuService serves the catalog, keeping rendered listings in a short-lived cache
type MenuService struct {
	catalog repository.CatalogRepository
	cache   *gocache.Cache
}

func NewMenuService(catalog repository.CatalogRepository) *MenuService {
	return &MenuService{
		catalog: catalog,
		cache:   gocache.New(MenuCacheTTL, 10*time.Minute),
	}
}

// Index returns the menu shown on the landing page
func (s *MenuService) Index(ctx context.Context) ([]models.MenuItem, error) {
	return s.cached(indexCacheKey, IndexCacheTTL, func() ([]models.MenuItem, error) {
		return s.catalog.ListMenuItems(ctx)
	})
}

// Menu returns the menu page, optionally narrowed to one category
func (s *MenuService) Menu(ctx context.Context, category string) ([]models.MenuItem, error) {
	category = strings.TrimSpace(category)
	return s.cached(menuCacheKey+strings.ToLower(category), MenuCacheTTL, func() ([]models.MenuItem, error) {
		if category == "" {
			return s.catalog.ListMenuItems(ctx)
		}
		return s.catalog.ListMenuItemsByCategory(ctx, category)
	})
}

// Items returns the live catalog, bypassing the cache
func (s *MenuService) Items(ctx context.Context) ([]models.MenuItem, error) {
	items, err := s.catalog.ListMenuItems(ctx)
	if err != nil {
		return nil, utils.InternalError("Failed to load menu", err)
	}
	return items, nil
}

func (s *MenuService) cached(key string, ttl time.Duration, load func() ([]models.MenuItem, error)) ([]models.MenuItem, error) {
	if items, ok := s.cache.Get(key); ok {
		return items.([]models.MenuItem), nil
	}
	items, err := load()
	if err != nil {
		return nil, utils.InternalError("Failed to load menu", err)
	}
	utils.LogInfo("Retrieved %d menu items", len(items))
	s.cache.Set(key, items, ttl)
	return items, nil
}

// Invalidate drops every cached listing
func (s *MenuService) Invalidate() {
	s.cache.Flush()
}

// SeedDefaults adds the sample menu, skipping dishes that already exist
func (s *MenuService) SeedDefaults(ctx context.Context) (int, error) {
	items := DefaultMenu()
	for _, item := range items {
		if err := utils.ValidatePrice(item.Price); err != nil {
			return 0, utils.WrapError(err, item.Name)
		}
	}
	added, err := s.catalog.SeedMenuItems(ctx, items)
	if err != nil {
		return 0, err
	}
	if added > 0 {
		s.Invalidate()
	}
	return added, nil
}

// DefaultMenu is the sample catalog seeded at startup
func DefaultMenu() []models.MenuItem {
	return []models.MenuItem{
		{Name: "Margherita Pizza", Description: "Classic tomato and mozzarella pizza", Price: decimal.RequireFromString("12.99"), Category: "Pizza"},
		{Name: "Chicken Alfredo", Description: "Creamy pasta with grilled chicken", Price: decimal.RequireFromString("14.99"), Category: "Pasta"},
		{Name: "Caesar Salad", Description: "Romaine lettuce with Caesar dressing and croutons", Price: decimal.RequireFromString("8.99"), Category: "Salad"},
		{Name: "Cheeseburger", Description: "Beef patty with cheese, lettuce, and tomato", Price: decimal.RequireFromString("10.99"), Category: "Burgers"},
		{Name: "Veggie Stir Fry", Description: "Mixed vegetables in a savory sauce", Price: decimal.RequireFromString("11.99"), Category: "Vegetarian"},
	}
}
