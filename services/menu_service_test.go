package services_test

import (
	"context"
	"testing"

	"github.com/Govind-619/DishDash/models"
	"github.com/Govind-619/DishDash/repository"
	"github.com/Govind-619/DishDash/repository/repotest"
	"github.com/Govind-619/DishDash/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCatalog struct {
	repository.CatalogRepository
	lists int
}

func (c *countingCatalog) ListMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	c.lists++
	return c.CatalogRepository.ListMenuItems(ctx)
}

func TestSeedDefaultsIsIdempotent(t *testing.T) {
	store := repotest.NewStore(t)
	menu := services.NewMenuService(store)
	ctx := context.Background()

	added, err := menu.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, added)

	added, err = menu.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Zero(t, added)

	items, err := menu.Items(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 5)
}

func TestMenuIsCached(t *testing.T) {
	store := repotest.NewStore(t)
	catalog := &countingCatalog{CatalogRepository: store}
	menu := services.NewMenuService(catalog)
	ctx := context.Background()
	_, err := menu.SeedDefaults(ctx)
	require.NoError(t, err)

	first, err := menu.Index(ctx)
	require.NoError(t, err)
	second, err := menu.Index(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, catalog.lists)

	_, err = menu.Menu(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 2, catalog.lists)

	menu.Invalidate()
	_, err = menu.Index(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, catalog.lists)
}

func TestMenuCategoryFilter(t *testing.T) {
	store := repotest.NewStore(t)
	menu := services.NewMenuService(store)
	ctx := context.Background()
	_, err := menu.SeedDefaults(ctx)
	require.NoError(t, err)

	items, err := menu.Menu(ctx, "Pizza")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Margherita Pizza", items[0].Name)
}
