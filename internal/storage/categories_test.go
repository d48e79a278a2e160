package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryLookups(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	t.Run("exact name is case-insensitive", func(t *testing.T) {
		cat, err := store.GetCategoryByName(ctx, "Food")
		require.NoError(t, err)
		require.NotNil(t, cat)
		assert.Equal(t, "food", cat.Name)
	})

	t.Run("unknown name is nil not error", func(t *testing.T) {
		cat, err := store.GetCategoryByName(ctx, "lasers")
		require.NoError(t, err)
		assert.Nil(t, cat)
	})

	t.Run("fuzzy match on a fragment", func(t *testing.T) {
		cat, err := store.FindCategoryByName(ctx, "transport")
		require.NoError(t, err)
		require.NotNil(t, cat)
		assert.Equal(t, "transportation", cat.Name)
	})

	t.Run("fuzzy prefers the exact match", func(t *testing.T) {
		// "health" is both an exact name and a prefix of nothing else, so
		// this pins the exact-first branch.
		cat, err := store.FindCategoryByName(ctx, "health")
		require.NoError(t, err)
		require.NotNil(t, cat)
		assert.Equal(t, "health", cat.Name)
	})

	t.Run("by id", func(t *testing.T) {
		food, err := store.GetCategoryByName(ctx, "food")
		require.NoError(t, err)

		cat, err := store.GetCategoryByID(ctx, food.ID)
		require.NoError(t, err)
		require.NotNil(t, cat)
		assert.Equal(t, "food", cat.Name)
	})
}

func TestCreateCategory(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	created, err := store.CreateCategory(ctx, "Travel")
	require.NoError(t, err)
	assert.Equal(t, "travel", created.Name, "names are normalized to lowercase")

	t.Run("creating a duplicate returns the existing category", func(t *testing.T) {
		again, err := store.CreateCategory(ctx, "travel")
		require.NoError(t, err)
		assert.Equal(t, created.ID, again.ID)
	})

	t.Run("empty name is rejected", func(t *testing.T) {
		_, err := store.CreateCategory(ctx, "   ")
		assert.ErrorIs(t, err, ErrEmptyString)
	})
}
