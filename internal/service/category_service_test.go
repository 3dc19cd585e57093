package service

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/babyshop/api/internal/repository"
)

func category(id uint64, name string, parent int64) repository.Category {
	c := repository.Category{ID: id, Name: name, Slug: name}
	if parent > 0 {
		c.ParentID = sql.NullInt64{Int64: parent, Valid: true}
	}
	return c
}

func TestBuildCategoryTreeNestsChildren(t *testing.T) {
	// Rows arrive parent-first the way the listing query orders them.
	tree := BuildCategoryTree([]repository.Category{
		category(1, "clothing", 0),
		category(2, "toys", 0),
		category(3, "tops", 1),
		category(4, "bottoms", 1),
		category(5, "shirts", 3),
	})

	require.Len(t, tree, 2)
	require.Equal(t, uint64(1), tree[0].ID)
	require.Equal(t, uint64(2), tree[1].ID)

	require.Len(t, tree[0].Children, 2)
	require.Equal(t, "tops", tree[0].Children[0].Name)
	require.Equal(t, "bottoms", tree[0].Children[1].Name)
	require.Len(t, tree[0].Children[0].Children, 1)
	require.Equal(t, "shirts", tree[0].Children[0].Children[0].Name)
	require.Empty(t, tree[1].Children)
}

func TestBuildCategoryTreeOrphanBecomesRoot(t *testing.T) {
	// A child whose parent is inactive or deleted is absent from the row set;
	// the child surfaces as a root instead of vanishing.
	tree := BuildCategoryTree([]repository.Category{
		category(1, "clothing", 0),
		category(9, "orphan", 42),
	})

	require.Len(t, tree, 2)
	require.Equal(t, "orphan", tree[1].Name)
	require.NotNil(t, tree[1].ParentID)
}

func TestBuildCategoryTreeEmpty(t *testing.T) {
	require.Empty(t, BuildCategoryTree(nil))
}
