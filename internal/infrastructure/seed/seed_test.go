package seed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stylehub/stylehub-api/internal/domain/entity"
	"github.com/stylehub/stylehub-api/internal/domain/enum"
)

func TestDemo(t *testing.T) {
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	data := Demo(now, "hash")

	require.Len(t, data.Categories, 5)
	require.Len(t, data.Products, 5)
	require.Len(t, data.Users, 2)
	require.Len(t, data.Orders, 3)

	shirt := data.Products[0]
	assert.Equal(t, "classic-white-t-shirt", shirt.Slug)
	assert.Equal(t, "T-Shirts", shirt.CategoryName)
	assert.Equal(t, data.Categories[0].ID, *shirt.CategoryID)
	require.NoError(t, shirt.Details.Validate())

	// 2 × 24.99 + 129.99 = 179.97, free shipping, 7% tax.
	ord1 := data.Orders[0]
	assert.Equal(t, enum.OrderStatusCompleted, ord1.Status)
	assert.Equal(t, "179.97", ord1.Subtotal.StringFixed(2))
	assert.True(t, ord1.Shipping.IsZero())
	assert.Equal(t, "192.57", ord1.Total.StringFixed(2))
	assert.True(t, ord1.CreatedAt.Equal(now.Add(-48*time.Hour)))
	for _, item := range ord1.Items {
		assert.Equal(t, ord1.ID, item.OrderID)
	}

	// IDs are stable across calls.
	again := Demo(now.Add(time.Hour), "other")
	assert.Equal(t, data.Products[3].ID, again.Products[3].ID)
	assert.Equal(t, data.Orders[2].ID, again.Orders[2].ID)
}

func TestAdminAndMerge(t *testing.T) {
	admin := Admin("Admin User", "admin@example.com", "hash", time.Now())
	assert.Equal(t, enum.UserRoleAdmin, admin.Role)
	assert.Equal(t, ID("user:admin@example.com"), admin.ID)

	data := Data{}.Merge(Data{Users: []entity.User{admin}})
	assert.Len(t, data.Users, 1)
}
