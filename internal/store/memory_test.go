package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dew-13/solestyle/internal/database"
	"github.com/dew-13/solestyle/internal/models"
)

func memoryWithClock(start time.Time) *Memory {
	m := NewMemory()
	now := start
	m.now = func() time.Time {
		now = now.Add(time.Minute)
		return now
	}
	return m
}

func TestMemoryOrderCodes(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	item := &models.CatalogItem{ID: "S1", Type: models.ItemTypeShoe, Name: "Air Max", Price: dec(100), Profit: dec(10)}

	seq, err := m.NextOrderSeq(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, seq)

	_, err = m.InsertOrder(ctx, modernOrder("SS000001", item, 1))
	require.NoError(t, err)

	_, err = m.InsertOrder(ctx, modernOrder("SS000001", item, 1))
	assert.ErrorIs(t, err, database.ErrOrderCodeConflict)

	count, err := m.CountOrders(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestMemoryReturnsCopies(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	item := &models.CatalogItem{ID: "S1", Type: models.ItemTypeShoe, Name: "Air Max", Price: dec(100), Profit: dec(10)}

	order := modernOrder("SS000001", item, 1)
	id, err := m.InsertOrder(ctx, order)
	require.NoError(t, err)

	order.Items[0].Item.Name = "changed after insert"

	got, err := m.GetOrder(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Air Max", got.Items[0].Item.Name)

	got.Items[0].Item.Name = "changed after read"
	again, err := m.GetOrder(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Air Max", again.Items[0].Item.Name)
}

func TestMemoryCursorAndFilter(t *testing.T) {
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	m := memoryWithClock(start)
	ctx := context.Background()
	item := &models.CatalogItem{ID: "S1", Type: models.ItemTypeShoe, Name: "Air Max", Price: dec(100)}

	for i := 1; i <= 7; i++ {
		o := modernOrder(fmt.Sprintf("SS%06d", i), item, 1)
		if i%2 == 0 {
			o.Status = models.OrderStatusShipped
		}
		_, err := m.InsertOrder(ctx, o)
		require.NoError(t, err)
	}

	var ids []int64
	cursor := ""
	for {
		page, err := m.ListOrdersCursor(ctx, OrderFilter{}, cursor, 3)
		require.NoError(t, err)
		for _, o := range page.Items {
			ids = append(ids, o.ID)
		}
		if !page.HasMore {
			break
		}
		cursor = page.NextCursor
	}
	assert.Equal(t, []int64{7, 6, 5, 4, 3, 2, 1}, ids)

	shipped, err := m.FindOrders(ctx, OrderFilter{Status: models.OrderStatusShipped})
	require.NoError(t, err)
	assert.Len(t, shipped, 3)

	// order i was created at start + i minutes
	from := start.Add(2 * time.Minute)
	to := start.Add(4 * time.Minute)
	window, err := m.FindOrders(ctx, OrderFilter{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, window, 2)
	assert.Equal(t, "SS000003", window[0].OrderCode)
	assert.Equal(t, "SS000002", window[1].OrderCode)

	_, err = m.ListOrdersCursor(ctx, OrderFilter{}, "not base64!", 3)
	assert.ErrorIs(t, err, ErrBadCursor)
}

func TestMemoryStatusAndMerge(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	item := &models.CatalogItem{ID: "S1", Type: models.ItemTypeShoe, Name: "Air Max", Price: dec(100)}

	userID := "user-1"
	order := modernOrder("SS000001", item, 1)
	order.UserID = &userID
	id, err := m.InsertOrder(ctx, order)
	require.NoError(t, err)

	updated, err := m.UpdateOrderStatus(ctx, id, models.OrderStatusCancelled, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, updated.Status)

	events, err := m.ListStatusEvents(ctx, id)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.OrderStatusPendingFullPayment, events[0].FromStatus)

	_, err = m.UpdateOrderStatus(ctx, 42, models.OrderStatusShipped, "admin-1")
	assert.ErrorIs(t, err, database.ErrOrderNotFound)

	profile := models.ShippingAddress{Street: "5 Temple Road", City: "Kandy"}
	merged, err := m.MergeShippingAddress(ctx, id, userID, profile)
	require.NoError(t, err)
	assert.Equal(t, "Colombo", merged.ShippingAddress.City)
	assert.Equal(t, "5 Temple Road", merged.ShippingAddress.Street)

	_, err = m.MergeShippingAddress(ctx, id, userID, profile)
	assert.ErrorIs(t, err, database.ErrShippingMerged)

	_, err = m.MergeShippingAddress(ctx, id, "user-2", profile)
	assert.ErrorIs(t, err, database.ErrOrderNotFound)
}

func TestMemoryCatalogPaging(t *testing.T) {
	m := memoryWithClock(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		_, err := m.CreateCatalogItem(ctx, &models.CatalogItem{ID: fmt.Sprintf("S%d", i), Type: models.ItemTypeShoe, Name: "Shoe"})
		require.NoError(t, err)
	}
	_, err := m.CreateCatalogItem(ctx, &models.CatalogItem{ID: "A1", Type: models.ItemTypeApparel, Name: "Tee"})
	require.NoError(t, err)

	page, err := m.ListCatalogItems(ctx, models.ItemTypeShoe, 2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "S3", page.Items[0].ID)

	page, err = m.ListCatalogItems(ctx, models.ItemTypeShoe, 9, 2)
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	_, err = m.UpdateCatalogItem(ctx, &models.CatalogItem{ID: "missing", Type: models.ItemTypeShoe})
	assert.ErrorIs(t, err, database.ErrCatalogItemNotFound)
}
