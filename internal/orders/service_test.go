package orders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dew-13/solestyle/internal/apperr"
	"github.com/dew-13/solestyle/internal/models"
)

func checkout(t *testing.T, f *fixture, credential, customer string, lines ...CheckoutItem) *CheckoutResult {
	t.Helper()
	res, err := f.composer.Checkout(context.Background(), CheckoutRequest{
		Items:           lines,
		ShippingAddress: shippingTo(customer),
		PaymentMethod:   models.PaymentFull,
	}, credential)
	require.NoError(t, err)
	return res
}

func TestListOrdersPages(t *testing.T) {
	f := newFixture(t, 3)
	for i := 0; i < 5; i++ {
		checkout(t, f, "", fmt.Sprintf("Customer %d", i), CheckoutItem{ShoeID: "S1"})
	}

	var codes []string
	cursor := ""
	for {
		page, err := f.service.ListOrders(context.Background(), Filter{}, cursor, 2)
		require.NoError(t, err)
		for _, v := range page.Items {
			codes = append(codes, v.OrderID)
		}
		if !page.HasMore {
			break
		}
		cursor = page.NextCursor
	}

	assert.Equal(t, []string{"SS000005", "SS000004", "SS000003", "SS000002", "SS000001"}, codes)
}

func TestListOrdersSearch(t *testing.T) {
	f := newFixture(t, 3)
	for i := 0; i < 4; i++ {
		checkout(t, f, "", "Nimal Perera", CheckoutItem{ShoeID: "S1"})
		checkout(t, f, "", "Kamal Silva", CheckoutItem{ApparelID: "A1"})
	}

	page, err := f.service.ListOrders(context.Background(), Filter{Search: "hoodie"}, "", 3)
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.True(t, page.HasMore)
	for _, v := range page.Items {
		assert.Equal(t, "Kamal Silva", v.CustomerName)
	}

	rest, err := f.service.ListOrders(context.Background(), Filter{Search: "hoodie"}, page.NextCursor, 3)
	require.NoError(t, err)
	assert.Len(t, rest.Items, 1)
	assert.False(t, rest.HasMore)
}

func TestListOrdersBadCursor(t *testing.T) {
	f := newFixture(t, 3)

	_, err := f.service.ListOrders(context.Background(), Filter{}, "%%%", 10)
	require.Error(t, err)
	assert.Equal(t, apperr.Invalid, apperr.KindOf(err))
}

func TestUpdateStatusAnyToAny(t *testing.T) {
	f := newFixture(t, 3)
	res := checkout(t, f, "", "Nimal Perera", CheckoutItem{ShoeID: "S1"})

	for _, st := range []string{"delivered", "pending", "cancelled", "payment_received"} {
		view, err := f.service.UpdateStatus(context.Background(), res.InternalID, st, "admin-1")
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatus(st), view.Status)
	}

	detail, err := f.service.GetOrder(context.Background(), res.InternalID)
	require.NoError(t, err)
	require.Len(t, detail.Events, 4)
	assert.Equal(t, models.OrderStatusPendingFullPayment, detail.Events[0].FromStatus)
	assert.Equal(t, models.OrderStatusPaymentReceived, detail.Events[3].ToStatus)
	assert.Equal(t, "admin-1", detail.Events[3].ActorUserID)
}

func TestUpdateStatusErrors(t *testing.T) {
	f := newFixture(t, 3)
	res := checkout(t, f, "", "Nimal Perera", CheckoutItem{ShoeID: "S1"})

	_, err := f.service.UpdateStatus(context.Background(), res.InternalID, "lost", "admin-1")
	assert.Equal(t, apperr.Invalid, apperr.KindOf(err))

	_, err = f.service.UpdateStatus(context.Background(), 999, "shipped", "admin-1")
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestStats(t *testing.T) {
	f := newFixture(t, 3)
	checkout(t, f, "", "Nimal Perera", CheckoutItem{ShoeID: "S1", Quantity: 2})
	checkout(t, f, "", "Kamal Silva", CheckoutItem{ApparelID: "A1"})
	f.mem.Seed(models.Order{
		OrderCode:    "SS900000",
		Shape:        models.ShapeLegacy,
		CustomerName: "Old Customer",
		Status:       models.OrderStatusDelivered,
		CreatedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})

	s, err := f.service.Stats(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Equal(t, 3, s.OrderCount)
	assertMoney(t, 13000, s.Revenue)
	assert.Equal(t, 3, s.CustomerCount)

	s, err = f.service.Stats(context.Background(), Filter{Status: models.OrderStatusPendingFullPayment})
	require.NoError(t, err)
	assert.Equal(t, 2, s.OrderCount)
}

func TestOrdersForUserAndMerge(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()

	user, err := f.mem.CreateUser(ctx, &models.User{
		Email:   "nimal@example.com",
		Name:    "Nimal Perera",
		Address: &models.ShippingAddress{Street: "5 Temple Road", City: "Kandy", Country: "Sri Lanka", Phone: "0775555555"},
	})
	require.NoError(t, err)
	token, err := f.verifier.Issue(user.ID, time.Hour)
	require.NoError(t, err)

	res, err := f.composer.Checkout(ctx, CheckoutRequest{
		Items:           []CheckoutItem{{ShoeID: "S1"}},
		ShippingAddress: models.ShippingAddress{City: "Galle"},
	}, token)
	require.NoError(t, err)
	checkout(t, f, "", "Someone Else", CheckoutItem{ShoeID: "S2"})

	mine, err := f.service.OrdersForUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, res.OrderID, mine[0].OrderID)

	merged, err := f.service.MergeShippingFromProfile(ctx, res.InternalID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Galle", merged.ShippingAddress.City)
	assert.Equal(t, "5 Temple Road", merged.ShippingAddress.Street)
	assert.Equal(t, "Nimal Perera", merged.ShippingAddress.FullName)
	assert.True(t, merged.ShippingMerged)

	_, err = f.service.MergeShippingFromProfile(ctx, res.InternalID, user.ID)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))

	other, err := f.mem.CreateUser(ctx, &models.User{Email: "x@example.com", Address: &models.ShippingAddress{City: "Jaffna"}})
	require.NoError(t, err)
	_, err = f.service.MergeShippingFromProfile(ctx, res.InternalID, other.ID)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestCatalogWriteChecksPrice(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()

	created, err := f.service.CreateCatalogItem(ctx, models.ItemTypeShoe, CatalogInput{
		Name:        "Dunk Low",
		Sizes:       []string{"9", "10"},
		RetailPrice: money(6000),
		Profit:      money(1500),
	})
	require.NoError(t, err)
	assertMoney(t, 7500, created.Price)

	_, err = f.service.UpdateCatalogItem(ctx, models.ItemTypeShoe, created.ID, CatalogInput{
		Name:        "Dunk Low",
		Sizes:       []string{"9"},
		Price:       moneyPtr(8000),
		RetailPrice: money(6000),
		Profit:      money(1500),
	})
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.Invalid, ae.Kind)
	assert.Contains(t, ae.Fields, "price")

	_, err = f.service.CreateCatalogItem(ctx, models.ItemTypeApparel, CatalogInput{
		Name:        "Tee",
		Sizes:       []string{"M"},
		RetailPrice: money(-1),
	})
	assert.Equal(t, apperr.Invalid, apperr.KindOf(err))

	_, err = f.service.CreateCatalogItem(ctx, models.ItemTypeApparel, CatalogInput{
		Name:        "Tee",
		Sizes:       []string{"M"},
		RetailPrice: decimal.RequireFromString("19.999"),
	})
	ae, ok = apperr.As(err)
	require.True(t, ok)
	assert.Contains(t, ae.Fields, "retailPrice")

	_, err = f.service.CreateCatalogItem(ctx, "hat", CatalogInput{Name: "Cap", Sizes: []string{"L"}})
	assert.Equal(t, apperr.Invalid, apperr.KindOf(err))

	require.NoError(t, f.service.DeleteCatalogItem(ctx, models.ItemTypeShoe, created.ID))
	_, err = f.service.GetCatalogItem(ctx, models.ItemTypeShoe, created.ID)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestDeletedCatalogItemKeepsOrderReadable(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()
	res := checkout(t, f, "", "Nimal Perera", CheckoutItem{ShoeID: "S1"})

	require.NoError(t, f.service.DeleteCatalogItem(ctx, models.ItemTypeShoe, "S1"))

	detail, err := f.service.GetOrder(ctx, res.InternalID)
	require.NoError(t, err)
	assert.Equal(t, "Air Max 90", detail.View.DisplayName)
	assertMoney(t, 5000, detail.View.Total)
}

func TestListCatalog(t *testing.T) {
	f := newFixture(t, 3)

	page, err := f.service.ListCatalog(context.Background(), models.ItemTypeShoe, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, DefaultPageSize, page.PageSize)
}
