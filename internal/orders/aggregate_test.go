package orders

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/dew-13/solestyle/internal/models"
)

func snapshot(name string, price, profit int64) models.ItemSnapshot {
	return models.ItemSnapshot{
		ID:     name,
		Name:   name,
		Image:  "/images/" + name + ".png",
		Price:  money(price),
		Profit: money(profit),
	}
}

func line(name string, price, profit int64, qty int) models.LineItem {
	return models.LineItem{
		ItemType:   models.ItemTypeShoe,
		Item:       snapshot(name, price, profit),
		Quantity:   qty,
		LineTotal:  money(price * int64(qty)),
		LineProfit: money(profit * int64(qty)),
	}
}

func modernOrder(lines ...models.LineItem) *models.Order {
	total, profit := decimal.Zero, decimal.Zero
	for _, li := range lines {
		total = total.Add(li.LineTotal)
		profit = profit.Add(li.LineProfit)
	}
	return &models.Order{Shape: models.ShapeModern, Items: lines, TotalPrice: &total, TotalProfit: &profit}
}

func TestTotalOf(t *testing.T) {
	item := snapshot("Old Skool", 2500, 300)

	tests := []struct {
		name  string
		order *models.Order
		want  int64
	}{
		{"modern", modernOrder(line("A", 5000, 1000, 1), line("B", 3000, 500, 2)), 11000},
		{"modern without stored total", &models.Order{Shape: models.ShapeModern, Items: []models.LineItem{line("A", 100, 10, 3)}}, 300},
		{"legacy total price", &models.Order{Shape: models.ShapeLegacy, TotalPrice: moneyPtr(4000), Legacy: &models.LegacyItem{Item: &item, Quantity: 2}}, 4000},
		{"legacy total field", &models.Order{Shape: models.ShapeLegacy, Total: moneyPtr(4500), Legacy: &models.LegacyItem{Item: &item, Quantity: 2}}, 4500},
		{"legacy from item price", &models.Order{Shape: models.ShapeLegacy, Legacy: &models.LegacyItem{Item: &item, Quantity: 3}}, 7500},
		{"legacy without quantity", &models.Order{Shape: models.ShapeLegacy, Legacy: &models.LegacyItem{Item: &item}}, 2500},
		{"legacy without item", &models.Order{Shape: models.ShapeLegacy, Legacy: &models.LegacyItem{Quantity: 2}}, 0},
		{"empty modern", &models.Order{Shape: models.ShapeModern, Items: []models.LineItem{}}, 0},
		{"unknown shape", &models.Order{TotalPrice: moneyPtr(999)}, 0},
		{"nil", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertMoney(t, tt.want, TotalOf(tt.order))
		})
	}
}

func TestTotalOfMatchesLineTotals(t *testing.T) {
	o := modernOrder(line("A", 1999, 100, 3), line("B", 250, 25, 1), line("C", 7000, 900, 4))

	sum := decimal.Zero
	for _, li := range o.Items {
		sum = sum.Add(li.LineTotal)
	}
	assert.True(t, TotalOf(o).Equal(sum))
}

func TestProfitOf(t *testing.T) {
	item := snapshot("Old Skool", 2500, 300)

	tests := []struct {
		name  string
		order *models.Order
		want  int64
	}{
		{"modern", modernOrder(line("A", 5000, 1000, 1), line("B", 3000, 500, 2)), 2000},
		{"legacy explicit unit profit", &models.Order{Shape: models.ShapeLegacy, Legacy: &models.LegacyItem{Item: &item, Quantity: 2, Profit: moneyPtr(400)}}, 800},
		{"legacy item profit", &models.Order{Shape: models.ShapeLegacy, Legacy: &models.LegacyItem{Item: &item, Quantity: 2}}, 600},
		{"legacy without profit fields", &models.Order{Shape: models.ShapeLegacy, Legacy: &models.LegacyItem{Quantity: 2}}, 0},
		{"no profit fields at all", &models.Order{}, 0},
		{"nil", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertMoney(t, tt.want, ProfitOf(tt.order))
		})
	}
}

func TestDisplayNameAndImage(t *testing.T) {
	item := snapshot("Old Skool", 2500, 300)

	tests := []struct {
		name      string
		order     *models.Order
		wantName  string
		wantImage string
	}{
		{"single line", modernOrder(line("Air Force 1", 5000, 0, 1)), "Air Force 1", "/images/Air Force 1.png"},
		{"many lines", modernOrder(line("A", 1, 0, 1), line("B", 1, 0, 1), line("C", 1, 0, 1)), "3 items", "/images/A.png"},
		{"legacy", &models.Order{Shape: models.ShapeLegacy, Legacy: &models.LegacyItem{Item: &item}}, "Old Skool", "/images/Old Skool.png"},
		{"legacy without item", &models.Order{Shape: models.ShapeLegacy}, UnknownItemName, PlaceholderImage},
		{"no items", &models.Order{Shape: models.ShapeModern, Items: []models.LineItem{}}, UnknownItemName, PlaceholderImage},
		{"nameless item", modernOrder(models.LineItem{}), UnknownItemName, PlaceholderImage},
		{"unknown shape", &models.Order{}, UnknownItemName, PlaceholderImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantName, DisplayName(tt.order))
			assert.Equal(t, tt.wantImage, DisplayImage(tt.order))
		})
	}
}

func TestAggregatesArePure(t *testing.T) {
	o := modernOrder(line("A", 5000, 1000, 2), line("B", 3000, 500, 1))

	first := ViewOf(o)
	second := ViewOf(o)
	assert.Equal(t, first, second)
	assert.Len(t, o.Items, 2)
	assertMoney(t, 13000, *o.TotalPrice)
}

func TestParseStatusAndTransition(t *testing.T) {
	st, err := ParseStatus(" Shipped ")
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, st)

	_, err = ParseStatus("lost")
	assert.ErrorIs(t, err, ErrUnknownStatus)

	for _, from := range models.OrderStatuses {
		for _, to := range models.OrderStatuses {
			next, err := Transition(from, to)
			assert.NoError(t, err)
			assert.Equal(t, to, next)
		}
	}

	next, err := Transition(models.OrderStatusDelivered, "refunded")
	assert.Error(t, err)
	assert.Equal(t, models.OrderStatusDelivered, next)

	assert.Equal(t, models.OrderStatusPendingFullPayment, InitialStatus(models.PaymentFull))
	assert.Equal(t, models.OrderStatusPendingInstallment, InitialStatus(models.PaymentInstallments))
	assert.Equal(t, models.OrderStatusPending, InitialStatus(""))
}

func TestResolveCustomer(t *testing.T) {
	addr := models.ShippingAddress{FullName: "Nimal Perera", Name: "Nimal", Mobile: "0772222222", Contact: "0773333333"}

	got := ResolveCustomer(Customer{Email: "  "}, addr)
	assert.Equal(t, Customer{Name: "Nimal Perera", Phone: "0772222222"}, got)

	got = ResolveCustomer(Customer{Name: "N. Perera", Phone: "0111111111"}, addr)
	assert.Equal(t, "N. Perera", got.Name)
	assert.Equal(t, "0111111111", got.Phone)
}
