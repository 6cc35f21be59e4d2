package orders

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dew-13/solestyle/internal/models"
	"github.com/dew-13/solestyle/internal/store"
)

// Filter selects orders for admin listings and statistics. To is exclusive.
type Filter struct {
	Status models.OrderStatus
	From   *time.Time
	To     *time.Time
	Search string
}

func (f Filter) storeFilter() store.OrderFilter {
	return store.OrderFilter{Status: f.Status, From: f.From, To: f.To}
}

// Match reports whether o passes f. Search is a case-insensitive substring
// match over customer name, order code, item names, phone and email.
func Match(o *models.Order, f Filter) bool {
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if f.From != nil && o.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && !o.CreatedAt.Before(*f.To) {
		return false
	}

	term := strings.ToLower(strings.TrimSpace(f.Search))
	if term == "" {
		return true
	}
	fields := append([]string{o.CustomerName, o.OrderCode, o.CustomerPhone, o.CustomerEmail}, ItemNames(o)...)
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

type Summary struct {
	OrderCount        int                        `json:"orderCount"`
	Revenue           decimal.Decimal            `json:"revenue"`
	Profit            decimal.Decimal            `json:"profit"`
	CustomerCount     int                        `json:"customerCount"`
	AverageOrderValue decimal.Decimal            `json:"averageOrderValue"`
	ByStatus          map[models.OrderStatus]int `json:"byStatus"`
}

// Summarize aggregates the orders passing f. Customers are counted by
// case-folded name.
func Summarize(list []models.Order, f Filter) Summary {
	s := Summary{
		Revenue:           decimal.Zero,
		Profit:            decimal.Zero,
		AverageOrderValue: decimal.Zero,
		ByStatus:          make(map[models.OrderStatus]int),
	}
	customers := make(map[string]struct{})

	for i := range list {
		o := &list[i]
		if !Match(o, f) {
			continue
		}
		s.OrderCount++
		s.Revenue = s.Revenue.Add(TotalOf(o))
		s.Profit = s.Profit.Add(ProfitOf(o))
		s.ByStatus[o.Status]++
		if name := strings.ToLower(strings.TrimSpace(o.CustomerName)); name != "" {
			customers[name] = struct{}{}
		}
	}

	s.CustomerCount = len(customers)
	if s.OrderCount > 0 {
		s.AverageOrderValue = s.Revenue.Div(decimal.NewFromInt(int64(s.OrderCount))).Round(2)
	}
	return s
}
