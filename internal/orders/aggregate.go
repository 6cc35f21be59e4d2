package orders

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dew-13/solestyle/internal/models"
	"github.com/dew-13/solestyle/internal/pricing"
)

const (
	UnknownItemName  = "Unknown Item"
	PlaceholderImage = "/images/placeholder.png"
)

// The functions below read historical records of either shape. They never
// fail: malformed records degrade to zero values or placeholders.

// TotalOf is the amount the customer pays for the order.
func TotalOf(o *models.Order) decimal.Decimal {
	if o == nil {
		return decimal.Zero
	}
	switch o.Shape {
	case models.ShapeModern:
		if o.TotalPrice != nil {
			return *o.TotalPrice
		}
		sum := decimal.Zero
		for _, li := range o.Items {
			sum = sum.Add(li.LineTotal)
		}
		return sum
	case models.ShapeLegacy:
		if o.TotalPrice != nil {
			return *o.TotalPrice
		}
		if o.Total != nil {
			return *o.Total
		}
		if o.Legacy != nil && o.Legacy.Item != nil {
			return pricing.Times(o.Legacy.Item.Price, legacyQuantity(o.Legacy))
		}
	}
	return decimal.Zero
}

func ProfitOf(o *models.Order) decimal.Decimal {
	if o == nil {
		return decimal.Zero
	}
	switch o.Shape {
	case models.ShapeModern:
		if o.TotalProfit != nil {
			return *o.TotalProfit
		}
		sum := decimal.Zero
		for _, li := range o.Items {
			sum = sum.Add(li.LineProfit)
		}
		return sum
	case models.ShapeLegacy:
		if o.Legacy == nil {
			return decimal.Zero
		}
		candidates := []*decimal.Decimal{o.Legacy.Profit}
		if o.Legacy.Item != nil {
			candidates = append(candidates, &o.Legacy.Item.Profit)
		}
		unit, _ := pricing.FirstPositive(candidates...)
		return pricing.Times(unit, legacyQuantity(o.Legacy))
	}
	return decimal.Zero
}

func DisplayName(o *models.Order) string {
	if o == nil {
		return UnknownItemName
	}
	switch o.Shape {
	case models.ShapeModern:
		switch len(o.Items) {
		case 0:
		case 1:
			if name := o.Items[0].Item.Name; name != "" {
				return name
			}
		default:
			return fmt.Sprintf("%d items", len(o.Items))
		}
	case models.ShapeLegacy:
		if o.Legacy != nil && o.Legacy.Item != nil && o.Legacy.Item.Name != "" {
			return o.Legacy.Item.Name
		}
	}
	return UnknownItemName
}

// DisplayImage is the first available item image, or PlaceholderImage.
func DisplayImage(o *models.Order) string {
	if o == nil {
		return PlaceholderImage
	}
	switch o.Shape {
	case models.ShapeModern:
		for _, li := range o.Items {
			if li.Item.Image != "" {
				return li.Item.Image
			}
		}
	case models.ShapeLegacy:
		if o.Legacy != nil && o.Legacy.Item != nil && o.Legacy.Item.Image != "" {
			return o.Legacy.Item.Image
		}
	}
	return PlaceholderImage
}

func ItemNames(o *models.Order) []string {
	if o == nil {
		return nil
	}
	var names []string
	switch o.Shape {
	case models.ShapeModern:
		for _, li := range o.Items {
			if li.Item.Name != "" {
				names = append(names, li.Item.Name)
			}
		}
	case models.ShapeLegacy:
		if o.Legacy != nil && o.Legacy.Item != nil && o.Legacy.Item.Name != "" {
			names = append(names, o.Legacy.Item.Name)
		}
	}
	return names
}

func itemCount(o *models.Order) int {
	switch o.Shape {
	case models.ShapeModern:
		return len(o.Items)
	case models.ShapeLegacy:
		if o.Legacy != nil && o.Legacy.Item != nil {
			return 1
		}
	}
	return 0
}

// Legacy records written before quantity existed count as one unit.
func legacyQuantity(l *models.LegacyItem) int {
	if l.Quantity < 1 {
		return 1
	}
	return l.Quantity
}

// OrderView is the list row shown for an order of either shape.
type OrderView struct {
	InternalID    int64                `json:"internalId"`
	OrderID       string               `json:"orderId"`
	Shape         models.OrderShape    `json:"shape"`
	DisplayName   string               `json:"displayName"`
	DisplayImage  string               `json:"displayImage"`
	ItemCount     int                  `json:"itemCount"`
	Total         decimal.Decimal      `json:"total"`
	Profit        decimal.Decimal      `json:"profit"`
	Status        models.OrderStatus   `json:"status"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
	UserID        *string              `json:"userId"`
	CustomerName  string               `json:"customerName"`
	CustomerPhone string               `json:"customerPhone"`
	CustomerEmail string               `json:"customerEmail"`
	CreatedAt     time.Time            `json:"createdAt"`
}

func ViewOf(o *models.Order) OrderView {
	return OrderView{
		InternalID:    o.ID,
		OrderID:       o.OrderCode,
		Shape:         o.Shape,
		DisplayName:   DisplayName(o),
		DisplayImage:  DisplayImage(o),
		ItemCount:     itemCount(o),
		Total:         TotalOf(o),
		Profit:        ProfitOf(o),
		Status:        o.Status,
		PaymentMethod: o.PaymentMethod,
		UserID:        o.UserID,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		CustomerEmail: o.CustomerEmail,
		CreatedAt:     o.CreatedAt,
	}
}

func viewsOf(list []models.Order) []OrderView {
	views := make([]OrderView, 0, len(list))
	for i := range list {
		views = append(views, ViewOf(&list[i]))
	}
	return views
}
