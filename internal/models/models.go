package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ItemType string

const (
	ItemTypeShoe    ItemType = "shoe"
	ItemTypeApparel ItemType = "apparel"
)

func (t ItemType) Valid() bool {
	return t == ItemTypeShoe || t == ItemTypeApparel
}

type CatalogItem struct {
	ID          string          `json:"id"`
	Type        ItemType        `json:"type"`
	Name        string          `json:"name"`
	Brand       string          `json:"brand"`
	Image       string          `json:"image,omitempty"`
	Sizes       []string        `json:"sizes"`
	Price       decimal.Decimal `json:"price"`
	RetailPrice decimal.Decimal `json:"retailPrice"`
	Profit      decimal.Decimal `json:"profit"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Snapshot copies the fields an order keeps after the catalog item changes or disappears.
func (c *CatalogItem) Snapshot() ItemSnapshot {
	return ItemSnapshot{
		ID:          c.ID,
		Name:        c.Name,
		Brand:       c.Brand,
		Image:       c.Image,
		Price:       c.Price,
		RetailPrice: c.RetailPrice,
		Profit:      c.Profit,
	}
}

type ItemSnapshot struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Brand       string          `json:"brand,omitempty"`
	Image       string          `json:"image,omitempty"`
	Price       decimal.Decimal `json:"price"`
	RetailPrice decimal.Decimal `json:"retailPrice"`
	Profit      decimal.Decimal `json:"profit"`
}

type LineItem struct {
	ItemType   ItemType        `json:"itemType"`
	Item       ItemSnapshot    `json:"item"`
	Size       string          `json:"size"`
	Quantity   int             `json:"quantity"`
	LineTotal  decimal.Decimal `json:"lineTotal"`
	LineProfit decimal.Decimal `json:"lineProfit"`
}

// LegacyItem is the single embedded item of pre multi-item orders.
type LegacyItem struct {
	ItemType    ItemType         `json:"itemType"`
	Item        *ItemSnapshot    `json:"item,omitempty"`
	Size        string           `json:"size"`
	Quantity    int              `json:"quantity"`
	RetailPrice *decimal.Decimal `json:"retailPrice,omitempty"`
	Profit      *decimal.Decimal `json:"profit,omitempty"`
}

type OrderShape string

const (
	ShapeLegacy OrderShape = "legacy"
	ShapeModern OrderShape = "modern"
)

type ShippingAddress struct {
	FullName string `json:"fullName,omitempty"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Street   string `json:"street,omitempty"`
	Address  string `json:"address,omitempty"`
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
	ZipCode  string `json:"zipCode,omitempty"`
	Country  string `json:"country,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Mobile   string `json:"mobile,omitempty"`
	Contact  string `json:"contact,omitempty"`
}

type PaymentMethod string

const (
	PaymentFull         PaymentMethod = "full"
	PaymentInstallments PaymentMethod = "installments"
)

type OrderStatus string

const (
	OrderStatusPending             OrderStatus = "pending"
	OrderStatusPendingFullPayment  OrderStatus = "pending_full_payment"
	OrderStatusPendingInstallment  OrderStatus = "pending_installment"
	OrderStatusPaymentReceived     OrderStatus = "payment_received"
	OrderStatusInstallmentReceived OrderStatus = "installment_received"
	OrderStatusShipped             OrderStatus = "shipped"
	OrderStatusDelivered           OrderStatus = "delivered"
	OrderStatusCancelled           OrderStatus = "cancelled"
)

var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPendingFullPayment,
	OrderStatusPendingInstallment,
	OrderStatusPaymentReceived,
	OrderStatusInstallmentReceived,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

type Order struct {
	ID              int64            `json:"internalId"`
	OrderCode       string           `json:"orderId"`
	UserID          *string          `json:"userId"`
	Shape           OrderShape       `json:"shape"`
	Items           []LineItem       `json:"items,omitempty"`
	Legacy          *LegacyItem      `json:"legacy,omitempty"`
	TotalPrice      *decimal.Decimal `json:"totalPrice,omitempty"`
	Total           *decimal.Decimal `json:"total,omitempty"`
	TotalProfit     *decimal.Decimal `json:"totalProfit,omitempty"`
	CustomerName    string           `json:"customerName"`
	CustomerPhone   string           `json:"customerPhone"`
	CustomerEmail   string           `json:"customerEmail"`
	ShippingAddress ShippingAddress  `json:"shippingAddress"`
	PaymentMethod   PaymentMethod    `json:"paymentMethod"`
	Status          OrderStatus      `json:"status"`
	ShippingMerged  bool             `json:"shippingMerged"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

type User struct {
	ID        string           `json:"id"`
	Email     string           `json:"email"`
	Name      string           `json:"name"`
	IsAdmin   bool             `json:"isAdmin"`
	Address   *ShippingAddress `json:"address,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

type StatusEvent struct {
	ID          string      `json:"id"`
	OrderID     int64       `json:"orderId"`
	ActorUserID string      `json:"actorUserId"`
	FromStatus  OrderStatus `json:"fromStatus"`
	ToStatus    OrderStatus `json:"toStatus"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// FillFrom returns a copy of a whose empty fields are taken from src.
func (a ShippingAddress) FillFrom(src ShippingAddress) ShippingAddress {
	fill := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	fill(&a.FullName, src.FullName)
	fill(&a.Name, src.Name)
	fill(&a.Email, src.Email)
	fill(&a.Street, src.Street)
	fill(&a.Address, src.Address)
	fill(&a.City, src.City)
	fill(&a.State, src.State)
	fill(&a.ZipCode, src.ZipCode)
	fill(&a.Country, src.Country)
	fill(&a.Phone, src.Phone)
	fill(&a.Mobile, src.Mobile)
	fill(&a.Contact, src.Contact)
	return a
}
