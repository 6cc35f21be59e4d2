package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/dew-13/solestyle/internal/apperr"
	"github.com/dew-13/solestyle/internal/config"
	"github.com/dew-13/solestyle/internal/database"
	"github.com/dew-13/solestyle/internal/models"
	"github.com/dew-13/solestyle/internal/notify"
	"github.com/dew-13/solestyle/internal/pricing"
)

// CheckoutItem is one entry of a multi-item checkout.
type CheckoutItem struct {
	Type       models.ItemType  `json:"type"`
	ShoeID     string           `json:"shoeId"`
	ApparelID  string           `json:"apparelId"`
	Size       string           `json:"size"`
	Quantity   int              `json:"quantity"`
	TotalPrice *decimal.Decimal `json:"totalPrice"`
	Profit     *decimal.Decimal `json:"profit"`
}

// CheckoutRequest carries either Items or the single-item scalar fields.
type CheckoutRequest struct {
	Items []CheckoutItem `json:"items"`

	Type        models.ItemType  `json:"type"`
	ShoeID      string           `json:"shoeId"`
	ApparelID   string           `json:"apparelId"`
	Size        string           `json:"size"`
	Quantity    int              `json:"quantity"`
	Price       *decimal.Decimal `json:"price"`
	RetailPrice *decimal.Decimal `json:"retailPrice"`
	Profit      *decimal.Decimal `json:"profit"`
	TotalPrice  *decimal.Decimal `json:"totalPrice"`

	CustomerName    string                 `json:"customerName"`
	CustomerPhone   string                 `json:"customerPhone"`
	CustomerEmail   string                 `json:"customerEmail"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   models.PaymentMethod   `json:"paymentMethod"`
}

type CheckoutResult struct {
	OrderID    string           `json:"orderId"`
	InternalID int64            `json:"internalId"`
	Total      decimal.Decimal  `json:"total"`
	Profit     *decimal.Decimal `json:"profit,omitempty"`
}

// selection is a validated, not yet priced, line of a checkout.
type selection struct {
	itemType   models.ItemType
	id         string
	size       string
	quantity   int
	totalPrice *decimal.Decimal
	profit     *decimal.Decimal
}

type Composer struct {
	catalog     CatalogLookup
	orders      OrderWriter
	identity    IdentityResolver
	dispatcher  Dispatcher
	logger      *slog.Logger
	codePrefix  string
	maxAttempts int
}

func NewComposer(catalog CatalogLookup, orders OrderWriter, identity IdentityResolver, dispatcher Dispatcher, logger *slog.Logger, cfg config.OrdersConfig) *Composer {
	if cfg.CodeMaxAttempts < 1 {
		cfg.CodeMaxAttempts = 1
	}
	return &Composer{
		catalog:     catalog,
		orders:      orders,
		identity:    identity,
		dispatcher:  dispatcher,
		logger:      logger,
		codePrefix:  cfg.CodePrefix,
		maxAttempts: cfg.CodeMaxAttempts,
	}
}

func FormatOrderCode(prefix string, seq int64) string {
	return fmt.Sprintf("%s%06d", prefix, seq)
}

// Checkout turns a checkout request into one persisted order. Every catalog
// lookup happens before the single insert, so a failed line never leaves a
// partial order behind. A missing or bad credential makes a guest order.
func (c *Composer) Checkout(ctx context.Context, req CheckoutRequest, credential string) (*CheckoutResult, error) {
	modern := req.Items != nil

	var (
		sels []selection
		err  error
	)
	if modern {
		sels, err = selectionsFromItems(req.Items)
	} else {
		var sel selection
		sel, err = selectionFromScalars(req)
		sels = []selection{sel}
	}
	if err != nil {
		return nil, err
	}

	items := make([]*models.CatalogItem, len(sels))
	for i, sel := range sels {
		item, err := c.catalog.FindItemByID(ctx, sel.itemType, sel.id)
		if err != nil {
			if errors.Is(err, database.ErrCatalogItemNotFound) {
				return nil, apperr.NotFoundErr(fmt.Sprintf("%s %s not found", sel.itemType, sel.id), err)
			}
			return nil, apperr.Wrap(fmt.Errorf("find %s %s: %w", sel.itemType, sel.id, err))
		}
		items[i] = item
	}

	order := &models.Order{
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		Status:          InitialStatus(req.PaymentMethod),
	}
	if modern {
		composeModern(order, sels, items)
	} else {
		composeLegacy(order, req, sels[0], items[0])
	}

	customer := ResolveCustomer(Customer{
		Name:  req.CustomerName,
		Email: req.CustomerEmail,
		Phone: req.CustomerPhone,
	}, req.ShippingAddress)
	order.CustomerName = customer.Name
	order.CustomerEmail = customer.Email
	order.CustomerPhone = customer.Phone

	if userID := c.resolveUser(ctx, credential); userID != "" {
		order.UserID = &userID
	}

	if err := c.insert(ctx, order); err != nil {
		return nil, apperr.Wrap(err)
	}

	c.logger.LogAttrs(ctx, slog.LevelInfo, "order_created",
		slog.String("order_id", order.OrderCode),
		slog.Int64("internal_id", order.ID),
		slog.String("shape", string(order.Shape)),
		slog.Bool("guest", order.UserID == nil),
	)

	c.notify(order)

	result := &CheckoutResult{
		OrderID:    order.OrderCode,
		InternalID: order.ID,
		Total:      TotalOf(order),
	}
	if modern {
		profit := ProfitOf(order)
		result.Profit = &profit
	}
	return result, nil
}

func selectionsFromItems(entries []CheckoutItem) ([]selection, error) {
	if len(entries) == 0 {
		return nil, apperr.FieldErr("items", "at least one item is required")
	}
	sels := make([]selection, 0, len(entries))
	for i, e := range entries {
		sel, err := newSelection(fmt.Sprintf("items[%d].", i), e.Type, e.ShoeID, e.ApparelID, e.Quantity)
		if err != nil {
			return nil, err
		}
		sel.size = e.Size
		sel.totalPrice = e.TotalPrice
		sel.profit = e.Profit
		sels = append(sels, sel)
	}
	return sels, nil
}

func selectionFromScalars(req CheckoutRequest) (selection, error) {
	sel, err := newSelection("", req.Type, req.ShoeID, req.ApparelID, req.Quantity)
	if err != nil {
		return selection{}, err
	}
	sel.size = req.Size
	sel.totalPrice = req.TotalPrice
	sel.profit = req.Profit
	return sel, nil
}

// newSelection validates the identifier fields of one line. The item type may
// be left out when exactly one of the id fields says what it is.
func newSelection(prefix string, itemType models.ItemType, shoeID, apparelID string, quantity int) (selection, error) {
	if itemType == "" {
		switch {
		case shoeID != "":
			itemType = models.ItemTypeShoe
		case apparelID != "":
			itemType = models.ItemTypeApparel
		default:
			return selection{}, apperr.FieldErr(prefix+"shoeId", "shoeId or apparelId is required")
		}
	}

	sel := selection{itemType: itemType, quantity: quantity}
	switch itemType {
	case models.ItemTypeShoe:
		sel.id = shoeID
		if sel.id == "" {
			return selection{}, apperr.FieldErr(prefix+"shoeId", "shoeId is required")
		}
	case models.ItemTypeApparel:
		sel.id = apparelID
		if sel.id == "" {
			return selection{}, apperr.FieldErr(prefix+"apparelId", "apparelId is required")
		}
	default:
		return selection{}, apperr.FieldErr(prefix+"type", "type must be shoe or apparel")
	}

	switch {
	case sel.quantity < 0:
		return selection{}, apperr.FieldErr(prefix+"quantity", "quantity must be positive")
	case sel.quantity == 0:
		sel.quantity = 1
	}
	return sel, nil
}

func composeModern(order *models.Order, sels []selection, items []*models.CatalogItem) {
	order.Shape = models.ShapeModern
	total, profit := decimal.Zero, decimal.Zero

	order.Items = make([]models.LineItem, 0, len(sels))
	for i, sel := range sels {
		item := items[i]
		line := models.LineItem{
			ItemType:   sel.itemType,
			Item:       item.Snapshot(),
			Size:       sel.size,
			Quantity:   sel.quantity,
			LineTotal:  pricing.LineTotal(sel.totalPrice, item.Price, sel.quantity),
			LineProfit: pricing.LineProfit(sel.profit, item.Profit, sel.quantity),
		}
		total = total.Add(line.LineTotal)
		profit = profit.Add(line.LineProfit)
		order.Items = append(order.Items, line)
	}

	order.TotalPrice = &total
	order.TotalProfit = &profit
}

func composeLegacy(order *models.Order, req CheckoutRequest, sel selection, item *models.CatalogItem) {
	order.Shape = models.ShapeLegacy
	snapshot := item.Snapshot()

	unitPrice, _ := pricing.FirstPositive(req.Price, &item.Price)
	total := pricing.LineTotal(sel.totalPrice, unitPrice, sel.quantity)
	retail, _ := pricing.FirstPositive(req.RetailPrice, &item.RetailPrice)
	retail = pricing.Round(retail)
	profit, _ := pricing.FirstPositive(sel.profit, &item.Profit)
	profit = pricing.Round(profit)

	order.Legacy = &models.LegacyItem{
		ItemType:    sel.itemType,
		Item:        &snapshot,
		Size:        sel.size,
		Quantity:    sel.quantity,
		RetailPrice: &retail,
		Profit:      &profit,
	}
	order.TotalPrice = &total
}

func (c *Composer) resolveUser(ctx context.Context, credential string) string {
	if credential == "" || c.identity == nil {
		return ""
	}
	userID, err := c.identity.ResolveUserID(ctx, credential)
	if err != nil {
		c.logger.LogAttrs(ctx, slog.LevelDebug, "checkout_as_guest", slog.Any("err", err))
		return ""
	}
	return userID
}

// insert draws order codes until one is free. Codes only collide when the
// sequence lags behind imported data, so a few attempts are enough.
func (c *Composer) insert(ctx context.Context, order *models.Order) error {
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		seq, err := c.orders.NextOrderSeq(ctx)
		if err != nil {
			return err
		}
		order.OrderCode = FormatOrderCode(c.codePrefix, seq)

		if _, err := c.orders.InsertOrder(ctx, order); err != nil {
			if errors.Is(err, database.ErrOrderCodeConflict) {
				c.logger.LogAttrs(ctx, slog.LevelWarn, "order_code_conflict",
					slog.String("order_id", order.OrderCode),
					slog.Int("attempt", attempt),
				)
				lastErr = err
				continue
			}
			return err
		}
		return nil
	}
	return fmt.Errorf("no free order code after %d attempts: %w", c.maxAttempts, lastErr)
}

func (c *Composer) notify(order *models.Order) {
	if c.dispatcher == nil {
		return
	}
	c.dispatcher.Dispatch(SummaryOf(order))
}

// SummaryOf is the notification payload for a new order.
func SummaryOf(order *models.Order) notify.OrderSummary {
	return notify.OrderSummary{
		InternalID:    order.ID,
		OrderID:       order.OrderCode,
		DisplayName:   DisplayName(order),
		ItemCount:     itemCount(order),
		Total:         TotalOf(order),
		Profit:        ProfitOf(order),
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		CustomerPhone: order.CustomerPhone,
		PaymentMethod: string(order.PaymentMethod),
		Status:        string(order.Status),
		Guest:         order.UserID == nil,
	}
}
