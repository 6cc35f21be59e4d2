package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dew-13/solestyle/internal/apperr"
	"github.com/dew-13/solestyle/internal/database"
	"github.com/dew-13/solestyle/internal/models"
	"github.com/dew-13/solestyle/internal/pricing"
	"github.com/dew-13/solestyle/internal/store"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	// orders read per store page while filtering by search term
	searchBatch = 100
)

// Service holds the admin and account operations on orders and the catalog.
type Service struct {
	orders  OrderStore
	catalog CatalogStore
	users   UserStore
	logger  *slog.Logger
}

func NewService(orders OrderStore, catalog CatalogStore, users UserStore, logger *slog.Logger) *Service {
	return &Service{orders: orders, catalog: catalog, users: users, logger: logger}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultPageSize
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}

func orderErr(err error) error {
	switch {
	case errors.Is(err, database.ErrOrderNotFound):
		return apperr.NotFoundErr("order not found", err)
	case errors.Is(err, database.ErrShippingMerged):
		return apperr.ConflictErr("shipping address was already completed from the profile", err)
	default:
		return apperr.Wrap(err)
	}
}

// ListOrders returns one page of order rows, newest first. Search terms are
// applied on top of the store filter, reading further store pages until the
// page is full or the orders run out.
func (s *Service) ListOrders(ctx context.Context, f Filter, cursor string, limit int) (*store.CursorPage[OrderView], error) {
	limit = clampLimit(limit)

	if strings.TrimSpace(f.Search) == "" {
		page, err := s.orders.ListOrdersCursor(ctx, f.storeFilter(), cursor, limit)
		if err != nil {
			return nil, cursorErr(err)
		}
		return &store.CursorPage[OrderView]{
			Items:      viewsOf(page.Items),
			NextCursor: page.NextCursor,
			HasMore:    page.HasMore,
		}, nil
	}

	var matched []models.Order
	next := cursor
scan:
	for {
		page, err := s.orders.ListOrdersCursor(ctx, f.storeFilter(), next, searchBatch)
		if err != nil {
			return nil, cursorErr(err)
		}
		for i := range page.Items {
			if Match(&page.Items[i], f) {
				matched = append(matched, page.Items[i])
				if len(matched) > limit {
					break scan
				}
			}
		}
		if !page.HasMore {
			break
		}
		next = page.NextCursor
	}

	result := &store.CursorPage[OrderView]{HasMore: len(matched) > limit}
	if result.HasMore {
		matched = matched[:limit]
		last := matched[len(matched)-1]
		result.NextCursor = store.EncodeCursor(store.OrderCursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	result.Items = viewsOf(matched)
	return result, nil
}

func cursorErr(err error) error {
	if errors.Is(err, store.ErrBadCursor) {
		return apperr.FieldErr("cursor", "invalid cursor")
	}
	return apperr.Wrap(err)
}

type OrderDetail struct {
	Order  *models.Order        `json:"order"`
	View   OrderView            `json:"view"`
	Events []models.StatusEvent `json:"events"`
}

func (s *Service) GetOrder(ctx context.Context, id int64) (*OrderDetail, error) {
	order, err := s.orders.GetOrder(ctx, id)
	if err != nil {
		return nil, orderErr(err)
	}
	events, err := s.orders.ListStatusEvents(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	return &OrderDetail{Order: order, View: ViewOf(order), Events: events}, nil
}

// UpdateStatus sets the order status. Any status may follow any other.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status string, actorID string) (*OrderView, error) {
	target, err := ParseStatus(status)
	if err != nil {
		return nil, apperr.FieldErr("status", fmt.Sprintf("status must be one of %s", statusList()))
	}

	current, err := s.orders.GetOrder(ctx, id)
	if err != nil {
		return nil, orderErr(err)
	}
	next, err := Transition(current.Status, target)
	if err != nil {
		return nil, apperr.FieldErr("status", err.Error())
	}

	updated, err := s.orders.UpdateOrderStatus(ctx, id, next, actorID)
	if err != nil {
		return nil, orderErr(err)
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "order_status_changed",
		slog.String("order_id", updated.OrderCode),
		slog.String("from", string(current.Status)),
		slog.String("to", string(next)),
		slog.String("actor", actorID),
	)

	view := ViewOf(updated)
	return &view, nil
}

func statusList() string {
	names := make([]string, len(models.OrderStatuses))
	for i, st := range models.OrderStatuses {
		names[i] = string(st)
	}
	return strings.Join(names, ", ")
}

func (s *Service) Stats(ctx context.Context, f Filter) (*Summary, error) {
	list, err := s.orders.FindOrders(ctx, f.storeFilter())
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	summary := Summarize(list, f)
	return &summary, nil
}

func (s *Service) OrdersForUser(ctx context.Context, userID string) ([]OrderView, error) {
	list, err := s.orders.FindOrders(ctx, store.OrderFilter{UserID: userID})
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	return viewsOf(list), nil
}

// MergeShippingFromProfile completes the empty shipping fields of the user's
// order from the address saved on their profile. It works once per order.
func (s *Service) MergeShippingFromProfile(ctx context.Context, orderID int64, userID string) (*models.Order, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil, apperr.UnauthorizedErr("unknown user")
		}
		return nil, apperr.Wrap(err)
	}
	if user.Address == nil {
		return nil, apperr.InvalidErr("no address saved on profile", nil)
	}

	profile := *user.Address
	if profile.FullName == "" && profile.Name == "" {
		profile.FullName = user.Name
	}
	if profile.Email == "" {
		profile.Email = user.Email
	}

	order, err := s.orders.MergeShippingAddress(ctx, orderID, userID, profile)
	if err != nil {
		return nil, orderErr(err)
	}
	return order, nil
}

// CatalogInput is the admin form for a catalog item. Price may be omitted
// and is then retail price plus profit.
type CatalogInput struct {
	Name        string           `json:"name" binding:"required,max=200"`
	Brand       string           `json:"brand" binding:"max=100"`
	Image       string           `json:"image" binding:"omitempty,max=500"`
	Sizes       []string         `json:"sizes" binding:"required,min=1,dive,required,max=20"`
	Price       *decimal.Decimal `json:"price"`
	RetailPrice decimal.Decimal  `json:"retailPrice"`
	Profit      decimal.Decimal  `json:"profit"`
}

func (in CatalogInput) toItem(itemType models.ItemType, id string) (*models.CatalogItem, error) {
	if !itemType.Valid() {
		return nil, apperr.FieldErr("type", "type must be shoe or apparel")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.FieldErr("name", "name is required")
	}
	if len(in.Sizes) == 0 {
		return nil, apperr.FieldErr("sizes", "at least one size is required")
	}
	amounts := []struct {
		field  string
		amount *decimal.Decimal
	}{
		{"price", in.Price},
		{"retailPrice", &in.RetailPrice},
		{"profit", &in.Profit},
	}
	for _, a := range amounts {
		if a.amount != nil && !pricing.FitsPlaces(*a.amount) {
			return nil, apperr.FieldErr(a.field, pricing.ErrTooPrecise.Error())
		}
	}
	price, err := pricing.ResolveCatalogPrice(in.Price, in.RetailPrice, in.Profit)
	if err != nil {
		field := "price"
		if errors.Is(err, pricing.ErrNegativeAmount) {
			field = "retailPrice"
		}
		return nil, apperr.FieldErr(field, err.Error())
	}
	return &models.CatalogItem{
		ID:          id,
		Type:        itemType,
		Name:        strings.TrimSpace(in.Name),
		Brand:       strings.TrimSpace(in.Brand),
		Image:       in.Image,
		Sizes:       in.Sizes,
		Price:       price,
		RetailPrice: in.RetailPrice,
		Profit:      in.Profit,
	}, nil
}

func catalogErr(err error) error {
	if errors.Is(err, database.ErrCatalogItemNotFound) {
		return apperr.NotFoundErr("catalog item not found", err)
	}
	return apperr.Wrap(err)
}

func (s *Service) CreateCatalogItem(ctx context.Context, itemType models.ItemType, in CatalogInput) (*models.CatalogItem, error) {
	item, err := in.toItem(itemType, "")
	if err != nil {
		return nil, err
	}
	created, err := s.catalog.CreateCatalogItem(ctx, item)
	if err != nil {
		return nil, catalogErr(err)
	}
	return created, nil
}

func (s *Service) UpdateCatalogItem(ctx context.Context, itemType models.ItemType, id string, in CatalogInput) (*models.CatalogItem, error) {
	item, err := in.toItem(itemType, id)
	if err != nil {
		return nil, err
	}
	updated, err := s.catalog.UpdateCatalogItem(ctx, item)
	if err != nil {
		return nil, catalogErr(err)
	}
	return updated, nil
}

func (s *Service) DeleteCatalogItem(ctx context.Context, itemType models.ItemType, id string) error {
	if !itemType.Valid() {
		return apperr.FieldErr("type", "type must be shoe or apparel")
	}
	if err := s.catalog.DeleteCatalogItem(ctx, itemType, id); err != nil {
		return catalogErr(err)
	}
	return nil
}

func (s *Service) GetCatalogItem(ctx context.Context, itemType models.ItemType, id string) (*models.CatalogItem, error) {
	if !itemType.Valid() {
		return nil, apperr.FieldErr("type", "type must be shoe or apparel")
	}
	item, err := s.catalog.FindItemByID(ctx, itemType, id)
	if err != nil {
		return nil, catalogErr(err)
	}
	return item, nil
}

func (s *Service) ListCatalog(ctx context.Context, itemType models.ItemType, page, pageSize int) (*store.OffsetPage[models.CatalogItem], error) {
	if !itemType.Valid() {
		return nil, apperr.FieldErr("type", "type must be shoe or apparel")
	}
	if page < 1 {
		page = 1
	}
	list, err := s.catalog.ListCatalogItems(ctx, itemType, page, clampLimit(pageSize))
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	return list, nil
}
