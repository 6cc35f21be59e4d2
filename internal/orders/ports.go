package orders

import (
	"context"

	"github.com/dew-13/solestyle/internal/models"
	"github.com/dew-13/solestyle/internal/notify"
	"github.com/dew-13/solestyle/internal/store"
)

type CatalogLookup interface {
	FindItemByID(ctx context.Context, itemType models.ItemType, id string) (*models.CatalogItem, error)
}

type CatalogStore interface {
	CatalogLookup
	CreateCatalogItem(ctx context.Context, item *models.CatalogItem) (*models.CatalogItem, error)
	UpdateCatalogItem(ctx context.Context, item *models.CatalogItem) (*models.CatalogItem, error)
	DeleteCatalogItem(ctx context.Context, itemType models.ItemType, id string) error
	ListCatalogItems(ctx context.Context, itemType models.ItemType, page, pageSize int) (*store.OffsetPage[models.CatalogItem], error)
}

// OrderWriter is what checkout needs to persist an order.
type OrderWriter interface {
	NextOrderSeq(ctx context.Context) (int64, error)
	InsertOrder(ctx context.Context, order *models.Order) (int64, error)
}

type OrderStore interface {
	OrderWriter
	FindOrders(ctx context.Context, f store.OrderFilter) ([]models.Order, error)
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	ListOrdersCursor(ctx context.Context, f store.OrderFilter, cursor string, limit int) (*store.CursorPage[models.Order], error)
	UpdateOrderStatus(ctx context.Context, id int64, to models.OrderStatus, actorID string) (*models.Order, error)
	ListStatusEvents(ctx context.Context, orderID int64) ([]models.StatusEvent, error)
	MergeShippingAddress(ctx context.Context, id int64, userID string, profile models.ShippingAddress) (*models.Order, error)
}

type UserStore interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// IdentityResolver maps a bearer credential to a user id.
type IdentityResolver interface {
	ResolveUserID(ctx context.Context, credential string) (string, error)
}

type Dispatcher interface {
	Dispatch(s notify.OrderSummary)
}
