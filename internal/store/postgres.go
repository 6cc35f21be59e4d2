package store

import (
	"context"
	"database/sql"

	"github.com/dew-13/solestyle/internal/models"
)

// Postgres binds the package level store functions to one connection pool.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) FindItemByID(ctx context.Context, itemType models.ItemType, id string) (*models.CatalogItem, error) {
	return GetCatalogItem(ctx, p.db, itemType, id)
}

func (p *Postgres) CreateCatalogItem(ctx context.Context, item *models.CatalogItem) (*models.CatalogItem, error) {
	return CreateCatalogItem(ctx, p.db, item)
}

func (p *Postgres) UpdateCatalogItem(ctx context.Context, item *models.CatalogItem) (*models.CatalogItem, error) {
	return UpdateCatalogItem(ctx, p.db, item)
}

func (p *Postgres) DeleteCatalogItem(ctx context.Context, itemType models.ItemType, id string) error {
	return DeleteCatalogItem(ctx, p.db, itemType, id)
}

func (p *Postgres) ListCatalogItems(ctx context.Context, itemType models.ItemType, page, pageSize int) (*OffsetPage[models.CatalogItem], error) {
	return ListCatalogItems(ctx, p.db, itemType, page, pageSize)
}

func (p *Postgres) NextOrderSeq(ctx context.Context) (int64, error) {
	return NextOrderSeq(ctx, p.db)
}

func (p *Postgres) InsertOrder(ctx context.Context, order *models.Order) (int64, error) {
	return InsertOrder(ctx, p.db, order)
}

func (p *Postgres) CountOrders(ctx context.Context) (int64, error) {
	return CountOrders(ctx, p.db)
}

func (p *Postgres) FindOrders(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	return FindOrders(ctx, p.db, f)
}

func (p *Postgres) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	return GetOrder(ctx, p.db, id)
}

func (p *Postgres) ListOrdersCursor(ctx context.Context, f OrderFilter, cursor string, limit int) (*CursorPage[models.Order], error) {
	return ListOrdersCursor(ctx, p.db, f, cursor, limit)
}

func (p *Postgres) UpdateOrderStatus(ctx context.Context, id int64, to models.OrderStatus, actorID string) (*models.Order, error) {
	return UpdateOrderStatus(ctx, p.db, id, to, actorID)
}

func (p *Postgres) ListStatusEvents(ctx context.Context, orderID int64) ([]models.StatusEvent, error) {
	return ListStatusEvents(ctx, p.db, orderID)
}

func (p *Postgres) MergeShippingAddress(ctx context.Context, id int64, userID string, profile models.ShippingAddress) (*models.Order, error) {
	return MergeShippingAddress(ctx, p.db, id, userID, profile)
}

func (p *Postgres) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	return CreateUser(ctx, p.db, u)
}

func (p *Postgres) GetUser(ctx context.Context, id string) (*models.User, error) {
	return GetUser(ctx, p.db, id)
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}
