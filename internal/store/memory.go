package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dew-13/solestyle/internal/database"
	"github.com/dew-13/solestyle/internal/models"
)

// Memory is an in-process store with the same method set and error semantics
// as Postgres. Used for local runs and tests.
type Memory struct {
	mu      sync.RWMutex
	seq     int64
	nextID  int64
	catalog map[catalogKey]models.CatalogItem
	orders  map[int64]models.Order
	codes   map[string]int64
	users   map[string]models.User
	events  map[int64][]models.StatusEvent
	now     func() time.Time
}

type catalogKey struct {
	itemType models.ItemType
	id       string
}

func NewMemory() *Memory {
	return &Memory{
		nextID:  1,
		catalog: make(map[catalogKey]models.CatalogItem),
		orders:  make(map[int64]models.Order),
		codes:   make(map[string]int64),
		users:   make(map[string]models.User),
		events:  make(map[int64][]models.StatusEvent),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// clone deep-copies through JSON so callers never share slices or pointers
// with stored records.
func clone[T any](v T) T {
	var out T
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}

func (m *Memory) FindItemByID(ctx context.Context, itemType models.ItemType, id string) (*models.CatalogItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.catalog[catalogKey{itemType, id}]
	if !ok {
		return nil, database.ErrCatalogItemNotFound
	}
	cp := clone(item)
	return &cp, nil
}

func (m *Memory) CreateCatalogItem(ctx context.Context, item *models.CatalogItem) (*models.CatalogItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := clone(*item)
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	cp.CreatedAt = m.now()
	cp.UpdatedAt = cp.CreatedAt
	m.catalog[catalogKey{cp.Type, cp.ID}] = cp
	out := clone(cp)
	return &out, nil
}

func (m *Memory) UpdateCatalogItem(ctx context.Context, item *models.CatalogItem) (*models.CatalogItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := catalogKey{item.Type, item.ID}
	existing, ok := m.catalog[key]
	if !ok {
		return nil, database.ErrCatalogItemNotFound
	}
	cp := clone(*item)
	cp.CreatedAt = existing.CreatedAt
	cp.UpdatedAt = m.now()
	m.catalog[key] = cp
	out := clone(cp)
	return &out, nil
}

func (m *Memory) DeleteCatalogItem(ctx context.Context, itemType models.ItemType, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := catalogKey{itemType, id}
	if _, ok := m.catalog[key]; !ok {
		return database.ErrCatalogItemNotFound
	}
	delete(m.catalog, key)
	return nil
}

func (m *Memory) ListCatalogItems(ctx context.Context, itemType models.ItemType, page, pageSize int) (*OffsetPage[models.CatalogItem], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := []models.CatalogItem{}
	for k, item := range m.catalog {
		if k.itemType == itemType {
			all = append(all, clone(item))
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := int64(len(all))
	start := (page - 1) * pageSize
	if start > len(all) {
		start = len(all)
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}

	return &OffsetPage[models.CatalogItem]{
		Items:      all[start:end],
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

func (m *Memory) NextOrderSeq(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	return m.seq, nil
}

func (m *Memory) InsertOrder(ctx context.Context, order *models.Order) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.codes[order.OrderCode]; taken {
		return 0, database.ErrOrderCodeConflict
	}
	order.ID = m.nextID
	m.nextID++
	order.CreatedAt = m.now()
	order.UpdatedAt = order.CreatedAt
	m.orders[order.ID] = clone(*order)
	m.codes[order.OrderCode] = order.ID
	return order.ID, nil
}

// Seed stores a record as is, keeping its id and timestamps. Used to load
// historical orders, including the legacy shape.
func (m *Memory) Seed(order models.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if order.ID == 0 {
		order.ID = m.nextID
	}
	if order.ID >= m.nextID {
		m.nextID = order.ID + 1
	}
	m.orders[order.ID] = clone(order)
	if order.OrderCode != "" {
		m.codes[order.OrderCode] = order.ID
	}
}

func (m *Memory) CountOrders(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.orders)), nil
}

func (f OrderFilter) matches(o *models.Order) bool {
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if f.UserID != "" && (o.UserID == nil || *o.UserID != f.UserID) {
		return false
	}
	if f.From != nil && o.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && !o.CreatedAt.Before(*f.To) {
		return false
	}
	return true
}

func (m *Memory) sortedOrders(f OrderFilter) []models.Order {
	out := []models.Order{}
	for _, o := range m.orders {
		if f.matches(&o) {
			out = append(out, clone(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (m *Memory) FindOrders(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sortedOrders(f), nil
}

func (m *Memory) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, database.ErrOrderNotFound
	}
	cp := clone(o)
	return &cp, nil
}

func (m *Memory) ListOrdersCursor(ctx context.Context, f OrderFilter, cursor string, limit int) (*CursorPage[models.Order], error) {
	cursorData, err := DecodeCursor(cursor)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var window []models.Order
	for _, o := range m.sortedOrders(f) {
		if cursorData.Before(o.CreatedAt, o.ID) {
			window = append(window, o)
		}
		if len(window) > limit {
			break
		}
	}

	return pageOf(window, limit), nil
}

func (m *Memory) UpdateOrderStatus(ctx context.Context, id int64, to models.OrderStatus, actorID string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, database.ErrOrderNotFound
	}
	from := o.Status
	o.Status = to
	o.UpdatedAt = m.now()
	m.orders[id] = o
	m.events[id] = append(m.events[id], models.StatusEvent{
		ID:          uuid.NewString(),
		OrderID:     id,
		ActorUserID: actorID,
		FromStatus:  from,
		ToStatus:    to,
		CreatedAt:   o.UpdatedAt,
	})
	cp := clone(o)
	return &cp, nil
}

func (m *Memory) ListStatusEvents(ctx context.Context, orderID int64) ([]models.StatusEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.StatusEvent{}, m.events[orderID]...), nil
}

func (m *Memory) MergeShippingAddress(ctx context.Context, id int64, userID string, profile models.ShippingAddress) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok || o.UserID == nil || *o.UserID != userID {
		return nil, database.ErrOrderNotFound
	}
	if o.ShippingMerged {
		return nil, database.ErrShippingMerged
	}
	o.ShippingAddress = o.ShippingAddress.FillFrom(profile)
	o.ShippingMerged = true
	o.UpdatedAt = m.now()
	m.orders[id] = o
	cp := clone(o)
	return &cp, nil
}

func (m *Memory) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := clone(*u)
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	cp.CreatedAt = m.now()
	cp.UpdatedAt = cp.CreatedAt
	m.users[cp.ID] = cp
	out := clone(cp)
	return &out, nil
}

func (m *Memory) GetUser(ctx context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, database.ErrUserNotFound
	}
	cp := clone(u)
	return &cp, nil
}

func (m *Memory) Ping(ctx context.Context) error { return nil }
