package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dew-13/solestyle/internal/database"
	"github.com/dew-13/solestyle/internal/models"
)

// OrderFilter narrows order reads. Zero values mean "no constraint"; To is exclusive.
type OrderFilter struct {
	Status models.OrderStatus
	UserID string
	From   *time.Time
	To     *time.Time
}

const orderColumns = `id, order_code, user_id, shape, items, legacy_item, total_price, total, total_profit,
	customer_name, customer_phone, customer_email, shipping_address, payment_method, status,
	shipping_merged, created_at, updated_at`

func scanOrder(row rowScanner) (*models.Order, error) {
	order := &models.Order{}
	var (
		userID                         sql.NullString
		items, legacy, shipping        []byte
		totalPrice, total, totalProfit decimal.NullDecimal
	)

	err := row.Scan(
		&order.ID,
		&order.OrderCode,
		&userID,
		&order.Shape,
		&items,
		&legacy,
		&totalPrice,
		&total,
		&totalProfit,
		&order.CustomerName,
		&order.CustomerPhone,
		&order.CustomerEmail,
		&shipping,
		&order.PaymentMethod,
		&order.Status,
		&order.ShippingMerged,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if userID.Valid {
		order.UserID = &userID.String
	}
	order.TotalPrice = nullable(totalPrice)
	order.Total = nullable(total)
	order.TotalProfit = nullable(totalProfit)

	// Historical documents can be partial; a bad blob degrades to an empty field.
	if len(items) > 0 {
		_ = json.Unmarshal(items, &order.Items)
	}
	if len(legacy) > 0 {
		var li models.LegacyItem
		if json.Unmarshal(legacy, &li) == nil {
			order.Legacy = &li
		}
	}
	if len(shipping) > 0 {
		_ = json.Unmarshal(shipping, &order.ShippingAddress)
	}

	return order, nil
}

func nullable(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func jsonOrNull(v any, present bool) (any, error) {
	if !present {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// NextOrderSeq draws the next order code number from the database sequence.
func NextOrderSeq(ctx context.Context, db database.Querier) (int64, error) {
	var seq int64
	if err := db.QueryRowContext(ctx, `SELECT nextval('order_code_seq')`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next order sequence: %w", err)
	}
	return seq, nil
}

// InsertOrder persists a new order in a single statement and fills in its
// generated id and timestamps.
func InsertOrder(ctx context.Context, db database.Querier, order *models.Order) (int64, error) {
	items, err := jsonOrNull(order.Items, order.Shape == models.ShapeModern)
	if err != nil {
		return 0, fmt.Errorf("encode items: %w", err)
	}
	legacy, err := jsonOrNull(order.Legacy, order.Shape == models.ShapeLegacy && order.Legacy != nil)
	if err != nil {
		return 0, fmt.Errorf("encode legacy item: %w", err)
	}
	shipping, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return 0, fmt.Errorf("encode shipping address: %w", err)
	}

	var userID sql.NullString
	if order.UserID != nil {
		userID = sql.NullString{String: *order.UserID, Valid: true}
	}

	err = db.QueryRowContext(ctx,
		`INSERT INTO orders (order_code, user_id, shape, items, legacy_item, total_price, total, total_profit,
		                     customer_name, customer_phone, customer_email, shipping_address, payment_method,
		                     status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
		 RETURNING id, created_at, updated_at`,
		order.OrderCode, userID, order.Shape, items, legacy,
		nullDecimal(order.TotalPrice), nullDecimal(order.Total), nullDecimal(order.TotalProfit),
		order.CustomerName, order.CustomerPhone, order.CustomerEmail, string(shipping),
		order.PaymentMethod, order.Status,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		err = database.TranslateInsertOrder(err)
		if errors.Is(err, database.ErrOrderCodeConflict) {
			return 0, err
		}
		return 0, fmt.Errorf("insert order: %w", err)
	}

	return order.ID, nil
}

func CountOrders(ctx context.Context, db database.Querier) (int64, error) {
	var total int64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return total, nil
}

func filterClause(f OrderFilter, args []any) (string, []any) {
	var conds []string
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.UserID != "" {
		args = append(args, f.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if f.From != nil {
		args = append(args, *f.From)
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if f.To != nil {
		args = append(args, *f.To)
		conds = append(conds, fmt.Sprintf("created_at < $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " AND " + strings.Join(conds, " AND "), args
}

func FindOrders(ctx context.Context, db database.Querier, f OrderFilter) ([]models.Order, error) {
	where, args := filterClause(f, nil)
	query := `SELECT ` + orderColumns + ` FROM orders WHERE TRUE` + where + ` ORDER BY created_at DESC, id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

func collectOrders(rows *sql.Rows) ([]models.Order, error) {
	orders := []models.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return orders, nil
}

func GetOrder(ctx context.Context, db database.Querier, id int64) (*models.Order, error) {
	order, err := scanOrder(db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

func lockOrder(ctx context.Context, tx *sql.Tx, id int64) (*models.Order, error) {
	order, err := scanOrder(tx.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("lock order: %w", err)
	}
	return order, nil
}

func ListOrdersCursor(ctx context.Context, db database.Querier, f OrderFilter, cursor string, limit int) (*CursorPage[models.Order], error) {
	cursorData, err := DecodeCursor(cursor)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}

	args := []any{cursorData.CreatedAt, cursorData.ID}
	where, args := filterClause(f, args)
	args = append(args, limit+1)

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE (created_at, id) < ($1, $2)` + where + `
		ORDER BY created_at DESC, id DESC
		LIMIT $` + fmt.Sprint(len(args))

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders, err := collectOrders(rows)
	if err != nil {
		return nil, err
	}

	return pageOf(orders, limit), nil
}

func pageOf(orders []models.Order, limit int) *CursorPage[models.Order] {
	hasMore := len(orders) > limit
	if hasMore {
		orders = orders[:limit]
	}

	var nextCursor string
	if hasMore && len(orders) > 0 {
		last := orders[len(orders)-1]
		nextCursor = EncodeCursor(OrderCursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}

	return &CursorPage[models.Order]{
		Items:      orders,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}
}

// UpdateOrderStatus sets any status and records who changed it. Transitions
// are not checked against the previous status.
func UpdateOrderStatus(ctx context.Context, db *sql.DB, id int64, to models.OrderStatus, actorID string) (*models.Order, error) {
	var updated *models.Order

	err := database.WithRetry(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		order, err := lockOrder(ctx, tx, id)
		if err != nil {
			return err
		}
		from := order.Status

		err = tx.QueryRowContext(ctx,
			`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING updated_at`,
			to, id).Scan(&order.UpdatedAt)
		if err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		order.Status = to

		_, err = tx.ExecContext(ctx,
			`INSERT INTO order_status_events (id, order_id, actor_user_id, from_status, to_status, created_at)
			 VALUES ($1, $2, $3, $4, $5, NOW())`,
			uuid.NewString(), id, actorID, from, to)
		if err != nil {
			return fmt.Errorf("record status event: %w", err)
		}

		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func ListStatusEvents(ctx context.Context, db database.Querier, orderID int64) ([]models.StatusEvent, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, order_id, actor_user_id, from_status, to_status, created_at
		 FROM order_status_events
		 WHERE order_id = $1
		 ORDER BY created_at, id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list status events: %w", err)
	}
	defer rows.Close()

	events := []models.StatusEvent{}
	for rows.Next() {
		var ev models.StatusEvent
		if err := rows.Scan(&ev.ID, &ev.OrderID, &ev.ActorUserID, &ev.FromStatus, &ev.ToStatus, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan status event: %w", err)
		}
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return events, nil
}

// MergeShippingAddress fills the empty shipping fields of the user's own order
// from profile. It succeeds once per order.
func MergeShippingAddress(ctx context.Context, db *sql.DB, id int64, userID string, profile models.ShippingAddress) (*models.Order, error) {
	var merged *models.Order

	err := database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		order, err := lockOrder(ctx, tx, id)
		if err != nil {
			return err
		}
		if order.UserID == nil || *order.UserID != userID {
			return database.ErrOrderNotFound
		}
		if order.ShippingMerged {
			return database.ErrShippingMerged
		}

		order.ShippingAddress = order.ShippingAddress.FillFrom(profile)
		shipping, err := json.Marshal(order.ShippingAddress)
		if err != nil {
			return fmt.Errorf("encode shipping address: %w", err)
		}

		err = tx.QueryRowContext(ctx,
			`UPDATE orders SET shipping_address = $1, shipping_merged = TRUE, updated_at = NOW()
			 WHERE id = $2 RETURNING updated_at`,
			string(shipping), id).Scan(&order.UpdatedAt)
		if err != nil {
			return fmt.Errorf("merge shipping address: %w", err)
		}
		order.ShippingMerged = true

		merged = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	return merged, nil
}
