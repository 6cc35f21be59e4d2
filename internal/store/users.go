package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dew-13/solestyle/internal/database"
	"github.com/dew-13/solestyle/internal/models"
)

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	var address []byte
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.IsAdmin,
		&address,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(address) > 0 {
		var a models.ShippingAddress
		if json.Unmarshal(address, &a) == nil {
			user.Address = &a
		}
	}
	return user, nil
}

func CreateUser(ctx context.Context, db database.Querier, u *models.User) (*models.User, error) {
	id := u.ID
	if id == "" {
		id = uuid.NewString()
	}

	var address any
	if u.Address != nil {
		data, err := json.Marshal(u.Address)
		if err != nil {
			return nil, fmt.Errorf("encode address: %w", err)
		}
		address = string(data)
	}

	query := `
		INSERT INTO users (id, email, name, is_admin, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, email, name, is_admin, address, created_at, updated_at`

	user, err := scanUser(db.QueryRowContext(ctx, query, id, u.Email, u.Name, u.IsAdmin, address))
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

func GetUser(ctx context.Context, db database.Querier, id string) (*models.User, error) {
	query := `
		SELECT id, email, name, is_admin, address, created_at, updated_at
		FROM users
		WHERE id = $1`

	user, err := scanUser(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return user, nil
}
