package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dew-13/solestyle/internal/database"
	"github.com/dew-13/solestyle/internal/models"
)

type UserStore interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

var ErrNotAdmin = errors.New("admin privileges required")

// Resolver turns bearer credentials into users.
type Resolver struct {
	Verifier *Verifier
	Users    UserStore
}

// ResolveUserID returns the user id for credential or an error when it is
// missing, invalid or names an unknown user.
func (r *Resolver) ResolveUserID(ctx context.Context, credential string) (string, error) {
	user, err := r.ResolveUser(ctx, credential)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

func (r *Resolver) ResolveUser(ctx context.Context, credential string) (*models.User, error) {
	userID, err := r.Verifier.Verify(credential)
	if err != nil {
		return nil, err
	}
	user, err := r.Users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: unknown user", ErrInvalidToken)
		}
		return nil, err
	}
	return user, nil
}

func (r *Resolver) ResolveAdmin(ctx context.Context, credential string) (*models.User, error) {
	user, err := r.ResolveUser(ctx, credential)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin {
		return nil, ErrNotAdmin
	}
	return user, nil
}
