// File: database/repository/user/user.go
package userRepo

import (
	"context"

	"fixline/models"
)

// UserRepository is the thin customer store the dispatch core collaborates
// with: load a user to address notifications, persist one on registration.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}
