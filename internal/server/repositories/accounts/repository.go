// Package accounts persists account records and their verification state.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/taskforge/internal/server/models"
)

// Repository is the account store used by the services layer.
//
// Lookups return common.ErrorNotFound when no row matches. Save inserts or
// updates by ID and reports a duplicate e-mail as common.ErrAlreadyExists.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	// FindByEmailForUpdate locks the row until the surrounding transaction ends.
	FindByEmailForUpdate(ctx context.Context, email string) (*models.Account, error)
	FindByID(ctx context.Context, id string) (*models.Account, error)
	Save(ctx context.Context, a *models.Account) error
}
