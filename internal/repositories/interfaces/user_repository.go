package interfaces

import (
	"context"

	"distress-server/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRepository persists users. Lookups return utils.ErrRecordNotFound when nothing matches and
// writes return utils.ErrDuplicateKey when email or phone number is taken.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	ListByRole(ctx context.Context, role models.Role) ([]*models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, update *models.UserUpdate) (*models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}
