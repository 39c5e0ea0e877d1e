package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"distress-server/internal/models"
	"distress-server/internal/repositories/interfaces"
	"distress-server/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userRepository struct {
	mu    sync.RWMutex
	items map[primitive.ObjectID]*models.User
}

func NewUserRepository() interfaces.UserRepository {
	return &userRepository{
		items: make(map[primitive.ObjectID]*models.User),
	}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conflicts(primitive.NilObjectID, user.Email, user.PhoneNumber) {
		return fmt.Errorf("failed to create user: %w", utils.ErrDuplicateKey)
	}

	now := time.Now()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.EmergencyContacts == nil {
		user.EmergencyContacts = []models.EmergencyContact{}
	}

	r.items[user.ID] = cloneUser(user)
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.items[id]
	if !ok {
		return nil, utils.ErrRecordNotFound
	}
	return cloneUser(user), nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.items {
		if user.Email == email {
			return cloneUser(user), nil
		}
	}
	return nil, utils.ErrRecordNotFound
}

func (r *userRepository) List(ctx context.Context) ([]*models.User, error) {
	return r.filter(func(*models.User) bool { return true }), nil
}

func (r *userRepository) ListByRole(ctx context.Context, role models.Role) ([]*models.User, error) {
	return r.filter(func(u *models.User) bool { return u.Role == role }), nil
}

func (r *userRepository) Update(ctx context.Context, id primitive.ObjectID, update *models.UserUpdate) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.items[id]
	if !ok {
		return nil, utils.ErrRecordNotFound
	}

	user := cloneUser(stored)
	if update.FullName != nil {
		user.FullName = *update.FullName
	}
	if update.Email != nil {
		user.Email = *update.Email
	}
	if update.Password != nil {
		user.Password = *update.Password
	}
	if update.PhoneNumber != nil {
		user.PhoneNumber = *update.PhoneNumber
	}
	if update.HomeAddress != nil {
		user.HomeAddress = *update.HomeAddress
	}
	if update.EmergencyContacts != nil {
		user.EmergencyContacts = append([]models.EmergencyContact{}, (*update.EmergencyContacts)...)
	}
	if update.Role != nil {
		user.Role = *update.Role
	}

	if r.conflicts(id, user.Email, user.PhoneNumber) {
		return nil, fmt.Errorf("failed to update user: %w", utils.ErrDuplicateKey)
	}

	user.UpdatedAt = time.Now()
	r.items[id] = user
	return cloneUser(user), nil
}

func (r *userRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return utils.ErrRecordNotFound
	}
	delete(r.items, id)
	return nil
}

// conflicts reports whether another user already holds email or phone. Caller holds the lock.
func (r *userRepository) conflicts(self primitive.ObjectID, email, phone string) bool {
	for id, user := range r.items {
		if id == self {
			continue
		}
		if (email != "" && user.Email == email) || (phone != "" && user.PhoneNumber == phone) {
			return true
		}
	}
	return false
}

func (r *userRepository) filter(match func(*models.User) bool) []*models.User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.User, 0)
	for _, user := range r.items {
		if match(user) {
			result = append(result, cloneUser(user))
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result
}

func cloneUser(u *models.User) *models.User {
	clone := *u
	clone.EmergencyContacts = make([]models.EmergencyContact, len(u.EmergencyContacts))
	for i, contact := range u.EmergencyContacts {
		contact.Emails = append([]string(nil), contact.Emails...)
		contact.PhoneNumbers = append([]models.PhoneNumber(nil), contact.PhoneNumbers...)
		clone.EmergencyContacts[i] = contact
	}
	return &clone
}
