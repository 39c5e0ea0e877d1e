package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"distress-server/internal/models"
	"distress-server/internal/repositories/interfaces"
	"distress-server/internal/utils"
	"distress-server/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type userRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) interfaces.UserRepository {
	return &userRepository{
		collection: db.Collection(database.UsersCollection),
	}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.EmergencyContacts == nil {
		user.EmergencyContacts = []models.EmergencyContact{}
	}

	_, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("failed to create user: %w", utils.ErrDuplicateKey)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *userRepository) List(ctx context.Context) ([]*models.User, error) {
	return r.find(ctx, bson.M{})
}

func (r *userRepository) ListByRole(ctx context.Context, role models.Role) ([]*models.User, error) {
	return r.find(ctx, bson.M{"role": role})
}

func (r *userRepository) Update(ctx context.Context, id primitive.ObjectID, update *models.UserUpdate) (*models.User, error) {
	set := bson.M{"updatedAt": time.Now()}
	if update.FullName != nil {
		set["fullName"] = *update.FullName
	}
	if update.Email != nil {
		set["email"] = *update.Email
	}
	if update.Password != nil {
		set["password"] = *update.Password
	}
	if update.PhoneNumber != nil {
		set["phoneNumber"] = *update.PhoneNumber
	}
	if update.HomeAddress != nil {
		set["homeAddress"] = *update.HomeAddress
	}
	if update.EmergencyContacts != nil {
		set["emergencyContacts"] = *update.EmergencyContacts
	}
	if update.Role != nil {
		set["role"] = *update.Role
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.ErrRecordNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("failed to update user: %w", utils.ErrDuplicateKey)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return &user, nil
}

// Delete removes the user only. Alerts owned by the user are left in place.
func (r *userRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.DeletedCount == 0 {
		return utils.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

func (r *userRepository) find(ctx context.Context, filter bson.M) ([]*models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer cursor.Close(ctx)

	users := make([]*models.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}

	return users, nil
}
