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

type distressRepository struct {
	collection   *mongo.Collection
	historyLimit int
}

// NewDistressRepository keeps at most historyLimit entries in each history sequence.
func NewDistressRepository(db *mongo.Database, historyLimit int) interfaces.DistressRepository {
	if historyLimit < 1 {
		historyLimit = utils.DefaultHistoryLimit
	}
	return &distressRepository{
		collection:   db.Collection(database.DistressCollection),
		historyLimit: historyLimit,
	}
}

func (r *distressRepository) Create(ctx context.Context, distress *models.Distress) error {
	now := time.Now()
	distress.ID = primitive.NewObjectID()
	distress.CreatedAt = now
	distress.UpdatedAt = now
	if distress.AudioRecordings == nil {
		distress.AudioRecordings = []models.AudioRecording{}
	}

	_, err := r.collection.InsertOne(ctx, distress)
	if err != nil {
		return fmt.Errorf("failed to create distress: %w", err)
	}

	return nil
}

func (r *distressRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Distress, error) {
	var distress models.Distress
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&distress)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get distress: %w", err)
	}

	return &distress, nil
}

func (r *distressRepository) List(ctx context.Context) ([]*models.Distress, error) {
	return r.find(ctx, bson.M{})
}

func (r *distressRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Distress, error) {
	return r.find(ctx, bson.M{"user": userID})
}

func (r *distressRepository) GetLatestUnresolvedByUser(ctx context.Context, userID primitive.ObjectID) (*models.Distress, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	var distress models.Distress
	err := r.collection.FindOne(ctx, bson.M{"user": userID, "resolved": false}, opts).Decode(&distress)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get latest distress: %w", err)
	}

	return &distress, nil
}

func (r *distressRepository) Update(ctx context.Context, id primitive.ObjectID, update *models.DistressUpdate) (*models.Distress, error) {
	set := bson.M{"updatedAt": time.Now()}
	if update.Message != nil {
		set["message"] = *update.Message
	}
	if update.Resolved != nil {
		set["resolved"] = *update.Resolved
	}
	if update.DroneDeployed != nil {
		set["droneDeployed"] = *update.DroneDeployed
	}

	doc := bson.M{"$set": set}

	push := bson.M{}
	if len(update.Location) > 0 {
		push["location"] = r.prepend(update.Location)
	}
	if len(update.AdditionalDetails) > 0 {
		push["additionalDetails"] = r.prepend(update.AdditionalDetails)
	}
	if len(push) > 0 {
		doc["$push"] = push
	}

	return r.findOneAndUpdate(ctx, bson.M{"_id": id}, doc)
}

func (r *distressRepository) PrependAudioRecording(ctx context.Context, id primitive.ObjectID, recording models.AudioRecording) (*models.Distress, error) {
	doc := bson.M{
		"$set":  bson.M{"updatedAt": time.Now()},
		"$push": bson.M{"audioRecordings": r.prepend([]models.AudioRecording{recording})},
	}

	return r.findOneAndUpdate(ctx, bson.M{"_id": id}, doc)
}

func (r *distressRepository) SetDroneDeployed(ctx context.Context, id primitive.ObjectID) (*models.Distress, error) {
	doc := bson.M{"$set": bson.M{"droneDeployed": true, "updatedAt": time.Now()}}
	return r.findOneAndUpdate(ctx, bson.M{"_id": id}, doc)
}

func (r *distressRepository) Escalate(ctx context.Context, id primitive.ObjectID, escalation models.Escalation) (*models.Distress, error) {
	set := bson.M{
		"escalated.status": true,
		"escalated.by":     escalation.By,
		"updatedAt":        time.Now(),
	}
	if escalation.AdditionalInfo != "" {
		set["escalated.additionalInfo"] = escalation.AdditionalInfo
	}

	filter := bson.M{"_id": id, "escalated.status": bson.M{"$ne": true}}
	distress, err := r.findOneAndUpdate(ctx, filter, bson.M{"$set": set})
	if err == nil {
		return distress, nil
	}
	if !errors.Is(err, utils.ErrRecordNotFound) {
		return nil, err
	}

	// The conditional filter missed: tell an absent alert apart from an escalated one.
	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to check distress: %w", err)
	}
	if count == 0 {
		return nil, utils.ErrRecordNotFound
	}
	return nil, utils.ErrAlreadyEscalated
}

func (r *distressRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete distress: %w", err)
	}
	if result.DeletedCount == 0 {
		return utils.ErrRecordNotFound
	}
	return nil
}

// prepend builds a $push modifier that inserts at the head and trims the tail.
func (r *distressRepository) prepend(items interface{}) bson.M {
	return bson.M{
		"$each":     items,
		"$position": 0,
		"$slice":    r.historyLimit,
	}
}

func (r *distressRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*models.Distress, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var distress models.Distress
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&distress)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to update distress: %w", err)
	}

	return &distress, nil
}

func (r *distressRepository) find(ctx context.Context, filter bson.M) ([]*models.Distress, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list distresses: %w", err)
	}
	defer cursor.Close(ctx)

	distresses := make([]*models.Distress, 0)
	for cursor.Next(ctx) {
		var distress models.Distress
		if err := cursor.Decode(&distress); err != nil {
			return nil, fmt.Errorf("failed to decode distress: %w", err)
		}
		distresses = append(distresses, &distress)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return distresses, nil
}
