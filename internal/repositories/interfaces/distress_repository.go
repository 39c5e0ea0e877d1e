package interfaces

import (
	"context"

	"distress-server/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DistressRepository persists distress alerts. Every mutation is applied to a single document
// atomically and returns the document as it is after the write.
type DistressRepository interface {
	Create(ctx context.Context, distress *models.Distress) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Distress, error)
	List(ctx context.Context) ([]*models.Distress, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Distress, error)
	GetLatestUnresolvedByUser(ctx context.Context, userID primitive.ObjectID) (*models.Distress, error)

	// Update sets scalar fields and prepends samples, keeping the newest entries.
	Update(ctx context.Context, id primitive.ObjectID, update *models.DistressUpdate) (*models.Distress, error)
	PrependAudioRecording(ctx context.Context, id primitive.ObjectID, recording models.AudioRecording) (*models.Distress, error)
	SetDroneDeployed(ctx context.Context, id primitive.ObjectID) (*models.Distress, error)

	// Escalate flips escalated.status only while it is still false. It returns
	// utils.ErrAlreadyEscalated when the alert exists but was escalated before.
	Escalate(ctx context.Context, id primitive.ObjectID, escalation models.Escalation) (*models.Distress, error)

	Delete(ctx context.Context, id primitive.ObjectID) error
}
