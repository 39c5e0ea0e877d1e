// Package memory holds process-local repositories used by tests and by DATABASE_DRIVER=memory.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"distress-server/internal/models"
	"distress-server/internal/repositories/interfaces"
	"distress-server/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type distressRepository struct {
	mu           sync.RWMutex
	items        map[primitive.ObjectID]*models.Distress
	historyLimit int
}

func NewDistressRepository(historyLimit int) interfaces.DistressRepository {
	if historyLimit < 1 {
		historyLimit = utils.DefaultHistoryLimit
	}
	return &distressRepository{
		items:        make(map[primitive.ObjectID]*models.Distress),
		historyLimit: historyLimit,
	}
}

func (r *distressRepository) Create(ctx context.Context, distress *models.Distress) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	distress.ID = primitive.NewObjectID()
	distress.CreatedAt = now
	distress.UpdatedAt = now
	if distress.AudioRecordings == nil {
		distress.AudioRecordings = []models.AudioRecording{}
	}

	r.items[distress.ID] = cloneDistress(distress)
	return nil
}

func (r *distressRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Distress, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	distress, ok := r.items[id]
	if !ok {
		return nil, utils.ErrRecordNotFound
	}
	return cloneDistress(distress), nil
}

func (r *distressRepository) List(ctx context.Context) ([]*models.Distress, error) {
	return r.filter(func(*models.Distress) bool { return true }), nil
}

func (r *distressRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Distress, error) {
	return r.filter(func(d *models.Distress) bool { return d.UserID == userID }), nil
}

func (r *distressRepository) GetLatestUnresolvedByUser(ctx context.Context, userID primitive.ObjectID) (*models.Distress, error) {
	matches := r.filter(func(d *models.Distress) bool { return d.UserID == userID && !d.Resolved })
	if len(matches) == 0 {
		return nil, utils.ErrRecordNotFound
	}
	return matches[0], nil
}

func (r *distressRepository) Update(ctx context.Context, id primitive.ObjectID, update *models.DistressUpdate) (*models.Distress, error) {
	return r.mutate(id, func(d *models.Distress) error {
		if update.Message != nil {
			d.Message = *update.Message
		}
		if update.Resolved != nil {
			d.Resolved = *update.Resolved
		}
		if update.DroneDeployed != nil {
			d.DroneDeployed = *update.DroneDeployed
		}
		if len(update.Location) > 0 {
			d.Location = prepend(update.Location, d.Location, r.historyLimit)
		}
		if len(update.AdditionalDetails) > 0 {
			d.AdditionalDetails = prepend(update.AdditionalDetails, d.AdditionalDetails, r.historyLimit)
		}
		return nil
	})
}

func (r *distressRepository) PrependAudioRecording(ctx context.Context, id primitive.ObjectID, recording models.AudioRecording) (*models.Distress, error) {
	return r.mutate(id, func(d *models.Distress) error {
		d.AudioRecordings = prepend([]models.AudioRecording{recording}, d.AudioRecordings, r.historyLimit)
		return nil
	})
}

func (r *distressRepository) SetDroneDeployed(ctx context.Context, id primitive.ObjectID) (*models.Distress, error) {
	return r.mutate(id, func(d *models.Distress) error {
		d.DroneDeployed = true
		return nil
	})
}

func (r *distressRepository) Escalate(ctx context.Context, id primitive.ObjectID, escalation models.Escalation) (*models.Distress, error) {
	return r.mutate(id, func(d *models.Distress) error {
		if d.Escalated.Status {
			return utils.ErrAlreadyEscalated
		}
		d.Escalated.Status = true
		d.Escalated.By = escalation.By
		if escalation.AdditionalInfo != "" {
			d.Escalated.AdditionalInfo = escalation.AdditionalInfo
		}
		return nil
	})
}

func (r *distressRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return utils.ErrRecordNotFound
	}
	delete(r.items, id)
	return nil
}

// mutate applies fn to the stored document under the write lock. The document is untouched when fn fails.
func (r *distressRepository) mutate(id primitive.ObjectID, fn func(*models.Distress) error) (*models.Distress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.items[id]
	if !ok {
		return nil, utils.ErrRecordNotFound
	}

	working := cloneDistress(stored)
	if err := fn(working); err != nil {
		return nil, err
	}
	working.UpdatedAt = time.Now()
	r.items[id] = working

	return cloneDistress(working), nil
}

func (r *distressRepository) filter(match func(*models.Distress) bool) []*models.Distress {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.Distress, 0)
	for _, distress := range r.items {
		if match(distress) {
			result = append(result, cloneDistress(distress))
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID.Hex() > result[j].ID.Hex()
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result
}

func prepend[T any](head, tail []T, limit int) []T {
	merged := make([]T, 0, len(head)+len(tail))
	merged = append(merged, head...)
	merged = append(merged, tail...)
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

func cloneDistress(d *models.Distress) *models.Distress {
	clone := *d
	clone.Location = append([]models.LocationSample(nil), d.Location...)
	clone.AdditionalDetails = append([]models.TelemetrySample(nil), d.AdditionalDetails...)
	clone.AudioRecordings = append([]models.AudioRecording{}, d.AudioRecordings...)
	return &clone
}
