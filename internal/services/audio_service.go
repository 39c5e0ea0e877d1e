package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"distress-server/internal/metrics"
	"distress-server/internal/models"
	"distress-server/internal/repositories/interfaces"
	"distress-server/internal/utils"
	"distress-server/pkg/audio"
	"distress-server/pkg/logger"
	"distress-server/pkg/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AudioService interface {
	SaveRecording(ctx context.Context, userID primitive.ObjectID, recording []byte) (*SavedRecording, error)
}

// SavedRecording is the payload of the websocket "saved" event.
type SavedRecording struct {
	URL        string             `json:"url"`
	DistressID primitive.ObjectID `json:"distressId"`
}

type audioService struct {
	distressRepo interfaces.DistressRepository
	storage      storage.StorageProvider
	format       audio.Format
	maxSize      int
	logger       *logger.Logger
}

func NewAudioService(distressRepo interfaces.DistressRepository, store storage.StorageProvider, log *logger.Logger) AudioService {
	return &audioService{
		distressRepo: distressRepo,
		storage:      store,
		format:       audio.DefaultFormat(),
		maxSize:      utils.MaxAudioSize,
		logger:       log,
	}
}

// SaveRecording stores the recording as WAV and attaches its URL to the user's latest unresolved alert.
// The alert is looked up first so nothing is uploaded for users without an active alert.
func (s *audioService) SaveRecording(ctx context.Context, userID primitive.ObjectID, recording []byte) (*SavedRecording, error) {
	if len(recording) == 0 {
		return nil, utils.NewValidationError("recording is empty", nil)
	}
	if len(recording) > s.maxSize {
		return nil, utils.NewValidationError("recording is too large", nil)
	}

	alert, err := s.distressRepo.GetLatestUnresolvedByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, utils.ErrRecordNotFound) {
			metrics.RecordAudioRecording("no_active_alert")
			return nil, utils.NewNotFoundError(utils.ErrNoActiveDistress)
		}
		return nil, utils.NewInternalError("failed to find active distress alert", err)
	}

	wav := audio.EnsureWAV(recording, s.format)
	key := fmt.Sprintf("%s/%s/%s.wav", utils.AudioKeyPrefix, userID.Hex(), uuid.NewString())

	uploaded, err := s.storage.Upload(ctx, &storage.UploadRequest{
		Key:          key,
		Reader:       bytes.NewReader(wav),
		ContentType:  "audio/wav",
		Size:         int64(len(wav)),
		CacheControl: "private, max-age=31536000",
		Metadata: map[string]string{
			"user-id":     userID.Hex(),
			"distress-id": alert.ID.Hex(),
		},
	})
	if err != nil {
		metrics.RecordAudioRecording("upload_failed")
		return nil, utils.NewDependencyError(utils.ErrAudioUploadFailed, err)
	}

	_, err = s.distressRepo.PrependAudioRecording(ctx, alert.ID, models.AudioRecording{
		URL:       uploaded.URL,
		TimeAdded: time.Now(),
	})
	if err != nil {
		metrics.RecordAudioRecording("attach_failed")
		if delErr := s.storage.Delete(ctx, uploaded.Key); delErr != nil {
			s.logger.WithContext(ctx).WithError(delErr).WithField("key", uploaded.Key).Warn("Failed to remove orphaned recording")
		}
		if errors.Is(err, utils.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError(utils.ErrDistressNotFound)
		}
		return nil, utils.NewInternalError("failed to attach recording", err)
	}

	metrics.RecordAudioRecording("saved")
	s.logger.WithContext(ctx).LogDistressEvent(alert.ID, "audio_saved", logger.Fields{
		"user_id": userID.Hex(),
		"bytes":   len(wav),
		"storage": s.storage.Name(),
	})

	return &SavedRecording{URL: uploaded.URL, DistressID: alert.ID}, nil
}
