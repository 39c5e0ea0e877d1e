package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"distress-server/internal/config"
	"distress-server/internal/metrics"
	"distress-server/internal/models"
	"distress-server/internal/repositories/interfaces"
	"distress-server/internal/utils"
	"distress-server/internal/validators"
	"distress-server/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RealtimeNotifier pushes events to connected websocket sessions.
type RealtimeNotifier interface {
	NotifyAdmins(event string, payload interface{})
	SendToUser(userID primitive.ObjectID, event string, payload interface{})
}

type DistressService interface {
	Create(ctx context.Context, identity *models.Identity, request *validators.CreateDistressRequest) (*models.Distress, error)
	Get(ctx context.Context, identity *models.Identity, id primitive.ObjectID) (*models.Distress, error)
	List(ctx context.Context, identity *models.Identity) ([]*models.Distress, error)
	ListByUser(ctx context.Context, identity *models.Identity, userID primitive.ObjectID) ([]*models.Distress, error)
	Update(ctx context.Context, identity *models.Identity, id primitive.ObjectID, request *validators.UpdateDistressRequest) (*models.Distress, error)
	Delete(ctx context.Context, identity *models.Identity, id primitive.ObjectID) error
	// Escalate needs no identity. Anyone holding the alert id may escalate it once.
	Escalate(ctx context.Context, id primitive.ObjectID, request *validators.EscalateRequest) (*models.Distress, error)
	// Wait blocks until detached notification fan-outs have finished.
	Wait()
}

type distressService struct {
	distressRepo interfaces.DistressRepository
	userRepo     interfaces.UserRepository
	notifier     NotificationService
	realtime     RealtimeNotifier
	config       *config.NotificationConfig
	logger       *logger.Logger
	inflight     sync.WaitGroup
	now          func() time.Time
}

func NewDistressService(
	distressRepo interfaces.DistressRepository,
	userRepo interfaces.UserRepository,
	notifier NotificationService,
	realtime RealtimeNotifier,
	cfg *config.NotificationConfig,
	log *logger.Logger,
) DistressService {
	return &distressService{
		distressRepo: distressRepo,
		userRepo:     userRepo,
		notifier:     notifier,
		realtime:     realtime,
		config:       cfg,
		logger:       log,
		now:          time.Now,
	}
}

func (s *distressService) Create(ctx context.Context, identity *models.Identity, request *validators.CreateDistressRequest) (*models.Distress, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	if err := validators.ValidateCreateDistress(request).AsAppError(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, identity.SubjectID)
	if err != nil {
		if errors.Is(err, utils.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError(utils.ErrUserNotFound)
		}
		return nil, utils.NewInternalError("failed to load user", err)
	}

	alert := &models.Distress{
		UserID:            user.ID,
		Message:           request.Message,
		Location:          validators.ToLocationSamples(request.Location),
		AdditionalDetails: validators.ToTelemetrySamples(request.AdditionalDetails, s.now()),
		Escalated:         models.Escalation{},
		AudioRecordings:   []models.AudioRecording{},
	}

	if err := s.distressRepo.Create(ctx, alert); err != nil {
		return nil, utils.NewInternalError("failed to create distress alert", err)
	}

	metrics.RecordAlertCreated()
	s.logger.WithContext(ctx).LogDistressEvent(alert.ID, "created", logger.Fields{
		"user_id":  user.ID.Hex(),
		"contacts": len(user.EmergencyContacts),
	})

	s.dispatch(ctx, alert, user)

	return alert, nil
}

// dispatch runs the fan-out inline in sync mode. In async mode it is detached from the request and bounded
// by the notification timeout.
func (s *distressService) dispatch(ctx context.Context, alert *models.Distress, user *models.User) {
	if s.config.Mode != config.NotificationModeAsync {
		s.notifier.Notify(ctx, alert, user)
		return
	}

	requestID := logger.RequestIDFromContext(ctx)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		bg, cancel := context.WithTimeout(logger.ContextWithRequestID(context.Background(), requestID), s.config.Timeout)
		defer cancel()

		s.notifier.Notify(bg, alert, user)
	}()
}

func (s *distressService) Wait() {
	s.inflight.Wait()
}

func (s *distressService) Get(ctx context.Context, identity *models.Identity, id primitive.ObjectID) (*models.Distress, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}

	alert, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireAccess(identity, alert); err != nil {
		return nil, err
	}
	return alert, nil
}

func (s *distressService) List(ctx context.Context, identity *models.Identity) ([]*models.Distress, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, err
	}

	alerts, err := s.distressRepo.List(ctx)
	if err != nil {
		return nil, utils.NewInternalError("failed to list distress alerts", err)
	}
	return alerts, nil
}

func (s *distressService) ListByUser(ctx context.Context, identity *models.Identity, userID primitive.ObjectID) ([]*models.Distress, error) {
	if err := requireSelfOrAdmin(identity, userID); err != nil {
		return nil, err
	}

	alerts, err := s.distressRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, utils.NewInternalError("failed to list distress alerts", err)
	}
	return alerts, nil
}

func (s *distressService) Update(ctx context.Context, identity *models.Identity, id primitive.ObjectID, request *validators.UpdateDistressRequest) (*models.Distress, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}

	alert, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireAccess(identity, alert); err != nil {
		return nil, err
	}

	if err := validators.ValidateUpdateDistress(request).AsAppError(); err != nil {
		return nil, err
	}

	update := request.ToUpdate(s.now())
	if update.IsEmpty() {
		return alert, nil
	}

	updated, err := s.distressRepo.Update(ctx, id, update)
	if err != nil {
		if errors.Is(err, utils.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError(utils.ErrDistressNotFound)
		}
		return nil, utils.NewInternalError("failed to update distress alert", err)
	}

	s.logger.WithContext(ctx).LogDistressEvent(id, "updated", logger.Fields{
		"locations": len(update.Location),
		"details":   len(update.AdditionalDetails),
	})
	return updated, nil
}

func (s *distressService) Delete(ctx context.Context, identity *models.Identity, id primitive.ObjectID) error {
	if err := requireIdentity(identity); err != nil {
		return err
	}

	alert, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := requireAccess(identity, alert); err != nil {
		return err
	}

	if err := s.distressRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, utils.ErrRecordNotFound) {
			return utils.NewNotFoundError(utils.ErrDistressNotFound)
		}
		return utils.NewInternalError("failed to delete distress alert", err)
	}

	s.logger.WithContext(ctx).LogDistressEvent(id, "deleted", nil)
	return nil
}

func (s *distressService) Escalate(ctx context.Context, id primitive.ObjectID, request *validators.EscalateRequest) (*models.Distress, error) {
	if err := validators.ValidateEscalate(request).AsAppError(); err != nil {
		return nil, err
	}

	escalation := models.Escalation{
		Status: true,
		By: models.EscalatedBy{
			Email:       request.Email,
			PhoneNumber: request.PhoneNumber,
		},
		AdditionalInfo: request.AdditionalInfo,
	}

	alert, err := s.distressRepo.Escalate(ctx, id, escalation)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrRecordNotFound):
			metrics.RecordEscalation("not_found")
			return nil, utils.NewNotFoundError(utils.ErrDistressNotFound)
		case errors.Is(err, utils.ErrAlreadyEscalated):
			metrics.RecordEscalation("already_escalated")
			return nil, utils.NewConflictError(utils.ErrAlreadyEscalatedMsg, err)
		}
		metrics.RecordEscalation("error")
		return nil, utils.NewInternalError("failed to escalate distress alert", err)
	}

	metrics.RecordEscalation("escalated")
	s.logger.WithContext(ctx).LogDistressEvent(id, "escalated", logger.Fields{
		"by_email": utils.MaskEmail(escalation.By.Email),
		"by_phone": utils.MaskPhone(escalation.By.PhoneNumber),
	})

	// The owner's own sessions learn that a bystander escalated.
	if s.realtime != nil {
		s.realtime.NotifyAdmins("escalated", alert)
		s.realtime.SendToUser(alert.UserID, "escalated", alert)
	}

	return alert, nil
}

func (s *distressService) load(ctx context.Context, id primitive.ObjectID) (*models.Distress, error) {
	alert, err := s.distressRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError(utils.ErrDistressNotFound)
		}
		return nil, utils.NewInternalError("failed to load distress alert", err)
	}
	return alert, nil
}
