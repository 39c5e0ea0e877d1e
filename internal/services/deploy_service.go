package services

import (
	"context"
	"errors"

	"distress-server/internal/metrics"
	"distress-server/internal/models"
	"distress-server/internal/repositories/interfaces"
	"distress-server/internal/utils"
	"distress-server/internal/validators"
	"distress-server/pkg/logger"
	"distress-server/pkg/pubsub"
)

type DeployService interface {
	Deploy(ctx context.Context, identity *models.Identity, request *validators.DeployRequest) (*DeployResult, error)
}

type DeployResult struct {
	Message  string           `json:"message"`
	Topic    string           `json:"topic"`
	Distress *models.Distress `json:"distress"`
}

type deployService struct {
	distressRepo interfaces.DistressRepository
	publisher    pubsub.Publisher
	topic        string
	message      string
	logger       *logger.Logger
}

func NewDeployService(distressRepo interfaces.DistressRepository, publisher pubsub.Publisher, topic, message string, log *logger.Logger) DeployService {
	return &deployService{
		distressRepo: distressRepo,
		publisher:    publisher,
		topic:        topic,
		message:      message,
		logger:       log,
	}
}

// Deploy publishes the drone signal and then flags the alert. The publish is not rolled back when the
// flag update fails; the caller gets a partial failure saying the signal went out.
func (s *deployService) Deploy(ctx context.Context, identity *models.Identity, request *validators.DeployRequest) (*DeployResult, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, err
	}
	if err := validators.ValidateStruct(request).AsAppError(); err != nil {
		return nil, err
	}

	id, err := validators.ParseObjectID("distressId", request.DistressID)
	if err != nil {
		return nil, err
	}

	if _, err := s.distressRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, utils.ErrRecordNotFound) {
			metrics.RecordDroneDeploy("not_found")
			return nil, utils.NewNotFoundError(utils.ErrDistressNotFound)
		}
		return nil, utils.NewInternalError("failed to load distress alert", err)
	}

	log := s.logger.WithContext(ctx).WithDistressID(id).WithFields(logger.Fields{
		"topic":     s.topic,
		"publisher": s.publisher.Name(),
	})

	if err := s.publisher.Publish(ctx, s.topic, []byte(s.message)); err != nil {
		metrics.RecordDroneDeploy("publish_failed")
		log.WithError(err).Error("Failed to publish drone deploy signal")
		return nil, utils.NewDependencyError(utils.ErrDeployPublishFailed, err)
	}

	alert, err := s.distressRepo.SetDroneDeployed(ctx, id)
	if err != nil {
		metrics.RecordDroneDeploy("partial_failure")
		log.WithError(err).Error("Drone signal sent but alert flag not updated")
		return nil, utils.NewPartialFailureError(utils.ErrDeployPartialFailure, err)
	}

	metrics.RecordDroneDeploy("deployed")
	log.WithField("admin_id", identity.SubjectID.Hex()).Info("Drone deploy signal sent")

	return &DeployResult{
		Message:  "Drone deployment signal sent",
		Topic:    s.topic,
		Distress: alert,
	}, nil
}
