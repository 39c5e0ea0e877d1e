package services

import (
	"distress-server/internal/models"
	"distress-server/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CanAccess reports whether identity may read or mutate alert: admins always, otherwise only the owner.
func CanAccess(identity *models.Identity, alert *models.Distress) bool {
	if identity == nil || alert == nil {
		return false
	}
	return identity.IsAdmin() || identity.SubjectID == alert.UserID
}

func requireIdentity(identity *models.Identity) error {
	if identity == nil || identity.SubjectID.IsZero() {
		return utils.NewUnauthenticatedError(utils.ErrMissingToken)
	}
	return nil
}

func requireAdmin(identity *models.Identity) error {
	if err := requireIdentity(identity); err != nil {
		return err
	}
	if !identity.IsAdmin() {
		return utils.NewForbiddenError(utils.ErrForbidden)
	}
	return nil
}

func requireSelfOrAdmin(identity *models.Identity, userID primitive.ObjectID) error {
	if err := requireIdentity(identity); err != nil {
		return err
	}
	if !identity.IsAdmin() && identity.SubjectID != userID {
		return utils.NewForbiddenError(utils.ErrForbidden)
	}
	return nil
}

func requireAccess(identity *models.Identity, alert *models.Distress) error {
	if err := requireIdentity(identity); err != nil {
		return err
	}
	if !CanAccess(identity, alert) {
		return utils.NewForbiddenError(utils.ErrForbidden)
	}
	return nil
}
