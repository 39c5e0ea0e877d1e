package services

import (
	"context"
	"errors"
	"fmt"

	"distress-server/internal/config"
	"distress-server/internal/models"
	"distress-server/internal/repositories/interfaces"
	"distress-server/internal/utils"
	"distress-server/internal/validators"
	"distress-server/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserService interface {
	List(ctx context.Context, identity *models.Identity) ([]*models.User, error)
	ListByRole(ctx context.Context, identity *models.Identity, role string) ([]*models.User, error)
	Get(ctx context.Context, identity *models.Identity, id primitive.ObjectID) (*models.User, error)
	Create(ctx context.Context, identity *models.Identity, request *validators.RegisterRequest) (*AuthResult, error)
	Update(ctx context.Context, identity *models.Identity, id primitive.ObjectID, request *validators.UserUpdateRequest) (*models.User, error)
	HasEmergencyContacts(ctx context.Context, identity *models.Identity, id primitive.ObjectID) (bool, error)
	Delete(ctx context.Context, identity *models.Identity, id primitive.ObjectID) error
}

type userService struct {
	userRepo interfaces.UserRepository
	tokens   *utils.TokenIssuer
	security *config.SecurityConfig
	logger   *logger.Logger
}

func NewUserService(userRepo interfaces.UserRepository, tokens *utils.TokenIssuer, security *config.SecurityConfig, log *logger.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		tokens:   tokens,
		security: security,
		logger:   log,
	}
}

func (s *userService) List(ctx context.Context, identity *models.Identity) ([]*models.User, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, err
	}

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, utils.NewInternalError("failed to list users", err)
	}
	return users, nil
}

func (s *userService) ListByRole(ctx context.Context, identity *models.Identity, role string) ([]*models.User, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, err
	}
	if !models.Role(role).IsValid() {
		return nil, utils.NewValidationError(utils.ErrValidationFailed, map[string]string{"role": "role must be one of user, admin"})
	}

	users, err := s.userRepo.ListByRole(ctx, models.Role(role))
	if err != nil {
		return nil, utils.NewInternalError("failed to list users", err)
	}
	if len(users) == 0 {
		return nil, utils.NewNotFoundError(utils.ErrNoUsersWithRole)
	}
	return users, nil
}

func (s *userService) Get(ctx context.Context, identity *models.Identity, id primitive.ObjectID) (*models.User, error) {
	if err := requireSelfOrAdmin(identity, id); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

// Create is the admin path. Unlike registration it may create admins.
func (s *userService) Create(ctx context.Context, identity *models.Identity, request *validators.RegisterRequest) (*AuthResult, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, err
	}
	if err := validators.ValidateRegister(request, s.security.PasswordMinLength).AsAppError(); err != nil {
		return nil, err
	}

	role := models.RoleUser
	if request.Role != "" {
		role = models.Role(request.Role)
	}

	user, err := createUser(ctx, s.userRepo, request, role, s.security.BcryptCost)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Generate(user.ID.Hex(), string(user.Role), s.security.JWTSignupTokenTTL)
	if err != nil {
		return nil, utils.NewInternalError("failed to issue token", err)
	}

	s.logger.LogUserAction(identity.SubjectID, "user_created", logger.Fields{"created_user_id": user.ID.Hex(), "role": user.Role})

	return &AuthResult{ID: user.ID, Token: token, User: user}, nil
}

func (s *userService) Update(ctx context.Context, identity *models.Identity, id primitive.ObjectID, request *validators.UserUpdateRequest) (*models.User, error) {
	if err := requireSelfOrAdmin(identity, id); err != nil {
		return nil, err
	}
	if request.Role != nil && !identity.IsAdmin() {
		return nil, utils.NewForbiddenError(utils.ErrRoleChangeNotAllowed)
	}
	if err := validators.ValidateUserUpdate(request, s.security.PasswordMinLength).AsAppError(); err != nil {
		return nil, err
	}

	update := &models.UserUpdate{
		FullName:    request.FullName,
		Email:       request.Email,
		PhoneNumber: request.PhoneNumber,
		HomeAddress: request.HomeAddress,
	}
	if request.Password != nil {
		hashed, err := utils.HashPassword(*request.Password, s.security.BcryptCost)
		if err != nil {
			return nil, utils.NewInternalError("failed to hash password", err)
		}
		update.Password = &hashed
	}
	if request.EmergencyContacts != nil {
		contacts := validators.ToEmergencyContacts(*request.EmergencyContacts)
		update.EmergencyContacts = &contacts
	}
	if request.Role != nil {
		role := models.Role(*request.Role)
		update.Role = &role
	}

	user, err := s.userRepo.Update(ctx, id, update)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrRecordNotFound):
			return nil, utils.NewNotFoundError(utils.ErrUserNotFound)
		case errors.Is(err, utils.ErrDuplicateKey):
			return nil, duplicateUserError(ctx, s.userRepo, request.Email, id, err)
		}
		return nil, utils.NewInternalError("failed to update user", err)
	}

	s.logger.LogUserAction(identity.SubjectID, "user_updated", logger.Fields{"target_user_id": id.Hex()})
	return user, nil
}

func (s *userService) HasEmergencyContacts(ctx context.Context, identity *models.Identity, id primitive.ObjectID) (bool, error) {
	if err := requireSelfOrAdmin(identity, id); err != nil {
		return false, err
	}

	user, err := s.load(ctx, id)
	if err != nil {
		return false, err
	}
	return len(user.EmergencyContacts) > 0, nil
}

// Delete removes the account only. The user's alerts stay behind with a dangling owner.
func (s *userService) Delete(ctx context.Context, identity *models.Identity, id primitive.ObjectID) error {
	if err := requireAdmin(identity); err != nil {
		return err
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, utils.ErrRecordNotFound) {
			return utils.NewNotFoundError(utils.ErrUserNotFound)
		}
		return utils.NewInternalError("failed to delete user", err)
	}

	s.logger.LogUserAction(identity.SubjectID, "user_deleted", logger.Fields{"target_user_id": id.Hex()})
	return nil
}

func (s *userService) load(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError(utils.ErrUserNotFound)
		}
		return nil, utils.NewInternalError("failed to load user", err)
	}
	return user, nil
}

// createUser hashes the password and persists a validated registration.
func createUser(ctx context.Context, repo interfaces.UserRepository, request *validators.RegisterRequest, role models.Role, cost int) (*models.User, error) {
	hashed, err := utils.HashPassword(request.Password, cost)
	if err != nil {
		return nil, utils.NewInternalError("failed to hash password", err)
	}

	user := &models.User{
		FullName:          request.FullName,
		Email:             request.Email,
		Password:          hashed,
		PhoneNumber:       request.PhoneNumber,
		HomeAddress:       request.HomeAddress,
		EmergencyContacts: []models.EmergencyContact{},
		Role:              role,
	}

	if err := repo.Create(ctx, user); err != nil {
		if errors.Is(err, utils.ErrDuplicateKey) {
			return nil, duplicateUserError(ctx, repo, &request.Email, primitive.NilObjectID, err)
		}
		return nil, utils.NewInternalError("failed to create user", err)
	}

	return user, nil
}

// duplicateUserError tells an email clash from a phone clash by looking the email up again.
func duplicateUserError(ctx context.Context, repo interfaces.UserRepository, email *string, self primitive.ObjectID, cause error) error {
	if email != nil {
		if existing, err := repo.GetByEmail(ctx, *email); err == nil && existing.ID != self {
			return utils.NewConflictError(utils.ErrEmailInUse, cause)
		}
	}
	return utils.NewConflictError(utils.ErrPhoneInUse, fmt.Errorf("unique index violation: %w", cause))
}
