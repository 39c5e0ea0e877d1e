package services

import (
	"context"
	"errors"

	"distress-server/internal/config"
	"distress-server/internal/models"
	"distress-server/internal/repositories/interfaces"
	"distress-server/internal/utils"
	"distress-server/internal/validators"
	"distress-server/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AuthService interface {
	Register(ctx context.Context, request *validators.RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, request *validators.LoginRequest) (*AuthResult, error)
	AdminLogin(ctx context.Context, request *validators.LoginRequest) (*AuthResult, error)
	ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error)
	RefreshToken(ctx context.Context, token string) (string, error)
}

// AuthResult is returned by every flow that issues a token. User is only set on registration.
type AuthResult struct {
	ID    primitive.ObjectID `json:"id"`
	Token string             `json:"token"`
	User  *models.User       `json:"user,omitempty"`
}

type authService struct {
	userRepo interfaces.UserRepository
	tokens   *utils.TokenIssuer
	security *config.SecurityConfig
	logger   *logger.Logger
}

func NewAuthService(userRepo interfaces.UserRepository, tokens *utils.TokenIssuer, security *config.SecurityConfig, log *logger.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		security: security,
		logger:   log,
	}
}

func (s *authService) Register(ctx context.Context, request *validators.RegisterRequest) (*AuthResult, error) {
	if err := validators.ValidateRegister(request, s.security.PasswordMinLength).AsAppError(); err != nil {
		return nil, err
	}

	role := models.RoleUser
	if request.Role == string(models.RoleAdmin) {
		if !s.security.AllowAdminSignup {
			s.logger.LogSecurityEvent("admin_signup_rejected", "medium", logger.Fields{"email": utils.MaskEmail(request.Email)})
			return nil, utils.NewForbiddenError(utils.ErrRoleChangeNotAllowed)
		}
		role = models.RoleAdmin
	}

	user, err := createUser(ctx, s.userRepo, request, role, s.security.BcryptCost)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Generate(user.ID.Hex(), string(user.Role), s.security.JWTSignupTokenTTL)
	if err != nil {
		return nil, utils.NewInternalError("failed to issue token", err)
	}

	s.logger.LogUserAction(user.ID, "registered", logger.Fields{"role": user.Role})

	return &AuthResult{ID: user.ID, Token: token, User: user}, nil
}

func (s *authService) Login(ctx context.Context, request *validators.LoginRequest) (*AuthResult, error) {
	user, err := s.authenticate(ctx, request, false)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

// AdminLogin rejects non-admin accounts with Forbidden before the password is checked.
func (s *authService) AdminLogin(ctx context.Context, request *validators.LoginRequest) (*AuthResult, error) {
	user, err := s.authenticate(ctx, request, true)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *authService) ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error) {
	if token == "" {
		return nil, utils.NewUnauthenticatedError(utils.ErrMissingToken)
	}

	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, utils.NewInvalidCredentialError(utils.ErrInvalidToken, err)
	}
	return claims, nil
}

func (s *authService) RefreshToken(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", utils.NewUnauthenticatedError(utils.ErrMissingToken)
	}

	refreshed, err := s.tokens.Refresh(token)
	if err != nil {
		return "", utils.NewInvalidCredentialError(utils.ErrInvalidToken, err)
	}
	return refreshed, nil
}

func (s *authService) authenticate(ctx context.Context, request *validators.LoginRequest, adminOnly bool) (*models.User, error) {
	if err := validators.ValidateLogin(request).AsAppError(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, request.Email)
	if err != nil {
		if errors.Is(err, utils.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError(utils.ErrUserNotFound)
		}
		return nil, utils.NewInternalError("failed to load user", err)
	}

	if adminOnly && !user.IsAdmin() {
		s.logger.LogSecurityEvent("admin_login_denied", "medium", logger.Fields{"user_id": user.ID.Hex()})
		return nil, utils.NewForbiddenError(utils.ErrNotAdmin)
	}

	if !utils.CheckPassword(user.Password, request.Password) {
		s.logger.LogSecurityEvent("login_failed", "low", logger.Fields{"user_id": user.ID.Hex()})
		return nil, utils.NewInvalidCredentialError(utils.ErrInvalidCredentials, nil)
	}

	return user, nil
}

func (s *authService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(user.ID.Hex(), string(user.Role), s.security.JWTLoginTokenTTL)
	if err != nil {
		return nil, utils.NewInternalError("failed to issue token", err)
	}
	return &AuthResult{ID: user.ID, Token: token}, nil
}
