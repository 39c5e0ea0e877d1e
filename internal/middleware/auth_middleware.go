package middleware

import (
	"errors"
	"strings"

	"distress-server/internal/models"
	"distress-server/internal/utils"
	"distress-server/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ContextUserID   = "user_id"
	ContextUserRole = "user_role"
)

var errInvalidSubject = errors.New("token subject is not an object id")

// TokenValidator is satisfied by *utils.TokenIssuer.
type TokenValidator interface {
	Validate(token string) (*utils.JWTClaims, error)
}

// Authenticate resolves a raw Authorization header value into an identity.
func Authenticate(tokens TokenValidator, header string) (*models.Identity, error) {
	if header == "" {
		return nil, utils.NewUnauthenticatedError(utils.ErrMissingToken)
	}

	token := strings.TrimPrefix(header, "Bearer ")
	if token == header || strings.TrimSpace(token) == "" {
		return nil, utils.NewUnauthenticatedError("Bearer token required")
	}

	return identityFromToken(tokens, token)
}

func identityFromToken(tokens TokenValidator, token string) (*models.Identity, error) {
	claims, err := tokens.Validate(token)
	if err != nil {
		return nil, utils.NewInvalidCredentialError(utils.ErrInvalidToken, err)
	}

	subject, err := primitive.ObjectIDFromHex(claims.ID)
	if err != nil {
		return nil, utils.NewInvalidCredentialError(utils.ErrInvalidToken, errInvalidSubject)
	}

	return &models.Identity{SubjectID: subject, Role: models.Role(claims.Role)}, nil
}

// AuthRequired validates the bearer token and sets the caller identity on the context.
func AuthRequired(tokens TokenValidator) gin.HandlerFunc {
	return RequireRole(tokens)
}

// AdminRequired is AuthRequired plus an admin role check.
func AdminRequired(tokens TokenValidator) gin.HandlerFunc {
	return RequireRole(tokens, models.RoleAdmin)
}

// RequireRole authenticates the request and, when roles are given, requires the caller to hold one of them.
// Websocket upgrades may pass the token as ?token= since browsers cannot set headers on the handshake.
func RequireRole(tokens TokenValidator, roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			identity *models.Identity
			err      error
		)

		header := c.GetHeader("Authorization")
		if header == "" && websocket.IsWebSocketUpgrade(c.Request) && c.Query("token") != "" {
			identity, err = identityFromToken(tokens, c.Query("token"))
		} else {
			identity, err = Authenticate(tokens, header)
		}
		if err != nil {
			utils.HandleError(c, err)
			c.Abort()
			return
		}

		if len(roles) > 0 && !hasRole(identity, roles) {
			utils.HandleError(c, utils.NewForbiddenError(utils.ErrForbidden))
			c.Abort()
			return
		}

		c.Set(ContextUserID, identity.SubjectID)
		c.Set(ContextUserRole, string(identity.Role))
		c.Request = c.Request.WithContext(logger.ContextWithUserID(c.Request.Context(), identity.SubjectID.Hex()))

		c.Next()
	}
}

func hasRole(identity *models.Identity, roles []models.Role) bool {
	for _, role := range roles {
		if identity.Role == role {
			return true
		}
	}
	return false
}

// GetIdentity returns the identity set by RequireRole, or nil on unauthenticated routes.
func GetIdentity(c *gin.Context) *models.Identity {
	value, exists := c.Get(ContextUserID)
	if !exists {
		return nil
	}
	subject, ok := value.(primitive.ObjectID)
	if !ok {
		return nil
	}
	return &models.Identity{SubjectID: subject, Role: models.Role(c.GetString(ContextUserRole))}
}
