package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"distress-server/internal/models"
	"distress-server/internal/services"
	"distress-server/internal/validators"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// recordingDistressService captures the escalation request; other methods are not used here.
type recordingDistressService struct {
	services.DistressService
	calls    int
	received *validators.EscalateRequest
}

func (r *recordingDistressService) Escalate(ctx context.Context, id primitive.ObjectID, request *validators.EscalateRequest) (*models.Distress, error) {
	r.calls++
	r.received = request
	return &models.Distress{ID: id, Escalated: models.Escalation{Status: true}}, nil
}

func escalateRouter(svc services.DistressService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/escalate/:id", NewDistressHandler(svc).EscalateDistress)
	return router
}

func TestEscalateDistress_BodyIsOptional(t *testing.T) {
	id := primitive.NewObjectID().Hex()

	bodies := map[string]io.Reader{
		"no body":            nil,
		"empty body":         strings.NewReader(""),
		"empty chunked body": io.MultiReader(strings.NewReader("")),
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			svc := &recordingDistressService{}
			w := httptest.NewRecorder()
			escalateRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/escalate/"+id, body))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, 1, svc.calls)
			require.NotNil(t, svc.received)
			assert.Empty(t, svc.received.Email)
		})
	}
}

func TestEscalateDistress_Body(t *testing.T) {
	id := primitive.NewObjectID().Hex()

	svc := &recordingDistressService{}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/escalate/"+id,
		io.MultiReader(strings.NewReader(`{"phoneNumber": "0801 234 5678", "additionalInfo": "by the gate"}`)))
	req.Header.Set("Content-Type", "application/json")
	escalateRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.received)
	assert.Equal(t, "0801 234 5678", svc.received.PhoneNumber)
	assert.Equal(t, "by the gate", svc.received.AdditionalInfo)

	svc = &recordingDistressService{}
	w = httptest.NewRecorder()
	escalateRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/escalate/"+id, strings.NewReader(`{"email":`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, svc.calls)
}
