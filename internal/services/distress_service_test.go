package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"distress-server/internal/config"
	"distress-server/internal/models"
	"distress-server/internal/utils"
	"distress-server/internal/validators"
	"distress-server/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const sampleCreateBody = `{
	"message": "help",
	"location": {"coords": {"latitude": 1, "longitude": 2, "accuracy": 10, "altitude": 0, "altitudeAccuracy": 0, "heading": 0, "speed": 0}, "timestamp": 1000},
	"additionalDetails": {"batteryLevel": "42"}
}`

func createRequest(t *testing.T) *validators.CreateDistressRequest {
	t.Helper()
	var req validators.CreateDistressRequest
	require.NoError(t, json.Unmarshal([]byte(sampleCreateBody), &req))
	return &req
}

func updateRequest(t *testing.T, body string) *validators.UpdateDistressRequest {
	t.Helper()
	var req validators.UpdateDistressRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return &req
}

func TestDistressService_CreateRoundTrip(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := seedUser(t, h.users, models.RoleUser)

	created, err := h.distress.Create(ctx, identityOf(owner), createRequest(t))
	require.NoError(t, err)

	got, err := h.distress.Get(ctx, identityOf(owner), created.ID)
	require.NoError(t, err)

	require.Len(t, got.Location, 1)
	assert.Equal(t, 1.0, got.Location[0].Coords.Latitude)
	assert.Equal(t, 2.0, got.Location[0].Coords.Longitude)
	assert.Equal(t, float64(1000), got.Location[0].Timestamp)
	require.Len(t, got.AdditionalDetails, 1)
	assert.Equal(t, "42", got.AdditionalDetails[0].BatteryLevel)
	assert.Equal(t, owner.ID, got.UserID)
	assert.False(t, got.Resolved)
	assert.False(t, got.DroneDeployed)
	assert.False(t, got.Escalated.Status)
	assert.Empty(t, got.AudioRecordings)
}

func TestDistressService_CreateSucceedsWhenNotificationsFail(t *testing.T) {
	h := newHarness(t)
	h.sms.failFor["+2348011111111"] = true
	h.sms.failFor["+2348022222222"] = true

	owner := seedUser(t, h.users, models.RoleUser,
		models.EmergencyContact{Name: "A", PhoneNumbers: []models.PhoneNumber{{Digits: "2348011111111"}}},
		models.EmergencyContact{Name: "B", PhoneNumbers: []models.PhoneNumber{{Digits: "2348022222222"}}},
		models.EmergencyContact{Name: "C", PhoneNumbers: []models.PhoneNumber{{Digits: "2348033333333"}}},
	)

	created, err := h.distress.Create(context.Background(), identityOf(owner), createRequest(t))
	require.NoError(t, err)
	assert.False(t, created.ID.IsZero())
	assert.Len(t, h.sms.messages(), 1)
}

func TestDistressService_CreateValidation(t *testing.T) {
	h := newHarness(t)
	owner := seedUser(t, h.users, models.RoleUser)

	_, err := h.distress.Create(context.Background(), identityOf(owner), &validators.CreateDistressRequest{Message: "help"})
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	all, err := h.alerts.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDistressService_CreateAsyncReturnsBeforeFanOut(t *testing.T) {
	h := newHarness(t)
	release := make(chan struct{})
	h.sms.callback = func() { <-release }

	cfg := testNotificationConfig()
	cfg.Mode = config.NotificationModeAsync
	cfg.Timeout = 5 * time.Second
	svc := NewDistressService(h.alerts, h.users, h.notifier, h.realtime, cfg, logger.NewNop())

	owner := seedUser(t, h.users, models.RoleUser,
		models.EmergencyContact{Name: "A", PhoneNumbers: []models.PhoneNumber{{Digits: "2348011111111"}}},
	)

	_, err := svc.Create(context.Background(), identityOf(owner), createRequest(t))
	require.NoError(t, err)
	assert.Empty(t, h.sms.messages())

	close(release)
	svc.Wait()
	assert.Len(t, h.sms.messages(), 1)
}

func TestDistressService_Authorization(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := seedUser(t, h.users, models.RoleUser)
	stranger := seedUser(t, h.users, models.RoleUser)
	admin := seedUser(t, h.users, models.RoleAdmin)

	alert, err := h.distress.Create(ctx, identityOf(owner), createRequest(t))
	require.NoError(t, err)

	_, err = h.distress.Get(ctx, identityOf(stranger), alert.ID)
	assert.Equal(t, utils.KindForbidden, utils.KindOf(err))
	_, err = h.distress.Update(ctx, identityOf(stranger), alert.ID, updateRequest(t, `{"resolved": true}`))
	assert.Equal(t, utils.KindForbidden, utils.KindOf(err))
	assert.Equal(t, utils.KindForbidden, utils.KindOf(h.distress.Delete(ctx, identityOf(stranger), alert.ID)))
	_, err = h.distress.ListByUser(ctx, identityOf(stranger), owner.ID)
	assert.Equal(t, utils.KindForbidden, utils.KindOf(err))
	_, err = h.distress.List(ctx, identityOf(owner))
	assert.Equal(t, utils.KindForbidden, utils.KindOf(err))

	_, err = h.distress.Get(ctx, identityOf(admin), alert.ID)
	assert.NoError(t, err)
	mine, err := h.distress.ListByUser(ctx, identityOf(owner), owner.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	all, err := h.distress.List(ctx, identityOf(admin))
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = h.distress.Get(ctx, identityOf(owner), primitive.NewObjectID())
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))

	_, err = h.distress.Get(ctx, nil, alert.ID)
	assert.Equal(t, utils.KindUnauthenticated, utils.KindOf(err))

	require.NoError(t, h.distress.Delete(ctx, identityOf(admin), alert.ID))
	_, err = h.distress.Get(ctx, identityOf(owner), alert.ID)
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
}

func TestDistressService_UpdatePrependsHistory(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := seedUser(t, h.users, models.RoleUser)

	alert, err := h.distress.Create(ctx, identityOf(owner), createRequest(t))
	require.NoError(t, err)

	updated, err := h.distress.Update(ctx, identityOf(owner), alert.ID, updateRequest(t, `{
		"message": "still here",
		"location": [{"coords": {"latitude": 9, "longitude": 9, "accuracy": 10, "altitude": 0, "altitudeAccuracy": 0, "heading": 0, "speed": 0}, "timestamp": 2000}],
		"additionalDetails": [{"batteryLevel": 30}],
		"resolved": true
	}`))
	require.NoError(t, err)

	assert.Equal(t, "still here", updated.Message)
	assert.True(t, updated.Resolved)
	require.Len(t, updated.Location, 2)
	assert.Equal(t, float64(2000), updated.Location[0].Timestamp)
	require.Len(t, updated.AdditionalDetails, 2)
	assert.Equal(t, "30", updated.AdditionalDetails[0].BatteryLevel)

	same, err := h.distress.Update(ctx, identityOf(owner), alert.ID, updateRequest(t, `{}`))
	require.NoError(t, err)
	assert.Len(t, same.Location, 2)

	_, err = h.distress.Update(ctx, identityOf(owner), alert.ID, updateRequest(t, `{"location": [{"coords": {"longitude": 1}}]}`))
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))
}

func TestDistressService_ConcurrentUpdatesKeepAHead(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := seedUser(t, h.users, models.RoleUser)

	alert, err := h.distress.Create(ctx, identityOf(owner), createRequest(t))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, ts := range []string{"5000", "6000"} {
		wg.Add(1)
		go func(ts string) {
			defer wg.Done()
			_, err := h.distress.Update(ctx, identityOf(owner), alert.ID,
				updateRequest(t, `{"location": [{"coords": {"latitude": 1, "longitude": 1, "accuracy": 10, "altitude": 0, "altitudeAccuracy": 0, "heading": 0, "speed": 0}, "timestamp": `+ts+`}]}`))
			assert.NoError(t, err)
		}(ts)
	}
	wg.Wait()

	got, err := h.distress.Get(ctx, identityOf(owner), alert.ID)
	require.NoError(t, err)
	assert.Contains(t, []float64{5000, 6000}, got.Location[0].Timestamp)
	assert.NotEmpty(t, got.AdditionalDetails)
}

func TestDistressService_EscalateOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := seedUser(t, h.users, models.RoleUser)

	alert, err := h.distress.Create(ctx, identityOf(owner), createRequest(t))
	require.NoError(t, err)

	escalated, err := h.distress.Escalate(ctx, alert.ID, &validators.EscalateRequest{
		Email:          "bystander@example.com",
		PhoneNumber:    "0801 234 5678",
		AdditionalInfo: "saw them near the bus stop",
	})
	require.NoError(t, err)
	assert.True(t, escalated.Escalated.Status)
	assert.Equal(t, "bystander@example.com", escalated.Escalated.By.Email)
	assert.Equal(t, "0801 234 5678", escalated.Escalated.By.PhoneNumber)
	assert.Equal(t, []string{"escalated"}, h.realtime.events)
	assert.Equal(t, []primitive.ObjectID{owner.ID}, h.realtime.owners)

	_, err = h.distress.Escalate(ctx, alert.ID, &validators.EscalateRequest{Email: "other@example.com", AdditionalInfo: "again"})
	assert.Equal(t, utils.KindConflict, utils.KindOf(err))

	got, err := h.distress.Get(ctx, identityOf(owner), alert.ID)
	require.NoError(t, err)
	assert.Equal(t, "bystander@example.com", got.Escalated.By.Email)
	assert.Equal(t, "saw them near the bus stop", got.Escalated.AdditionalInfo)

	_, err = h.distress.Escalate(ctx, primitive.NewObjectID(), &validators.EscalateRequest{})
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
}

func TestCanAccess(t *testing.T) {
	owner := primitive.NewObjectID()
	alert := &models.Distress{UserID: owner}

	assert.True(t, CanAccess(&models.Identity{SubjectID: owner, Role: models.RoleUser}, alert))
	assert.True(t, CanAccess(&models.Identity{SubjectID: primitive.NewObjectID(), Role: models.RoleAdmin}, alert))
	assert.False(t, CanAccess(&models.Identity{SubjectID: primitive.NewObjectID(), Role: models.RoleUser}, alert))
	assert.False(t, CanAccess(nil, alert))
}
