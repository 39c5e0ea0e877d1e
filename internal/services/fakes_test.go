package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"distress-server/internal/config"
	"distress-server/internal/models"
	"distress-server/internal/repositories/interfaces"
	"distress-server/internal/repositories/memory"
	"distress-server/internal/utils"
	"distress-server/pkg/email"
	"distress-server/pkg/logger"
	"distress-server/pkg/maps"
	"distress-server/pkg/sms"
	"distress-server/pkg/storage"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeSMS struct {
	mu       sync.Mutex
	sent     []*sms.SMSRequest
	failFor  map[string]bool
	callback func()
}

func (f *fakeSMS) Name() string { return "fake" }

func (f *fakeSMS) SendSMS(ctx context.Context, request *sms.SMSRequest) (*sms.SMSResponse, error) {
	if f.callback != nil {
		f.callback()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[request.To] {
		return nil, errors.New("carrier rejected")
	}
	f.sent = append(f.sent, request)
	return &sms.SMSResponse{MessageID: "SM1", Status: "queued"}, nil
}

func (f *fakeSMS) messages() []*sms.SMSRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*sms.SMSRequest(nil), f.sent...)
}

type fakeEmail struct {
	mu   sync.Mutex
	sent []*email.EmailRequest
	err  error
}

func (f *fakeEmail) Name() string { return "fake" }

func (f *fakeEmail) SendEmail(ctx context.Context, request *email.EmailRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, request)
	return nil
}

type fakeGeocoder struct {
	address string
	err     error
}

func (f *fakeGeocoder) ReverseGeocode(ctx context.Context, lat, lng float64) (*maps.GeocodeResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &maps.GeocodeResponse{Results: []maps.GeocodeResult{{Address: f.address}}}, nil
}

type fakePublisher struct {
	mu       sync.Mutex
	err      error
	topic    string
	messages [][]byte
}

func (f *fakePublisher) Name() string { return "fake" }
func (f *fakePublisher) Close() error { return nil }

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

func (f *fakePublisher) Publish(ctx context.Context, topic string, message []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.topic = topic
	f.messages = append(f.messages, message)
	return nil
}

type fakeStorage struct {
	uploadErr error
	objects   map[string][]byte
	deleted   []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (f *fakeStorage) Name() string { return "fake" }

func (f *fakeStorage) Upload(ctx context.Context, request *storage.UploadRequest) (*storage.UploadResponse, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	data, err := io.ReadAll(request.Reader)
	if err != nil {
		return nil, err
	}
	f.objects[request.Key] = data
	return &storage.UploadResponse{Key: request.Key, URL: "https://cdn.test/" + request.Key, Size: int64(len(data))}, nil
}

func (f *fakeStorage) Delete(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	delete(f.objects, key)
	return nil
}

type fakeRealtime struct {
	mu     sync.Mutex
	events []string
	owners []primitive.ObjectID
}

func (f *fakeRealtime) NotifyAdmins(event string, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeRealtime) SendToUser(userID primitive.ObjectID, event string, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.owners = append(f.owners, userID)
}

// failingDistressRepo wraps a repository and fails selected writes.
type failingDistressRepo struct {
	interfaces.DistressRepository
	failSetDeployed bool
	failAudio       bool
}

func (r *failingDistressRepo) SetDroneDeployed(ctx context.Context, id primitive.ObjectID) (*models.Distress, error) {
	if r.failSetDeployed {
		return nil, errors.New("write concern timeout")
	}
	return r.DistressRepository.SetDroneDeployed(ctx, id)
}

func (r *failingDistressRepo) PrependAudioRecording(ctx context.Context, id primitive.ObjectID, rec models.AudioRecording) (*models.Distress, error) {
	if r.failAudio {
		return nil, errors.New("write concern timeout")
	}
	return r.DistressRepository.PrependAudioRecording(ctx, id, rec)
}

func testSecurity() *config.SecurityConfig {
	return &config.SecurityConfig{
		JWTSecret:          "test-secret",
		JWTLoginTokenTTL:   utils.JWTLoginTokenTTL,
		JWTSignupTokenTTL:  utils.JWTSignupTokenTTL,
		JWTRefreshTokenTTL: utils.JWTRefreshTokenTTL,
		BcryptCost:         4,
		PasswordMinLength:  6,
	}
}

func testNotificationConfig() *config.NotificationConfig {
	return &config.NotificationConfig{
		Mode:              config.NotificationModeSync,
		EscalationBaseURL: "https://distress.netlify.app",
		EmailSubject:      "Distress signal from",
	}
}

func seedUser(t *testing.T, repo interfaces.UserRepository, role models.Role, contacts ...models.EmergencyContact) *models.User {
	t.Helper()
	id := primitive.NewObjectID().Hex()
	hashed, err := utils.HashPassword("secret1", 4)
	require.NoError(t, err)

	user := &models.User{
		FullName:          "Ada Obi",
		Email:             id + "@example.com",
		Password:          hashed,
		PhoneNumber:       "+234" + id[len(id)-8:],
		HomeAddress:       "12 Allen Ave",
		EmergencyContacts: contacts,
		Role:              role,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func identityOf(user *models.User) *models.Identity {
	return &models.Identity{SubjectID: user.ID, Role: user.Role}
}

type harness struct {
	users    interfaces.UserRepository
	alerts   interfaces.DistressRepository
	sms      *fakeSMS
	email    *fakeEmail
	realtime *fakeRealtime
	notifier NotificationService
	distress DistressService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		users:    memory.NewUserRepository(),
		alerts:   memory.NewDistressRepository(utils.DefaultHistoryLimit),
		sms:      &fakeSMS{failFor: map[string]bool{}},
		email:    &fakeEmail{},
		realtime: &fakeRealtime{},
	}
	h.notifier = NewNotificationService(h.sms, h.email, nil, testNotificationConfig(), 0, logger.NewNop())
	h.distress = NewDistressService(h.alerts, h.users, h.notifier, h.realtime, testNotificationConfig(), logger.NewNop())
	return h
}
