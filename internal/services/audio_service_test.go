package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"distress-server/internal/models"
	"distress-server/internal/utils"
	"distress-server/pkg/audio"
	"distress-server/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAudioService_SaveRecording(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := seedUser(t, h.users, models.RoleUser)
	alert, err := h.distress.Create(ctx, identityOf(owner), createRequest(t))
	require.NoError(t, err)

	store := newFakeStorage()
	svc := NewAudioService(h.alerts, store, logger.NewNop())

	pcm := bytes.Repeat([]byte{0x01, 0x02}, 64)
	saved, err := svc.SaveRecording(ctx, owner.ID, pcm)
	require.NoError(t, err)
	assert.Equal(t, alert.ID, saved.DistressID)
	assert.True(t, strings.HasPrefix(saved.URL, "https://cdn.test/audio/"+owner.ID.Hex()+"/"))
	assert.True(t, strings.HasSuffix(saved.URL, ".wav"))

	require.Len(t, store.objects, 1)
	for _, data := range store.objects {
		assert.True(t, audio.IsWAV(data))
		assert.Len(t, data, 44+len(pcm))
	}

	stored, err := h.alerts.GetByID(ctx, alert.ID)
	require.NoError(t, err)
	require.Len(t, stored.AudioRecordings, 1)
	assert.Equal(t, saved.URL, stored.AudioRecordings[0].URL)

	again, err := svc.SaveRecording(ctx, owner.ID, pcm)
	require.NoError(t, err)
	stored, err = h.alerts.GetByID(ctx, alert.ID)
	require.NoError(t, err)
	require.Len(t, stored.AudioRecordings, 2)
	assert.Equal(t, again.URL, stored.AudioRecordings[0].URL)
}

func TestAudioService_NoActiveAlert(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := seedUser(t, h.users, models.RoleUser)
	alert, err := h.distress.Create(ctx, identityOf(owner), createRequest(t))
	require.NoError(t, err)
	_, err = h.distress.Update(ctx, identityOf(owner), alert.ID, updateRequest(t, `{"resolved": true}`))
	require.NoError(t, err)

	store := newFakeStorage()
	svc := NewAudioService(h.alerts, store, logger.NewNop())

	_, err = svc.SaveRecording(ctx, owner.ID, []byte{1, 2, 3, 4})
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
	assert.Empty(t, store.objects)
}

func TestAudioService_Failures(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := seedUser(t, h.users, models.RoleUser)
	_, err := h.distress.Create(ctx, identityOf(owner), createRequest(t))
	require.NoError(t, err)

	store := newFakeStorage()
	svc := NewAudioService(h.alerts, store, logger.NewNop())
	_, err = svc.SaveRecording(ctx, owner.ID, nil)
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	store.uploadErr = errors.New("bucket gone")
	_, err = svc.SaveRecording(ctx, owner.ID, []byte{1, 2})
	assert.Equal(t, utils.KindDependency, utils.KindOf(err))

	store = newFakeStorage()
	repo := &failingDistressRepo{DistressRepository: h.alerts, failAudio: true}
	svc = NewAudioService(repo, store, logger.NewNop())
	_, err = svc.SaveRecording(ctx, owner.ID, []byte{1, 2})
	assert.Equal(t, utils.KindInternal, utils.KindOf(err))
	assert.Len(t, store.deleted, 1)
	assert.Empty(t, store.objects)
}
