package handlers

import (
	"context"

	"distress-server/internal/services"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AudioStopFunc binds the websocket stop event to the audio service. Its signature matches websocket.StopFunc.
func AudioStopFunc(audioService services.AudioService) func(ctx context.Context, userID primitive.ObjectID, recording []byte) (interface{}, error) {
	return func(ctx context.Context, userID primitive.ObjectID, recording []byte) (interface{}, error) {
		return audioService.SaveRecording(ctx, userID, recording)
	}
}
