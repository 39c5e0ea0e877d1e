package mongodb

import (
	"context"
	"testing"

	"distress-server/internal/models"
	"distress-server/internal/utils"
	"distress-server/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestDistressRepository_Update(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("prepends samples and trims to the history limit", func(mt *mtest.T) {
		repo := NewDistressRepository(mt.DB, 3)
		id := primitive.NewObjectID()

		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: id},
			{Key: "message", Value: "moved"},
			{Key: "location", Value: bson.A{bson.D{{Key: "timestamp", Value: 2000.5}}}},
		}}))

		message := "moved"
		distress, err := repo.Update(context.Background(), id, &models.DistressUpdate{
			Message:  &message,
			Location: []models.LocationSample{{Timestamp: 2000.5}},
		})
		require.NoError(mt, err)
		assert.Equal(mt, id, distress.ID)
		assert.Equal(mt, "moved", distress.Message)
		require.Len(mt, distress.Location, 1)
		assert.Equal(mt, 2000.5, distress.Location[0].Timestamp)

		command := mt.GetStartedEvent().Command
		assert.Equal(mt, id, command.Lookup("query", "_id").ObjectID())

		update := command.Lookup("update").Document()
		assert.Equal(mt, "moved", update.Lookup("$set", "message").StringValue())

		location := update.Lookup("$push", "location").Document()
		assert.Equal(mt, int64(0), location.Lookup("$position").AsInt64())
		assert.Equal(mt, int64(3), location.Lookup("$slice").AsInt64())
		samples, err := location.Lookup("$each").Array().Values()
		require.NoError(mt, err)
		assert.Len(mt, samples, 1)

		_, err = update.LookupErr("$push", "additionalDetails")
		assert.Error(mt, err, "empty sequences are not pushed")
	})

	mt.Run("flag-only update does not push", func(mt *mtest.T) {
		repo := NewDistressRepository(mt.DB, 3)
		id := primitive.NewObjectID()

		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: id},
			{Key: "resolved", Value: true},
		}}))

		resolved := true
		distress, err := repo.Update(context.Background(), id, &models.DistressUpdate{Resolved: &resolved})
		require.NoError(mt, err)
		assert.True(mt, distress.Resolved)

		update := mt.GetStartedEvent().Command.Lookup("update").Document()
		assert.True(mt, update.Lookup("$set", "resolved").Boolean())
		_, err = update.LookupErr("$push")
		assert.Error(mt, err)
	})

	mt.Run("missing alert", func(mt *mtest.T) {
		repo := NewDistressRepository(mt.DB, 3)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		resolved := true
		_, err := repo.Update(context.Background(), primitive.NewObjectID(), &models.DistressUpdate{Resolved: &resolved})
		assert.ErrorIs(mt, err, utils.ErrRecordNotFound)
	})
}

func TestDistressRepository_Escalate(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	escalation := models.Escalation{
		By:             models.EscalatedBy{PhoneNumber: "0801 234 5678"},
		AdditionalInfo: "by the gate",
	}

	mt.Run("first escalation wins", func(mt *mtest.T) {
		repo := NewDistressRepository(mt.DB, 3)
		id := primitive.NewObjectID()

		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: id},
			{Key: "escalated", Value: bson.D{
				{Key: "status", Value: true},
				{Key: "by", Value: bson.D{{Key: "phoneNumber", Value: "0801 234 5678"}}},
				{Key: "additionalInfo", Value: "by the gate"},
			}},
		}}))

		distress, err := repo.Escalate(context.Background(), id, escalation)
		require.NoError(mt, err)
		assert.True(mt, distress.Escalated.Status)
		assert.Equal(mt, "0801 234 5678", distress.Escalated.By.PhoneNumber)

		command := mt.GetStartedEvent().Command
		assert.Equal(mt, id, command.Lookup("query", "_id").ObjectID())
		assert.True(mt, command.Lookup("query", "escalated.status", "$ne").Boolean())

		set := command.Lookup("update", "$set").Document()
		assert.True(mt, set.Lookup("escalated.status").Boolean())
		assert.Equal(mt, "by the gate", set.Lookup("escalated.additionalInfo").StringValue())
		assert.Equal(mt, "0801 234 5678", set.Lookup("escalated.by", "phoneNumber").StringValue())
	})

	mt.Run("already escalated", func(mt *mtest.T) {
		repo := NewDistressRepository(mt.DB, 3)
		ns := mt.DB.Name() + "." + database.DistressCollection

		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: int32(1)}}),
		)

		_, err := repo.Escalate(context.Background(), primitive.NewObjectID(), escalation)
		assert.ErrorIs(mt, err, utils.ErrAlreadyEscalated)
	})

	mt.Run("missing alert", func(mt *mtest.T) {
		repo := NewDistressRepository(mt.DB, 3)
		ns := mt.DB.Name() + "." + database.DistressCollection

		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
		)

		_, err := repo.Escalate(context.Background(), primitive.NewObjectID(), escalation)
		assert.ErrorIs(mt, err, utils.ErrRecordNotFound)
	})
}
