package mongo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/fastygo/taskdesk/domain"
	"github.com/fastygo/taskdesk/repository"
)

const (
	tasksNS = "test." + tasksCollection
	usersNS = "test." + usersCollection
)

func newMock(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

// stages returns the operator name of each stage in the pipeline sent by the last command.
func stages(mt *mtest.T) []string {
	started := mt.GetStartedEvent()
	require.NotNil(mt, started)
	values, err := started.Command.Lookup("pipeline").Array().Values()
	require.NoError(mt, err)

	names := make([]string, 0, len(values))
	for _, v := range values {
		names = append(names, v.Document().Index(0).Key())
	}
	return names
}

func TestTaskRepository_ListWithOwners(t *testing.T) {
	mt := newMock(t)

	mt.Run("decodes joined task and owner", func(mt *mtest.T) {
		taskID := primitive.NewObjectID()
		ownerID := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, tasksNS, mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: taskID},
				{Key: "userId", Value: ownerID},
				{Key: "title", Value: "write report"},
				{Key: "status", Value: "in-progress"},
				{Key: "owner", Value: bson.D{
					{Key: "_id", Value: ownerID},
					{Key: "username", Value: "alice"},
					{Key: "email", Value: "alice@example.com"},
					{Key: "role", Value: "user"},
				}},
			},
			bson.D{
				{Key: "_id", Value: primitive.NewObjectID()},
				{Key: "userId", Value: primitive.NewObjectID()},
				{Key: "title", Value: "orphaned"},
				{Key: "status", Value: "todo"},
			},
		))

		repo := NewTaskRepository(mt.DB)
		tasks, err := repo.ListWithOwners(context.Background(), repository.TaskFilter{Status: "in-progress", Limit: 50})
		require.NoError(mt, err)
		require.Len(mt, tasks, 2)

		assert.Equal(mt, taskID.Hex(), tasks[0].ID)
		assert.Equal(mt, "write report", tasks[0].Title)
		assert.Equal(mt, domain.TaskStatus("in-progress"), tasks[0].Status)
		require.NotNil(mt, tasks[0].Owner)
		assert.Equal(mt, "alice", tasks[0].Owner.Username)

		assert.Equal(mt, "orphaned", tasks[1].Title)
		assert.Nil(mt, tasks[1].Owner)

		assert.Equal(mt, []string{"$match", "$sort", "$skip", "$limit", "$lookup", "$unwind", "$project"}, stages(mt))
	})

	mt.Run("malformed owner filter", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB)
		_, err := repo.ListWithOwners(context.Background(), repository.TaskFilter{UserID: "nope"})
		assert.ErrorIs(mt, err, domain.ErrInvalidID)
		assert.Nil(mt, mt.GetStartedEvent())
	})
}

func TestTaskRepository_TopOwners(t *testing.T) {
	mt := newMock(t)

	mt.Run("limits after dropping missing owners", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, tasksNS, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "taskCount", Value: int32(4)},
			{Key: "username", Value: "bob"},
			{Key: "email", Value: "bob@example.com"},
		}))

		repo := NewTaskRepository(mt.DB)
		top, err := repo.TopOwners(context.Background(), domain.TopUsersLimit)
		require.NoError(mt, err)
		assert.Equal(mt, []domain.TopUser{{UserID: id.Hex(), Username: "bob", Email: "bob@example.com", TaskCount: 4}}, top)

		assert.Equal(mt, []string{"$group", "$sort", "$lookup", "$unwind", "$limit", "$project"}, stages(mt))
	})
}

func TestTaskRepository_CountByPriority_NullGroup(t *testing.T) {
	mt := newMock(t)

	mt.Run("missing priority groups under empty key", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, tasksNS, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: nil}, {Key: "count", Value: int32(2)}},
			bson.D{{Key: "_id", Value: "high"}, {Key: "count", Value: int32(5)}},
		))

		groups, err := NewTaskRepository(mt.DB).CountByPriority(context.Background())
		require.NoError(mt, err)
		assert.Equal(mt, []domain.GroupCount{{Key: "", Count: 2}, {Key: "high", Count: 5}}, groups)
	})
}

func TestTaskRepository_GetByID(t *testing.T) {
	mt := newMock(t)

	mt.Run("not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, tasksNS, mtest.FirstBatch))

		_, err := NewTaskRepository(mt.DB).GetByID(context.Background(), primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, domain.ErrTaskNotFound)
	})

	mt.Run("malformed id", func(mt *mtest.T) {
		_, err := NewTaskRepository(mt.DB).GetByID(context.Background(), "123")
		assert.ErrorIs(mt, err, domain.ErrInvalidID)
	})
}

func TestUserRepository_UpdateRole(t *testing.T) {
	mt := newMock(t)

	mt.Run("returns previous role", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: id},
			{Key: "role", Value: "user"},
		}}))

		previous, err := NewUserRepository(mt.DB).UpdateRole(context.Background(), id.Hex(), domain.RolePremium)
		require.NoError(mt, err)
		assert.Equal(mt, domain.RoleUser, previous)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "findAndModify", started.CommandName)
		assert.False(mt, started.Command.Lookup("new").Boolean())
	})

	mt.Run("unknown user", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := NewUserRepository(mt.DB).UpdateRole(context.Background(), primitive.NewObjectID().Hex(), domain.RoleAdmin)
		assert.ErrorIs(mt, err, domain.ErrUserNotFound)
	})
}

func TestUserRepository_MergePreferences(t *testing.T) {
	mt := newMock(t)

	mt.Run("sends pipeline update and decodes merged preferences", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		merged := newPreferencesDocument(domain.DefaultPreferences())
		merged.Theme = string(domain.ThemeDark)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: id},
			{Key: "preferences", Value: merged},
		}}))

		dark := domain.ThemeDark
		prefs, err := NewUserRepository(mt.DB).MergePreferences(context.Background(), id.Hex(), domain.PreferencesPatch{Theme: &dark})
		require.NoError(mt, err)
		assert.Equal(mt, domain.ThemeDark, prefs.Theme)
		assert.Equal(mt, domain.DefaultTimezone, prefs.Timezone)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, bson.TypeArray, started.Command.Lookup("update").Type)
		assert.True(mt, started.Command.Lookup("new").Boolean())
	})

	mt.Run("unknown user", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := NewUserRepository(mt.DB).MergePreferences(context.Background(), primitive.NewObjectID().Hex(), domain.PreferencesPatch{})
		assert.ErrorIs(mt, err, domain.ErrUserNotFound)
	})
}

func TestUserRepository_Create_Duplicate(t *testing.T) {
	mt := newMock(t)

	mt.Run("duplicate key maps to conflict", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: " + usersNS,
		}))

		err := NewUserRepository(mt.DB).Create(context.Background(), &domain.User{
			Username: "alice",
			Email:    "alice@example.com",
			Role:     domain.RoleUser,
		})
		assert.ErrorIs(mt, err, domain.ErrUserExists)
	})
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	mt := newMock(t)

	mt.Run("empty cursor", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch))

		_, err := NewUserRepository(mt.DB).GetByID(context.Background(), primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, domain.ErrUserNotFound)
	})
}
