package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fastygo/taskdesk/domain"
)

func TestTaskWithOwnerDocument_DecodesInlineTaskFields(t *testing.T) {
	taskID := primitive.NewObjectID()
	ownerID := primitive.NewObjectID()
	due := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	raw, err := bson.Marshal(bson.D{
		{Key: "_id", Value: taskID},
		{Key: "userId", Value: ownerID},
		{Key: "title", Value: "write report"},
		{Key: "status", Value: "todo"},
		{Key: "priority", Value: "high"},
		{Key: "dueDate", Value: due},
		{Key: "owner", Value: bson.D{
			{Key: "_id", Value: ownerID},
			{Key: "username", Value: "alice"},
			{Key: "email", Value: "alice@example.com"},
			{Key: "role", Value: "premium"},
		}},
	})
	require.NoError(t, err)

	var doc taskWithOwnerDocument
	require.NoError(t, bson.Unmarshal(raw, &doc))

	got := doc.toDomain()
	assert.Equal(t, taskID.Hex(), got.ID)
	assert.Equal(t, ownerID.Hex(), got.UserID)
	assert.Equal(t, "write report", got.Title)
	assert.Equal(t, domain.StatusTodo, got.Status)
	assert.Equal(t, "high", got.Priority)
	require.NotNil(t, got.DueDate)
	assert.True(t, due.Equal(*got.DueDate))
	require.NotNil(t, got.Owner)
	assert.Equal(t, &domain.TaskOwner{
		ID:       ownerID.Hex(),
		Username: "alice",
		Email:    "alice@example.com",
		Role:     domain.RolePremium,
	}, got.Owner)
}

func TestTaskWithOwnerDocument_MissingOwner(t *testing.T) {
	raw, err := bson.Marshal(bson.D{
		{Key: "_id", Value: primitive.NewObjectID()},
		{Key: "userId", Value: primitive.NewObjectID()},
		{Key: "title", Value: "orphan"},
		{Key: "status", Value: "done"},
	})
	require.NoError(t, err)

	var doc taskWithOwnerDocument
	require.NoError(t, bson.Unmarshal(raw, &doc))

	got := doc.toDomain()
	assert.Equal(t, "orphan", got.Title)
	assert.Nil(t, got.Owner)
}

func TestUserDocument_RoundTrip(t *testing.T) {
	prefs := newPreferencesDocument(domain.Preferences{
		Theme:              domain.ThemeDark,
		Language:           domain.LanguageKazakh,
		Timezone:           "Asia/Almaty",
		EmailNotifications: true,
		WeeklyDigest:       true,
	})
	in := userDocument{
		ID:          primitive.NewObjectID(),
		Username:    "bob",
		Email:       "bob@example.com",
		Password:    "hash",
		Role:        "admin",
		Preferences: &prefs,
		CreatedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	raw, err := bson.Marshal(in)
	require.NoError(t, err)
	assert.Equal(t, "kk", bson.Raw(raw).Lookup("preferences", "language").StringValue())

	var out userDocument
	require.NoError(t, bson.Unmarshal(raw, &out))

	user := out.toDomain()
	assert.Equal(t, in.ID.Hex(), user.ID)
	assert.Equal(t, domain.RoleAdmin, user.Role)
	assert.Equal(t, "hash", user.PasswordHash)
	require.NotNil(t, user.Preferences)
	assert.Equal(t, domain.ThemeDark, user.Preferences.Theme)
	assert.Equal(t, "Asia/Almaty", user.Preferences.Timezone)
	assert.True(t, user.Preferences.WeeklyDigest)
	assert.False(t, user.Preferences.DeadlineReminders)
}

func TestUserDocument_WithoutPreferences(t *testing.T) {
	raw, err := bson.Marshal(userDocument{ID: primitive.NewObjectID(), Username: "carol", Role: "user"})
	require.NoError(t, err)

	_, lookupErr := bson.Raw(raw).LookupErr("preferences")
	assert.Error(t, lookupErr)
	_, lookupErr = bson.Raw(raw).LookupErr("password")
	assert.Error(t, lookupErr)

	var out userDocument
	require.NoError(t, bson.Unmarshal(raw, &out))
	assert.Nil(t, out.toDomain().Preferences)
}

func TestGroupCountDocument_NullKey(t *testing.T) {
	raw, err := bson.Marshal(bson.D{{Key: "_id", Value: nil}, {Key: "count", Value: int32(3)}})
	require.NoError(t, err)

	var doc groupCountDocument
	require.NoError(t, bson.Unmarshal(raw, &doc))
	assert.Equal(t, []domain.GroupCount{{Key: "", Count: 3}}, toGroupCounts([]groupCountDocument{doc}))
}

func TestTopUserDocument_Decode(t *testing.T) {
	id := primitive.NewObjectID()
	raw, err := bson.Marshal(bson.D{
		{Key: "_id", Value: id},
		{Key: "taskCount", Value: int32(7)},
		{Key: "username", Value: "dave"},
		{Key: "email", Value: "dave@example.com"},
	})
	require.NoError(t, err)

	var doc topUserDocument
	require.NoError(t, bson.Unmarshal(raw, &doc))
	assert.Equal(t, topUserDocument{ID: id, Username: "dave", Email: "dave@example.com", TaskCount: 7}, doc)
}

func TestPatchDocument_WrapsValuesInLiteral(t *testing.T) {
	zone := "$preferences.theme"
	off := false
	doc := patchDocument(domain.PreferencesPatch{Timezone: &zone, WeeklyDigest: &off})

	assert.Equal(t, bson.D{
		{Key: "timezone", Value: bson.D{{Key: "$literal", Value: "$preferences.theme"}}},
		{Key: "weeklyDigest", Value: bson.D{{Key: "$literal", Value: false}}},
	}, doc)
}

func TestObjectID_RejectsMalformedHex(t *testing.T) {
	_, err := objectID("not-an-id")
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	oid := primitive.NewObjectID()
	got, err := objectID(oid.Hex())
	require.NoError(t, err)
	assert.Equal(t, oid, got)
}
