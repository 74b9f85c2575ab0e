package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, r := range Roles {
		got, err := ParseRole(string(r))
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}

	_, err := ParseRole("superuser")
	require.Error(t, err)
	assert.Equal(t, "invalid role. Allowed: user, premium, admin", err.Error())
}

func TestRoleIsUpgrade(t *testing.T) {
	assert.False(t, RoleUser.IsUpgrade())
	assert.True(t, RolePremium.IsUpgrade())
	assert.True(t, RoleAdmin.IsUpgrade())
}

func TestTaskValidate(t *testing.T) {
	task := &Task{UserID: "u1", Title: "  ship it  "}
	require.NoError(t, task.Validate())
	assert.Equal(t, "ship it", task.Title)
	assert.Equal(t, StatusTodo, task.Status)

	short := &Task{UserID: "u1", Title: "ab"}
	assert.True(t, IsDomainError(short.Validate(), ErrCodeInvalid))

	badStatus := &Task{UserID: "u1", Title: "valid", Status: "blocked"}
	err := badStatus.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "todo, in-progress, done")
}

func TestTaskIsOverdue(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.True(t, (&Task{Status: StatusTodo, DueDate: &past}).IsOverdue(now))
	assert.False(t, (&Task{Status: StatusDone, DueDate: &past}).IsOverdue(now))
	assert.False(t, (&Task{Status: StatusTodo, DueDate: &future}).IsOverdue(now))
	assert.False(t, (&Task{Status: StatusTodo}).IsOverdue(now))
}
