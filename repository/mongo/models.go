package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fastygo/taskdesk/domain"
)

const (
	usersCollection    = "users"
	tasksCollection    = "tasks"
	commentsCollection = "comments"
)

type userDocument struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty"`
	Username    string               `bson:"username"`
	Email       string               `bson:"email"`
	Password    string               `bson:"password,omitempty"`
	Role        string               `bson:"role"`
	Preferences *preferencesDocument `bson:"preferences,omitempty"`
	CreatedAt   time.Time            `bson:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt"`
}

type preferencesDocument struct {
	Theme                       string `bson:"theme"`
	Language                    string `bson:"language"`
	Timezone                    string `bson:"timezone"`
	EmailNotifications          bool   `bson:"emailNotifications"`
	DeadlineReminders           bool   `bson:"deadlineReminders"`
	TaskAssignmentNotifications bool   `bson:"taskAssignmentNotifications"`
	WeeklyDigest                bool   `bson:"weeklyDigest"`
}

type taskDocument struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty"`
	UserID           primitive.ObjectID  `bson:"userId"`
	AssignedTo       *primitive.ObjectID `bson:"assignedTo,omitempty"`
	Title            string              `bson:"title"`
	Description      string              `bson:"description,omitempty"`
	Status           string              `bson:"status"`
	Priority         string              `bson:"priority,omitempty"`
	DueDate          *time.Time          `bson:"dueDate,omitempty"`
	OverdueEmailSent bool                `bson:"overdueEmailSent"`
	CreatedAt        time.Time           `bson:"createdAt"`
	UpdatedAt        time.Time           `bson:"updatedAt"`
}

type ownerDocument struct {
	ID       primitive.ObjectID `bson:"_id"`
	Username string             `bson:"username"`
	Email    string             `bson:"email"`
	Role     string             `bson:"role"`
}

type taskWithOwnerDocument struct {
	Task  taskDocument   `bson:",inline"`
	Owner *ownerDocument `bson:"owner,omitempty"`
}

type commentDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	TaskID    primitive.ObjectID `bson:"taskId"`
	Author    primitive.ObjectID `bson:"author"`
	Text      string             `bson:"text"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

type groupCountDocument struct {
	Key   string `bson:"_id"`
	Count int64  `bson:"count"`
}

type topUserDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	Username  string             `bson:"username"`
	Email     string             `bson:"email"`
	TaskCount int64              `bson:"taskCount"`
}

func (d *userDocument) toDomain() *domain.User {
	user := &domain.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.Password,
		Role:         domain.Role(d.Role),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	if d.Preferences != nil {
		prefs := d.Preferences.toDomain()
		user.Preferences = &prefs
	}
	return user
}

func (d *preferencesDocument) toDomain() domain.Preferences {
	return domain.Preferences{
		Theme:                       domain.Theme(d.Theme),
		Language:                    domain.Language(d.Language),
		Timezone:                    d.Timezone,
		EmailNotifications:          d.EmailNotifications,
		DeadlineReminders:           d.DeadlineReminders,
		TaskAssignmentNotifications: d.TaskAssignmentNotifications,
		WeeklyDigest:                d.WeeklyDigest,
	}
}

func newPreferencesDocument(p domain.Preferences) preferencesDocument {
	return preferencesDocument{
		Theme:                       string(p.Theme),
		Language:                    string(p.Language),
		Timezone:                    p.Timezone,
		EmailNotifications:          p.EmailNotifications,
		DeadlineReminders:           p.DeadlineReminders,
		TaskAssignmentNotifications: p.TaskAssignmentNotifications,
		WeeklyDigest:                p.WeeklyDigest,
	}
}

func (d *taskDocument) toDomain() domain.Task {
	task := domain.Task{
		ID:               d.ID.Hex(),
		UserID:           d.UserID.Hex(),
		Title:            d.Title,
		Description:      d.Description,
		Status:           domain.TaskStatus(d.Status),
		Priority:         d.Priority,
		DueDate:          d.DueDate,
		OverdueEmailSent: d.OverdueEmailSent,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
	if d.AssignedTo != nil {
		task.AssignedTo = d.AssignedTo.Hex()
	}
	return task
}

func (d *taskWithOwnerDocument) toDomain() domain.TaskWithOwner {
	item := domain.TaskWithOwner{Task: d.Task.toDomain()}
	if d.Owner != nil {
		item.Owner = &domain.TaskOwner{
			ID:       d.Owner.ID.Hex(),
			Username: d.Owner.Username,
			Email:    d.Owner.Email,
			Role:     domain.Role(d.Owner.Role),
		}
	}
	return item
}

func (d *commentDocument) toDomain() domain.Comment {
	return domain.Comment{
		ID:        d.ID.Hex(),
		TaskID:    d.TaskID.Hex(),
		AuthorID:  d.Author.Hex(),
		Text:      d.Text,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func toGroupCounts(docs []groupCountDocument) []domain.GroupCount {
	out := make([]domain.GroupCount, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.GroupCount{Key: d.Key, Count: d.Count})
	}
	return out
}
