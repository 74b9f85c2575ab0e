package admin

import "github.com/fastygo/taskdesk/domain"

// UserQuery filters ListUsers. Page and Limit are 1-indexed and validated by domain.NewPage.
type UserQuery struct {
	Role   string
	Search string
	Page   int
	Limit  int
}

type UserList struct {
	Users      []domain.User
	Pagination domain.Pagination
}

type UserDetails struct {
	User      *domain.User        `json:"user"`
	TaskStats []domain.GroupCount `json:"taskStats"`
}

type RoleChange struct {
	UserID   string      `json:"userId"`
	Username string      `json:"username"`
	OldRole  domain.Role `json:"oldRole"`
	NewRole  domain.Role `json:"newRole"`
}

type UserDeletion struct {
	DeletedUser       string `json:"deletedUser"`
	DeletedTasksCount int64  `json:"deletedTasksCount"`
}

type TaskQuery struct {
	Status   string
	Priority string
	UserID   string
	Page     int
	Limit    int
}

type TaskList struct {
	Tasks      []domain.TaskWithOwner
	Pagination domain.Pagination
}

type TaskDeletion struct {
	DeletedTask string `json:"deletedTask"`
	TaskID      string `json:"taskId"`
}
