package domain

import "time"

// RecentWindow is the trailing period used by the "recent" counters in SystemStats.
const RecentWindow = 7 * 24 * time.Hour

// TopUsersLimit caps the most-active-users ranking.
const TopUsersLimit = 5

// GroupCount is one bucket of a group-by-with-count aggregation.
type GroupCount struct {
	Key   string `json:"_id"`
	Count int64  `json:"count"`
}

// TopUser is a user ranked by the number of tasks they own.
type TopUser struct {
	UserID    string `json:"_id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	TaskCount int64  `json:"taskCount"`
}

type UserStats struct {
	Total               int64        `json:"total"`
	ByRole              []GroupCount `json:"byRole"`
	RecentRegistrations int64        `json:"recentRegistrations"`
}

type TaskStats struct {
	Total           int64        `json:"total"`
	ByStatus        []GroupCount `json:"byStatus"`
	ByPriority      []GroupCount `json:"byPriority"`
	RecentlyCreated int64        `json:"recentlyCreated"`
}

// SystemStats is a snapshot assembled from independent reads; fields may disagree slightly under concurrent writes.
type SystemStats struct {
	Users       UserStats `json:"users"`
	Tasks       TaskStats `json:"tasks"`
	TopUsers    []TopUser `json:"topUsers"`
	WindowStart time.Time `json:"windowStart"`
	GeneratedAt time.Time `json:"generatedAt"`
}
