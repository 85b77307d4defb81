package dto

import "time"

type BeginSessionInput struct {
	UserID string
	BookID string
	Page   int
}

type RecordEngagementInput struct {
	UserID  string
	BookID  string
	Page    int
	Seconds int
}

type EngagementOutput struct {
	Recorded     bool   `json:"recorded"`
	BookID       string `json:"book_id"`
	Page         int    `json:"page"`
	Seconds      int    `json:"seconds"`
	PointsEarned int    `json:"points_earned"`
	Date         string `json:"date,omitempty"`
}

type UpdateProgressInput struct {
	UserID      string
	BookID      string
	CurrentPage int
	TotalPages  int
}

type BookRefInput struct {
	UserID string
	BookID string
}

type ProgressOutput struct {
	BookID               string    `json:"book_id"`
	CurrentPage          int       `json:"current_page"`
	TotalPages           int       `json:"total_pages"`
	CompletionPercentage float64   `json:"completion_percentage"`
	IsCompleted          bool      `json:"is_completed"`
	LastReadAt           time.Time `json:"last_read_at"`
	CompletedAt          time.Time `json:"completed_at,omitzero"`
}

type ProfileOutput struct {
	UserID          string `json:"user_id"`
	TotalPoints     int    `json:"total_points"`
	BooksCompleted  int    `json:"books_completed"`
	BooksInProgress int    `json:"books_in_progress"`
}
