package model

import "time"

// ViewEvent represents one public profile page view.
type ViewEvent struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	UserID    string    `json:"user_id" gorm:"size:36;not null;index"`
	Username  string    `json:"username" gorm:"size:30;not null"`
	IP        string    `json:"ip" gorm:"size:64"`
	UserAgent string    `json:"user_agent" gorm:"type:text"`
	Timestamp time.Time `json:"timestamp" gorm:"index"`
}

const (
	ViewStreamName     = "VIEWS"
	ViewStreamSubject  = "views.events"
	ViewConsumerName   = "view-logger"
	ViewStreamMaxBytes = 1024 * 1024 * 100 // 100MB
)
