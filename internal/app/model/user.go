package model

import "time"

// User is an account owning a link collection and a public profile page.
// Color and image fields are nullable so "unset" renders with theme defaults.
type User struct {
	ID            string    `db:"id" gorm:"primaryKey;size:36"`
	Email         string    `db:"email" gorm:"size:255;not null;uniqueIndex"`
	Username      string    `db:"username" gorm:"size:30;not null;uniqueIndex"`
	Password      string    `db:"password" gorm:"type:text;not null"`
	DisplayName   *string   `db:"display_name" gorm:"size:255"`
	Bio           *string   `db:"bio" gorm:"type:text"`
	ImageURL      *string   `db:"image_url" gorm:"type:text"`
	BackgroundURL *string   `db:"background_url" gorm:"type:text"`
	CursorURL     *string   `db:"cursor_url" gorm:"type:text"`
	BgColor       *string   `db:"bg_color" gorm:"size:32"`
	TextColor     *string   `db:"text_color" gorm:"size:32"`
	AccentColor   *string   `db:"accent_color" gorm:"size:32"`
	ProfileViews  int64     `db:"profile_views" gorm:"not null;default:0"`
	CreatedAt     time.Time `db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time `db:"updated_at" gorm:"autoUpdateTime"`
}
