package model

import "time"

// Link kinds. Social links carry a platform key used to resolve the
// destination URL and the public icon; regular links do not.
const (
	LinkKindRegular = "link"
	LinkKindSocial  = "social"
)

// Link is one entry in a user's curated link collection, stored in Postgres.
// Order values sort ascending and may contain gaps or duplicates; display
// always re-sorts by (order, id) so ties break deterministically.
type Link struct {
	ID        string    `db:"id" gorm:"primaryKey;size:36"`
	UserID    string    `db:"user_id" gorm:"size:36;not null;index"`
	Title     string    `db:"title" gorm:"type:text;not null"`
	URL       string    `db:"url" gorm:"type:text;not null"`
	Kind      string    `db:"kind" gorm:"size:16;not null;default:link"`
	Platform  *string   `db:"platform" gorm:"size:32"`
	ImageURL  *string   `db:"image_url" gorm:"type:text"`
	Order     int       `db:"sort_order" gorm:"column:sort_order;not null;default:0;index"`
	Active    bool      `db:"active" gorm:"not null;default:true"`
	CreatedAt time.Time `db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `db:"updated_at" gorm:"autoUpdateTime"`
}
