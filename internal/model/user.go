package model

import "time"

const (
	DefaultImageURL       = "/static/images/default-pic.png"
	DefaultHeaderImageURL = "/static/images/warbler-hero.jpg"
)

type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"size:64;not null;uniqueIndex" json:"username"`
	Email          string    `gorm:"size:128;not null;uniqueIndex" json:"email"`
	PasswordHash   string    `gorm:"size:255;not null" json:"-"`
	ImageURL       string    `gorm:"size:255;not null" json:"image_url"`
	HeaderImageURL string    `gorm:"size:255;not null" json:"header_image_url"`
	Bio            string    `gorm:"type:text" json:"bio"`
	Location       string    `gorm:"size:128" json:"location"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ApplyProfileDefaults fills empty optional profile fields.
func (u *User) ApplyProfileDefaults() {
	if u.ImageURL == "" {
		u.ImageURL = DefaultImageURL
	}
	if u.HeaderImageURL == "" {
		u.HeaderImageURL = DefaultHeaderImageURL
	}
}

// UserStats holds the counters shown on a profile page.
type UserStats struct {
	Messages  int64 `json:"messages"`
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
	Likes     int64 `json:"likes"`
}
