package model

import "time"

const MaxMessageLength = 140

type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"size:140;not null" json:"text"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Author    *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
}
