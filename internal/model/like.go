package model

import "time"

// Like is an edge between a user and a message written by someone else.
type Like struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	MessageID uint      `gorm:"primaryKey;autoIncrement:false;index" json:"message_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Message   *Message  `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
