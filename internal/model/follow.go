package model

import "time"

// Follow is a directed edge: FollowerID receives FollowedID's messages.
// The composite primary key keeps edges unique per pair.
type Follow struct {
	FollowerID uint      `gorm:"primaryKey;autoIncrement:false" json:"follower_id"`
	FollowedID uint      `gorm:"primaryKey;autoIncrement:false;index" json:"followed_id"`
	Follower   *User     `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE" json:"-"`
	Followed   *User     `gorm:"foreignKey:FollowedID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}
