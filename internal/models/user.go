package models

import "time"

// User represents the user model in the database
type User struct {
	Base
	Name                string     `gorm:"not null" json:"name"`
	Email               string     `gorm:"uniqueIndex;not null" json:"email"`
	Password            string     `gorm:"not null" json:"-"`
	Salary              float64    `gorm:"not null;default:0" json:"salary"`
	TotalSaved          float64    `gorm:"not null;default:0" json:"total_saved"`
	GroupID             *uint      `gorm:"index" json:"group_id"`
	FailedLoginAttempts int        `gorm:"default:0" json:"-"`
	LockedUntil         *time.Time `json:"-"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`
}

// InGroup reports whether the user currently belongs to the given group.
func (u *User) InGroup(groupID uint) bool {
	return u.GroupID != nil && *u.GroupID == groupID
}

// IsLocked reports whether login is blocked at the given instant.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}
