package models

import "time"

// MonthLength is the fixed month used for group deadlines.
const MonthLength = 30 * 24 * time.Hour

// Limits on group fields.
const (
	MaxGroupNameLength = 100
	MinDurationMonths  = 1
	MaxDurationMonths  = 120
)

// Group is a savings challenge shared by its members until EndDate.
type Group struct {
	Base
	Name         string    `gorm:"not null" json:"name"`
	InviteCode   string    `gorm:"size:16;uniqueIndex;not null" json:"invite_code"`
	CreationDate time.Time `gorm:"not null" json:"creation_date"`
	EndDate      time.Time `gorm:"not null" json:"end_date"`
	CreatorID    uint      `gorm:"not null;index" json:"creator_id"`

	// Relationships
	Members []User `gorm:"foreignKey:GroupID" json:"members,omitempty"`
}

// Expired reports whether the deadline has passed at the given instant.
func (g *Group) Expired(now time.Time) bool {
	return now.After(g.EndDate)
}

// DeadlineFrom returns the deadline durationMonths fixed-length months after start.
func DeadlineFrom(start time.Time, durationMonths int) time.Time {
	return start.Add(time.Duration(durationMonths) * MonthLength)
}
