package services

import (
	"time"

	"moneyrats/internal/models"
	"moneyrats/internal/pagination"
	"moneyrats/internal/ranking"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(name, email, password string, salary float64) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
}

// GroupRanking is a group summary together with its members' ranking.
type GroupRanking struct {
	GroupID    uint            `json:"group_id"`
	Name       string          `json:"name"`
	InviteCode string          `json:"invite_code"`
	EndDate    time.Time       `json:"end_date"`
	CreatorID  uint            `json:"creator_id"`
	Expired    bool            `json:"expired"`
	Ranking    []ranking.Entry `json:"ranking"`
}

// GroupServicer defines the contract for group lifecycle and ranking.
//
// Every call that takes a group id returns ErrGroupNotFound both when the
// group does not exist and when the caller may not act on it.
type GroupServicer interface {
	CreateGroup(creatorID uint, name string, durationMonths int) (*models.Group, error)
	JoinGroup(userID uint, inviteCode string) (*models.Group, error)
	GetGroup(viewerID, groupID uint) (*models.Group, error)
	UpdateGroup(actorID, groupID uint, name string, durationMonths int) (*models.Group, error)
	DeleteGroup(actorID, groupID uint) error
	GetRanking(viewerID, groupID uint) (*GroupRanking, error)
	GetMyRanking(viewerID uint) (*GroupRanking, error)
}

// SavingsServicer defines the contract for recording savings.
type SavingsServicer interface {
	Contribute(userID uint, amount float64) (*models.User, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID uint, action, resourceType string, resourceID uint, ipAddress string, changes map[string]interface{})
	ListUserActivity(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.AuditLog], error)
}
