package models

// Audit actions.
const (
	AuditActionRegister    = "register"
	AuditActionLogin       = "login"
	AuditActionLogout      = "logout"
	AuditActionCreateGroup = "create_group"
	AuditActionJoinGroup   = "join_group"
	AuditActionUpdateGroup = "update_group"
	AuditActionDeleteGroup = "delete_group"
	AuditActionContribute  = "contribute"
)

// AuditLog records sensitive user operations for security and compliance.
type AuditLog struct {
	Base
	UserID       uint   `gorm:"not null;index" json:"user_id"`
	Action       string `gorm:"not null" json:"action"`
	ResourceType string `gorm:"not null" json:"resource_type"`
	ResourceID   uint   `json:"resource_id"`
	IPAddress    string `json:"ip_address"`
	Changes      string `json:"changes,omitempty"`
}
