// Package guard decides who may view or change a group.
//
// Decisions fail closed: a missing user or group is always denied.
package guard

import "moneyrats/internal/models"

// CanEdit reports whether user may rename, extend or delete group.
// Only the group's creator may.
func CanEdit(user *models.User, group *models.Group) bool {
	if user == nil || group == nil {
		return false
	}
	return group.CreatorID == user.ID
}

// CanView reports whether user may see group, its members and its ranking.
// Only current members may.
func CanView(user *models.User, group *models.Group) bool {
	if user == nil || group == nil {
		return false
	}
	return user.InGroup(group.ID)
}
