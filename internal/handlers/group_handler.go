package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "moneyrats/internal/errors"
	"moneyrats/internal/models"
	"moneyrats/internal/ranking"
	"moneyrats/internal/services"
)

// GroupHandler handles group lifecycle and ranking requests
type GroupHandler struct {
	groupService services.GroupServicer
	auditService services.AuditServicer
}

// NewGroupHandler creates a new GroupHandler
func NewGroupHandler(groupService services.GroupServicer, auditService services.AuditServicer) *GroupHandler {
	return &GroupHandler{groupService: groupService, auditService: auditService}
}

// GroupRequest is the payload for creating or editing a group
type GroupRequest struct {
	Name           string `json:"name" binding:"required,max=100"`
	DurationMonths int    `json:"duration_months" binding:"required,duration_months"`
}

// JoinGroupRequest is the payload for joining a group by invite code
type JoinGroupRequest struct {
	InviteCode string `json:"invite_code" binding:"required,invite_code"`
}

// GroupResponse represents a group in API responses
type GroupResponse struct {
	ID           uint           `json:"id"`
	Name         string         `json:"name"`
	InviteCode   string         `json:"invite_code"`
	CreationDate time.Time      `json:"creation_date"`
	EndDate      time.Time      `json:"end_date"`
	CreatorID    uint           `json:"creator_id"`
	Expired      bool           `json:"expired"`
	Members      []MemberResult `json:"members,omitempty"`
}

// MemberResult is a group member as seen by other members
type MemberResult struct {
	ID         uint    `json:"id"`
	Name       string  `json:"name"`
	Salary     float64 `json:"salary"`
	TotalSaved float64 `json:"total_saved"`
	Effort     float64 `json:"effort"`
}

func newGroupResponse(group *models.Group) GroupResponse {
	resp := GroupResponse{
		ID:           group.ID,
		Name:         group.Name,
		InviteCode:   group.InviteCode,
		CreationDate: group.CreationDate,
		EndDate:      group.EndDate,
		CreatorID:    group.CreatorID,
		Expired:      group.Expired(time.Now()),
	}
	for _, m := range group.Members {
		resp.Members = append(resp.Members, MemberResult{
			ID:         m.ID,
			Name:       m.Name,
			Salary:     m.Salary,
			TotalSaved: m.TotalSaved,
			Effort:     ranking.Score(m.TotalSaved, m.Salary),
		})
	}
	return resp
}

// CreateGroup handles creating a group
// @Summary     Create group
// @Description Create a savings group; the caller becomes its creator and first member
// @Tags        groups
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body GroupRequest true "Group data"
// @Success     201 {object} GroupResponse "Group created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Invite code collision"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /groups [post]
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req GroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	group, err := h.groupService.CreateGroup(userID, req.Name, req.DurationMonths)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, models.AuditActionCreateGroup, "group", group.ID, c.ClientIP(),
		map[string]interface{}{"name": group.Name, "duration_months": req.DurationMonths})

	c.JSON(http.StatusCreated, gin.H{"group": newGroupResponse(group)})
}

// JoinGroup handles joining a group by invite code
// @Summary     Join group
// @Description Join the group holding the invite code, leaving any current group
// @Tags        groups
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body JoinGroupRequest true "Invite code"
// @Success     200 {object} GroupResponse "Joined group"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Unknown invite code"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /groups/join [post]
func (h *GroupHandler) JoinGroup(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req JoinGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	group, err := h.groupService.JoinGroup(userID, req.InviteCode)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, models.AuditActionJoinGroup, "group", group.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"group": newGroupResponse(group)})
}

// GetGroup handles retrieving a group and its members
// @Summary     Get group
// @Description Get a group the caller belongs to, with its members
// @Tags        groups
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Group ID"
// @Success     200 {object} GroupResponse "Group"
// @Failure     400 {object} ErrorResponse "Invalid group ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Group not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /groups/{id} [get]
func (h *GroupHandler) GetGroup(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	groupID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	group, err := h.groupService.GetGroup(userID, groupID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"group": newGroupResponse(group)})
}

// UpdateGroup handles renaming and extending a group
// @Summary     Update group
// @Description Rename a group and reset its deadline to the given months from now (creator only)
// @Tags        groups
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int          true "Group ID"
// @Param       request body GroupRequest true "New name and duration"
// @Success     200 {object} GroupResponse "Group updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Group not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /groups/{id} [put]
func (h *GroupHandler) UpdateGroup(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	groupID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req GroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	group, err := h.groupService.UpdateGroup(userID, groupID, req.Name, req.DurationMonths)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, models.AuditActionUpdateGroup, "group", groupID, c.ClientIP(),
		map[string]interface{}{"name": group.Name, "duration_months": req.DurationMonths})

	c.JSON(http.StatusOK, gin.H{"group": newGroupResponse(group)})
}

// DeleteGroup handles deleting a group
// @Summary     Delete group
// @Description Remove all members from a group and delete it (creator only)
// @Tags        groups
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Group ID"
// @Success     200 {object} MessageResponse "Group deleted"
// @Failure     400 {object} ErrorResponse "Invalid group ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Group not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /groups/{id} [delete]
func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	groupID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.groupService.DeleteGroup(userID, groupID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, models.AuditActionDeleteGroup, "group", groupID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Group deleted successfully"})
}

// GetRanking handles retrieving a group's effort ranking
// @Summary     Get group ranking
// @Description Rank the members of a group the caller belongs to by effort
// @Tags        ranking
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Group ID"
// @Success     200 {object} services.GroupRanking "Ranking"
// @Failure     400 {object} ErrorResponse "Invalid group ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Group not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /groups/{id}/ranking [get]
func (h *GroupHandler) GetRanking(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	groupID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.groupService.GetRanking(userID, groupID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetMyRanking handles retrieving the ranking of the caller's own group
// @Summary     Get my group ranking
// @Description Rank the members of the caller's current group by effort
// @Tags        ranking
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.GroupRanking "Ranking"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Caller has no group"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /ranking [get]
func (h *GroupHandler) GetMyRanking(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.groupService.GetMyRanking(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
