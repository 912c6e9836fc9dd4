package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "moneyrats/internal/errors"
	"moneyrats/internal/models"
	"moneyrats/internal/services"
)

// SavingsHandler handles savings contributions
type SavingsHandler struct {
	savingsService services.SavingsServicer
	auditService   services.AuditServicer
}

// NewSavingsHandler creates a new SavingsHandler
func NewSavingsHandler(savingsService services.SavingsServicer, auditService services.AuditServicer) *SavingsHandler {
	return &SavingsHandler{savingsService: savingsService, auditService: auditService}
}

// ContributionRequest is the payload for recording a contribution
type ContributionRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// Contribute handles recording a savings contribution
// @Summary     Add contribution
// @Description Add an amount to the caller's saved total
// @Tags        savings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ContributionRequest true "Contribution"
// @Success     200 {object} UserResponse "Updated profile"
// @Failure     400 {object} ErrorResponse "Invalid amount"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     422 {object} ErrorResponse "Group deadline has passed"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /savings/contributions [post]
func (h *SavingsHandler) Contribute(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ContributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.savingsService.Contribute(userID, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, models.AuditActionContribute, "user", userID, c.ClientIP(),
		map[string]interface{}{"amount": req.Amount, "total_saved": user.TotalSaved})

	c.JSON(http.StatusOK, gin.H{"user": newUserResponse(user)})
}
