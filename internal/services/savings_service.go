package services

import (
	"errors"
	"math"
	"time"

	"gorm.io/gorm"

	apperrors "moneyrats/internal/errors"
	"moneyrats/internal/metrics"
	"moneyrats/internal/models"
)

// savingsService records savings contributions.
type savingsService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewSavingsService creates a new SavingsServicer.
func NewSavingsService(db *gorm.DB) SavingsServicer {
	return &savingsService{db: db, now: time.Now}
}

// Contribute adds amount to the user's saved total. Members of a group whose
// deadline has passed can no longer contribute.
func (s *savingsService) Contribute(userID uint, amount float64) (*models.User, error) {
	if !(amount > 0) || math.IsInf(amount, 0) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be a positive number")
	}

	var user *models.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		user, err = findUser(tx, userID)
		if err != nil {
			return err
		}

		if user.GroupID != nil {
			group, err := findGroup(tx, *user.GroupID)
			switch {
			case errors.Is(err, apperrors.ErrGroupNotFound):
				// Dangling membership; nothing to enforce.
			case err != nil:
				return err
			case group.Expired(s.now()):
				return apperrors.ErrGroupExpired
			}
		}

		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).
			Update("total_saved", gorm.Expr("total_saved + ?", amount)).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := tx.First(user, user.ID).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ContributionsTotal.Inc()
	metrics.ContributedAmountTotal.Add(amount)
	return user, nil
}
