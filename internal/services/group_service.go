package services

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	apperrors "moneyrats/internal/errors"
	"moneyrats/internal/guard"
	"moneyrats/internal/invitecode"
	"moneyrats/internal/metrics"
	"moneyrats/internal/models"
	"moneyrats/internal/ranking"
)

// inviteCodeAttempts bounds the search for an unused invite code.
const inviteCodeAttempts = 5

// groupService handles group lifecycle and ranking.
type groupService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGroupService creates a new GroupServicer.
func NewGroupService(db *gorm.DB) GroupServicer {
	return &groupService{db: db, now: time.Now}
}

// CreateGroup creates a group owned by the creator and makes the creator
// its first member. Any previous membership of the creator is replaced.
func (s *groupService) CreateGroup(creatorID uint, name string, durationMonths int) (*models.Group, error) {
	name, err := validateGroupFields(name, durationMonths)
	if err != nil {
		return nil, err
	}

	var group *models.Group
	err = s.db.Transaction(func(tx *gorm.DB) error {
		creator, err := findUser(tx, creatorID)
		if err != nil {
			return err
		}

		code, err := allocateInviteCode(tx)
		if err != nil {
			return err
		}

		now := s.now()
		group = &models.Group{
			Name:         name,
			InviteCode:   code,
			CreationDate: now,
			EndDate:      models.DeadlineFrom(now, durationMonths),
			CreatorID:    creator.ID,
		}
		if err := tx.Create(group).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.ErrDuplicateInviteCode
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := tx.Model(creator).Update("group_id", group.ID).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.GroupsCreatedTotal.Inc()
	return group, nil
}

// JoinGroup moves the user into the group holding inviteCode. Codes are
// matched case-insensitively and ignoring surrounding whitespace.
func (s *groupService) JoinGroup(userID uint, inviteCode string) (*models.Group, error) {
	code := invitecode.Normalize(inviteCode)
	if code == "" {
		return nil, apperrors.ErrInviteCodeNotFound
	}

	var group models.Group
	err := s.db.Transaction(func(tx *gorm.DB) error {
		user, err := findUser(tx, userID)
		if err != nil {
			return err
		}

		if err := tx.Where("invite_code = ?", code).First(&group).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrInviteCodeNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := tx.Model(user).Update("group_id", group.ID).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.GroupJoinsTotal.Inc()
	return &group, nil
}

// GetGroup returns a group with its members, ordered by id, if the viewer
// belongs to it.
func (s *groupService) GetGroup(viewerID, groupID uint) (*models.Group, error) {
	viewer, err := findUser(s.db, viewerID)
	if err != nil {
		return nil, err
	}

	group, err := findGroup(s.db.Preload("Members", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}), groupID)
	if err != nil {
		return nil, err
	}

	if !guard.CanView(viewer, group) {
		return nil, apperrors.ErrGroupNotFound
	}
	return group, nil
}

// UpdateGroup renames the group and resets its deadline to durationMonths
// from now. Only the creator may do this.
func (s *groupService) UpdateGroup(actorID, groupID uint, name string, durationMonths int) (*models.Group, error) {
	name, err := validateGroupFields(name, durationMonths)
	if err != nil {
		return nil, err
	}

	var group *models.Group
	err = s.db.Transaction(func(tx *gorm.DB) error {
		actor, err := findUser(tx, actorID)
		if err != nil {
			return err
		}
		group, err = findGroup(tx, groupID)
		if err != nil {
			return err
		}
		if !guard.CanEdit(actor, group) {
			return apperrors.ErrGroupNotFound
		}

		endDate := models.DeadlineFrom(s.now(), durationMonths)
		updates := map[string]interface{}{
			"name":     name,
			"end_date": endDate,
		}
		if err := tx.Model(group).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		group.Name = name
		group.EndDate = endDate
		return nil
	})
	if err != nil {
		return nil, err
	}

	return group, nil
}

// DeleteGroup removes every member from the group and then deletes it.
// Only the creator may do this.
func (s *groupService) DeleteGroup(actorID, groupID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		actor, err := findUser(tx, actorID)
		if err != nil {
			return err
		}
		group, err := findGroup(tx, groupID)
		if err != nil {
			return err
		}
		if !guard.CanEdit(actor, group) {
			return apperrors.ErrGroupNotFound
		}

		if err := tx.Model(&models.User{}).Where("group_id = ?", group.ID).Update("group_id", nil).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(group).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// GetRanking ranks the members of a group the viewer belongs to.
func (s *groupService) GetRanking(viewerID, groupID uint) (*GroupRanking, error) {
	viewer, err := findUser(s.db, viewerID)
	if err != nil {
		return nil, err
	}
	return s.rank(viewer, groupID)
}

// GetMyRanking ranks the members of the viewer's own group.
func (s *groupService) GetMyRanking(viewerID uint) (*GroupRanking, error) {
	viewer, err := findUser(s.db, viewerID)
	if err != nil {
		return nil, err
	}
	if viewer.GroupID == nil {
		return nil, apperrors.ErrGroupNotFound
	}
	return s.rank(viewer, *viewer.GroupID)
}

func (s *groupService) rank(viewer *models.User, groupID uint) (*GroupRanking, error) {
	group, err := findGroup(s.db, groupID)
	if err != nil {
		return nil, err
	}
	if !guard.CanView(viewer, group) {
		return nil, apperrors.ErrGroupNotFound
	}

	var members []models.User
	if err := s.db.Where("group_id = ?", group.ID).Order("id ASC").Find(&members).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &GroupRanking{
		GroupID:    group.ID,
		Name:       group.Name,
		InviteCode: group.InviteCode,
		EndDate:    group.EndDate,
		CreatorID:  group.CreatorID,
		Expired:    group.Expired(s.now()),
		Ranking:    ranking.Rank(members),
	}, nil
}

// allocateInviteCode returns a fresh code not held by any group.
func allocateInviteCode(tx *gorm.DB) (string, error) {
	for i := 0; i < inviteCodeAttempts; i++ {
		code, err := invitecode.Generate()
		if err != nil {
			return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		var count int64
		if err := tx.Model(&models.Group{}).Where("invite_code = ?", code).Count(&count).Error; err != nil {
			return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", apperrors.ErrDuplicateInviteCode
}

func validateGroupFields(name string, durationMonths int) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > models.MaxGroupNameLength {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "name must be between 1 and 100 characters")
	}
	if durationMonths < models.MinDurationMonths || durationMonths > models.MaxDurationMonths {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "duration_months must be between 1 and 120")
	}
	return name, nil
}

func findUser(db *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

func findGroup(db *gorm.DB, id uint) (*models.Group, error) {
	var group models.Group
	if err := db.First(&group, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrGroupNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &group, nil
}
