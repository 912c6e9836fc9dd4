package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"moneyrats/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword is the plaintext password of every fixture user.
const TestPassword = "password123"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password, unique email and
// no salary.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUserWithSalary(t, db, 0)
}

// CreateTestUserWithSalary creates a user earning salary.
func CreateTestUserWithSalary(t *testing.T, db *gorm.DB, salary float64) *models.User {
	t.Helper()
	n := nextID()
	return CreateTestUserWithEmail(t, db, fmt.Sprintf("user%d@test.com", n), fmt.Sprintf("User %d", n), salary)
}

// CreateTestUserWithEmail creates a user with the given email, name and salary.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email, name string, salary float64) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: string(hash),
		Salary:   salary,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestGroup creates a group owned by creator that ends one month from
// now, and makes the creator a member.
func CreateTestGroup(t *testing.T, db *gorm.DB, creator *models.User) *models.Group {
	t.Helper()
	return CreateTestGroupEndingAt(t, db, creator, time.Now().Add(models.MonthLength))
}

// CreateTestGroupEndingAt creates a group with the given deadline and makes
// the creator a member.
func CreateTestGroupEndingAt(t *testing.T, db *gorm.DB, creator *models.User, endDate time.Time) *models.Group {
	t.Helper()

	n := nextID()
	group := &models.Group{
		Name:         fmt.Sprintf("Test Group %d", n),
		InviteCode:   fmt.Sprintf("%08X", n),
		CreationDate: time.Now(),
		EndDate:      endDate,
		CreatorID:    creator.ID,
	}
	if err := db.Create(group).Error; err != nil {
		t.Fatalf("failed to create test group: %v", err)
	}
	AddTestMember(t, db, creator, group)
	return group
}

// AddTestMember moves user into group.
func AddTestMember(t *testing.T, db *gorm.DB, user *models.User, group *models.Group) {
	t.Helper()

	if err := db.Model(user).Update("group_id", group.ID).Error; err != nil {
		t.Fatalf("failed to add test member: %v", err)
	}
	id := group.ID
	user.GroupID = &id
}

// SetTotalSaved overwrites the saved total of user.
func SetTotalSaved(t *testing.T, db *gorm.DB, user *models.User, total float64) {
	t.Helper()

	if err := db.Model(user).Update("total_saved", total).Error; err != nil {
		t.Fatalf("failed to set total saved: %v", err)
	}
	user.TotalSaved = total
}

// ReloadUser reads user id back from the database.
func ReloadUser(t *testing.T, db *gorm.DB, id uint) *models.User {
	t.Helper()

	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		t.Fatalf("failed to reload user %d: %v", id, err)
	}
	return &user
}
