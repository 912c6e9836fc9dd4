package services

import (
	"strings"
	"testing"

	"moneyrats/internal/models"
	"moneyrats/internal/pagination"
	"moneyrats/internal/testutil"
)

func TestAuditLog(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAuditService(db)
	user := testutil.CreateTestUser(t, db)

	svc.Log(user.ID, models.AuditActionContribute, "user", user.ID, "127.0.0.1", map[string]any{"amount": 25.5})

	var entry models.AuditLog
	if err := db.Where("user_id = ?", user.ID).First(&entry).Error; err != nil {
		t.Fatalf("expected audit entry: %v", err)
	}
	if entry.Action != models.AuditActionContribute {
		t.Errorf("expected action %q, got %q", models.AuditActionContribute, entry.Action)
	}
	if !strings.Contains(entry.Changes, `"amount":25.5`) {
		t.Errorf("expected changes JSON, got %q", entry.Changes)
	}
}

func TestAuditLog_FailureDoesNotPanic(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewAuditService(db)
	testutil.TeardownTestDB(t, db)

	svc.Log(1, models.AuditActionLogin, "user", 1, "", nil)
}

func TestListUserActivity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAuditService(db)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)

	for i := 0; i < 5; i++ {
		svc.Log(user.ID, models.AuditActionContribute, "user", user.ID, "", nil)
	}
	svc.Log(other.ID, models.AuditActionLogin, "user", other.ID, "", nil)

	page, err := svc.ListUserActivity(user.ID, pagination.PageRequest{Page: 1, PageSize: 2})
	testutil.AssertNoError(t, err)

	if page.TotalItems != 5 {
		t.Errorf("expected 5 entries, got %d", page.TotalItems)
	}
	if page.TotalPages != 3 {
		t.Errorf("expected 3 pages, got %d", page.TotalPages)
	}
	if len(page.Data) != 2 {
		t.Fatalf("expected 2 entries on the page, got %d", len(page.Data))
	}
	if page.Data[0].ID < page.Data[1].ID {
		t.Error("expected newest entries first")
	}

	empty, err := svc.ListUserActivity(9999, pagination.PageRequest{})
	testutil.AssertNoError(t, err)
	if empty.Data == nil || len(empty.Data) != 0 {
		t.Error("expected empty, non-nil page data")
	}
	if empty.PageSize != 20 {
		t.Errorf("expected default page size 20, got %d", empty.PageSize)
	}
}
