package services

import (
	"testing"
	"time"

	"moneyrats/internal/testutil"

	"golang.org/x/crypto/bcrypt"
)

func newTestUserService(t *testing.T) (UserServicer, func()) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return NewUserService(db, DefaultLockoutPolicy()), func() { testutil.TeardownTestDB(t, db) }
}

func TestCreateUser(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		svc, done := newTestUserService(t)
		defer done()

		user, err := svc.CreateUser("Alice", "alice@example.com", "password123", 3000)
		testutil.AssertNoError(t, err)

		if user.ID == 0 {
			t.Fatal("expected non-zero user ID")
		}
		if user.Name != "Alice" {
			t.Errorf("expected name Alice, got %s", user.Name)
		}
		if user.Salary != 3000 {
			t.Errorf("expected salary 3000, got %v", user.Salary)
		}
		if user.TotalSaved != 0 {
			t.Errorf("expected nothing saved yet, got %v", user.TotalSaved)
		}
		if user.GroupID != nil {
			t.Error("expected new user to have no group")
		}
	})

	t.Run("duplicate_email", func(t *testing.T) {
		svc, done := newTestUserService(t)
		defer done()

		_, err := svc.CreateUser("A", "dup@example.com", "password123", 0)
		testutil.AssertNoError(t, err)

		_, err = svc.CreateUser("B", "DUP@example.com ", "password456", 0)
		testutil.AssertAppError(t, err, "DUPLICATE_EMAIL")
	})

	t.Run("empty_email", func(t *testing.T) {
		svc, done := newTestUserService(t)
		defer done()

		_, err := svc.CreateUser("A", "", "password123", 0)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("empty_password", func(t *testing.T) {
		svc, done := newTestUserService(t)
		defer done()

		_, err := svc.CreateUser("A", "test@example.com", "", 0)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("empty_name", func(t *testing.T) {
		svc, done := newTestUserService(t)
		defer done()

		_, err := svc.CreateUser("   ", "test@example.com", "password123", 0)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("negative_salary", func(t *testing.T) {
		svc, done := newTestUserService(t)
		defer done()

		_, err := svc.CreateUser("A", "test@example.com", "password123", -1)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("email_normalized_to_lowercase", func(t *testing.T) {
		svc, done := newTestUserService(t)
		defer done()

		user, err := svc.CreateUser("Alice", "  Alice@EXAMPLE.COM", "password123", 0)
		testutil.AssertNoError(t, err)

		if user.Email != "alice@example.com" {
			t.Errorf("expected lowercased email, got %s", user.Email)
		}
	})
}

func TestCreateUser_password_is_hashed(t *testing.T) {
	svc, done := newTestUserService(t)
	defer done()

	user, err := svc.CreateUser("Hash", "hash@example.com", "mypassword", 0)
	testutil.AssertNoError(t, err)

	if user.Password == "mypassword" {
		t.Error("password should be hashed, not stored as plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("mypassword")); err != nil {
		t.Error("password hash should be valid bcrypt")
	}
}

func TestGetUserByEmail(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, DefaultLockoutPolicy())

		created := testutil.CreateTestUserWithEmail(t, db, "found@example.com", "Found", 0)
		user, err := svc.GetUserByEmail("FOUND@example.com")
		testutil.AssertNoError(t, err)

		if user.ID != created.ID {
			t.Errorf("expected user ID %d, got %d", created.ID, user.ID)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		svc, done := newTestUserService(t)
		defer done()

		_, err := svc.GetUserByEmail("nonexistent@example.com")
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}

func TestGetUserByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, DefaultLockoutPolicy())

		created := testutil.CreateTestUser(t, db)
		user, err := svc.GetUserByID(created.ID)
		testutil.AssertNoError(t, err)

		if user.Email != created.Email {
			t.Errorf("expected email %s, got %s", created.Email, user.Email)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		svc, done := newTestUserService(t)
		defer done()

		_, err := svc.GetUserByID(99999)
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}

func TestVerifyPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db, DefaultLockoutPolicy())

	user := testutil.CreateTestUser(t, db)
	if !svc.VerifyPassword(user, testutil.TestPassword) {
		t.Error("expected password verification to succeed")
	}
	if svc.VerifyPassword(user, "wrongpassword") {
		t.Error("expected password verification to fail")
	}
}

func TestAttemptLogin(t *testing.T) {
	t.Run("success_resets_attempts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, DefaultLockoutPolicy())

		_, err := svc.CreateUser("Login", "login@example.com", "password123", 0)
		testutil.AssertNoError(t, err)

		db.Exec("UPDATE users SET failed_login_attempts = 3 WHERE email = ?", "login@example.com")

		user, err := svc.AttemptLogin("login@example.com", "password123")
		testutil.AssertNoError(t, err)

		if user.FailedLoginAttempts != 0 {
			t.Errorf("expected 0 failed attempts after success, got %d", user.FailedLoginAttempts)
		}
		if user.LastLoginAt == nil {
			t.Error("expected LastLoginAt to be set after successful login")
		}

		stored, _ := svc.GetUserByEmail("login@example.com")
		if stored.FailedLoginAttempts != 0 {
			t.Errorf("expected reset to be persisted, got %d", stored.FailedLoginAttempts)
		}
	})

	t.Run("wrong_password_increments_attempts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, DefaultLockoutPolicy())

		_, err := svc.CreateUser("Fail", "fail@example.com", "password123", 0)
		testutil.AssertNoError(t, err)

		_, err = svc.AttemptLogin("fail@example.com", "wrongpassword")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")

		user, _ := svc.GetUserByEmail("fail@example.com")
		if user.FailedLoginAttempts != 1 {
			t.Errorf("expected 1 failed attempt, got %d", user.FailedLoginAttempts)
		}
	})

	t.Run("lockout_after_max_failures", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, LockoutPolicy{MaxAttempts: 3, Duration: time.Hour})

		_, err := svc.CreateUser("Lock", "lockout@example.com", "password123", 0)
		testutil.AssertNoError(t, err)

		for i := 0; i < 3; i++ {
			_, err = svc.AttemptLogin("lockout@example.com", "wrong")
			testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
		}

		user, _ := svc.GetUserByEmail("lockout@example.com")
		if user.LockedUntil == nil {
			t.Fatal("expected LockedUntil to be set after 3 failures")
		}
		if !user.LockedUntil.After(time.Now().Add(50 * time.Minute)) {
			t.Error("expected LockedUntil to be about an hour away")
		}

		_, err = svc.AttemptLogin("lockout@example.com", "password123")
		testutil.AssertAppError(t, err, "ACCOUNT_LOCKED")
	})

	t.Run("expired_lock_allows_login", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, DefaultLockoutPolicy())

		_, err := svc.CreateUser("Old", "old@example.com", "password123", 0)
		testutil.AssertNoError(t, err)

		db.Exec("UPDATE users SET locked_until = ? WHERE email = ?", time.Now().Add(-time.Minute), "old@example.com")

		user, err := svc.AttemptLogin("old@example.com", "password123")
		testutil.AssertNoError(t, err)
		if user.LockedUntil != nil {
			t.Error("expected lock to be cleared")
		}
	})

	t.Run("locked_account_returns_error", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, DefaultLockoutPolicy())

		_, err := svc.CreateUser("Locked", "locked@example.com", "password123", 0)
		testutil.AssertNoError(t, err)

		lockUntil := time.Now().Add(15 * time.Minute)
		db.Exec("UPDATE users SET locked_until = ? WHERE email = ?", lockUntil, "locked@example.com")

		_, err = svc.AttemptLogin("locked@example.com", "password123")
		testutil.AssertAppError(t, err, "ACCOUNT_LOCKED")
	})

	t.Run("nonexistent_user", func(t *testing.T) {
		svc, done := newTestUserService(t)
		defer done()

		_, err := svc.AttemptLogin("nobody@example.com", "password123")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})
}
