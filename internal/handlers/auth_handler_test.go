package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "moneyrats/internal/errors"
	"moneyrats/internal/models"
	"moneyrats/internal/pagination"
	"moneyrats/internal/session"
	"moneyrats/internal/validator"
)

// --- mock services ---

type mockUserService struct {
	createUserFn     func(name, email, password string, salary float64) (*models.User, error)
	getUserByEmailFn func(email string) (*models.User, error)
	getUserByIDFn    func(id uint) (*models.User, error)
	verifyPasswordFn func(user *models.User, password string) bool
	attemptLoginFn   func(email, password string) (*models.User, error)
}

func (m *mockUserService) CreateUser(name, email, password string, salary float64) (*models.User, error) {
	if m.createUserFn != nil {
		return m.createUserFn(name, email, password, salary)
	}
	return &models.User{}, nil
}

func (m *mockUserService) GetUserByEmail(email string) (*models.User, error) {
	if m.getUserByEmailFn != nil {
		return m.getUserByEmailFn(email)
	}
	return &models.User{}, nil
}

func (m *mockUserService) GetUserByID(id uint) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(id)
	}
	return &models.User{}, nil
}

func (m *mockUserService) VerifyPassword(user *models.User, password string) bool {
	if m.verifyPasswordFn != nil {
		return m.verifyPasswordFn(user, password)
	}
	return true
}

func (m *mockUserService) AttemptLogin(email, password string) (*models.User, error) {
	if m.attemptLoginFn != nil {
		return m.attemptLoginFn(email, password)
	}
	return &models.User{}, nil
}

type mockAuditService struct {
	actions            []string
	listUserActivityFn func(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.AuditLog], error)
}

func (m *mockAuditService) Log(_ uint, action, _ string, _ uint, _ string, _ map[string]interface{}) {
	m.actions = append(m.actions, action)
}

func (m *mockAuditService) ListUserActivity(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.AuditLog], error) {
	if m.listUserActivityFn != nil {
		return m.listUserActivityFn(userID, page)
	}
	result := pagination.NewPageResponse[models.AuditLog](nil, pagination.PageRequest{Page: 1, PageSize: pagination.DefaultPageSize}, 0)
	return &result, nil
}

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func newTestSessions() *session.Manager {
	return session.NewManager("test-secret", time.Hour, nil)
}

func setupAuthRouter(handler *AuthHandler) *gin.Engine {
	r := gin.New()
	r.POST("/auth/register", handler.Register)
	r.POST("/auth/login", handler.Login)
	r.POST("/auth/logout", injectUserID(1), handler.Logout)
	r.GET("/profile", injectUserID(1), handler.GetProfile)
	r.GET("/profile/activity", injectUserID(1), handler.GetActivity)
	return r
}

func injectUserID(uid uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	return nil
}

// --- tests ---

func TestAuthHandler_Register(t *testing.T) {
	t.Run("returns 201 with session", func(t *testing.T) {
		userSvc := &mockUserService{
			createUserFn: func(name, email, _ string, salary float64) (*models.User, error) {
				return &models.User{Base: models.Base{ID: 1}, Name: name, Email: email, Salary: salary}, nil
			},
		}
		audit := &mockAuditService{}
		sessions := newTestSessions()
		r := setupAuthRouter(NewAuthHandler(userSvc, audit, sessions, false))

		rec := doRequest(r, "POST", "/auth/register",
			`{"name":"Ana","email":"ana@example.com","password":"password123","salary":2500}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		token, _ := result["token"].(string)
		if token == "" {
			t.Fatal("expected non-empty token")
		}
		if _, err := sessions.Validate(context.Background(), token); err != nil {
			t.Errorf("expected a valid session token: %v", err)
		}

		cookie := sessionCookie(rec)
		if cookie == nil || cookie.Value != token {
			t.Fatal("expected session cookie carrying the token")
		}
		if !cookie.HttpOnly {
			t.Error("expected HttpOnly session cookie")
		}

		user := result["user"].(map[string]interface{})
		if user["email"] != "ana@example.com" || user["salary"] != float64(2500) {
			t.Errorf("unexpected user payload: %v", user)
		}
		if user["password"] != nil {
			t.Error("password must never be serialized")
		}
		if len(audit.actions) != 1 || audit.actions[0] != models.AuditActionRegister {
			t.Errorf("expected register audit entry, got %v", audit.actions)
		}
	})

	t.Run("returns 400 on missing email", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}, &mockAuditService{}, newTestSessions(), false))

		rec := doRequest(r, "POST", "/auth/register", `{"name":"Ana","password":"password123"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on short password", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}, &mockAuditService{}, newTestSessions(), false))

		rec := doRequest(r, "POST", "/auth/register", `{"name":"Ana","email":"ana@example.com","password":"short"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on negative salary", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}, &mockAuditService{}, newTestSessions(), false))

		rec := doRequest(r, "POST", "/auth/register",
			`{"name":"Ana","email":"ana@example.com","password":"password123","salary":-10}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 409 on duplicate email", func(t *testing.T) {
		userSvc := &mockUserService{
			createUserFn: func(_, _, _ string, _ float64) (*models.User, error) {
				return nil, apperrors.ErrDuplicateEmail
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, &mockAuditService{}, newTestSessions(), false))

		rec := doRequest(r, "POST", "/auth/register",
			`{"name":"Ana","email":"dup@example.com","password":"password123"}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "DUPLICATE_EMAIL")
		if sessionCookie(rec) != nil {
			t.Error("no session should be started on failure")
		}
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		userSvc := &mockUserService{
			attemptLoginFn: func(email, _ string) (*models.User, error) {
				return &models.User{Base: models.Base{ID: 1}, Email: email, Name: "Test"}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupAuthRouter(NewAuthHandler(userSvc, audit, newTestSessions(), true))

		rec := doRequest(r, "POST", "/auth/login", `{"email":"test@example.com","password":"password123"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if token, _ := parseJSON(t, rec)["token"].(string); token == "" {
			t.Error("expected non-empty token")
		}
		cookie := sessionCookie(rec)
		if cookie == nil || !cookie.Secure {
			t.Error("expected secure session cookie")
		}
		if len(audit.actions) != 1 || audit.actions[0] != models.AuditActionLogin {
			t.Errorf("expected login audit entry, got %v", audit.actions)
		}
	})

	t.Run("returns 401 on invalid credentials", func(t *testing.T) {
		userSvc := &mockUserService{
			attemptLoginFn: func(_, _ string) (*models.User, error) {
				return nil, apperrors.ErrInvalidCredentials
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, &mockAuditService{}, newTestSessions(), false))

		rec := doRequest(r, "POST", "/auth/login", `{"email":"test@example.com","password":"wrong"}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_CREDENTIALS")
	})

	t.Run("returns 423 on locked account", func(t *testing.T) {
		userSvc := &mockUserService{
			attemptLoginFn: func(_, _ string) (*models.User, error) {
				return nil, apperrors.ErrAccountLocked
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, &mockAuditService{}, newTestSessions(), false))

		rec := doRequest(r, "POST", "/auth/login", `{"email":"locked@example.com","password":"password123"}`)

		if rec.Code != http.StatusLocked {
			t.Fatalf("expected 423, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "ACCOUNT_LOCKED")
	})

	t.Run("returns 400 on missing fields", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}, &mockAuditService{}, newTestSessions(), false))

		rec := doRequest(r, "POST", "/auth/login", `{}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	audit := &mockAuditService{}
	r := setupAuthRouter(NewAuthHandler(&mockUserService{}, audit, newTestSessions(), false))

	rec := doRequest(r, "POST", "/auth/logout", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	cookie := sessionCookie(rec)
	if cookie == nil || cookie.MaxAge >= 0 {
		t.Error("expected session cookie to be cleared")
	}
	if len(audit.actions) != 1 || audit.actions[0] != models.AuditActionLogout {
		t.Errorf("expected logout audit entry, got %v", audit.actions)
	}
}

func TestAuthHandler_GetProfile(t *testing.T) {
	t.Run("returns 200 with user profile", func(t *testing.T) {
		groupID := uint(9)
		userSvc := &mockUserService{
			getUserByIDFn: func(id uint) (*models.User, error) {
				return &models.User{
					Base:       models.Base{ID: id},
					Name:       "John",
					Email:      "test@example.com",
					Salary:     2000,
					TotalSaved: 500,
					GroupID:    &groupID,
				}, nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, &mockAuditService{}, newTestSessions(), false))

		rec := doRequest(r, "GET", "/profile", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		user := parseJSON(t, rec)["user"].(map[string]interface{})
		if user["name"] != "John" {
			t.Errorf("expected John, got %v", user["name"])
		}
		if user["effort"] != float64(25) {
			t.Errorf("expected effort 25, got %v", user["effort"])
		}
		if user["group_id"] != float64(9) {
			t.Errorf("expected group 9, got %v", user["group_id"])
		}
	})

	t.Run("returns 401 without auth", func(t *testing.T) {
		handler := NewAuthHandler(&mockUserService{}, &mockAuditService{}, newTestSessions(), false)
		r := gin.New()
		r.GET("/profile", handler.GetProfile)

		rec := doRequest(r, "GET", "/profile", "")

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("returns 404 when user not found", func(t *testing.T) {
		userSvc := &mockUserService{
			getUserByIDFn: func(_ uint) (*models.User, error) {
				return nil, apperrors.ErrUserNotFound
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, &mockAuditService{}, newTestSessions(), false))

		rec := doRequest(r, "GET", "/profile", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestAuthHandler_GetActivity(t *testing.T) {
	t.Run("passes pagination", func(t *testing.T) {
		var gotPage pagination.PageRequest
		audit := &mockAuditService{
			listUserActivityFn: func(_ uint, page pagination.PageRequest) (*pagination.PageResponse[models.AuditLog], error) {
				gotPage = page
				result := pagination.NewPageResponse([]models.AuditLog{{Action: models.AuditActionLogin}}, page, 1)
				return &result, nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}, audit, newTestSessions(), false))

		rec := doRequest(r, "GET", "/profile/activity?page=2&page_size=5", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotPage.Page != 2 || gotPage.PageSize != 5 {
			t.Errorf("expected page 2 size 5, got %+v", gotPage)
		}
	})

	t.Run("rejects oversized page", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}, &mockAuditService{}, newTestSessions(), false))

		rec := doRequest(r, "GET", "/profile/activity?page_size=1000", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 500 on service failure", func(t *testing.T) {
		audit := &mockAuditService{
			listUserActivityFn: func(_ uint, _ pagination.PageRequest) (*pagination.PageResponse[models.AuditLog], error) {
				return nil, errors.New("db down")
			},
		}
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}, audit, newTestSessions(), false))

		rec := doRequest(r, "GET", "/profile/activity", "")

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
	})
}
