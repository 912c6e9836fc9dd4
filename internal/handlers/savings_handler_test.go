package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "moneyrats/internal/errors"
	"moneyrats/internal/models"
)

type mockSavingsService struct {
	contributeFn func(userID uint, amount float64) (*models.User, error)
}

func (m *mockSavingsService) Contribute(userID uint, amount float64) (*models.User, error) {
	if m.contributeFn != nil {
		return m.contributeFn(userID, amount)
	}
	return &models.User{}, nil
}

func setupSavingsRouter(handler *SavingsHandler) *gin.Engine {
	r := gin.New()
	r.POST("/savings/contributions", injectUserID(1), handler.Contribute)
	return r
}

func TestSavingsHandler_Contribute(t *testing.T) {
	t.Run("returns 200 with updated total", func(t *testing.T) {
		svc := &mockSavingsService{
			contributeFn: func(userID uint, amount float64) (*models.User, error) {
				return &models.User{Base: models.Base{ID: userID}, Salary: 1000, TotalSaved: 100 + amount}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupSavingsRouter(NewSavingsHandler(svc, audit))

		rec := doRequest(r, "POST", "/savings/contributions", `{"amount":25}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		user := parseJSON(t, rec)["user"].(map[string]interface{})
		if user["total_saved"] != float64(125) {
			t.Errorf("expected total 125, got %v", user["total_saved"])
		}
		if user["effort"] != 12.5 {
			t.Errorf("expected effort 12.5, got %v", user["effort"])
		}
		if len(audit.actions) != 1 || audit.actions[0] != models.AuditActionContribute {
			t.Errorf("expected contribute audit entry, got %v", audit.actions)
		}
	})

	t.Run("returns 400 on non-positive amount", func(t *testing.T) {
		r := setupSavingsRouter(NewSavingsHandler(&mockSavingsService{}, &mockAuditService{}))

		for _, body := range []string{`{}`, `{"amount":0}`, `{"amount":-3}`, `{"amount":"ten"}`} {
			rec := doRequest(r, "POST", "/savings/contributions", body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("%s: expected 400, got %d", body, rec.Code)
			}
		}
	})

	t.Run("returns 422 when group expired", func(t *testing.T) {
		svc := &mockSavingsService{
			contributeFn: func(_ uint, _ float64) (*models.User, error) {
				return nil, apperrors.ErrGroupExpired
			},
		}
		r := setupSavingsRouter(NewSavingsHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/savings/contributions", `{"amount":10}`)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "GROUP_EXPIRED")
	})
}
