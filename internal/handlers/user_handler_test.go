package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "pitaka/internal/errors"
	"pitaka/internal/models"
)

func setupUserRouter(handler *UserHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.GET("/profile", handler.GetProfile)
	auth.PUT("/profile", handler.UpdateProfile)
	return r
}

func TestUserHandler_GetProfile(t *testing.T) {
	t.Run("returns the user", func(t *testing.T) {
		svc := &mockUserService{
			getUserByIDFn: func(id string) (*models.User, error) {
				return &models.User{Base: models.Base{ID: id}, Email: "ana@example.com", Currency: "PHP"}, nil
			},
		}
		r := setupUserRouter(NewUserHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/profile", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		user := parseJSON(t, rec)["user"].(map[string]interface{})
		if user["id"] != testUserID || user["currency"] != "PHP" {
			t.Errorf("unexpected user %v", user)
		}
		if _, ok := user["external_id"]; ok {
			t.Errorf("external id must not be exposed")
		}
	})

	t.Run("returns 404 when missing", func(t *testing.T) {
		svc := &mockUserService{
			getUserByIDFn: func(_ string) (*models.User, error) { return nil, apperrors.ErrUserNotFound },
		}
		r := setupUserRouter(NewUserHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/profile", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestUserHandler_UpdateProfile(t *testing.T) {
	t.Run("passes changed fields", func(t *testing.T) {
		var gotName, gotCurrency *string
		svc := &mockUserService{
			updateProfileFn: func(_ string, name, currency *string) (*models.User, error) {
				gotName, gotCurrency = name, currency
				return &models.User{Currency: *currency}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupUserRouter(NewUserHandler(svc, audit))

		rec := doRequest(r, "PUT", "/profile", `{"currency":"USD"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotName != nil {
			t.Errorf("expected name to stay nil")
		}
		if gotCurrency == nil || *gotCurrency != "USD" {
			t.Errorf("unexpected currency %v", gotCurrency)
		}
		if len(audit.actions) != 1 || audit.actions[0] != "UPDATE_PROFILE" {
			t.Errorf("expected UPDATE_PROFILE audit entry, got %v", audit.actions)
		}
	})

	t.Run("returns 400 on unknown currency", func(t *testing.T) {
		r := setupUserRouter(NewUserHandler(&mockUserService{}, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/profile", `{"currency":"XYZ"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})
}
