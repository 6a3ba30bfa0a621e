package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "pitaka/internal/errors"
	"pitaka/internal/models"
	"pitaka/internal/services"
)

const testInsightID = "77777777-7777-4777-8777-777777777777"

func setupInsightRouter(handler *InsightHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.GET("/insights", handler.GetInsights)
	auth.POST("/insights/regenerate", handler.RegenerateInsights)
	auth.POST("/insights/clear-expired", handler.ClearExpired)
	auth.DELETE("/insights/:id", handler.DeleteInsight)
	r.PUT("/internal/users/:user_id/insights", handler.IngestInsights)
	return r
}

func TestInsightHandler_GetInsights(t *testing.T) {
	t.Run("passes type filter and clock", func(t *testing.T) {
		now := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
		freezeTime(t, now)
		var gotType *models.InsightType
		var gotNow time.Time
		svc := &mockInsightService{
			getActiveInsightsFn: func(_ string, insightType *models.InsightType, n time.Time) ([]models.Insight, error) {
				gotType, gotNow = insightType, n
				return []models.Insight{{Type: models.InsightAnomaly, Title: "Spike"}}, nil
			},
		}
		r := setupInsightRouter(NewInsightHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/insights?type=anomaly", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotType == nil || *gotType != models.InsightAnomaly {
			t.Errorf("expected anomaly filter, got %v", gotType)
		}
		if !gotNow.Equal(now) {
			t.Errorf("expected now %v, got %v", now, gotNow)
		}
		if len(parseJSON(t, rec)["insights"].([]interface{})) != 1 {
			t.Errorf("expected 1 insight")
		}
	})

	t.Run("returns 400 on unknown type", func(t *testing.T) {
		r := setupInsightRouter(NewInsightHandler(&mockInsightService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/insights?type=horoscope", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestInsightHandler_DeleteInsight(t *testing.T) {
	t.Run("returns 404 for another user's insight", func(t *testing.T) {
		svc := &mockInsightService{
			deleteInsightFn: func(_, _ string) error { return apperrors.ErrInsightNotFound },
		}
		r := setupInsightRouter(NewInsightHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "DELETE", "/insights/"+testInsightID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INSIGHT_NOT_FOUND")
	})

	t.Run("returns 200 on success", func(t *testing.T) {
		r := setupInsightRouter(NewInsightHandler(&mockInsightService{}, &mockAuditService{}))

		rec := doRequest(r, "DELETE", "/insights/"+testInsightID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})
}

func TestInsightHandler_ClearExpired(t *testing.T) {
	t.Run("reports cleared count", func(t *testing.T) {
		svc := &mockInsightService{
			clearExpiredFn: func(_ string, _ time.Time) (int64, error) { return 3, nil },
		}
		r := setupInsightRouter(NewInsightHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/insights/clear-expired", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if parseJSON(t, rec)["cleared"].(float64) != 3 {
			t.Errorf("expected 3 cleared")
		}
	})
}

func TestInsightHandler_RegenerateInsights(t *testing.T) {
	t.Run("returns 202 with request id", func(t *testing.T) {
		svc := &mockInsightService{
			requestRegenerationFn: func(ctx context.Context, userID string, _ time.Time) (string, error) {
				if ctx == nil {
					t.Error("expected request context")
				}
				if userID != testUserID {
					t.Errorf("expected user %s, got %s", testUserID, userID)
				}
				return "req-1", nil
			},
		}
		audit := &mockAuditService{}
		r := setupInsightRouter(NewInsightHandler(svc, audit))

		rec := doRequest(r, "POST", "/insights/regenerate", "")

		if rec.Code != http.StatusAccepted {
			t.Fatalf("expected 202, got %d", rec.Code)
		}
		if parseJSON(t, rec)["request_id"] != "req-1" {
			t.Errorf("expected request id req-1")
		}
		if len(audit.actions) != 1 || audit.actions[0] != "REGENERATE_INSIGHTS" {
			t.Errorf("expected REGENERATE_INSIGHTS audit entry, got %v", audit.actions)
		}
	})

	t.Run("returns 503 when publishing fails", func(t *testing.T) {
		svc := &mockInsightService{
			requestRegenerationFn: func(_ context.Context, _ string, _ time.Time) (string, error) {
				return "", apperrors.ErrInsightPublishFailed
			},
		}
		r := setupInsightRouter(NewInsightHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/insights/regenerate", "")

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INSIGHT_PUBLISH_FAILED")
	})
}

func TestInsightHandler_IngestInsights(t *testing.T) {
	t.Run("replaces the batch for the path user", func(t *testing.T) {
		var gotUser string
		var gotBatch []services.InsightInput
		svc := &mockInsightService{
			replaceInsightsFn: func(userID string, batch []services.InsightInput, _ time.Time) ([]models.Insight, error) {
				gotUser, gotBatch = userID, batch
				return []models.Insight{{Type: batch[0].Type}, {Type: batch[1].Type}}, nil
			},
		}
		r := setupInsightRouter(NewInsightHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/internal/users/"+testUserID+"/insights",
			`{"insights":[
				{"type":"spending_pattern","title":"Weekend spender","content":"Most spend lands on Saturdays","data":{"day":"saturday"}},
				{"type":"saving_tip","title":"Cook more","content":"Food is 40% of spend"}
			]}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotUser != testUserID {
			t.Errorf("expected user %s, got %s", testUserID, gotUser)
		}
		if len(gotBatch) != 2 {
			t.Fatalf("expected 2 insights, got %d", len(gotBatch))
		}
		if gotBatch[0].Type != models.InsightSpendingPattern || string(gotBatch[0].Data) != `{"day":"saturday"}` {
			t.Errorf("unexpected first insight %+v", gotBatch[0])
		}
		if len(parseJSON(t, rec)["insights"].([]interface{})) != 2 {
			t.Errorf("expected 2 stored insights")
		}
	})

	t.Run("returns 400 on unknown insight type", func(t *testing.T) {
		r := setupInsightRouter(NewInsightHandler(&mockInsightService{}, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/internal/users/"+testUserID+"/insights",
			`{"insights":[{"type":"horoscope","title":"x","content":"y"}]}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on malformed user id", func(t *testing.T) {
		r := setupInsightRouter(NewInsightHandler(&mockInsightService{}, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/internal/users/someone/insights", `{"insights":[]}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 404 for unknown user", func(t *testing.T) {
		svc := &mockInsightService{
			replaceInsightsFn: func(_ string, _ []services.InsightInput, _ time.Time) ([]models.Insight, error) {
				return nil, apperrors.ErrUserNotFound
			},
		}
		r := setupInsightRouter(NewInsightHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/internal/users/"+testUserID+"/insights", `{"insights":[]}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "USER_NOT_FOUND")
	})
}
