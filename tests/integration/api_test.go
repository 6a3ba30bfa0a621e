package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pitaka/internal/services"
)

func TestAPI_HealthAndAuth(t *testing.T) {
	app := setupApp(t)

	rec := app.request("GET", "/api/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from health, got %d", rec.Code)
	}

	rec = app.request("GET", "/api/v1/spending/monthly", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	rec = app.request("GET", "/api/v1/spending/monthly", "", "not-a-jwt")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with garbage token, got %d", rec.Code)
	}

	// The same subject resolves to the same local user.
	token, first := app.signIn(t, "idp|repeat")
	_, second := app.signIn(t, "idp|repeat")
	if first != second {
		t.Errorf("expected stable user id, got %s and %s", first, second)
	}

	profile := app.mustRequest(t, "PUT", "/api/v1/profile", `{"currency":"USD"}`, token, http.StatusOK)["user"].(map[string]interface{})
	if profile["currency"] != "USD" {
		t.Errorf("expected USD, got %v", profile["currency"])
	}
}

func TestAPI_InsightRoundTrip(t *testing.T) {
	app := setupApp(t)
	token, userID := app.signIn(t, "idp|curious")
	food := app.categoryID(t, token, "Food & Dining")
	app.createExpense(t, token, food, "250", time.Now().UTC())

	result := app.mustRequest(t, "POST", "/api/v1/insights/regenerate", "", token, http.StatusAccepted)
	requestID := result["request_id"].(string)

	published := app.Publisher.published()
	if len(published) != 1 {
		t.Fatalf("expected 1 published request, got %d", len(published))
	}
	if published[0].RequestID != requestID || published[0].UserID != userID {
		t.Errorf("unexpected request %+v", published[0])
	}
	var payload services.InsightPayload
	if err := json.Unmarshal(published[0].Payload, &payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if len(payload.History) == 0 || payload.History[0].Total.String() != "250" {
		t.Errorf("expected current month total 250 in payload, got %+v", payload.History)
	}

	batch := `{"insights":[{"type":"saving_tip","title":"Cook at home","content":"Dining is your largest category"}]}`

	rec := pipelineRequest(app, "PUT", "/internal/users/"+userID+"/insights", batch, "wrong-key")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong key, got %d", rec.Code)
	}

	rec = pipelineRequest(app, "PUT", "/internal/users/"+userID+"/insights", batch, testAPIKey)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 ingesting, got %d: %s", rec.Code, rec.Body.String())
	}

	insights := app.mustRequest(t, "GET", "/api/v1/insights", "", token, http.StatusOK)["insights"].([]interface{})
	if len(insights) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(insights))
	}
	insightID := insights[0].(map[string]interface{})["id"].(string)

	app.mustRequest(t, "DELETE", "/api/v1/insights/"+insightID, "", token, http.StatusOK)
	insights = app.mustRequest(t, "GET", "/api/v1/insights", "", token, http.StatusOK)["insights"].([]interface{})
	if len(insights) != 0 {
		t.Errorf("expected no insights after delete, got %d", len(insights))
	}
}

func pipelineRequest(app *testApp, method, path, body, apiKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", apiKey)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}
