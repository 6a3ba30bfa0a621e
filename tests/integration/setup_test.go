package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"pitaka/internal/config"
	"pitaka/internal/events"
	"pitaka/internal/logger"
	"pitaka/internal/middleware"
	"pitaka/internal/server"
	"pitaka/internal/testutil"
)

const (
	testJWTSecret = "integration-secret"
	testAPIKey    = "integration-pipeline-key"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB        *gorm.DB
	Router    *gin.Engine
	Publisher *capturingPublisher
}

// capturingPublisher stands in for the broker and keeps every request.
type capturingPublisher struct {
	mu       sync.Mutex
	requests []*events.InsightRequest
}

func (p *capturingPublisher) PublishInsightRequest(_ context.Context, req *events.InsightRequest) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, req)
	return nil
}

func (p *capturingPublisher) Close() error { return nil }

func (p *capturingPublisher) published() []*events.InsightRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*events.InsightRequest(nil), p.requests...)
}

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test", "")
}

// setupApp creates the production router backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	publisher := &capturingPublisher{}
	cfg := &config.Config{
		Env:             "test",
		JWTSecret:       testJWTSecret,
		DefaultTimezone: time.UTC,
		InsightTTL:      24 * time.Hour,
		PipelineAPIKey:  testAPIKey,
	}

	svc := server.NewServices(db, publisher, cfg.InsightTTL)
	if err := svc.Categories.SeedDefaults(); err != nil {
		t.Fatalf("failed to seed categories: %v", err)
	}
	if err := svc.Banks.SeedBanks(); err != nil {
		t.Fatalf("failed to seed banks: %v", err)
	}

	return &testApp{DB: db, Router: server.NewRouter(cfg, svc), Publisher: publisher}
}

// tokenFor signs a provider token for the given subject.
func tokenFor(t *testing.T, subject, email string) string {
	t.Helper()
	claims := middleware.ProviderClaims{
		Email: email,
		Name:  "Test User",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// mustRequest makes a request and fails the test unless the status matches.
func (app *testApp) mustRequest(t *testing.T, method, path, body, token string, want int) map[string]interface{} {
	t.Helper()
	rec := app.request(method, path, body, token)
	if rec.Code != want {
		t.Fatalf("%s %s: expected %d, got %d: %s", method, path, want, rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// signIn provisions a user through the auth middleware and returns the token
// and the local user id.
func (app *testApp) signIn(t *testing.T, subject string) (token, userID string) {
	t.Helper()
	token = tokenFor(t, subject, subject+"@test.com")
	result := app.mustRequest(t, "GET", "/api/v1/profile", "", token, http.StatusOK)
	user := result["user"].(map[string]interface{})
	return token, user["id"].(string)
}

// categoryID returns the id of the named category visible to the caller.
func (app *testApp) categoryID(t *testing.T, token, name string) string {
	t.Helper()
	result := app.mustRequest(t, "GET", "/api/v1/categories", "", token, http.StatusOK)
	for _, raw := range result["categories"].([]interface{}) {
		c := raw.(map[string]interface{})
		if c["name"] == name {
			return c["id"].(string)
		}
	}
	t.Fatalf("category %q not found", name)
	return ""
}

// bankID returns the id of the first bank in the directory.
func (app *testApp) bankID(t *testing.T, token string) string {
	t.Helper()
	result := app.mustRequest(t, "GET", "/api/v1/banks", "", token, http.StatusOK)
	banks := result["banks"].([]interface{})
	if len(banks) == 0 {
		t.Fatal("bank directory is empty")
	}
	return banks[0].(map[string]interface{})["id"].(string)
}

func (app *testApp) createExpense(t *testing.T, token, categoryID, amount string, date time.Time) map[string]interface{} {
	t.Helper()
	body := fmt.Sprintf(`{"category_id":%q,"amount":%q,"description":"Test expense","date":%q}`,
		categoryID, amount, date.Format(time.RFC3339))
	result := app.mustRequest(t, "POST", "/api/v1/expenses", body, token, http.StatusCreated)
	return result["expense"].(map[string]interface{})
}
