package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vipul43/blogforge/internal/apperr"
	"github.com/vipul43/blogforge/internal/logging"
	"github.com/vipul43/blogforge/internal/metrics"
	"github.com/vipul43/blogforge/internal/models"
	"github.com/vipul43/blogforge/internal/provider"
	"github.com/vipul43/blogforge/internal/service"
)

type mockConnector struct {
	authorizeFunc func(ctx context.Context, name models.Provider) (*service.AuthorizeResult, error)
	connectFunc   func(ctx context.Context, req service.ConnectRequest) (*service.ConnectResult, error)
}

func (m *mockConnector) Authorize(ctx context.Context, name models.Provider) (*service.AuthorizeResult, error) {
	return m.authorizeFunc(ctx, name)
}

func (m *mockConnector) Connect(ctx context.Context, req service.ConnectRequest) (*service.ConnectResult, error) {
	return m.connectFunc(ctx, req)
}

type mockImporter struct {
	fetchFunc  func(ctx context.Context, req service.FetchRequest) (*provider.Content, error)
	importFunc func(ctx context.Context, req service.FetchRequest) (*models.GenerationResult, error)
}

func (m *mockImporter) Fetch(ctx context.Context, req service.FetchRequest) (*provider.Content, error) {
	return m.fetchFunc(ctx, req)
}

func (m *mockImporter) Import(ctx context.Context, req service.FetchRequest) (*models.GenerationResult, error) {
	return m.importFunc(ctx, req)
}

type mockGenerator struct {
	generateFunc func(ctx context.Context, req models.GenerationRequest) (*models.GenerationResult, error)
	calls        int
}

func (m *mockGenerator) Generate(ctx context.Context, req models.GenerationRequest) (*models.GenerationResult, error) {
	m.calls++
	return m.generateFunc(ctx, req)
}

func newTestRouter(c Connector, i Importer, g Generator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := New(c, i, g, logging.Discard())
	return NewRouter(h, metrics.New(), logging.Discard())
}

func post(t *testing.T, router http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestAuth_Authorize(t *testing.T) {
	connector := &mockConnector{
		authorizeFunc: func(ctx context.Context, name models.Provider) (*service.AuthorizeResult, error) {
			assert.Equal(t, models.ProviderTwitter, name)
			return &service.AuthorizeResult{URL: "https://twitter.com/i/oauth2/authorize?state=s1", State: "s1"}, nil
		},
	}
	router := newTestRouter(connector, nil, nil)

	w := post(t, router, "/api/twitter/auth", `{"mode":"authorize"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"url":"https://twitter.com/i/oauth2/authorize?state=s1","state":"s1"}`, w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAuth_Token(t *testing.T) {
	connector := &mockConnector{
		connectFunc: func(ctx context.Context, req service.ConnectRequest) (*service.ConnectResult, error) {
			assert.Equal(t, service.ConnectRequest{Provider: models.ProviderLinkedIn, Code: "c1", State: "s1", UserID: "u1"}, req)
			return &service.ConnectResult{
				Token:    map[string]any{"access_token": "tok"},
				User:     map[string]any{"id": "abc"},
				Provider: models.ProviderLinkedIn,
			}, nil
		},
	}
	router := newTestRouter(connector, nil, nil)

	w := post(t, router, "/api/linkedin/auth", `{"mode":"token","code":"c1","state":"s1","userId":"u1"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"token":{"access_token":"tok"},"user":{"id":"abc"},"provider":"linkedin"}`, w.Body.String())
}

func TestAuth_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"unknown mode", `{"mode":"refresh"}`, nil, http.StatusBadRequest, "Invalid request parameters"},
		{"missing mode", `{}`, nil, http.StatusBadRequest, "Invalid request parameters"},
		{"malformed body", `{"mode":`, nil, http.StatusBadRequest, "Invalid request parameters"},
		{"state mismatch", `{"mode":"token","code":"c","state":"x"}`, apperr.Authentication("OAuth state mismatch"), http.StatusBadRequest, "OAuth state mismatch"},
		{"missing code", `{"mode":"token"}`, apperr.Validation("Authorization code is required"), http.StatusBadRequest, "Authorization code is required"},
		{
			"upstream failure hides body",
			`{"mode":"token","code":"c","state":"s"}`,
			apperr.Upstream("Failed to exchange authorization code", errors.New(`{"error":"invalid_client","client_secret":"leak"}`)),
			http.StatusInternalServerError,
			"Failed to exchange authorization code",
		},
		{"untyped failure", `{"mode":"token","code":"c","state":"s"}`, errors.New("failed to save social account: dial tcp"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			connector := &mockConnector{
				connectFunc: func(ctx context.Context, req service.ConnectRequest) (*service.ConnectResult, error) {
					return nil, tt.err
				},
			}
			router := newTestRouter(connector, nil, nil)

			w := post(t, router, "/api/twitter/auth", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantError, decodeError(t, w))
			assert.NotContains(t, w.Body.String(), "leak")
		})
	}
}

func TestAuth_NotConfigured(t *testing.T) {
	connector := &mockConnector{
		authorizeFunc: func(ctx context.Context, name models.Provider) (*service.AuthorizeResult, error) {
			return nil, apperr.Configuration("twitter OAuth credentials are not configured")
		},
	}
	router := newTestRouter(connector, nil, nil)

	w := post(t, router, "/api/twitter/auth", `{"mode":"authorize"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "twitter OAuth credentials are not configured", decodeError(t, w))
}

func TestFetch_ReturnsRawPayload(t *testing.T) {
	importer := &mockImporter{
		fetchFunc: func(ctx context.Context, req service.FetchRequest) (*provider.Content, error) {
			assert.Equal(t, models.ProviderTwitter, req.Provider)
			assert.Equal(t, "tok", req.AccessToken)
			assert.Equal(t, "jack", req.Query.Username)
			return &provider.Content{Raw: json.RawMessage(`{"data":[{"id":"1","text":"hello"}]}`)}, nil
		},
	}
	router := newTestRouter(nil, importer, nil)

	w := post(t, router, "/api/twitter/fetch", `{"accessToken":"tok","username":"jack"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[{"id":"1","text":"hello"}]}`, w.Body.String())
}

func TestFetch_LinkedInMemberID(t *testing.T) {
	importer := &mockImporter{
		fetchFunc: func(ctx context.Context, req service.FetchRequest) (*provider.Content, error) {
			assert.Equal(t, "m-1", req.Query.MemberID)
			return &provider.Content{}, nil
		},
	}
	router := newTestRouter(nil, importer, nil)

	w := post(t, router, "/api/linkedin/fetch", `{"accessToken":"tok","memberId":"m-1"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[]}`, w.Body.String())
}

func TestFetch_NotFound(t *testing.T) {
	importer := &mockImporter{
		fetchFunc: func(ctx context.Context, req service.FetchRequest) (*provider.Content, error) {
			return nil, apperr.NotFound("Could not retrieve user ID")
		},
	}
	router := newTestRouter(nil, importer, nil)

	w := post(t, router, "/api/twitter/fetch", `{"accessToken":"tok","username":"nobody"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Could not retrieve user ID", decodeError(t, w))
}

func TestImport(t *testing.T) {
	importer := &mockImporter{
		importFunc: func(ctx context.Context, req service.FetchRequest) (*models.GenerationResult, error) {
			assert.Equal(t, models.ProviderLinkedIn, req.Provider)
			return &models.GenerationResult{Title: "T", Content: "<h1>T</h1>", SEOScore: 77, Topics: []string{"AI"}}, nil
		},
	}
	router := newTestRouter(nil, importer, nil)

	w := post(t, router, "/api/linkedin/import", `{"accessToken":"tok"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"title":"T","content":"<h1>T</h1>","seo_score":77,"topics":["AI"]}`, w.Body.String())
}

func TestGenerate(t *testing.T) {
	gen := &mockGenerator{
		generateFunc: func(ctx context.Context, req models.GenerationRequest) (*models.GenerationResult, error) {
			assert.Equal(t, models.GenerationRequest{Content: "Hello #AI world", Source: models.ProviderTwitter}, req)
			return &models.GenerationResult{Title: "Hello", Content: "<h1>Hello</h1>", SEOScore: 60, Topics: []string{"AI"}}, nil
		},
	}
	router := newTestRouter(nil, nil, gen)

	w := post(t, router, "/api/generate", `{"content":"Hello #AI world","source":"twitter"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"title":"Hello","content":"<h1>Hello</h1>","seo_score":60,"topics":["AI"]}`, w.Body.String())
}

func TestGenerate_EmptyContent(t *testing.T) {
	gen := &mockGenerator{
		generateFunc: func(ctx context.Context, req models.GenerationRequest) (*models.GenerationResult, error) {
			return nil, apperr.Validation("Content is required")
		},
	}
	router := newTestRouter(nil, nil, gen)

	w := post(t, router, "/api/generate", `{"content":"   ","source":"linkedin"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Content is required", decodeError(t, w))
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(nil, nil, nil)

	for _, path := range []string{"/api/generate", "/api/twitter/auth", "/api/linkedin/import"} {
		req := httptest.NewRequest(http.MethodOptions, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code, path)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "authorization, x-client-info, apikey, content-type", w.Header().Get("Access-Control-Allow-Headers"))
	}
}

func TestHealth(t *testing.T) {
	router := newTestRouter(nil, nil, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"blogforge"}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(nil, nil, nil)
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `blogforge_http_requests_total{endpoint="/health",method="GET",status="200"} 1`)
}

func TestRecoveryMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestIDMiddleware(), RecoveryMiddleware(logging.Discard()))
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", decodeError(t, w))
}

func TestRequestIDMiddleware_KeepsIncomingID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.GET("/id", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(requestIDKey)) })

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Body.String())
	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
}
