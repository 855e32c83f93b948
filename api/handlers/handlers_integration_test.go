package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Annany2002/jobboard-backend/api"
	"github.com/Annany2002/jobboard-backend/config"
	"github.com/Annany2002/jobboard-backend/internal/mail"
	"github.com/Annany2002/jobboard-backend/internal/storage"
)

const testPassword = "StrongPassword123!"

type testServer struct {
	t      *testing.T
	router *gin.Engine
	store  *storage.Store
	mailer *mail.MemoryMailer
}

// setupTestServer builds the full router over a temporary sqlite database.
func setupTestServer(t *testing.T, extraEnv ...string) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	environ := append([]string{
		"SECRET_KEY=test_secret_key_for_integration_tests_1234567890",
		"ALLOWED_HOSTS=example.com,127.0.0.1",
		"EMAIL_BACKEND=memory",
		"LOG_LEVEL=warn",
	}, extraEnv...)
	cfg, err := config.LoadFrom(t.TempDir(), environ)
	require.NoError(t, err)

	store, err := storage.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	mailer, err := mail.New(cfg.Email)
	require.NoError(t, err)

	router, err := api.SetupRouter(store, cfg, mailer)
	require.NoError(t, err)

	return &testServer{t: t, router: router, store: store, mailer: mailer.(*mail.MemoryMailer)}
}

func (s *testServer) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) upload(path, token, fileName string, content []byte) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(s.t, writer.WriteField("cover_letter", "I would love to join."))
	part, err := writer.CreateFormFile("resume", fileName)
	require.NoError(s.t, err)
	_, err = part.Write(content)
	require.NoError(s.t, err)
	require.NoError(s.t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// login signs up email and returns its access and refresh tokens.
func (s *testServer) login(email string) (string, string) {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/auth/signup", map[string]string{"email": email, "password": testPassword}, "")
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/auth/token", map[string]string{"email": email, "password": testPassword}, "")
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var pair struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &pair))
	return pair.Access, pair.Refresh
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestSignupEndpoint(t *testing.T) {
	s := setupTestServer(t)

	testCases := []struct {
		name       string
		body       any
		wantStatus int
		wantBody   string
	}{
		{"created", map[string]string{"email": "jane@example.com", "password": testPassword}, http.StatusCreated, ""},
		{"duplicate", map[string]string{"email": "JANE@example.com", "password": testPassword}, http.StatusBadRequest, `{"email": ["A user with this email already exists."]}`},
		{"invalid email", map[string]string{"email": "jane", "password": testPassword}, http.StatusBadRequest, `{"email": ["Enter a valid email address."]}`},
		{"missing password", map[string]string{"email": "john@example.com"}, http.StatusBadRequest, `{"password": ["This field is required."]}`},
		{"weak password", map[string]string{"email": "john@example.com", "password": "12345678"}, http.StatusBadRequest, `{"password": ["This password is too common.", "This password is entirely numeric."]}`},
		{"malformed json", `{"email":`, http.StatusBadRequest, ""},
		{"empty body", "", http.StatusBadRequest, `{"detail": "JSON parse error - request body is empty."}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := s.do(http.MethodPost, "/api/auth/signup", tc.body, "")
			assert.Equal(t, tc.wantStatus, w.Code, w.Body.String())
			if tc.wantBody != "" {
				assert.JSONEq(t, tc.wantBody, w.Body.String())
			}
		})
	}

	w := s.do(http.MethodPost, "/api/auth/signup", map[string]string{"email": "x@example.com", "password": testPassword}, "")
	body := decode(t, w)
	assert.Equal(t, "x@example.com", body["email"])
	assert.NotContains(t, body, "password_hash")
}

func TestTokenLifecycle(t *testing.T) {
	s := setupTestServer(t)
	access, refresh := s.login("jane@example.com")

	w := s.do(http.MethodPost, "/api/auth/token", map[string]string{"email": "jane@example.com", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"detail": "No active account found with the given credentials"}`, w.Body.String())

	w = s.do(http.MethodGet, "/api/v1/me", nil, access)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jane@example.com", decode(t, w)["email"])

	w = s.do(http.MethodGet, "/api/v1/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, `Bearer realm="api"`, w.Header().Get("WWW-Authenticate"))

	w = s.do(http.MethodGet, "/api/v1/me", nil, refresh)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "refresh tokens are not access tokens")

	w = s.do(http.MethodPost, "/api/auth/token/refresh", map[string]string{"refresh": refresh}, "")
	require.Equal(t, http.StatusOK, w.Code)
	rotated := decode(t, w)
	assert.NotEmpty(t, rotated["access"])
	assert.NotEmpty(t, rotated["refresh"])

	w = s.do(http.MethodPost, "/api/auth/token/refresh", map[string]string{"refresh": refresh}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"detail": "Token is blacklisted"}`, w.Body.String())

	newRefresh := rotated["refresh"].(string)
	w = s.do(http.MethodPost, "/api/auth/token/blacklist", map[string]string{"refresh": newRefresh}, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/api/auth/token/refresh", map[string]string{"refresh": "garbage"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"detail": "Token is invalid or expired"}`, w.Body.String())
}

func TestJobEndpoints(t *testing.T) {
	s := setupTestServer(t, "PAGE_SIZE=2")
	access, _ := s.login("poster@example.com")

	job := map[string]string{"title": "Go Developer", "company": "Acme", "location": "Remote", "employment_type": "full_time"}
	w := s.do(http.MethodPost, "/api/v1/jobs", job, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/v1/jobs", map[string]string{"title": "Go Developer", "company": "Acme", "employment_type": "forever"}, access)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"employment_type": ["Must be one of: full_time, part_time, contract, internship."]}`, w.Body.String())

	w = s.do(http.MethodPost, "/api/v1/jobs", "title=Go", access)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var ids []int64
	for _, title := range []string{"Go Developer", "Rust Developer", "Designer"} {
		job["title"] = title
		w = s.do(http.MethodPost, "/api/v1/jobs", job, access)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		ids = append(ids, int64(decode(t, w)["id"].(float64)))
	}

	w = s.do(http.MethodGet, "/api/v1/jobs", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	page := decode(t, w)
	assert.Equal(t, float64(3), page["count"])
	assert.Len(t, page["results"], 2)
	assert.Equal(t, "http://example.com/api/v1/jobs?page=2", page["next"])
	assert.Nil(t, page["previous"])

	w = s.do(http.MethodGet, "/api/v1/jobs?page=2", nil, "")
	page = decode(t, w)
	assert.Len(t, page["results"], 1)
	assert.Equal(t, "http://example.com/api/v1/jobs", page["previous"])

	w = s.do(http.MethodGet, "/api/v1/jobs?search=developer&ordering=title", nil, "")
	page = decode(t, w)
	require.Equal(t, float64(2), page["count"])
	assert.Equal(t, "Go Developer", page["results"].([]any)[0].(map[string]any)["title"])

	for _, path := range []string{"/api/v1/jobs?page=abc", "/api/v1/jobs?page=9"} {
		w = s.do(http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"detail": "Invalid page."}`, w.Body.String())
	}

	w = s.do(http.MethodGet, fmt.Sprintf("/api/v1/jobs/%d", ids[0]), nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Go Developer", decode(t, w)["title"])

	for _, path := range []string{"/api/v1/jobs/999", "/api/v1/jobs/abc"} {
		w = s.do(http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"detail": "Not found."}`, w.Body.String())
	}
}

func TestApplicationWorkflow(t *testing.T) {
	s := setupTestServer(t)
	posterToken, _ := s.login("poster@example.com")
	applicantToken, _ := s.login("applicant@example.com")
	strangerToken, _ := s.login("stranger@example.com")

	w := s.do(http.MethodPost, "/api/v1/jobs", map[string]string{"title": "Go Developer", "company": "Acme", "employment_type": "full_time"}, posterToken)
	require.Equal(t, http.StatusCreated, w.Code)
	jobID := int64(decode(t, w)["id"].(float64))
	applyPath := fmt.Sprintf("/api/v1/jobs/%d/applications", jobID)
	pdf := []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n")

	w = s.upload(applyPath, applicantToken, "cv.png", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w), "resume")

	w = s.do(http.MethodPost, applyPath, map[string]string{"cover_letter": "hi"}, applicantToken)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	w = s.upload(applyPath, posterToken, "cv.pdf", pdf)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.upload(applyPath, applicantToken, "cv.pdf", pdf)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	app := decode(t, w)
	assert.Equal(t, "submitted", app["status"])
	assert.Equal(t, "application/pdf", app["resume_content_type"])
	assert.Equal(t, "I would love to join.", app["cover_letter"])
	appID := int64(app["id"].(float64))

	outbox := s.mailer.Outbox()
	require.Len(t, outbox, 1)
	assert.Equal(t, []string{"applicant@example.com"}, outbox[0].To)
	assert.Equal(t, "[Job Board] Application received: Go Developer", outbox[0].Subject)

	w = s.upload(applyPath, applicantToken, "cv.pdf", pdf)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"non_field_errors": ["You have already applied to this job."]}`, w.Body.String())

	w = s.do(http.MethodGet, "/api/v1/applications", nil, applicantToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["count"])

	w = s.do(http.MethodGet, "/api/v1/applications", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	statusPath := fmt.Sprintf("/api/v1/applications/%d/status", appID)
	testCases := []struct {
		name       string
		token      string
		status     string
		wantStatus int
		wantBody   string
	}{
		{"unknown status", posterToken, "promoted", http.StatusBadRequest, `{"status": ["\"promoted\" is not a valid choice."]}`},
		{"stranger", strangerToken, "reviewing", http.StatusNotFound, `{"detail": "Not found."}`},
		{"applicant cannot review", applicantToken, "reviewing", http.StatusForbidden, `{"detail": "Only the job poster may change the status of an application."}`},
		{"poster reviews", posterToken, "reviewing", http.StatusOK, ""},
		{"skipping steps", posterToken, "hired", http.StatusBadRequest, `{"status": ["Cannot move from \"reviewing\" to \"hired\"."]}`},
		{"poster cannot withdraw", posterToken, "withdrawn", http.StatusForbidden, `{"detail": "Only the applicant may withdraw an application."}`},
		{"applicant withdraws", applicantToken, "withdrawn", http.StatusOK, ""},
		{"terminal", posterToken, "rejected", http.StatusBadRequest, `{"status": ["Cannot move from \"withdrawn\" to \"rejected\"."]}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := s.do(http.MethodPatch, statusPath, map[string]string{"status": tc.status}, tc.token)
			assert.Equal(t, tc.wantStatus, w.Code, w.Body.String())
			if tc.wantBody != "" {
				assert.JSONEq(t, tc.wantBody, w.Body.String())
			} else {
				assert.Equal(t, tc.status, decode(t, w)["status"])
			}
		})
	}

	assert.Len(t, s.mailer.Outbox(), 2, "the applicant is told about the review, not about their own withdrawal")
}

func TestApplicationsThrottle(t *testing.T) {
	s := setupTestServer(t, "THROTTLE_APPLICATIONS_RATE=1/hour")
	posterToken, _ := s.login("poster@example.com")
	applicantToken, _ := s.login("applicant@example.com")

	w := s.do(http.MethodPost, "/api/v1/jobs", map[string]string{"title": "Go Developer", "company": "Acme", "employment_type": "contract"}, posterToken)
	require.Equal(t, http.StatusCreated, w.Code)
	applyPath := fmt.Sprintf("/api/v1/jobs/%d/applications", int64(decode(t, w)["id"].(float64)))

	w = s.upload(applyPath, applicantToken, "cv.txt", []byte("Jane Doe, Go developer"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.upload(applyPath, applicantToken, "cv.txt", []byte("Jane Doe, Go developer"))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, decode(t, w)["detail"], "Request was throttled.")
}

func TestAnonymousRejectionsDoNotUseThrottleBudget(t *testing.T) {
	s := setupTestServer(t, "THROTTLE_ANON_RATE=2/minute")

	for i := 0; i < 4; i++ {
		w := s.do(http.MethodGet, "/api/v1/me", nil, "")
		require.Equal(t, http.StatusUnauthorized, w.Code, "request %d", i+1)
		assert.JSONEq(t, `{"detail": "Authentication credentials were not provided."}`, w.Body.String())
	}

	for i := 0; i < 2; i++ {
		w := s.do(http.MethodGet, "/api/v1/jobs", nil, "")
		require.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
	}
	w := s.do(http.MethodGet, "/api/v1/jobs", nil, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRoutingErrors(t *testing.T) {
	s := setupTestServer(t)

	w := s.do(http.MethodGet, "/api/v1/nothing-here", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"detail": "Not found."}`, w.Body.String())

	w = s.do(http.MethodDelete, "/api/v1/jobs", nil, "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.JSONEq(t, `{"detail": "Method \"DELETE\" not allowed."}`, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Host = "evil.test"
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"detail": "Invalid HTTP_HOST header: 'evil.test'. You may need to add 'evil.test' to ALLOWED_HOSTS."}`, w.Body.String())

	w = s.do(http.MethodGet, "/ping", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())

	w = s.do(http.MethodGet, "/api/v1/site", nil, "")
	assert.JSONEq(t, `{"site_title": "Job Board Admin Panel", "index_title": "Jhapson Administration"}`, w.Body.String())
}

func TestUnexpectedErrorReturnsGeneric500(t *testing.T) {
	s := setupTestServer(t)
	require.NoError(t, s.store.Close())

	w := s.do(http.MethodGet, "/api/v1/jobs", nil, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail": "An unexpected error occurred. Please try again later."}`, w.Body.String())

	w = s.do(http.MethodGet, "/ping", nil, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code, "readiness fails once the database is gone")
}
