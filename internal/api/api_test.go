package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourname/sleepcycle/internal"
	"github.com/yourname/sleepcycle/internal/auth"
	"github.com/yourname/sleepcycle/internal/config"
	"github.com/yourname/sleepcycle/internal/storage"
)

func newTestApp(t *testing.T) (*gin.Engine, *Application) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	logger := internal.NewNopLogger()
	store, err := storage.NewFileStore(filepath.Join(dir, "users.json"), filepath.Join(dir, "sleep.json"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	hasher, err := auth.NewPasswordHasher(10)
	require.NoError(t, err)

	app := &Application{
		Log:      logger,
		Store:    store,
		Session:  auth.NewSessionService("test-secret", 48*time.Hour),
		Password: hasher,
		// No breach checker in tests: deny-list and shape rules still apply.
		Policy:  auth.NewStrengthPolicy(nil, nil, false, logger),
		Limiter: auth.NewMemoryLimiter(10, 15*time.Minute),
		Cfg: &config.Config{
			Env:                  "development",
			ToddlerMinSleepHours: 11,
		},
	}
	return SetupRouter(app), app
}

func doJSON(r *gin.Engine, method, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func registerAndLogin(t *testing.T, r *gin.Engine, username string) []*http.Cookie {
	t.Helper()
	w := doJSON(r, "POST", "/api/register",
		`{"username":"`+username+`","password":"strong pass 123","dob":"1990-06-15"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func dataField(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data
}

func TestRegister_Validation(t *testing.T) {
	r, _ := newTestApp(t)

	// Weak password.
	w := doJSON(r, "POST", "/api/register", `{"username":"ada","password":"short1","dob":"1990-06-15"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Deny-listed password rejected without any breach service configured.
	w = doJSON(r, "POST", "/api/register", `{"username":"ada","password":"password123","dob":"1990-06-15"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Malformed dob.
	w = doJSON(r, "POST", "/api/register", `{"username":"ada","password":"strong pass 123","dob":"June 1990"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Happy path, then duplicate username.
	w = doJSON(r, "POST", "/api/register", `{"username":"ada","password":"strong pass 123","dob":"1990-06-15"}`, nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(r, "POST", "/api/register", `{"username":"ada","password":"strong pass 123","dob":"1990-06-15"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_And_Me(t *testing.T) {
	r, _ := newTestApp(t)
	registerAndLogin(t, r, "ada")

	w := doJSON(r, "POST", "/api/login", `{"username":"ada","password":"strong pass 123"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	w = doJSON(r, "GET", "/api/me", "", cookies)
	require.Equal(t, http.StatusOK, w.Code)
	data := dataField(t, w)
	assert.Equal(t, "ada", data["username"])
	// Hash never leaves the server.
	assert.NotContains(t, w.Body.String(), "password_hash")

	// No cookie -> 401.
	w = doJSON(r, "GET", "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Wrong password -> 400.
	w = doJSON(r, "POST", "/api/login", `{"username":"ada","password":"wrong pass 123"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_RateLimited(t *testing.T) {
	r, app := newTestApp(t)
	registerAndLogin(t, r, "ada")
	app.Limiter = auth.NewMemoryLimiter(3, 15*time.Minute)

	for i := 0; i < 3; i++ {
		w := doJSON(r, "POST", "/api/login", `{"username":"ada","password":"wrong pass 123"}`, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
	w := doJSON(r, "POST", "/api/login", `{"username":"ada","password":"strong pass 123"}`, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestLogout_ClearsCookie(t *testing.T) {
	r, _ := newTestApp(t)
	cookies := registerAndLogin(t, r, "ada")

	w := doJSON(r, "POST", "/api/logout", "", cookies)
	require.Equal(t, http.StatusOK, w.Code)

	var cleared *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			cleared = c
		}
	}
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)
}

func TestSleepLogs_CRUD(t *testing.T) {
	r, _ := newTestApp(t)
	cookies := registerAndLogin(t, r, "ada")

	w := doJSON(r, "GET", "/api/sleepLogs", "", cookies)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, "POST", "/api/sleepLogs",
		`{"date":"04/30/2025","hours":7.5,"selectedTime":"07:30 AM","mode":"bedtime"}`, cookies)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := dataField(t, w)
	id := created["id"].(string)

	// Hours must be positive.
	w = doJSON(r, "POST", "/api/sleepLogs",
		`{"date":"04/30/2025","hours":-1,"selectedTime":"07:30 AM","mode":"bedtime"}`, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, "PUT", "/api/sleepLogs/"+id, `{"hours":6.25}`, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 6.25, dataField(t, w)["hours"])

	w = doJSON(r, "PUT", "/api/sleepLogs/nonexistent", `{"hours":6}`, cookies)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, "DELETE", "/api/sleepLogs/"+id, "", cookies)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(r, "DELETE", "/api/sleepLogs/"+id, "", cookies)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Unauthenticated access is rejected across the board.
	w = doJSON(r, "GET", "/api/sleepLogs", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = doJSON(r, "POST", "/api/sleepLogs",
		`{"date":"04/30/2025","hours":7.5,"selectedTime":"07:30 AM","mode":"bedtime"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSleepLogs_OwnershipAcrossUsers(t *testing.T) {
	r, _ := newTestApp(t)
	adaCookies := registerAndLogin(t, r, "ada")
	bobCookies := registerAndLogin(t, r, "bob")

	w := doJSON(r, "POST", "/api/sleepLogs",
		`{"date":"04/30/2025","hours":8,"selectedTime":"06:00 AM","mode":"alarm"}`, adaCookies)
	require.Equal(t, http.StatusCreated, w.Code)
	id := dataField(t, w)["id"].(string)

	// Bob can neither edit nor delete Ada's entry.
	w = doJSON(r, "PUT", "/api/sleepLogs/"+id, `{"hours":1}`, bobCookies)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = doJSON(r, "DELETE", "/api/sleepLogs/"+id, "", bobCookies)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// And Ada's entry is untouched.
	w = doJSON(r, "GET", "/api/sleepLogs", "", adaCookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"hours":8`)
}

func TestSleepLogs_DeleteAll(t *testing.T) {
	r, _ := newTestApp(t)
	cookies := registerAndLogin(t, r, "ada")

	for _, body := range []string{
		`{"date":"04/29/2025","hours":7,"selectedTime":"07:00 AM","mode":"bedtime"}`,
		`{"date":"04/30/2025","hours":8,"selectedTime":"07:30 AM","mode":"bedtime"}`,
	} {
		w := doJSON(r, "POST", "/api/sleepLogs", body, cookies)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(r, "DELETE", "/api/sleepLogs", "", cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"cleared":2`)

	w = doJSON(r, "GET", "/api/sleepLogs", "", cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "07:00 AM")
}

func TestRecommendations_ComputeAndConfirm(t *testing.T) {
	r, _ := newTestApp(t)

	w := doJSON(r, "POST", "/api/recommendations",
		`{"mode":"bedtime","anchorTime":"22:00","fallAsleepMinutes":15,"age":30}`, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Data struct {
			Times            []string `json:"times"`
			RecommendedIndex int      `json:"recommended_index"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Times, 3)
	assert.Equal(t, 1, resp.Data.RecommendedIndex)

	// Missing age is rejected.
	w = doJSON(r, "POST", "/api/recommendations",
		`{"mode":"bedtime","anchorTime":"22:00","fallAsleepMinutes":15}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Confirm requires a session.
	confirmBody := `{"mode":"bedtime","anchorTime":"22:00","fallAsleepMinutes":15,"age":30,"selectedTime":"` + resp.Data.Times[1] + `"}`
	w = doJSON(r, "POST", "/api/recommendations/confirm", confirmBody, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	cookies := registerAndLogin(t, r, "ada")
	w = doJSON(r, "POST", "/api/recommendations/confirm", confirmBody, cookies)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	entry := dataField(t, w)
	// 22:15 asleep to 05:45 is 7.5h, recomputed server-side.
	assert.Equal(t, 7.5, entry["hours"])

	// A time outside the computed candidates is rejected and never stored.
	w = doJSON(r, "POST", "/api/recommendations/confirm",
		`{"mode":"bedtime","anchorTime":"22:00","fallAsleepMinutes":15,"age":30,"selectedTime":"03:33 AM"}`, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, "GET", "/api/sleepLogs", "", cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "03:33 AM")
	assert.Contains(t, w.Body.String(), resp.Data.Times[1])
}

func TestHealthz(t *testing.T) {
	r, _ := newTestApp(t)
	w := doJSON(r, "GET", "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
