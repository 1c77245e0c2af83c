package http

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/smart-hospital-client/internal/config"
	"github.com/spec-kit/smart-hospital-client/internal/observability"
)

func newTestServer(t *testing.T) *fiber.App {
	t.Helper()
	cfg := &config.Config{
		App:       config.AppConfig{Name: "smart-hospital", Version: "test"},
		DevServer: config.DevServerConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 5, BcryptCost: 4},
	}
	return NewDevServer(cfg, nil, observability.NewMetrics(), nil)
}

func call(t *testing.T, app *fiber.App, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return resp.StatusCode, out
}

func registerAndLogin(t *testing.T, app *fiber.App, name, email, role string) string {
	t.Helper()
	status, _ := call(t, app, http.MethodPost, "/register", "", map[string]string{
		"full_name": name, "email": email, "password": "pw", "role": role,
	})
	require.Equal(t, http.StatusCreated, status)

	status, body := call(t, app, http.MethodPost, "/login", "", map[string]string{"email": email, "password": "pw"})
	require.Equal(t, http.StatusOK, status)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestHealth(t *testing.T) {
	app := newTestServer(t)

	status, body := call(t, app, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alive", body["status"])

	status, body = call(t, app, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ready", body["status"])
}

func TestRegisterAndLoginContract(t *testing.T) {
	app := newTestServer(t)

	status, body := call(t, app, http.MethodPost, "/register", "", map[string]string{
		"full_name": "Ana", "email": "ana@h.org", "password": "pw", "role": "cleaner",
	})
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, true, body["success"])

	status, body = call(t, app, http.MethodPost, "/register", "", map[string]string{
		"full_name": "Ana", "email": "ana@h.org", "password": "pw", "role": "cleaner",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "User with this email already exists.", body["message"])

	status, body = call(t, app, http.MethodPost, "/register", "", map[string]string{"email": "x@h.org"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Missing required fields.", body["message"])

	status, body = call(t, app, http.MethodPost, "/login", "", map[string]string{"email": "ana@h.org", "password": "bad"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Invalid credentials", body["message"])

	status, body = call(t, app, http.MethodPost, "/login", "", map[string]string{"email": "ana@h.org", "password": "pw"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "cleaner", body["role"])
	assert.NotEmpty(t, body["token"])
}

func TestProtectedRoutesRequireRole(t *testing.T) {
	app := newTestServer(t)
	cleaner := registerAndLogin(t, app, "Ana", "ana@h.org", "cleaner")

	status, _ := call(t, app, http.MethodGet, "/dashboard", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := call(t, app, http.MethodGet, "/dashboard", cleaner, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", body["code"])

	status, _ = call(t, app, http.MethodGet, "/dashboard", "not.a.token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestCleaningWorkflow(t *testing.T) {
	app := newTestServer(t)
	dean := registerAndLogin(t, app, "Dean", "dean@h.org", "dean")
	manager := registerAndLogin(t, app, "Mo", "mo@h.org", "manager")
	cleaner := registerAndLogin(t, app, "Ana", "ana@h.org", "cleaner")

	status, body := call(t, app, http.MethodPost, "/assign_task", dean, map[string]string{
		"room_id": "ICU-3", "cleaner_id": "c-1", "assignment_date": "2024-05-06", "assigned_by_id": "d-1",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, true, body["success"])

	status, body = call(t, app, http.MethodPost, "/assign_task", dean, map[string]string{"room_id": "ICU-3"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])

	status, body = call(t, app, http.MethodGet, "/tasks/c-1", dean, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 1)

	status, _ = call(t, app, http.MethodGet, "/tasks/c-1", cleaner, nil)
	assert.Equal(t, http.StatusForbidden, status)

	var form bytes.Buffer
	w := multipart.NewWriter(&form)
	require.NoError(t, w.WriteField("room_id", "ICU-3"))
	require.NoError(t, w.WriteField("cleaner_id", "c-1"))
	part, err := w.CreateFormFile("after_photo", "after.jpg")
	require.NoError(t, err)
	_, _ = part.Write([]byte("jpeg"))
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, "/verify_room", &form)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+cleaner)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	status, body = call(t, app, http.MethodGet, "/dashboard", manager, nil)
	require.Equal(t, http.StatusOK, status)
	records, _ := body["data"].([]any)
	require.Len(t, records, 1)
	record := records[0].(map[string]any)
	id := record["id"]

	status, body = call(t, app, http.MethodPost, "/approve", manager, map[string]any{"record_id": id, "new_status": "Done"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid status. Must be 'Approved' or 'Rework'.", body["message"])

	status, body = call(t, app, http.MethodPost, "/approve", manager, map[string]any{"record_id": id, "new_status": "Approved"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])

	req = httptest.NewRequest(http.MethodGet, "/report/weekly", nil)
	req.Header.Set("Authorization", "Bearer "+dean)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment;filename=Weekly_Report_")
	content, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(content), "ICU-3")
}

func TestVerifyRoomRequiresPhoto(t *testing.T) {
	app := newTestServer(t)
	cleaner := registerAndLogin(t, app, "Ana", "ana@h.org", "cleaner")

	var form bytes.Buffer
	w := multipart.NewWriter(&form)
	require.NoError(t, w.WriteField("room_id", "ICU-3"))
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, "/verify_room", &form)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+cleaner)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "No 'after_photo' file part in the request.", body["error"])
}

func TestPagesServed(t *testing.T) {
	app := newTestServer(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/pages/login.html", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	text, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(text), "Sign in")

	status, _ := call(t, app, http.MethodGet, "/pages/nope.html", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = call(t, app, http.MethodGet, "/pages/login", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUnknownRoute(t *testing.T) {
	app := newTestServer(t)
	status, body := call(t, app, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body["code"])
}
