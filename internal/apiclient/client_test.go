package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/smart-hospital-client/internal/api/dto"
	"github.com/spec-kit/smart-hospital-client/internal/config"
	"github.com/spec-kit/smart-hospital-client/internal/domain"
	apperrors "github.com/spec-kit/smart-hospital-client/pkg/util"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(config.APIConfig{BaseURL: srv.URL, RequestTimeoutSeconds: 5}, opts...)
}

func TestLoginReturnsBodyAndStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req dto.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "a@b.com", req.Email)

		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"success":false,"message":"Invalid credentials"}`)
	})

	resp, err := client.Login(context.Background(), dto.LoginRequest{Email: "a@b.com", Password: "x"})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid credentials", resp.Message)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTransportFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	client := New(config.APIConfig{BaseURL: srv.URL, RequestTimeoutSeconds: 1})
	_, err := client.Login(context.Background(), dto.LoginRequest{})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNetwork))
}

func TestUndecodableBodyIsNetworkError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "<html>oops</html>")
	})

	_, err := client.Register(context.Background(), dto.RegisterRequest{})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNetwork))
}

func TestBearerTokenAttached(t *testing.T) {
	var got string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		assert.Equal(t, "/tasks/u%201", r.URL.EscapedPath())
		_, _ = io.WriteString(w, `{"success":true,"data":[{"id":1,"room_id":"ICU-3","cleaner_id":"u 1","assignment_date":"2024-05-01","status":"Pending"}]}`)
	}, WithTokenSource(func(context.Context) (string, bool) { return "a.b.c", true }))

	tasks, err := client.Tasks(context.Background(), "u 1")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "ICU-3", tasks[0].RoomID)
	assert.Equal(t, "2024-05-01", tasks[0].AssignmentDate)
	assert.Equal(t, "Bearer a.b.c", got)
}

func TestPendingRecordsFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"success":false,"data":[]}`)
	})

	_, err := client.PendingRecords(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeApplication))
	assert.Equal(t, "Failed to fetch approvals.", apperrors.UserMessage(err))
}

func TestApproveSendsDecision(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req dto.ApproveRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(7), req.RecordID)
		assert.Equal(t, domain.ApprovalRework, req.NewStatus)
		_, _ = io.WriteString(w, `{"success":true}`)
	})

	require.NoError(t, client.Approve(context.Background(), 7, domain.ApprovalRework))
}

func TestAssignTaskSurfacesServerMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"success":false,"message":"Missing required fields."}`)
	})

	err := client.AssignTask(context.Background(), domain.TaskAssignment{RoomID: "A"})
	require.Error(t, err)
	assert.Equal(t, "Missing required fields.", apperrors.UserMessage(err))
}

func TestVerifyRoomUploadsMultipart(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "ICU-1", r.FormValue("room_id"))
		assert.Equal(t, "u-1", r.FormValue("cleaner_id"))

		file, header, err := r.FormFile("after_photo")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "after.jpg", header.Filename)
		data, _ := io.ReadAll(file)
		assert.Equal(t, "jpegbytes", string(data))

		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":"Failed to analyze image."}`)
	})

	err := client.VerifyRoom(context.Background(), "ICU-1", "u-1", "/tmp/photos/after.jpg", strings.NewReader("jpegbytes"))
	require.Error(t, err)
	assert.Equal(t, "Failed to analyze image.", apperrors.UserMessage(err))
}

func TestWeeklyReportFilename(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", "attachment;filename=Weekly_Report_2024-05-01.pdf")
		_, _ = io.WriteString(w, "%PDF-1.4")
	})

	report, err := client.WeeklyReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Weekly_Report_2024-05-01.pdf", report.Filename)
	assert.Equal(t, "%PDF-1.4", string(report.Content))
}

func TestReportFilenameFallbacks(t *testing.T) {
	assert.Equal(t, DefaultReportFilename, reportFilename(""))
	assert.Equal(t, DefaultReportFilename, reportFilename("inline"))
	assert.Equal(t, "r.pdf", reportFilename(`attachment; filename="r.pdf"`))
	assert.Equal(t, "passwd", reportFilename(`attachment; filename="../../etc/passwd"`))
	assert.Equal(t, DefaultReportFilename, reportFilename(`attachment; filename=".."`))
	assert.Equal(t, DefaultReportFilename, reportFilename(`attachment; filename="."`))
	assert.Equal(t, DefaultReportFilename, reportFilename(`attachment; filename="/"`))
}

func TestWeeklyReportSizeLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Disposition", "attachment;filename=r.csv")
		_, _ = io.WriteString(w, "0123456789")
	}))
	t.Cleanup(srv.Close)

	exact := New(config.APIConfig{BaseURL: srv.URL, RequestTimeoutSeconds: 5, MaxReportBytes: 10})
	report, err := exact.WeeklyReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(report.Content))

	small := New(config.APIConfig{BaseURL: srv.URL, RequestTimeoutSeconds: 5, MaxReportBytes: 4})
	_, err = small.WeeklyReport(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeApplication))
	assert.Equal(t, "Report is too large to download.", apperrors.UserMessage(err))
}

func TestRequestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	client := New(config.APIConfig{BaseURL: srv.URL}, WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}))
	_, err := client.Login(context.Background(), dto.LoginRequest{})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNetwork))
}

func TestParseRecordID(t *testing.T) {
	id, err := ParseRecordID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "abc", "-1", "0"} {
		_, err := ParseRecordID(bad)
		assert.Error(t, err, bad)
	}
}
