package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekefan/afitlms/config"
	"github.com/ekefan/afitlms/internal/data"
	"github.com/ekefan/afitlms/internal/domain/model"
	"github.com/ekefan/afitlms/internal/service"
)

type attendanceHarness struct {
	handler http.Handler
	store   *data.CourseStore
}

// newAttendanceHarness wires the attendance endpoints against a fake central
// service reachable at cloudURL.
func newAttendanceHarness(t *testing.T, cloudURL string) *attendanceHarness {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)

	store := data.NewCourseStore()
	rosterSvc, err := service.NewRosterService(service.RosterServiceOptions{
		Store:  store,
		Config: config.RosterConfig{CloudBaseURL: cloudURL},
		Logger: logger,
	})
	require.NoError(t, err)

	attendance, err := NewAttendanceHandlers(AttendanceHandlersOptions{Service: rosterSvc, Logger: logger})
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /attendance/request/{course_code}", attendance.Participants)
	mux.HandleFunc("POST /attendance/response/{course_code}", attendance.Submit)

	return &attendanceHarness{handler: mux, store: store}
}

func seedCourse(store *data.CourseStore) {
	store.Replace("EEE508", model.Roster{
		Lecturer: &model.Participant{UID: "L1", Name: "Dr. Ada", UniqueID: "LEC01"},
		Students: []model.Participant{
			{UID: "S1", Name: "Alice", UniqueID: "AF123"},
		},
	})
}

func TestAttendanceParticipants(t *testing.T) {
	h := newAttendanceHarness(t, "http://cloud.local")
	seedCourse(h.store)

	req := httptest.NewRequest(http.MethodGet, "/attendance/request/EEE508", nil)
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var participants []model.Participant
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &participants))
	require.Len(t, participants, 2)
	assert.Equal(t, "LEC01", participants[0].UniqueID)
	assert.False(t, participants[0].Present)
}

func TestAttendanceParticipantsUnknownCourse(t *testing.T) {
	h := newAttendanceHarness(t, "http://cloud.local")

	req := httptest.NewRequest(http.MethodGet, "/attendance/request/EEE999", nil)
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "No course found for code: EEE999", body["error"])
}

func TestAttendanceSubmit(t *testing.T) {
	var received model.AttendanceSession
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/attendances", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusCreated)
	}))
	defer upstream.Close()

	h := newAttendanceHarness(t, upstream.URL)

	payload := `[
		{"uid":"L1","name":"Dr. Ada","uniqueId":"LEC01","present":true},
		{"uid":"S1","name":"Alice","uniqueId":"AF123","present":true},
		{"uid":"S2","name":"Bob","uniqueId":"AF456","present":false}
	]`
	req := httptest.NewRequest(http.MethodPost, "/attendance/response/EEE508", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "received", body["message"])

	assert.Equal(t, "EEE508", received.CourseCode)
	assert.Equal(t, "LEC01", received.LecturerID)
	require.Len(t, received.AttendanceData, 3)
	assert.True(t, received.AttendanceData[1].Attended)
	assert.False(t, received.AttendanceData[2].Attended)
}

func TestAttendanceSubmitUpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer upstream.Close()

	h := newAttendanceHarness(t, upstream.URL)

	payload := `[{"uid":"L1","name":"Dr. Ada","uniqueId":"LEC01","present":true}]`
	req := httptest.NewRequest(http.MethodPost, "/attendance/response/EEE508", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Failed to send attendance data", body["error"])
}

func TestAttendanceSubmitEmptyList(t *testing.T) {
	h := newAttendanceHarness(t, "http://cloud.local")

	req := httptest.NewRequest(http.MethodPost, "/attendance/response/EEE508", strings.NewReader(`[]`))
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
