package service

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/ekefan/afitlms/config"
	"github.com/ekefan/afitlms/internal/core"
	"github.com/ekefan/afitlms/internal/data"
	"github.com/ekefan/afitlms/internal/domain/model"
	apperrors "github.com/ekefan/afitlms/internal/errors"
	"github.com/ekefan/afitlms/internal/observability/metrics"
	"github.com/ekefan/afitlms/internal/observability/statsd"
)

// RosterServiceOptions groups dependencies for RosterService.
type RosterServiceOptions struct {
	Store      core.RosterStore    // Required: roster cache
	Config     config.RosterConfig // Required: sync configuration
	HTTPClient *http.Client        // Optional: client for the central service
	Logger     *slog.Logger        // Optional: structured logger
	Metrics    statsd.Sink         // Optional: metrics sink (StatsD-compatible)
	Time       data.TimeProvider   // Optional: clock, defaults to real time
}

// RosterService syncs course rosters from the central attendance service and
// relays completed attendance sessions back to it.
type RosterService struct {
	store   core.RosterStore
	config  config.RosterConfig
	client  *http.Client
	logger  *slog.Logger
	metrics statsd.Sink
	time    data.TimeProvider

	// sessionID is seeded randomly at startup so restarts do not replay ids.
	sessionID atomic.Int64
}

// NewRosterService constructs a new RosterService.
func NewRosterService(opts RosterServiceOptions) (*RosterService, error) {
	if opts.Store == nil {
		return nil, errors.New("RosterStore is required")
	}
	if opts.Config.CloudBaseURL == "" {
		return nil, errors.New("cloud base URL is required")
	}
	if opts.Config.SyncConcurrency < 1 {
		// errgroup.SetLimit(0) would block every Go call.
		opts.Config.SyncConcurrency = 1
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Config.RequestTimeout}
	}

	timeProvider := opts.Time
	if timeProvider == nil {
		timeProvider = &data.RealTimeProvider{}
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "roster_service")
		logger.Debug("RosterService initialized",
			"base_url", opts.Config.CloudBaseURL,
			"courses", opts.Config.Courses,
			"schedule", opts.Config.SyncSchedule,
		)
	}

	svc := &RosterService{
		store:   opts.Store,
		config:  opts.Config,
		client:  client,
		logger:  logger,
		metrics: opts.Metrics,
		time:    timeProvider,
	}
	svc.sessionID.Store(seedSessionID())

	return svc, nil
}

// Run performs an initial sync, then reruns on the configured cron schedule
// until the context is cancelled. Returns nil on graceful shutdown.
func (s *RosterService) Run(ctx context.Context) error {
	if s.logger != nil {
		s.logger.InfoContext(ctx, "starting roster sync service", "schedule", s.config.SyncSchedule)
	}

	if err := s.SyncCourses(ctx); err != nil {
		s.logSyncError(ctx, err)
	}

	scheduler := cron.New()
	_, err := scheduler.AddFunc(s.config.SyncSchedule, func() {
		if err := s.SyncCourses(ctx); err != nil {
			s.logSyncError(ctx, err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid roster sync schedule %q: %w", s.config.SyncSchedule, err)
	}

	scheduler.Start()
	<-ctx.Done()

	stopCtx := scheduler.Stop()
	<-stopCtx.Done()

	if s.logger != nil {
		s.logger.InfoContext(ctx, "roster sync service stopping", "reason", ctx.Err())
	}
	return suppressCancellation(ctx.Err())
}

// SyncCourses fetches every configured course roster. Courses fetch in
// parallel up to the configured concurrency; one failing course never blocks
// the rest, so the returned error aggregates only what actually failed.
func (s *RosterService) SyncCourses(ctx context.Context) error {
	codes := s.config.CourseCodes()
	if len(codes) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.SyncConcurrency)

	errCh := make(chan error, len(codes))
	for _, code := range codes {
		g.Go(func() error {
			start := s.time.Now()
			if err := s.syncCourse(gctx, code); err != nil {
				errCh <- fmt.Errorf("course %s: %w", code, err)
				metrics.EmitRosterSync(s.metrics, code, metrics.ResultError, s.time.Now().Sub(start))
				if s.logger != nil {
					s.logger.WarnContext(gctx, "course sync failed", "course", code, "error", err)
				}
				// Swallow so the group keeps fetching the other courses.
				return nil
			}
			metrics.EmitRosterSync(s.metrics, code, metrics.ResultSuccess, s.time.Now().Sub(start))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	close(errCh)

	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Participants returns the cached lecturer-first participant list for a course.
func (s *RosterService) Participants(code string) ([]model.Participant, error) {
	return s.store.Participants(code)
}

// BuildSession assembles the session document for a completed attendance
// round. The first entry is the lecturer; every entry, lecturer included, is
// recorded as an attendance mark.
func (s *RosterService) BuildSession(courseCode string, entries []model.Participant) (model.AttendanceSession, error) {
	if len(entries) == 0 {
		return model.AttendanceSession{}, apperrors.Validation("attendance data must not be empty")
	}

	now := s.time.Now().UTC()
	marks := make([]model.StudentAttendance, 0, len(entries))
	for _, entry := range entries {
		marks = append(marks, model.StudentAttendance{
			StudentID:      entry.UniqueID,
			AttendanceTime: now,
			Attended:       entry.Present,
		})
	}

	return model.AttendanceSession{
		SessionID:      s.sessionID.Add(1),
		CourseCode:     courseCode,
		LecturerID:     entries[0].UniqueID,
		SessionDate:    now,
		AttendanceData: marks,
	}, nil
}

// SubmitSession posts a session document to the central attendance service.
func (s *RosterService) SubmitSession(ctx context.Context, session model.AttendanceSession) error {
	body, err := json.Marshal(session)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode attendance session")
	}

	url := s.config.CloudBaseURL + "/attendances"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "build attendance request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "send attendance session")
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperrors.Internalf("attendance submission rejected with status %d", resp.StatusCode)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "attendance session submitted",
			"course", session.CourseCode,
			"session_id", session.SessionID,
			"marks", len(session.AttendanceData),
		)
	}
	return nil
}

// syncCourse fetches and caches the roster for a single course.
func (s *RosterService) syncCourse(ctx context.Context, code string) error {
	url := fmt.Sprintf("%s/attendances/attendancedata/%s", s.config.CloudBaseURL, code)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("roster fetch returned status %d", resp.StatusCode)
	}

	var payload any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("decode roster payload: %w", err)
	}

	roster, err := extractRoster(payload, code)
	if err != nil {
		return err
	}

	s.store.Replace(code, roster)
	if s.logger != nil {
		s.logger.InfoContext(ctx, "course roster synced",
			"course", code,
			"students", len(roster.Students),
			"has_lecturer", roster.Lecturer != nil,
		)
	}
	return nil
}

// extractRoster pulls the lecturer and student lists out of the central
// service response for one course.
func extractRoster(payload any, code string) (model.Roster, error) {
	lecturerExpr := fmt.Sprintf("data.%q.lecturer_data", code)
	studentsExpr := fmt.Sprintf("data.%q.students", code)

	lecturerRaw, err := jmespath.Search(lecturerExpr, payload)
	if err != nil {
		return model.Roster{}, fmt.Errorf("evaluate %s: %w", lecturerExpr, err)
	}
	studentsRaw, err := jmespath.Search(studentsExpr, payload)
	if err != nil {
		return model.Roster{}, fmt.Errorf("evaluate %s: %w", studentsExpr, err)
	}
	if lecturerRaw == nil && studentsRaw == nil {
		return model.Roster{}, fmt.Errorf("no roster data for course %s", code)
	}

	var roster model.Roster
	if lecturer, ok := asParticipant(lecturerRaw); ok {
		roster.Lecturer = &lecturer
	}
	if students, ok := studentsRaw.([]any); ok {
		for _, raw := range students {
			if student, ok := asParticipant(raw); ok {
				roster.Students = append(roster.Students, student)
			}
		}
	}
	return roster, nil
}

// asParticipant maps one raw roster record onto a Participant. Presence always
// starts false; the terminal flips it during the attendance round.
func asParticipant(raw any) (model.Participant, bool) {
	fields, ok := raw.(map[string]any)
	if !ok {
		return model.Participant{}, false
	}
	uid, _ := fields["uid"].(string)
	name, _ := fields["name"].(string)
	uniqueID, _ := fields["unique_id"].(string)
	if name == "" && uniqueID == "" {
		return model.Participant{}, false
	}
	return model.Participant{
		UID:      uid,
		Name:     name,
		UniqueID: uniqueID,
		Present:  false,
	}, true
}

func (s *RosterService) logSyncError(ctx context.Context, err error) {
	if s.logger == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		s.logger.DebugContext(ctx, "roster sync cancelled", "error", err)
		return
	}
	s.logger.ErrorContext(ctx, "roster sync failed", "error", err)
}

func seedSessionID() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return time.Now().UnixNano()
	}
	// Keep the seed positive and well below overflow territory.
	return int64(binary.BigEndian.Uint64(buf[:]) % (1 << 31))
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
