package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biogate/internal/enrollment/biometric"
	"biogate/internal/enrollment/handler"
	enrollmetrics "biogate/internal/enrollment/metrics"
	"biogate/internal/enrollment/service"
	"biogate/internal/enrollment/store"
	"biogate/internal/enrollment/store/snapshot"
	"biogate/internal/platform/config"
	"biogate/internal/platform/metrics"
	"biogate/pkg/platform/audit/publisher"
	auditmemory "biogate/pkg/platform/audit/store/memory"
	"biogate/pkg/testutil"
)

const testAdminToken = "test-admin-token"

type app struct {
	router http.Handler
	path   string
}

func newTestApp(t *testing.T, path string) *app {
	t.Helper()
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	fs, err := snapshot.NewFile(path)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	enrollMetrics := enrollmetrics.New(reg)
	records, err := store.Open(ctx, fs, store.WithMetrics(enrollMetrics))
	require.NoError(t, err)

	auditLog := publisher.NewPublisher(auditmemory.NewInMemoryStore())
	svc := service.New(records, biometric.PlaceholderScanner{},
		service.WithLogger(log),
		service.WithAuditPublisher(auditLog),
		service.WithAlertFeed(auditLog),
		service.WithMetrics(enrollMetrics),
	)
	router := newRouter(routerDeps{
		logger:      log,
		gatherer:    reg,
		httpMetrics: metrics.New(reg),
		enrollment:  handler.New(svc, log, testAdminToken),
		recordCount: records.Len,
	})
	return &app{router: router, path: path}
}

func (a *app) enroll(t *testing.T, regID, name string) *httptest.ResponseRecorder {
	t.Helper()
	return testutil.DoRequest(a.router, testutil.NewJSONRequest(t, http.MethodPost, "/enrollments", map[string]string{
		"name":            name,
		"phone":           "555-0100",
		"registration_id": regID,
		"photo_reference": name + ".png",
	}))
}

func (a *app) verify(t *testing.T, regID string) handler.VerifyResponse {
	t.Helper()
	rr := testutil.DoRequest(a.router, testutil.NewJSONRequest(t, http.MethodPost, "/verifications", map[string]string{
		"registration_id": regID,
	}))
	require.Equal(t, http.StatusOK, rr.Code)
	return *testutil.UnmarshalResponse[handler.VerifyResponse](t, rr)
}

func (a *app) alerts(t *testing.T) handler.AlertsResponse {
	t.Helper()
	req := testutil.WithAdminToken(testutil.NewRequest(t, http.MethodGet, "/admin/alerts"), testAdminToken)
	rr := testutil.DoRequest(a.router, req)
	require.Equal(t, http.StatusOK, rr.Code)
	return *testutil.UnmarshalResponse[handler.AlertsResponse](t, rr)
}

func TestEnrollmentLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_db.json")
	a := newTestApp(t, path)

	testutil.Given(t, "a new registration id", func(t *testing.T) {
		testutil.When(t, "the identity enrolls", func(t *testing.T) {
			rr := a.enroll(t, "R100", "Alice")
			testutil.Then(t, "it is created", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusCreated)
				testutil.AssertJSONContains(t, rr, "registration_id", "R100")
			})
		})

		testutil.When(t, "the same id enrolls again", func(t *testing.T) {
			rr := a.enroll(t, "R100", "Mallory")
			testutil.Then(t, "it is rejected as a conflict", func(t *testing.T) {
				testutil.AssertStatusAndError(t, rr, http.StatusConflict, "conflict")
			})
		})
	})

	testutil.Given(t, "an enrolled unverified identity", func(t *testing.T) {
		testutil.When(t, "it verifies for the first time", func(t *testing.T) {
			resp := a.verify(t, "R100")
			testutil.Then(t, "access is granted", func(t *testing.T) {
				assert.True(t, resp.Granted)
				assert.Equal(t, "Access Granted", resp.Title)
			})
		})

		testutil.When(t, "it verifies again", func(t *testing.T) {
			resp := a.verify(t, "R100")
			testutil.Then(t, "access is denied and administrators are alerted", func(t *testing.T) {
				assert.False(t, resp.Granted)
				assert.Equal(t, "already_verified", resp.Outcome)

				alerts := a.alerts(t).Alerts
				require.Len(t, alerts, 1)
				assert.Equal(t, "critical", alerts[0].Severity)
				assert.Contains(t, alerts[0].Message, "tried to verify fingerprint again")
			})
		})
	})

	testutil.Given(t, "an id that was never enrolled", func(t *testing.T) {
		resp := a.verify(t, "GHOST")
		testutil.Then(t, "access is denied and an unknown user alert is raised", func(t *testing.T) {
			assert.Equal(t, "unknown_identity", resp.Outcome)
			alerts := a.alerts(t).Alerts
			require.Len(t, alerts, 2)
			assert.Equal(t, "Unknown User", alerts[0].Name)
		})
	})

	testutil.Given(t, "the process restarts on the same snapshot", func(t *testing.T) {
		restarted := newTestApp(t, path)
		testutil.Then(t, "the verified state survives", func(t *testing.T) {
			resp := restarted.verify(t, "R100")
			assert.Equal(t, "already_verified", resp.Outcome)

			req := testutil.WithAdminToken(testutil.NewRequest(t, http.MethodGet, "/admin/enrollments/R100"), testAdminToken)
			rr := testutil.DoRequest(restarted.router, req)
			require.Equal(t, http.StatusOK, rr.Code)
			rec := testutil.UnmarshalResponse[handler.RecordResponse](t, rr)
			assert.True(t, rec.Verified)
			assert.Equal(t, "Alice", rec.Name)
		})
	})
}

func TestOperationalEndpoints(t *testing.T) {
	a := newTestApp(t, filepath.Join(t.TempDir(), "user_db.json"))
	a.enroll(t, "R1", "Bob")

	rr := testutil.DoRequest(a.router, testutil.NewRequest(t, http.MethodGet, "/health"))
	require.Equal(t, http.StatusOK, rr.Code)
	var health map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &health))
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, 1.0, health["identity_records"])
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	rr = testutil.DoRequest(a.router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "biogate_enrollments_total")
	assert.Contains(t, body, "biogate_identity_records 1")
	assert.Contains(t, body, "biogate_http_requests_total")
}

func TestOpenBackend(t *testing.T) {
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("file", func(t *testing.T) {
		cfg := config.Server{Store: config.StoreConfig{Backend: config.BackendFile, Path: filepath.Join(t.TempDir(), "db.json")}}
		blobs, release, err := openBackend(ctx, cfg, log)
		require.NoError(t, err)
		defer release()
		assert.IsType(t, &snapshot.FileStore{}, blobs)
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := config.Server{Store: config.StoreConfig{
			Backend:      config.BackendSQLite,
			Path:         filepath.Join(t.TempDir(), "records.db"),
			SnapshotName: "identity_records",
		}}
		blobs, release, err := openBackend(ctx, cfg, log)
		require.NoError(t, err)
		defer release()
		assert.IsType(t, &snapshot.SQLiteStore{}, blobs)
	})

	t.Run("unknown", func(t *testing.T) {
		_, release, err := openBackend(ctx, config.Server{Store: config.StoreConfig{Backend: "tape"}}, log)
		require.Error(t, err)
		assert.NotNil(t, release)
	})

	t.Run("unreachable postgres", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		cfg := config.Server{Store: config.StoreConfig{
			Backend:      config.BackendPostgres,
			DatabaseURL:  "postgres://nobody@127.0.0.1:1/none?sslmode=disable&connect_timeout=1",
			SnapshotName: "identity_records",
		}}
		_, _, err := openBackend(ctx, cfg, log)
		require.Error(t, err)
	})
}
