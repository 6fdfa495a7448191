package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"mindvault/internal/intake"
	"mindvault/internal/scheduler"
)

type mockTrigger struct {
	calls      int
	deliveries []scheduler.Delivery
}

func (m *mockTrigger) RunOnce(_ context.Context) []scheduler.Delivery {
	m.calls++
	return m.deliveries
}

func newTestHandler(secret string, d []scheduler.Delivery) (*Handler, *mockTrigger) {
	trig := &mockTrigger{deliveries: d}
	return NewHandler(trig, secret, slog.New(slog.NewTextHandler(io.Discard, nil))), trig
}

func TestHealth(t *testing.T) {
	h, _ := newTestHandler("", nil)

	rec := httptest.NewRecorder()
	h.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if diff := cmp.Diff(http.StatusOK, rec.Code); diff != "" {
		t.Errorf("status (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff("{\"status\":\"ok\"}\n", rec.Body.String()); diff != "" {
		t.Errorf("body (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff("application/json", rec.Header().Get("Content-Type")); diff != "" {
		t.Errorf("content type (-want +got):\n%s", diff)
	}
}

func TestTriggerBackup(t *testing.T) {
	deliveries := []scheduler.Delivery{
		{UserID: "1", Kind: intake.OutcomeBuilt, Sent: true},
		{UserID: "2", Kind: intake.OutcomeSkipped},
		{UserID: "3", Kind: intake.OutcomeFailed, Error: "build archive: boom"},
	}

	tests := []struct {
		name      string
		secret    string
		header    string
		wantCode  int
		wantCalls int
	}{
		{name: "open endpoint", secret: "", wantCode: http.StatusOK, wantCalls: 1},
		{name: "correct secret", secret: "s3cret", header: "s3cret", wantCode: http.StatusOK, wantCalls: 1},
		{name: "wrong secret", secret: "s3cret", header: "nope", wantCode: http.StatusUnauthorized},
		{name: "missing secret", secret: "s3cret", wantCode: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, trig := newTestHandler(tt.secret, deliveries)

			req := httptest.NewRequest(http.MethodPost, "/cron/backup", nil)
			if tt.header != "" {
				req.Header.Set(SecretHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			h.Router.ServeHTTP(rec, req)

			if diff := cmp.Diff(tt.wantCode, rec.Code); diff != "" {
				t.Errorf("status (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantCalls, trig.calls); diff != "" {
				t.Errorf("RunOnce calls (-want +got):\n%s", diff)
			}
			if tt.wantCode != http.StatusOK {
				return
			}

			var got backupResponse
			if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			want := backupResponse{Users: 3, Sent: 1, Deliveries: deliveries}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("response (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTriggerBackupNoUsers(t *testing.T) {
	h, _ := newTestHandler("", nil)

	rec := httptest.NewRecorder()
	h.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/cron/backup", nil))

	if diff := cmp.Diff("{\"users\":0,\"sent\":0,\"deliveries\":[]}\n", rec.Body.String()); diff != "" {
		t.Errorf("body (-want +got):\n%s", diff)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h, trig := newTestHandler("", nil)

	rec := httptest.NewRecorder()
	h.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cron/backup", nil))

	if diff := cmp.Diff(http.StatusMethodNotAllowed, rec.Code); diff != "" {
		t.Errorf("status (-want +got):\n%s", diff)
	}
	if trig.calls != 0 {
		t.Errorf("RunOnce should not run, got %d calls", trig.calls)
	}
}
