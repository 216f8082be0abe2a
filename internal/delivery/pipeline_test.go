// internal/delivery/pipeline_test.go
package delivery

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hpmon/mblwz/internal/lwz"
	"github.com/hpmon/mblwz/internal/store"
)

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func testStore() *store.Store {
	st := store.New()
	st.Replace("lwz404", store.Snapshot{
		lwz.OutsideTemp:  -1.0,
		lwz.BathroomTemp: 21.3,
	})
	return st
}

func newPipeline(t *testing.T, endpoint string, st *store.Store) (*Pipeline, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fallback.csv")
	p, err := New(
		Config{
			Device:        "lwz404",
			Endpoint:      endpoint,
			Username:      "user",
			Password:      "secret",
			FailureMarker: "connection error:",
			Interval:      time.Minute,
		},
		st,
		NewFallback(path, DefaultFields),
		testLog(),
	)
	if err != nil {
		t.Fatalf("New err=%v", err)
	}
	p.now = func() time.Time { return time.Unix(1700000000, 500000000) }
	return p, path
}

func fallbackLines(t *testing.T, path string) []string {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fallback: %v", err)
	}
	return strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
}

func TestDeliverOnce_Success(t *testing.T) {
	var got map[string]float64
	var user, pass string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, _ = r.BasicAuth()
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "ok")
	}))
	defer srv.Close()

	p, path := newPipeline(t, srv.URL, testStore())
	p.DeliverOnce()

	if user != "user" || pass != "secret" {
		t.Fatalf("basic auth: got=%s:%s", user, pass)
	}
	if got["timestamp"] != 1700000000.5 {
		t.Fatalf("timestamp: got=%v want=1700000000.5", got["timestamp"])
	}
	if got["Outside"] != -1.0 || got["Bathroom"] != 21.3 {
		t.Fatalf("payload: got=%v", got)
	}

	// Delivered samples never touch the fallback store.
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("fallback file must not exist after success")
	}
}

func TestDeliverOnce_HTTPErrorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p, path := newPipeline(t, srv.URL, testStore())
	p.DeliverOnce()

	lines := fallbackLines(t, path)
	if len(lines) != 2 {
		t.Fatalf("want header + 1 row, got %d lines", len(lines))
	}
	if lines[0] != "Timestamp, Outside, Bathroom" {
		t.Fatalf("header: got=%q", lines[0])
	}
	if lines[1] != "1700000000.500, -1, 21.3" {
		t.Fatalf("row: got=%q", lines[1])
	}
}

func TestDeliverOnce_DegradedOKResponseFallsBack(t *testing.T) {
	// The sink reports success at the transport level while the payload says
	// otherwise. Exactly one fallback row, sample not counted as delivered.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "Connection error: upstream database unavailable")
	}))
	defer srv.Close()

	p, path := newPipeline(t, srv.URL, testStore())
	p.DeliverOnce()

	lines := fallbackLines(t, path)
	if len(lines) != 2 {
		t.Fatalf("want header + 1 row, got %d lines", len(lines))
	}
}

func TestDeliverOnce_TransportErrorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // dead endpoint

	p, path := newPipeline(t, srv.URL, testStore())
	p.DeliverOnce()

	lines := fallbackLines(t, path)
	if len(lines) != 2 {
		t.Fatalf("want header + 1 row, got %d lines", len(lines))
	}
}

func TestDeliverOnce_UnsampledDeviceIsSkipped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request expected for an unsampled device")
	}))
	defer srv.Close()

	p, path := newPipeline(t, srv.URL, store.New())
	p.DeliverOnce()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("skip must not write a fallback row")
	}
}

func TestNewValidation(t *testing.T) {
	st := store.New()
	fb := NewFallback(filepath.Join(t.TempDir(), "f.csv"), DefaultFields)

	if _, err := New(Config{Endpoint: "http://x", Interval: time.Minute}, st, fb, testLog()); err == nil {
		t.Fatalf("missing device must fail")
	}
	if _, err := New(Config{Device: "d", Interval: time.Minute}, st, fb, testLog()); err == nil {
		t.Fatalf("missing endpoint must fail")
	}
	if _, err := New(Config{Device: "d", Endpoint: "http://x"}, st, fb, testLog()); err == nil {
		t.Fatalf("zero interval must fail")
	}
}
