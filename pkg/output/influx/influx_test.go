package influx

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ericogr/enviro-node/pkg/config"
	"github.com/ericogr/enviro-node/pkg/telemetry"
)

func newTestOutput(t *testing.T, url string) *InfluxOutput {
	t.Helper()
	o, err := NewInflux(config.InfluxConfig{URL: url, Org: "home", Bucket: "air", Token: "secret"}, "N", "1.0")
	if err != nil {
		t.Fatalf("NewInflux: %v", err)
	}
	return o.(*InfluxOutput)
}

func TestPublishSuccess(t *testing.T) {
	var gotBody string
	var gotReq *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotReq = r.Clone(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	o := newTestOutput(t, srv.URL)
	var snap telemetry.Snapshot
	snap.SetTemperature(21.5)
	snap.SetGas(450, 12)

	if err := o.Publish(snap); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if gotReq.Method != http.MethodPost {
		t.Fatalf("method: %s", gotReq.Method)
	}
	if gotReq.URL.Path != "/api/v2/write" {
		t.Fatalf("path: %s", gotReq.URL.Path)
	}
	q := gotReq.URL.Query()
	if q.Get("org") != "home" || q.Get("bucket") != "air" {
		t.Fatalf("query: %v", q)
	}
	if h := gotReq.Header.Get("Authorization"); h != "Token secret" {
		t.Fatalf("authorization: %q", h)
	}
	if h := gotReq.Header.Get("Content-Type"); !strings.HasPrefix(h, "text/plain") {
		t.Fatalf("content type: %q", h)
	}
	if !strings.Contains(gotBody, "celsius=21.50") || !strings.Contains(gotBody, "ppm=450u") {
		t.Fatalf("body: %q", gotBody)
	}
}

func TestPublishNonSuccessStatusIsFailure(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusUnauthorized, http.StatusInternalServerError} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"message":"nope"}`))
		}))

		o := newTestOutput(t, srv.URL)
		err := o.Publish(telemetry.Snapshot{})
		if err == nil {
			t.Fatalf("status %d: expected failure", status)
		}
		if !strings.Contains(err.Error(), "nope") {
			t.Fatalf("status %d: diagnostic body missing from %v", status, err)
		}
		srv.Close()
	}
}

func TestPublishDiagnosticIsBounded(t *testing.T) {
	big := strings.Repeat("x", 4096)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(big))
	}))
	defer srv.Close()

	o := newTestOutput(t, srv.URL)
	err := o.Publish(telemetry.Snapshot{})
	if err == nil {
		t.Fatal("expected failure")
	}
	if len(err.Error()) > diagLimit+128 {
		t.Fatalf("diagnostic not bounded: %d bytes", len(err.Error()))
	}
}

func TestPublishEmptySnapshotStillSubmits(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		b, _ := io.ReadAll(r.Body)
		if len(b) != 0 {
			t.Errorf("empty snapshot produced body %q", b)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	o := newTestOutput(t, srv.URL)
	if err := o.Publish(telemetry.Snapshot{}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if requests != 1 {
		t.Fatalf("requests: %d", requests)
	}
}

func TestNewInfluxRequiresURL(t *testing.T) {
	if _, err := NewInflux(config.InfluxConfig{}, "N", "1.0"); err == nil {
		t.Fatal("expected error for missing url")
	}
}
