package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/offlinefirst/grabber/pkg/eventtap"
)

func TestObserveCountsByTypeAndChains(t *testing.T) {
	before := testutil.ToFloat64(EventsTotal.WithLabelValues("scroll_wheel"))
	var seen []eventtap.EventType
	observer := Observe(func(typ eventtap.EventType) { seen = append(seen, typ) })

	observer(eventtap.ScrollWheel)
	observer(eventtap.ScrollWheel)

	if got := testutil.ToFloat64(EventsTotal.WithLabelValues("scroll_wheel")) - before; got != 2 {
		t.Fatalf("expected 2 scroll events counted, got %v", got)
	}
	if len(seen) != 2 {
		t.Fatalf("expected next observer called twice, got %d", len(seen))
	}

	Observe(nil)(eventtap.MouseMoved)
}

func TestInstrumentCountsOnlyChanges(t *testing.T) {
	clearShift := eventtap.FlagTransformerFunc(func(raw eventtap.Flags, _ eventtap.KeyCode) eventtap.Flags {
		return raw &^ eventtap.FlagShift
	})
	transformer := Instrument(clearShift)
	before := testutil.ToFloat64(FlagRewritesTotal)

	if got := transformer.EventFlags(eventtap.FlagShift, eventtap.KeyNone); got != 0 {
		t.Fatalf("expected shift cleared, got %s", got)
	}
	transformer.EventFlags(eventtap.FlagCommand, eventtap.KeyNone)

	if got := testutil.ToFloat64(FlagRewritesTotal) - before; got != 1 {
		t.Fatalf("expected one rewrite, got %v", got)
	}
}

func TestSetArmed(t *testing.T) {
	SetArmed(true)
	if got := testutil.ToFloat64(TapArmed); got != 1 {
		t.Fatalf("expected armed gauge 1, got %v", got)
	}
	SetArmed(false)
	if got := testutil.ToFloat64(TapArmed); got != 0 {
		t.Fatalf("expected armed gauge 0, got %v", got)
	}
}

func TestHandlerExposesGrabberMetrics(t *testing.T) {
	Observe(nil)(eventtap.LeftMouseDown)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status code: %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `grabber_events_total{type="left_mouse_down"}`) {
		t.Fatalf("expected events counter, body: %s", body)
	}
	if !strings.Contains(body, "grabber_tap_armed") {
		t.Fatalf("expected armed gauge, body: %s", body)
	}
}

func TestServerStartStop(t *testing.T) {
	s := NewServer("127.0.0.1:0", nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	resp, err := http.Get("http://" + s.Addr() + "/metrics")
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "grabber_flag_rewrites_total") {
		t.Fatalf("expected rewrite counter, body: %s", body)
	}
}
