package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.SamplesTotal.Add(60)
	m.AppendsTotal.Add(10)
	m.AppendErrors.Inc()
	m.WorkingFileBytes.Set(320)

	if got := testutil.ToFloat64(m.SamplesTotal); got != 60 {
		t.Errorf("expected 60 samples, got %f", got)
	}
	if got := testutil.ToFloat64(m.AppendsTotal); got != 10 {
		t.Errorf("expected 10 appends, got %f", got)
	}
	if got := testutil.ToFloat64(m.AppendErrors); got != 1 {
		t.Errorf("expected 1 append error, got %f", got)
	}
	if got := testutil.ToFloat64(m.WorkingFileBytes); got != 320 {
		t.Errorf("expected gauge 320, got %f", got)
	}
}

func TestHandlerServesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.RotationsTotal.Inc()

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	res, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	if !strings.Contains(string(body), "pacsat_wod_rotations_total 1") {
		t.Errorf("rotation counter missing from scrape output:\n%s", body)
	}
}
