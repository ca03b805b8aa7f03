package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInitIdempotent(t *testing.T) {
	// MustRegister panics on double registration; once.Do guards it.
	Init()
	Init()
}

func TestObservePageAndRecords(t *testing.T) {
	before := testutil.ToFloat64(crawlerPagesTotal.WithLabelValues("viral", "ok"))
	ObservePage("viral", "ok")
	if got := testutil.ToFloat64(crawlerPagesTotal.WithLabelValues("viral", "ok")); got != before+1 {
		t.Errorf("expected pages counter %f, got %f", before+1, got)
	}

	added := testutil.ToFloat64(crawlerRecordsAddedTotal.WithLabelValues("viral"))
	ObserveRecordsAdded("viral", 3)
	ObserveRecordsAdded("viral", 0)
	if got := testutil.ToFloat64(crawlerRecordsAddedTotal.WithLabelValues("viral")); got != added+3 {
		t.Errorf("expected records counter %f, got %f", added+3, got)
	}
}

func TestObserveRunAndStops(t *testing.T) {
	runs := testutil.ToFloat64(crawlerRunsTotal.WithLabelValues("failed"))
	ObserveRun("failed")
	if got := testutil.ToFloat64(crawlerRunsTotal.WithLabelValues("failed")); got != runs+1 {
		t.Errorf("expected runs counter %f, got %f", runs+1, got)
	}

	stops := testutil.ToFloat64(crawlerTermStopsTotal.WithLabelValues("cap_reached"))
	ObserveTermStop("cap_reached")
	if got := testutil.ToFloat64(crawlerTermStopsTotal.WithLabelValues("cap_reached")); got != stops+1 {
		t.Errorf("expected stops counter %f, got %f", stops+1, got)
	}

	SetStoreRecords(42)
	if got := testutil.ToFloat64(storeRecords); got != 42 {
		t.Errorf("expected store gauge 42, got %f", got)
	}
}
