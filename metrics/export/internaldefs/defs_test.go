package internaldefs

import (
	"strings"
	"testing"

	goAuthClient "github.com/MrEthical07/goAuthClient"
)

func TestEveryCounterHasOneDefinition(t *testing.T) {
	seen := map[goAuthClient.MetricID]bool{}
	names := map[string]bool{}
	for _, def := range CounterDefs {
		if seen[def.ID] {
			t.Fatalf("duplicate definition for metric %d", def.ID)
		}
		if names[def.Name] {
			t.Fatalf("duplicate metric name %s", def.Name)
		}
		if !strings.HasSuffix(def.Name, "_total") {
			t.Fatalf("counter %s must end in _total", def.Name)
		}
		seen[def.ID] = true
		names[def.Name] = true
	}

	for id := goAuthClient.MetricAttemptStarted; id < goAuthClient.MetricExchangeLatency; id++ {
		if !seen[id] {
			t.Fatalf("metric %d has no counter definition", id)
		}
	}
	if seen[goAuthClient.MetricExchangeLatency] {
		t.Fatal("latency must be exported as a histogram only")
	}
}

func TestCounterFamiliesCoverEveryCounter(t *testing.T) {
	families := map[string]CounterFamily{}
	for _, f := range CounterFamilies {
		families[f.Name] = f
	}

	series := map[string]bool{}
	for _, def := range CounterDefs {
		f, ok := families[def.Family]
		if !ok {
			t.Fatalf("counter %s has unknown family %q", def.Name, def.Family)
		}
		if (f.AttrKey == "") != (def.AttrValue == "") {
			t.Fatalf("counter %s attribute does not match family %s", def.Name, f.Name)
		}
		key := def.Family + "/" + def.AttrValue
		if series[key] {
			t.Fatalf("duplicate series %s", key)
		}
		series[key] = true
	}
}

func TestBucketTablesAgree(t *testing.T) {
	if len(HistogramBounds) != 8 {
		t.Fatal("bucket table must have eight entries")
	}
	if len(HistogramBoundValues) != len(HistogramBounds)-1 {
		t.Fatal("bound values must exclude +Inf")
	}
}

func TestCumulativeBuckets(t *testing.T) {
	got := CumulativeBuckets(NormalizeBuckets([]uint64{1, 2, 3}))
	want := [8]uint64{1, 3, 6, 6, 6, 6, 6, 6}
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
