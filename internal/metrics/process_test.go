package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordProcessTransition(t *testing.T) {
	before := GetProcessMetrics()
	startsBefore := testutil.ToFloat64(processStarts)

	RecordProcessTransition("idle", "starting")
	RecordProcessTransition("starting", "running")

	if got := testutil.ToFloat64(processUp); got != 1 {
		t.Errorf("process_up = %v, want 1", got)
	}
	if got := testutil.ToFloat64(processStarts); got != startsBefore+1 {
		t.Errorf("process_starts_total = %v, want %v", got, startsBefore+1)
	}

	RecordProcessTransition("running", "stopping")
	RecordProcessTransition("stopping", "idle")

	if got := testutil.ToFloat64(processUp); got != 0 {
		t.Errorf("process_up = %v, want 0", got)
	}

	after := GetProcessMetrics()
	if after.Up {
		t.Error("snapshot still reports up")
	}
	if after.Starts != before.Starts+1 {
		t.Errorf("starts = %d, want %d", after.Starts, before.Starts+1)
	}
	if after.Exits[ExitReasonStopped] != before.Exits[ExitReasonStopped]+1 {
		t.Errorf("stopped exits = %d, want %d", after.Exits[ExitReasonStopped], before.Exits[ExitReasonStopped]+1)
	}
}

func TestExitReasons(t *testing.T) {
	tests := []struct {
		old, new string
		reason   string
	}{
		{"starting", "error", ExitReasonLaunchFailed},
		{"stopping", "idle", ExitReasonStopped},
		{"running", "idle", ExitReasonExited},
		{"running", "error", ExitReasonCrashed},
	}

	for _, tt := range tests {
		t.Run(tt.reason, func(t *testing.T) {
			counter := processExits.WithLabelValues(tt.reason)
			before := testutil.ToFloat64(counter)

			RecordProcessTransition(tt.old, tt.new)

			if got := testutil.ToFloat64(counter); got != before+1 {
				t.Errorf("exits{reason=%q} = %v, want %v", tt.reason, got, before+1)
			}
		})
	}
}

func TestGetProcessMetricsReturnsCopy(t *testing.T) {
	RecordProcessTransition("running", "error")
	m := GetProcessMetrics()
	m.Exits[ExitReasonCrashed] = 9999

	if GetProcessMetrics().Exits[ExitReasonCrashed] == 9999 {
		t.Error("snapshot was modified through returned copy")
	}
}

func TestRecordDemoLEDRequest(t *testing.T) {
	counter := demoLEDRequests.WithLabelValues("on", "rejected")
	before := testutil.ToFloat64(counter)

	RecordDemoLEDRequest("on", "rejected")
	RecordDemoLEDRequest("on", "rejected")

	if got := testutil.ToFloat64(counter); got != before+2 {
		t.Errorf("demo requests = %v, want %v", got, before+2)
	}
}
