// SPDX-License-Identifier: EPL-2.0

package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Runs(t *testing.T) {
	t.Parallel()

	m := New(prometheus.NewRegistry())

	m.RecordRunStarted()
	m.RecordRunStarted()
	if got := testutil.ToFloat64(m.ActiveRuns); got != 2 {
		t.Errorf("active runs = %v, want 2", got)
	}

	m.RecordRunSucceeded(0.5, 3, 4096)
	m.RecordRunFailed(0.1, "output_exists")

	if got := testutil.ToFloat64(m.ActiveRuns); got != 0 {
		t.Errorf("active runs = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.RunsStarted); got != 2 {
		t.Errorf("runs started = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.RunsSucceeded); got != 1 {
		t.Errorf("runs succeeded = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.RunFailures.WithLabelValues("output_exists")); got != 1 {
		t.Errorf("output_exists failures = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.PacketsWritten); got != 3 {
		t.Errorf("packets = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.BytesWritten); got != 4096 {
		t.Errorf("bytes = %v, want 4096", got)
	}
}

func TestMetrics_Frames(t *testing.T) {
	t.Parallel()

	m := New(prometheus.NewRegistry())
	m.RecordFrameDecoded(1024)
	m.RecordFrameDecoded(452)

	if got := testutil.ToFloat64(m.FramesDecoded); got != 2 {
		t.Errorf("frames = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.SamplesDecoded); got != 1476 {
		t.Errorf("samples = %v, want 1476", got)
	}
}

func TestMetrics_Exposition(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg)
	m.RecordRunStarted()

	expected := `
# HELP audxcode_runs_started_total Total number of transcode runs started
# TYPE audxcode_runs_started_total counter
audxcode_runs_started_total 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "audxcode_runs_started_total"); err != nil {
		t.Error(err)
	}
}

func TestMetrics_Nil(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.RecordRunStarted()
	m.RecordRunSucceeded(1, 1, 1)
	m.RecordRunFailed(1, "unexpected")
	m.RecordFrameDecoded(1)
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	New(reg)

	defer func() {
		if recover() == nil {
			t.Error("second registration on the same registry did not panic")
		}
	}()
	New(reg)
}
