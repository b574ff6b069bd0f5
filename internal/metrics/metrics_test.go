package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordBanAndUnban(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordBan(SourceManual, 1)
	m.RecordBan(SourceDetector, 2)
	m.RecordBan(SourceDetector, 3)
	m.RecordUnban(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.BansTotal.WithLabelValues(SourceManual)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.BansTotal.WithLabelValues(SourceDetector)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UnbansTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.BanListSize))
}

func TestEnforcementCounters(t *testing.T) {
	m := New(nil)

	m.AddNoopMessages(200)
	m.AddNoopMessages(0)
	m.AddNoopMessages(-5)
	m.RecordActionFailure("relocate")
	m.RecordDroppedEvent()
	m.RecordHijackAttempt("transfer")
	m.SetActiveTargets(3)
	m.RecordPersistFailure()

	assert.Equal(t, 200.0, testutil.ToFloat64(m.NoopMessagesTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActionFailures.WithLabelValues("relocate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsDroppedTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HijackAttempts.WithLabelValues("transfer")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ActiveTargets))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PersistFailures))
}

func TestRegistersAllCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.RecordBan(SourceManual, 1)
	m.RecordActionFailure("relocate")
	m.RecordHijackAttempt("monitor")

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 9)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordBan(SourceManual, 1)
		m.RecordUnban(0)
		m.SetBanListSize(1)
		m.SetActiveTargets(1)
		m.AddNoopMessages(1)
		m.RecordActionFailure("x")
		m.RecordDroppedEvent()
		m.RecordHijackAttempt("x")
		m.RecordPersistFailure()
	})
}
