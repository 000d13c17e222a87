package metricstest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tphakala/wildlife-analytics/internal/observability/metrics"
)

func TestRecorder(t *testing.T) {
	t.Parallel()

	recorder := NewRecorder()
	assert.False(t, recorder.HasRecordedMetrics())

	recorder.RecordOperation(metrics.OpSaveDetections, metrics.StatusSuccess)
	recorder.RecordOperation(metrics.OpSaveDetections, metrics.StatusSuccess)
	recorder.RecordDuration(metrics.OpSaveDetections, 0.25)
	recorder.RecordError(metrics.OpSaveDetections, "database")

	assert.Equal(t, 2, recorder.GetOperationCount(metrics.OpSaveDetections, metrics.StatusSuccess))
	assert.Equal(t, 0, recorder.GetOperationCount(metrics.OpSaveDetections, metrics.StatusError))
	assert.Equal(t, []float64{0.25}, recorder.GetDurations(metrics.OpSaveDetections))
	assert.Nil(t, recorder.GetDurations(metrics.OpMigrate))
	assert.Equal(t, 1, recorder.GetErrorCount(metrics.OpSaveDetections, "database"))
	assert.True(t, recorder.HasRecordedMetrics())
}
