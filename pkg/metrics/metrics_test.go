package metrics_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bankbr/baas/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilCollectorIsSafe(t *testing.T) {
	var c *metrics.Collector

	assert.NotPanics(t, func() {
		c.RecordAuthorization(metrics.OutcomeSuccess)
		c.RecordTransfer(metrics.OutcomeFailed, time.Millisecond)
		c.RecordRedemption(metrics.OutcomeDenied)
	})
}

func TestHandlerExposesCounters(t *testing.T) {
	c := metrics.New()
	c.RecordAuthorization(metrics.OutcomeSuccess)
	c.RecordTransfer(metrics.OutcomeSuccess, 5*time.Millisecond)
	c.RecordRedemption(metrics.OutcomeDenied)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `ledger_authorizations_total{outcome="success"} 1`)
	assert.Contains(t, body, `ledger_transfers_total{outcome="success"} 1`)
	assert.Contains(t, body, `ledger_code_redemptions_total{outcome="denied"} 1`)
}
