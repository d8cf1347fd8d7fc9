package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proplanet/ecoledger/core"
)

func TestRecorder_Counters(t *testing.T) {
	r := New()

	r.SignUp()
	r.TaskCompleted(core.CategoryPlanting, 75)
	r.TaskCompleted(core.CategoryPlanting, 50)
	r.RedemptionCreated(core.PayoutUPI, 150)
	r.RedemptionRejected(core.ErrBelowMinimum)
	r.RedemptionRejected(fmt.Errorf("wrapped: %w", core.ErrInsufficientBalance))
	r.RedemptionRejected(errors.New("db down"))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.signups))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.tasks.WithLabelValues("planting")))
	assert.Equal(t, 125.0, testutil.ToFloat64(r.coinsAwarded.WithLabelValues("planting")))
	assert.Equal(t, 150.0, testutil.ToFloat64(r.coinsRedeemed.WithLabelValues("upi")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.rejections.WithLabelValues("below_minimum")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.rejections.WithLabelValues("insufficient_balance")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.rejections.WithLabelValues("internal")))
}

func TestRecorder_HandlerExposesCache(t *testing.T) {
	r := New()
	cache := core.NewInMemoryCache(core.CacheConfig{TTL: time.Minute})
	r.WatchCache(cache)

	_ = cache.Set("h", &core.Session{ID: "s"})
	_, _ = cache.Get("h")
	r.SignUp()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "ecoledger_signups_total 1"), body)
	assert.Contains(t, body, "ecoledger_session_cache_hits_total 1")
	assert.Contains(t, body, "ecoledger_session_cache_entries 1")
}
