package metrics

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/uranium24/Fresh-Price/internal/domain/models"
)

var (
	once sync.Once

	AnalyticsLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "freshprice",
			Subsystem: "analytics",
			Name:      "latency_seconds",
			Help:      "Latency of analytics endpoints",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	AnalyticsErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "freshprice",
			Subsystem: "analytics",
			Name:      "errors_total",
			Help:      "Errors by analytics endpoint and kind",
		},
		[]string{"endpoint", "kind"},
	)

	ForecastRMSE = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "freshprice",
			Subsystem: "forecast",
			Name:      "backtest_rmse",
			Help:      "Latest backtest RMSE per commodity",
		},
		[]string{"commodity"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(AnalyticsLatency, AnalyticsErrors, ForecastRMSE)
	})
}

// Observe records latency and, on failure, an error of the matching kind.
func Observe(endpoint string, start time.Time, err error) {
	AnalyticsLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		AnalyticsErrors.WithLabelValues(endpoint, ErrorKind(err)).Inc()
	}
}

// ErrorKind buckets an error into validation, not_found or internal.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, models.ErrValidation):
		return "validation"
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	default:
		return "internal"
	}
}
