// Package metrics exposes Prometheus collectors for HTTP traffic and the
// booking lifecycle.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/tent-booking/internal/config"
	"github.com/iliyamo/tent-booking/internal/model"
)

type Metrics struct {
	registry        *prometheus.Registry
	httpReqCnt      *prometheus.CounterVec
	httpDur         *prometheus.HistogramVec
	httpInfl        *prometheus.GaugeVec
	bookingsCreated prometheus.Counter
	statusChanges   *prometheus.CounterVec
}

func New(cfg config.MetricsConfig) *Metrics {
	ns := cfg.Namespace
	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(collectors.NewGoCollector())

	httpReqCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "http_requests_total"}, []string{"method", "route", "status"})
	httpDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: ns, Name: "http_request_duration_seconds", Buckets: prometheus.DefBuckets}, []string{"method", "route", "status"})
	httpInfl := prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: ns, Name: "http_requests_inflight"}, []string{"route"})
	r.MustRegister(httpReqCnt, httpDur, httpInfl)

	bookingsCreated := prometheus.NewCounter(prometheus.CounterOpts{Namespace: ns, Name: "bookings_created_total", Help: "Bookings created by customers."})
	statusChanges := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "booking_status_changes_total", Help: "Booking status transitions."}, []string{"from", "to"})
	r.MustRegister(bookingsCreated, statusChanges)

	return &Metrics{
		registry:        r,
		httpReqCnt:      httpReqCnt,
		httpDur:         httpDur,
		httpInfl:        httpInfl,
		bookingsCreated: bookingsCreated,
		statusChanges:   statusChanges,
	}
}

// BookingCreated and BookingStatusChanged let the booking service report
// lifecycle events without importing Prometheus.
func (m *Metrics) BookingCreated() { m.bookingsCreated.Inc() }

func (m *Metrics) BookingStatusChanged(from, to model.BookingStatus) {
	m.statusChanges.WithLabelValues(string(from), string(to)).Inc()
}

// Middleware records request counts and latency by route template.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			route := c.Path()
			if route == "" {
				route = c.Request().URL.Path
			}
			m.httpInfl.WithLabelValues(route).Inc()
			defer m.httpInfl.WithLabelValues(route).Dec()
			start := time.Now()

			err := next(c)
			if err != nil {
				// let the error handler write the response so the status is known
				c.Error(err)
			}
			status := strconv.Itoa(c.Response().Status)
			m.httpReqCnt.WithLabelValues(c.Request().Method, route, status).Inc()
			m.httpDur.WithLabelValues(c.Request().Method, route, status).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
