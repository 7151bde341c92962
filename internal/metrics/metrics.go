package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "goshop"

type ServerMetrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
}

func NewServerMetrics(reg prometheus.Registerer) *ServerMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})

	reg.MustRegister(requests, latency)
	return &ServerMetrics{Requests: requests, LatencyMS: latency}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Instrument counts and times requests served by next under the handler label.
func (m *ServerMetrics) Instrument(handler string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		m.Requests.WithLabelValues(handler, strconv.Itoa(rec.status)).Inc()
		m.LatencyMS.WithLabelValues(handler).Observe(float64(time.Since(start).Milliseconds()))
	})
}

type ShopMetrics struct {
	OrdersCreated       prometheus.Counter
	CheckoutFailures    *prometheus.CounterVec
	CouponApplies       *prometheus.CounterVec
	NotificationsFailed prometheus.Counter
	StaleCouponsCleared prometheus.Counter
}

func NewShopMetrics(reg prometheus.Registerer) *ShopMetrics {
	m := &ShopMetrics{
		OrdersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Orders committed by checkout.",
		}),
		CheckoutFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_failures_total",
			Help:      "Rejected or failed checkouts by reason.",
		}, []string{"reason"}),
		CouponApplies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coupon_applies_total",
			Help:      "Coupon apply attempts by outcome.",
		}, []string{"outcome"}),
		NotificationsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_failed_total",
			Help:      "Order receipts that could not be sent.",
		}),
		StaleCouponsCleared: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_coupons_cleared_total",
			Help:      "Coupon bindings dropped because the coupon expired or vanished.",
		}),
	}

	reg.MustRegister(m.OrdersCreated, m.CheckoutFailures, m.CouponApplies, m.NotificationsFailed, m.StaleCouponsCleared)
	return m
}

func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
