package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics содержит метрики оформления заказов и сидинга.
type OrderMetrics struct {
	// Счётчики операций
	ordersPlaced  prometheus.Counter
	orderFailures *prometheus.CounterVec

	// Гистограмма времени оформления заказа
	placeDuration prometheus.Histogram

	// Счётчики сидинга
	productsSeeded  prometheus.Counter
	customersSeeded prometheus.Counter

	// Счётчик списанных со склада единиц
	unitsSold prometheus.Counter
}

// NewOrderMetrics создаёт новый экземпляр метрик с default registerer.
func NewOrderMetrics() *OrderMetrics {
	return newOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		ordersPlaced: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orderdesk_orders_placed_total",
			Help: "Total number of orders committed successfully",
		}),
		orderFailures: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "orderdesk_order_failures_total",
			Help: "Total number of rejected place-order calls grouped by reason",
		}, []string{"reason"}),
		placeDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "orderdesk_place_order_duration_seconds",
			Help:    "Duration of place-order calls in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		productsSeeded: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orderdesk_products_seeded_total",
			Help: "Total number of products inserted by the seeding loader",
		}),
		customersSeeded: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orderdesk_customers_seeded_total",
			Help: "Total number of customers inserted by the seeding loader",
		}),
		unitsSold: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orderdesk_units_sold_total",
			Help: "Total number of stock units decremented by committed orders",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOrderPlaced увеличивает счётчик успешных заказов.
func (m *OrderMetrics) RecordOrderPlaced() {
	m.ordersPlaced.Inc()
}

// RecordOrderFailure увеличивает счётчик отказов с меткой причины.
func (m *OrderMetrics) RecordOrderFailure(reason string) {
	m.orderFailures.WithLabelValues(reason).Inc()
}

// RecordPlaceDuration записывает время оформления заказа.
func (m *OrderMetrics) RecordPlaceDuration(duration time.Duration) {
	m.placeDuration.Observe(duration.Seconds())
}

// RecordProductsSeeded увеличивает счётчик добавленных при сидинге товаров на n.
func (m *OrderMetrics) RecordProductsSeeded(n int) {
	m.productsSeeded.Add(float64(n))
}

// RecordCustomersSeeded увеличивает счётчик созданных покупателей на n.
func (m *OrderMetrics) RecordCustomersSeeded(n int) {
	m.customersSeeded.Add(float64(n))
}

// RecordUnitsSold увеличивает счётчик проданных единиц на n.
func (m *OrderMetrics) RecordUnitsSold(n int32) {
	m.unitsSold.Add(float64(n))
}
