package observability

import (
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/raywall/dispatch-console/pkg/metrics"
)

const defaultNamespace = "dispatch_console"

type metricKind int

const (
	kindCounter metricKind = iota
	kindGauge
	kindHistogram
)

type metricDef struct {
	kind   metricKind
	help   string
	labels []string
}

var catalog = map[string]metricDef{
	metrics.SessionsOpened:   {kindCounter, "The number of override sessions opened.", []string{"service"}},
	metrics.SessionsActive:   {kindGauge, "The number of override sessions currently open.", nil},
	metrics.InitializeFailed: {kindCounter, "The number of failed session initializations.", []string{"reason"}},
	metrics.SaveTotal:        {kindCounter, "The number of save attempts by outcome.", []string{"service", "outcome"}},
	metrics.SaveLatency:      {kindHistogram, "The time taken by the persistence gateway to save.", []string{"service"}},
	metrics.GuardRejected:    {kindCounter, "The number of saves rejected by a guard.", []string{"guard"}},
	metrics.RequestLatency:   {kindHistogram, "The latency of console HTTP requests.", []string{"method", "status"}},
	metrics.CacheHit:         {kindCounter, "The number of service view cache hits.", nil},
	metrics.CacheMiss:        {kindCounter, "The number of service view cache misses.", nil},
	metrics.CacheInvalidated: {kindCounter, "The number of cache invalidations received.", nil},
}

// PrometheusCollector é um prometheus.Collector que também implementa
// metrics.Provider, traduzindo tags "chave:valor" em labels.
type PrometheusCollector struct {
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
	labels     map[string][]string
}

// NewPrometheusCollector returns a new PrometheusCollector.
func NewPrometheusCollector(namespace string) *PrometheusCollector {
	if namespace == "" {
		namespace = defaultNamespace
	}
	c := &PrometheusCollector{
		counters:   map[string]*prometheus.CounterVec{},
		gauges:     map[string]*prometheus.GaugeVec{},
		histograms: map[string]*prometheus.HistogramVec{},
		labels:     map[string][]string{},
	}

	for name, def := range catalog {
		promName := promName(name)
		c.labels[name] = def.labels
		switch def.kind {
		case kindCounter:
			c.counters[name] = prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace, Name: promName, Help: def.help,
			}, def.labels)
		case kindGauge:
			c.gauges[name] = prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Namespace: namespace, Name: promName, Help: def.help,
			}, def.labels)
		case kindHistogram:
			c.histograms[name] = prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace, Name: promName, Help: def.help,
				Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
			}, def.labels)
		}
	}
	return c
}

// Describe is part of the prometheus.Collector interface.
func (c *PrometheusCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, v := range c.counters {
		v.Describe(ch)
	}
	for _, v := range c.gauges {
		v.Describe(ch)
	}
	for _, v := range c.histograms {
		v.Describe(ch)
	}
}

// Collect is part of the prometheus.Collector interface.
func (c *PrometheusCollector) Collect(ch chan<- prometheus.Metric) {
	for _, v := range c.counters {
		v.Collect(ch)
	}
	for _, v := range c.gauges {
		v.Collect(ch)
	}
	for _, v := range c.histograms {
		v.Collect(ch)
	}
}

func (c *PrometheusCollector) Count(name string, value float64, tags []string) error {
	vec, ok := c.counters[name]
	if !ok {
		return fmt.Errorf("contador desconhecido: %s", name)
	}
	vec.With(c.toLabels(name, tags)).Add(value)
	return nil
}

func (c *PrometheusCollector) Gauge(name string, value float64, tags []string) error {
	vec, ok := c.gauges[name]
	if !ok {
		return fmt.Errorf("gauge desconhecido: %s", name)
	}
	vec.With(c.toLabels(name, tags)).Set(value)
	return nil
}

func (c *PrometheusCollector) Histogram(name string, value float64, tags []string) error {
	vec, ok := c.histograms[name]
	if !ok {
		return fmt.Errorf("histograma desconhecido: %s", name)
	}
	vec.With(c.toLabels(name, tags)).Observe(value)
	return nil
}

// toLabels preenche todas as labels declaradas; tags ausentes viram "".
func (c *PrometheusCollector) toLabels(name string, tags []string) prometheus.Labels {
	labels := prometheus.Labels{}
	for _, l := range c.labels[name] {
		labels[l] = ""
	}
	for _, tag := range tags {
		k, v, ok := strings.Cut(tag, ":")
		if !ok {
			continue
		}
		if _, declared := labels[k]; declared {
			labels[k] = v
		}
	}
	return labels
}

func promName(name string) string {
	return strings.ReplaceAll(strings.TrimPrefix(name, "console."), ".", "_")
}
