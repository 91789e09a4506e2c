package observability

import (
	"fmt"

	"github.com/DataDog/datadog-go/v5/statsd"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/raywall/dispatch-console/pkg/config"
	"github.com/raywall/dispatch-console/pkg/metrics"
)

// NoopProvider é um placeholder para quando métricas estão desabilitadas.
type NoopProvider struct{}

func (n *NoopProvider) Count(name string, value float64, tags []string) error     { return nil }
func (n *NoopProvider) Gauge(name string, value float64, tags []string) error     { return nil }
func (n *NoopProvider) Histogram(name string, value float64, tags []string) error { return nil }

// DatadogProvider adapta a lib oficial do Datadog para nossa interface.
type DatadogProvider struct {
	client statsd.ClientInterface
}

func (d *DatadogProvider) Count(name string, value float64, tags []string) error {
	return d.client.Count(name, int64(value), tags, 1)
}

func (d *DatadogProvider) Gauge(name string, value float64, tags []string) error {
	return d.client.Gauge(name, value, tags, 1)
}

func (d *DatadogProvider) Histogram(name string, value float64, tags []string) error {
	return d.client.Histogram(name, value, tags, 1)
}

// Setup é o resultado de SetupMetrics: o provider para o código de negócio e,
// quando habilitado, o registry Prometheus a ser exposto via HTTP.
type Setup struct {
	Provider metrics.Provider
	Registry *prometheus.Registry
}

// SetupMetrics inicializa os provedores habilitados no YAML.
func SetupMetrics(cfg config.MetricsConf) (*Setup, error) {
	var providers metrics.Multi
	setup := &Setup{}

	if cfg.Datadog.Enabled {
		client, err := statsd.New(cfg.Datadog.Addr, statsd.WithNamespace(cfg.Datadog.Namespace))
		if err != nil {
			return nil, fmt.Errorf("falha ao conectar no datadog statsd: %w", err)
		}
		providers = append(providers, &DatadogProvider{client: client})
	}

	if cfg.Prometheus.Enabled {
		collector := NewPrometheusCollector(cfg.Prometheus.Namespace)
		registry := prometheus.NewRegistry()
		if err := registry.Register(collector); err != nil {
			return nil, fmt.Errorf("falha ao registrar coletor prometheus: %w", err)
		}
		setup.Registry = registry
		providers = append(providers, collector)
	}

	switch len(providers) {
	case 0:
		setup.Provider = &NoopProvider{}
	case 1:
		setup.Provider = providers[0]
	default:
		setup.Provider = providers
	}
	return setup, nil
}
