package metrics

// Provider define o contrato para envio de métricas.
type Provider interface {
	Count(name string, value float64, tags []string) error
	Gauge(name string, value float64, tags []string) error
	Histogram(name string, value float64, tags []string) error
}

// Nomes das métricas emitidas pelo console. Tags seguem o formato "chave:valor".
const (
	SessionsOpened   = "console.sessions.opened"
	SessionsActive   = "console.sessions.active"
	InitializeFailed = "console.initialize.failed"
	SaveTotal        = "console.save.total"
	SaveLatency      = "console.save.latency_ms"
	GuardRejected    = "console.save.guard_rejected"
	RequestLatency   = "console.http.latency_ms"
	CacheHit         = "console.cache.hit"
	CacheMiss        = "console.cache.miss"
	CacheInvalidated = "console.cache.invalidated"
)

// Multi replica cada métrica para todos os providers, retornando o primeiro erro.
type Multi []Provider

func (m Multi) Count(name string, value float64, tags []string) error {
	return m.each(func(p Provider) error { return p.Count(name, value, tags) })
}

func (m Multi) Gauge(name string, value float64, tags []string) error {
	return m.each(func(p Provider) error { return p.Gauge(name, value, tags) })
}

func (m Multi) Histogram(name string, value float64, tags []string) error {
	return m.each(func(p Provider) error { return p.Histogram(name, value, tags) })
}

func (m Multi) each(fn func(Provider) error) error {
	var first error
	for _, p := range m {
		if err := fn(p); err != nil && first == nil {
			first = err
		}
	}
	return first
}
