package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"wardrobeapi/stylist"
)

// Registry keeps counters for exposition and mirrors every increment to an
// OpenTelemetry counter of the same name.
type Registry struct {
	mu       sync.RWMutex
	counters map[string]*atomic.Int64
	meter    metric.Meter
	otelCtrs map[string]metric.Int64Counter
}

func NewRegistry() *Registry {
	return &Registry{
		counters: make(map[string]*atomic.Int64),
		meter:    otel.GetMeterProvider().Meter("wardrobeapi"),
		otelCtrs: make(map[string]metric.Int64Counter),
	}
}

func fullKey(name string, labels map[string]string) string {
	if len(labels) == 0 {
		return name
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(labels[k])
	}
	b.WriteByte('}')
	return b.String()
}

func (r *Registry) counter(key string) *atomic.Int64 {
	r.mu.RLock()
	c := r.counters[key]
	r.mu.RUnlock()
	if c != nil {
		return c
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if c = r.counters[key]; c == nil {
		c = new(atomic.Int64)
		r.counters[key] = c
	}
	return c
}

func (r *Registry) instrument(name string) metric.Int64Counter {
	r.mu.RLock()
	inst := r.otelCtrs[name]
	r.mu.RUnlock()
	if inst != nil {
		return inst
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if inst = r.otelCtrs[name]; inst == nil {
		ctr, err := r.meter.Int64Counter(name)
		if err != nil {
			return nil
		}
		r.otelCtrs[name] = ctr
		inst = ctr
	}
	return inst
}

// Inc adds n to the counter identified by name and labels.
func (r *Registry) Inc(ctx context.Context, name string, labels map[string]string, n int64) {
	r.counter(fullKey(name, labels)).Add(n)

	if inst := r.instrument(name); inst != nil {
		attrs := make([]attribute.KeyValue, 0, len(labels))
		for k, v := range labels {
			attrs = append(attrs, attribute.String(k, v))
		}
		inst.Add(ctx, n, metric.WithAttributes(attrs...))
	}
}

// OutfitGenerated records one pipeline outcome.
func (r *Registry) OutfitGenerated(ctx context.Context, occasion stylist.Occasion, outcome string) {
	r.Inc(ctx, "outfit_generations_total", map[string]string{
		"occasion": string(occasion),
		"outcome":  outcome,
	}, 1)
	switch outcome {
	case stylist.OutcomeRepaired:
		r.Inc(ctx, "outfit_repairs_total", nil, 1)
	case stylist.OutcomeRetried:
		r.Inc(ctx, "outfit_retries_total", nil, 1)
	}
}

// ItemProcessed records the result of a background item processing run.
func (r *Registry) ItemProcessed(ctx context.Context, outcome string) {
	r.Inc(ctx, "item_processing_total", map[string]string{"outcome": outcome}, 1)
}

func (r *Registry) SnapshotLines() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.counters))
	for k := range r.counters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s %d", k, r.counters[k].Load()))
	}
	return lines
}

func (r *Registry) SnapshotJSON() map[string]int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]int64, len(r.counters))
	for k, v := range r.counters {
		out[k] = v.Load()
	}
	return out
}

func (r *Registry) EchoHandlerText(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextPlainCharsetUTF8)
	for _, line := range r.SnapshotLines() {
		if _, err := c.Response().Write([]byte(line + "\n")); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) EchoHandlerJSON(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSONCharsetUTF8)
	return json.NewEncoder(c.Response()).Encode(r.SnapshotJSON())
}
