// Package observability provides OpenTelemetry tracing for Strata runs: one
// span per run, per staged source, per layer and per output.
package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer trace.Tracer
	mu     sync.RWMutex
)

func setTracer(t trace.Tracer) {
	mu.Lock()
	tracer = t
	mu.Unlock()
}

// Tracer returns the tracer installed by Init, or the global provider's
// tracer when Init was never called.
func Tracer() trace.Tracer {
	mu.RLock()
	t := tracer
	mu.RUnlock()
	if t == nil {
		return otel.Tracer("strata")
	}
	return t
}

// Span wraps a trace span and batches attributes until End
type Span struct {
	span       trace.Span
	startTime  time.Time
	attributes []attribute.KeyValue
}

// StartSpan starts a span named operation as a child of ctx.
func StartSpan(ctx context.Context, operation string) (context.Context, *Span) {
	ctx, span := Tracer().Start(ctx, operation)
	return ctx, &Span{span: span, startTime: time.Now()}
}

// SetAttribute adds an attribute to the span
func (s *Span) SetAttribute(key string, value interface{}) {
	var attr attribute.KeyValue
	switch v := value.(type) {
	case string:
		attr = attribute.String(key, v)
	case int:
		attr = attribute.Int(key, v)
	case int64:
		attr = attribute.Int64(key, v)
	case float64:
		attr = attribute.Float64(key, v)
	case bool:
		attr = attribute.Bool(key, v)
	case []string:
		attr = attribute.StringSlice(key, v)
	default:
		attr = attribute.String(key, fmt.Sprintf("%v", v))
	}
	s.attributes = append(s.attributes, attr)
}

// AddEvent adds an event to the span
func (s *Span) AddEvent(name string, attrs ...attribute.KeyValue) {
	s.span.AddEvent(name, trace.WithAttributes(attrs...))
}

// Finish records the outcome of the traced operation and ends the span.
func (s *Span) Finish(err error) {
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	} else {
		s.span.SetStatus(codes.Ok, "")
	}
	s.End()
}

// End ends the span
func (s *Span) End() {
	s.attributes = append(s.attributes, attribute.Int64("duration_ms", time.Since(s.startTime).Milliseconds()))
	s.span.SetAttributes(s.attributes...)
	s.span.End()
}
