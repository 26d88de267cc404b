package orchestrator

import (
	"github.com/guardrails/orchestrator/pkg/config"
	"github.com/guardrails/orchestrator/pkg/telemetry"
	"go.opentelemetry.io/otel/trace"
)

// Context is the process-wide immutable bundle every task runs against:
// configuration and a registry of initialized clients. Exactly one is
// created at startup and torn down at shutdown; every task holds a
// shared reference to it.
type Context struct {
	Config    *config.Config
	Clients   *ClientRegistry
	Telemetry *telemetry.Settings
}

// NewContext builds a Context from cfg and an already-populated registry.
// Telemetry is disabled by default; call WithTelemetry to enable it.
func NewContext(cfg *config.Config, clients *ClientRegistry) *Context {
	return &Context{Config: cfg, Clients: clients}
}

// WithTelemetry returns a copy of c with tracing settings attached.
func (c *Context) WithTelemetry(settings *telemetry.Settings) *Context {
	copy := *c
	copy.Telemetry = settings
	return &copy
}

// Tracer returns the tracer to use for this Context's spans: a no-op
// tracer when telemetry is disabled or unset, otherwise the configured
// (or global) OpenTelemetry tracer.
func (c *Context) Tracer() trace.Tracer {
	return telemetry.GetTracer(c.Telemetry)
}
