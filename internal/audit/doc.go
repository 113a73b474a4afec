// Package audit provides the event model, sinks, and async dispatcher
// behind the engine's audit trail.
package audit
