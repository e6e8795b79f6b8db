// File: internal/agent/events.go
package agent

import "github.com/xkilldash9x/aviator-cli/api/schemas"

// publish fans one lifecycle event out to every sink, synchronously and
// in registration order, so each sink observes the per-run stream in
// emission order.
func (a *Agent) publish(ev schemas.Event) {
	for _, sink := range a.sinks {
		sink.Publish(ev)
	}
}

// AddSink registers an additional event sink. It must not be called
// while a run is in flight.
func (a *Agent) AddSink(sink schemas.EventSink) {
	a.sinks = append(a.sinks, sink)
}
