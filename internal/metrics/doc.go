// Package metrics holds crowdplay's Prometheus collectors on a private
// registry. A nil *Metrics is a safe no-op everywhere, so wiring the debug
// listener stays optional. The exposition is served by Handler and mounted
// at /metrics by main.
package metrics
