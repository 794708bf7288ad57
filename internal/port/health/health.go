// Package health defines the provider health-query port.
package health

import "context"

// Checker answers availability questions about provider profiles.
//
// Health and rate-limit state live outside the routing core; injecting the
// query keeps routing logic testable without simulating global state.
type Checker interface {
	// Available reports whether the named provider can take traffic now.
	// Implementations must be non-blocking best-effort: when health is
	// unknown, report available so routing never stalls on missing data.
	Available(ctx context.Context, providerName string) bool
}

// Static is a fixed-map Checker for configuration-driven and test setups.
// A provider absent from the map is considered available.
type Static map[string]bool

// Available implements Checker.
func (s Static) Available(_ context.Context, providerName string) bool {
	if up, ok := s[providerName]; ok {
		return up
	}
	return true
}
