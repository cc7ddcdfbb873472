package config

import "time"

// ServerConfig holds configuration for the Rota server.
type ServerConfig struct {
	Addr      string // Listen address (default ":8080")
	LogLevel  string // Log level: debug, info, warn, error
	LogFormat string // Log format: text, json
	DBPath    string // SQLite database path (default ~/.rota/rota.db, ":memory:" for testing)

	// SolverURL is the base URL of the remote CSP solver. When empty the
	// server runs with the built-in simulated solver.
	SolverURL string

	// SimPhaseDelay is the per-phase delay of the simulated solver.
	SimPhaseDelay time.Duration
}

// DefaultServerConfig returns sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:          ":8080",
		LogLevel:      "info",
		LogFormat:     "text",
		SimPhaseDelay: 200 * time.Millisecond,
	}
}
