package demoserver

// Config holds configuration for the demo server.
type Config struct {
	// Addr is the listen address of the demo site.
	Addr string

	// InitialVersion is the starting version for all pages: 1 serves the
	// broken markup, 2 the fixed one.
	InitialVersion int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:           "localhost:9999",
		InitialVersion: 1,
	}
}
