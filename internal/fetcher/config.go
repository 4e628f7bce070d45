package fetcher

const (
	DefaultMaxConcurrency = 4
	DefaultCommitSize     = 10
)

type Config struct {
	MaxConcurrency int `json:"max_concurrency"`
	CommitSize     int `json:"commit_size"`
}

func (c Config) withDefaults() Config {
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = DefaultMaxConcurrency
	}
	if c.CommitSize <= 0 {
		c.CommitSize = DefaultCommitSize
	}
	return c
}
