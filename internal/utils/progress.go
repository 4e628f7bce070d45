package utils

// ProgressCallback reports how many of total items are done. Callers may
// invoke it from several goroutines.
type ProgressCallback func(done, total int)
