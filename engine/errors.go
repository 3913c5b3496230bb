package engine

import "fmt"

// ConfigError indicates a malformed or invalid overlay configuration.
// It is fatal: the job aborts before any rendering starts.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid overlay config: %s", e.Reason)
	}
	return fmt.Sprintf("invalid overlay config: %s: %s", e.Field, e.Reason)
}

func configErrorf(field, format string, args ...any) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// DecodeError indicates an unreadable media input. For the background video
// it is fatal; for a single overlay image the overlay degrades to skipped.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError indicates a failure while encoding or muxing the output
// container. It is fatal and any partial output file is discarded.
type EncodeError struct {
	Path string
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: %v", e.Path, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }
