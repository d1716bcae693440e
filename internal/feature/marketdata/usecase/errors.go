package usecase

import "fmt"

// NetworkError reports a failed exchange with an upstream provider:
// unreachable host, timeout, or a non-2xx HTTP status. Transient by
// nature; callers retry or fall back to cached data.
type NetworkError struct {
	Op     string // e.g. "coingecko markets"
	Status int    // HTTP status code, 0 for transport failures
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: http %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ParseError reports an upstream payload that could not be decoded or
// whose fields could not be interpreted. The offending message is
// dropped; the connection or fetch cycle itself stays usable.
type ParseError struct {
	Op  string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
