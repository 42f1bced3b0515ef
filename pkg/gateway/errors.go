package gateway

import "fmt"

// Error wraps transport and remote 4xx/5xx failures from the LLM
// gateway (§4.2 "Failure semantics"). Engines in parallel phases convert
// this into an in-band error artifact rather than aborting peers;
// engines in single-call phases let it become a terminal stream error.
type Error struct {
	Model      string
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("gateway error (model=%s, status=%d): %s", e.Model, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gateway error (model=%s): %s", e.Model, e.Message)
}
