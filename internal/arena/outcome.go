package arena

import "time"

// Status classifies how one execution ended.
type Status int

const (
	// StatusOK - the process exited zero; Output holds its trimmed stdout.
	StatusOK Status = iota
	// StatusTimeout - the deadline elapsed; the process was killed and reaped.
	StatusTimeout
	// StatusNonZeroExit - the process exited non-zero; Diagnostic holds stderr.
	StatusNonZeroExit
	// StatusRuntimeError - the process could not be launched at all.
	StatusRuntimeError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusTimeout:
		return "timeout"
	case StatusNonZeroExit:
		return "non_zero_exit"
	case StatusRuntimeError:
		return "runtime_error"
	default:
		return "unknown"
	}
}

// genericErrorMarker stands in for diagnostics when a failing process
// produced no stderr.
const genericErrorMarker = "__ERROR__"

// Outcome is the classified result of running one program on one input.
// Execution failures are data, not errors: callers consume the Status
// and never see a Go error for a misbehaving candidate.
type Outcome struct {
	Status     Status
	Output     string // trimmed stdout, only meaningful for StatusOK
	Diagnostic string // trimmed stderr or launch error text
	Duration   time.Duration
}

// Ok reports whether the execution succeeded.
func (o Outcome) Ok() bool {
	return o.Status == StatusOK
}
