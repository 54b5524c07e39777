package auth

import (
	"fmt"
	"net/http"
)

// Info carries optional details attached to an outcome. A nil Info means
// no info was supplied, which is distinct from an empty one.
type Info map[string]any

// OutcomeKind is the terminal disposition of one authentication attempt.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota + 1
	OutcomeFail
	OutcomeError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeFail:
		return "fail"
	case OutcomeError:
		return "error"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// Outcome is reported exactly once per authentication attempt.
type Outcome struct {
	Kind   OutcomeKind
	User   any   // set on success
	Info   Info  // optional on success and fail
	Status int   // fail only, 0 when unspecified
	Err    error // set on error
}

func Success(user any, info Info) Outcome {
	return Outcome{Kind: OutcomeSuccess, User: user, Info: info}
}

func Fail(info Info, status int) Outcome {
	return Outcome{Kind: OutcomeFail, Info: info, Status: status}
}

func Error(err error) Outcome {
	return Outcome{Kind: OutcomeError, Err: err}
}

// Pipeline is the host side of the strategy contract.
type Pipeline interface {
	Success(user any, info Info)
	Fail(info Info, status int)
	Error(err error)
}

// Report hands the outcome to the pipeline, calling exactly one method.
func (o Outcome) Report(p Pipeline) {
	switch o.Kind {
	case OutcomeSuccess:
		p.Success(o.User, o.Info)
	case OutcomeFail:
		p.Fail(o.Info, o.Status)
	default:
		err := o.Err
		if err == nil {
			err = fmt.Errorf("auth: invalid outcome %s", o.Kind)
		}
		p.Error(err)
	}
}

// Strategy authenticates a single request. Implementations hold no
// state across calls.
type Strategy interface {
	// Name returns the identifier used to register the strategy.
	Name() string

	Authenticate(r *http.Request) Outcome
}
