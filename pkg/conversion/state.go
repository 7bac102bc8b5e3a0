package conversion

import (
	"github.com/amirasaad/fxconvert/pkg/domain"
)

// Phase is the presentation mode. Exactly one is active at a time.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseResult
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseResult:
		return "result"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// Inputs mirrors the raw form fields.
type Inputs struct {
	Amount string
	From   string
	To     string
}

// State is everything the controller knows about the session.
type State struct {
	Phase   Phase
	Result  *domain.ConversionResult // set in PhaseResult
	Message string                   // set in PhaseError
	Inputs  Inputs

	// Last is the most recent successful conversion. It gates auto-reconversion
	// and survives validation failures.
	Last *domain.ConversionResult

	// Seq numbers issued requests; Pending is the one whose answer is awaited.
	Seq     uint64
	Pending uint64

	// Triggers numbers armed auto-triggers; Armed is the one still allowed to
	// fire, 0 when none is.
	Triggers uint64
	Armed    uint64

	// Disabled is set when the currency list could not be loaded.
	Disabled bool
}

// Busy reports whether the submit control is disabled and the spinner shown.
func (s State) Busy() bool {
	return s.Phase == PhaseLoading
}

// Settled reports whether no request is in flight and no auto-trigger is armed.
func (s State) Settled() bool {
	return !s.Busy() && s.Armed == 0
}

// Event is a user or system input to the state machine.
type Event interface {
	isEvent()
}

type (
	// Submitted is an explicit conversion (form submit or Enter).
	Submitted struct{}
	// AmountChanged carries the new raw amount text.
	AmountChanged struct{ Text string }
	// SourceSelected carries the new source code ("" clears it).
	SourceSelected struct{ Code string }
	// TargetSelected carries the new target code ("" clears it).
	TargetSelected struct{ Code string }
	// Swapped exchanges source and target.
	Swapped struct{}
	// DebounceElapsed fires after the quiet period of auto-trigger Trigger.
	DebounceElapsed struct{ Trigger uint64 }
	// ConversionSucceeded completes request Seq.
	ConversionSucceeded struct {
		Seq    uint64
		Result *domain.ConversionResult
	}
	// ConversionFailed completes request Seq with an error.
	ConversionFailed struct {
		Seq uint64
		Err error
	}
	// CurrenciesLoaded applies the default selection once the registry is ready.
	CurrenciesLoaded struct{ From, To string }
	// CurrenciesFailed disables the session.
	CurrenciesFailed struct{ Err error }
)

func (Submitted) isEvent()           {}
func (AmountChanged) isEvent()       {}
func (SourceSelected) isEvent()      {}
func (TargetSelected) isEvent()      {}
func (Swapped) isEvent()             {}
func (DebounceElapsed) isEvent()     {}
func (ConversionSucceeded) isEvent() {}
func (ConversionFailed) isEvent()    {}
func (CurrenciesLoaded) isEvent()    {}
func (CurrenciesFailed) isEvent()    {}

// Effect is work the controller performs after a transition.
type Effect interface {
	isEffect()
}

type (
	// RequestConversion starts request Seq.
	RequestConversion struct {
		Seq   uint64
		Query domain.ConversionQuery
	}
	// ArmDebounce (re)starts the quiet period for auto-trigger Trigger.
	ArmDebounce struct{ Trigger uint64 }
	// CancelDebounce drops a pending auto-trigger.
	CancelDebounce struct{}
)

func (RequestConversion) isEffect() {}
func (ArmDebounce) isEffect()       {}
func (CancelDebounce) isEffect()    {}

// Transition is the pure state machine.
func Transition(s State, ev Event) (State, []Effect) {
	switch e := ev.(type) {
	case CurrenciesLoaded:
		s.Inputs.From, s.Inputs.To = e.From, e.To
		return s, nil
	case CurrenciesFailed:
		s.Disabled = true
		s.Pending = 0
		s.Armed = 0
		return showError(s, domain.UserMessage(e.Err)), []Effect{CancelDebounce{}}
	}

	if s.Disabled {
		return s, nil
	}

	switch e := ev.(type) {
	case Submitted:
		if s.Busy() {
			return s, nil
		}
		return submit(s)
	case AmountChanged:
		s.Inputs.Amount = e.Text
		return edited(s)
	case SourceSelected:
		s.Inputs.From = e.Code
		return edited(s)
	case TargetSelected:
		s.Inputs.To = e.Code
		return edited(s)
	case Swapped:
		s.Inputs.From, s.Inputs.To = s.Inputs.To, s.Inputs.From
		return edited(s)
	case DebounceElapsed:
		// A trigger that fired before a newer edit was processed is outdated.
		if e.Trigger == 0 || e.Trigger != s.Armed {
			return s, nil
		}
		s.Armed = 0
		return autoConvert(s)
	case ConversionSucceeded:
		if !awaited(s, e.Seq) {
			return s, nil
		}
		s.Pending = 0
		s.Phase = PhaseResult
		s.Result = e.Result
		s.Message = ""
		s.Last = e.Result
		return s, nil
	case ConversionFailed:
		if !awaited(s, e.Seq) {
			return s, nil
		}
		s.Pending = 0
		s.Last = nil
		return showError(s, domain.UserMessage(e.Err)), nil
	}
	return s, nil
}

// IsStale reports whether a completion for seq would be discarded.
func IsStale(s State, seq uint64) bool {
	return !awaited(s, seq)
}

func awaited(s State, seq uint64) bool {
	return seq != 0 && seq == s.Pending
}

func submit(s State) (State, []Effect) {
	s.Armed = 0
	q, err := Validate(s.Inputs.Amount, s.Inputs.From, s.Inputs.To)
	if err != nil {
		return showError(s, domain.UserMessage(err)), []Effect{CancelDebounce{}}
	}
	return startRequest(s, q, CancelDebounce{})
}

func edited(s State) (State, []Effect) {
	if s.Phase == PhaseResult || s.Phase == PhaseError {
		s.Phase = PhaseIdle
		s.Result = nil
		s.Message = ""
	}
	if s.Last == nil {
		return s, nil
	}
	if _, err := Validate(s.Inputs.Amount, s.Inputs.From, s.Inputs.To); err != nil {
		s.Armed = 0
		return s, []Effect{CancelDebounce{}}
	}
	s.Triggers++
	s.Armed = s.Triggers
	return s, []Effect{ArmDebounce{Trigger: s.Armed}}
}

func autoConvert(s State) (State, []Effect) {
	if s.Last == nil {
		return s, nil
	}
	// Validated again at fire time.
	q, err := Validate(s.Inputs.Amount, s.Inputs.From, s.Inputs.To)
	if err != nil {
		return s, nil
	}
	return startRequest(s, q)
}

func startRequest(s State, q domain.ConversionQuery, extra ...Effect) (State, []Effect) {
	s.Seq++
	s.Pending = s.Seq
	s.Phase = PhaseLoading
	s.Result = nil
	s.Message = ""
	return s, append(extra, RequestConversion{Seq: s.Seq, Query: q})
}

func showError(s State, msg string) State {
	s.Phase = PhaseError
	s.Message = msg
	s.Result = nil
	return s
}
