package conversion_test

import (
	"errors"
	"testing"

	"github.com/amirasaad/fxconvert/pkg/conversion"
	"github.com/amirasaad/fxconvert/pkg/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readyState(amount string) conversion.State {
	return conversion.State{Inputs: conversion.Inputs{Amount: amount, From: "USD", To: "EUR"}}
}

func sampleResult(amount string) *domain.ConversionResult {
	return &domain.ConversionResult{
		Amount:          decimal.RequireFromString(amount),
		FromCurrency:    "USD",
		ToCurrency:      "EUR",
		ConvertedAmount: decimal.RequireFromString(amount).Mul(decimal.RequireFromString("0.925")),
		ExchangeRate:    decimal.RequireFromString("0.925"),
	}
}

func requests(effects []conversion.Effect) []conversion.RequestConversion {
	var out []conversion.RequestConversion
	for _, e := range effects {
		if r, ok := e.(conversion.RequestConversion); ok {
			out = append(out, r)
		}
	}
	return out
}

// fired returns the DebounceElapsed event for the trigger armed by effects.
func fired(t *testing.T, effects []conversion.Effect) conversion.DebounceElapsed {
	t.Helper()
	for _, e := range effects {
		if arm, ok := e.(conversion.ArmDebounce); ok {
			return conversion.DebounceElapsed{Trigger: arm.Trigger}
		}
	}
	require.Fail(t, "no auto-trigger armed", "effects: %v", effects)
	return conversion.DebounceElapsed{}
}

func TestTransition_SubmitValid(t *testing.T) {
	s, effects := conversion.Transition(readyState("100"), conversion.Submitted{})

	assert.Equal(t, conversion.PhaseLoading, s.Phase)
	assert.True(t, s.Busy())
	assert.Equal(t, uint64(1), s.Seq)
	assert.Equal(t, uint64(1), s.Pending)
	assert.Contains(t, effects, conversion.Effect(conversion.CancelDebounce{}))

	reqs := requests(effects)
	require.Len(t, reqs, 1)
	assert.Equal(t, uint64(1), reqs[0].Seq)
	assert.Equal(t, "100", reqs[0].Query.Amount.String())
	assert.Equal(t, "USD", reqs[0].Query.From)
	assert.Equal(t, "EUR", reqs[0].Query.To)
}

func TestTransition_SubmitInvalidNeverRequests(t *testing.T) {
	tests := []struct {
		name   string
		inputs conversion.Inputs
		msg    string
	}{
		{"empty amount", conversion.Inputs{From: "USD", To: "EUR"}, domain.ErrInvalidAmount.Message},
		{"negative amount", conversion.Inputs{Amount: "-1", From: "USD", To: "EUR"}, domain.ErrInvalidAmount.Message},
		{"text amount", conversion.Inputs{Amount: "ten", From: "USD", To: "EUR"}, domain.ErrInvalidAmount.Message},
		{"missing source", conversion.Inputs{Amount: "1", To: "EUR"}, domain.ErrMissingSource.Message},
		{"missing target", conversion.Inputs{Amount: "1", From: "USD"}, domain.ErrMissingTarget.Message},
		{"same currency", conversion.Inputs{Amount: "1", From: "GBP", To: "GBP"}, domain.ErrSameCurrency.Message},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, effects := conversion.Transition(conversion.State{Inputs: tt.inputs}, conversion.Submitted{})
			assert.Equal(t, conversion.PhaseError, s.Phase)
			assert.Equal(t, tt.msg, s.Message)
			assert.Empty(t, requests(effects))
			assert.Zero(t, s.Seq)
		})
	}
}

func TestTransition_ValidationFailureKeepsLastConversion(t *testing.T) {
	last := sampleResult("100")
	s := readyState("100")
	s.Last = last
	s.Phase = conversion.PhaseResult
	s.Result = last

	s, _ = conversion.Transition(s, conversion.AmountChanged{Text: "abc"})
	s, _ = conversion.Transition(s, conversion.Submitted{})

	assert.Equal(t, conversion.PhaseError, s.Phase)
	assert.Nil(t, s.Result)
	assert.Same(t, last, s.Last)
}

func TestTransition_SubmitIgnoredWhileLoading(t *testing.T) {
	s, _ := conversion.Transition(readyState("100"), conversion.Submitted{})
	s2, effects := conversion.Transition(s, conversion.Submitted{})

	assert.Equal(t, s, s2)
	assert.Empty(t, effects)
}

func TestTransition_Completion(t *testing.T) {
	loading, _ := conversion.Transition(readyState("100"), conversion.Submitted{})
	res := sampleResult("100")

	t.Run("success shows result only", func(t *testing.T) {
		s, _ := conversion.Transition(loading, conversion.ConversionSucceeded{Seq: 1, Result: res})
		assert.Equal(t, conversion.PhaseResult, s.Phase)
		assert.False(t, s.Busy())
		assert.Same(t, res, s.Result)
		assert.Same(t, res, s.Last)
		assert.Empty(t, s.Message)
		assert.Zero(t, s.Pending)
	})

	t.Run("failure shows message and clears last", func(t *testing.T) {
		prev := loading
		prev.Last = res
		s, _ := conversion.Transition(prev, conversion.ConversionFailed{Seq: 1, Err: &domain.RequestError{Status: 400, Message: "X"}})
		assert.Equal(t, conversion.PhaseError, s.Phase)
		assert.False(t, s.Busy())
		assert.Equal(t, "X", s.Message)
		assert.Nil(t, s.Result)
		assert.Nil(t, s.Last)
	})

	t.Run("unknown error gets generic message", func(t *testing.T) {
		s, _ := conversion.Transition(loading, conversion.ConversionFailed{Seq: 1, Err: errors.New("boom")})
		assert.Equal(t, domain.MsgRetry, s.Message)
	})
}

func TestTransition_StaleCompletionDiscarded(t *testing.T) {
	s := readyState("100")
	s.Last = sampleResult("50")
	s, _ = conversion.Transition(s, conversion.Submitted{})
	require.Equal(t, uint64(1), s.Pending)

	// An auto-trigger during Loading supersedes request 1.
	s, effects := conversion.Transition(s, conversion.AmountChanged{Text: "200"})
	s, effects = conversion.Transition(s, fired(t, effects))
	require.Len(t, requests(effects), 1)
	require.Equal(t, uint64(2), s.Pending)

	newer := sampleResult("200")
	s, _ = conversion.Transition(s, conversion.ConversionSucceeded{Seq: 2, Result: newer})
	assert.True(t, conversion.IsStale(s, 1))

	after, _ := conversion.Transition(s, conversion.ConversionFailed{Seq: 1, Err: errors.New("late")})
	assert.Equal(t, s, after)
	after, _ = conversion.Transition(s, conversion.ConversionSucceeded{Seq: 1, Result: sampleResult("100")})
	assert.Equal(t, s, after)
	assert.Same(t, newer, after.Result)
}

func TestTransition_NoAutoTriggerBeforeFirstSuccess(t *testing.T) {
	s := readyState("")
	for _, ev := range []conversion.Event{
		conversion.AmountChanged{Text: "10"},
		conversion.SourceSelected{Code: "GBP"},
		conversion.TargetSelected{Code: "JPY"},
		conversion.Swapped{},
	} {
		var effects []conversion.Effect
		s, effects = conversion.Transition(s, ev)
		assert.Empty(t, effects, "%T", ev)
	}

	s, effects := conversion.Transition(s, conversion.DebounceElapsed{})
	assert.Equal(t, conversion.PhaseIdle, s.Phase)
	assert.Empty(t, effects)
}

func TestTransition_AutoTrigger(t *testing.T) {
	last := sampleResult("100")
	s := readyState("100")
	s.Last = last
	s.Phase = conversion.PhaseResult
	s.Result = last

	s, effects := conversion.Transition(s, conversion.AmountChanged{Text: "250"})
	assert.Equal(t, conversion.PhaseIdle, s.Phase, "edit clears the displayed message")
	assert.Nil(t, s.Result)
	assert.Equal(t, []conversion.Effect{conversion.ArmDebounce{Trigger: 1}}, effects)

	s, effects = conversion.Transition(s, conversion.DebounceElapsed{Trigger: 1})
	assert.Equal(t, conversion.PhaseLoading, s.Phase)
	reqs := requests(effects)
	require.Len(t, reqs, 1)
	assert.Equal(t, "250", reqs[0].Query.Amount.String())
}

func TestTransition_AutoTriggerRevalidates(t *testing.T) {
	s := readyState("100")
	s.Last = sampleResult("100")

	s, effects := conversion.Transition(s, conversion.AmountChanged{Text: "250"})
	arm := fired(t, effects)

	s, effects = conversion.Transition(s, conversion.AmountChanged{Text: "0"})
	assert.Equal(t, []conversion.Effect{conversion.CancelDebounce{}}, effects)
	assert.Zero(t, s.Armed)

	s, effects = conversion.Transition(s, arm)
	assert.Equal(t, conversion.PhaseIdle, s.Phase)
	assert.Empty(t, effects)
}

func TestTransition_OutdatedTriggerDoesNotConvert(t *testing.T) {
	s := readyState("100")
	s.Last = sampleResult("100")

	s, effects := conversion.Transition(s, conversion.AmountChanged{Text: "200"})
	first := fired(t, effects)

	// The first timer fired, but its event is queued behind another edit.
	s, effects = conversion.Transition(s, conversion.AmountChanged{Text: "300"})
	second := fired(t, effects)
	require.NotEqual(t, first, second)

	s, effects = conversion.Transition(s, first)
	assert.Equal(t, conversion.PhaseIdle, s.Phase)
	assert.Empty(t, effects)

	s, effects = conversion.Transition(s, second)
	reqs := requests(effects)
	require.Len(t, reqs, 1)
	assert.Equal(t, "300", reqs[0].Query.Amount.String())
	assert.Zero(t, s.Armed)

	// A trigger fires once.
	_, effects = conversion.Transition(s, second)
	assert.Empty(t, effects)
}

func TestState_SettledCoversArmedTrigger(t *testing.T) {
	s := readyState("100")
	s.Last = sampleResult("100")
	assert.True(t, s.Settled())

	s, effects := conversion.Transition(s, conversion.AmountChanged{Text: "200"})
	assert.False(t, s.Busy())
	assert.False(t, s.Settled(), "armed trigger is still outstanding")

	s, _ = conversion.Transition(s, fired(t, effects))
	assert.False(t, s.Settled(), "request in flight")

	s, _ = conversion.Transition(s, conversion.ConversionSucceeded{Seq: s.Pending, Result: sampleResult("200")})
	assert.True(t, s.Settled())
}

func TestTransition_SubmitDisarmsTrigger(t *testing.T) {
	s := readyState("100")
	s.Last = sampleResult("100")

	s, effects := conversion.Transition(s, conversion.AmountChanged{Text: "200"})
	arm := fired(t, effects)

	s, effects = conversion.Transition(s, conversion.Submitted{})
	require.Len(t, requests(effects), 1)

	s, effects = conversion.Transition(s, arm)
	assert.Empty(t, effects)
	assert.Equal(t, uint64(1), s.Pending)
}

func TestTransition_SwapIsInvolutive(t *testing.T) {
	s := readyState("100")
	once, _ := conversion.Transition(s, conversion.Swapped{})
	assert.Equal(t, "EUR", once.Inputs.From)
	assert.Equal(t, "USD", once.Inputs.To)

	twice, _ := conversion.Transition(once, conversion.Swapped{})
	assert.Equal(t, s.Inputs, twice.Inputs)
}

func TestTransition_SwapSchedulesLikeSelection(t *testing.T) {
	s := readyState("100")
	s.Last = sampleResult("100")

	_, effects := conversion.Transition(s, conversion.Swapped{})
	assert.Equal(t, []conversion.Effect{conversion.ArmDebounce{Trigger: 1}}, effects)
}

func TestTransition_Currencies(t *testing.T) {
	s, effects := conversion.Transition(conversion.State{}, conversion.CurrenciesLoaded{From: "USD", To: "EUR"})
	assert.Equal(t, "USD", s.Inputs.From)
	assert.Equal(t, "EUR", s.Inputs.To)
	assert.Empty(t, effects)

	failed, effects := conversion.Transition(s, conversion.CurrenciesFailed{Err: domain.ErrRegistryLoad})
	assert.True(t, failed.Disabled)
	assert.Equal(t, conversion.PhaseError, failed.Phase)
	assert.Equal(t, domain.MsgRegistryUnavailable, failed.Message)
	assert.Equal(t, []conversion.Effect{conversion.CancelDebounce{}}, effects)

	failed.Inputs.Amount = "10"
	after, effects := conversion.Transition(failed, conversion.Submitted{})
	assert.Equal(t, failed, after)
	assert.Empty(t, effects)
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "idle", conversion.PhaseIdle.String())
	assert.Equal(t, "loading", conversion.PhaseLoading.String())
	assert.Equal(t, "result", conversion.PhaseResult.String())
	assert.Equal(t, "error", conversion.PhaseError.String())
	assert.Equal(t, "unknown", conversion.Phase(42).String())
}
