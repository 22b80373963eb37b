package diag

import "sync"

// State is a node of the startup chain:
// ListenerUp -> IdentityOK -> DestinationOK -> MarketOK|MarketWarn -> ConfirmSent|ConfirmWarn -> Idle.
// Either hard gate can jump to Aborted instead.
type State string

const (
	StateInit          State = "init"
	StateListenerUp    State = "listener_up"
	StateIdentityOK    State = "identity_ok"
	StateDestinationOK State = "destination_ok"
	StateMarketOK      State = "market_ok"
	StateMarketWarn    State = "market_warn"
	StateConfirmSent   State = "confirm_sent"
	StateConfirmWarn   State = "confirm_warn"
	StateIdle          State = "idle"
	StateAborted       State = "aborted"
)

type Stage string

const (
	StageEnvironment  Stage = "environment"
	StageIdentity     Stage = "identity"
	StageDestination  Stage = "destination"
	StageMarket       Stage = "market"
	StageConfirmation Stage = "confirmation"
)

// Outcome is what a stage tells the orchestrator to do next.
type Outcome int

const (
	Continue Outcome = iota
	Warn
	Abort
)

func (o Outcome) String() string {
	switch o {
	case Continue:
		return "continue"
	case Warn:
		return "warn"
	case Abort:
		return "abort"
	default:
		return "unknown"
	}
}

type Result struct {
	Stage   Stage
	Outcome Outcome
	Message string
	Err     error
}

func (r Result) OK() bool {
	return r.Outcome == Continue
}

// Report collects stage results of one run. It lives only in memory.
type Report struct {
	mu      sync.RWMutex
	state   State
	results []Result
}

func newReport() *Report {
	return &Report{state: StateInit}
}

func (r *Report) record(res Result, next State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
	r.state = next
}

func (r *Report) advance(next State) {
	r.mu.Lock()
	r.state = next
	r.mu.Unlock()
}

func (r *Report) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Results returns a copy so callers cannot race with the running orchestrator.
func (r *Report) Results() []Result {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]Result, len(r.results))
	copy(results, r.results)
	return results
}

func (r *Report) Result(stage Stage) (Result, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, res := range r.results {
		if res.Stage == stage {
			return res, true
		}
	}
	return Result{}, false
}
