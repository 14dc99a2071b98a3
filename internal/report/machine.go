// Package report holds the state of the single current report of a session.
//
// A report moves Idle → Loading → Loaded or Error. Every Begin issues a new
// sequence number and only the holder of the latest number may complete the
// transition, so a slow response for an older request can never replace the
// result of a newer one.
package report

import (
	"errors"
	"sync"

	"livrocaixa/internal/core"
)

type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateError:
		return "error"
	}
	return "unknown"
}

// ErrNotLoaded is returned by export and print actions when no report is
// currently displayed.
var ErrNotLoaded = errors.New("no report loaded")

// Ticket identifies one Begin call.
type Ticket struct {
	Seq    uint64
	Filter core.ReportFilter
}

type Machine struct {
	mu     sync.Mutex
	state  State
	seq    uint64
	result *core.ReportResult
	err    error
}

func NewMachine() *Machine { return &Machine{} }

// Begin enters Loading for f. Without both dates it returns
// core.ErrMissingDates and the state is unchanged.
func (m *Machine) Begin(f core.ReportFilter) (Ticket, error) {
	if f.Start == "" || f.End == "" {
		return Ticket{}, core.ErrMissingDates
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	m.state = StateLoading
	return Ticket{Seq: m.seq, Filter: f}, nil
}

// Succeed stores r and enters Loaded. It returns false, changing nothing,
// when t is no longer the latest ticket.
func (m *Machine) Succeed(t Ticket, r core.ReportResult) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t.Seq != m.seq {
		return false
	}
	r.Filter = t.Filter
	m.result = &r
	m.err = nil
	m.state = StateLoaded
	return true
}

// Fail enters Error. A previously stored result is kept but no longer
// displayed. Stale tickets are ignored.
func (m *Machine) Fail(t Ticket, err error) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t.Seq != m.seq {
		return false
	}
	m.err = err
	m.state = StateError
	return true
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Err is the failure of the last completed request, if it failed.
func (m *Machine) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Displayed returns the report on screen. Only the Loaded state displays one.
func (m *Machine) Displayed() (core.ReportResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateLoaded || m.result == nil {
		return core.ReportResult{}, ErrNotLoaded
	}
	return *m.result, nil
}

// Retained returns the last successful result regardless of state.
func (m *Machine) Retained() (core.ReportResult, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.result == nil {
		return core.ReportResult{}, false
	}
	return *m.result, true
}

// ExportFilter returns the filter of the displayed report. diverged reports
// whether live, the filter currently in the form, selects something else.
// A nil live filter is never considered divergent.
func (m *Machine) ExportFilter(live *core.ReportFilter) (f core.ReportFilter, diverged bool, err error) {
	r, err := m.Displayed()
	if err != nil {
		return core.ReportFilter{}, false, err
	}
	if live != nil && !live.Equal(r.Filter) {
		diverged = true
	}
	return r.Filter, diverged, nil
}
