// Package rebalance implements the shard rebalancing state machine (spec
// §4.10), grounded on original_source/prism-cluster/src/rebalance/mod.rs's
// RebalancePhase/RebalanceStatus/OperationStatus shapes.
package rebalance

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/prismsearch/prism/internal/perr"
)

// Phase is one state in the rebalance plan's lifecycle.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseAnalyzing  Phase = "analyzing"
	PhasePlanning   Phase = "planning"
	PhaseExecuting  Phase = "executing"
	PhaseVerifying  Phase = "verifying"
	PhaseFinalizing Phase = "finalizing"
	PhaseCompleted  Phase = "completed"
	PhaseFailed     Phase = "failed"
)

// next maps each phase to the single phase legally allowed to follow it;
// Failed is reachable from any in-progress phase (handled separately in
// Engine.Fail).
var next = map[Phase]Phase{
	PhaseIdle:       PhaseAnalyzing,
	PhaseAnalyzing:  PhasePlanning,
	PhasePlanning:   PhaseExecuting,
	PhaseExecuting:  PhaseVerifying,
	PhaseVerifying:  PhaseFinalizing,
	PhaseFinalizing: PhaseCompleted,
}

// MoveStatus is the status of a single shard transfer within a plan.
type MoveStatus string

const (
	MoveStatusPending      MoveStatus = "pending"
	MoveStatusTransferring MoveStatus = "transferring"
	MoveStatusVerifying    MoveStatus = "verifying"
	MoveStatusCompleted    MoveStatus = "completed"
	MoveStatusFailed       MoveStatus = "failed"
	MoveStatusCancelled    MoveStatus = "cancelled"
)

// Move is one shard transfer within a Plan.
type Move struct {
	ShardID           string
	FromNode          string
	ToNode            string
	Status            MoveStatus
	Progress          float64
	BytesTransferred  uint64
	TotalBytes        uint64
}

// Plan is one rebalance run: an ordered set of shard moves advancing
// through Phase together (spec §4.10: "single active plan guarded by one
// mutex").
type Plan struct {
	ID                  string
	Phase               Phase
	Moves               []*Move
	StartedAt           time.Time
	EstimatedCompletion time.Time
	LastError           string
}

// ShardsInTransit counts moves currently Transferring or Verifying; Pending
// moves are not counted.
func (p *Plan) ShardsInTransit() int {
	n := 0
	for _, m := range p.Moves {
		if m.Status == MoveStatusTransferring || m.Status == MoveStatusVerifying {
			n++
		}
	}
	return n
}

// CompletedMoves/FailedMoves count moves in their respective terminal
// status.
func (p *Plan) CompletedMoves() int { return p.countStatus(MoveStatusCompleted) }
func (p *Plan) FailedMoves() int    { return p.countStatus(MoveStatusFailed) }

func (p *Plan) countStatus(s MoveStatus) int {
	n := 0
	for _, m := range p.Moves {
		if m.Status == s {
			n++
		}
	}
	return n
}

// Engine drives a single active Plan through its phases. Only one plan may
// be active at a time; starting a new one while another is in flight is
// rejected (spec §4.10).
type Engine struct {
	mu     sync.Mutex
	active *Plan
}

// NewEngine returns an idle Engine.
func NewEngine() *Engine { return &Engine{} }

// Begin starts a new plan from the given moves, rejecting the call if a
// plan is already active (not Idle/Completed/Failed).
func (e *Engine) Begin(moves []*Move) (*Plan, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active != nil && e.active.Phase != PhaseCompleted && e.active.Phase != PhaseFailed {
		return nil, perr.New(perr.KindBackend, "a rebalance plan is already active")
	}

	for _, m := range moves {
		m.Status = MoveStatusPending
	}
	plan := &Plan{ID: uuid.NewString(), Phase: PhaseAnalyzing, Moves: moves, StartedAt: timeNow()}
	e.active = plan
	return plan, nil
}

// Advance moves the active plan to the single legal next phase. Advancing
// from Completed/Failed, or when no plan is active, is an error.
func (e *Engine) Advance() (Phase, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active == nil {
		return "", perr.New(perr.KindBackend, "no active rebalance plan")
	}
	target, ok := next[e.active.Phase]
	if !ok {
		return "", perr.New(perr.KindBackend, "rebalance plan has no further phase from "+string(e.active.Phase))
	}
	e.active.Phase = target
	return target, nil
}

// Fail transitions the active plan straight to Failed from any
// in-progress phase, recording err's message.
func (e *Engine) Fail(err error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil {
		return perr.New(perr.KindBackend, "no active rebalance plan")
	}
	e.active.Phase = PhaseFailed
	if err != nil {
		e.active.LastError = err.Error()
	}
	return nil
}

// UpdateMove mutates one move within the active plan by shard id.
func (e *Engine) UpdateMove(shardID string, status MoveStatus, progress float64, bytesTransferred uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil {
		return perr.New(perr.KindBackend, "no active rebalance plan")
	}
	for _, m := range e.active.Moves {
		if m.ShardID == shardID {
			m.Status = status
			m.Progress = progress
			m.BytesTransferred = bytesTransferred
			return nil
		}
	}
	return perr.New(perr.KindBackend, "no such move in active plan: "+shardID)
}

// Status returns a snapshot of the active plan, or a zero-value idle
// snapshot if no plan has ever run.
func (e *Engine) Status() Plan {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil {
		return Plan{Phase: PhaseIdle}
	}
	snap := *e.active
	snap.Moves = make([]*Move, len(e.active.Moves))
	for i, m := range e.active.Moves {
		mv := *m
		snap.Moves[i] = &mv
	}
	return snap
}

// timeNow is a var so tests can pin it; production code always uses
// time.Now.
var timeNow = time.Now
