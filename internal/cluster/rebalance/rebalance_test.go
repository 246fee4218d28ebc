package rebalance

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_HappyPathLifecycle(t *testing.T) {
	e := NewEngine()
	plan, err := e.Begin([]*Move{{ShardID: "s1", FromNode: "n1", ToNode: "n2"}})
	require.NoError(t, err)
	assert.Equal(t, PhaseAnalyzing, plan.Phase)

	for _, want := range []Phase{PhasePlanning, PhaseExecuting, PhaseVerifying, PhaseFinalizing, PhaseCompleted} {
		got, err := e.Advance()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err = e.Advance()
	assert.Error(t, err, "advancing past Completed must fail")
}

func TestEngine_RejectsSecondPlanWhileActive(t *testing.T) {
	e := NewEngine()
	_, err := e.Begin([]*Move{{ShardID: "s1"}})
	require.NoError(t, err)

	_, err = e.Begin([]*Move{{ShardID: "s2"}})
	assert.Error(t, err)
}

func TestEngine_AllowsNewPlanAfterCompletion(t *testing.T) {
	e := NewEngine()
	_, err := e.Begin([]*Move{{ShardID: "s1"}})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err = e.Advance()
		require.NoError(t, err)
	}
	assert.Equal(t, PhaseCompleted, e.Status().Phase)

	_, err = e.Begin([]*Move{{ShardID: "s2"}})
	assert.NoError(t, err)
}

func TestEngine_Fail(t *testing.T) {
	e := NewEngine()
	_, err := e.Begin([]*Move{{ShardID: "s1"}})
	require.NoError(t, err)

	require.NoError(t, e.Fail(errors.New("node unreachable")))
	status := e.Status()
	assert.Equal(t, PhaseFailed, status.Phase)
	assert.Equal(t, "node unreachable", status.LastError)
}

func TestEngine_UpdateMove(t *testing.T) {
	e := NewEngine()
	_, err := e.Begin([]*Move{{ShardID: "s1"}})
	require.NoError(t, err)

	require.NoError(t, e.UpdateMove("s1", MoveStatusTransferring, 0.5, 1024))
	status := e.Status()
	require.Len(t, status.Moves, 1)
	assert.Equal(t, MoveStatusTransferring, status.Moves[0].Status)
	assert.Equal(t, 1, status.ShardsInTransit())
}

func TestEngine_StatusBeforeAnyPlanIsIdle(t *testing.T) {
	e := NewEngine()
	assert.Equal(t, PhaseIdle, e.Status().Phase)
}
