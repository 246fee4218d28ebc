package placement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlace_SpreadsAcrossZones(t *testing.T) {
	nodes := []NodeState{
		{ID: "n1", Zone: "us-east"},
		{ID: "n2", Zone: "us-east"},
		{ID: "n3", Zone: "us-west"},
		{ID: "n4", Zone: "eu-west"},
	}
	replicas := Place(nodes, "shard-1", 3)
	require.Len(t, replicas, 3)

	zones := make(map[string]bool)
	for _, r := range replicas {
		zones[r.Zone] = true
	}
	assert.Len(t, zones, 3, "expected one replica per zone when zones >= replicaCount")
}

func TestPlace_SkipsDrainingAndUnreachable(t *testing.T) {
	nodes := []NodeState{
		{ID: "n1", Zone: "us-east", Draining: true},
		{ID: "n2", Zone: "us-east", Unreachable: true},
		{ID: "n3", Zone: "us-east"},
	}
	replicas := Place(nodes, "shard-1", 2)
	require.Len(t, replicas, 1)
	assert.Equal(t, "n3", replicas[0].NodeID)
}

func TestPlace_SkipsNodesAlreadyHoldingShard(t *testing.T) {
	nodes := []NodeState{
		{ID: "n1", Zone: "us-east", Holds: map[string]bool{"shard-1": true}},
		{ID: "n2", Zone: "us-east"},
	}
	replicas := Place(nodes, "shard-1", 2)
	require.Len(t, replicas, 1)
	assert.Equal(t, "n2", replicas[0].NodeID)
}

func TestPlace_BalancesByShardCountWithinZone(t *testing.T) {
	nodes := []NodeState{
		{ID: "n1", Zone: "us-east", ShardCount: 5},
		{ID: "n2", Zone: "us-east", ShardCount: 1},
	}
	replicas := Place(nodes, "shard-1", 1)
	require.Len(t, replicas, 1)
	assert.Equal(t, "n2", replicas[0].NodeID)
}

func TestPlace_TieBreaksByNodeID(t *testing.T) {
	nodes := []NodeState{
		{ID: "b", Zone: "us-east"},
		{ID: "a", Zone: "us-east"},
	}
	replicas := Place(nodes, "shard-1", 1)
	require.Len(t, replicas, 1)
	assert.Equal(t, "a", replicas[0].NodeID)
}

func TestPlace_CapsReplicaCountToCandidates(t *testing.T) {
	nodes := []NodeState{{ID: "n1", Zone: "us-east"}}
	replicas := Place(nodes, "shard-1", 3)
	assert.Len(t, replicas, 1)
}
