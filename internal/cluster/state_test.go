package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prismsearch/prism/internal/cluster/discovery"
)

func TestState_ApplyDiscoveryEvent_JoinAndLeave(t *testing.T) {
	s := NewState()
	s.ApplyDiscoveryEvent(discovery.Event{Type: discovery.EventJoined, Node: discovery.Node{ID: "n1", Address: "10.0.0.1:9080", Zone: "us-east"}})
	require.Len(t, s.Nodes(), 1)

	s.ApplyDiscoveryEvent(discovery.Event{Type: discovery.EventLeft, Node: discovery.Node{ID: "n1"}})
	assert.Empty(t, s.Nodes())
}

func TestState_PlaceShard_SkipsDrainingAndRespectsZones(t *testing.T) {
	s := NewState()
	s.ApplyDiscoveryEvent(discovery.Event{Type: discovery.EventJoined, Node: discovery.Node{ID: "n1", Zone: "a"}})
	s.ApplyDiscoveryEvent(discovery.Event{Type: discovery.EventJoined, Node: discovery.Node{ID: "n2", Zone: "b"}})
	s.ApplyDiscoveryEvent(discovery.Event{Type: discovery.EventJoined, Node: discovery.Node{ID: "n3", Zone: "a"}})
	require.NoError(t, s.SetStatus("n3", NodeDraining, false))

	replicas := s.PlaceShard("shard-1", 2)
	require.Len(t, replicas, 2)
	assert.Equal(t, RolePrimary, replicas[0].Role)
	assert.Equal(t, RoleSecondary, replicas[1].Role)
	for _, r := range replicas {
		assert.NotEqual(t, "n3", r.NodeID)
	}

	assert.Equal(t, replicas, s.ShardReplicas("shard-1"))
}

func TestState_SetStatusUnknownNode(t *testing.T) {
	s := NewState()
	err := s.SetStatus("ghost", NodeDraining, false)
	assert.Error(t, err)
}
