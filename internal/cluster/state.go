package cluster

import (
	"sync"

	"github.com/prismsearch/prism/internal/cluster/discovery"
	"github.com/prismsearch/prism/internal/cluster/placement"
	"github.com/prismsearch/prism/internal/perr"
)

// NodeStatus mirrors spec §3's node lifecycle state.
type NodeStatus string

const (
	NodeActive      NodeStatus = "active"
	NodeDraining    NodeStatus = "draining"
	NodeUnreachable NodeStatus = "unreachable"
)

// Node is one cluster member's full state (spec §3), a superset of
// discovery.Node once a node has been seen, health-checked, and versioned.
type Node struct {
	ID      string
	Address string
	Zone    string
	Status  NodeStatus
	Healthy bool
	Version string
}

// ReplicaRole tags a shard replica assignment as primary or secondary.
type ReplicaRole string

const (
	RolePrimary   ReplicaRole = "primary"
	RoleSecondary ReplicaRole = "secondary"
)

// Replica is one shard's assignment to a node (spec §3).
type Replica struct {
	NodeID string
	Role   ReplicaRole
}

// State is the cluster-wide node set and shard-assignment map (spec §3):
// "at most one primary per shard; replicas span distinct zones when
// possible." It is process-global, guarded by a single mutex per §5's
// shared-resource policy.
type State struct {
	mu     sync.RWMutex
	nodes  map[string]Node
	shards map[string][]Replica
}

// NewState returns an empty cluster State.
func NewState() *State {
	return &State{nodes: make(map[string]Node), shards: make(map[string][]Replica)}
}

// ApplyDiscoveryEvent folds one discovery.Event into the node set,
// defaulting a newly joined node to NodeActive/healthy until a health
// check says otherwise.
func (s *State) ApplyDiscoveryEvent(ev discovery.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch ev.Type {
	case discovery.EventLeft:
		delete(s.nodes, ev.Node.ID)
	default: // joined or updated
		existing, ok := s.nodes[ev.Node.ID]
		status := NodeActive
		healthy := true
		if ok {
			status = existing.Status
			healthy = existing.Healthy
		}
		s.nodes[ev.Node.ID] = Node{
			ID: ev.Node.ID, Address: ev.Node.Address, Zone: ev.Node.Zone,
			Status: status, Healthy: healthy,
		}
	}
}

// SetStatus updates a known node's lifecycle status (e.g. admin-initiated
// draining, or a health-check-detected unreachable).
func (s *State) SetStatus(nodeID string, status NodeStatus, healthy bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[nodeID]
	if !ok {
		return perr.New(perr.KindNodeUnavailable, "unknown node: "+nodeID)
	}
	n.Status = status
	n.Healthy = healthy
	s.nodes[nodeID] = n
	return nil
}

// Nodes returns a snapshot of every known node.
func (s *State) Nodes() []Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, n)
	}
	return out
}

// ShardReplicas returns the current replica assignment for a shard.
func (s *State) ShardReplicas(shardID string) []Replica {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Replica(nil), s.shards[shardID]...)
}

// placementState renders the node set as placement.NodeState, the shape
// the placement package's pure function operates over.
func (s *State) placementState(shardID string) []placement.NodeState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	shardCounts := make(map[string]int)
	holds := make(map[string]map[string]bool)
	for sid, replicas := range s.shards {
		for _, r := range replicas {
			shardCounts[r.NodeID]++
			if holds[r.NodeID] == nil {
				holds[r.NodeID] = make(map[string]bool)
			}
			holds[r.NodeID][sid] = true
		}
	}

	out := make([]placement.NodeState, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, placement.NodeState{
			ID:          n.ID,
			Zone:        n.Zone,
			ShardCount:  shardCounts[n.ID],
			Draining:    n.Status == NodeDraining,
			Unreachable: n.Status == NodeUnreachable,
			Holds:       holds[n.ID],
		})
	}
	return out
}

// PlaceShard runs placement.Place over the current node set and records
// the decision as shardID's assignment, with the first replica tagged
// primary and the rest secondary (spec §3, §4.10, P8).
func (s *State) PlaceShard(shardID string, replicaCount int) []Replica {
	candidates := s.placementState(shardID)
	placed := placement.Place(candidates, shardID, replicaCount)

	out := make([]Replica, len(placed))
	for i, p := range placed {
		role := RoleSecondary
		if i == 0 {
			role = RolePrimary
		}
		out[i] = Replica{NodeID: p.NodeID, Role: role}
	}

	s.mu.Lock()
	s.shards[shardID] = out
	s.mu.Unlock()
	return out
}
