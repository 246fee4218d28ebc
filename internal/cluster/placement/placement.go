// Package placement implements shard replica placement (spec §4.10, P8):
// zone-spread first, then load balance, respecting hard constraints.
package placement

import "sort"

// NodeState is the placement algorithm's view of one cluster node.
type NodeState struct {
	ID         string
	Zone       string
	ShardCount int             // total shards currently assigned to this node
	Draining   bool            // hard constraint: never place on a draining node
	Unreachable bool           // hard constraint: never place on an unreachable node
	Holds      map[string]bool // shardID -> already hosts it (hard constraint: no duplicate replica)
}

// eligible reports whether n may host a new replica of shardID.
func (n NodeState) eligible(shardID string) bool {
	if n.Draining || n.Unreachable {
		return false
	}
	return !n.Holds[shardID]
}

// Replica is one placement decision: shardID goes to NodeID.
type Replica struct {
	NodeID string
	Zone   string
}

// Place chooses replicaCount nodes for shardID out of state, spreading
// across zones first and then balancing by current shard count, with
// node id as the final tie-break for determinism (spec §4.10, P8).
func Place(state []NodeState, shardID string, replicaCount int) []Replica {
	candidates := make([]NodeState, 0, len(state))
	for _, n := range state {
		if n.eligible(shardID) {
			candidates = append(candidates, n)
		}
	}
	if replicaCount > len(candidates) {
		replicaCount = len(candidates)
	}

	usedZones := make(map[string]int)
	var placed []Replica

	for len(placed) < replicaCount {
		best, ok := pickNext(candidates, placed, usedZones)
		if !ok {
			break
		}
		placed = append(placed, Replica{NodeID: best.ID, Zone: best.Zone})
		usedZones[best.Zone]++
		candidates = removeByID(candidates, best.ID)
	}
	return placed
}

// pickNext picks the remaining candidate with the fewest existing replicas
// in its zone (zone spread), breaking ties by lowest current shard count,
// then by node id for determinism.
func pickNext(candidates []NodeState, placed []Replica, usedZones map[string]int) (NodeState, bool) {
	if len(candidates) == 0 {
		return NodeState{}, false
	}

	sorted := make([]NodeState, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		zi, zj := usedZones[sorted[i].Zone], usedZones[sorted[j].Zone]
		if zi != zj {
			return zi < zj
		}
		if sorted[i].ShardCount != sorted[j].ShardCount {
			return sorted[i].ShardCount < sorted[j].ShardCount
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted[0], true
}

func removeByID(nodes []NodeState, id string) []NodeState {
	out := make([]NodeState, 0, len(nodes)-1)
	for _, n := range nodes {
		if n.ID != id {
			out = append(out, n)
		}
	}
	return out
}
