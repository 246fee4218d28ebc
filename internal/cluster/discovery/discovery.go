// Package discovery implements pluggable cluster membership discovery
// (spec §4.10): a Source resolves a set of Nodes and emits change events,
// with Static and DNS backends.
package discovery

// Node is one discovered cluster member.
type Node struct {
	ID       string
	Address  string // host:port
	Zone     string
	Priority uint16 // lower is higher priority, from SRV records
	Weight   uint16
}

// EventType classifies a cluster membership change.
type EventType string

const (
	EventJoined  EventType = "joined"
	EventLeft    EventType = "left"
	EventUpdated EventType = "updated"
)

// Event is one membership change a Source emits on its Events channel.
type Event struct {
	Type EventType
	Node Node
}

// Source is the pluggable discovery backend contract (spec §4.10),
// grounded on original_source/prism-cluster/src/discovery/mod.rs's
// NodeDiscovery trait.
type Source interface {
	// Nodes returns the currently known node set.
	Nodes() []Node
	// Events returns a channel of membership changes. The channel is
	// closed when Stop is called.
	Events() <-chan Event
	// Refresh forces an immediate re-resolution.
	Refresh() error
	// Start begins any background re-resolution.
	Start() error
	// Stop halts background work and closes the Events channel.
	Stop()
}
