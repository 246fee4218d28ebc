package discovery

import (
	"net"
	"sync"
)

// defaultPort is used when a configured address omits one (spec §4.10,
// matching original_source/prism-cluster/src/discovery/static.rs).
const defaultPort = "9080"

// StaticSource is a fixed list of host[:port] entries (grounded on
// static.rs's StaticDiscovery). Each entry is used verbatim as the node's
// ID and Address; hostnames are not resolved to IP addresses, so Refresh
// only reflects changes to the configured entry list itself.
type StaticSource struct {
	mu        sync.RWMutex
	hostnames []string
	nodes     []Node
	events    chan Event
	stopped   bool
}

// NewStaticSource builds a StaticSource from a list of addresses. Each
// entry is suffixed with defaultPort if it carries no port of its own.
func NewStaticSource(addresses []string) *StaticSource {
	hostnames := make([]string, len(addresses))
	for i, a := range addresses {
		hostnames[i] = withDefaultPort(a)
	}
	s := &StaticSource{hostnames: hostnames, events: make(chan Event, 64)}
	s.resolve()
	return s
}

func withDefaultPort(addr string) string {
	if _, _, err := net.SplitHostPort(addr); err == nil {
		return addr
	}
	return net.JoinHostPort(addr, defaultPort)
}

func (s *StaticSource) resolve() {
	nodes := make([]Node, len(s.hostnames))
	for i, h := range s.hostnames {
		nodes[i] = Node{ID: h, Address: h}
	}
	s.mu.Lock()
	s.nodes = nodes
	s.mu.Unlock()
}

func (s *StaticSource) Nodes() []Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Node, len(s.nodes))
	copy(out, s.nodes)
	return out
}

func (s *StaticSource) Events() <-chan Event { return s.events }

// Refresh re-derives the node list from the configured hostnames and
// diffs against the previous set to emit Joined/Left events.
func (s *StaticSource) Refresh() error {
	s.mu.Lock()
	old := make(map[string]bool, len(s.nodes))
	for _, n := range s.nodes {
		old[n.Address] = true
	}

	fresh := make([]Node, len(s.hostnames))
	seen := make(map[string]bool, len(s.hostnames))
	for i, h := range s.hostnames {
		fresh[i] = Node{ID: h, Address: h}
		seen[h] = true
	}
	s.nodes = fresh
	s.mu.Unlock()

	for _, n := range fresh {
		if !old[n.Address] {
			s.emit(Event{Type: EventJoined, Node: n})
		}
	}
	for addr := range old {
		if !seen[addr] {
			s.emit(Event{Type: EventLeft, Node: Node{ID: addr, Address: addr}})
		}
	}
	return nil
}

func (s *StaticSource) emit(e Event) {
	s.mu.RLock()
	stopped := s.stopped
	s.mu.RUnlock()
	if stopped {
		return
	}
	select {
	case s.events <- e:
	default:
	}
}

// Start is a no-op beyond an initial refresh: static discovery has no
// background work (spec §4.10; matches static.rs's start()).
func (s *StaticSource) Start() error { return s.Refresh() }

func (s *StaticSource) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	close(s.events)
}
