package discovery

import (
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/prismsearch/prism/internal/perr"
)

// DefaultRefreshInterval matches the 30s default from
// original_source/prism-cluster/src/discovery/mod.rs's default_refresh_interval.
const DefaultRefreshInterval = 30 * time.Second

// lookupSRV is overridable in tests.
var lookupSRV = net.LookupSRV

// DNSSource resolves a DNS SRV record on a timer, diffing the resolved
// node set against the previous one to emit Joined/Left events (spec
// §4.10, "ideal for Kubernetes" per the source's doc comment).
type DNSSource struct {
	name            string
	refreshInterval time.Duration
	defaultPort     uint16

	mu     sync.RWMutex
	nodes  []Node
	events chan Event

	cancel context.CancelFunc
	done   chan struct{}
}

// NewDNSSource builds a DNSSource. refreshInterval defaults to
// DefaultRefreshInterval when <= 0.
func NewDNSSource(name string, refreshInterval time.Duration, defaultPort uint16) *DNSSource {
	if refreshInterval <= 0 {
		refreshInterval = DefaultRefreshInterval
	}
	return &DNSSource{
		name:            name,
		refreshInterval: refreshInterval,
		defaultPort:     defaultPort,
		events:          make(chan Event, 64),
	}
}

func (d *DNSSource) Nodes() []Node {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Node, len(d.nodes))
	copy(out, d.nodes)
	return out
}

func (d *DNSSource) Events() <-chan Event { return d.events }

// Refresh performs one SRV lookup and diffs the result against the
// previous node set.
func (d *DNSSource) Refresh() error {
	_, addrs, err := lookupSRV("", "", d.name)
	if err != nil {
		return perr.Wrap(perr.KindDiscovery, "resolve SRV record "+d.name, err)
	}

	fresh := make([]Node, 0, len(addrs))
	for _, a := range addrs {
		port := a.Port
		if port == 0 {
			port = d.defaultPort
		}
		host := trimTrailingDot(a.Target)
		fresh = append(fresh, Node{
			ID:       net.JoinHostPort(host, strconv.Itoa(int(port))),
			Address:  net.JoinHostPort(host, strconv.Itoa(int(port))),
			Priority: a.Priority,
			Weight:   a.Weight,
		})
	}

	d.mu.Lock()
	old := make(map[string]bool, len(d.nodes))
	for _, n := range d.nodes {
		old[n.Address] = true
	}
	d.nodes = fresh
	d.mu.Unlock()

	seen := make(map[string]bool, len(fresh))
	for _, n := range fresh {
		seen[n.Address] = true
		if !old[n.Address] {
			d.emit(Event{Type: EventJoined, Node: n})
		}
	}
	for addr := range old {
		if !seen[addr] {
			d.emit(Event{Type: EventLeft, Node: Node{ID: addr, Address: addr}})
		}
	}
	return nil
}

func trimTrailingDot(s string) string {
	if n := len(s); n > 0 && s[n-1] == '.' {
		return s[:n-1]
	}
	return s
}

func (d *DNSSource) emit(e Event) {
	select {
	case d.events <- e:
	default:
	}
}

// Start kicks off an initial resolution and a background ticker that
// re-resolves every refreshInterval until Stop is called.
func (d *DNSSource) Start() error {
	if err := d.Refresh(); err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.done = make(chan struct{})

	go func() {
		defer close(d.done)
		ticker := time.NewTicker(d.refreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = d.Refresh()
			}
		}
	}()
	return nil
}

func (d *DNSSource) Stop() {
	if d.cancel != nil {
		d.cancel()
		<-d.done
	}
	close(d.events)
}
