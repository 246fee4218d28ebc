package discovery

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticSource_DefaultPort(t *testing.T) {
	s := NewStaticSource([]string{"node1", "node2:9090"})
	nodes := s.Nodes()
	require.Len(t, nodes, 2)
	assert.Equal(t, "node1:9080", nodes[0].Address)
	assert.Equal(t, "node2:9090", nodes[1].Address)
}

func TestStaticSource_RefreshEmitsJoinedOnNewHost(t *testing.T) {
	s := NewStaticSource([]string{"node1"})
	require.NoError(t, s.Start())

	// the constructor already resolved node1, so Start's own Refresh emits
	// nothing; drain anyway so only the events of the next Refresh remain.
	drain(s.Events())

	s.hostnames = append(s.hostnames, "node2:1234")
	require.NoError(t, s.Refresh())

	ev := <-s.Events()
	assert.Equal(t, EventJoined, ev.Type)
	assert.Equal(t, "node2:1234", ev.Node.Address)
}

func TestStaticSource_StopClosesEvents(t *testing.T) {
	s := NewStaticSource([]string{"node1"})
	s.Stop()
	_, ok := <-s.Events()
	assert.False(t, ok)
}

func TestDNSSource_RefreshParsesSRVRecords(t *testing.T) {
	orig := lookupSRV
	defer func() { lookupSRV = orig }()
	lookupSRV = func(service, proto, name string) (string, []*net.SRV, error) {
		return "", []*net.SRV{
			{Target: "node1.cluster.local.", Port: 9080, Priority: 1, Weight: 10},
			{Target: "node2.cluster.local.", Port: 9080, Priority: 2, Weight: 5},
		}, nil
	}

	d := NewDNSSource("_prism._tcp.cluster.local", time.Hour, 9080)
	require.NoError(t, d.Refresh())

	nodes := d.Nodes()
	require.Len(t, nodes, 2)
	assert.Equal(t, "node1.cluster.local:9080", nodes[0].Address)
	assert.Equal(t, uint16(1), nodes[0].Priority)
}

func drain(ch <-chan Event) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}
