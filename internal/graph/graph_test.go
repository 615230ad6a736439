package graph

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/audiograph/internal/inmemorytopology"
	"github.com/vk/audiograph/internal/node"
	"github.com/vk/audiograph/internal/topologystore"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestNewPlaceholder(t *testing.T) {
	c := NewPlaceholder("c1", inmemorytopology.New(), t0)

	info := c.Info()
	assert.Equal(t, StateConstructed, info.State)
	assert.True(t, info.Placeholder)
	assert.Equal(t, t0, info.CreatedAt)
	assert.Nil(t, info.ClosedAt)
	assert.False(t, c.Closed())
}

func TestEnrich_OnlyPlaceholders(t *testing.T) {
	c := NewPlaceholder("c1", inmemorytopology.New(), t0)

	require.True(t, c.Enrich(Metadata{State: StateRunning, SampleRate: 48000}, t0))
	info := c.Info()
	assert.False(t, info.Placeholder)
	assert.Equal(t, StateRunning, info.State)
	assert.Equal(t, 48000.0, info.SampleRate)

	// A second announcement changes nothing.
	assert.False(t, c.Enrich(Metadata{State: StateSuspended, SampleRate: 44100}, t0))
	assert.Equal(t, info, c.Info())
}

func TestEnrich_ClosedPlaceholderStaysClosed(t *testing.T) {
	c := NewPlaceholder("c1", inmemorytopology.New(), t0)
	require.True(t, c.Close(t0.Add(time.Second)))

	require.True(t, c.Enrich(Metadata{State: StateRunning, SampleRate: 48000}, t0.Add(2*time.Second)))
	assert.True(t, c.Closed())
	assert.Equal(t, t0.Add(time.Second), c.ClosedAt())
	assert.Equal(t, 48000.0, c.Info().SampleRate)
}

func TestUpdate(t *testing.T) {
	c := New("c1", inmemorytopology.New(), Metadata{State: StateSuspended, SampleRate: 48000}, t0)

	assert.False(t, c.Update(Metadata{State: StateSuspended, SampleRate: 48000}, t0), "identical metadata")
	assert.True(t, c.Update(Metadata{State: StateRunning, SampleRate: 48000}, t0))
	assert.Equal(t, StateRunning, c.Info().State)

	// Empty state keeps the current one.
	assert.True(t, c.Update(Metadata{SampleRate: 44100}, t0))
	assert.Equal(t, StateRunning, c.Info().State)

	at := t0.Add(time.Minute)
	assert.True(t, c.Update(Metadata{State: StateClosed, SampleRate: 44100}, at))
	assert.True(t, c.Closed())
	assert.Equal(t, at, c.ClosedAt())
	assert.False(t, c.Update(Metadata{State: StateRunning}, at), "closed contexts do not reopen")
}

func TestRealtime(t *testing.T) {
	c := New("c1", inmemorytopology.New(), Metadata{State: StateRunning}, t0)

	rt := RealtimeData{CurrentTime: 1.5, RenderCapacity: 0.2}
	assert.True(t, c.SetRealtime(rt))
	assert.False(t, c.SetRealtime(rt))
	assert.Equal(t, rt, c.Info().Realtime)

	c.Close(t0)
	assert.False(t, c.SetRealtime(RealtimeData{CurrentTime: 9}))
}

func TestClose(t *testing.T) {
	c := New("c1", inmemorytopology.New(), Metadata{State: StateRunning}, t0)

	at := t0.Add(time.Hour)
	require.True(t, c.Close(at))
	assert.False(t, c.Close(at.Add(time.Hour)))
	require.NotNil(t, c.Info().ClosedAt)
	assert.Equal(t, at, *c.Info().ClosedAt)
}

func TestSnapshot_IncludesStructure(t *testing.T) {
	store := inmemorytopology.New()
	c := New("c1", store, Metadata{State: StateRunning}, t0)
	store.AddNode(node.New("c1", "n1", "Oscillator"), topologystore.NewChangeSet("c1", "test"))

	snap := c.Snapshot()
	assert.Equal(t, c.ID(), snap.Context.ID)
	require.Len(t, snap.Graph.Nodes, 1)
	assert.Equal(t, "Oscillator", snap.Graph.Nodes[0].Type)
}

// TestContext_ConcurrentReads verifies metadata reads while a writer updates.
func TestContext_ConcurrentReads(t *testing.T) {
	c := New("c1", inmemorytopology.New(), Metadata{State: StateRunning}, t0)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			c.SetRealtime(RealtimeData{CurrentTime: float64(i)})
		}
	}()
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_ = c.Snapshot()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 99.0, c.Info().Realtime.CurrentTime)
}
