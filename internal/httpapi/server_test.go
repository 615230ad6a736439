package httpapi_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/audiograph/internal/config"
	"github.com/vk/audiograph/internal/event"
	"github.com/vk/audiograph/internal/graph"
	"github.com/vk/audiograph/internal/handlers"
	"github.com/vk/audiograph/internal/httpapi"
	"github.com/vk/audiograph/internal/localsession"
	"github.com/vk/audiograph/internal/nodeid"
	"github.com/vk/audiograph/internal/projection"
	"github.com/vk/audiograph/internal/reconciler"
	"github.com/vk/audiograph/internal/registry"
	"github.com/vk/audiograph/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const waitFor = 2 * time.Second

type harness struct {
	rec    *reconciler.Reconciler
	proj   *projection.Projection
	ingest *httpapi.Ingest
	srv    *httptest.Server
}

func setup(t *testing.T) *harness {
	t.Helper()
	reg := registry.New(registry.DefaultPolicy())
	rec := reconciler.New(reg)
	proj := projection.New(rec)
	rec.SetPublisher(proj)

	ingest := httpapi.NewIngest(16)
	api := httpapi.New(rec, proj, httpapi.WithIngest(ingest))
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)
	t.Cleanup(proj.Close)

	return &harness{rec: rec, proj: proj, ingest: ingest, srv: srv}
}

func (h *harness) apply(t *testing.T, events ...event.Event) {
	t.Helper()
	for _, e := range events {
		_, err := h.rec.Apply(context.Background(), e)
		require.NoError(t, err)
	}
}

func (h *harness) get(t *testing.T, path string, out any) int {
	t.Helper()
	resp, err := http.Get(h.srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (h *harness) dial(t *testing.T, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(h.srv.URL, "http") + path
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func twoNodeGraph() []event.Event {
	return []event.Event{
		event.ContextCreated{ContextID: "c1", State: event.StateRunning, SampleRate: 44100},
		event.NodeCreated{ContextID: "c1", NodeID: "n1", NodeType: "Oscillator", NumberOfOutputs: 1},
		event.NodeCreated{ContextID: "c1", NodeID: "n2", NodeType: "AudioDestination", NumberOfInputs: 1},
		event.NodeToNodeConnected{ContextID: "c1", SourceID: "n1", DestinationID: "n2"},
	}
}

func TestHealth(t *testing.T) {
	h := setup(t)
	h.apply(t, twoNodeGraph()...)

	var body map[string]any
	require.Equal(t, http.StatusOK, h.get(t, "/health", &body))
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 1, body["graphs"])
	assert.EqualValues(t, 0, body["subscriptions"])
}

func TestMetrics(t *testing.T) {
	h := setup(t)
	h.get(t, "/health", &map[string]any{})

	resp, err := http.Get(h.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `audiograph_http_requests_total{code="200",route="/health"}`)
}

func TestGraphs(t *testing.T) {
	h := setup(t)
	h.apply(t, twoNodeGraph()...)
	h.apply(t, event.ContextCreated{ContextID: "c2", State: event.StateSuspended, Offline: true})

	var list struct {
		Graphs []graph.Info `json:"graphs"`
	}
	require.Equal(t, http.StatusOK, h.get(t, "/graphs", &list))
	require.Len(t, list.Graphs, 2)
	assert.Equal(t, nodeid.ContextID("c1"), list.Graphs[0].ID)
	assert.Equal(t, graph.StateRunning, list.Graphs[0].State)
	assert.True(t, list.Graphs[1].Offline)

	var snap graph.ContextSnapshot
	require.Equal(t, http.StatusOK, h.get(t, "/graphs/c1", &snap))
	assert.Equal(t, 44100.0, snap.Context.SampleRate)
	assert.Len(t, snap.Graph.Nodes, 2)
	assert.Len(t, snap.Graph.Edges, 1)

	var missing map[string]string
	require.Equal(t, http.StatusNotFound, h.get(t, "/graphs/nope", &missing))
	assert.Equal(t, "graph not found", missing["error"])
}

func TestGetGraph_NeverSeesHalfAppliedEvent(t *testing.T) {
	h := setup(t)
	h.apply(t, event.ContextCreated{ContextID: "c1", State: event.StateRunning})

	const rounds = 200
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := range rounds {
			src := nodeid.ObjectID(fmt.Sprintf("src-%d", i))
			dst := nodeid.ObjectID(fmt.Sprintf("dst-%d", i))
			// The connection arrives first and stays pending until dst exists.
			for _, e := range []event.Event{
				event.NodeToNodeConnected{ContextID: "c1", SourceID: src, DestinationID: dst},
				event.NodeCreated{ContextID: "c1", NodeID: src, NodeType: "Oscillator", NumberOfOutputs: 1},
				event.NodeCreated{ContextID: "c1", NodeID: dst, NodeType: "Gain", NumberOfInputs: 1, NumberOfOutputs: 1},
			} {
				if _, err := h.rec.Apply(context.Background(), e); err != nil {
					t.Errorf("apply %s: %v", e.Kind(), err)
					return
				}
			}
		}
	}()

	var lastSeq uint64
	reads := 0
	for finished := false; !finished; reads++ {
		select {
		case <-done:
			finished = true
		default:
		}

		resp, err := http.Get(h.srv.URL + "/graphs/c1")
		require.NoError(t, err)
		var snap graph.ContextSnapshot
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
		resp.Body.Close()

		seq, err := strconv.ParseUint(resp.Header.Get("X-Graph-Seq"), 10, 64)
		require.NoError(t, err)
		require.GreaterOrEqual(t, seq, lastSeq)
		lastSeq = seq

		present := map[nodeid.ObjectID]bool{}
		for _, n := range snap.Graph.Nodes {
			present[n.ID] = true
		}
		for _, e := range snap.Graph.Pending {
			require.False(t, present[e.Source] && present[e.Target],
				"edge %s -> %s pending with both endpoints present (seq %d)", e.Source, e.Target, seq)
		}
		for _, e := range snap.Graph.Edges {
			require.True(t, present[e.Source] && present[e.Target],
				"edge %s -> %s resolved with an endpoint missing (seq %d)", e.Source, e.Target, seq)
		}
	}
	require.Positive(t, reads)

	var final graph.ContextSnapshot
	require.Equal(t, http.StatusOK, h.get(t, "/graphs/c1", &final))
	assert.Len(t, final.Graph.Nodes, 2*rounds)
	assert.Len(t, final.Graph.Edges, rounds)
	assert.Empty(t, final.Graph.Pending)
}

func TestLayout(t *testing.T) {
	h := setup(t)
	h.apply(t, twoNodeGraph()...)

	var body struct {
		Context   nodeid.ContextID `json:"context"`
		Positions map[string]struct {
			Layer int     `json:"layer"`
			X     float64 `json:"x"`
		} `json:"positions"`
	}
	require.Equal(t, http.StatusOK, h.get(t, "/graphs/c1/layout", &body))
	assert.Equal(t, nodeid.ContextID("c1"), body.Context)
	require.Len(t, body.Positions, 2)
	assert.Equal(t, 0, body.Positions["n1"].Layer)
	assert.Equal(t, 1, body.Positions["n2"].Layer)
	assert.Greater(t, body.Positions["n2"].X, body.Positions["n1"].X)

	assert.Equal(t, http.StatusNotFound, h.get(t, "/graphs/nope/layout", &map[string]string{}))
}

func readUpdate(t *testing.T, ws *websocket.Conn) projection.Update {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(waitFor)))
	var u projection.Update
	require.NoError(t, ws.ReadJSON(&u))
	return u
}

func TestSubscribe_StreamsSnapshotThenChanges(t *testing.T) {
	h := setup(t)
	h.apply(t, twoNodeGraph()...)

	ws := h.dial(t, "/subscribe?context=c1")
	initial := readUpdate(t, ws)
	assert.True(t, initial.Initial())
	assert.Equal(t, uint64(4), initial.Seq)
	require.Len(t, initial.Snapshots, 1)
	assert.Len(t, initial.Snapshots[0].Graph.Edges, 1)

	h.apply(t,
		event.ContextCreated{ContextID: "other"},
		event.NodeFromNodeDisconnected{ContextID: "c1", SourceID: "n1", DestinationID: "n2"},
	)
	u := readUpdate(t, ws)
	require.NotNil(t, u.Change)
	assert.Equal(t, uint64(6), u.Seq, "changes to other graphs are filtered out")
	assert.Len(t, u.Change.EdgesRemoved, 1)
}

func TestSubscribe_UnknownGraphStaysOpen(t *testing.T) {
	h := setup(t)

	ws := h.dial(t, "/subscribe?context=later")
	assert.Empty(t, readUpdate(t, ws).Snapshots)

	h.apply(t, event.ContextCreated{ContextID: "later"})
	u := readUpdate(t, ws)
	require.NotNil(t, u.Change)
	assert.Equal(t, nodeid.ContextID("later"), u.Change.ContextID)
}

func TestSubscribe_CloseUnsubscribes(t *testing.T) {
	h := setup(t)

	ws := h.dial(t, "/subscribe")
	readUpdate(t, ws)
	assert.Equal(t, 1, h.proj.Len())

	require.NoError(t, ws.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	ws.Close()
	assert.Eventually(t, func() bool { return h.proj.Len() == 0 }, waitFor, 10*time.Millisecond)
}

type emptyBody struct{}

func (emptyBody) Decode(context.Context, any) error { return nil }

func enableIngest(t *testing.T, h *harness) {
	t.Helper()
	hs := handlers.New()
	h.ingest.Register(hs)
	sources, err := hs.Build(context.Background(), []*config.Source{{Type: "websocket", Name: "page", Body: emptyBody{}}})
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "websocket.page", sources[0].Name())
}

func TestIngest_DisabledWithoutSource(t *testing.T) {
	h := setup(t)

	var body map[string]string
	assert.Equal(t, http.StatusServiceUnavailable, h.get(t, "/ingest", &body))
	assert.Contains(t, body["error"], "no websocket source")
}

func TestIngest_FeedsSession(t *testing.T) {
	h := setup(t)
	enableIngest(t, h)

	ctx, cancel := context.WithCancel(context.Background())
	sess := localsession.New(h.rec, h.ingest)
	done := make(chan error, 1)
	go func() { done <- sess.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	ws := h.dial(t, "/ingest")
	lines := testutil.OscillatorGainParamEvents()
	// First envelope alone, the rest batched in one message.
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(lines[0])))
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(strings.Join(lines[1:], "\n"))))

	assert.Eventually(t, func() bool {
		st := sess.Stats()
		return st.Applied+st.Rejected == uint64(len(lines))
	}, waitFor, 10*time.Millisecond)

	var snap graph.ContextSnapshot
	require.Equal(t, http.StatusOK, h.get(t, "/graphs/"+testutil.FixtureContextID, &snap))
	assert.Equal(t, graph.StateClosed, snap.Context.State)
}

func TestIngest_SingleSourceBlock(t *testing.T) {
	h := setup(t)
	hs := handlers.New()
	h.ingest.Register(hs)

	_, err := hs.Build(context.Background(), []*config.Source{
		{Type: "websocket", Name: "a", Body: emptyBody{}},
		{Type: "websocket", Name: "b", Body: emptyBody{}},
	})
	assert.ErrorContains(t, err, "only one websocket source")
}

func TestIngest_OpensOnce(t *testing.T) {
	ingest := httpapi.NewIngest(0)
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := ingest.Events(ctx)
	require.NoError(t, err)
	_, err = ingest.Events(ctx)
	assert.Error(t, err)

	cancel()
	_, open := <-ch
	assert.False(t, open, "the channel closes with the session")
	assert.False(t, ingest.Push(context.Background(), []byte(`{}`)))
}
