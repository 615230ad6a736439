// Package socketio streams CDP envelopes from an instrumentation relay over
// socket.io.
package socketio

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/vk/audiograph/internal/config"
	"github.com/vk/audiograph/internal/ctxlog"
	"github.com/vk/audiograph/internal/handlers"
	"github.com/vk/audiograph/internal/session"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Defaults for optional block arguments.
const (
	DefaultNamespace = "/"
	DefaultEvent     = "cdp"
	DefaultBuffer    = 1024
)

// Module implements the handlers.Module interface for this package.
type Module struct{}

// Input defines the arguments of a `source "socketio"` block.
type Input struct {
	URL       string `cfg:"url"`
	Namespace string `cfg:"namespace,optional"`
	// Event is the socket.io event carrying envelopes.
	Event string `cfg:"event,optional"`
	// EmitEvent, if set, is emitted with EmitData on every (re)connect,
	// for relays that need a subscribe message.
	EmitEvent          string            `cfg:"emit_event,optional"`
	EmitData           map[string]string `cfg:"emit_data,optional"`
	InsecureSkipVerify bool              `cfg:"insecure_skip_verify,optional"`
	// Buffer is how many envelopes may wait for the ingest loop before the
	// socket callback blocks.
	Buffer int `cfg:"buffer,optional"`
}

// withDefaults fills unset optional arguments.
func (in Input) withDefaults() Input {
	if in.Namespace == "" {
		in.Namespace = DefaultNamespace
	}
	if in.Event == "" {
		in.Event = DefaultEvent
	}
	if in.Buffer <= 0 {
		in.Buffer = DefaultBuffer
	}
	return in
}

// Source is a socket.io client feeding a session.
type Source struct {
	name string
	in   Input
	base string
	path string
}

// New validates in and creates a source. It does not connect.
func New(name string, in Input) (*Source, error) {
	in = in.withDefaults()
	parsedURL, err := url.Parse(in.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("url %q needs a scheme and a host", in.URL)
	}
	return &Source{
		name: name,
		in:   in,
		base: fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host),
		path: parsedURL.Path,
	}, nil
}

// Name implements session.Source.
func (s *Source) Name() string { return s.name }

// Events implements session.Source. It connects in the background and keeps
// reconnecting until ctx is cancelled, at which point the socket is closed
// and then the channel.
func (s *Source) Events(ctx context.Context) (<-chan session.Delivery, error) {
	logger := ctxlog.FromContext(ctx).With("source", s.name, "url", s.in.URL, "event", s.in.Event)

	opts := socket.DefaultOptions()
	if s.path != "" {
		opts.SetPath(s.path)
	}
	if s.in.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(s.base, opts)
	io := manager.Socket(s.in.Namespace, opts)

	out := session.NewOutbox(s.in.Buffer)

	io.On(types.EventName("connect"), func(...any) {
		logger.Info("Connected to relay", "namespace", s.in.Namespace, "sid", io.Id())
		if s.in.EmitEvent != "" {
			io.Emit(s.in.EmitEvent, s.in.EmitData)
		}
	})
	io.On(types.EventName("connect_error"), func(errs ...any) {
		logger.Warn("Relay connection failed", "error", fmt.Sprint(errs...))
	})
	io.On(types.EventName("disconnect"), func(reason ...any) {
		logger.Info("Disconnected from relay", "reason", fmt.Sprint(reason...))
	})
	io.On(types.EventName(s.in.Event), func(data ...any) {
		for _, payload := range data {
			envelopes, err := envelopes(payload)
			if err != nil {
				logger.Warn("Dropping unreadable payload", "error", err)
				continue
			}
			for _, raw := range envelopes {
				if !out.Send(ctx, session.Delivery{Raw: raw}) {
					return
				}
			}
		}
	})

	io.Connect()
	go func() {
		<-ctx.Done()
		logger.Debug("Disconnecting socket client")
		io.Disconnect()
		out.Close()
	}()
	return out.C(), nil
}

// envelopes turns one socket.io argument into raw envelopes. Relays send
// either JSON text, binary JSON, an already-parsed object, or an array of
// any of those.
func envelopes(payload any) ([][]byte, error) {
	switch v := payload.(type) {
	case nil:
		return nil, errors.New("empty payload")
	case string:
		return [][]byte{[]byte(v)}, nil
	case []byte:
		return [][]byte{append([]byte(nil), v...)}, nil
	case []any:
		var out [][]byte
		for _, item := range v {
			inner, err := envelopes(item)
			if err != nil {
				return nil, err
			}
			out = append(out, inner...)
		}
		return out, nil
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("cannot re-encode %T: %w", v, err)
		}
		return [][]byte{raw}, nil
	}
}

// Register registers the socketio source type.
func (m *Module) Register(h *handlers.Handlers) {
	h.RegisterSource("socketio", func(ctx context.Context, cfg *config.Source) (session.Source, error) {
		var in Input
		if err := cfg.Body.Decode(ctx, &in); err != nil {
			return nil, err
		}
		return New(cfg.String(), in)
	})
}
