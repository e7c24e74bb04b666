package uibridge

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/specialistvlad/neurogrid/internal/ctxlog"
	"github.com/specialistvlad/neurogrid/internal/editor"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Config configures the connection to the UI host.
type Config struct {
	URL                string `validate:"required,url"`
	Namespace          string
	InsecureSkipVerify bool
	ConnectTimeout     time.Duration
}

const defaultConnectTimeout = 15 * time.Second

// Bridge is a connected socket.io client serving a Dispatcher.
type Bridge struct {
	io   *socket.Socket
	d    *Dispatcher
	emit func(event string, reply editor.Reply)
}

// Connect dials the UI host and subscribes the dispatcher's events. It
// returns once the connection is established.
func Connect(ctx context.Context, cfg Config, d *Dispatcher) (*Bridge, error) {
	logger := ctxlog.FromContext(ctx).With("component", "uibridge", "url", cfg.URL)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Info("Connecting to UI host...")

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("URL %q must include a scheme and host", cfg.URL)
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.Namespace, opts)
	b := &Bridge{io: io, d: d, emit: replier(io.Emit, logger)}

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Connected to UI host.", "sid", io.Id())
		notify(connectChan, nil)
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err, ok := errs[0].(error)
		if !ok {
			err = fmt.Errorf("%v", errs[0])
		}
		logger.Debug("Connection error event fired.", "error", err)
		notify(connectChan, err)
	})
	io.On(types.EventName("disconnect"), func(reason ...any) {
		logger.Warn("Disconnected from UI host.", "reason", reason)
	})
	b.subscribe(ctx)

	logger.Debug("Initiating connection...")
	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return b, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", timeout)
	}
}

func (b *Bridge) subscribe(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	for _, event := range b.d.Events() {
		b.io.On(types.EventName(event), func(args ...any) {
			b.d.Serve(ctxlog.With(ctx, "event", event), event, args, b.emit)
		})
	}
	logger.Debug("Editor events subscribed.", "events", len(b.d.Events()))
}

// notify delivers the first connection outcome and drops later ones.
func notify(ch chan<- error, err error) {
	select {
	case ch <- err:
	default:
	}
}

func replier(send func(event string, args ...any) error, logger *slog.Logger) func(string, editor.Reply) {
	return func(event string, reply editor.Reply) {
		if err := send(event, reply); err != nil {
			logger.Warn("Failed to emit reply.", "event", event, "error", err)
		}
	}
}

// Run serves events until ctx ends, then disconnects.
func (b *Bridge) Run(ctx context.Context) error {
	<-ctx.Done()
	b.Close(ctx)
	if errors.Is(ctx.Err(), context.Canceled) {
		return nil
	}
	return ctx.Err()
}

// Close disconnects from the UI host.
func (b *Bridge) Close(ctx context.Context) {
	ctxlog.FromContext(ctx).Info("Closing UI bridge.", "sid", b.io.Id())
	b.io.Disconnect()
}
