//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/oshokin/vent-alarm/internal/api/grpc/panel"
	"github.com/oshokin/vent-alarm/internal/config"
)

// Client talks to the panel service of a running controller.
type Client struct {
	// conn is the underlying gRPC connection.
	conn *grpc.ClientConn
	// actor is sent with every call as the command origin.
	actor string
	// callTimeout is the default timeout of a single call.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for panel calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithActor sets the identity recorded with commands.
func WithActor(actor string) Option {
	return func(c *Client) {
		c.actor = actor
	}
}

// errAddressRequired is returned when the panel address is missing.
var errAddressRequired = errors.New("address must be provided")

// Dial creates a client for the panel at address.
// Note: the panel uses insecure transport credentials and is meant for a
// trusted maintenance network.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial alarm panel: %w", err)
	}

	client := &Client{
		conn:        conn,
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// Raise asks the controller to raise alarm id.
func (c *Client) Raise(ctx context.Context, id int) error {
	if err := c.invoke(ctx, panel.MethodRaise, wrapperspb.Int32(int32(id)), new(emptypb.Empty)); err != nil { //nolint:gosec // Catalog ids are small.
		return fmt.Errorf("raise alarm: %w", err)
	}

	return nil
}

// PressKey simulates a front-panel key press.
func (c *Client) PressKey(ctx context.Context, key string) error {
	if err := c.invoke(ctx, panel.MethodPressKey, wrapperspb.String(key), new(emptypb.Empty)); err != nil {
		return fmt.Errorf("press key: %w", err)
	}

	return nil
}

// Reset asks the controller to reset every alarm.
func (c *Client) Reset(ctx context.Context) error {
	if err := c.invoke(ctx, panel.MethodReset, new(emptypb.Empty), new(emptypb.Empty)); err != nil {
		return fmt.Errorf("reset alarms: %w", err)
	}

	return nil
}

// Status returns the controller state.
func (c *Client) Status(ctx context.Context) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.invoke(ctx, panel.MethodStatus, new(emptypb.Empty), out); err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}

	return out, nil
}

// Journal returns up to limit most recent journal entries; zero means all.
func (c *Client) Journal(ctx context.Context, limit int) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.invoke(ctx, panel.MethodJournal, wrapperspb.Int32(int32(limit)), out); err != nil { //nolint:gosec // Limits are small.
		return nil, fmt.Errorf("get journal: %w", err)
	}

	return out, nil
}

func (c *Client) invoke(ctx context.Context, method string, in, out proto.Message) error {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	if c.actor != "" {
		callCtx = metadata.AppendToOutgoingContext(callCtx, panel.ActorHeader, c.actor)
	}

	return c.conn.Invoke(callCtx, panel.FullMethod(method), in, out)
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
