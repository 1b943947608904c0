//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	api "github.com/oshokin/local-notification/internal/api/grpc/notification"
	"github.com/oshokin/local-notification/internal/config"
	domain "github.com/oshokin/local-notification/internal/domain/notification"
)

// Client wraps a gRPC connection to notifyd with one method per facade call.
type Client struct {
	// conn is the underlying gRPC connection to notifyd.
	conn *grpc.ClientConn

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// errAddressRequired is returned when a required address value is missing.
var errAddressRequired = errors.New("address must be provided")

// Dial creates a client for the notifyd instance at address.
// Transport is insecure; notifyd is meant to listen on loopback.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial notifyd: %w", err)
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

// Initialize asks notifyd to request notification permission.
func (c *Client) Initialize(ctx context.Context) error {
	return c.invoke(ctx, api.MethodInitialize, new(emptypb.Empty), new(emptypb.Empty))
}

// IsInited reports whether the facade is initialized.
func (c *Client) IsInited(ctx context.Context) (bool, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.invoke(ctx, api.MethodIsInited, new(emptypb.Empty), out); err != nil {
		return false, err
	}

	return out.GetValue(), nil
}

// IsEnabled reports whether notifications are allowed.
func (c *Client) IsEnabled(ctx context.Context) (bool, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.invoke(ctx, api.MethodIsEnabled, new(emptypb.Empty), out); err != nil {
		return false, err
	}

	return out.GetValue(), nil
}

// ScheduleAlert registers a one-shot alert.
func (c *Client) ScheduleAlert(ctx context.Context, message, title string, delaySeconds, tag int) error {
	req := api.ScheduleRequest(message, title, delaySeconds, tag, nil)

	return c.invoke(ctx, api.MethodScheduleAlert, req, new(emptypb.Empty))
}

// ScheduleRepeatingAlert registers a repeating alert.
func (c *Client) ScheduleRepeatingAlert(
	ctx context.Context,
	message, title string,
	delaySeconds, tag, repeatIntervalSeconds int,
) error {
	req := api.ScheduleRequest(message, title, delaySeconds, tag, &repeatIntervalSeconds)

	return c.invoke(ctx, api.MethodScheduleRepeatingAlert, req, new(emptypb.Empty))
}

// CancelAlert unregisters the alert for tag.
func (c *Client) CancelAlert(ctx context.Context, tag int) error {
	return c.invoke(ctx, api.MethodCancelAlert, wrapperspb.Int64(int64(tag)), new(emptypb.Empty))
}

// CancelAllAlerts calls the unimplemented cancel-all operation.
func (c *Client) CancelAllAlerts(ctx context.Context) error {
	return c.invoke(ctx, api.MethodCancelAllAlerts, new(emptypb.Empty), new(emptypb.Empty))
}

// RegisterRemoteNotification calls the push registration placeholder.
func (c *Client) RegisterRemoteNotification(ctx context.Context) error {
	return c.invoke(ctx, api.MethodRegisterRemoteNotification, new(emptypb.Empty), new(emptypb.Empty))
}

// DeviceToken returns the push device token.
func (c *Client) DeviceToken(ctx context.Context) (string, error) {
	out := new(wrapperspb.StringValue)
	if err := c.invoke(ctx, api.MethodGetDeviceToken, new(emptypb.Empty), out); err != nil {
		return "", err
	}

	return out.GetValue(), nil
}

// LaunchExtras returns the launch extras. Numbers arrive as float64.
func (c *Client) LaunchExtras(ctx context.Context) (map[string]any, error) {
	out := new(structpb.Struct)
	if err := c.invoke(ctx, api.MethodGetLaunchExtras, new(emptypb.Empty), out); err != nil {
		return nil, err
	}

	return out.AsMap(), nil
}

// DeepLinkAction returns the launch action and whether it is present.
func (c *Client) DeepLinkAction(ctx context.Context) (string, bool, error) {
	return c.optionalString(ctx, api.MethodGetDeepLinkAction)
}

// DeepLinkURI returns the launch URI and whether it is present.
func (c *Client) DeepLinkURI(ctx context.Context) (string, bool, error) {
	return c.optionalString(ctx, api.MethodGetDeepLinkURI)
}

// Resume reports a host resume so the launch context is read again.
func (c *Client) Resume(ctx context.Context) error {
	return c.invoke(ctx, api.MethodResume, new(emptypb.Empty), new(emptypb.Empty))
}

// Pending lists alerts registered in notifyd.
func (c *Client) Pending(ctx context.Context) ([]*domain.Alert, error) {
	out := new(structpb.ListValue)
	if err := c.invoke(ctx, api.MethodPending, new(emptypb.Empty), out); err != nil {
		return nil, err
	}

	alerts := make([]*domain.Alert, 0, len(out.GetValues()))

	for _, v := range out.GetValues() {
		alert, err := api.AlertFromStruct(v.GetStructValue())
		if err != nil {
			return nil, fmt.Errorf("decode pending alert: %w", err)
		}

		alerts = append(alerts, alert)
	}

	return alerts, nil
}

// PermissionStream receives permission_result events.
type PermissionStream struct {
	stream grpc.ClientStream
}

// PermissionResults subscribes to permission answers. It returns once notifyd
// confirmed the subscription, so a following Initialize cannot be missed.
// The stream lives until ctx is canceled.
func (c *Client) PermissionResults(ctx context.Context) (*PermissionStream, error) {
	desc := &api.ServiceDesc.Streams[0]

	stream, err := c.conn.NewStream(ctx, desc, api.FullMethod(api.StreamPermissionResults))
	if err != nil {
		return nil, fmt.Errorf("open permission stream: %w", err)
	}

	if err = stream.SendMsg(new(emptypb.Empty)); err != nil {
		return nil, fmt.Errorf("open permission stream: %w", err)
	}

	if err = stream.CloseSend(); err != nil {
		return nil, fmt.Errorf("open permission stream: %w", err)
	}

	if _, err = stream.Header(); err != nil {
		return nil, fmt.Errorf("await permission stream: %w", err)
	}

	return &PermissionStream{stream: stream}, nil
}

// Recv blocks until the next permission answer.
func (s *PermissionStream) Recv() (bool, error) {
	out := new(wrapperspb.BoolValue)
	if err := s.stream.RecvMsg(out); err != nil {
		return false, err
	}

	return out.GetValue(), nil
}

// optionalString calls a method returning a string-or-null value.
func (c *Client) optionalString(ctx context.Context, method string) (string, bool, error) {
	out := new(structpb.Value)
	if err := c.invoke(ctx, method, new(emptypb.Empty), out); err != nil {
		return "", false, err
	}

	s, ok := out.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", false, nil
	}

	return s.StringValue, true, nil
}

// invoke performs a unary call with the client's call timeout.
func (c *Client) invoke(ctx context.Context, method string, in, out proto.Message) error {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	if err := c.conn.Invoke(callCtx, api.FullMethod(method), in, out); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}

	return nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
