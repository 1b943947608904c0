package notification

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	domain "github.com/oshokin/local-notification/internal/domain/notification"
	"github.com/oshokin/local-notification/internal/eventbus"
	"github.com/oshokin/local-notification/internal/logger"
)

// Schedule request fields.
const (
	FieldMessage        = "message"
	FieldTitle          = "title"
	FieldDelaySeconds   = "delay_seconds"
	FieldTag            = "tag"
	FieldRepeatInterval = "repeat_interval_seconds"
	FieldFireAt         = "fire_at"
)

// permissionBuffer is the subscription buffer of one PermissionResults stream.
const permissionBuffer = 8

// Service abstracts the facade operations the transport layer depends on.
type Service interface {
	Initialize(ctx context.Context)
	IsInited() bool
	IsEnabled(ctx context.Context) bool
	ScheduleAlert(ctx context.Context, message, title string, delaySeconds, tag int) error
	ScheduleRepeatingAlert(ctx context.Context, message, title string, delaySeconds, tag, repeatIntervalSeconds int) error
	CancelAlert(ctx context.Context, tag int) error
	CancelAllAlerts(ctx context.Context)
	RegisterRemoteNotification(ctx context.Context)
	DeviceToken() string
	LaunchExtras(ctx context.Context) map[string]any
	DeepLinkAction(ctx context.Context) (string, bool)
	DeepLinkURI(ctx context.Context) (string, bool)
	OnResume(ctx context.Context)
	Subscribe(buffer int) (<-chan eventbus.Event, func())
}

// PendingLister lists registered alerts for diagnostics.
type PendingLister interface {
	Pending() []*domain.Alert
}

// Server implements NotificationServiceServer on top of a Service.
type Server struct {
	// service provides the facade operations.
	service Service
	// pending lists registered alerts, nil disables the Pending call.
	pending PendingLister
}

var (
	// errFieldMissing is returned when a required request field is absent.
	errFieldMissing = errors.New("field is required")
	// errFieldType is returned when a request field has the wrong type.
	errFieldType = errors.New("field has wrong type")
)

// NewServer wires the provided service into a gRPC handler.
func NewServer(service Service, pending PendingLister) *Server {
	return &Server{
		service: service,
		pending: pending,
	}
}

// Register adds the service to a gRPC server.
func (s *Server) Register(registrar grpc.ServiceRegistrar) {
	registrar.RegisterService(&ServiceDesc, s)
}

// Initialize requests notification permission.
func (s *Server) Initialize(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	s.service.Initialize(ctx)

	return new(emptypb.Empty), nil
}

// IsInited reports whether the facade is initialized.
func (s *Server) IsInited(context.Context, *emptypb.Empty) (*wrapperspb.BoolValue, error) {
	return wrapperspb.Bool(s.service.IsInited()), nil
}

// IsEnabled reports whether notifications are allowed.
func (s *Server) IsEnabled(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.BoolValue, error) {
	return wrapperspb.Bool(s.service.IsEnabled(ctx)), nil
}

// ScheduleAlert registers a one-shot alert.
func (s *Server) ScheduleAlert(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	message, title, delay, tag, err := scheduleArgs(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	if err = s.service.ScheduleAlert(ctx, message, title, delay, tag); err != nil {
		return nil, status.Error(codes.Internal, "unable to schedule alert")
	}

	return new(emptypb.Empty), nil
}

// ScheduleRepeatingAlert registers a repeating alert.
func (s *Server) ScheduleRepeatingAlert(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	message, title, delay, tag, err := scheduleArgs(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	interval, err := intField(req, FieldRepeatInterval)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	if err = s.service.ScheduleRepeatingAlert(ctx, message, title, delay, tag, interval); err != nil {
		return nil, status.Error(codes.Internal, "unable to schedule alert")
	}

	return new(emptypb.Empty), nil
}

// CancelAlert unregisters the alert for a tag.
func (s *Server) CancelAlert(ctx context.Context, req *wrapperspb.Int64Value) (*emptypb.Empty, error) {
	tag, err := toInt(req.GetValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	if err = s.service.CancelAlert(ctx, tag); err != nil {
		return nil, status.Error(codes.Internal, "unable to cancel alert")
	}

	return new(emptypb.Empty), nil
}

// CancelAllAlerts forwards to the facade, which does not implement it.
func (s *Server) CancelAllAlerts(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	s.service.CancelAllAlerts(ctx)

	return new(emptypb.Empty), nil
}

// RegisterRemoteNotification forwards to the facade placeholder.
func (s *Server) RegisterRemoteNotification(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	s.service.RegisterRemoteNotification(ctx)

	return new(emptypb.Empty), nil
}

// GetDeviceToken returns the push device token.
func (s *Server) GetDeviceToken(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error) {
	return wrapperspb.String(s.service.DeviceToken()), nil
}

// GetLaunchExtras returns the launch extras. Values that cannot be encoded are dropped.
func (s *Server) GetLaunchExtras(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	extras := s.service.LaunchExtras(ctx)

	result := &structpb.Struct{Fields: make(map[string]*structpb.Value, len(extras))}

	for key, value := range extras {
		encoded, err := structpb.NewValue(value)
		if err != nil {
			logger.WarnKV(ctx, "Dropping launch extra", "key", key, "error", err)

			continue
		}

		result.Fields[key] = encoded
	}

	return result, nil
}

// GetDeepLinkAction returns the launch action, null when absent.
func (s *Server) GetDeepLinkAction(ctx context.Context, _ *emptypb.Empty) (*structpb.Value, error) {
	return optionalValue(s.service.DeepLinkAction(ctx)), nil
}

// GetDeepLinkUri returns the launch URI, null when absent.
//
//nolint:revive,stylecheck // Wire name.
func (s *Server) GetDeepLinkUri(ctx context.Context, _ *emptypb.Empty) (*structpb.Value, error) {
	return optionalValue(s.service.DeepLinkURI(ctx)), nil
}

// Resume forwards the host's resume lifecycle event.
func (s *Server) Resume(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	s.service.OnResume(ctx)

	return new(emptypb.Empty), nil
}

// Pending lists registered alerts.
func (s *Server) Pending(context.Context, *emptypb.Empty) (*structpb.ListValue, error) {
	if s.pending == nil {
		return nil, status.Error(codes.Unimplemented, "pending alerts are not available")
	}

	alerts := s.pending.Pending()
	list := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(alerts))}

	for _, a := range alerts {
		list.Values = append(list.Values, structpb.NewStructValue(alertToStruct(a)))
	}

	return list, nil
}

// PermissionResults streams permission answers until the client goes away.
// Headers are sent once the subscription is in place, so a client that waits
// for them cannot miss an answer to a later Initialize.
func (s *Server) PermissionResults(_ *emptypb.Empty, stream grpc.ServerStream) error {
	events, unsubscribe := s.service.Subscribe(permissionBuffer)
	defer unsubscribe()

	if err := stream.SendHeader(metadata.Pairs("subscribed", "true")); err != nil {
		return fmt.Errorf("send header: %w", err)
	}

	ctx := stream.Context()

	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-events:
			if !ok {
				return nil
			}

			if e.Type != eventbus.EventPermissionResult {
				continue
			}

			granted, _ := e.Data.(bool)
			if err := stream.SendMsg(wrapperspb.Bool(granted)); err != nil {
				return fmt.Errorf("send permission result: %w", err)
			}
		}
	}
}

// scheduleArgs extracts the fields shared by both schedule calls.
func scheduleArgs(req *structpb.Struct) (message, title string, delay, tag int, err error) {
	if message, err = stringField(req, FieldMessage); err != nil {
		return "", "", 0, 0, err
	}

	if title, err = stringField(req, FieldTitle); err != nil {
		return "", "", 0, 0, err
	}

	if delay, err = intField(req, FieldDelaySeconds); err != nil {
		return "", "", 0, 0, err
	}

	if tag, err = intField(req, FieldTag); err != nil {
		return "", "", 0, 0, err
	}

	return message, title, delay, tag, nil
}

// stringField reads a required string field.
func stringField(req *structpb.Struct, name string) (string, error) {
	v, ok := req.GetFields()[name]
	if !ok {
		return "", fmt.Errorf("%s: %w", name, errFieldMissing)
	}

	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("%s: %w", name, errFieldType)
	}

	return s.StringValue, nil
}

// intField reads a required integral number field.
func intField(req *structpb.Struct, name string) (int, error) {
	v, ok := req.GetFields()[name]
	if !ok {
		return 0, fmt.Errorf("%s: %w", name, errFieldMissing)
	}

	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok || n.NumberValue != math.Trunc(n.NumberValue) {
		return 0, fmt.Errorf("%s: %w", name, errFieldType)
	}

	if n.NumberValue < math.MinInt32 || n.NumberValue > math.MaxInt32 {
		return 0, fmt.Errorf("%s: value out of range: %w", name, errFieldType)
	}

	return int(n.NumberValue), nil
}

// toInt narrows v to a 32-bit range, the range host scripts use for tags and seconds.
func toInt(v int64) (int, error) {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, fmt.Errorf("value %d out of range: %w", v, errFieldType)
	}

	return int(v), nil
}

// optionalValue encodes an optional string as a string or null value.
func optionalValue(s string, ok bool) *structpb.Value {
	if !ok {
		return structpb.NewNullValue()
	}

	return structpb.NewStringValue(s)
}

// alertToStruct converts a domain alert for the Pending listing.
func alertToStruct(a *domain.Alert) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldTag:            structpb.NewNumberValue(float64(a.Tag)),
		FieldTitle:          structpb.NewStringValue(a.Title),
		FieldMessage:        structpb.NewStringValue(a.Message),
		FieldFireAt:         structpb.NewStringValue(a.FireAt.UTC().Format(time.RFC3339Nano)),
		FieldRepeatInterval: structpb.NewNumberValue(a.RepeatInterval.Seconds()),
	}}
}

// AlertFromStruct converts a Pending entry back into a domain alert.
func AlertFromStruct(s *structpb.Struct) (*domain.Alert, error) {
	tag, err := intField(s, FieldTag)
	if err != nil {
		return nil, err
	}

	title, err := stringField(s, FieldTitle)
	if err != nil {
		return nil, err
	}

	message, err := stringField(s, FieldMessage)
	if err != nil {
		return nil, err
	}

	rawFireAt, err := stringField(s, FieldFireAt)
	if err != nil {
		return nil, err
	}

	fireAt, err := time.Parse(time.RFC3339Nano, rawFireAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", FieldFireAt, err)
	}

	seconds := s.GetFields()[FieldRepeatInterval].GetNumberValue()

	return &domain.Alert{
		Tag:            tag,
		Title:          title,
		Message:        message,
		FireAt:         fireAt,
		RepeatInterval: time.Duration(seconds * float64(time.Second)),
	}, nil
}

// ScheduleRequest builds the request of ScheduleAlert and ScheduleRepeatingAlert.
// A nil interval leaves the repeat field out.
func ScheduleRequest(message, title string, delaySeconds, tag int, repeatIntervalSeconds *int) *structpb.Struct {
	fields := map[string]*structpb.Value{
		FieldMessage:      structpb.NewStringValue(message),
		FieldTitle:        structpb.NewStringValue(title),
		FieldDelaySeconds: structpb.NewNumberValue(float64(delaySeconds)),
		FieldTag:          structpb.NewNumberValue(float64(tag)),
	}

	if repeatIntervalSeconds != nil {
		fields[FieldRepeatInterval] = structpb.NewNumberValue(float64(*repeatIntervalSeconds))
	}

	return &structpb.Struct{Fields: fields}
}
