package notification

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "localnotification.v1.NotificationService"

// Method names.
const (
	MethodInitialize                 = "Initialize"
	MethodIsInited                   = "IsInited"
	MethodIsEnabled                  = "IsEnabled"
	MethodScheduleAlert              = "ScheduleAlert"
	MethodScheduleRepeatingAlert     = "ScheduleRepeatingAlert"
	MethodCancelAlert                = "CancelAlert"
	MethodCancelAllAlerts            = "CancelAllAlerts"
	MethodRegisterRemoteNotification = "RegisterRemoteNotification"
	MethodGetDeviceToken             = "GetDeviceToken"
	MethodGetLaunchExtras            = "GetLaunchExtras"
	MethodGetDeepLinkAction          = "GetDeepLinkAction"
	MethodGetDeepLinkURI             = "GetDeepLinkUri"
	MethodResume                     = "Resume"
	MethodPending                    = "Pending"
	StreamPermissionResults          = "PermissionResults"
)

// FullMethod returns the "/service/method" path used on the wire.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// NotificationServiceServer is the server-side contract registered by ServiceDesc.
type NotificationServiceServer interface {
	Initialize(ctx context.Context, req *emptypb.Empty) (*emptypb.Empty, error)
	IsInited(ctx context.Context, req *emptypb.Empty) (*wrapperspb.BoolValue, error)
	IsEnabled(ctx context.Context, req *emptypb.Empty) (*wrapperspb.BoolValue, error)
	ScheduleAlert(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error)
	ScheduleRepeatingAlert(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error)
	CancelAlert(ctx context.Context, req *wrapperspb.Int64Value) (*emptypb.Empty, error)
	CancelAllAlerts(ctx context.Context, req *emptypb.Empty) (*emptypb.Empty, error)
	RegisterRemoteNotification(ctx context.Context, req *emptypb.Empty) (*emptypb.Empty, error)
	GetDeviceToken(ctx context.Context, req *emptypb.Empty) (*wrapperspb.StringValue, error)
	GetLaunchExtras(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	GetDeepLinkAction(ctx context.Context, req *emptypb.Empty) (*structpb.Value, error)
	GetDeepLinkUri(ctx context.Context, req *emptypb.Empty) (*structpb.Value, error) //nolint:revive,stylecheck // Wire name.
	Resume(ctx context.Context, req *emptypb.Empty) (*emptypb.Empty, error)
	Pending(ctx context.Context, req *emptypb.Empty) (*structpb.ListValue, error)
	PermissionResults(req *emptypb.Empty, stream grpc.ServerStream) error
}

// unary adapts a typed server method to grpc.MethodHandler.
func unary[Req proto.Message](
	method string,
	newReq func() Req,
	call func(NotificationServiceServer, context.Context, Req) (proto.Message, error),
) grpc.MethodDesc {
	handler := func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newReq()
		if err := dec(in); err != nil {
			return nil, err
		}

		impl, _ := srv.(NotificationServiceServer)

		if interceptor == nil {
			return call(impl, ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: FullMethod(method),
		}

		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			typed, _ := req.(Req)

			return call(impl, ctx, typed)
		})
	}

	return grpc.MethodDesc{
		MethodName: method,
		Handler:    handler,
	}
}

// newEmpty allocates an empty request.
func newEmpty() *emptypb.Empty { return new(emptypb.Empty) }

// newStruct allocates a struct request.
func newStruct() *structpb.Struct { return new(structpb.Struct) }

// newInt64 allocates an int64 request.
func newInt64() *wrapperspb.Int64Value { return new(wrapperspb.Int64Value) }

// permissionResultsHandler serves the server-streaming PermissionResults call.
func permissionResultsHandler(srv any, stream grpc.ServerStream) error {
	in := new(emptypb.Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}

	impl, _ := srv.(NotificationServiceServer)

	return impl.PermissionResults(in, stream)
}

// ServiceDesc describes NotificationService for grpc.Server.RegisterService.
//
//nolint:gochecknoglobals // Service descriptors are package-level by gRPC convention.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*NotificationServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodInitialize, newEmpty,
			func(s NotificationServiceServer, ctx context.Context, in *emptypb.Empty) (proto.Message, error) {
				return s.Initialize(ctx, in)
			}),
		unary(MethodIsInited, newEmpty,
			func(s NotificationServiceServer, ctx context.Context, in *emptypb.Empty) (proto.Message, error) {
				return s.IsInited(ctx, in)
			}),
		unary(MethodIsEnabled, newEmpty,
			func(s NotificationServiceServer, ctx context.Context, in *emptypb.Empty) (proto.Message, error) {
				return s.IsEnabled(ctx, in)
			}),
		unary(MethodScheduleAlert, newStruct,
			func(s NotificationServiceServer, ctx context.Context, in *structpb.Struct) (proto.Message, error) {
				return s.ScheduleAlert(ctx, in)
			}),
		unary(MethodScheduleRepeatingAlert, newStruct,
			func(s NotificationServiceServer, ctx context.Context, in *structpb.Struct) (proto.Message, error) {
				return s.ScheduleRepeatingAlert(ctx, in)
			}),
		unary(MethodCancelAlert, newInt64,
			func(s NotificationServiceServer, ctx context.Context, in *wrapperspb.Int64Value) (proto.Message, error) {
				return s.CancelAlert(ctx, in)
			}),
		unary(MethodCancelAllAlerts, newEmpty,
			func(s NotificationServiceServer, ctx context.Context, in *emptypb.Empty) (proto.Message, error) {
				return s.CancelAllAlerts(ctx, in)
			}),
		unary(MethodRegisterRemoteNotification, newEmpty,
			func(s NotificationServiceServer, ctx context.Context, in *emptypb.Empty) (proto.Message, error) {
				return s.RegisterRemoteNotification(ctx, in)
			}),
		unary(MethodGetDeviceToken, newEmpty,
			func(s NotificationServiceServer, ctx context.Context, in *emptypb.Empty) (proto.Message, error) {
				return s.GetDeviceToken(ctx, in)
			}),
		unary(MethodGetLaunchExtras, newEmpty,
			func(s NotificationServiceServer, ctx context.Context, in *emptypb.Empty) (proto.Message, error) {
				return s.GetLaunchExtras(ctx, in)
			}),
		unary(MethodGetDeepLinkAction, newEmpty,
			func(s NotificationServiceServer, ctx context.Context, in *emptypb.Empty) (proto.Message, error) {
				return s.GetDeepLinkAction(ctx, in)
			}),
		unary(MethodGetDeepLinkURI, newEmpty,
			func(s NotificationServiceServer, ctx context.Context, in *emptypb.Empty) (proto.Message, error) {
				return s.GetDeepLinkUri(ctx, in)
			}),
		unary(MethodResume, newEmpty,
			func(s NotificationServiceServer, ctx context.Context, in *emptypb.Empty) (proto.Message, error) {
				return s.Resume(ctx, in)
			}),
		unary(MethodPending, newEmpty,
			func(s NotificationServiceServer, ctx context.Context, in *emptypb.Empty) (proto.Message, error) {
				return s.Pending(ctx, in)
			}),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    StreamPermissionResults,
			Handler:       permissionResultsHandler,
			ServerStreams: true,
		},
	},
	Metadata: "localnotification/v1/notification.proto",
}
