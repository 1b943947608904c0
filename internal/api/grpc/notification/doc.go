// Package notification implements the gRPC transport of the notification facade.
//
// The service is described by hand (ServiceDesc) on top of protobuf
// well-known types, so no generated stubs are needed: schedule requests are
// structpb.Struct values, optional strings are structpb.Value (null when
// absent) and permission results stream as wrapperspb.BoolValue.
package notification
