package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Full method names of jobmate.visibility.v1.VisibilityService.
const (
	serviceName            = "jobmate.visibility.v1.VisibilityService"
	EvaluateSnapshotMethod = "/" + serviceName + "/EvaluateSnapshot"
	OpenContactMethod      = "/" + serviceName + "/OpenContact"
)

// VisibilityServer is the server API of VisibilityService. Requests and
// responses are google.protobuf.Struct documents with the same JSON shape as
// the HTTP API.
type VisibilityServer interface {
	EvaluateSnapshot(context.Context, *structpb.Struct) (*structpb.Struct, error)
	OpenContact(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterVisibilityServer registers srv on s.
func RegisterVisibilityServer(s grpc.ServiceRegistrar, srv VisibilityServer) {
	s.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*VisibilityServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "EvaluateSnapshot", Handler: evaluateSnapshotHandler},
		{MethodName: "OpenContact", Handler: openContactHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "jobmate/visibility/v1/visibility.proto",
}

func evaluateSnapshotHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(VisibilityServer).EvaluateSnapshot(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: EvaluateSnapshotMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(VisibilityServer).EvaluateSnapshot(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func openContactHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(VisibilityServer).OpenContact(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: OpenContactMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(VisibilityServer).OpenContact(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}
