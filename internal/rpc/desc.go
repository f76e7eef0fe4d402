package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "canvasreplay.ReplayService"

// #region server-interface
// ReplayServiceServer is the server side of canvasreplay.ReplayService.
// Every request and response is a google.protobuf.Struct; see messages.go
// for the field layout.
type ReplayServiceServer interface {
	OpenSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CloseSession(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	Commit(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Undo(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Redo(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Current(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterReplayServiceServer attaches srv to s.
func RegisterReplayServiceServer(s grpc.ServiceRegistrar, srv ReplayServiceServer) {
	s.RegisterService(&ReplayServiceDesc, srv)
}

// ReplayServiceDesc describes the service for grpc.Server.
var ReplayServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ReplayServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("OpenSession", ReplayServiceServer.OpenSession),
		unary("CloseSession", ReplayServiceServer.CloseSession),
		unary("Commit", ReplayServiceServer.Commit),
		unary("Undo", ReplayServiceServer.Undo),
		unary("Redo", ReplayServiceServer.Redo),
		unary("Current", ReplayServiceServer.Current),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "canvasreplay/replay.proto",
}

func unary[Resp any](name string, call func(ReplayServiceServer, context.Context, *structpb.Struct) (Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ReplayServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(ReplayServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}
// #endregion server-interface

// #region client-interface
// ReplayServiceClient is the client side of canvasreplay.ReplayService.
type ReplayServiceClient interface {
	OpenSession(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	CloseSession(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error)
	Commit(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Undo(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Redo(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Current(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type replayServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewReplayServiceClient returns a stub over cc.
func NewReplayServiceClient(cc grpc.ClientConnInterface) ReplayServiceClient {
	return &replayServiceClient{cc: cc}
}

func (c *replayServiceClient) invoke(ctx context.Context, name string, in *structpb.Struct, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod(name), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *replayServiceClient) OpenSession(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "OpenSession", in, opts)
}

func (c *replayServiceClient) CloseSession(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, fullMethod("CloseSession"), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *replayServiceClient) Commit(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Commit", in, opts)
}

func (c *replayServiceClient) Undo(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Undo", in, opts)
}

func (c *replayServiceClient) Redo(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Redo", in, opts)
}

func (c *replayServiceClient) Current(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Current", in, opts)
}
// #endregion client-interface
