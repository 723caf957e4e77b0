// Package rpc exposes game rounds over gRPC. Request and response bodies are
// google.protobuf.Struct maps, so the service needs no generated stubs.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "adaptiveguess.v1.GuessService"

// GuessServiceServer is the server API for the guess service.
type GuessServiceServer interface {
	Start(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Next(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Answer(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Confirm(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Reveal(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Abandon(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Stats(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type method func(GuessServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(name string, call method) grpc.MethodDesc {
	full := fullMethod(name)
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(GuessServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: full}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(GuessServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes the guess service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GuessServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("Start", GuessServiceServer.Start),
		unaryHandler("Next", GuessServiceServer.Next),
		unaryHandler("Answer", GuessServiceServer.Answer),
		unaryHandler("Confirm", GuessServiceServer.Confirm),
		unaryHandler("Reveal", GuessServiceServer.Reveal),
		unaryHandler("Abandon", GuessServiceServer.Abandon),
		unaryHandler("Stats", GuessServiceServer.Stats),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "adaptiveguess/v1/guess.proto",
}

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}
