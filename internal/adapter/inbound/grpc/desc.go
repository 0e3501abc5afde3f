package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// QueryServiceName is the fully qualified gRPC service name.
const QueryServiceName = "directory.v1.QueryService"

// QueryMethod is the full method name of the generic query RPC.
const QueryMethod = "/" + QueryServiceName + "/Query"

// QueryServiceServer is the server API for directory.v1.QueryService.
type QueryServiceServer interface {
	Query(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// QueryService_ServiceDesc describes directory.v1.QueryService. Requests and
// responses are google.protobuf.Struct, so no generated stubs are needed.
var QueryService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: QueryServiceName,
	HandlerType: (*QueryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Query",
			Handler:    queryServiceQueryHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "directory/v1/query.proto",
}

func queryServiceQueryHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(QueryServiceServer).Query(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: QueryMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(QueryServiceServer).Query(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// QueryServiceClient is the client API for directory.v1.QueryService.
type QueryServiceClient interface {
	Query(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type queryServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewQueryServiceClient creates a client for directory.v1.QueryService.
func NewQueryServiceClient(cc grpc.ClientConnInterface) QueryServiceClient {
	return &queryServiceClient{cc: cc}
}

func (c *queryServiceClient) Query(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, QueryMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
