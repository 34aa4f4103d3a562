package panel

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "ventalarm.panel.v1.AlarmPanel"

// Method names of the panel service.
const (
	MethodRaise    = "Raise"
	MethodPressKey = "PressKey"
	MethodReset    = "Reset"
	MethodStatus   = "Status"
	MethodJournal  = "Journal"
)

// ActorHeader is the metadata key carrying the caller identity.
const ActorHeader = "x-panel-actor"

// PanelServer is the server API of the panel service.
//
//nolint:revive // panel.PanelServer mirrors the naming of generated gRPC servers.
type PanelServer interface {
	Raise(ctx context.Context, req *wrapperspb.Int32Value) (*emptypb.Empty, error)
	PressKey(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error)
	Reset(ctx context.Context, req *emptypb.Empty) (*emptypb.Empty, error)
	Status(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	Journal(ctx context.Context, req *wrapperspb.Int32Value) (*structpb.Struct, error)
}

// FullMethod returns the gRPC path of method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// RegisterPanelServer registers srv on s.
func RegisterPanelServer(s grpc.ServiceRegistrar, srv PanelServer) {
	s.RegisterService(&serviceDesc, srv)
}

//nolint:gochecknoglobals // grpc keeps a pointer to the descriptor.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PanelServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodRaise, PanelServer.Raise),
		unary(MethodPressKey, PanelServer.PressKey),
		unary(MethodReset, PanelServer.Reset),
		unary(MethodStatus, PanelServer.Status),
		unary(MethodJournal, PanelServer.Journal),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ventalarm/panel/v1/panel.proto",
}

// unary builds the method descriptor of a unary call, decoding into Req and
// running the server interceptor chain like generated code does.
func unary[Req, Resp any](
	method string,
	call func(PanelServer, context.Context, *Req) (*Resp, error),
) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}

			server, _ := srv.(PanelServer) //nolint:errcheck // grpc checked HandlerType on registration.

			if interceptor == nil {
				return call(server, ctx, in)
			}

			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: FullMethod(method),
			}

			handler := func(ctx context.Context, req any) (any, error) {
				r, _ := req.(*Req) //nolint:errcheck // req is the value decoded above.

				return call(server, ctx, r)
			}

			return interceptor(ctx, in, info, handler)
		},
	}
}
