package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// This is a compile-time assertion to ensure that this file
// is compatible with the grpc package it is being compiled against.
const _ = grpc.SupportPackageIsVersion9

const (
	// DeliveryService_ServiceName is the fully qualified service name.
	DeliveryService_ServiceName = "alarmtone.v1.DeliveryService" //nolint:revive,stylecheck // Generated-code naming.
	// DeliveryService_Deliver_FullMethodName is the full RPC path of Deliver.
	DeliveryService_Deliver_FullMethodName = "/alarmtone.v1.DeliveryService/Deliver" //nolint:revive,stylecheck // Generated-code naming.
)

// Request metadata keys of Deliver.
const (
	MetadataFileName = "x-alarm-file-name"
	MetadataPriority = "x-alarm-priority"
	MetadataHostname = "x-alarm-hostname"
	MetadataUsername = "x-alarm-username"
)

// DeliveryServiceClient is the client API for DeliveryService.
type DeliveryServiceClient interface {
	// Deliver uploads one rendered alarm sound and returns the stored receipt.
	Deliver(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type deliveryServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewDeliveryServiceClient creates a client bound to cc.
func NewDeliveryServiceClient(cc grpc.ClientConnInterface) DeliveryServiceClient { //nolint:ireturn // Generated-code shape.
	return &deliveryServiceClient{cc}
}

func (c *deliveryServiceClient) Deliver(
	ctx context.Context,
	in *wrapperspb.BytesValue,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	out := new(structpb.Struct)

	if err := c.cc.Invoke(ctx, DeliveryService_Deliver_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// DeliveryServiceServer is the server API for DeliveryService.
// All implementations must embed UnimplementedDeliveryServiceServer
// for forward compatibility.
type DeliveryServiceServer interface {
	// Deliver stores one rendered alarm sound.
	Deliver(ctx context.Context, in *wrapperspb.BytesValue) (*structpb.Struct, error)
	mustEmbedUnimplementedDeliveryServiceServer()
}

// UnimplementedDeliveryServiceServer must be embedded to have forward compatible implementations.
type UnimplementedDeliveryServiceServer struct{}

// Deliver returns codes.Unimplemented.
func (UnimplementedDeliveryServiceServer) Deliver(context.Context, *wrapperspb.BytesValue) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Deliver not implemented")
}

func (UnimplementedDeliveryServiceServer) mustEmbedUnimplementedDeliveryServiceServer() {}

// RegisterDeliveryServiceServer registers srv on s.
func RegisterDeliveryServiceServer(s grpc.ServiceRegistrar, srv DeliveryServiceServer) {
	s.RegisterService(&DeliveryService_ServiceDesc, srv)
}

func _DeliveryService_Deliver_Handler( //nolint:revive // Generated-code naming.
	srv any,
	ctx context.Context, //nolint:revive // Signature fixed by grpc.MethodHandler.
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(DeliveryServiceServer).Deliver(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: DeliveryService_Deliver_FullMethodName,
	}

	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DeliveryServiceServer).Deliver(ctx, req.(*wrapperspb.BytesValue))
	}

	return interceptor(ctx, in, info, handler)
}

// DeliveryService_ServiceDesc is the grpc.ServiceDesc for DeliveryService.
//
//nolint:gochecknoglobals,revive,stylecheck // Registered by value like generated descriptors.
var DeliveryService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: DeliveryService_ServiceName,
	HandlerType: (*DeliveryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Deliver",
			Handler:    _DeliveryService_Deliver_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "alarmtone/v1/delivery.proto",
}
