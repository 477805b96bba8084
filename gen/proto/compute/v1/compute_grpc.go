package computev1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// CudaExecutorClient is the client API for the CudaExecutor service.
type CudaExecutorClient interface {
	ExecuteCode(ctx context.Context, in *ComputeRequest, opts ...grpc.CallOption) (CudaExecutor_ExecuteCodeClient, error)
}

type cudaExecutorClient struct {
	cc grpc.ClientConnInterface
}

func NewCudaExecutorClient(cc grpc.ClientConnInterface) CudaExecutorClient {
	return &cudaExecutorClient{cc}
}

func (c *cudaExecutorClient) ExecuteCode(ctx context.Context, in *ComputeRequest, opts ...grpc.CallOption) (CudaExecutor_ExecuteCodeClient, error) {
	stream, err := c.cc.NewStream(ctx, &CudaExecutor_ServiceDesc.Streams[0], CudaExecutor_ExecuteCode_FullMethodName, opts...)
	if err != nil {
		return nil, err
	}
	x := &cudaExecutorExecuteCodeClient{stream}
	if err := x.ClientStream.SendMsg(in.ToProto()); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

type CudaExecutor_ExecuteCodeClient interface {
	Recv() (*ComputeResponse, error)
	grpc.ClientStream
}

type cudaExecutorExecuteCodeClient struct {
	grpc.ClientStream
}

func (x *cudaExecutorExecuteCodeClient) Recv() (*ComputeResponse, error) {
	m := NewComputeResponseMessage()
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return ComputeResponseFromProto(m), nil
}

// CudaExecutorServer is the server API for the CudaExecutor service.
type CudaExecutorServer interface {
	ExecuteCode(*ComputeRequest, CudaExecutor_ExecuteCodeServer) error
}

// UnimplementedCudaExecutorServer can be embedded to have forward compatible implementations.
type UnimplementedCudaExecutorServer struct{}

func (UnimplementedCudaExecutorServer) ExecuteCode(*ComputeRequest, CudaExecutor_ExecuteCodeServer) error {
	return status.Errorf(codes.Unimplemented, "method ExecuteCode not implemented")
}

func RegisterCudaExecutorServer(s grpc.ServiceRegistrar, srv CudaExecutorServer) {
	s.RegisterService(&CudaExecutor_ServiceDesc, srv)
}

func _CudaExecutor_ExecuteCode_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := NewComputeRequestMessage()
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(CudaExecutorServer).ExecuteCode(ComputeRequestFromProto(m), &cudaExecutorExecuteCodeServer{stream})
}

type CudaExecutor_ExecuteCodeServer interface {
	Send(*ComputeResponse) error
	grpc.ServerStream
}

type cudaExecutorExecuteCodeServer struct {
	grpc.ServerStream
}

func (x *cudaExecutorExecuteCodeServer) Send(m *ComputeResponse) error {
	return x.ServerStream.SendMsg(m.ToProto())
}

// CudaExecutor_ServiceDesc is the grpc.ServiceDesc for the CudaExecutor service.
var CudaExecutor_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CudaExecutorServer)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "ExecuteCode",
			Handler:       _CudaExecutor_ExecuteCode_Handler,
			ServerStreams: true,
		},
	},
	Metadata: ProtoFile,
}
