// Package computev1 carries the compute.proto wire schema. The file
// descriptor is assembled at init and registered globally so server
// reflection can serve it; keep it in sync with proto/compute/v1/compute.proto.
package computev1

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

const (
	ProtoFile   = "compute.proto"
	ProtoPkg    = "compute"
	ServiceName = ProtoPkg + ".CudaExecutor"

	CudaExecutor_ExecuteCode_FullMethodName = "/" + ServiceName + "/ExecuteCode"
)

// Field numbers.
const (
	ComputeRequest_SourceCode    protoreflect.FieldNumber = 1
	ComputeRequest_FileName      protoreflect.FieldNumber = 2
	ComputeRequest_CompilerFlags protoreflect.FieldNumber = 3

	ComputeResponse_Output  protoreflect.FieldNumber = 1
	ComputeResponse_IsError protoreflect.FieldNumber = 2
)

var (
	File_compute_proto protoreflect.FileDescriptor

	computeRequestDesc  protoreflect.MessageDescriptor
	computeResponseDesc protoreflect.MessageDescriptor
)

func init() {
	fd, err := protodesc.NewFile(fileDescriptorProto(), nil)
	if err != nil {
		panic(fmt.Sprintf("compute.proto: %v", err))
	}
	if err := protoregistry.GlobalFiles.RegisterFile(fd); err != nil {
		panic(fmt.Sprintf("compute.proto: %v", err))
	}
	File_compute_proto = fd
	computeRequestDesc = fd.Messages().ByName("ComputeRequest")
	computeResponseDesc = fd.Messages().ByName("ComputeResponse")
	for _, md := range []protoreflect.MessageDescriptor{computeRequestDesc, computeResponseDesc} {
		if err := protoregistry.GlobalTypes.RegisterMessage(dynamicpb.NewMessageType(md)); err != nil {
			panic(fmt.Sprintf("compute.proto: %v", err))
		}
	}
}

func fileDescriptorProto() *descriptorpb.FileDescriptorProto {
	str := descriptorpb.FieldDescriptorProto_TYPE_STRING.Enum
	optional := descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum
	field := func(name, jsonName string, num protoreflect.FieldNumber, typ *descriptorpb.FieldDescriptorProto_Type, label *descriptorpb.FieldDescriptorProto_Label) *descriptorpb.FieldDescriptorProto {
		return &descriptorpb.FieldDescriptorProto{
			Name:     proto.String(name),
			JsonName: proto.String(jsonName),
			Number:   proto.Int32(int32(num)),
			Type:     typ,
			Label:    label,
		}
	}

	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String(ProtoFile),
		Package: proto.String(ProtoPkg),
		Syntax:  proto.String("proto3"),
		Options: &descriptorpb.FileOptions{
			GoPackage: proto.String("github.com/joseph-ayodele/remote-compute/gen/proto/compute/v1;computev1"),
		},
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String("ComputeRequest"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("source_code", "sourceCode", ComputeRequest_SourceCode, str(), optional()),
					field("file_name", "fileName", ComputeRequest_FileName, str(), optional()),
					field("compiler_flags", "compilerFlags", ComputeRequest_CompilerFlags, str(), descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()),
				},
			},
			{
				Name: proto.String("ComputeResponse"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("output", "output", ComputeResponse_Output, str(), optional()),
					field("is_error", "isError", ComputeResponse_IsError, descriptorpb.FieldDescriptorProto_TYPE_BOOL.Enum(), optional()),
				},
			},
		},
		Service: []*descriptorpb.ServiceDescriptorProto{
			{
				Name: proto.String("CudaExecutor"),
				Method: []*descriptorpb.MethodDescriptorProto{
					{
						Name:            proto.String("ExecuteCode"),
						InputType:       proto.String("." + ProtoPkg + ".ComputeRequest"),
						OutputType:      proto.String("." + ProtoPkg + ".ComputeResponse"),
						ServerStreaming: proto.Bool(true),
					},
				},
			},
		},
	}
}

// ComputeRequest is one submission.
type ComputeRequest struct {
	SourceCode    string
	FileName      string
	CompilerFlags []string
}

func (x *ComputeRequest) GetSourceCode() string {
	if x != nil {
		return x.SourceCode
	}
	return ""
}

func (x *ComputeRequest) GetFileName() string {
	if x != nil {
		return x.FileName
	}
	return ""
}

func (x *ComputeRequest) GetCompilerFlags() []string {
	if x != nil {
		return x.CompilerFlags
	}
	return nil
}

// ToProto returns the wire form of x.
func (x *ComputeRequest) ToProto() *dynamicpb.Message {
	m := dynamicpb.NewMessage(computeRequestDesc)
	fields := computeRequestDesc.Fields()
	setString(m, fields.ByNumber(ComputeRequest_SourceCode), x.GetSourceCode())
	setString(m, fields.ByNumber(ComputeRequest_FileName), x.GetFileName())
	if flags := x.GetCompilerFlags(); len(flags) > 0 {
		list := m.Mutable(fields.ByNumber(ComputeRequest_CompilerFlags)).List()
		for _, f := range flags {
			list.Append(protoreflect.ValueOfString(f))
		}
	}
	return m
}

// NewComputeRequestMessage returns an empty wire message to decode into.
func NewComputeRequestMessage() *dynamicpb.Message { return dynamicpb.NewMessage(computeRequestDesc) }

// ComputeRequestFromProto decodes the wire form.
func ComputeRequestFromProto(m protoreflect.ProtoMessage) *ComputeRequest {
	r := m.ProtoReflect()
	fields := computeRequestDesc.Fields()
	out := &ComputeRequest{
		SourceCode: r.Get(fields.ByNumber(ComputeRequest_SourceCode)).String(),
		FileName:   r.Get(fields.ByNumber(ComputeRequest_FileName)).String(),
	}
	list := r.Get(fields.ByNumber(ComputeRequest_CompilerFlags)).List()
	for i := 0; i < list.Len(); i++ {
		out.CompilerFlags = append(out.CompilerFlags, list.Get(i).String())
	}
	return out
}

// ComputeResponse is one chunk of program or compiler output.
type ComputeResponse struct {
	Output  string
	IsError bool
}

func (x *ComputeResponse) GetOutput() string {
	if x != nil {
		return x.Output
	}
	return ""
}

func (x *ComputeResponse) GetIsError() bool {
	if x != nil {
		return x.IsError
	}
	return false
}

// ToProto returns the wire form of x.
func (x *ComputeResponse) ToProto() *dynamicpb.Message {
	m := dynamicpb.NewMessage(computeResponseDesc)
	fields := computeResponseDesc.Fields()
	setString(m, fields.ByNumber(ComputeResponse_Output), x.GetOutput())
	if x.GetIsError() {
		m.Set(fields.ByNumber(ComputeResponse_IsError), protoreflect.ValueOfBool(true))
	}
	return m
}

// NewComputeResponseMessage returns an empty wire message to decode into.
func NewComputeResponseMessage() *dynamicpb.Message { return dynamicpb.NewMessage(computeResponseDesc) }

// ComputeResponseFromProto decodes the wire form.
func ComputeResponseFromProto(m protoreflect.ProtoMessage) *ComputeResponse {
	r := m.ProtoReflect()
	fields := computeResponseDesc.Fields()
	return &ComputeResponse{
		Output:  r.Get(fields.ByNumber(ComputeResponse_Output)).String(),
		IsError: r.Get(fields.ByNumber(ComputeResponse_IsError)).Bool(),
	}
}

// proto3 scalars carry no presence; leave zero values unset.
func setString(m *dynamicpb.Message, fd protoreflect.FieldDescriptor, s string) {
	if s != "" {
		m.Set(fd, protoreflect.ValueOfString(s))
	}
}
