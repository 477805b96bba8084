package computev1_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"

	computev1 "github.com/joseph-ayodele/remote-compute/gen/proto/compute/v1"
)

func TestDescriptorIsRegistered(t *testing.T) {
	d, err := protoregistry.GlobalFiles.FindDescriptorByName(computev1.ServiceName)
	if err != nil {
		t.Fatalf("FindDescriptorByName: %v", err)
	}
	svc, ok := d.(protoreflect.ServiceDescriptor)
	if !ok {
		t.Fatalf("got %T, want ServiceDescriptor", d)
	}
	m := svc.Methods().ByName("ExecuteCode")
	if m == nil || !m.IsStreamingServer() || m.IsStreamingClient() {
		t.Fatalf("ExecuteCode must be server-streaming only: %v", m)
	}
	if m.Input().FullName() != "compute.ComputeRequest" || m.Output().FullName() != "compute.ComputeResponse" {
		t.Errorf("method types = %s -> %s", m.Input().FullName(), m.Output().FullName())
	}
}

func TestComputeRequest_WireFormat(t *testing.T) {
	in := &computev1.ComputeRequest{
		SourceCode:    "__global__ void k(){}",
		FileName:      "k.cu",
		CompilerFlags: []string{"-arch=sm_80", "-O3"},
	}
	b, err := proto.MarshalOptions{Deterministic: true}.Marshal(in.ToProto())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	// hand-encoded bytes must match what protoc-generated peers send
	var want []byte
	want = protowire.AppendTag(want, 1, protowire.BytesType)
	want = protowire.AppendString(want, in.SourceCode)
	want = protowire.AppendTag(want, 2, protowire.BytesType)
	want = protowire.AppendString(want, in.FileName)
	for _, f := range in.CompilerFlags {
		want = protowire.AppendTag(want, 3, protowire.BytesType)
		want = protowire.AppendString(want, f)
	}
	if diff := cmp.Diff(want, b); diff != "" {
		t.Errorf("wire bytes (-want +got):\n%s", diff)
	}

	m := computev1.NewComputeRequestMessage()
	if err := proto.Unmarshal(b, m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if diff := cmp.Diff(in, computev1.ComputeRequestFromProto(m)); diff != "" {
		t.Errorf("decoded (-want +got):\n%s", diff)
	}
}

func TestComputeResponse_ZeroValuesOmitted(t *testing.T) {
	b, err := proto.Marshal((&computev1.ComputeResponse{}).ToProto())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if len(b) != 0 {
		t.Errorf("empty response encoded to %d bytes", len(b))
	}

	b, err = proto.Marshal((&computev1.ComputeResponse{Output: "boom", IsError: true}).ToProto())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	m := computev1.NewComputeResponseMessage()
	if err := proto.Unmarshal(b, m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	got := computev1.ComputeResponseFromProto(m)
	if got.GetOutput() != "boom" || !got.GetIsError() {
		t.Errorf("decoded = %+v", got)
	}
}

func TestGetters_NilSafe(t *testing.T) {
	var req *computev1.ComputeRequest
	if req.GetSourceCode() != "" || req.GetFileName() != "" || req.GetCompilerFlags() != nil {
		t.Error("nil request getters must return zero values")
	}
	var resp *computev1.ComputeResponse
	if resp.GetOutput() != "" || resp.GetIsError() {
		t.Error("nil response getters must return zero values")
	}
}
