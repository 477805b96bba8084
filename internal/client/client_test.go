package client_test

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	computev1 "github.com/joseph-ayodele/remote-compute/gen/proto/compute/v1"
	"github.com/joseph-ayodele/remote-compute/internal/client"
)

func init() { color.NoColor = true }

// fakeExecutor implements computev1.CudaExecutorServer.
type fakeExecutor struct {
	computev1.UnimplementedCudaExecutorServer
	executeFn func(*computev1.ComputeRequest, computev1.CudaExecutor_ExecuteCodeServer) error
}

var _ computev1.CudaExecutorServer = (*fakeExecutor)(nil)

func (f *fakeExecutor) ExecuteCode(req *computev1.ComputeRequest, stream computev1.CudaExecutor_ExecuteCodeServer) error {
	if f.executeFn != nil {
		return f.executeFn(req, stream)
	}
	return nil
}

func dial(t *testing.T, srv computev1.CudaExecutorServer) computev1.CudaExecutorClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer()
	computev1.RegisterCudaExecutorServer(gs, srv)
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return computev1.NewCudaExecutorClient(conn)
}

func TestTarget(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{client.DefaultServer, "[::1]:50051"},
		{"http://192.168.1.50:50051", "192.168.1.50:50051"},
		{"https://gpu.local:443/", "gpu.local:443"},
		{"localhost:50051", "localhost:50051"},
		{"  dns:///gpu:50051 ", "dns:///gpu:50051"},
	}
	for _, tt := range tests {
		if got := client.Target(tt.in); got != tt.want {
			t.Errorf("Target(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReadSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vector_add.cu")
	if err := os.WriteFile(path, []byte("__global__ void add(){}"), 0o644); err != nil {
		t.Fatal(err)
	}
	req, err := client.ReadSource(path, []string{"-arch=sm_80"})
	if err != nil {
		t.Fatalf("ReadSource: %v", err)
	}
	want := &computev1.ComputeRequest{
		SourceCode:    "__global__ void add(){}",
		FileName:      "vector_add.cu",
		CompilerFlags: []string{"-arch=sm_80"},
	}
	if diff := cmp.Diff(want, req); diff != "" {
		t.Errorf("request (-want +got):\n%s", diff)
	}

	if _, err := client.ReadSource(filepath.Join(t.TempDir(), "missing.cu"), nil); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestExecute_PrintsChunksByStream(t *testing.T) {
	var got *computev1.ComputeRequest
	c := dial(t, &fakeExecutor{executeFn: func(req *computev1.ComputeRequest, stream computev1.CudaExecutor_ExecuteCodeServer) error {
		got = req
		for _, r := range []*computev1.ComputeResponse{
			{Output: "✅ Compilation successful. Running..."},
			{Output: "hello"},
			{Output: "warning", IsError: true},
		} {
			if err := stream.Send(r); err != nil {
				return err
			}
		}
		return nil
	}})

	var stdout, stderr bytes.Buffer
	req := &computev1.ComputeRequest{SourceCode: "src", FileName: "hello.cu", CompilerFlags: []string{"-O3"}}
	if err := client.Execute(context.Background(), c, req, client.NewPrinter(&stdout, &stderr)); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if diff := cmp.Diff(req, got); diff != "" {
		t.Errorf("server saw (-want +got):\n%s", diff)
	}
	wantOut := "📤 Sending hello.cu to remote GPU...\n" +
		"✅ Compilation successful. Running...\n" +
		"hello\n" +
		"\n✅ Execution finished.\n"
	if stdout.String() != wantOut {
		t.Errorf("stdout = %q, want %q", stdout.String(), wantOut)
	}
	if stderr.String() != "warning\n" {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestExecute_ReturnsStatusError(t *testing.T) {
	c := dial(t, &fakeExecutor{executeFn: func(*computev1.ComputeRequest, computev1.CudaExecutor_ExecuteCodeServer) error {
		return status.Error(codes.InvalidArgument, "file_name must be a plain file name")
	}})

	var stdout bytes.Buffer
	err := client.Execute(context.Background(), c, &computev1.ComputeRequest{SourceCode: "x", FileName: "a.cu"}, client.NewPrinter(&stdout, &stdout))
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("err = %v, want InvalidArgument", err)
	}
	if strings.Contains(stdout.String(), "Execution finished") {
		t.Error("finished banner printed for a failed call")
	}
}
