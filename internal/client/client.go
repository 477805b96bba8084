package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	computev1 "github.com/joseph-ayodele/remote-compute/gen/proto/compute/v1"
)

// DefaultServer is where the host listens unless told otherwise.
const DefaultServer = "http://[::1]:50051"

// Target turns a user supplied address into a gRPC dial target. A leading
// http:// or https:// is accepted for convenience and dropped.
func Target(server string) string {
	s := strings.TrimSpace(server)
	for _, p := range []string{"http://", "https://"} {
		s = strings.TrimPrefix(s, p)
	}
	return strings.TrimSuffix(s, "/")
}

// Printer writes chunks the way a terminal user expects: normal output on
// Stdout, diagnostics in red on Stderr.
type Printer struct {
	Stdout io.Writer
	Stderr io.Writer

	bold *color.Color
	info *color.Color
	emph *color.Color
	okay *color.Color
	errc *color.Color
}

func NewPrinter(stdout, stderr io.Writer) *Printer {
	return &Printer{
		Stdout: stdout,
		Stderr: stderr,
		bold:   color.New(color.Bold),
		info:   color.New(color.FgCyan),
		emph:   color.New(color.FgYellow),
		okay:   color.New(color.FgGreen, color.Bold),
		errc:   color.New(color.FgRed),
	}
}

func (p *Printer) Connecting(server string) {
	fmt.Fprintf(p.Stdout, "%s Connecting to host at %s...\n", p.bold.Sprint("🚀"), p.info.Sprint(server))
}

func (p *Printer) Sending(fileName string) {
	fmt.Fprintf(p.Stdout, "%s Sending %s to remote GPU...\n", p.bold.Sprint("📤"), p.emph.Sprint(fileName))
}

func (p *Printer) Chunk(resp *computev1.ComputeResponse) {
	if resp.GetIsError() {
		fmt.Fprintln(p.Stderr, p.errc.Sprint(resp.GetOutput()))
		return
	}
	fmt.Fprintln(p.Stdout, resp.GetOutput())
}

func (p *Printer) Finished() {
	fmt.Fprintf(p.Stdout, "\n%s Execution finished.\n", p.okay.Sprint("✅"))
}

// ReadSource loads the file to submit. Only its base name travels to the host.
func ReadSource(path string, flags []string) (*computev1.ComputeRequest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read file %s: %w", path, err)
	}
	return &computev1.ComputeRequest{
		SourceCode:    string(b),
		FileName:      filepath.Base(path),
		CompilerFlags: flags,
	}, nil
}

// Execute submits req and prints every chunk until the host closes the stream.
func Execute(ctx context.Context, c computev1.CudaExecutorClient, req *computev1.ComputeRequest, p *Printer) error {
	p.Sending(req.GetFileName())
	stream, err := c.ExecuteCode(ctx, req)
	if err != nil {
		return fmt.Errorf("execute: %w", err)
	}
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("receive: %w", err)
		}
		p.Chunk(resp)
	}
	p.Finished()
	return nil
}
