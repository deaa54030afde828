// Package external runs executable backends from the custom backends
// directory over json-stdio or hashicorp/go-plugin.
package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	"github.com/jmylchreest/cwal/internal/backend"
	"github.com/jmylchreest/cwal/internal/colour"
	sdk "github.com/jmylchreest/cwal/pkg/backend"
)

// DetectTimeout bounds the --backend-info query.
const DetectTimeout = 5 * time.Second

// Backend is an executable backend. Its protocol is detected on Init.
type Backend struct {
	name   string
	path   string
	runner ProcessRunner
	logger hclog.Logger

	info   *sdk.Info
	client *plugin.Client
	rpc    *sdk.RPCClient
}

// Option configures a Backend.
type Option func(*Backend)

// WithRunner overrides the process runner used for json-stdio.
func WithRunner(r ProcessRunner) Option {
	return func(b *Backend) { b.runner = r }
}

// WithLogger sets the logger handed to go-plugin.
func WithLogger(l hclog.Logger) Option {
	return func(b *Backend) { b.logger = l }
}

// New creates a backend for the executable at path, named after the file.
func New(path string, opts ...Option) *Backend {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	b := &Backend{
		name:   name,
		path:   path,
		runner: NewRealProcessRunner(),
		logger: hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name implements backend.Backend.
func (b *Backend) Name() string { return b.name }

// Path returns the executable path.
func (b *Backend) Path() string { return b.path }

// Description implements backend.Describer. Before Init it names the path.
func (b *Backend) Description() string {
	if b.info == nil {
		return "external executable (" + b.path + ")"
	}
	return b.info.Description
}

// Detect queries path for its Info.
func Detect(ctx context.Context, runner ProcessRunner, path string) (*sdk.Info, error) {
	ctx, cancel := context.WithTimeout(ctx, DetectTimeout)
	defer cancel()

	stdout, stderr, err := runner.Run(ctx, path, []string{sdk.InfoFlag}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query backend: %w%s", err, stderrSuffix(stderr))
	}

	var info sdk.Info
	if err := json.Unmarshal(stdout, &info); err != nil {
		return nil, fmt.Errorf("failed to parse backend info: %w", err)
	}

	switch info.BackendProtocol {
	case sdk.ProtocolGoPlugin:
	case sdk.ProtocolJSON, "":
		info.BackendProtocol = sdk.ProtocolJSON
	default:
		return nil, fmt.Errorf("unknown backend_protocol: %s", info.BackendProtocol)
	}

	if info.ProtocolVersion != "" {
		if err := sdk.CheckCompatible(info.ProtocolVersion); err != nil {
			return nil, err
		}
	}

	return &info, nil
}

// Init detects the protocol and, for go-plugin backends, starts the process.
func (b *Backend) Init(ctx context.Context) error {
	if b.info == nil {
		info, err := Detect(ctx, b.runner, b.path)
		if err != nil {
			return err
		}
		b.info = info
	}

	if b.info.BackendProtocol != sdk.ProtocolGoPlugin || b.rpc != nil {
		return nil
	}

	b.client = plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig: sdk.Handshake,
		Plugins: map[string]plugin.Plugin{
			sdk.PluginName: &sdk.QuantizerRPC{},
		},
		Cmd:              exec.Command(b.path),
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolNetRPC},
		Logger:           b.logger.Named(b.name),
	})

	rpcClient, err := b.client.Client()
	if err != nil {
		b.client.Kill()
		b.client = nil
		return fmt.Errorf("failed to get RPC client: %w", err)
	}

	raw, err := rpcClient.Dispense(sdk.PluginName)
	if err != nil {
		b.client.Kill()
		b.client = nil
		return fmt.Errorf("failed to dispense backend: %w", err)
	}

	client, ok := raw.(*sdk.RPCClient)
	if !ok {
		b.client.Kill()
		b.client = nil
		return fmt.Errorf("unexpected backend client type %T", raw)
	}
	b.rpc = client

	return nil
}

// Terminate stops a running go-plugin process.
func (b *Backend) Terminate() error {
	if b.client != nil {
		b.client.Kill()
		b.client = nil
		b.rpc = nil
	}
	return nil
}

// Generate implements backend.Backend.
func (b *Backend) Generate(ctx context.Context, src backend.Source) ([]colour.Color, error) {
	if b.info == nil {
		return nil, fmt.Errorf("backend %s not initialised", b.name)
	}
	if src.Path == "" {
		return nil, fmt.Errorf("external backends need an image path")
	}

	req := sdk.Request{ImagePath: src.Path, MaxColors: backend.MaxColors}

	var (
		rgb []sdk.RGB
		err error
	)
	switch b.info.BackendProtocol {
	case sdk.ProtocolGoPlugin:
		if b.rpc == nil {
			return nil, fmt.Errorf("backend %s not connected", b.name)
		}
		rgb, err = b.rpc.Generate(ctx, req)
	default:
		rgb, err = b.generateJSON(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	colors := make([]colour.Color, len(rgb))
	for i, c := range rgb {
		colors[i] = colour.Color{R: c.R, G: c.G, B: c.B}
	}
	return colors, nil
}

func (b *Backend) generateJSON(ctx context.Context, req sdk.Request) ([]sdk.RGB, error) {
	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	stdout, stderr, err := b.runner.Run(ctx, b.path, nil, bytes.NewReader(reqJSON))
	if err != nil {
		return nil, fmt.Errorf("backend execution failed: %w%s", err, stderrSuffix(stderr))
	}

	var colors []sdk.RGB
	if err := json.Unmarshal(stdout, &colors); err != nil {
		return nil, fmt.Errorf("failed to parse backend output: %w\nOutput: %s", err, stdout)
	}
	return colors, nil
}

func stderrSuffix(stderr []byte) string {
	s := strings.TrimSpace(string(stderr))
	if s == "" {
		return ""
	}
	return "\nStderr: " + s
}
