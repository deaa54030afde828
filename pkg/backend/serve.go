package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-plugin"
)

// Serve runs impl as a go-plugin backend. It answers InfoFlag first and
// otherwise blocks serving RPC until cwal disconnects.
func Serve(impl Quantizer) {
	if HandleInfoFlag(os.Args[1:], os.Stdout, withProtocol(impl.Info(), ProtocolGoPlugin)) {
		return
	}

	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: Handshake,
		Plugins: map[string]plugin.Plugin{
			PluginName: &QuantizerRPC{Impl: impl},
		},
	})
}

// ServeJSON runs impl as a json-stdio backend on the process's stdio and exits
// with status 1 on failure.
func ServeJSON(impl Quantizer) {
	if HandleInfoFlag(os.Args[1:], os.Stdout, withProtocol(impl.Info(), ProtocolJSON)) {
		return
	}

	if err := ServeJSONStream(context.Background(), impl, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// ServeJSONStream decodes one Request from r and writes the colours to w.
func ServeJSONStream(ctx context.Context, impl Quantizer, r io.Reader, w io.Writer) error {
	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return fmt.Errorf("failed to decode request: %w", err)
	}
	if req.MaxColors <= 0 {
		req.MaxColors = 8
	}

	colors, err := impl.Generate(ctx, req)
	if err != nil {
		return err
	}
	if len(colors) > req.MaxColors {
		colors = colors[:req.MaxColors]
	}

	return json.NewEncoder(w).Encode(colors)
}

// HandleInfoFlag writes info as JSON when args contain InfoFlag and reports
// whether it did.
func HandleInfoFlag(args []string, w io.Writer, info Info) bool {
	for _, arg := range args {
		if arg == InfoFlag {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			_ = enc.Encode(info)
			return true
		}
	}
	return false
}

func withProtocol(info Info, p Protocol) Info {
	info.BackendProtocol = p
	if info.ProtocolVersion == "" {
		info.ProtocolVersion = ProtocolVersion
	}
	return info
}
