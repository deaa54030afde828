package backend

import (
	"context"
	"net/rpc"

	"github.com/hashicorp/go-plugin"
)

// Quantizer is implemented by external backends.
type Quantizer interface {
	// Generate returns up to req.MaxColors colours for req.ImagePath.
	Generate(ctx context.Context, req Request) ([]RGB, error)

	// Info describes the backend.
	Info() Info
}

// QuantizerRPC is the go-plugin Plugin for Quantizer.
type QuantizerRPC struct {
	plugin.NetRPCUnsupportedPlugin
	Impl Quantizer
}

// Server returns the RPC server wrapping Impl.
func (p *QuantizerRPC) Server(*plugin.MuxBroker) (any, error) {
	return &RPCServer{Impl: p.Impl}, nil
}

// Client returns an RPC client.
func (p *QuantizerRPC) Client(_ *plugin.MuxBroker, c *rpc.Client) (any, error) {
	return &RPCClient{client: c}, nil
}

// RPCServer exposes a Quantizer over net/rpc.
type RPCServer struct {
	Impl Quantizer
}

// Generate is the RPC method behind RPCClient.Generate.
func (s *RPCServer) Generate(req Request, resp *[]RGB) error {
	colors, err := s.Impl.Generate(context.Background(), req)
	if err != nil {
		return err
	}
	*resp = colors
	return nil
}

// Info is the RPC method behind RPCClient.Info.
func (s *RPCServer) Info(_ any, resp *Info) error {
	*resp = s.Impl.Info()
	return nil
}

// RPCClient calls a Quantizer served in another process.
type RPCClient struct {
	client *rpc.Client
}

// NewRPCClient wraps an existing net/rpc client.
func NewRPCClient(c *rpc.Client) *RPCClient {
	return &RPCClient{client: c}
}

// Generate calls the remote Generate. The call is abandoned when ctx is done.
func (c *RPCClient) Generate(ctx context.Context, req Request) ([]RGB, error) {
	var resp []RGB
	call := c.client.Go("Plugin.Generate", req, &resp, make(chan *rpc.Call, 1))

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case done := <-call.Done:
		if done.Error != nil {
			return nil, done.Error
		}
		return resp, nil
	}
}

// Info calls the remote Info.
func (c *RPCClient) Info() (Info, error) {
	var info Info
	err := c.client.Call("Plugin.Info", new(any), &info)
	return info, err
}
