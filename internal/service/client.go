package service

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	mdwlog "github.com/msto63/formplan/foundation/core/log"
	coreGrpc "github.com/msto63/formplan/pkg/core/grpc"
)

// Client calls a remote formplan.v1.Validation service
type Client struct {
	conn  grpc.ClientConnInterface
	close func() error
}

// NewClient wraps an existing connection. Close leaves conn open.
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn, close: func() error { return nil }}
}

// Dial connects to target with the standard client interceptors
func Dial(target string, logger *mdwlog.Logger, opts ...grpc.DialOption) (*Client, error) {
	cfg := coreGrpc.DefaultClientConfig(target)
	cfg.Logger = logger

	conn, err := coreGrpc.Dial(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, close: conn.Close}, nil
}

// Validate sends req and decodes the response
func (c *Client) Validate(ctx context.Context, req Request) (*Response, error) {
	in, err := EncodeRequest(req)
	if err != nil {
		return nil, err
	}

	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, MethodValidate, in, out); err != nil {
		return nil, err
	}
	return DecodeResponse(out), nil
}

// ListForms returns the forms the server knows
func (c *Client) ListForms(ctx context.Context) ([]string, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, MethodListForms, &structpb.Struct{}, out); err != nil {
		return nil, err
	}

	var names []string
	for _, v := range out.GetFields()["forms"].GetListValue().GetValues() {
		names = append(names, v.GetStringValue())
	}
	return names, nil
}

// Close releases the connection when the client dialed it
func (c *Client) Close() error {
	return c.close()
}
