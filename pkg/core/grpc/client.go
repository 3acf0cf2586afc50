package grpc

import (
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"

	mdwerror "github.com/msto63/formplan/foundation/core/error"
	mdwlog "github.com/msto63/formplan/foundation/core/log"
)

// ClientConfig holds the settings of a connection to a formplan server
type ClientConfig struct {
	Target            string
	MaxMsgSize        int // applies to both directions
	KeepaliveInterval time.Duration
	KeepaliveTimeout  time.Duration
	Logger            *mdwlog.Logger
}

// DefaultClientConfig mirrors the server defaults for target
func DefaultClientConfig(target string) ClientConfig {
	server := DefaultServerConfig()
	return ClientConfig{
		Target:            target,
		MaxMsgSize:        server.MaxRecvMsgSize,
		KeepaliveInterval: server.KeepaliveInterval,
		KeepaliveTimeout:  server.KeepaliveTimeout,
	}
}

// Dial creates a plaintext client connection. The connection is
// established lazily on the first call; opts are appended last.
func Dial(cfg ClientConfig, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = mdwlog.Discard()
	}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(cfg.MaxMsgSize),
			grpc.MaxCallSendMsgSize(cfg.MaxMsgSize),
		),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                cfg.KeepaliveInterval,
			Timeout:             cfg.KeepaliveTimeout,
			PermitWithoutStream: true,
		}),
		grpc.WithUnaryInterceptor(ClientInterceptor(logger.WithName("grpc-client"))),
	}, opts...)

	conn, err := grpc.NewClient(cfg.Target, dialOpts...)
	if err != nil {
		return nil, mdwerror.Wrap(err, "dial formplan server").
			WithCode(mdwerror.CodeServiceError).
			WithOperation("grpc.Dial").
			WithDetail("target", cfg.Target)
	}
	return conn, nil
}
