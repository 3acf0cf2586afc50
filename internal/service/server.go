package service

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	mdwerror "github.com/msto63/formplan/foundation/core/error"
	mdwlog "github.com/msto63/formplan/foundation/core/log"
	coreGrpc "github.com/msto63/formplan/pkg/core/grpc"
	"github.com/msto63/formplan/pkg/core/health"
)

// Server is the formplan gRPC server
type Server struct {
	service *Service
	grpc    *coreGrpc.Server
	health  *health.Registry
	logger  *mdwlog.Logger
}

// Ensure Server implements ValidationServer
var _ ValidationServer = (*Server)(nil)

// NewServer registers svc on a new gRPC server built from cfg. A nil
// health registry gets an empty one.
func NewServer(svc *Service, cfg coreGrpc.ServerConfig, healthRegistry *health.Registry) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = mdwlog.Discard()
	}
	if healthRegistry == nil {
		healthRegistry = health.NewRegistry(ServiceName, "")
	}

	grpcServer := coreGrpc.NewServer(cfg)
	server := &Server{
		service: svc,
		grpc:    grpcServer,
		health:  healthRegistry,
		logger:  logger.WithName("server"),
	}

	RegisterValidationServer(grpcServer.GRPCServer(), server)
	grpcServer.SetServingStatus(ServiceName, true)
	return server
}

// Validate implements ValidationServer.Validate
func (s *Server) Validate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := DecodeRequest(in)
	if err != nil {
		return nil, toStatus(err)
	}

	resp, err := s.service.Validate(ctx, req)
	if err != nil {
		return nil, toStatus(err)
	}

	out, err := EncodeResponse(resp)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// ListForms implements ValidationServer.ListForms
func (s *Server) ListForms(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	names := s.service.Forms()
	list := make([]any, len(names))
	for i, name := range names {
		list[i] = name
	}
	out, err := structpb.NewStruct(map[string]any{"forms": list})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// Start starts the server and blocks
func (s *Server) Start() error {
	s.logger.Info("starting validation server", mdwlog.Fields{"address": s.grpc.Address()})
	return s.grpc.Start()
}

// Serve serves on lis and blocks
func (s *Server) Serve(lis net.Listener) error {
	return s.grpc.Serve(lis)
}

// Stop stops the server, forcing it after ctx expires
func (s *Server) Stop(ctx context.Context) {
	s.logger.Info("stopping validation server")
	s.grpc.SetServingStatus("", false)
	s.grpc.SetServingStatus(ServiceName, false)
	s.grpc.StopWithTimeout(ctx)
}

// MonitorHealth runs the health checks every interval until ctx is done
// and mirrors the result into the grpc.health.v1 status
func (s *Server) MonitorHealth(ctx context.Context, interval time.Duration) {
	s.health.Monitor(ctx, interval, func(report *health.Report) {
		serving := report.Status.Serving()
		s.grpc.SetServingStatus("", serving)
		s.grpc.SetServingStatus(ServiceName, serving)
		if !serving {
			s.logger.Warn("health check failed", mdwlog.Fields{"report": report.String()})
		}
	})
}

// toStatus maps engine errors to gRPC status codes. Programmer errors never
// turn into field errors.
func toStatus(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}

	code := codes.Internal
	switch c := mdwerror.GetCode(err); {
	case c == mdwerror.CodeNotFound:
		code = codes.NotFound
	case c.IsUserError():
		code = codes.InvalidArgument
	case c.IsProgrammerError():
		code = codes.FailedPrecondition
	case c == mdwerror.CodeCanceled:
		code = codes.Canceled
	case c == mdwerror.CodeTimeout:
		code = codes.DeadlineExceeded
	}
	return status.Error(code, err.Error())
}
