package grpc

import (
	"context"
	"runtime/debug"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	mdwerror "github.com/msto63/formplan/foundation/core/error"
	mdwlog "github.com/msto63/formplan/foundation/core/log"
)

// RequestIDHeader carries the request id in gRPC metadata
const RequestIDHeader = "x-request-id"

// RequestIDInterceptor stores the caller's request id, or a fresh one, in
// the context and echoes it in the response header. It runs first so the
// validation engine logs with the same id.
func RequestIDInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		id := incomingRequestID(ctx)
		if id == "" {
			id = uuid.NewString()
		}
		ctx = mdwlog.ContextWithRequestID(ctx, id)
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, id))
		return handler(ctx, req)
	}
}

// RecoveryInterceptor turns a handler panic into codes.Internal. The panic
// is logged as an INTERNAL error with its stack.
func RecoveryInterceptor(logger *mdwlog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			logger.WithRequestID(GetRequestID(ctx)).
				WithField("stack", string(debug.Stack())).
				LogError(mdwerror.Newf("handler panicked: %v", r).
					WithCode(mdwerror.CodeInternal).
					WithOperation(info.FullMethod))
			err = status.Error(codes.Internal, "internal server error")
		}()
		return handler(ctx, req)
	}
}

// LoggingInterceptor times every call. Client side failures are logged at
// info, everything else that failed at error.
func LoggingInterceptor(logger *mdwlog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		timer := logger.WithRequestID(GetRequestID(ctx)).
			StartTimer(info.FullMethod).
			WithLevel(mdwlog.LevelInfo)

		resp, err := handler(ctx, req)

		code := status.Code(err)
		switch code {
		case codes.OK, codes.InvalidArgument, codes.NotFound, codes.Canceled:
			timer.Stop(mdwlog.Fields{"status": code.String()})
		default:
			timer.StopWithError(err, mdwlog.Fields{"status": code.String()})
		}
		return resp, err
	}
}

// ClientInterceptor propagates the request id of ctx, or a fresh one, and
// logs each call at debug level
func ClientInterceptor(logger *mdwlog.Logger) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		id := GetRequestID(ctx)
		if id == "" {
			id = uuid.NewString()
		}
		ctx = metadata.AppendToOutgoingContext(ctx, RequestIDHeader, id)

		timer := logger.WithRequestID(id).StartTimer(method)
		err := invoker(ctx, method, req, reply, cc, opts...)
		timer.Stop(mdwlog.Fields{"status": status.Code(err).String()})
		return err
	}
}

// GetRequestID returns the request id stored in ctx, falling back to the
// incoming metadata
func GetRequestID(ctx context.Context) string {
	if id := mdwlog.RequestIDFromContext(ctx); id != "" {
		return id
	}
	return incomingRequestID(ctx)
}

func incomingRequestID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(RequestIDHeader); len(values) > 0 {
		return values[0]
	}
	return ""
}
