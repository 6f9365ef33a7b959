// File: pkg/logger/grpc_logger.go
package logger

import (
	"context"
	"path"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// NewGrpcUnaryServerInterceptor builds a logging interceptor for unary gRPC methods.
func NewGrpcUnaryServerInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		startTime := time.Now()

		fullMethod := info.FullMethod
		service := path.Dir(fullMethod)[1:]
		method := path.Base(fullMethod)

		resp, err = handler(ctx, req)

		duration := time.Since(startTime)

		statusCode := codes.OK
		if err != nil {
			if st, ok := status.FromError(err); ok {
				statusCode = st.Code()
			} else {
				statusCode = codes.Unknown
			}
		}

		if statusCode == codes.OK {
			logger.Info("gRPC request completed",
				zap.String("grpc.service", service),
				zap.String("grpc.method", method),
				zap.String("grpc.code", statusCode.String()),
				zap.Duration("grpc.duration", duration),
			)
		} else if statusCode == codes.Canceled || statusCode == codes.DeadlineExceeded || statusCode == codes.ResourceExhausted ||
			statusCode == codes.Aborted || statusCode == codes.Unavailable || statusCode == codes.DataLoss {
			logger.Warn("gRPC request failed",
				zap.String("grpc.service", service),
				zap.String("grpc.method", method),
				zap.String("grpc.code", statusCode.String()),
				zap.Error(err),
				zap.Duration("grpc.duration", duration),
			)
		} else {
			logger.Error("gRPC request error",
				zap.String("grpc.service", service),
				zap.String("grpc.method", method),
				zap.String("grpc.code", statusCode.String()),
				zap.Error(err),
				zap.Duration("grpc.duration", duration),
			)
		}

		return resp, err
	}
}
