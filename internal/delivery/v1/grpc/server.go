package grpc

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/DRSN-tech/nudge-backend/internal/cfg"
	"github.com/DRSN-tech/nudge-backend/internal/usecase"
	"github.com/DRSN-tech/nudge-backend/pkg/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// maxMessageSize совпадает с лимитом тела explore в HTTP: скриншот приходит data URL.
const maxMessageSize = 25 << 20

type GRPCServer struct {
	server *grpc.Server
	cfg    *cfg.GRPCConfig
	logger logger.Logger
}

func NewGRPCServer(cfg *cfg.GRPCConfig, logger logger.Logger) *GRPCServer {
	return &GRPCServer{
		server: grpc.NewServer(
			grpc.MaxRecvMsgSize(maxMessageSize),
			grpc.MaxSendMsgSize(maxMessageSize),
			grpc.ChainUnaryInterceptor(recoveryInterceptor(logger), loggingInterceptor(logger)),
		),
		cfg:    cfg,
		logger: logger,
	}
}

func (s *GRPCServer) RegisterServices(exploreUC usecase.ExploreUC) {
	s.server.RegisterService(&ExploreServiceDesc, NewExploreService(exploreUC, s.logger))
}

func (s *GRPCServer) Start() error {
	addr := fmt.Sprintf(":%s", s.cfg.Port)
	lis, err := net.Listen(s.cfg.NetworkMode, addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.logger.Infof("gRPC server listening on %s", addr)
	return s.Serve(lis)
}

func (s *GRPCServer) Serve(lis net.Listener) error {
	return s.server.Serve(lis)
}

// Stop ждёт завершения активных вызовов до дедлайна ctx, затем рвёт соединения.
func (s *GRPCServer) Stop(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Infof("gRPC server stopped gracefully")
		return nil
	case <-ctx.Done():
		s.server.Stop()
		s.logger.Warnf("gRPC server forced to stop after timeout")
		return ctx.Err()
	}
}

func loggingInterceptor(log logger.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		if code == codes.Internal || code == codes.Unknown {
			log.Warnf("gRPC %s failed: code=%s duration=%s", info.FullMethod, code, time.Since(start))
		} else {
			log.Debugf("gRPC %s: code=%s duration=%s", info.FullMethod, code, time.Since(start))
		}

		return resp, err
	}
}

// recoveryInterceptor превращает панику обработчика в codes.Internal.
func recoveryInterceptor(log logger.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Errorf(fmt.Errorf("panic: %v", r), "gRPC %s panicked", info.FullMethod)
				err = status.Error(codes.Internal, "internal server error")
			}
		}()

		return handler(ctx, req)
	}
}
