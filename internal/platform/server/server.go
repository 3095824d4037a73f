package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/ogurasousui/talent-guard/internal/platform/config"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const defaultHealthInterval = 15 * time.Second

// Registrar は gRPC サービスをサーバーへ登録します。
type Registrar func(grpc.ServiceRegistrar)

// HealthCheck は依存先の疎通確認です。
type HealthCheck func(context.Context) error

// Server は gRPC サーバーのライフサイクルを管理します。
type Server struct {
	listenAddr      string
	shutdownTimeout time.Duration
	grpcServer      *grpc.Server
	health          *health.Server
	check           HealthCheck
	healthInterval  time.Duration
	logger          *zap.Logger
}

// Option は Server の任意設定です。
type Option func(*options)

type options struct {
	logger         *zap.Logger
	observer       RPCObserver
	check          HealthCheck
	healthInterval time.Duration
	serverOptions  []grpc.ServerOption
}

// WithLogger はアクセスログの出力先を設定します。
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver は RPC メトリクスの記録先を設定します。
func WithObserver(obs RPCObserver) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// WithHealthCheck は定期的に実行するヘルスチェックを設定します。
func WithHealthCheck(check HealthCheck, interval time.Duration) Option {
	return func(o *options) {
		o.check = check
		if interval > 0 {
			o.healthInterval = interval
		}
	}
}

// WithServerOptions は追加の grpc.ServerOption を設定します。
func WithServerOptions(opts ...grpc.ServerOption) Option {
	return func(o *options) {
		o.serverOptions = append(o.serverOptions, opts...)
	}
}

// New は指定された設定で待ち受ける gRPC サーバーを構築します。
func New(cfg config.ServerConfig, registrars []Registrar, opts ...Option) *Server {
	o := options{logger: zap.NewNop(), healthInterval: defaultHealthInterval}
	for _, opt := range opts {
		opt(&o)
	}

	interceptors := []grpc.UnaryServerInterceptor{
		RecoveryInterceptor(o.logger),
		RequestIDInterceptor(),
		LoggingInterceptor(o.logger),
	}
	if o.observer != nil {
		interceptors = append(interceptors, MetricsInterceptor(o.observer))
	}

	serverOpts := append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(interceptors...)}, o.serverOptions...)
	srv := grpc.NewServer(serverOpts...)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	for _, register := range registrars {
		register(srv)
	}

	return &Server{
		listenAddr:      cfg.ListenAddr,
		shutdownTimeout: cfg.ShutdownTimeout,
		grpcServer:      srv,
		health:          hs,
		check:           o.check,
		healthInterval:  o.healthInterval,
		logger:          o.logger,
	}
}

// Run はサーバーを起動し、コンテキストがキャンセルされると GracefulStop します。
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.listenAddr, err)
	}
	return s.Serve(ctx, lis)
}

// Serve は lis で待ち受けます。ctx の終了で停止します。
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	go s.watchHealth(watchCtx)

	go func() {
		<-ctx.Done()
		s.shutdown()
	}()

	s.logger.Info("gRPC server listening", zap.String("addr", lis.Addr().String()))
	if err := s.grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	return nil
}

// GracefulStop はサーバーを安全に停止します。
func (s *Server) GracefulStop() {
	s.shutdown()
}

func (s *Server) shutdown() {
	s.health.Shutdown()

	if s.shutdownTimeout <= 0 {
		s.grpcServer.GracefulStop()
		return
	}

	done := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(s.shutdownTimeout):
		s.logger.Warn("graceful stop timed out, forcing stop", zap.Duration("timeout", s.shutdownTimeout))
		s.grpcServer.Stop()
	}
}

func (s *Server) watchHealth(ctx context.Context) {
	s.checkHealth(ctx)
	if s.check == nil {
		return
	}

	ticker := time.NewTicker(s.healthInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkHealth(ctx)
		}
	}
}

// checkHealth はヘルスチェックを 1 回実行し、結果をヘルスサービスへ反映します。
func (s *Server) checkHealth(ctx context.Context) {
	servingStatus := healthpb.HealthCheckResponse_SERVING
	if s.check != nil {
		if err := s.check(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Warn("health check failed", zap.Error(err))
			servingStatus = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus("", servingStatus)
}
