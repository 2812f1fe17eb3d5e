package server

import (
	"context"
	"errors"
	"fmt"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// GRPCService serves a grpc.Server on a listener bound at construction time.
type GRPCService struct {
	srv    *grpc.Server
	lis    net.Listener
	logger *zap.Logger
}

// NewGRPCService binds addr for srv.
//
// Precondition: srv and logger must be non-nil.
// Postcondition: Returns a service whose Addr is the bound address, or a listen error.
func NewGRPCService(addr string, srv *grpc.Server, logger *zap.Logger) (*GRPCService, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", addr, err)
	}
	return &GRPCService{srv: srv, lis: lis, logger: logger}, nil
}

// Addr returns the bound listener address, useful when addr used port 0.
func (g *GRPCService) Addr() string {
	return g.lis.Addr().String()
}

// Start serves until Stop is called.
func (g *GRPCService) Start(_ context.Context) error {
	g.logger.Info("gRPC server listening", zap.String("addr", g.Addr()))
	if err := g.srv.Serve(g.lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}
	return nil
}

// Stop drains in-flight calls and closes the listener.
func (g *GRPCService) Stop() {
	g.srv.GracefulStop()
}
