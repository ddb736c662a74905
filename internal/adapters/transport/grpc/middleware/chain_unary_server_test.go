package middleware

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// маленький helper
func ctxIP(ip string) context.Context {
	return peer.NewContext(context.Background(), &peer.Peer{
		Addr: &net.TCPAddr{IP: net.ParseIP(ip), Port: 80},
	})
}

func TestChainUnaryServer_PanicRecovered(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	chain := ChainUnaryServer(context.Background(), zap.New(core), 10, 10) // высокая квота, чтобы не мешала

	_, err := chain(ctxIP("8.8.8.8"), nil, &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"},
		func(ctx context.Context, req any) (any, error) {
			panic("boom")
		})
	require.Equal(t, codes.Internal, status.Code(err))
	require.Equal(t, 1, logs.FilterMessage("panic in gRPC handler").Len())
}

func TestChainUnaryServer_RateLimitInsideChain(t *testing.T) {
	chain := ChainUnaryServer(context.Background(), zap.NewNop(), 1, 1)

	h := func(ctx context.Context) error {
		_, err := chain(ctx, nil, &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"},
			func(ctx context.Context, req any) (any, error) { return nil, nil })
		return err
	}

	ctx := ctxIP("9.9.9.9")
	require.NoError(t, h(ctx))
	require.Equal(t, codes.ResourceExhausted, status.Code(h(ctx)))
}
