// Package client builds the outbound hertz client shared by the reference
// loader and the submission client.
package client

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/common/config"
	"github.com/cloudwego/hertz/pkg/network/standard"
	"github.com/cloudwego/hertz/pkg/protocol"
)

// Doer is the subset of *client.Client the sign-up code depends on.
type Doer interface {
	Do(ctx context.Context, req *protocol.Request, resp *protocol.Response) error
}

// DoerFunc adapts a function to Doer.
type DoerFunc func(ctx context.Context, req *protocol.Request, resp *protocol.Response) error

func (f DoerFunc) Do(ctx context.Context, req *protocol.Request, resp *protocol.Response) error {
	return f(ctx, req, resp)
}

// New returns a hertz client able to reach both http and https endpoints.
// The netpoll dialer has no TLS support, so the standard dialer is used.
// A nil tlsCfg uses the system roots with TLS 1.2 as the floor.
func New(dialTimeout, readTimeout time.Duration, tlsCfg *tls.Config) (*client.Client, error) {
	if tlsCfg == nil {
		tlsCfg = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	opts := []config.ClientOption{
		client.WithDialer(standard.NewDialer()),
		client.WithTLSConfig(tlsCfg),
		client.WithDialTimeout(dialTimeout),
		client.WithClientReadTimeout(readTimeout),
		client.WithMaxConnsPerHost(64),
	}
	return client.NewClient(opts...)
}
