// Package server provides an HTTP server wrapper with graceful shutdown,
// configurable timeouts, and optional TLS.
//
// The server blocks in Start until its context is canceled or the listener
// fails, and Run adapts the lifecycle to errgroup-style coordination so the
// HTTP surface can shut down together with the rest of the service.
//
// Usage:
//
//	srv, err := server.NewFromConfig(cfg, server.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(srv.Run(ctx, handler))
//	if err := g.Wait(); err != nil {
//	    return err
//	}
//
// Configuration is environment-driven through Config:
//
//	SERVER_ADDR              listen address (default ":8080")
//	SERVER_READ_TIMEOUT      request read timeout (default 15s)
//	SERVER_WRITE_TIMEOUT     response write timeout (default 15s)
//	SERVER_IDLE_TIMEOUT      keep-alive idle timeout (default 60s)
//	SERVER_SHUTDOWN_TIMEOUT  graceful shutdown timeout (default 30s)
//	SERVER_TLS_CERT_FILE     optional TLS certificate path
//	SERVER_TLS_KEY_FILE      optional TLS key path
//
// Websocket connections hijack the underlying TCP connection on upgrade, so
// the server's read and write timeouts only bound the initial handshake.
package server
