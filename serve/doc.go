// Package serve provides the host-side health endpoint and tracing
// infrastructure for Atrium plugin hosts.
//
// A Server wraps a gRPC server carrying the standard grpc.health.v1
// service. Each managed plugin appears as a named health service whose
// SERVING/NOT_SERVING status follows its lifecycle: the controller flips
// the status through the Reporter on every enable and disable, and the
// empty service name reports the host as a whole. Load balancers and
// orchestrators can therefore probe individual plugins with stock gRPC
// health checkers.
//
// # Usage
//
//	srv, err := serve.NewServer(&serve.Config{Port: 0})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	host, err := sdk.New(sdk.WithHealthReporter(srv.Health()))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer host.Close()
//
//	if err := srv.Serve(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Serve blocks until the context is cancelled or a SIGINT/SIGTERM
// arrives, then stops gracefully: health flips to NOT_SERVING so callers
// drain, active RPCs get GracefulTimeout to finish, and the server
// force-stops past it. With LocalMode set the server also listens on a
// Unix domain socket (0600, removed on shutdown) for hosts that share a
// machine with the workspace server.
//
// # Tracing
//
// NewTracerProvider builds an OpenTelemetry TracerProvider over a host
// supplied exporter; ParentContext links SDK spans into the workspace
// server's distributed trace from hex-encoded trace and span IDs.
package serve
