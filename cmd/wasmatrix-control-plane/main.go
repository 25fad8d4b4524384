// Command wasmatrix-control-plane runs the control plane: the instance
// metadata authority, node registry and router.
//
// # Configuration
//
// Environment variables:
//
//	CONTROL_PLANE_ADDR - gRPC listen address (default: ":50051")
//	STATIC_NODE_AGENTS - Comma separated id=address pairs registered at
//	                     startup; their instance state is recovered from
//	                     the agents (optional)
//	USE_ETCD           - Mirror node presence and provider metadata to
//	                     etcd when "true" (default: "false")
//	ETCD_ENDPOINTS     - Comma separated etcd endpoints (required when
//	                     USE_ETCD is true)
//	ETCD_USERNAME      - etcd username (optional)
//	ETCD_PASSWORD      - etcd password (optional)
//
// # Example
//
//	STATIC_NODE_AGENTS=node-1=localhost:50052 go run ./cmd/wasmatrix-control-plane
package main

import (
	"context"
	"fmt"
	stdlog "log"
	"os"

	"goa.design/clue/log"

	"github.com/wasmatrix/wasmatrix/controlplane"
)

func main() {
	if err := run(); err != nil {
		stdlog.Fatal(err)
	}
}

func run() error {
	format := log.FormatJSON
	if log.IsTerminal() {
		format = log.FormatTerminal
	}
	ctx := log.Context(context.Background(), log.WithFormat(format))

	// Load configuration from environment.
	addr := envOr("CONTROL_PLANE_ADDR", ":50051")
	staticNodes, err := controlplane.ParseStaticNodes(os.Getenv("STATIC_NODE_AGENTS"))
	if err != nil {
		return err
	}

	var etcd *controlplane.EtcdMirror
	if os.Getenv("USE_ETCD") == "true" {
		cfg, ok := controlplane.EtcdConfigFromEnv()
		if !ok {
			return fmt.Errorf("USE_ETCD is true but ETCD_ENDPOINTS is not set")
		}
		etcd, err = controlplane.NewEtcdMirror(cfg)
		if err != nil {
			return err
		}
		log.Printf(ctx, "etcd mirror enabled (%d endpoints)", len(cfg.Endpoints))
	}

	srv, err := controlplane.New(ctx, controlplane.Config{
		Etcd:        etcd,
		StaticNodes: staticNodes,
	})
	if err != nil {
		return fmt.Errorf("create control plane: %w", err)
	}
	defer func() {
		if err := srv.Close(); err != nil {
			log.Errorf(ctx, err, "close control plane")
		}
	}()

	return srv.Run(ctx, addr)
}

// envOr returns the environment variable value or a default.
func envOr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
