// Command wasmatrix-agent runs a node agent: it hosts Wasm instances and
// capability providers, serves the NodeAgentService and reports status to
// the control plane.
//
// # Configuration
//
// Environment variables:
//
//	NODE_ID                     - Node identifier (default: hostname)
//	NODE_AGENT_ADDR             - gRPC listen address (default: ":50052")
//	CONTROL_PLANE_ADDR          - Control plane address (optional; no
//	                              registration or reporting when unset)
//	STATUS_REPORT_INTERVAL_SECS - Heartbeat interval (default: 10)
//	NODE_CAPABILITIES           - Provider types this node hosts
//	                              (default: "kv,http,messaging")
//	MAX_INSTANCES               - Instance capacity, 0 = unlimited (default: 0)
//	REDIS_URL                   - Redis backend for the kv and messaging
//	                              providers (optional; in-memory when unset)
//	REDIS_PASSWORD              - Redis password (optional)
//
// # Example
//
//	NODE_ID=node-1 CONTROL_PLANE_ADDR=localhost:50051 go run ./cmd/wasmatrix-agent
package main

import (
	"context"
	"fmt"
	stdlog "log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"goa.design/clue/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/wasmatrix/wasmatrix/agent"
	"github.com/wasmatrix/wasmatrix/proto/wasmatrixpb"
	"github.com/wasmatrix/wasmatrix/providers"
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
	nodeID := envOr("NODE_ID", hostname())
	addr := envOr("NODE_AGENT_ADDR", ":50052")
	controlPlaneAddr := os.Getenv("CONTROL_PLANE_ADDR")
	interval := time.Duration(envIntOr("STATUS_REPORT_INTERVAL_SECS", 10)) * time.Second
	capabilities := splitList(envOr("NODE_CAPABILITIES", "kv,http,messaging"))
	maxInstances := uint32(envIntOr("MAX_INSTANCES", 0))
	redisURL := os.Getenv("REDIS_URL")

	ctx = log.With(ctx, log.KV{K: "node_id", V: nodeID})

	// Wire the provider backends. Redis when configured, in-memory
	// otherwise.
	var (
		kvStore providers.KVStore
		broker  providers.Broker
	)
	if redisURL != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     redisURL,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Errorf(ctx, err, "close redis")
			}
		}()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		kvStore = providers.NewRedisKV(rdb)
		redisBroker := providers.NewRedisBroker(rdb)
		defer redisBroker.Close()
		broker = redisBroker
	} else {
		kvStore = providers.NewMemoryKV()
		broker = providers.NewMemoryBroker()
	}

	nodeAgent := agent.NewAgent(nodeID, agent.NopEngine{}, nil)

	// Register with the control plane and start heartbeating when an
	// address is configured.
	var reporter *agent.Reporter
	if controlPlaneAddr != "" {
		conn, err := grpc.NewClient(controlPlaneAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return fmt.Errorf("dial control plane: %w", err)
		}
		defer func() {
			if err := conn.Close(); err != nil {
				log.Errorf(ctx, err, "close control plane connection")
			}
		}()

		reporter = agent.NewReporter(nodeAgent, wasmatrixpb.NewControlPlaneServiceClient(conn),
			agent.WithReportInterval(interval))
		if err := reporter.Register(ctx, addr, capabilities, maxInstances); err != nil {
			return err
		}
		go reporter.Run(ctx)
		defer reporter.Close()
	}

	srv, err := agent.NewServer(agent.ServerConfig{
		Agent: nodeAgent,
		Providers: []providers.Provider{
			providers.NewKVProvider(kvStore),
			providers.NewHTTPProvider(nil),
			providers.NewMessagingProvider(broker),
		},
		Reporter: reporter,
	})
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}
	return srv.Run(ctx, addr)
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return "node-1"
	}
	return name
}

// envOr returns the environment variable value or a default.
func envOr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// envIntOr returns the environment variable as int or a default.
func envIntOr(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
