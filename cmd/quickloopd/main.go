// Command quickloopd starts the HTTP/1.0 event-loop server described by
// this module. Usage follows spec §6's external interface exactly:
//
//	quickloopd server <port> [flags]
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/nkaush-go/quickloop/pkg/quickloop/accesslog"
	"github.com/nkaush-go/quickloop/pkg/quickloop/engine"
	"github.com/nkaush-go/quickloop/pkg/quickloop/httpdate"
	"github.com/nkaush-go/quickloop/pkg/quickloop/proto"
	"github.com/nkaush-go/quickloop/pkg/quickloop/request"
	"github.com/nkaush-go/quickloop/pkg/quickloop/response"
	"github.com/nkaush-go/quickloop/pkg/quickloop/route"
)

var (
	flagMaxConnections  int
	flagSkipLogRequests bool
	flagLogConnects     bool
	flagNoIfModified    bool
	flagNoFileCache     bool
	flagStaticFile      string
)

func main() {
	root := &cobra.Command{
		Use:   "quickloopd",
		Short: "A single-threaded, readiness-driven HTTP/1.0 server core.",
	}

	serverCmd := &cobra.Command{
		Use:   "server <port>",
		Short: "Start the server listening on the given port.",
		Args:  cobra.ExactArgs(1),
		RunE:  runServer,
	}
	serverCmd.Flags().IntVar(&flagMaxConnections, "max-connections", 10_000, "maximum concurrently open connections")
	serverCmd.Flags().BoolVar(&flagSkipLogRequests, "skip-log-requests", false, "suppress the per-request access log line")
	serverCmd.Flags().BoolVar(&flagLogConnects, "log-connects", false, "log a line for every accepted connection")
	serverCmd.Flags().BoolVar(&flagNoIfModified, "disable-if-modified-since", false, "disable the conditional-GET 304 optimization")
	serverCmd.Flags().BoolVar(&flagNoFileCache, "disable-file-auto-cache", false, "disable automatic cache headers on file responses")
	serverCmd.Flags().StringVar(&flagStaticFile, "static-file", "", "if set, serve this file as a file-backed response at GET /static (demonstrates conditional GET and auto-cache headers)")

	root.AddCommand(serverCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	port := args[0]

	cfg := engine.DefaultConfig(":" + port)
	cfg.MaxConnections = flagMaxConnections
	cfg.SkipLogRequests = flagSkipLogRequests
	cfg.LogConnects = flagLogConnects
	cfg.DisableHandleIfModifiedSince = flagNoIfModified
	cfg.DisableFileAutoCache = flagNoFileCache

	log := accesslog.New(accesslog.Config{
		LogConnects:     flagLogConnects,
		SkipLogRequests: flagSkipLogRequests,
		Level:           hclog.Info,
	})

	router := route.New()
	registerBuiltinRoutes(router)
	if flagStaticFile != "" {
		registerStaticFileRoute(router, flagStaticFile, cfg)
	}

	e := engine.New(cfg, router, log)
	log.Infof("starting quickloopd", "port", port)

	if err := e.Run(); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}

// registerBuiltinRoutes registers the handful of diagnostic endpoints a
// freshly started server answers on before any application-specific
// handlers are wired in by an embedder of this package.
func registerBuiltinRoutes(router *route.Trie) {
	router.Register(proto.MethodGET, "/healthz", func(req *request.Request) *response.Response {
		r := response.NewResponse(proto.StatusOK)
		r.Headers.Set("Content-Type", proto.ContentTypeJSON)
		r.SetBodyBytes([]byte(`{"status":"ok"}`))
		return r
	})
}

// registerStaticFileRoute wires a single file-backed response, honoring
// the --disable-if-modified-since/--disable-file-auto-cache knobs from
// cfg end to end: conditional GET via If-Modified-Since, and the
// auto-populated Last-Modified/Content-Length/Expires/Cache-Control
// headers spec §4.3 describes for file responses.
func registerStaticFileRoute(router *route.Trie, path string, cfg *engine.Config) {
	router.Register(proto.MethodGET, "/static", func(req *request.Request) *response.Response {
		var since time.Time
		if raw, ok := req.Headers.Get("If-Modified-Since"); ok {
			if t, err := httpdate.Parse(raw); err == nil {
				since = t
			}
		}
		r, err := response.ServeFile(path, since, response.FileServeConfig{
			DisableIfModifiedSince: cfg.DisableHandleIfModifiedSince,
			DisableFileAutoCache:   cfg.DisableFileAutoCache,
		})
		if err != nil {
			return response.NotFound()
		}
		return r
	})
}
