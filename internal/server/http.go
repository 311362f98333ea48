package server

import (
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/sampa-lab/event_radar/internal/service"
	"github.com/sampa-lab/event_radar/pkg/config"
)

// NewHTTPServer builds the kratos HTTP server and registers the finder
// routes.
func NewHTTPServer(c config.ServerConfig, s *service.FinderService, logger log.Logger) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
		),
	}
	if c.Addr != "" {
		opts = append(opts, http.Address(c.Addr))
	}
	if c.Timeout != "" {
		if d, err := time.ParseDuration(c.Timeout); err == nil {
			opts = append(opts, http.Timeout(d))
		}
	}

	srv := http.NewServer(opts...)

	srv.HandleFunc("/healthz", s.HandleHealth)
	srv.HandleFunc("/api/v1/events/find", s.HandleFind)
	srv.HandleFunc("/api/v1/cache/clear", s.HandleClearCache)
	srv.HandleFunc("/api/v1/sessions", s.HandleSessions)

	return srv
}
