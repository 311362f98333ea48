package main

import (
	"context"
	"flag"
	stdlog "log"
	"os"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"golang.org/x/time/rate"

	"github.com/sampa-lab/event_radar/internal/server"
	"github.com/sampa-lab/event_radar/internal/service"
	"github.com/sampa-lab/event_radar/pkg/aggregate"
	"github.com/sampa-lab/event_radar/pkg/config"
	"github.com/sampa-lab/event_radar/pkg/finder"
	"github.com/sampa-lab/event_radar/pkg/locexp"
	"github.com/sampa-lab/event_radar/pkg/logger"
	"github.com/sampa-lab/event_radar/pkg/memory"
	"github.com/sampa-lab/event_radar/pkg/ranking"
	"github.com/sampa-lab/event_radar/pkg/search/factory"
	"github.com/sampa-lab/event_radar/pkg/source"
	"github.com/sampa-lab/event_radar/pkg/source/fablab"
	"github.com/sampa-lab/event_radar/pkg/source/visitesp"
	"github.com/sampa-lab/event_radar/pkg/source/wikimuseums"
	"github.com/sampa-lab/event_radar/pkg/storage"
)

var (
	// Name is the service name.
	Name = "event_radar"
	// Version is set at build time.
	Version string

	flagconf string

	id, _ = os.Hostname()
)

func init() {
	flag.StringVar(&flagconf, "conf", "configs/config.yaml", "config path, eg: -conf config.yaml")
}

func main() {
	flag.Parse()

	cfg, err := config.LoadConfig(flagconf)
	if err != nil {
		stdlog.Fatalf("failed to load config: %v", err)
	}

	if err := logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		stdlog.Fatalf("failed to init logger: %v", err)
	}
	logger.Log.Info("starting event radar...")

	ctx := context.Background()

	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
	})
	if err != nil {
		logger.Log.Fatalf("failed to init chat model: %v", err)
	}

	limit := rate.Limit(float64(cfg.Concurrency.RPM) / 60.0)
	limiter := rate.NewLimiter(limit, cfg.Concurrency.QPS)
	logger.Log.Infof("LLM limiter configured: limit=%.2f req/s, burst=%d", limit, cfg.Concurrency.QPS)

	searcher, err := factory.NewSearcher(cfg)
	if err != nil {
		logger.Log.Fatalf("failed to init search client: %v", err)
	}
	if searcher == nil {
		logger.Log.Warn("no search provider credentialed, web search will be skipped")
	}

	var store *storage.Storage
	if cfg.DB.Host != "" {
		s, err := storage.NewStorage(cfg.DB)
		if err != nil {
			logger.Log.Errorf("failed to connect audit database, sessions will not be recorded: %v", err)
		} else {
			store = s
			defer store.Close()
			logger.Log.Info("connected to audit database")
		}
	} else {
		logger.Log.Info("audit database not configured, skipping")
	}

	eventMem := memory.NewEventMemory(time.Duration(cfg.Cache.EventsRefreshSeconds) * time.Second)
	searchMem := memory.NewSearchMemory(time.Duration(cfg.Cache.SearchRefreshSeconds) * time.Second)

	aggregator := aggregate.New(eventMem, providers(cfg)...)
	expander := locexp.New(chatModel, limiter)
	ranker := ranking.NewLLMRanker(chatModel, limiter, cfg.Finder.MaxScrapedShown, cfg.Finder.MaxWebShown)

	opts := finder.Options{
		Events:         aggregator,
		SearchMemory:   searchMem,
		Searcher:       searcher,
		Expander:       expander,
		Ranker:         ranker,
		MaxSuggestions: cfg.Finder.MaxSuggestions,
		MaxWebResults:  cfg.Finder.MaxWebResults,
	}
	if store != nil {
		opts.Recorder = store
	}
	f := finder.New(opts)

	klogger := log.With(log.NewStdLogger(os.Stdout),
		"ts", log.DefaultTimestamp,
		"caller", log.DefaultCaller,
		"service.id", id,
		"service.name", Name,
		"service.version", Version,
	)

	svc := service.NewFinderService(f, searchMem, store, klogger)
	hs := server.NewHTTPServer(cfg.Server, svc, klogger)

	app := kratos.New(
		kratos.ID(id),
		kratos.Name(Name),
		kratos.Version(Version),
		kratos.Logger(klogger),
		kratos.Server(hs),
	)

	if err := app.Run(); err != nil {
		logger.Log.Fatalf("server stopped: %v", err)
	}
}

// providers builds the ordered site provider list. Order only affects
// ID assignment within a batch.
func providers(cfg *config.Config) []source.Provider {
	var out []source.Provider
	if cfg.Sources.FabLab.Enabled {
		out = append(out, fablab.New(cfg.Sources.FabLab.URL, cfg.Sources.FabLab.Timeout))
	}
	if cfg.Sources.VisiteSP.Enabled {
		out = append(out, visitesp.New(cfg.Sources.VisiteSP.URL, cfg.Sources.VisiteSP.Timeout))
	}
	if cfg.Sources.WikiMuseums.Enabled {
		out = append(out, wikimuseums.New(cfg.Sources.WikiMuseums.URL, cfg.Sources.WikiMuseums.Timeout))
	}
	return out
}
