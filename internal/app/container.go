package app

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/doeshing/aicmd-go/internal/application/assistant"
	"github.com/doeshing/aicmd-go/internal/application/doctor"
	"github.com/doeshing/aicmd-go/internal/domain"
	"github.com/doeshing/aicmd-go/internal/infrastructure/ai"
	"github.com/doeshing/aicmd-go/internal/infrastructure/cache"
	"github.com/doeshing/aicmd-go/internal/infrastructure/command"
	"github.com/doeshing/aicmd-go/internal/infrastructure/config"
	contextcollector "github.com/doeshing/aicmd-go/internal/infrastructure/context"
	"github.com/doeshing/aicmd-go/internal/infrastructure/executor"
	"github.com/doeshing/aicmd-go/internal/infrastructure/history"
	"github.com/doeshing/aicmd-go/internal/infrastructure/search"
	"github.com/doeshing/aicmd-go/internal/pkg/logger"
	"github.com/doeshing/aicmd-go/internal/ports"
)

// Settings are the process-level switches that shape the graph.
type Settings struct {
	Verbose    bool
	ConfigPath string
	Backend    string
	AgentMode  bool
	WebSearch  bool
}

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config         domain.Config
	ConfigLoader   *config.FileLoader
	Logger         *logger.ZapLogger
	Parser         *command.Parser
	Translator     *command.Translator
	Executor       *executor.LocalExecutor
	Search         ports.SearchAggregator
	SearchCache    *cache.SearchCache
	HistoryStore   ports.HistoryStore
	Assistant      *assistant.Service
	DoctorService  *doctor.Service
	ConfigProvider ports.ConfigProvider
}

// BuildContainer constructs the dependency graph. A missing config file is
// created from the embedded defaults; a denylist file that cannot be read
// falls back to the built-in rules.
func BuildContainer(ctx context.Context, settings Settings) (*Container, error) {
	log := logger.New(settings.Verbose)

	cfgLoader := config.NewFileLoader(settings.ConfigPath)
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	denylist, err := command.NewDenylist(cfg.Execution.DenylistFile)
	if err != nil {
		log.Warn("denylist file unreadable, using built-in rules", map[string]interface{}{
			"path":  cfg.Execution.DenylistFile,
			"error": err.Error(),
		})
		if denylist, err = command.NewDenylist(""); err != nil {
			return nil, err
		}
	}
	parser := command.NewParser(denylist, log)
	translator := command.NewTranslator()

	localExec := executor.NewLocalExecutor(executor.Options{
		Platform: executor.HostPlatform(),
		Shell:    cfg.GetExecutionShell(),
		Colorize: cfg.Execution.ColorizeListing,
		Logger:   log,
	})

	clients := ai.NewFactory(log)
	collector := contextcollector.NewHostCollector(localExec.WorkDir)

	searchOpts := search.OptionsFromConfig(cfg)
	searchOpts.Logger = log
	var searcher ports.SearchAggregator = search.NewAggregator(searchOpts)
	var searchCache *cache.SearchCache
	if cfg.Search.Cache {
		searchCache = cache.NewSearchCache(searcher, cache.DefaultDir(), cfg.GetSearchCacheTTL(), log)
		searcher = searchCache
	}

	var historyStore ports.HistoryStore
	if cfg.History.Enabled {
		historyStore = history.Open(cfg.History.Path, cfg.GetHistoryMaxEntries(), log)
	}

	assistantService := &assistant.Service{
		Config:          cfg,
		Parser:          parser,
		Translator:      translator,
		Executor:        localExec,
		Clients:         clients,
		Context:         contextcollector.NewAssemblerFromConfig(cfg),
		SystemInfo:      collector,
		Search:          searcher,
		History:         historyStore,
		Logger:          log,
		SessionID:       uuid.NewString(),
		BackendOverride: settings.Backend,
		AgentMode:       settings.AgentMode,
		WebSearch:       settings.WebSearch,
	}

	doctorService := &doctor.Service{
		ConfigProvider: cfgLoader,
		Parser:         parser,
		SystemInfo:     collector,
		History:        historyStore,
		Clients:        clients,
	}

	return &Container{
		Config:         cfg,
		ConfigLoader:   cfgLoader,
		Logger:         log,
		Parser:         parser,
		Translator:     translator,
		Executor:       localExec,
		Search:         searcher,
		SearchCache:    searchCache,
		HistoryStore:   historyStore,
		Assistant:      assistantService,
		DoctorService:  doctorService,
		ConfigProvider: cfgLoader,
	}, nil
}

// Close releases the history database and flushes the log.
func (c *Container) Close() {
	if closer, ok := c.HistoryStore.(io.Closer); ok {
		_ = closer.Close()
	}
	_ = c.Logger.Sync()
}
