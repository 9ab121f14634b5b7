package cli

import (
	"fmt"
	"os"

	"github.com/careermate/careermate/internal/archive"
	"github.com/careermate/careermate/internal/config"
	"github.com/careermate/careermate/internal/dispatch"
	"github.com/careermate/careermate/internal/gateway"
	"github.com/careermate/careermate/internal/intent"
	"github.com/careermate/careermate/internal/observe"
	"github.com/careermate/careermate/internal/provider"
	"github.com/careermate/careermate/internal/session"
	"github.com/careermate/careermate/internal/store"
	"github.com/careermate/careermate/internal/validate"
)

// App bundles the assembled subsystems behind one handle for the commands.
type App struct {
	Cfg        *config.Config
	Obs        *observe.Observer
	Contexts   *store.ContextStore
	Sessions   *session.Manager
	TurnLog    *archive.Archive
	Gateway    *gateway.Gateway
	Dispatcher *dispatch.Dispatcher
}

// buildApp loads configuration and wires the full stack. An inaccessible
// data directory aborts startup; everything else degrades at runtime.
func buildApp() *App {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if providerType != "" {
		cfg.Provider = providerType
	}
	if modelName != "" {
		cfg.Model = modelName
	}
	if verbose {
		cfg.Verbose = true
	}

	var obs *observe.Observer
	if jsonLogs {
		obs = observe.NewJSON(os.Stderr, cfg.Verbose)
	} else {
		obs = observe.New(os.Stderr, cfg.Verbose)
	}

	contexts, err := store.NewContextStore(cfg.DataDir, cfg.HistoryLimit, cfg.BackupRetention, obs.For("store"))
	if err != nil {
		obs.Log().Fatal().Err(err).Msg("storage directory unavailable")
	}
	sessions, err := session.NewManager(cfg.DataDir, cfg.InterviewQuestions, cfg.SessionIdleTimeout(), cfg.BackupRetention, obs.For("session"))
	if err != nil {
		obs.Log().Fatal().Err(err).Msg("session directory unavailable")
	}

	// The archive is best effort; a failed open logs and continues.
	turnLog, err := archive.Open(cfg.DataDir, obs.For("archive"))
	if err != nil {
		obs.Log().Warn().Err(err).Msg("turn archive unavailable, continuing without it")
		turnLog = nil
	}

	p, err := newProvider(cfg)
	if err != nil {
		obs.Log().Fatal().Str("provider", cfg.Provider).Err(err).Msg("failed to initialize provider")
	}

	gw := gateway.New(p, cfg.ProviderTimeout(), cfg.RetryBackoff(), obs.For("gateway"))
	d := dispatch.New(
		intent.New(cfg.ClassifyThreshold),
		contexts,
		sessions,
		gw,
		turnLog,
		validate.New(validate.DefaultLimits),
		dispatch.NewEventBus(),
		obs,
	)

	return &App{
		Cfg:        cfg,
		Obs:        obs,
		Contexts:   contexts,
		Sessions:   sessions,
		TurnLog:    turnLog,
		Gateway:    gw,
		Dispatcher: d,
	}
}

func (a *App) Close() {
	if a.TurnLog != nil {
		a.TurnLog.Close()
	}
	a.Obs.Close()
}

func newProvider(cfg *config.Config) (provider.Provider, error) {
	switch cfg.Provider {
	case "ollama":
		return provider.NewOllamaProvider(cfg.Model)
	case "openai":
		return provider.NewOpenAIProvider(config.OpenAIKey(), cfg.OpenAIBaseURL, cfg.Model)
	case "gemini":
		return provider.NewGeminiProvider(config.GeminiKey(), cfg.Model)
	case "stub":
		return provider.NewStubProvider(), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (use ollama, openai, gemini or stub)", cfg.Provider)
	}
}

// currentUserID derives the local conversation identity. Explicit --user
// wins; otherwise the OS login name stands in.
func currentUserID() string {
	if userID != "" {
		return userID
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "local"
}
