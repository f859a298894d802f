package bootstrap

import (
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"audit-backend/internal/audits"
	"audit-backend/internal/export"
	"audit-backend/internal/llm"
	"audit-backend/internal/llm/providers"
	"audit-backend/internal/services/health"
	"audit-backend/internal/shared/config"
	"audit-backend/internal/shared/server"
	"audit-backend/internal/shared/storage/object"
	localstore "audit-backend/internal/shared/storage/object/local"
)

// App holds shared dependencies for the API server and the CLIs.
type App struct {
	Config       config.Config
	Router       *gin.Engine
	Store        object.ArtifactStore
	Analyzer     *llm.Client
	AuditService *audits.Service
	Workspace    *audits.Workspace
	AuditHandler *audits.Handler
	Health       *health.Service
}

// Build prepares shared dependencies and the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}

	analyzer, err := providers.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("build %s provider: %w", cfg.LLMProvider, err)
	}

	if err := export.UseFontFile(cfg.PDFFontFile); err != nil {
		log.Printf("bootstrap: keeping embedded pdf fonts: %v", err)
	}

	app := &App{
		Config:   cfg,
		Store:    localstore.New(cfg.ExportDir),
		Analyzer: analyzer,
	}
	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:       app.Config,
		AuditHandler: app.AuditHandler,
		Health:       app.Health,
	})

	log.Printf("bootstrap: provider=%s model=%s prompt=%s", analyzer.ProviderName(), cfg.LLMModel, cfg.PromptVersion)
	return app, nil
}

func buildServices(app *App) {
	app.AuditService = audits.NewService(app.Analyzer)
	app.Workspace = audits.NewWorkspace(app.AuditService, app.Config.MaxUploadBytes)
	app.AuditHandler = audits.NewHandler(app.AuditService, app.Workspace, app.Config.MaxUploadBytes)
	app.Health = health.NewService(app.Analyzer.ProviderName())
}
