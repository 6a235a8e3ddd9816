// Package di provides dependency injection configuration for the lecture server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/knodemy/lecture-server/internal/config"
	"github.com/knodemy/lecture-server/internal/di/providers"
	"github.com/knodemy/lecture-server/internal/logger"
	"github.com/knodemy/lecture-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)

	// Persistence
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideObjectStorage)

	// Generation pipeline
	do.Provide(injector, providers.ProvideFetcher)
	do.Provide(injector, providers.ProvideExtractor)
	do.Provide(injector, providers.ProvideLLMClient)
	do.Provide(injector, providers.ProvideScriptSynthesizer)
	do.Provide(injector, providers.ProvideRenderer)
	do.Provide(injector, providers.ProvideParser)
	do.Provide(injector, providers.ProvideChunker)
	do.Provide(injector, providers.ProvideSpeechSynthesizer)
	do.Provide(injector, providers.ProvideAssembler)

	// Business services
	do.Provide(injector, providers.ProvideLectureService)
	do.Provide(injector, providers.ProvideBatchService)

	// Workers
	do.Provide(injector, providers.ProvideScheduler)
	do.Provide(injector, providers.ProvideInbox)

	// Server
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)

	_ = do.MustInvoke[*service.Lecture](injector)
	_ = do.MustInvoke[*service.Batch](injector)

	_ = do.MustInvoke[*providers.SchedulerHandle](injector)
	_ = do.MustInvoke[*providers.InboxHandle](injector)

	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
