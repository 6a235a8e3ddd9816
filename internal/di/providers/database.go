package providers

import (
	"github.com/samber/do/v2"

	"github.com/knodemy/lecture-server/internal/config"
	"github.com/knodemy/lecture-server/internal/logger"
	"github.com/knodemy/lecture-server/internal/storage"
	"github.com/knodemy/lecture-server/internal/store"
	"github.com/knodemy/lecture-server/internal/store/sqlite"
)

// StoreHandle wraps the relational store with shutdown capability.
type StoreHandle struct {
	store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the SQLite-backed store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	db, err := sqlite.Open(cfg.Store.Path, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", cfg.Store.Path)

	return &StoreHandle{Store: db}, nil
}

// ProvideObjectStorage provides the artifact bucket store.
func ProvideObjectStorage(i do.Injector) (storage.Store, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	local, err := storage.NewLocal(cfg.Storage.BasePath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Object storage ready",
		"base_path", cfg.Storage.BasePath,
		"scripts_bucket", cfg.Storage.ScriptsBucket,
		"audio_bucket", cfg.Storage.AudioBucket,
	)

	return local, nil
}
