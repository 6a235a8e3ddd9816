package providers

import (
	"github.com/samber/do/v2"

	"github.com/knodemy/lecture-server/internal/audio"
	"github.com/knodemy/lecture-server/internal/config"
	"github.com/knodemy/lecture-server/internal/logger"
	"github.com/knodemy/lecture-server/internal/script"
	"github.com/knodemy/lecture-server/internal/segment"
	"github.com/knodemy/lecture-server/internal/service"
	"github.com/knodemy/lecture-server/internal/source"
	"github.com/knodemy/lecture-server/internal/storage"
)

// ProvideLectureService provides the script and audio generation pipeline.
func ProvideLectureService(i do.Injector) (*service.Lecture, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewLecture(
		do.MustInvoke[*source.Fetcher](i),
		do.MustInvoke[*source.Extractor](i),
		do.MustInvoke[*script.Synthesizer](i),
		do.MustInvoke[*script.Renderer](i),
		do.MustInvoke[*segment.Parser](i),
		do.MustInvoke[*audio.Assembler](i),
		cfg.Speech.Voice,
		log.Logger,
	), nil
}

// ProvideBatchService provides the daily batch orchestrator.
func ProvideBatchService(i do.Injector) (*service.Batch, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	lecture := do.MustInvoke[*service.Lecture](i)
	objects := do.MustInvoke[storage.Store](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	return service.NewBatch(lecture, objects, storeHandle.Store, log.Logger, service.BatchOptions{
		ScriptsBucket: cfg.Storage.ScriptsBucket,
		AudioBucket:   cfg.Storage.AudioBucket,
		GenerateAudio: cfg.Storage.GenerateAudio,
		SignURLs:      cfg.Storage.SignURLs,
		SignExpiry:    cfg.Storage.SignExpiry,
	}), nil
}
