package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/menuboard/display-server-go/internal/repository"
	"github.com/menuboard/display-server-go/internal/storage"
)

// MediaReconcileJob periodically removes uploaded files no display or item
// references anymore. File writes and row updates are separate operations, so
// a crash between them can leave orphans; this sweep is the compensating
// action.
type MediaReconcileJob struct {
	displays repository.DisplayRepository
	items    repository.ItemRepository
	media    *storage.MediaStore
	interval time.Duration
	done     chan struct{}
}

func NewMediaReconcileJob(
	displays repository.DisplayRepository,
	items repository.ItemRepository,
	media *storage.MediaStore,
	interval time.Duration,
) *MediaReconcileJob {
	return &MediaReconcileJob{
		displays: displays,
		items:    items,
		media:    media,
		interval: interval,
		done:     make(chan struct{}),
	}
}

func (j *MediaReconcileJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("media reconcile job started")
}

func (j *MediaReconcileJob) Stop() {
	close(j.done)
	log.Info().Msg("media reconcile job stopped")
}

func (j *MediaReconcileJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.reconcile()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.reconcile()
		}
	}
}

func (j *MediaReconcileJob) reconcile() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	referenced, err := j.referencedURLs(ctx)
	if err != nil {
		log.Error().Err(err).Msg("media reconcile: collect references")
		return
	}

	// Skipping files younger than one interval keeps the sweep from racing
	// an upload whose row update has not landed yet.
	stored, err := j.media.ListURLs(j.interval)
	if err != nil {
		log.Error().Err(err).Msg("media reconcile: list files")
		return
	}

	removed := 0
	for _, url := range stored {
		if !referenced[url] {
			j.media.Remove(url)
			removed++
		}
	}

	if removed > 0 {
		log.Info().Int("count", removed).Msg("removed orphaned media files")
	}
}

func (j *MediaReconcileJob) referencedURLs(ctx context.Context) (map[string]bool, error) {
	displayURLs, err := j.displays.ReferencedMediaURLs(ctx)
	if err != nil {
		return nil, err
	}
	itemURLs, err := j.items.ReferencedImageURLs(ctx)
	if err != nil {
		return nil, err
	}

	referenced := make(map[string]bool, len(displayURLs)+len(itemURLs))
	for _, url := range displayURLs {
		referenced[url] = true
	}
	for _, url := range itemURLs {
		referenced[url] = true
	}
	return referenced, nil
}
