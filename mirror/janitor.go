package mirror

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/openmirror/landingzone/pkg/errors"
	"github.com/openmirror/landingzone/store"
	"github.com/openmirror/landingzone/utils"
	"github.com/rs/zerolog"
)

// Janitor reclaims landing-zone storage once the ingestion side has
// consumed files. Its deletions are scoped to the two retention
// subfolders, which a live writer never touches, so it may run
// concurrently with a writer on the same table.
type Janitor struct {
	store  store.Store
	logger zerolog.Logger
}

// NewJanitor creates a janitor on top of a store backend.
func NewJanitor(s store.Store, logger zerolog.Logger) *Janitor {
	return &Janitor{store: s, logger: logger}
}

// CleanUpTable deletes every object under the table's _ProcessedFiles
// and _FilesReadyToDelete folders. A table whose metadata descriptor
// does not exist is a successful no-op. A failed delete of one object
// does not abort the deletes of the others; the failures are collected
// and returned together.
func (j *Janitor) CleanUpTable(ctx context.Context, id TableID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	children, err := j.store.ListChildren(ctx, id.Prefix())
	if err != nil {
		return errors.New(ErrScanFailed, "failed to list table folder", err).AddContext("table", id.String())
	}

	exists := false
	for _, child := range children {
		if !child.IsDir && child.Name == MetadataFileName {
			exists = true
			break
		}
	}
	if !exists {
		j.logger.Debug().
			Str("table", id.String()).
			Msg("Table does not exist, nothing to clean up")
		return nil
	}

	var deleted int
	var failures []error
	for _, folder := range []string{ProcessedFilesFolder, FilesReadyToDeleteFolder} {
		n, err := j.emptyFolder(ctx, id, folder)
		deleted += n
		if err != nil {
			failures = append(failures, err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	j.logger.Info().
		Str("table", id.String()).
		Int("deleted", deleted).
		Msg("Retention cleanup finished")

	if len(failures) > 0 {
		return errors.New(ErrCleanupFailed, "some retention deletes failed", stderrors.Join(failures...)).
			AddContext("table", id.String())
	}
	return nil
}

// emptyFolder deletes every object directly under the named retention
// folder, continuing past individual delete failures.
func (j *Janitor) emptyFolder(ctx context.Context, id TableID, folder string) (int, error) {
	prefix := j.store.ChildPath(id.Prefix(), folder) + "/"
	children, err := j.store.ListChildren(ctx, prefix)
	if err != nil {
		return 0, errors.New(ErrScanFailed, "failed to list retention folder", err).
			AddContext("table", id.String()).
			AddContext("folder", folder)
	}

	var deleted int
	var failures []error
	for _, child := range children {
		if child.IsDir {
			continue
		}
		if err := ctx.Err(); err != nil {
			failures = append(failures, err)
			break
		}
		if err := j.store.DeleteIfExists(ctx, j.store.ChildPath(prefix, child.Name)); err != nil {
			failures = append(failures, err)
			continue
		}
		deleted++
	}
	return deleted, stderrors.Join(failures...)
}

// Run cleans the given tables immediately and then every interval
// until ctx is cancelled. Per-table failures are logged and do not
// stop the loop.
func (j *Janitor) Run(ctx context.Context, interval time.Duration, ids ...TableID) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		runID := utils.GenerateULIDString()
		for _, id := range ids {
			if err := j.CleanUpTable(ctx, id); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				j.logger.Error().
					Err(err).
					Str("run_id", runID).
					Str("table", id.String()).
					Msg("Retention cleanup failed")
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
