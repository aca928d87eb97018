package sync

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cyberfortress-labs/smartxdr-core/internal/chunking"
	"github.com/cyberfortress-labs/smartxdr-core/internal/document"
	"github.com/cyberfortress-labs/smartxdr-core/internal/store"
	"github.com/cyberfortress-labs/smartxdr-core/internal/walker"
)

// addFile chunks, embeds, and upserts a file that has no prior chunks in
// the store.
func (e *Engine) addFile(ctx context.Context, f walker.FileInfo) error {
	contents, metas, ids, err := e.buildChunks(f)
	if err != nil {
		return err
	}
	if len(contents) == 0 {
		return nil
	}
	_, err = e.repo.AddBatch(ctx, contents, metas, ids)
	return err
}

// updateFile embeds and upserts the file's new chunks under a fresh
// version, then deactivates every chunk from a prior version of the same
// source. The new chunks land in the store and become queryable before the
// old ones are torn down, per the build-before-delete ordering mandated for
// updates.
func (e *Engine) updateFile(ctx context.Context, f walker.FileInfo) error {
	contents, metas, ids, err := e.buildChunks(f)
	if err != nil {
		return err
	}
	if len(contents) == 0 {
		return nil
	}
	if _, err := e.repo.AddBatch(ctx, contents, metas, ids); err != nil {
		return err
	}
	if _, err := e.repo.DeactivateOldVersions(ctx, f.RelPath, f.ContentHash); err != nil {
		return fmt.Errorf("deactivate stale versions: %w", err)
	}
	return nil
}

// deleteSource removes every chunk belonging to a source that no longer
// exists on disk.
func (e *Engine) deleteSource(ctx context.Context, source string) error {
	docs, err := e.repo.List(ctx, &store.Filter{Source: &source}, 0, 0)
	if err != nil {
		return err
	}
	var firstErr error
	for _, d := range docs {
		if _, err := e.repo.Delete(ctx, d.ID); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// buildChunks reads a file from disk, splits it into content-bearing
// chunks via internal/chunking's type-aware dispatch, and builds the
// parallel contents/metadatas/ids slices AddBatch expects. Source and
// SourceID are both the file's slash-normalized path relative to the docs
// directory; Version is the file's content hash, so a subsequent sync can
// recognize and retire this exact version via DeactivateOldVersions.
func (e *Engine) buildChunks(f walker.FileInfo) (contents []string, metas []document.Metadata, ids []string, err error) {
	raw, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("read %s: %w", f.RelPath, err)
	}

	chunks := chunking.ChunkFile(f.Path, raw, e.cfg.MaxChunkSize, e.cfg.MinChunkSize)
	if len(chunks) == 0 {
		return nil, nil, nil, nil
	}

	now := time.Now().UTC()
	contents = make([]string, 0, len(chunks))
	metas = make([]document.Metadata, 0, len(chunks))
	ids = make([]string, 0, len(chunks))

	for i, c := range chunks {
		meta := document.Metadata{
			Source:    f.RelPath,
			SourceID:  f.RelPath,
			Version:   f.ContentHash,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
			FileHash:  f.ContentHash,
			Chunk:     i,
			Total:     len(chunks),
		}
		contents = append(contents, c)
		metas = append(metas, meta)
		ids = append(ids, document.ComputeID(f.RelPath, f.ContentHash, c))
	}
	return contents, metas, ids, nil
}
