// Package sync reconciles the documents directory with the vector store.
// It walks config.SyncDocsDir, hashes each file, diffs the result against
// what the repository already has indexed (grouped by source), and applies
// the minimal set of chunk/embed/upsert and delete operations needed to
// bring the store back in sync.
package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/cyberfortress-labs/smartxdr-core/internal/config"
	"github.com/cyberfortress-labs/smartxdr-core/internal/progress"
	"github.com/cyberfortress-labs/smartxdr-core/internal/store"
	"github.com/cyberfortress-labs/smartxdr-core/internal/walker"
)

// Config controls a single sync run. It is a thin projection of
// config.Config's sync-related fields plus run-time flags that don't belong
// in persisted configuration (Force).
type Config struct {
	DocsDir      string
	SkipDirs     []string
	SkipFiles    []string
	MaxFileSize  int64
	MaxChunkSize int
	MinChunkSize int
	Concurrency  int
	Force        bool // treat every on-disk file as changed, ignoring content hashes.
}

// FromAppConfig derives a sync.Config from the application configuration.
func FromAppConfig(cfg *config.Config, force bool) Config {
	return Config{
		DocsDir:      cfg.SyncDocsDir,
		SkipDirs:     cfg.SyncSkipDirs,
		SkipFiles:    cfg.SyncSkipFiles,
		MaxFileSize:  cfg.SyncMaxFileSize,
		MaxChunkSize: cfg.MaxChunkSize,
		MinChunkSize: cfg.MinChunkSize,
		Concurrency:  cfg.MaxConcurrency,
		Force:        force,
	}
}

// Result tallies the outcome of a sync run, per spec's counters.
type Result struct {
	Added    int
	Updated  int
	Deleted  int
	Skipped  int
	Errors   []error
	Duration time.Duration
}

// ProgressFunc reports per-file progress during the act phase.
type ProgressFunc func(current, total int, message string)

// Engine drives the detect/act/clean reconciliation.
type Engine struct {
	repo       store.Repository
	cfg        Config
	onProgress ProgressFunc
}

// New creates a sync Engine bound to the given repository.
func New(repo store.Repository, cfg Config) *Engine {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 4
	}
	if cfg.MaxChunkSize <= 0 {
		cfg.MaxChunkSize = 1500
	}
	return &Engine{repo: repo, cfg: cfg}
}

// SetProgressFunc installs a progress callback invoked during the act
// phase, once per processed file.
func (e *Engine) SetProgressFunc(fn ProgressFunc) {
	e.onProgress = fn
}

// Reporter wraps a progress.Reporter as a ProgressFunc, for callers that
// want the terminal/CI reporter used elsewhere in the CLI.
func Reporter(r progress.Reporter) ProgressFunc {
	started := false
	return func(current, total int, message string) {
		if !started {
			r.Start(total)
			started = true
		}
		r.Update(current, message)
		if current >= total {
			r.Finish()
		}
	}
}

// plan is the output of the detect phase: the three disjoint sets of files
// the act phase must handle, plus the count of files left untouched.
type plan struct {
	newFiles     []walker.FileInfo
	updatedFiles []walker.FileInfo
	deletedSrcs  []string
	skipped      int
}

// Run executes one full detect -> act -> clean reconciliation pass.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{}

	p, err := e.detect(ctx)
	if err != nil {
		return nil, fmt.Errorf("sync: detect: %w", err)
	}
	result.Skipped = p.skipped

	total := len(p.newFiles) + len(p.updatedFiles) + len(p.deletedSrcs)
	var processed int

	report := func(f walker.FileInfo) {
		processed++
		if e.onProgress != nil {
			e.onProgress(processed, total, f.RelPath)
		}
	}

	for _, item := range e.processConcurrently(ctx, p.newFiles, report, e.addFile) {
		if item.err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("add %s: %w", item.file.RelPath, item.err))
		} else {
			result.Added++
		}
	}

	// Build before delete (invariant: an updated file's new chunks must be
	// queryable before its stale chunks are removed, so a query racing the
	// sync never sees zero results for a source that still exists on disk).
	for _, item := range e.processConcurrently(ctx, p.updatedFiles, report, e.updateFile) {
		if item.err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("update %s: %w", item.file.RelPath, item.err))
		} else {
			result.Updated++
		}
	}

	for _, src := range p.deletedSrcs {
		if err := e.deleteSource(ctx, src); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("delete %s: %w", src, err))
		} else {
			result.Deleted++
		}
		processed++
		if e.onProgress != nil {
			e.onProgress(processed, total, src)
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}

// detect walks the docs directory, lists what the repository already has
// indexed (grouped by source), and classifies every file into new, updated,
// deleted, or unchanged.
func (e *Engine) detect(ctx context.Context) (*plan, error) {
	files, err := walker.Walk(walker.WalkerConfig{
		RootDir:     e.cfg.DocsDir,
		Exclude:     e.cfg.SkipFiles,
		ExcludeDirs: e.cfg.SkipDirs,
		MaxFileSize: e.cfg.MaxFileSize,
	})
	if err != nil {
		return nil, err
	}

	indexed, err := e.indexedFileHashes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list indexed sources: %w", err)
	}

	p := &plan{}
	onDisk := make(map[string]bool, len(files))

	for _, f := range files {
		onDisk[f.RelPath] = true
		hash, ok := indexed[f.RelPath]
		switch {
		case !ok:
			p.newFiles = append(p.newFiles, f)
		case e.cfg.Force || hash != f.ContentHash:
			p.updatedFiles = append(p.updatedFiles, f)
		default:
			p.skipped++
		}
	}

	for src := range indexed {
		if !onDisk[src] {
			p.deletedSrcs = append(p.deletedSrcs, src)
		}
	}

	return p, nil
}

// indexedFileHashes lists every active document and returns the file hash
// recorded against each distinct source. All chunks of a given source share
// the same file_hash, so the first one observed per source suffices.
func (e *Engine) indexedFileHashes(ctx context.Context) (map[string]string, error) {
	docs, err := e.repo.List(ctx, nil, 0, 0)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string)
	for _, d := range docs {
		if !d.Metadata.IsActive {
			continue
		}
		if _, ok := out[d.Metadata.Source]; !ok {
			out[d.Metadata.Source] = d.Metadata.FileHash
		}
	}
	return out, nil
}
