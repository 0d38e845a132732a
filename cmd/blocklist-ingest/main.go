// Command blocklist-ingest loads ad-fraud blocklist dumps into the
// database. Vendors ship three large gzipped files of traffic sources
// (IPs and domains), one line per source; a source is considered
// confirmed fraudulent only when it appears in at least two of the
// files. The files are far too large to hold in memory, so the ingest
// runs in two streaming passes: pass 1 builds a bloom filter per file,
// pass 2 re-streams each file and collects sources that another file's
// filter also contains.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/bits"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/mizanhq/mizan/internal/repository"
)

const (
	bloomCapacity = 120_000_000
	bloomFPR      = 0.001
	numFiles      = 3
	progressEvery = 10_000_000
	minSourceLen  = 7   // shortest IPv4: x.x.x.x
	maxSourceLen  = 253 // DNS name length limit
)

// fileResult holds candidate sources found in a single file during pass 2.
type fileResult struct {
	candidates map[string]uint
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing blocklistN.gz files")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("blocklist ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("blocklist ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files := make([]string, numFiles)
	for i := range numFiles {
		files[i] = filepath.Join(dataDir, fmt.Sprintf("blocklist%d.gz", i+1))
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return errors.Wrapf(err, "check file %s", f)
		}
	}

	// Pass 1: build bloom filters concurrently.
	slog.Info("pass 1: building bloom filters", slog.Int("files", numFiles))

	filters, err := buildBloomFilters(ctx, files)
	if err != nil {
		return errors.Wrap(err, "build bloom filters")
	}

	// Pass 2: find sources appearing in 2+ files.
	slog.Info("pass 2: finding confirmed sources")

	confirmed, err := findConfirmedSources(ctx, files, filters)
	if err != nil {
		return errors.Wrap(err, "find confirmed sources")
	}

	slog.Info("confirmed sources found", slog.Int("count", len(confirmed)))

	if len(confirmed) == 0 {
		slog.Info("no sources to insert")
		return nil
	}

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := writeSources(ctx, repository.NewBlocklistRepository(pool), confirmed); err != nil {
		return errors.Wrap(err, "write sources to database")
	}

	return nil
}

// buildBloomFilters creates one bloom filter per file, concurrently.
func buildBloomFilters(ctx context.Context, files []string) ([]*bloom.BloomFilter, error) {
	filters := make([]*bloom.BloomFilter, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(buildFilterForFile(ctx, i, f, filters))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return filters, nil
}

func buildFilterForFile(ctx context.Context, idx int, path string, filters []*bloom.BloomFilter) func() error {
	return func() error {
		filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
		var count uint64

		if err := streamGzFile(ctx, path, func(source string) {
			filter.AddString(source)
			count++
			if count%progressEvery == 0 {
				slog.Info("pass 1 progress",
					slog.Int("file", idx+1),
					slog.Uint64("sources", count),
				)
			}
		}); err != nil {
			return errors.Wrapf(err, "build filter for file %d", idx+1)
		}

		slog.Info("pass 1 complete",
			slog.Int("file", idx+1),
			slog.Uint64("total_sources", count),
		)

		filters[idx] = filter
		return nil
	}
}

// findConfirmedSources re-streams each file and checks sources against OTHER
// files' bloom filters. A source is confirmed if it appears in 2 or more files.
func findConfirmedSources(ctx context.Context, files []string, filters []*bloom.BloomFilter) ([]string, error) {
	results := make([]fileResult, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(findCandidatesInFile(ctx, i, f, filters, results))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Merge bitmasks from all files.
	merged := make(map[string]uint)
	for _, r := range results {
		for source, mask := range r.candidates {
			merged[source] |= mask
		}
	}

	// Keep sources appearing in 2+ files.
	var confirmed []string
	for source, mask := range merged {
		if bits.OnesCount(mask) >= 2 {
			confirmed = append(confirmed, source)
		}
	}

	return confirmed, nil
}

func findCandidatesInFile(
	ctx context.Context,
	idx int,
	path string,
	filters []*bloom.BloomFilter,
	results []fileResult,
) func() error {
	return func() error {
		candidates := make(map[string]uint)
		fileBit := uint(1) << uint(idx)
		var count uint64

		if err := streamGzFile(ctx, path, func(source string) {
			count++
			if count%progressEvery == 0 {
				slog.Info("pass 2 progress",
					slog.Int("file", idx+1),
					slog.Uint64("sources", count),
				)
			}

			// Check if this source appears in any OTHER file's bloom filter.
			for j, f := range filters {
				if j == idx {
					continue
				}
				if f.TestString(source) {
					candidates[source] |= fileBit
					break
				}
			}
		}); err != nil {
			return errors.Wrapf(err, "scan file %d for candidates", idx+1)
		}

		slog.Info("pass 2 complete",
			slog.Int("file", idx+1),
			slog.Uint64("total_sources", count),
			slog.Int("candidates", len(candidates)),
		)

		results[idx] = fileResult{candidates: candidates}
		return nil
	}
}

// streamGzFile opens a gzip-compressed file and calls fn for each
// normalized, plausible source line. Sources are lowercased; blank lines
// and lines outside the length bounds are skipped.
func streamGzFile(ctx context.Context, path string, fn func(source string)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		source := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if len(source) < minSourceLen || len(source) > maxSourceLen {
			continue
		}
		fn(source)
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	return nil
}

// writeSources upserts all confirmed sources into the blocklist table.
func writeSources(ctx context.Context, repo *repository.BlocklistRepository, sources []string) error {
	slog.Info("writing sources to database", slog.Int("count", len(sources)))

	for i, source := range sources {
		if err := repo.Upsert(ctx, source, "vendor blocklist, 2+ file match"); err != nil {
			return errors.Wrapf(err, "upsert source %s", source)
		}
		if (i+1)%10_000 == 0 {
			slog.Info("write progress", slog.Int("written", i+1))
		}
	}

	return nil
}
