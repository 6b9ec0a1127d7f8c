package dataset

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/jengatower/pkg/errors"
	"github.com/matzehuels/jengatower/pkg/observability"
)

// LoadOptions names the two tables and how to reach them.
type LoadOptions struct {
	Countries string
	Links     string
	Source    SourceOptions
	Logger    *log.Logger
}

// Load fetches both tables concurrently and returns the validated dataset.
// Either table being unreachable, unparsable or empty is a LOAD_FAILED
// error; no usable country rows is EMPTY_DATASET. No partial dataset is
// ever returned.
func Load(ctx context.Context, opts LoadOptions) (*Dataset, error) {
	countries, err := OpenSource(opts.Countries, opts.Source)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLoadFailed, err, "countries source")
	}
	links, err := OpenSource(opts.Links, opts.Source)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLoadFailed, err, "links source")
	}
	return LoadFrom(ctx, countries, links, opts.Logger)
}

// LoadFrom is Load over already-constructed sources.
func LoadFrom(ctx context.Context, countries, links Source, logger *log.Logger) (*Dataset, error) {
	logger = orDiscard(logger)
	start := time.Now()

	var countryRows, linkRows []Row
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		countryRows, err = fetchRows(gctx, countries)
		return err
	})
	g.Go(func() (err error) {
		linkRows, err = fetchRows(gctx, links)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	hooks := observability.Load()
	records, droppedC := ParseCountries(countryRows, countries.Name(), logger)
	hooks.OnLoadComplete(ctx, countries.Name(), len(records), droppedC, time.Since(start), nil)
	edges, droppedL := ParseLinks(linkRows, links.Name(), logger)
	hooks.OnLoadComplete(ctx, links.Name(), len(edges), droppedL, time.Since(start), nil)

	if len(records) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyDataset, "%s: no usable country rows (%d dropped)", countries.Name(), droppedC)
	}
	warnDangling(logger, records, edges)

	ds, err := New(records, edges)
	if err != nil {
		return nil, err
	}
	logger.Debug("dataset loaded",
		"countries", len(records), "links", len(edges),
		"dropped_countries", droppedC, "dropped_links", droppedL)
	return ds, nil
}

func fetchRows(ctx context.Context, src Source) ([]Row, error) {
	hooks := observability.Load()
	hooks.OnLoadStart(ctx, src.Name())
	start := time.Now()

	rows, err := src.Rows(ctx)
	if err == nil && len(rows) == 0 {
		err = errors.New(errors.ErrCodeLoadFailed, "%s: source is empty", src.Name())
	}
	if err != nil {
		hooks.OnLoadComplete(ctx, src.Name(), 0, 0, time.Since(start), err)
		if errors.Is(err, errors.ErrCodeLoadFailed) {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeLoadFailed, err, "load %s", src.Name())
	}
	return rows, nil
}

// warnDangling logs links whose endpoints are not in the country table.
// They are kept: they still count towards the known endpoint's neighbors.
func warnDangling(logger *log.Logger, records []CountryRecord, links []LinkRecord) {
	known := make(map[string]bool, len(records))
	for _, r := range records {
		known[r.Code] = true
	}
	missing := 0
	for _, l := range links {
		if !known[l.Source] || !known[l.Target] {
			missing++
		}
	}
	if missing > 0 {
		logger.Warn("links reference unknown countries", "count", missing)
	}
}

func orDiscard(l *log.Logger) *log.Logger {
	if l != nil {
		return l
	}
	return log.New(io.Discard)
}
