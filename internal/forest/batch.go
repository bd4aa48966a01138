package forest

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// RecordError ties a per-record failure to its identifier. Record-local
// failures (malformed input) never abort the rest of a batch.
type RecordError struct {
	Record string
	Err    error
}

func (e RecordError) Error() string {
	return fmt.Sprintf("record %q: %v", e.Record, e.Err)
}

func (e RecordError) Unwrap() error { return e.Err }

// ExtractAll decomposes records concurrently and folds the per-record
// results in input order, so catalog keys stay stable regardless of
// scheduling. Records are independent, which makes the fan-out safe without
// any shared state. workers <= 0 uses one worker per CPU. Malformed records
// are skipped and reported; only a non-positive maxLength is fatal.
func ExtractAll(ctx context.Context, records []Record, maxLength, workers int) (Result, []RecordError, error) {
	if maxLength <= 0 {
		return Result{}, nil, fmt.Errorf("%w: got %d", ErrMaxLength, maxLength)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]Result, len(records))
	errs := make([]error, len(records))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, rec := range records {
		i, rec := i, rec
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i], errs[i] = Extract(rec, maxLength)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, nil, err
	}

	var folded Result
	var recordErrs []RecordError
	for i, rec := range records {
		if errs[i] != nil {
			recordErrs = append(recordErrs, RecordError{Record: rec.Name, Err: errs[i]})
			continue
		}
		folded.Merge(results[i])
	}
	return folded, recordErrs, nil
}
