// Package runner processes a batch of extraction items sequentially,
// producing one normalized result record per item.
package runner

import (
	"context"
	"fmt"

	"pagegrab/internal/fetcher"

	"github.com/charmbracelet/log"
)

// Record statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Record is the normalized per-item output consumed by the host.
type Record struct {
	Status    string            `json:"status"`
	Message   string            `json:"message"`
	Operation fetcher.Operation `json:"operation,omitempty"`
	ItemIndex int               `json:"itemIndex"`
	Data      *fetcher.Result   `json:"data,omitempty"`
}

// Runner executes items one at a time. Items never run concurrently and
// never share fetch sessions, so a failure in one item cannot affect
// the others.
type Runner struct {
	Fetcher *fetcher.Fetcher

	// ContinueOnError captures a failed item as an error record and
	// moves on. When false, the first failure aborts the batch.
	ContinueOnError bool

	Log *log.Logger
}

// New returns a Runner around the given fetcher.
func New(f *fetcher.Fetcher) *Runner {
	return &Runner{Fetcher: f, Log: log.Default()}
}

// Run processes the items in order. With ContinueOnError set, the
// returned slice always holds one record per item; otherwise Run stops
// at the first failure and returns it wrapped with the item index.
func (r *Runner) Run(ctx context.Context, items []Item) ([]Record, error) {
	records := make([]Record, 0, len(items))

	for i, item := range items {
		rec, err := r.runItem(ctx, i, item)
		if err != nil {
			if !r.ContinueOnError {
				return records, fmt.Errorf("item %d: %w", i, err)
			}
			r.Log.Error("item failed", "item", i, "url", item.URL, "err", err)
			records = append(records, Record{
				Status:    StatusError,
				Message:   err.Error(),
				Operation: fetcher.Operation(item.Operation),
				ItemIndex: i,
			})
			continue
		}
		records = append(records, *rec)
	}

	return records, nil
}

func (r *Runner) runItem(ctx context.Context, index int, item Item) (*Record, error) {
	op, err := fetcher.ParseOperation(item.Operation)
	if err != nil {
		return nil, err
	}

	cfg, err := item.Config()
	if err != nil {
		return nil, err
	}

	r.Log.Debug("fetching", "item", index, "url", cfg.URL, "operation", op, "browser", cfg.UseBrowser)

	res, err := r.Fetcher.Fetch(ctx, cfg, op)
	if err != nil {
		return nil, err
	}

	return &Record{
		Status:    StatusSuccess,
		Message:   fmt.Sprintf("%s succeeded for %s", op, cfg.URL),
		Operation: op,
		ItemIndex: index,
		Data:      res,
	}, nil
}
