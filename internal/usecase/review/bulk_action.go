package review

import (
	"context"
	"errors"
	"sync"

	"reeldesk/internal/errs"
)

var errNoSubmissionIDs = errors.New("at least one submission id is required")

// ApplyBulkAction fans one action out over many submissions. Each id is an
// independent compare-and-swap target: one submission failing (permission,
// illegal transition for its current state, missing feedback) neither blocks
// nor rolls back the others, and the batch never reports a single collapsed
// outcome. Re-running a batch against already-terminal submissions yields a
// deterministic per-id illegal-transition failure, not a silent no-op.
func (s *Service) ApplyBulkAction(ctx context.Context, input BulkActionInput) (BulkActionResult, error) {
	if ctx == nil {
		return BulkActionResult{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return BulkActionResult{}, errs.Wrap(err, "check context")
	}

	ids := dedupeIDs(input.SubmissionIDs)
	if len(ids) == 0 {
		return BulkActionResult{}, errNoSubmissionIDs
	}

	workers := s.bulkWorkers
	if workers <= 0 {
		workers = defaultBulkWorkers
	}
	if workers > len(ids) {
		workers = len(ids)
	}

	items := make(map[string]BulkItemResult, len(ids))
	var itemsMu sync.Mutex
	jobs := make(chan string)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				// Workers share only the read-only action/feedback payload.
				result, err := s.ApplyAction(ctx, ApplyActionInput{
					SubmissionID:   id,
					ActorID:        input.ActorID,
					ActorRole:      input.ActorRole,
					Action:         input.Action,
					Feedback:       input.Feedback,
					SchedulingHint: input.SchedulingHint,
				})

				itemsMu.Lock()
				if err != nil {
					items[id] = BulkItemResult{Err: err}
				} else {
					items[id] = BulkItemResult{Result: result}
				}
				itemsMu.Unlock()
			}
		}()
	}

	for _, id := range ids {
		jobs <- id
	}
	close(jobs)
	wg.Wait()

	return BulkActionResult{Items: items}, nil
}
