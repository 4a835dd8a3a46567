package rest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelmill/modelmill/pkg/api/types/publish"
	"github.com/modelmill/modelmill/pkg/utils/retry"
)

// DefaultPollAttempts bounds publish-job polling when the caller gives
// no backoff of its own.
const DefaultPollAttempts = 60

// DefaultPollInterval paces publish-job polling when the caller gives
// no backoff of its own.
const DefaultPollInterval = 500 * time.Millisecond

// ErrJobNotSettled tells that polling stopped before the job reached a
// settled state.
var ErrJobNotSettled = errors.New("publish job did not settle")

// AwaitJob polls a publish job until it settles.
//
// backoff paces the polls and bounds them; nil means
// DefaultPollAttempts polls every DefaultPollInterval. When the bound
// runs out, the last observed job is returned along with an error
// wrapping ErrJobNotSettled.
func AwaitJob(
	ctx context.Context, p Publisher, job *publish.Job, backoff retry.Backoff,
) (*publish.Job, error) {
	if job.Settled() {
		return job, nil
	}
	if backoff == nil {
		backoff = retry.MaxAttempts(
			DefaultPollAttempts, retry.StaticBackoff(DefaultPollInterval),
		)
	}

	polled, err := retry.Blocking(ctx, backoff, func() (*publish.Job, error) {
		j, err := p.GetJob(ctx, job.ID)
		if err != nil {
			return nil, err
		}
		if !j.Settled() {
			return j, retry.ErrRetry
		}
		return j, nil
	})

	if err == nil {
		return polled, nil
	}
	if errors.Is(err, retry.ErrExhausted) {
		last := polled
		if last == nil {
			last = job
		}
		return last, fmt.Errorf(
			"%w: job %s still %q when polling gave up",
			ErrJobNotSettled, job.ID, last.State,
		)
	}
	return nil, err
}
