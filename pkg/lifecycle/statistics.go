package lifecycle

import (
	"context"
	"fmt"

	"github.com/modelmill/modelmill/pkg/dataset"
)

// Statistics computes model-quality statistics from an estimator and
// its data splits. The computation itself is out of this package's
// hands: callers bring an implementation fitting their estimator.
//
// Each method returns its statistic as the JSON document stored with
// the model. Any split may be nil; implementations decide what they
// can compute from what remains.
type Statistics interface {
	Lift(ctx context.Context, e Estimator, train, valid, test *dataset.Frame) ([]byte, error)
	FitStatistics(ctx context.Context, e Estimator, train, valid, test *dataset.Frame) ([]byte, error)
	ROC(ctx context.Context, e Estimator, train, valid, test *dataset.Frame) ([]byte, error)
}

// computeStatistics evaluates each statistic into its file. A
// statistic whose file the caller already supplied is left alone.
func computeStatistics(
	ctx context.Context, st Statistics, e Estimator, conf *registerConfig,
) ([]File, error) {
	measures := []struct {
		name    string
		compute func(context.Context, Estimator, *dataset.Frame, *dataset.Frame, *dataset.Frame) ([]byte, error)
	}{
		{liftFile, st.Lift},
		{fitStatFile, st.FitStatistics},
		{rocFile, st.ROC},
	}

	files := []File{}
	for _, m := range measures {
		if filesContain(conf.files, m.name) {
			continue
		}
		content, err := m.compute(ctx, e, conf.train, conf.valid, conf.test)
		if err != nil {
			return nil, fmt.Errorf("cannot compute %s: %w", m.name, err)
		}
		files = append(files, File{Name: m.name, Content: content})
	}
	return files, nil
}
