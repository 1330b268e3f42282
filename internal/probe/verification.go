package probe

import (
	"fmt"

	"github.com/okian/churnboard/internal/adapters/http/api"
	"github.com/okian/churnboard/internal/domain/features"
	"github.com/okian/churnboard/internal/domain/insight"
	"github.com/okian/churnboard/internal/domain/predict"
)

// Verify checks that a response agrees with itself: the label picks the
// verdict, the heading and the narrative, and every view counts the same
// subset.
func Verify(resp *api.PredictResponse) error {
	label := predict.Label(resp.Label)
	if !label.Valid() {
		return fmt.Errorf("%w: label %d", ErrInconsistent, resp.Label)
	}
	if resp.Verdict != label.Verdict() {
		return fmt.Errorf("%w: verdict %q for label %d", ErrInconsistent, resp.Verdict, resp.Label)
	}
	if len(resp.Features) != features.Width || len(resp.Columns) != features.Width {
		return fmt.Errorf("%w: %d features", ErrInconsistent, len(resp.Features))
	}
	in := resp.Insight
	if in.Label != label || in.Verdict != resp.Verdict {
		return fmt.Errorf("%w: insight rendered for label %d", ErrInconsistent, in.Label)
	}
	if want := insight.NarrativeFor(label).Title; in.Narrative.Title != want {
		return fmt.Errorf("%w: narrative %q, want %q", ErrInconsistent, in.Narrative.Title, want)
	}
	if in.Satisfaction.N != in.SubsetSize || in.Evaluation.N != in.SubsetSize || in.Projects.Total() != in.SubsetSize {
		return fmt.Errorf("%w: views disagree on subset size %d", ErrInconsistent, in.SubsetSize)
	}
	var binned int
	for _, b := range in.Satisfaction.Bins {
		binned += b.Count
	}
	if binned != in.SubsetSize {
		return fmt.Errorf("%w: histogram holds %d of %d records", ErrInconsistent, binned, in.SubsetSize)
	}
	return nil
}
