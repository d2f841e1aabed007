package batch

import (
	"context"
	"fmt"

	"github.com/packforge/packforge/internal/drafts"
	"github.com/packforge/packforge/internal/pipeline"
)

// DraftRunner is the production JobRunner: it generates one seed's pack
// through the pipeline and saves the result as a draft on disk.
type DraftRunner struct {
	Pipeline *pipeline.Pipeline
	Drafts   *drafts.Store
	Mode     string

	// SingleShot selects the combined one-request job. Parallel batches use
	// it to keep round-trips per seed at one.
	SingleShot bool
}

// RunSeed generates and persists one character pack, returning the draft
// directory. index is the seed's position in the batch, used to synthesize
// an identifier when the model output carries no usable name.
func (r *DraftRunner) RunSeed(ctx context.Context, seed string, index int) (string, error) {
	var (
		result *pipeline.Result
		err    error
	)
	if r.SingleShot {
		result, err = r.Pipeline.RunSingleShot(ctx, seed, r.Mode)
	} else {
		result, err = r.Pipeline.Run(ctx, seed, r.Mode)
	}
	if err != nil {
		return "", err
	}

	identifier := result.Identifier
	if !result.IdentifierFound {
		identifier = fmt.Sprintf("character_%03d", index+1)
	}

	return r.Drafts.Save(seed, identifier, result.Assets)
}
