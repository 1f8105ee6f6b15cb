package postprocess

import (
	"github.com/srcmeta/srcmeta/internal/pipeline"
)

// TokenEstimator attaches a rough LLM token count to each record so the
// downstream context assembler can budget without re-reading content.
type TokenEstimator struct {
	// BytesPerToken approximates tokenizer density; 4 is the usual rule of
	// thumb for code-heavy English text.
	BytesPerToken int
}

// NewTokenEstimator returns an estimator with the default density.
func NewTokenEstimator() *TokenEstimator {
	return &TokenEstimator{BytesPerToken: 4}
}

// Process sets the record's token estimate from the raw content length.
func (t *TokenEstimator) Process(content []byte, record *pipeline.FileRecord) {
	bpt := t.BytesPerToken
	if bpt <= 0 {
		bpt = 4
	}
	record.TokenEstimate = (len(content) + bpt - 1) / bpt
}
