// Package embedding defines the text embedding capability consumed by the
// similarity and timeline engines, plus its Gemini-backed implementation.
package embedding

import (
	"context"
	"fmt"
)

// Provider converts a batch of texts into fixed-dimension vectors. A provider
// is deterministic for a fixed model version. Callers must tolerate a nil
// provider: every consumer degrades to character-level similarity when no
// provider is available.
type Provider interface {
	// Embed returns one vector per input text, all of equal dimension.
	// texts must be non-empty.
	Embed(ctx context.Context, texts []string) ([][]float64, error)
	// Name identifies the provider for logging.
	Name() string
}

// validateBatch checks the invariants shared by provider implementations.
func validateBatch(texts []string) error {
	if len(texts) == 0 {
		return fmt.Errorf("embedding: empty batch")
	}
	return nil
}
