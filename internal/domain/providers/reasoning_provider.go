package providers

import (
	"context"
	"errors"

	"github.com/medvend/backend/internal/domain/entities"
)

// ErrReasoningUnavailable indicates the reasoning collaborator cannot serve
// (missing credentials, transport failure, unparseable payload). Callers are
// expected to substitute the deterministic fallback recommendation.
var ErrReasoningUnavailable = errors.New("reasoning provider unavailable")

// ReasoningProvider produces a structured medicine recommendation from a
// patient profile and a retrieval context block. The provider is opaque to
// the core; only this contract is relied upon.
type ReasoningProvider interface {
	Analyze(ctx context.Context, profile entities.PatientProfile, medContext string) (*entities.Recommendation, error)
}
