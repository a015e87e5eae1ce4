// Package contentanalysis screens user text through an external classifier
// before it is stored.
package contentanalysis

import (
	"context"

	"github.com/anonto42/nano-social/backend/pkg/apperrors"
)

// Result is the verdict of one analysis. Success is false when the
// classifier could not be reached or answered with something unusable.
type Result struct {
	Success      bool   `json:"success"`
	IsAccepted   bool   `json:"is_accepted"`
	Reason       string `json:"reason,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

type Analyzer interface {
	Analyze(ctx context.Context, text string) Result
}

// AcceptAll approves everything. It stands in when no classifier is configured.
type AcceptAll struct{}

func (AcceptAll) Analyze(context.Context, string) Result {
	return Result{Success: true, IsAccepted: true}
}

// Screen turns a verdict into an error: UpstreamUnavailable when analysis
// failed, ValidationFailed with the classifier's reason when rejected.
func Screen(result Result) error {
	if !result.Success {
		return apperrors.Upstream("content could not be verified, please try again", nil)
	}
	if !result.IsAccepted {
		reason := result.Reason
		if reason == "" {
			reason = "content was rejected by moderation"
		}
		return apperrors.Validation(reason)
	}
	return nil
}
