package contentanalysis

import (
	"context"
	"testing"

	"github.com/anonto42/nano-social/backend/pkg/apperrors"
	"github.com/stretchr/testify/assert"
)

func TestScreen(t *testing.T) {
	assert.NoError(t, Screen(Result{Success: true, IsAccepted: true}))

	err := Screen(Result{ErrorMessage: "boom"})
	assert.True(t, apperrors.Is(err, apperrors.CodeUpstreamUnavailable))

	err = Screen(Result{Success: true, Reason: "spam"})
	assert.True(t, apperrors.Is(err, apperrors.CodeValidationFailed))
	assert.Contains(t, err.Error(), "spam")

	err = Screen(Result{Success: true})
	assert.Contains(t, err.Error(), "rejected by moderation")
}

func TestAcceptAll(t *testing.T) {
	r := AcceptAll{}.Analyze(context.Background(), "anything")
	assert.True(t, r.Success)
	assert.True(t, r.IsAccepted)
}
