package testutil

import (
	"context"

	"github.com/anonto42/nano-social/backend/internal/contentanalysis"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockAnalyzer is a testify mock of contentanalysis.Analyzer.
type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) Analyze(ctx context.Context, text string) contentanalysis.Result {
	args := m.Called(ctx, text)
	return args.Get(0).(contentanalysis.Result)
}

// MockModerationLog is a testify mock of repositories.ModerationLogRepository.
type MockModerationLog struct {
	mock.Mock
}

func (m *MockModerationLog) Record(ctx context.Context, record *models.ModerationRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockModerationLog) ListRecent(ctx context.Context, limit int64) ([]models.ModerationRecord, error) {
	args := m.Called(ctx, limit)
	if records := args.Get(0); records != nil {
		return records.([]models.ModerationRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockModerationLog) ListByUser(ctx context.Context, userID uint, limit int64) ([]models.ModerationRecord, error) {
	args := m.Called(ctx, userID, limit)
	if records := args.Get(0); records != nil {
		return records.([]models.ModerationRecord), args.Error(1)
	}
	return nil, args.Error(1)
}
