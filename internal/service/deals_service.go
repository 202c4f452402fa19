package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	apperrors "mellow/internal/errors"
)

// DealsService serves the static deals feed.
type DealsService interface {
	// Feed returns the current feed file verbatim. The file is read on every call,
	// so a pipeline run is visible without a restart.
	Feed(ctx context.Context) (json.RawMessage, error)
}

type dealsService struct {
	path   string
	logger *zap.Logger
}

// NewDealsService creates a service reading the feed from path.
func NewDealsService(path string, logger *zap.Logger) DealsService {
	return &dealsService{path: path, logger: logger.Named("deals")}
}

func (s *dealsService) Feed(ctx context.Context) (json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		s.logger.Error("read deals file", zap.String("path", s.path), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", apperrors.ErrDealsUnavailable, err)
	}
	if !json.Valid(data) {
		s.logger.Error("deals file is not valid JSON", zap.String("path", s.path))
		return nil, fmt.Errorf("%w: invalid JSON in %s", apperrors.ErrDealsUnavailable, s.path)
	}
	return data, nil
}
