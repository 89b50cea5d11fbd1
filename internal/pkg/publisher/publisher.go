package publisher

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/anicoll/iotawatt-chargehq/internal/pkg/model"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

var ErrAlreadyRegistered = errors.New("publisher already registered")

type publisher interface {
	// Write mirrors the derived site meters to the publisher's sink.
	Write(ctx context.Context, meters model.SiteMeters) error
}

// Registry fans site meters out to optional mirror publishers.
type Registry struct {
	publishers map[string]publisher
	logger     *zap.Logger
}

func New(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.L()
	}
	return &Registry{
		publishers: make(map[string]publisher),
		logger:     logger,
	}
}

func (r *Registry) Register(name string, p publisher) error {
	if _, ok := r.publishers[name]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, name)
	}
	r.publishers[name] = p
	return nil
}

func (r *Registry) Len() int {
	return len(r.publishers)
}

// Publish writes to every publisher in name order. A failing publisher does not stop the others.
func (r *Registry) Publish(ctx context.Context, meters model.SiteMeters) error {
	names := lo.Keys(r.publishers)
	slices.Sort(names)

	var errs []error
	for _, name := range names {
		if err := r.publishers[name].Write(ctx, meters); err != nil {
			r.logger.Error("failed to publish data", zap.Error(err), zap.String("publisher", name))
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		r.logger.Debug("published site meters", zap.String("publisher", name), zap.Any("site_meters", meters))
	}
	return errors.Join(errs...)
}
