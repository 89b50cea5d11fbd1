package relay

import (
	"context"

	"go.uber.org/zap"

	"github.com/anicoll/iotawatt-chargehq/internal/pkg/config"
	"github.com/anicoll/iotawatt-chargehq/internal/pkg/model"
)

type source interface {
	Query(ctx context.Context) (model.Reading, error)
}

type sink interface {
	Push(ctx context.Context, data []byte) (string, error)
}

type mirror interface {
	Len() int
	Publish(ctx context.Context, meters model.SiteMeters) error
}

type Relay struct {
	cfg     *config.Config
	source  source
	sink    sink
	mirrors mirror
	logger  *zap.Logger
}

// Outcome describes a single relay run. It is only used for logging and is never persisted.
type Outcome struct {
	Payload   model.Payload
	Response  string
	SourceErr error
	PushErr   error
	MirrorErr error
}

// New creates a relay. mirrors may be nil.
func New(cfg *config.Config, src source, dst sink, mirrors mirror) *Relay {
	return &Relay{
		cfg:     cfg,
		source:  src,
		sink:    dst,
		mirrors: mirrors,
		logger:  zap.L(),
	}
}

func (r *Relay) WithLogger(logger *zap.Logger) *Relay {
	r.logger = logger
	return r
}

// Run fetches one reading, posts the derived site meters (or the fetch error) and logs the result.
// HTTP failures are logged and returned in the Outcome, they are never retried.
func (r *Relay) Run(ctx context.Context) Outcome {
	apiKey := r.cfg.ChargeHQCfg.APIKey
	out := Outcome{}

	var meters *model.SiteMeters
	reading, err := r.source.Query(ctx)
	if err != nil {
		out.SourceErr = err
		r.logger.Error("unable to read data", zap.Error(err))
		out.Payload = model.NewErrorPayload(apiKey, "Unable to read data: "+err.Error())
	} else {
		r.logger.Info("iotawatt collection successful", zap.Any("reading", reading))
		m := model.NewSiteMeters(reading)
		meters = &m
		out.Payload = model.NewMeterPayload(apiKey, m)
	}

	payload, err := out.Payload.Encode()
	if err != nil {
		r.logger.Error("unable to encode site meters", zap.Error(err), zap.Any("reading", reading))
		out.Payload = model.NewErrorPayload(apiKey, "Unable to encode data: "+err.Error())
		meters = nil
		if payload, err = out.Payload.Encode(); err != nil {
			out.PushErr = err
			return out
		}
	}

	out.Response, out.PushErr = r.sink.Push(ctx, payload)
	if out.PushErr != nil {
		r.logger.Error("error sending data to chargehq",
			zap.Error(out.PushErr),
			zap.ByteString("payload", payload),
			zap.String("response", out.Response),
		)
	} else {
		r.logger.Info("data sent to chargehq", zap.ByteString("payload", payload))
		r.logger.Info("chargehq response", zap.String("response", out.Response))
	}

	if meters != nil && r.mirrors != nil && r.mirrors.Len() > 0 {
		if out.MirrorErr = r.mirrors.Publish(ctx, *meters); out.MirrorErr != nil {
			r.logger.Warn("failed to mirror site meters", zap.Error(out.MirrorErr))
		}
	}
	return out
}
