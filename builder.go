package authcore

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	internalaudit "github.com/MrEthical07/authcore/internal/audit"
	internalmetrics "github.com/MrEthical07/authcore/internal/metrics"
	"github.com/MrEthical07/authcore/jwt"
	"github.com/MrEthical07/authcore/refresh"
)

// Builder assembles an [Engine]. Construction is allocation-only; no I/O
// happens until the engine's methods are called.
type Builder struct {
	config Config
	redis  redis.UniversalClient
	store  refresh.Store

	verifier  CredentialVerifier
	auditSink AuditSink
	logger    *slog.Logger

	built bool
}

// New returns a [Builder] preloaded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the builder's configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis backs the refresh ledger with Redis. Ignored when an explicit
// store is supplied through [Builder.WithStore].
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithStore backs the refresh ledger with an explicit [refresh.Store]
// (Postgres, in-memory, or a custom implementation).
func (b *Builder) WithStore(store refresh.Store) *Builder {
	b.store = store
	return b
}

// WithCredentialVerifier sets the external credential-store collaborator.
func (b *Builder) WithCredentialVerifier(v CredentialVerifier) *Builder {
	b.verifier = v
	return b
}

// WithAuditSink sets the destination for audit events.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger sets the structured logger. Without one the engine is silent.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration, wires the dependencies, and returns a
// ready [Engine]. A builder can be used once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	store := b.store
	if store == nil {
		if b.redis == nil {
			return nil, errors.New("refresh store required: supply WithStore or WithRedis")
		}
		store = refresh.NewRedisStore(b.redis, cfg.Refresh.RedisPrefix)
	}

	if b.verifier == nil {
		return nil, errors.New("credential verifier required")
	}

	jm, err := jwt.NewManager(jwt.Config{
		Secret:    cloneBytes(cfg.JWT.Secret),
		AccessTTL: cfg.JWT.AccessTTL,
		Issuer:    cfg.JWT.Issuer,
		Now:       cfg.Now,
	})
	if err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	engine := &Engine{
		config:   cfg,
		jwt:      jm,
		store:    store,
		verifier: b.verifier,
		logger:   logger,
		metrics: internalmetrics.New(internalmetrics.Config{
			Enabled: cfg.Metrics.Enabled,
		}),
		audit: internalaudit.NewDispatcher(internalaudit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink),
	}

	b.built = true
	return engine, nil
}
