package workflow

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/fotocheck/fotocheck/internal/gateway"
	"github.com/fotocheck/fotocheck/internal/rubric"
)

// Runtime bundles the dependencies that workflow nodes require.
// It is constructed by higher-level composition code from Infrastructure systems.
type Runtime struct {
	Gateway    gateway.System
	Config     *gateway.Config
	Rubric     *rubric.Config
	Normalizer *rubric.Normalizer
	Logger     *slog.Logger

	agentID atomic.Pointer[string]
}

// NewRuntime creates a workflow runtime with a normalizer bound to the
// rubric configuration.
func NewRuntime(
	gw gateway.System,
	cfg *gateway.Config,
	rubricCfg *rubric.Config,
	logger *slog.Logger,
) *Runtime {
	return &Runtime{
		Gateway:    gw,
		Config:     cfg,
		Rubric:     rubricCfg,
		Normalizer: rubric.NewNormalizer(rubricCfg, logger),
		Logger:     logger.With("system", "workflow"),
	}
}

// resolveAgent returns the cached agent id, creating the agent on first use.
// Two concurrent first calls may both create an agent; the loser's agent is
// simply never used again, which the service tolerates over serializing
// every evaluation behind a lock.
func (rt *Runtime) resolveAgent(ctx context.Context) (string, error) {
	if id := rt.agentID.Load(); id != nil {
		return *id, nil
	}

	id, err := rt.Gateway.CreateAgent(ctx)
	if err != nil {
		return "", err
	}

	rt.agentID.CompareAndSwap(nil, &id)
	return *rt.agentID.Load(), nil
}
