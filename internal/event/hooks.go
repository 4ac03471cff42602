package event

import (
	"context"

	"go.uber.org/zap"
)

type postCommitHook struct {
	name string
	fn   func(ctx context.Context) error
}

// postCommit collects side effects that only run once the surrounding
// transaction has committed. Failures are logged and dropped.
type postCommit struct {
	hooks []postCommitHook
}

func (p *postCommit) add(name string, fn func(ctx context.Context) error) {
	p.hooks = append(p.hooks, postCommitHook{name: name, fn: fn})
}

// run executes the hooks in order. The request context may already be
// cancelled by the time a slow hook starts, so cancellation is detached.
func (p *postCommit) run(ctx context.Context, log *zap.Logger) {
	ctx = context.WithoutCancel(ctx)
	for _, h := range p.hooks {
		if err := h.fn(ctx); err != nil {
			log.Warn("⚠️ post-commit hook failed", zap.String("hook", h.name), zap.Error(err))
		}
	}
}
