package graph

import "context"

type runInfoKey struct{}

// RunInfo identifies the run a node executes in.
type RunInfo struct {
	RunID    string
	ThreadID string
	Step     int

	// ResumedVersion is the version of the checkpoint the run resumed
	// from, 0 for a fresh run.
	ResumedVersion int
}

func withRunInfo(ctx context.Context, info RunInfo) context.Context {
	return context.WithValue(ctx, runInfoKey{}, info)
}

// RunInfoFromContext returns the run information the executor attached to
// the context passed to nodes and listeners.
func RunInfoFromContext(ctx context.Context) (RunInfo, bool) {
	info, ok := ctx.Value(runInfoKey{}).(RunInfo)
	return info, ok
}
