package llm

import "context"

// Completer is the capability interface over the external text-completion
// service. Implementations apply their own per-call timeout; transient
// failures are reported as common.ErrServiceUnavailable or common.ErrTimeout
// so call sites can retry.
type Completer interface {
	Complete(ctx context.Context, prompt, input string) (string, error)
}
