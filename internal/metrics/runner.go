package metrics

import (
	"context"
	"strings"
	"time"

	"github.com/craftd/craftd/internal/platform/ssh"
)

// instrumentedRunner measures every remote command, labeled by the
// leading word of the command line to keep cardinality bounded.
type instrumentedRunner struct {
	next ssh.Runner
}

// InstrumentRunner wraps a Runner with remote command metrics.
func InstrumentRunner(next ssh.Runner) ssh.Runner {
	return &instrumentedRunner{next: next}
}

func (r *instrumentedRunner) Run(ctx context.Context, command string) (string, error) {
	start := time.Now()
	out, err := r.next.Run(ctx, command)

	op, _, _ := strings.Cut(command, " ")
	RecordRemoteCommand(op, err == nil, time.Since(start))
	return out, err
}
