package notify

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	ntfy "github.com/go-pkgz/notify"
)

var _ ntfy.Notifier = scriptNotifier{}

// scriptNotifier hands the json payload to a user executable on stdin.
// the destination passed to Send is the script path.
type scriptNotifier struct{}

func (scriptNotifier) Schema() string { return "script" }
func (scriptNotifier) String() string { return "custom script" }

// Send runs script with text on stdin. a non-zero exit is reported with the script's
// stderr, or its stdout when stderr is empty.
func (scriptNotifier) Send(ctx context.Context, script, text string) error {
	cmd := exec.CommandContext(ctx, script) //nolint:gosec // script path comes from config
	cmd.Stdin = strings.NewReader(text)
	cmd.WaitDelay = time.Second // grandchildren may hold the output pipes after a kill
	var stdout, stderr bytes.Buffer
	cmd.Stdout, cmd.Stderr = &stdout, &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("script %s: %w", script, ctx.Err())
		}
		out := strings.TrimSpace(stderr.String())
		if out == "" {
			out = strings.TrimSpace(stdout.String())
		}
		if out == "" {
			return fmt.Errorf("script %s: %w", script, err)
		}
		return fmt.Errorf("script %s: %w: %s", script, err, out)
	}
	return nil
}
