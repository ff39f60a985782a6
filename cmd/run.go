package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	statusadapter "github.com/bnema/miniapp-telemetry/internal/adapters/render/status"
	"github.com/bnema/miniapp-telemetry/internal/application"
	"github.com/bnema/miniapp-telemetry/internal/domain"
	"github.com/spf13/cobra"
)

const defaultDrainTimeout = 15 * time.Second

func newRunCmd(app *app) *cobra.Command {
	var teardownTimeout time.Duration
	var drainTimeout time.Duration

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Drive one page lifecycle from events read on stdin",
		Long: `run boots the page (register, then start) and reads one event per line:

  pointerdown | keydown | touchstart   first gesture starts the session
  hidden                               page hidden, ends the session
  end [reason]                         external end call
  status                               print identity and session state

EOF, SIGINT and SIGTERM unload the page: the end call is issued detached and
awaited for at most --drain-timeout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lifecycle, err := app.newLifecycle()
			if err != nil {
				return err
			}
			lifecycle.WithTeardownTimeout(teardownTimeout)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runLifecycle(ctx, cmd, app, lifecycle, drainTimeout)
		},
	}

	cmd.Flags().DurationVar(&teardownTimeout, "teardown-timeout", application.DefaultTeardownTimeout, "Deadline for the detached unload end call")
	cmd.Flags().DurationVar(&drainTimeout, "drain-timeout", defaultDrainTimeout, "How long to wait for the unload end call before exiting")

	return cmd
}

func runLifecycle(ctx context.Context, cmd *cobra.Command, app *app, lifecycle *application.Lifecycle, drainTimeout time.Duration) error {
	out := cmd.OutOrStdout()

	lifecycle.Boot(ctx)
	if _, err := fmt.Fprintf(out, "boot: %s\n", lifecycle.State()); err != nil {
		return err
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(cmd.InOrStdin())
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return unload(cmd, lifecycle, drainTimeout)
		case line, ok := <-lines:
			if !ok {
				return unload(cmd, lifecycle, drainTimeout)
			}
			if err := handleEvent(ctx, cmd, app, lifecycle, line); err != nil {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), err)
			}
		}
	}
}

func handleEvent(ctx context.Context, cmd *cobra.Command, app *app, lifecycle *application.Lifecycle, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	out := cmd.OutOrStdout()
	switch event := fields[0]; event {
	case string(domain.TriggerPointerDown), string(domain.TriggerKeyDown), string(domain.TriggerTouchStart):
		if lifecycle.Trigger(ctx, domain.StartTrigger(event)) {
			_, err := fmt.Fprintf(out, "%s: start triggered\n", event)
			return err
		}
		_, err := fmt.Fprintf(out, "%s: already %s\n", event, lifecycle.State())
		return err
	case "hidden":
		return writeTriggeredEnd(cmd, lifecycle.End(ctx, domain.EndVisibilityHidden, ""))
	case "end":
		return writeTriggeredEnd(cmd, lifecycle.End(ctx, domain.EndExternal, strings.Join(fields[1:], " ")))
	case "status":
		record, ok := lifecycle.LoadSession(ctx)
		return writeSnapshot(cmd, app, statusadapter.Snapshot{
			Resolution: lifecycle.Resolution(),
			Session:    record,
			HasSession: ok,
			State:      lifecycle.State(),
		}, true)
	default:
		return fmt.Errorf("unknown event %q", event)
	}
}

func unload(cmd *cobra.Command, lifecycle *application.Lifecycle, drainTimeout time.Duration) error {
	done := lifecycle.EndDetached(domain.EndUnload, "")
	if !lifecycle.Drain(drainTimeout) {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: end call still in flight after %s\n", domain.EndUnload, drainTimeout)
		return err
	}

	result, ok := <-done
	if !ok {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: end call aborted\n", domain.EndUnload)
		return err
	}
	return writeTriggeredEnd(cmd, result)
}

func writeTriggeredEnd(cmd *cobra.Command, result domain.EndResult) error {
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: ", result.Trigger); err != nil {
		return err
	}
	return writeEndResult(cmd, result)
}
