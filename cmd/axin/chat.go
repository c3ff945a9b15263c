package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kbukum/axin/api"
	"github.com/kbukum/axin/httpclient/rest"
	"github.com/kbukum/axin/stream"
)

var (
	chatID   string
	chatMode string
)

// Plan chat stream flavours, named after their backend routes.
const (
	modeSSE             = "sse"
	modeServerSentEvent = "server_sent_event"
	modeEmitter         = "sse_emitter"
)

var chatCmd = &cobra.Command{
	Use:   "chat <message>",
	Short: "Stream a reply from the plan app",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gw, err := newGateway()
		if err != nil {
			return err
		}
		id := chatIDOrNew()

		var endpoint string
		switch chatMode {
		case modeSSE:
			endpoint = gw.PlanChatSSEURL(args[0], id)
		case modeServerSentEvent:
			endpoint = gw.PlanChatServerSentEventURL(args[0], id)
		case modeEmitter:
			endpoint = gw.PlanChatEmitterURL(args[0], id)
		default:
			return fmt.Errorf("unknown --mode %q (want %s, %s or %s)", chatMode, modeSSE, modeServerSentEvent, modeEmitter)
		}

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		out := cmd.OutOrStdout()
		err = runStream(ctx, gw.Stream(endpoint), func(data string) {
			fmt.Fprint(out, data)
		})
		fmt.Fprintln(out)
		return err
	},
}

var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Ask the plan app and wait for the whole reply",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gw, err := newGateway()
		if err != nil {
			return err
		}
		reply, err := gw.ChatSync(contextOf(cmd), args[0], chatIDOrNew())
		if err != nil {
			return explain(gw, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), reply)
		return nil
	},
}

var manusCmd = &cobra.Command{
	Use:   "manus <task>",
	Short: "Run a task on the manus agent and print each step",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gw, err := newGateway()
		if err != nil {
			return err
		}
		ctx, stop := signalContext(cmd.Context())
		defer stop()

		out := cmd.OutOrStdout()
		return runStream(ctx, gw.ManusChatStream(args[0]), func(step string) {
			fmt.Fprintln(out, step)
		})
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the backend's health",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		gw, err := newGateway()
		if err != nil {
			return err
		}
		h, err := gw.Health(contextOf(cmd))
		if err != nil {
			return explain(gw, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", gw.Config().BaseURL, h.Status)
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{chatCmd, askCmd} {
		cmd.Flags().StringVar(&chatID, "chat-id", "", "conversation id (default: a new one)")
	}
	chatCmd.Flags().StringVar(&chatMode, "mode", modeSSE, "stream endpoint: sse|server_sent_event|sse_emitter")
}

func chatIDOrNew() string {
	if chatID != "" {
		return chatID
	}
	return stream.NewChatID()
}

// runStream connects sc and feeds messages to onMessage until the server's
// close event, the end of the stream, a stream error or ctx is done. The
// connection is always closed on return.
func runStream(ctx context.Context, sc *stream.Client, onMessage func(string)) error {
	done := make(chan error, 1)
	finish := func(err error) {
		select {
		case done <- err:
		default:
		}
	}

	sc.Handle(stream.KindMessage, func(data any) error {
		onMessage(fmt.Sprint(data))
		return nil
	})
	sc.Handle(stream.KindClose, func(any) error {
		finish(nil)
		return nil
	})
	sc.Handle(stream.KindError, func(data any) error {
		err, _ := data.(error)
		if errors.Is(err, stream.ErrStreamEnded) {
			err = nil
		}
		finish(err)
		return nil
	})

	sc.Connect()
	defer sc.Close()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// explain adds the backend address to failures a user can act on.
func explain(gw *api.Client, err error) error {
	switch {
	case rest.IsConnection(err):
		return fmt.Errorf("backend %s is unreachable: %w", gw.Config().BaseURL, err)
	case rest.IsTimeout(err):
		return fmt.Errorf("backend %s timed out after %s: %w", gw.Config().BaseURL, gw.Config().Timeout, err)
	case rest.IsNotFound(err):
		return fmt.Errorf("backend %s has no such endpoint: %w", gw.Config().BaseURL, err)
	case rest.IsServerError(err):
		return fmt.Errorf("backend %s failed: %w", gw.Config().BaseURL, err)
	}
	return err
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
