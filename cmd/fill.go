package cmd

import (
	"errors"
	"fmt"
	"html"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/microcosm-cc/bluemonday"
	"github.com/spf13/cobra"

	"github.com/parisxmas/OxiDB/OxiForms/internal/client"
	"github.com/parisxmas/OxiDB/OxiForms/internal/prompt"
	"github.com/parisxmas/OxiDB/OxiForms/internal/wizard"
)

var baseURL string

var fillCmd = &cobra.Command{
	Use:   "fill [slug]",
	Short: "Fill in a published form step by step in the terminal",
	Args:  cobra.ExactArgs(1),
	RunE:  runFill,
}

func init() {
	fillCmd.Flags().StringVar(&baseURL, "url", "", "API base URL (defaults to client.base_url)")
}

func runFill(cmd *cobra.Command, args []string) error {
	cfg, log, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()
	if baseURL == "" {
		baseURL = cfg.Client.BaseURL
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := client.New(baseURL, nil)
	pf, err := api.FetchForm(ctx, args[0])
	if errors.Is(err, client.ErrFormNotFound) {
		return fmt.Errorf("form %q was not found or is not published", args[0])
	}
	if err != nil {
		return err
	}

	renderer := prompt.NewRenderer(ctx, prompt.NewSurveyDriver())
	session, err := wizard.NewSession(wizard.Config{
		FormID:         strconv.FormatInt(pf.Form.ID, 10),
		Steps:          pf.Steps,
		Renderer:       renderer,
		Submitter:      api,
		SuccessMessage: pf.Form.SuccessMessage(),
		SubmitLabel:    pf.Form.Settings.SubmitButtonText,
		Logger:         log,
	})
	if err != nil {
		return err
	}
	defer session.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n", pf.Form.Title)
	p := newProgressPrinter(out)
	session.OnChange(p.print)
	if err := session.Start(ctx); err != nil {
		return err
	}

	select {
	case <-session.Done():
		return nil
	case <-renderer.Aborted():
		fmt.Fprintln(out, "Cancelled.")
		return nil
	case err := <-p.stuck:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// progressPrinter writes a line for every step change, failure and the
// final confirmation.
type progressPrinter struct {
	mu    sync.Mutex
	w     io.Writer
	strip *bluemonday.Policy
	last  wizard.Snapshot
	seen  bool
	stuck chan error
}

func newProgressPrinter(w io.Writer) *progressPrinter {
	return &progressPrinter{w: w, strip: bluemonday.StrictPolicy(), stuck: make(chan error, 1)}
}

func (p *progressPrinter) print(s wizard.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	prev, seen := p.last, p.seen
	p.last, p.seen = s, true

	switch s.Phase {
	case wizard.PhaseSubmitting:
		if !seen || prev.Phase != wizard.PhaseSubmitting {
			fmt.Fprintln(p.w, "Submitting...")
		}
		return
	case wizard.PhaseComplete:
		msg := strings.TrimSpace(html.UnescapeString(p.strip.Sanitize(s.SuccessMessage)))
		fmt.Fprintf(p.w, "%s (submission #%d)\n", msg, s.SubmissionID)
		return
	case wizard.PhaseFailed:
		fmt.Fprintf(p.w, "Error: %s\n", s.Error)
		return
	}

	if s.Error != "" {
		// The active step can no longer take input.
		fmt.Fprintf(p.w, "Error: %s\n", s.Error)
		fmt.Fprintln(p.w, "Aborting: the form cannot continue.")
		select {
		case p.stuck <- errors.New(s.Error):
		default:
		}
		return
	}
	if !seen || prev.Current != s.Current || prev.Phase != s.Phase {
		fmt.Fprintf(p.w, "\nStep %d of %d: %s\n", s.Current+1, s.Total, s.Title)
	}
}
