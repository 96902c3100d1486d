package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vidyasagar/petsurf/internal/browser"
	"github.com/vidyasagar/petsurf/internal/chrome"
	"github.com/vidyasagar/petsurf/internal/lastvisit"
	"github.com/vidyasagar/petsurf/internal/logging"
	"github.com/vidyasagar/petsurf/internal/storage"
	"github.com/vidyasagar/petsurf/internal/theme"
	"github.com/vidyasagar/petsurf/internal/userscript"
)

// errNothingRemembered makes `petsurf last` exit non-zero.
var errNothingRemembered = errors.New("no petition remembered")

// dumpCmd renders one page to stdout
var dumpCmd = &cobra.Command{
	Use:   "dump <petition | url | query>",
	Short: "Render a page to stdout",
	Long: `Load a page the way the browser does, running the petition script
first, and print the rendered text.

Dumping the site home page with a remembered petition prints that petition.`,
	Args: cobra.ExactArgs(1),
	RunE: runDump,
}

// chromeCmd runs the petition script in a real Chrome
var chromeCmd = &cobra.Command{
	Use:   "chrome [url]",
	Short: "Run the petition script inside Chrome",
	Long: `Launch Chrome (or attach to one with --control-url) and run the
last-visited-petition script on every page load of the petition site,
against the page's own localStorage and session history.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChrome,
}

// lastCmd prints the remembered petition
var lastCmd = &cobra.Command{
	Use:   "last",
	Short: "Print the remembered petition number",
	Args:  cobra.NoArgs,
	RunE:  runLast,
}

// forgetCmd clears the remembered petition
var forgetCmd = &cobra.Command{
	Use:   "forget",
	Short: "Forget the remembered petition",
	Args:  cobra.NoArgs,
	RunE:  runForget,
}

// visitsCmd lists recorded page loads
var visitsCmd = &cobra.Command{
	Use:   "visits",
	Short: "List recent page loads and what the petition script did",
	Args:  cobra.NoArgs,
	RunE:  runVisits,
}

var (
	dumpWidth     int
	controlURL    string
	visitsLimit   int
	clearVisits   bool
	chromeTimeout time.Duration
)

func init() {
	dumpCmd.Flags().IntVarP(&dumpWidth, "width", "w", 100, "render width")

	chromeCmd.Flags().StringVar(&controlURL, "control-url", "", "DevTools websocket URL of a running browser")
	chromeCmd.Flags().DurationVar(&chromeTimeout, "timeout", 0, "stop after this long (0 runs until interrupted)")

	visitsCmd.Flags().IntVarP(&visitsLimit, "limit", "n", 20, "number of visits to show")
	visitsCmd.Flags().BoolVar(&clearVisits, "clear", false, "delete all recorded visits")

	rootCmd.AddCommand(dumpCmd, chromeCmd, lastCmd, forgetCmd, visitsCmd)
}

func runDump(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, false)
	if err != nil {
		return err
	}
	defer s.close()

	loader, err := s.loader()
	if err != nil {
		return err
	}

	page, err := loader.Load(cmd.Context(), browser.NewHistory(), args[0], browser.PushEntry, dumpWidth)
	if err != nil {
		return err
	}
	if page.Navigation.Status != "" {
		fmt.Fprintf(os.Stderr, "↩ %s\n", page.Navigation.Status)
	}
	fmt.Fprintln(cmd.OutOrStdout(), page.Content)

	for _, link := range page.Links {
		fmt.Fprintf(cmd.OutOrStdout(), "[%d] %s\n", link.Index, link.URL)
	}
	return nil
}

func runChrome(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := logging.NewConsole(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if controlURL == "" {
		bin, err := chrome.Available(cfg.Chrome.Bin)
		if err != nil {
			return err
		}
		logger.Debug("using chrome", zap.String("bin", bin))
	}

	startURL := cfg.Homepage
	if len(args) > 0 {
		startURL = browser.NormalizeURL(args[0])
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if chromeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, chromeTimeout)
		defer cancel()
	}

	driver := chrome.New(chrome.Options{
		Bin:        cfg.Chrome.Bin,
		Headless:   cfg.Chrome.Headless,
		ControlURL: controlURL,
		StartURL:   startURL,
		Sites:      cfg.Sites,
	}, logger)

	events := make(chan chrome.Event)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			if ev.Err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", ev.URL, ev.Err)
				continue
			}
			line := ev.Result.Outcome.String()
			if note := userscript.Describe(ev.Result); note != "" {
				line += " (" + note + ")"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", ev.URL, line)
		}
	}()

	err = driver.Run(ctx, events)
	close(events)
	<-done

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// siteStore opens the session and returns the store of the homepage origin.
func siteStore(cmd *cobra.Command) (*session, lastvisit.Store, error) {
	s, err := openSession(cmd, false)
	if err != nil {
		return nil, nil, err
	}
	u, err := url.Parse(s.cfg.Homepage)
	if err != nil {
		s.close()
		return nil, nil, fmt.Errorf("parsing homepage: %w", err)
	}
	return s, s.backend.Origin(userscript.Origin(u)), nil
}

func runLast(cmd *cobra.Command, _ []string) error {
	s, store, err := siteStore(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	id, ok, err := store.GetItem(lastvisit.StorageKey)
	if err != nil {
		return err
	}
	if !ok {
		return errNothingRemembered
	}
	fmt.Fprintln(cmd.OutOrStdout(), id)
	return nil
}

func runForget(cmd *cobra.Command, _ []string) error {
	s, store, err := siteStore(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	return store.RemoveItem(lastvisit.StorageKey)
}

func runVisits(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd, false)
	if err != nil {
		return err
	}
	defer s.close()

	if s.visits == nil {
		return errors.New("visits are not kept with --ephemeral")
	}

	if clearVisits {
		return s.visits.Clear()
	}

	visits, err := s.visits.Recent(visitsLimit)
	if err != nil {
		return err
	}

	theme.Set(s.cfg.Theme)
	fmt.Fprintln(cmd.OutOrStdout(), visitsTable(visits).Render())

	total, err := s.visits.Count()
	if err != nil {
		return err
	}
	if total > len(visits) {
		fmt.Fprintf(cmd.ErrOrStderr(), "showing %d of %d visits\n", len(visits), total)
	}
	return nil
}

// visitsTable lays out visits newest first, colouring each row's outcome.
func visitsTable(visits []storage.Visit) *table.Table {
	t := theme.Current
	outcomeColors := map[string]lipgloss.Color{
		lastvisit.OutcomeRecorded.String():   t.Success,
		lastvisit.OutcomeCleared.String():    t.Info,
		lastvisit.OutcomeRedirected.String(): t.Accent,
		lastvisit.OutcomeSkipped.String():    t.TextDim,
	}

	rows := make([][]string, 0, len(visits))
	for _, v := range visits {
		outcome := v.Outcome
		if outcome == "" {
			outcome = "-"
		}
		petition := "-"
		if u, err := url.Parse(v.URL); err == nil {
			if id, ok := lastvisit.PetitionID(u.EscapedPath()); ok {
				petition = id
			}
		}
		rows = append(rows, []string{
			v.VisitedAt.Local().Format("2006-01-02 15:04"),
			strconv.Itoa(v.TabID),
			strconv.Itoa(v.HistoryIndex),
			outcome,
			petition,
			v.URL,
		})
	}

	cell := lipgloss.NewStyle().Padding(0, 1).Foreground(t.Text)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(t.Border)).
		Headers("WHEN", "TAB", "ENTRY", "OUTCOME", "PETITION", "URL").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return cell.Foreground(t.Primary).Bold(true)
			case col == 3 && row >= 0 && row < len(rows):
				if c, ok := outcomeColors[rows[row][3]]; ok {
					return cell.Foreground(c)
				}
			case col == 5:
				return cell.Foreground(t.Link)
			}
			return cell
		})
}
