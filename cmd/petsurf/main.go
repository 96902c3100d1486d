package main

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vidyasagar/petsurf/internal/app"
	"github.com/vidyasagar/petsurf/internal/browser"
	"github.com/vidyasagar/petsurf/internal/logging"
	"github.com/vidyasagar/petsurf/internal/storage"
	"github.com/vidyasagar/petsurf/internal/theme"
	"github.com/vidyasagar/petsurf/internal/userscript"
)

var version = "0.1.0"

// Persistent flags, applied over the config file and PETSURF_* variables.
var (
	themeName  string
	dataDir    string
	logLevel   string
	configPath string
	ephemeral  bool
)

var rootCmd = &cobra.Command{
	Use:   "petsurf [petition | url | query]",
	Short: "A terminal browser for the presidential petition site",
	Long: `petsurf browses petition.president.gov.ua in the terminal.

Opening the site home page in a fresh tab takes you back to the last
petition you visited there. Visiting a petition page remembers it.`,
	Example: `  petsurf                      # open the petition site home page
  petsurf 184567               # open petition 184567
  petsurf "міські парки"       # search the petition site
  petsurf --theme nord         # use the nord theme`,
	Version:       version,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runBrowser,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&themeName, "theme", "", "color theme ("+strings.Join(theme.List(), ", ")+")")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory for the database and log file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default is the user config dir)")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep the remembered petition in memory only")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// session bundles what every command opens.
type session struct {
	cfg     *storage.Config
	dataDir string
	backend storage.Backend
	db      *storage.DB
	visits  *storage.VisitStore
	logger  *zap.Logger
}

// loadConfig reads the config file and applies the persistent flags.
func loadConfig(cmd *cobra.Command) (*storage.Config, error) {
	var (
		cfg *storage.Config
		err error
	)
	if configPath != "" {
		cfg, err = storage.LoadConfigFile(configPath)
	} else {
		cfg, err = storage.LoadConfig()
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("theme") {
		cfg.Theme = themeName
	}
	if flags.Changed("data-dir") {
		cfg.DataDir = dataDir
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

// openSession loads config, opens the store backend and builds a logger.
// Interactive sessions log to a file since the TUI owns the terminal.
func openSession(cmd *cobra.Command, fileLog bool) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dir, err := cfg.ResolveDataDir()
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, dataDir: dir}
	if fileLog {
		s.logger, err = logging.NewFile(dir, cfg.LogLevel)
	} else {
		s.logger, err = logging.NewConsole(cfg.LogLevel)
	}
	if err != nil {
		return nil, err
	}

	if ephemeral {
		s.backend = storage.NewMemoryStorage()
		return s, nil
	}

	s.backend, s.db, err = cfg.OpenBackend(dir)
	if err != nil {
		s.logger.Sync()
		return nil, fmt.Errorf("opening store: %w", err)
	}
	if s.db != nil {
		s.visits = storage.NewVisitStore(s.db)
	} else if cfg.StoreBackend == storage.BackendBolt {
		// Visits are kept in SQLite alongside the bolt store.
		if s.db, err = storage.OpenDB(dir); err != nil {
			s.backend.Close()
			return nil, fmt.Errorf("opening visits database: %w", err)
		}
		s.visits = storage.NewVisitStore(s.db)
	}
	return s, nil
}

func (s *session) close() {
	if s.backend != nil {
		if err := s.backend.Close(); err != nil {
			s.logger.Warn("closing store", zap.Error(err))
		}
	}
	// The sqlite backend closes its own DB.
	if s.db != nil && s.cfg.StoreBackend == storage.BackendBolt {
		if err := s.db.Close(); err != nil {
			s.logger.Warn("closing visits database", zap.Error(err))
		}
	}
	_ = s.logger.Sync()
}

// loader builds a page loader running the petition script on the
// configured sites.
func (s *session) loader() (*browser.Loader, error) {
	script := userscript.NewLastVisited(s.backend, s.cfg.Sites, s.logger)
	return browser.NewLoader(browser.NewFetcher(s.cfg.UserAgent), s.cfg.CacheSize, s.logger, script)
}

func runBrowser(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, true)
	if err != nil {
		return err
	}
	defer s.close()

	if !theme.Set(s.cfg.Theme) {
		return fmt.Errorf("unknown theme %q (available: %s)", s.cfg.Theme, strings.Join(theme.List(), ", "))
	}

	loader, err := s.loader()
	if err != nil {
		return err
	}

	startURL := s.cfg.Homepage
	if len(args) > 0 {
		startURL = args[0]
	}

	s.logger.Info("starting",
		zap.String("version", version),
		zap.String("backend", s.cfg.StoreBackend),
		zap.Bool("ephemeral", ephemeral))

	m := app.New(app.Options{
		StartURL: startURL,
		Homepage: s.cfg.Homepage,
		Loader:   loader,
		Stores:   s.backend,
		Visits:   s.visits,
		Logger:   s.logger,
	})
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err = p.Run()
	return err
}
