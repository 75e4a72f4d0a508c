package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/digimonnaie/console/internal/app"
	"github.com/digimonnaie/console/internal/client"
	"github.com/digimonnaie/console/internal/config"
	"github.com/digimonnaie/console/internal/logging"
	"github.com/digimonnaie/console/internal/session"
	"github.com/digimonnaie/console/internal/watchdog"
)

var (
	configFile  string
	baseURL     string
	idleTimeout string
	stateDir    string
	logFile     string
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:           "digimonnaie",
	Short:         "DigiMonnaie admin console",
	Long:          "Terminal console for DigiMonnaie administrators: users, deposits and transactions.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runConsole,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVarP(&configFile, "config", "c", "", "the config file to use")
	f.StringVar(&baseURL, "url", "", "backend API base URL")
	f.StringVar(&idleTimeout, "idle-timeout", "", "sign out after this long without input (e.g. 2m)")
	f.StringVar(&stateDir, "state-dir", "", "directory holding the session file")
	f.StringVar(&logFile, "log-file", "", "log file path")
	f.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(logoutCmd, whoamiCmd)
}

// loadConfig reads the config file and applies flag overrides on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.API.BaseURL = baseURL
	}
	if flags.Changed("idle-timeout") {
		d, err := parseDuration(idleTimeout)
		if err != nil {
			return nil, fmt.Errorf("--idle-timeout: %w", err)
		}
		cfg.Session.IdleTimeout = d
	}
	if flags.Changed("state-dir") {
		cfg.Session.StateDir = stateDir
	}
	if flags.Changed("log-file") {
		cfg.Log.File = logFile
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogging points the global logger at the configured file. The
// returned closer is never nil.
func setupLogging(cfg *config.Config) (io.Closer, error) {
	if cfg.Log.File == "" {
		logging.Configure(logging.Config{Level: cfg.Log.Level})
		return io.NopCloser(nil), nil
	}
	f, err := logging.OpenFile(cfg.Log.File)
	if err != nil {
		return nil, err
	}
	logging.Configure(logging.Config{Level: cfg.Log.Level, Output: f})
	return f, nil
}

func runConsole(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	closer, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	log := logging.WithComponent("main")

	store, err := session.Open(cfg.Session.StateDir)
	if err != nil {
		return fmt.Errorf("opening session: %w", err)
	}
	// The program does not exist yet when the client and watchdog are
	// built. Neither fires before Run, after both hooks are set.
	var notify, unauthorized func()
	api := client.New(cfg.API.BaseURL, store,
		client.WithTimeout(cfg.API.Timeout),
		client.WithUnauthorized(func() { unauthorized() }),
	)
	wd := watchdog.New(cfg.Session.IdleTimeout, func() { notify() })

	m := app.New(api, store, wd, app.WithRowsPerPage(cfg.UI.RowsPerPage))
	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.UI.Mouse {
		opts = append(opts, tea.WithMouseAllMotion())
	}
	p := tea.NewProgram(m, opts...)
	notify = watchdog.NotifyProgram(p)
	unauthorized = func() { p.Send(app.UnauthorizedMsg{}) }

	log.Info().
		Str("api", cfg.API.BaseURL).
		Dur("idle_timeout", cfg.Session.IdleTimeout).
		Bool("restored", store.Authenticated()).
		Msg("console starting")

	final, err := p.Run()
	if fm, ok := final.(app.Model); ok {
		fm.Close()
	}
	if err != nil {
		return fmt.Errorf("running console: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
