package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/hylla/actionboard/internal/adapters/backend/httpclient"
	"github.com/hylla/actionboard/internal/app"
	"github.com/hylla/actionboard/internal/config"
	"github.com/hylla/actionboard/internal/domain"
	"github.com/hylla/actionboard/internal/platform"
	"github.com/hylla/actionboard/internal/tui"
	"github.com/spf13/cobra"
)

var version = "dev"

type program interface {
	Run() (tea.Model, error)
}

var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		stop()
		os.Exit(1)
	}
}

// run executes one CLI invocation. fang reports returned errors on stderr.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	root := newRootCommand()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return fang.Execute(ctx, root, fang.WithVersion(version))
}

// cliOptions holds the persistent flags shared by every command.
type cliOptions struct {
	configPath string
	apiURL     string
	appName    string
	devMode    bool
}

func newRootCommand() *cobra.Command {
	opts := &cliOptions{appName: platform.DefaultAppName, devMode: version == "dev"}
	if envApp := strings.TrimSpace(os.Getenv("ACTIONBOARD_APP_NAME")); envApp != "" {
		opts.appName = envApp
	}
	if envDev, ok := parseBoolEnv("ACTIONBOARD_DEV_MODE"); ok {
		opts.devMode = envDev
	}

	var startOnBoard bool
	root := &cobra.Command{
		Use:   "actionboard",
		Short: "Turn meeting recordings into action items and manage them on a board",
		Long: `actionboard uploads meeting audio to the transcription workflow and
manages the resulting action items on a To Do / In Progress / Done board.

Run without a command to open the terminal UI.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, opts, startOnBoard)
		},
	}
	root.Flags().BoolVar(&startOnBoard, "board", false, "start on the board view")

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "path to config TOML (env ACTIONBOARD_CONFIG)")
	pf.StringVar(&opts.apiURL, "api-url", "", "backend base URL (env ACTIONBOARD_API_URL)")
	pf.StringVar(&opts.appName, "app", opts.appName, "application name for config/data path resolution")
	pf.BoolVar(&opts.devMode, "dev", opts.devMode, "use dev mode paths (<app>-dev) and the dev log file")

	root.AddCommand(
		newUploadCommand(opts),
		newTasksCommand(opts),
		newHealthCommand(opts),
		newPathsCommand(opts),
		newConfigCommand(opts),
		newDevserverCommand(opts),
	)
	return root
}

// session is the resolved runtime state of one command.
type session struct {
	appName    string
	devMode    bool
	paths      platform.Paths
	configPath string
	cfg        config.Config
	logger     *runtimeLogger
}

// openSession resolves paths, config, and logging for one command.
func (o *cliOptions) openSession(cmd *cobra.Command, command string) (*session, error) {
	paths, err := platform.DefaultPathsWithOptions(platform.Options{AppName: o.appName, DevMode: o.devMode})
	if err != nil {
		return nil, err
	}
	configPath := paths.ResolveConfigPath(o.configPath, os.Getenv("ACTIONBOARD_CONFIG"))
	cfg, err := config.Load(configPath, config.Default(paths.DBPath))
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", configPath, err)
	}
	apiURL := strings.TrimSpace(o.apiURL)
	if apiURL == "" {
		apiURL = strings.TrimSpace(os.Getenv("ACTIONBOARD_API_URL"))
	}
	if apiURL != "" {
		cfg.Backend.BaseURL = apiURL
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	logger, err := newRuntimeLogger(cmd.ErrOrStderr(), o.appName, o.devMode, cfg.Logging, time.Now)
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	s := &session{appName: o.appName, devMode: o.devMode, paths: paths, configPath: configPath, cfg: cfg, logger: logger}
	logger.Debug("configuration loaded", "command", command, "config_path", configPath, "base_url", cfg.Backend.BaseURL, "log_level", cfg.Logging.Level)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Debug("dev file logging enabled", "path", devPath)
	}
	return s, nil
}

func (s *session) Close() {
	if err := s.logger.Close(); err != nil {
		s.logger.Warn("close runtime log sink", "err", err)
	}
}

// client builds the backend client from the resolved config.
func (s *session) client() (*httpclient.Client, error) {
	timeout, err := s.cfg.Backend.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	return httpclient.New(httpclient.Config{
		BaseURL: s.cfg.Backend.BaseURL,
		Timeout: timeout,
		Logger:  s.logger,
	})
}

// uploadOptions maps the upload config section onto controller options.
func (s *session) uploadOptions(destination domain.Destination) []app.UploadOption {
	return []app.UploadOption{
		app.WithDefaultDestination(destination),
		app.WithAcceptedExtensions(s.cfg.Upload.AcceptedExtensions),
	}
}

func runTUI(cmd *cobra.Command, opts *cliOptions, startOnBoard bool) error {
	s, err := opts.openSession(cmd, "tui")
	if err != nil {
		return err
	}
	defer s.Close()
	client, err := s.client()
	if err != nil {
		return err
	}
	destination, err := domain.ParseDestination(s.cfg.Upload.DefaultDestination)
	if err != nil {
		return fmt.Errorf("upload.default_destination: %w", err)
	}

	startView := tui.ViewUpload
	if startOnBoard || s.cfg.UI.StartView == config.StartViewBoard {
		startView = tui.ViewBoard
	}
	m := tui.NewModel(
		client,
		tui.WithContext(cmd.Context()),
		tui.WithStartView(startView),
		tui.WithConfirmDelete(s.cfg.Confirm.Delete),
		tui.WithStartDir(s.cfg.Upload.StartDir),
		tui.WithUploadOptions(s.uploadOptions(destination)...),
		tui.WithCardFieldConfig(tui.CardFieldConfig{
			ShowDueDate:      s.cfg.Board.ShowDueDate,
			ShowConfidence:   s.cfg.Board.ShowConfidence,
			ShowUnrecognized: s.cfg.Board.ShowUnrecognized,
		}),
	)

	s.logger.SetConsoleEnabled(false)
	s.logger.Info("starting tui program loop", "base_url", client.BaseURL(), "start_view", startView)
	if _, err := programFactory(m).Run(); err != nil {
		s.logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	s.logger.Info("command flow complete", "command", "tui")
	return nil
}

func newPathsCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Show resolved config and data paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			paths, err := platform.DefaultPathsWithOptions(platform.Options{AppName: opts.appName, DevMode: opts.devMode})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "app: %s\n", opts.appName)
			_, _ = fmt.Fprintf(out, "dev_mode: %t\n", opts.devMode)
			_, _ = fmt.Fprintf(out, "config: %s\n", paths.ResolveConfigPath(opts.configPath, os.Getenv("ACTIONBOARD_CONFIG")))
			_, _ = fmt.Fprintf(out, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(out, "devserver_db: %s\n", paths.DBPath)
			return nil
		},
	}
}

func newHealthCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.openSession(cmd, "health")
			if err != nil {
				return err
			}
			defer s.Close()
			client, err := s.client()
			if err != nil {
				return err
			}
			health, err := client.Health(cmd.Context())
			if err != nil {
				return fmt.Errorf("%s: %s", client.BaseURL(), app.FailureDetail(err))
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", client.BaseURL(), health.Status)
			return nil
		},
	}
}

// parseBoolEnv reads a boolean env var; ok is false when unset or malformed.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
