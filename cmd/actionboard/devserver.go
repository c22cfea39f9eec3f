package main

import (
	"fmt"
	"strings"

	"github.com/hylla/actionboard/internal/adapters/server"
	"github.com/hylla/actionboard/internal/adapters/server/common"
	"github.com/hylla/actionboard/internal/adapters/storage/sqlite"
	"github.com/spf13/cobra"
)

// devserverFlags holds devserver overrides; empty values fall back to config.
type devserverFlags struct {
	bind        string
	dbPath      string
	fixture     string
	mcpEndpoint string
	inMemory    bool
}

func newDevserverCommand(opts *cliOptions) *cobra.Command {
	var flags devserverFlags
	cmd := &cobra.Command{
		Use:   "devserver",
		Short: "Serve a local stand-in backend with REST and MCP endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDevserver(cmd, opts, flags)
		},
	}
	cmd.Flags().StringVar(&flags.bind, "bind", "", "listen address (default from config)")
	cmd.Flags().StringVar(&flags.dbPath, "db", "", "sqlite database path (default from config)")
	cmd.Flags().StringVar(&flags.fixture, "fixture", "", "TOML fixture scripting workflow results")
	cmd.Flags().StringVar(&flags.mcpEndpoint, "mcp-endpoint", "", "MCP endpoint path (default from config)")
	cmd.Flags().BoolVar(&flags.inMemory, "in-memory", false, "keep tasks in memory only")
	return cmd
}

func runDevserver(cmd *cobra.Command, opts *cliOptions, flags devserverFlags) error {
	s, err := opts.openSession(cmd, "devserver")
	if err != nil {
		return err
	}
	defer s.Close()

	cfg := s.cfg.DevServer
	bind := firstNonEmpty(flags.bind, cfg.Bind)
	dbPath := firstNonEmpty(flags.dbPath, cfg.DBPath)
	fixturePath := firstNonEmpty(flags.fixture, cfg.Fixture)
	endpoint := firstNonEmpty(flags.mcpEndpoint, cfg.MCPEndpoint)

	var repo *sqlite.Repository
	if flags.inMemory {
		repo, err = sqlite.OpenInMemory()
		dbPath = ":memory:"
	} else {
		repo, err = sqlite.Open(dbPath)
	}
	if err != nil {
		s.logger.Error("sqlite open failed", "path", dbPath, "err", err)
		return fmt.Errorf("open task store: %w", err)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			s.logger.Warn("sqlite close failed", "err", closeErr)
		}
	}()

	fixture, err := common.LoadFixture(fixturePath)
	if err != nil {
		return fmt.Errorf("load fixture %q: %w", fixturePath, err)
	}
	svc, err := common.NewService(repo, fixture)
	if err != nil {
		return fmt.Errorf("build devserver service: %w", err)
	}

	s.logger.Info("devserver starting", "bind", bind, "db", dbPath, "mcp_endpoint", endpoint, "fixture", fixturePath, "action_items", len(fixture.ActionItems))
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "serving http://%s (mcp %s)\n", bind, endpoint)
	err = server.Run(cmd.Context(), server.Config{
		HTTPBind:      bind,
		MCPEndpoint:   endpoint,
		ServerName:    "actionboard",
		ServerVersion: version,
	}, server.Dependencies{
		Tasks:    svc,
		Workflow: svc,
	})
	if err != nil {
		s.logger.Error("devserver stopped with error", "err", err)
		return err
	}
	s.logger.Info("devserver stopped")
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
