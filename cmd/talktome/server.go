package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jbruckner/talktome/internal/api"
	"github.com/jbruckner/talktome/internal/chat"
	"github.com/jbruckner/talktome/internal/config"
	"github.com/jbruckner/talktome/internal/importer"
	"github.com/jbruckner/talktome/internal/jobs"
	"github.com/jbruckner/talktome/internal/model"
	"github.com/jbruckner/talktome/internal/profile"
	"github.com/jbruckner/talktome/internal/site"
	"github.com/jbruckner/talktome/internal/storage"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the talktome server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running talktome server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show talktome system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus()
	},
}

func pidFilePath(dataDir string) string {
	return filepath.Join(dataDir, "talktome.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePIDFile(path string) {
	os.Remove(path)
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "talktome version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize structured logging.
	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	// Ensure the API bearer token exists in the data dir.
	apiToken, err := config.GetAPIToken(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("initializing API token: %w", err)
	}
	slog.Info("API bearer token available")

	// Write PID file. Check if server is already running via health endpoint.
	pidPath := pidFilePath(cfg.Storage.DataDir)
	healthURL := fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Server.Port)
	healthClient := &http.Client{Timeout: 2 * time.Second}
	if resp, err := healthClient.Get(healthURL); err == nil {
		resp.Body.Close()
		if pid, pidErr := readPIDFile(pidPath); pidErr == nil {
			printWarning("talktome is already running (PID %d)", pid)
			return fmt.Errorf("server already running (PID %d)", pid)
		}
		printWarning("talktome is already running on port %d", cfg.Server.Port)
		return fmt.Errorf("server already running on port %d", cfg.Server.Port)
	}
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open storage.
	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing storage: %v\n", err)
		}
	}()

	// Build the conversation stack.
	jobMgr := jobs.NewManager(store)
	profileMgr := profile.NewManager(store)
	provider, err := model.NewGemini(ctx, cfg.Model.APIKey, cfg.Model.Name)
	if err != nil {
		return fmt.Errorf("creating model provider: %w", err)
	}
	sessions := chat.NewSessions(cfg.SessionTTL())
	orchestrator := chat.NewOrchestrator(jobMgr, profileMgr, provider, sessions)

	// Build HTTP surfaces: public chat API, bearer-protected admin API and
	// the server-rendered micro-site pages.
	pages, err := site.New(jobMgr, profileMgr)
	if err != nil {
		return fmt.Errorf("building site templates: %w", err)
	}

	topRouter := api.NewPublicHandler(api.PublicDeps{
		Orchestrator: orchestrator,
		Jobs:         jobMgr,
		Profile:      profileMgr,
	})
	topRouter.Mount("/admin", api.NewAdminHandler(api.AdminDeps{
		Jobs:     jobMgr,
		Profile:  profileMgr,
		Importer: importer.New(nil),
		Token:    apiToken,
	}))
	topRouter.Mount("/", pages.Routes())

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: topRouter,
	}

	mcpSrv := api.NewMCPServer(api.MCPDeps{
		Jobs:    jobMgr,
		Profile: profileMgr,
	})
	stdioSrv := server.NewStdioServer(mcpSrv)

	// Supervise the HTTP server, the MCP stdio transport and the session
	// janitor; the first hard failure tears the group down.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := sessions.RunJanitor(gctx, time.Minute)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		err := stdioSrv.Listen(gctx, os.Stdin, os.Stdout)
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("MCP stdio server error", "error", err)
			return err
		}
		return nil
	})
	slog.Info("MCP server started (stdio transport)")

	g.Go(func() error {
		fmt.Fprintf(os.Stderr, "talktome listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		fmt.Fprintln(os.Stderr, "shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func stopServer() error {
	cfg, err := config.Load()
	if err != nil {
		printError("could not load config: %v", err)
		return err
	}

	pidPath := pidFilePath(cfg.Storage.DataDir)
	pid, err := readPIDFile(pidPath)
	if err != nil {
		printError("talktome is not running (no PID file)")
		return fmt.Errorf("not running: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		printError("could not find process %d", pid)
		return err
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		printError("could not stop talktome (PID %d): %v", pid, err)
		removePIDFile(pidPath)
		return err
	}

	printSuccess("Sent stop signal to talktome (PID %d)", pid)
	return nil
}

func showStatus() error {
	cfg, err := config.Load()
	if err != nil {
		// Still show partial status even if config fails.
		printError("config error: %v", err)
		return nil
	}

	serverURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get(serverURL + "/health")
	running := false
	if err != nil {
		printStatus("Server", "stopped")
	} else {
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			running = true
			printStatus("Server", "running on port %d", cfg.Server.Port)
		} else {
			printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		}
	}

	printStatus("Model", "%s", cfg.Model.Name)
	printStatus("Session TTL", "%d minutes", cfg.Chat.SessionTTLMinutes)

	// Show job counts if the server is running.
	if running {
		if c, err := newAPIClient(); err == nil {
			if jobsResp, err := c.get(context.Background(), "/jobs"); err == nil {
				var list []jobs.Job
				if decodeJSON(jobsResp, &list) == nil {
					enabled := 0
					for _, j := range list {
						if j.Enabled {
							enabled++
						}
					}
					printStatus("Jobs", "%d (%d enabled)", len(list), enabled)
				}
			}
		}
	}

	printStatus("Data dir", "%s", cfg.Storage.DataDir)
	return nil
}
