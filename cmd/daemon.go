package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/piggymobile/piggy/internal/cli"
	"github.com/piggymobile/piggy/internal/config"
	"github.com/piggymobile/piggy/internal/daemon"

	"github.com/spf13/cobra"
)

var (
	flagDaemonAddr         string
	flagDaemonInterval     time.Duration
	flagDaemonDetach       bool
	flagDaemonPIDFile      string
	flagDaemonLogFile      string
	flagDaemonEventsBuffer int
	flagDaemonChild        bool
	flagDaemonNoReminder   bool
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run a background budget watcher with HTTP/SSE endpoints and a daily reminder",
	RunE:  runDaemon,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon process and API status",
	RunE:  runDaemonStatus,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	RunE:  runDaemonStop,
}

func init() {
	runDir := filepath.Dir(config.DefaultDBPath())
	defaultPID := filepath.Join(runDir, "piggyd.pid")
	defaultLog := filepath.Join(runDir, "piggyd.log")

	daemonCmd.PersistentFlags().StringVar(&flagDaemonAddr, "addr", "", "HTTP listen address (default from config)")
	daemonCmd.PersistentFlags().DurationVar(&flagDaemonInterval, "interval", 0, "Polling interval (default from config)")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonPIDFile, "pid-file", defaultPID, "PID file path")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonLogFile, "log-file", defaultLog, "Log file path for detached mode")
	daemonCmd.PersistentFlags().IntVar(&flagDaemonEventsBuffer, "events-buffer", 0, "Max in-memory events retained (default from config)")

	daemonCmd.Flags().BoolVar(&flagDaemonDetach, "detach", false, "Run daemon as a background process")
	daemonCmd.Flags().BoolVar(&flagDaemonNoReminder, "no-reminder", false, "Disable the daily expense reminder")
	daemonCmd.Flags().BoolVar(&flagDaemonChild, "child", false, "Internal: mark detached child process")
	_ = daemonCmd.Flags().MarkHidden("child")

	daemonCmd.AddCommand(daemonStatusCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	rootCmd.AddCommand(daemonCmd)
}

// daemonConfig merges command flags over the config file.
func daemonConfig(cfg config.Config, sess config.Session) daemon.Config {
	dc := daemon.Config{
		Session:          sess,
		DBPath:           dbPath(cfg),
		Interval:         cfg.Daemon.PollInterval.Duration,
		Addr:             cfg.Daemon.Addr,
		EventsBuffer:     cfg.Daemon.EventsBuffer,
		ReminderEnabled:  cfg.Reminder.Enabled && !flagDaemonNoReminder,
		ReminderSchedule: cfg.Reminder.Schedule,
	}
	if flagDaemonAddr != "" {
		dc.Addr = flagDaemonAddr
	}
	if flagDaemonInterval > 0 {
		dc.Interval = flagDaemonInterval
	}
	if flagDaemonEventsBuffer > 0 {
		dc.EventsBuffer = flagDaemonEventsBuffer
	}
	return dc
}

func runDaemon(_ *cobra.Command, _ []string) error {
	switch {
	case flagDaemonDetach && flagDaemonChild:
		return errors.New("invalid daemon launch mode")
	case flagDaemonDetach:
		return spawnDaemon()
	default:
		return serveDaemon()
	}
}

func runFile() daemon.RunFile { return daemon.RunFile{Path: flagDaemonPIDFile} }

// spawnDaemon re-executes piggy with --child and output sent to the log file.
func spawnDaemon() error {
	if _, err := requireSession(); err != nil {
		return err
	}
	if pid, err := runFile().Live(); err == nil {
		return fmt.Errorf("daemon already running (pid %d)", pid)
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(flagDaemonLogFile), 0o750); err != nil {
		return fmt.Errorf("create daemon log directory: %w", err)
	}
	//nolint:gosec // log path comes from the local user's flags
	logf, err := os.OpenFile(flagDaemonLogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open daemon log file: %w", err)
	}
	defer func() { _ = logf.Close() }()

	child := exec.Command(exe, childArgs(os.Args[1:])...) //nolint:gosec // re-exec of ourselves
	child.Stdout, child.Stderr = logf, logf
	child.Env = os.Environ()
	if err := child.Start(); err != nil {
		return fmt.Errorf("start detached daemon: %w", err)
	}

	addr := daemonConfig(loadConfig(), config.Session{}).Addr
	fmt.Printf("  Started daemon (pid %d)\n", child.Process.Pid)
	fmt.Printf("  API: http://%s/v1/status\n", addr)
	fmt.Printf("  Log: %s\n", flagDaemonLogFile)
	fmt.Printf("  PID file: %s\n", flagDaemonPIDFile)
	return nil
}

// childArgs drops --detach and marks the process as the detached child.
func childArgs(args []string) []string {
	out := make([]string, 0, len(args)+1)
	for _, a := range args {
		if a != "--detach" && !strings.HasPrefix(a, "--detach=") {
			out = append(out, a)
		}
	}
	return append(out, "--child")
}

func serveDaemon() error {
	sess, err := requireSession()
	if err != nil {
		return err
	}
	cfg := loadConfig()
	dc := daemonConfig(cfg, sess)

	rf := runFile()
	if err := rf.Claim(daemon.RuntimeInfo{
		PID:       os.Getpid(),
		Addr:      dc.Addr,
		StartedAt: time.Now(),
		DBPath:    dc.DBPath,
		UserEmail: sess.Email,
	}); err != nil {
		return err
	}
	defer rf.Release()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	svc := daemon.New(dc, st, newLogger(cfg))

	fmt.Printf("  piggy daemon listening on http://%s\n", dc.Addr)
	fmt.Printf("  Watching %s for %s\n", dc.DBPath, sess.Email)
	if dc.ReminderEnabled {
		fmt.Printf("  Daily reminder: %s\n", dc.ReminderSchedule)
	}
	fmt.Printf("  Stop with: piggy daemon stop --pid-file %s\n", flagDaemonPIDFile)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runDaemonStatus(_ *cobra.Command, _ []string) error {
	rf := runFile()
	pid, err := rf.Live()
	if err != nil {
		fmt.Printf("  Daemon: not running\n")
		return nil
	}

	addr := daemonConfig(loadConfig(), config.Session{}).Addr
	info, infoErr := rf.Info()
	if infoErr == nil && info.Addr != "" {
		addr = info.Addr
	}
	fmt.Printf("  Daemon PID: %d\n", pid)
	fmt.Printf("  Address: http://%s\n", addr)
	if infoErr == nil && !info.StartedAt.IsZero() {
		fmt.Printf("  Uptime: %s\n", uptime(info.StartedAt, now()))
	}

	st, err := fetchDaemonStatus(addr)
	if err != nil {
		fmt.Printf("  API status: %v\n", err)
		return nil
	}

	if st.LastPollAt.IsZero() {
		fmt.Printf("  Last poll: pending\n")
	} else {
		fmt.Printf("  Last poll: %s (%d total)\n", st.LastPollAt.Local().Format(time.RFC3339), st.PollCount)
	}
	fmt.Printf("  User: %s\n", st.UserEmail)
	if st.Summary.HasBudget {
		m := money(loadConfig())
		fmt.Printf("  Spent: %s (%s of planned)\n", m.Format(st.Summary.Spent), cli.FormatPercent(st.Summary.PercentageSpent))
		fmt.Printf("  Today: %s of %s suggested\n", m.Format(st.Summary.SpentToday), m.Format(st.Summary.SuggestedDailyLimit))
	} else {
		fmt.Printf("  Budget: none for %s\n", st.Summary.Month)
	}
	if !st.NextReminder.IsZero() {
		fmt.Printf("  Next reminder: %s\n", st.NextReminder.Local().Format(time.RFC3339))
	}
	if st.LastError != "" {
		fmt.Printf("  Last error: %s\n", st.LastError)
	}
	return nil
}

func uptime(started, at time.Time) string {
	return cli.FormatDuration(int64(at.Sub(started) / time.Second))
}

func fetchDaemonStatus(addr string) (daemon.Status, error) {
	var st daemon.Status
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + addr + "/v1/status") //nolint:noctx // short local probe
	if err != nil {
		return st, fmt.Errorf("unreachable (%w)", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return st, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return st, fmt.Errorf("malformed response (%w)", err)
	}
	return st, nil
}

func runDaemonStop(_ *cobra.Command, _ []string) error {
	pid, err := runFile().Stop(8 * time.Second)
	if err != nil {
		return err
	}
	fmt.Printf("  Stopped daemon (pid %d)\n", pid)
	return nil
}
