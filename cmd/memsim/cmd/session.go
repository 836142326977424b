package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/sarchlab/memsim/cmd/memsim/console"
	"github.com/sarchlab/memsim/datarecording"
	"github.com/sarchlab/memsim/mem/cache"
	"github.com/sarchlab/memsim/mem/mem"
	"github.com/sarchlab/memsim/mem/system"
	"github.com/sarchlab/memsim/mem/trace"
	"github.com/sarchlab/memsim/monitoring"
)

// A session is one simulated system with everything attached to it.
type session struct {
	sys          *system.System
	console      *console.Console
	monitor      *monitoring.Monitor
	recorder     datarecording.DataRecorder
	execRecorder *datarecording.ExecRecorder
	traceFile    *os.File
}

func newSession(cmd *cobra.Command, out io.Writer) (*session, error) {
	flags := cmd.Flags()

	level, _ := flags.GetString("log-level")
	setupLogger(level)

	s := &session{sys: system.New()}
	s.console = console.New(s.sys, out)

	if err := s.attachTracer(cmd); err != nil {
		s.close()
		return nil, err
	}

	if err := s.attachRecorder(cmd); err != nil {
		s.close()
		return nil, err
	}

	if err := s.loadCacheConfig(cmd); err != nil {
		s.close()
		return nil, err
	}

	s.attachMonitor(cmd)

	return s, nil
}

func setupLogger(level string) {
	var l slog.Level

	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})
	slog.SetDefault(slog.New(handler).With("app", "memsim"))
}

func (s *session) attachTracer(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("trace")
	if path == "" {
		return nil
	}

	w := io.Writer(os.Stderr)

	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("open trace file: %w", err)
		}

		s.traceFile = f
		w = f
	}

	tracer := trace.NewTracer(log.New(w, "", 0))
	s.sys.AcceptHook(tracer)
	s.sys.AcceptComponentHook(tracer)

	slog.Info("tracing enabled", "file", path)

	return nil
}

func (s *session) attachRecorder(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("db")
	if path == "" {
		return nil
	}

	recorder, err := datarecording.New(path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	s.recorder = recorder
	s.execRecorder = datarecording.NewExecRecorder(s.recorder)
	s.execRecorder.Start()

	tracer := trace.NewDBTracer(s.recorder)
	s.sys.AcceptHook(tracer)
	s.sys.AcceptComponentHook(tracer)

	slog.Info("recording enabled", "db", path+".sqlite3")

	return nil
}

func (s *session) loadCacheConfig(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("cache-config")
	if path == "" {
		return nil
	}

	config, err := readCacheConfig(path)
	if err != nil {
		return err
	}

	s.console.WithCacheConfig(config)

	return nil
}

func readCacheConfig(path string) (cache.HierarchyConfig, error) {
	var config cache.HierarchyConfig

	f, err := os.Open(path)
	if err != nil {
		return config, fmt.Errorf("open cache config: %w", err)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(&config); err != nil {
		return config, fmt.Errorf("decode cache config %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return config, fmt.Errorf("cache config %s: %w", path, err)
	}

	return config, nil
}

func (s *session) attachMonitor(cmd *cobra.Command) {
	flags := cmd.Flags()
	enabled, _ := flags.GetBool("monitor")
	open, _ := flags.GetBool("open-monitor")

	if !enabled && !open {
		return
	}

	port, _ := flags.GetInt("monitor-port")

	s.monitor = monitoring.NewMonitor().WithPortNumber(port)
	s.console.WithPublisher(s.monitor)

	url := s.monitor.StartServer()
	slog.Info("monitoring server started", "url", url)

	if open {
		if err := browser.OpenURL(url); err != nil {
			slog.Warn("cannot open browser", "err", err)
		}
	}
}

func (s *session) close() {
	if s.execRecorder != nil {
		s.execRecorder.End()
	}

	if s.recorder != nil {
		if err := s.recorder.Close(); err != nil {
			slog.Error("closing recorder", "err", err)
		}
	}

	if s.traceFile != nil {
		s.traceFile.Close()
	}
}

// execute runs one line and reports its error. It returns true when the
// line asks to quit.
func (s *session) execute(line string, out io.Writer) (bool, error) {
	quit, err := s.console.Execute(line)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)

		if kind, ok := mem.KindOf(err); ok {
			slog.Debug("command failed", "line", line, "kind", kind, "err", err)
		} else {
			slog.Debug("command failed", "line", line, "err", err)
		}
	}

	return quit, err
}
