package cmd

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run [script...]",
		Short: "Run the commands of one or more scripts.",
		Long: "`run` executes the commands in the given script files, one per " +
			"line. Without files, commands are read from stdin. Lines starting " +
			"with # are comments.",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer s.close()

			failFast, _ := cmd.Flags().GetBool("fail-fast")

			if len(args) == 0 {
				_, err := runScript(s, "stdin", cmd.InOrStdin(), cmd.OutOrStdout(), failFast)
				return err
			}

			for _, path := range args {
				quit, err := runFile(s, path, cmd.OutOrStdout(), failFast)
				if err != nil {
					return err
				}

				if quit {
					break
				}
			}

			return nil
		},
	}

	runCmd.Flags().Bool("fail-fast", false,
		"Stop at the first command that fails.")

	return runCmd
}

func runFile(s *session, path string, out io.Writer, failFast bool) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("open script: %w", err)
	}
	defer f.Close()

	return runScript(s, path, f, out, failFast)
}

func runScript(
	s *session,
	name string,
	in io.Reader,
	out io.Writer,
	failFast bool,
) (bool, error) {
	var lines []string

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return false, fmt.Errorf("read %s: %w", name, err)
	}

	slog.Info("running script", "script", name, "lines", len(lines))

	if s.monitor != nil {
		bar := s.monitor.CreateProgressBar(name, uint64(len(lines)))
		defer s.monitor.CompleteProgressBar(bar)

		return runLines(s, lines, out, failFast, bar)
	}

	return runLines(s, lines, out, failFast, noProgress{})
}

// lineProgress tracks how many lines of a script have run.
type lineProgress interface {
	IncrementInProgress(amount uint64)
	MoveInProgressToFinished(amount uint64)
	IncrementFinished(amount uint64)
}

type noProgress struct{}

func (noProgress) IncrementInProgress(uint64)      {}
func (noProgress) MoveInProgressToFinished(uint64) {}
func (noProgress) IncrementFinished(uint64)        {}

func isComment(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed == "" || strings.HasPrefix(trimmed, "#")
}

func runLines(
	s *session,
	lines []string,
	out io.Writer,
	failFast bool,
	progress lineProgress,
) (bool, error) {
	for i, line := range lines {
		if isComment(line) {
			progress.IncrementFinished(1)
			continue
		}

		progress.IncrementInProgress(1)
		quit, err := s.execute(line, out)
		progress.MoveInProgressToFinished(1)

		if err != nil && failFast {
			return false, fmt.Errorf("line %d: %w", i+1, err)
		}

		if quit {
			return true, nil
		}
	}

	return false, nil
}
