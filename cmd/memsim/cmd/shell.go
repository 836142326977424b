package cmd

import (
	"bufio"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

func newShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive shell.",
		Long:  "`shell` reads commands from the terminal until exit or quit.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			s, err := newSession(cmd, out)
			if err != nil {
				return err
			}
			defer s.close()

			fmt.Fprintln(out, "memsim shell. Type 'help' for available commands.")
			slog.Debug("shell started")

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, "> ")

				if !scanner.Scan() {
					break
				}

				quit, _ := s.execute(scanner.Text(), out)
				if quit {
					break
				}
			}

			fmt.Fprintln(out, "Bye")

			return scanner.Err()
		},
	}
}
