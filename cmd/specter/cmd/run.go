// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/specter-re/specter/internal/core/config"
)

func getRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Process requests from stdin, one per line, until EOF or interrupt",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}

			a, err := buildAgent(cfg)
			if err != nil {
				return fmt.Errorf("error building agent: %w", err)
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-sigCh
				a.Stop()
			}()

			done := make(chan struct{})
			go func() {
				a.Run()
				close(done)
			}()

			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				request := strings.TrimSpace(scanner.Text())
				if request == "" {
					continue
				}
				if err := a.SubmitTask(request); err != nil {
					fmt.Fprintf(os.Stderr, "could not queue request: %v\n", err)
				}
			}

			a.Stop()
			<-done
			return scanner.Err()
		},
	}
}
