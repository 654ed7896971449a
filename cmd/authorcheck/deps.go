// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/authorcheck/internal/deps"
	"github.com/pdiddy/authorcheck/pkg/types"
)

var depsCmd = &cobra.Command{
	Use:   "deps",
	Short: "Check that the page renderer can be found",
	Long: `Deps reports whether pdftoppm and the docker/podman container runtimes
are on PATH. Which of them are required depends on --renderer. The command
fails when a required binary is missing.`,
	Args: cobra.NoArgs,
	RunE: runDeps,
}

func runDeps(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper(), "")
	if err != nil {
		return err
	}

	statuses := deps.CheckBinaries(deps.ForRender(cfg.Render))
	rows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		state := "ok"
		switch {
		case !s.Available && s.Optional:
			state = "missing (optional)"
		case !s.Available:
			state = "missing"
		}
		detail := s.Path
		if detail == "" {
			detail = s.Detail
		}
		rows = append(rows, []string{s.Name, state, detail, s.Description})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Dependency", "Status", "Location", "Used for"}, rows, nil))

	if cfg.Render.Backend == types.BackendContainer && !anyAvailable(statuses, "docker", "podman") {
		return fmt.Errorf("container renderer needs docker or podman on PATH")
	}
	if missing := deps.Missing(statuses); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, m := range missing {
			names[i] = m.Command
		}
		return fmt.Errorf("missing required dependencies: %s", strings.Join(names, ", "))
	}
	return nil
}

func anyAvailable(statuses []deps.Status, names ...string) bool {
	for _, s := range statuses {
		if s.Available && slices.Contains(names, s.Name) {
			return true
		}
	}
	return false
}

func init() {
	rootCmd.AddCommand(depsCmd)
}
