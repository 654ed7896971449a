// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the authorcheck CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/authorcheck/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd scans a submissions folder.
var rootCmd = &cobra.Command{
	Use:   "authorcheck <dir>",
	Short: "Flag shared and missing authors in a folder of submitted PDFs",
	Long: `authorcheck walks <dir> for PDF files and reads the author and dates
from each document's information dictionary. It lists submissions that share
an author and submissions with no author, renders the first page of each of
those to compare them pixel for pixel, and writes everything to a workbook
(metadata.xlsx by default). First pages of no-author submissions are saved
under noname/.

Rendering uses poppler's pdftoppm, either from PATH or inside a docker/podman
image (--renderer container). When no renderer is available, image
comparison is skipped and the metadata results are still written.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runScan,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./authorcheck.yaml or ~/.config/authorcheck/authorcheck.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text or json")
	pf.String("renderer", string(types.BackendNative), "where pdftoppm runs: native or container")
	pf.String("pdftoppm", types.DefaultBinary, "pdftoppm command")
	pf.String("image", types.DefaultImage, "container image providing pdftoppm")

	f := rootCmd.Flags()
	f.StringP("output", "o", types.DefaultOutput, "workbook to write")
	f.String("image-dir", types.DefaultImageDir, "directory for first pages of no-author submissions")
	f.Bool("reuse-image-dir", false, "allow --image-dir to exist already")
	f.Int("dpi", types.DefaultDPI, "rendering resolution")
	f.String("format", formatText, "summary format: text, json, or yaml")

	bind := map[string]string{
		"log.level":       "log-level",
		"log.format":      "log-format",
		"render.backend":  "renderer",
		"render.binary":   "pdftoppm",
		"render.image":    "image",
		"render.dpi":      "dpi",
		"report.output":   "output",
		"image_dir":       "image-dir",
		"reuse_image_dir": "reuse-image-dir",
	}
	for key, name := range bind {
		flag := pf.Lookup(name)
		if flag == nil {
			flag = f.Lookup(name)
		}
		_ = viper.BindPFlag(key, flag)
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("authorcheck")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "authorcheck"))
		}
	}

	viper.SetEnvPrefix("AUTHORCHECK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig assembles the run configuration from viper (file, environment
// and bound flags) and fills in defaults.
func loadConfig(v *viper.Viper, root string) (types.AuditConfig, error) {
	var cfg types.AuditConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading configuration: %w", err)
	}
	cfg.Root = root
	return cfg.WithDefaults(), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
