package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/release-packager/internal/config"
	"github.com/oshokin/release-packager/internal/logger"
	"github.com/oshokin/release-packager/internal/service/packager"
	"github.com/oshokin/release-packager/internal/version"
)

// errUnknownLogLevel is returned when the --log-level value is not recognized.
var errUnknownLogLevel = errors.New("unknown log level")

var (
	// configPath to the configuration YAML file.
	configPath string
	// buildPackage selects the package built by the toolchain.
	buildPackage string
	// binaryName overrides the produced binary's base name.
	binaryName string
	// resources lists auxiliary paths staged into the archive root.
	resources []string
	// outputDir receives the finished archive.
	outputDir string
	// cargoBin is the toolchain executable name or path.
	cargoBin string
	// timeout bounds the whole packaging run.
	timeout time.Duration
	// logLevel is the minimum level of emitted log messages.
	logLevel string

	// rootCmd represents the base command producing one release archive.
	rootCmd = &cobra.Command{
		Use:   "release-packager [crate-name] [version-tag] [target-triple]",
		Short: "Cross-compile a release binary and package it into a tar.gz archive",
		Long: "Cross-compile a single package for a target triple via cargo, stage the " +
			"binary and auxiliary resources, and produce " +
			"<crate-name>-<version-tag>-<target-triple>.tar.gz in the output directory.",
		Args: cobra.ExactArgs(3),
		RunE: func(_ *cobra.Command, args []string) error {
			level, ok := logger.ParseLogLevel(logLevel)
			if !ok {
				return fmt.Errorf("%w: %s", errUnknownLogLevel, logLevel)
			}

			logger.SetLevel(level)

			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &packager.Options{
				ConfigPath:   configPath,
				CrateName:    args[0],
				VersionTag:   args[1],
				TargetTriple: args[2],
				BuildPackage: buildPackage,
				BinaryName:   binaryName,
				Resources:    resources,
				OutputDir:    outputDir,
				CargoBin:     cargoBin,
				Timeout:      timeout,
			}

			return packager.Run(ctx, options)
		},
	}
)

// Execute runs the release-packager CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&buildPackage, "package", "p", "", "package selector passed to the build toolchain")
	rootCmd.Flags().StringVarP(&binaryName, "binary-name", "b", "", "binary base name (defaults to the build package)")
	rootCmd.Flags().StringSliceVarP(&resources, "resources", "r", nil, "auxiliary paths copied into the archive root")
	rootCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "directory receiving the archive")
	rootCmd.Flags().StringVar(&cargoBin, "cargo-bin", "", "cargo executable name or path")
	rootCmd.Flags().DurationVarP(&timeout, "timeout", "t", 0, "overall packaging deadline")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "info", "minimum log level (debug, info, warn, error)")
}
