package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/openpath-labs/openpath-bridge/internal/bridge"
	"github.com/openpath-labs/openpath-bridge/internal/cliconfig"
	"github.com/openpath-labs/openpath-bridge/internal/harreport"
)

const helpDescription = `
Native Messaging host bridging the browser extension to the local
domain-whitelist tooling. The browser launches this binary and speaks
length-prefixed JSON over stdin/stdout; each request is translated into
an invocation of the whitelist CLI or the update script.

Run it by hand only for debugging: without a browser on the other end
of the pipe it exits as soon as stdin closes.
`

var exampleUsage = strings.TrimSpace(`
  openpath-bridge
  openpath-bridge --whitelist-cmd /opt/openpath/bin/whitelist
  openpath-bridge report capture.har
  openpath-bridge report --watch ~/Downloads
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	log := cliconfig.Logger()

	root := &cobra.Command{
		Use:     "openpath-bridge",
		Short:   "Native Messaging host for the openpath whitelist extension",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load config file first (default ~/.openpath/config.toml),
			// then env, with explicitly set flags winning over both.
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			log.Info().
				Str("whitelist_cmd", cfg.WhitelistCmd).
				Str("update_script", cfg.UpdateScript).
				Str("log_path", cfg.LogPath).
				Msg("serving native messaging on stdin/stdout")

			return bridge.New(cfg.Bridge()).Run(cmd.Context())
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: ~/.openpath/config.toml)")
	root.Flags().StringVar(&cfg.WhitelistCmd, "whitelist-cmd", cfg.WhitelistCmd, "whitelist CLI invoked for check/list/status")
	root.Flags().StringVar(&cfg.UpdateScript, "update-script", cfg.UpdateScript, "update script invoked by update-whitelist")
	root.Flags().DurationVar(&cfg.CheckTimeout, "check-timeout", cfg.CheckTimeout, "timeout per whitelist CLI invocation")
	root.Flags().DurationVar(&cfg.UpdateTimeout, "update-timeout", cfg.UpdateTimeout, "timeout for the update script")
	root.Flags().IntVar(&cfg.MaxDomains, "max-domains", cfg.MaxDomains, "maximum domains per check request")
	root.Flags().StringVar(&cfg.LogPath, "log-path", cfg.LogPath, "debug log file (default: data directory)")
	root.Flags().Int64Var(&cfg.LogMaxBytes, "log-max-bytes", cfg.LogMaxBytes, "debug log rotation threshold in bytes")

	root.AddCommand(newReportCommand())

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("openpath-bridge")
		os.Exit(1)
	}
}

func newReportCommand() *cobra.Command {
	var (
		watchDir string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "report [capture.har...]",
		Short: "Summarize failed requests in a browser HAR capture",
		Long: strings.TrimSpace(`
Scan one or more HAR captures for failed requests and print the domains
that would need whitelisting. With --watch, keep running and report
every new .har file that appears in the given directory.
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && watchDir == "" {
				return fmt.Errorf("provide at least one capture file or --watch")
			}

			for _, path := range args {
				if err := reportFile(path, limit); err != nil {
					return err
				}
			}

			if watchDir == "" {
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log := cliconfig.Logger()
			log.Info().Str("dir", watchDir).Msg("watching for new captures")

			err := harreport.Watch(ctx, watchDir, func(path string) {
				if err := reportFile(path, limit); err != nil {
					log.Error().Err(err).Str("capture", path).Msg("report failed")
				}
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&watchDir, "watch", "", "directory to watch for new .har captures")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum failing requests to detail (0 = no limit)")
	return cmd
}

func reportFile(path string, limit int) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open capture: %w", err)
	}
	defer f.Close()

	rep, err := harreport.Parse(f)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return harreport.Write(os.Stdout, rep, limit)
}
