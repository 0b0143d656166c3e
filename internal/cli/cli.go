// Package cli is the cobra command tree of the modelview binary.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"modelview/internal/config"
)

// Version is stamped at build time with -ldflags "-X modelview/internal/cli.Version=...".
var Version = "dev"

// Options holds persistent flag values. Empty values leave the config untouched.
type Options struct {
	ConfigPath string
	URL        string
	LogLevel   string
	LogFormat  string
	LogFile    string
	StatusAddr string
	TimeoutMS  int

	Out io.Writer
	Err io.Writer
}

// Commands are resolved through these vars so tests can stub them.
var (
	fnView  = runView
	fnWatch = runWatch
)

// Run executes the command tree with args.
func Run(ctx context.Context, args []string, opts *Options) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	root := buildRootCmdWith(opts)
	root.SetArgs(args)
	root.SetOut(opts.Out)
	root.SetErr(opts.Err)
	return root.ExecuteContext(ctx)
}

func buildRootCmdWith(opts *Options) *cobra.Command {
	root := &cobra.Command{
		Use:           "modelview",
		Short:         "Browse and compose 3D models served over a websocket",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&opts.ConfigPath, "config", opts.ConfigPath, "Config file (.yaml|.yml|.json|.toml); default searches ./modelview.* and ~/.config/modelview")
	pf.StringVar(&opts.URL, "url", opts.URL, "Backend websocket URL (default "+config.DefaultURL+")")
	pf.StringVar(&opts.LogLevel, "log-level", opts.LogLevel, "Log level: off|error|warn|info|debug")
	pf.StringVar(&opts.LogFormat, "log-format", opts.LogFormat, "Log format: console|json")
	pf.StringVar(&opts.LogFile, "log-file", opts.LogFile, "Append logs to this file instead of stderr")
	pf.StringVar(&opts.StatusAddr, "status-addr", opts.StatusAddr, "Serve the HTTP status API on this address, e.g. 127.0.0.1:8090")
	pf.IntVar(&opts.TimeoutMS, "timeout", opts.TimeoutMS, "Single-model request timeout in milliseconds")

	viewCmd := &cobra.Command{
		Use:     "view",
		Short:   "Interactive terminal viewer",
		Example: "  modelview view --url ws://127.0.0.1:8000/ws",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(opts)
			if err != nil {
				return err
			}
			return fnView(cmd.Context(), cfg, opts)
		},
	}

	var selectArg string
	watchCmd := &cobra.Command{
		Use:     "watch",
		Short:   "Headless session that prints status changes",
		Example: "  modelview watch --select all\n  modelview watch --select 3 --status-addr :8090",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := parseSelection(selectArg)
			if err != nil {
				return err
			}
			cfg, err := resolveConfig(opts)
			if err != nil {
				return err
			}
			return fnWatch(cmd.Context(), cfg, opts, sel)
		},
	}
	watchCmd.Flags().StringVar(&selectArg, "select", "", "Selection to apply once the catalog arrives: <id>|all|none")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "modelview %s\n", Version)
		},
	}

	completionCmd := &cobra.Command{Use: "completion", Short: "Generate the autocompletion script for the specified shell"}
	completionCmd.AddCommand(&cobra.Command{Use: "bash", Short: "Bash completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenBashCompletion(cmd.OutOrStdout()) }})
	completionCmd.AddCommand(&cobra.Command{Use: "zsh", Short: "Zsh completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenZshCompletion(cmd.OutOrStdout()) }})
	completionCmd.AddCommand(&cobra.Command{Use: "fish", Short: "Fish completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenFishCompletion(cmd.OutOrStdout(), true) }})
	completionCmd.AddCommand(&cobra.Command{Use: "powershell", Short: "PowerShell completion", RunE: func(cmd *cobra.Command, args []string) error {
		return root.GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
	}})

	root.AddCommand(viewCmd, watchCmd, versionCmd, completionCmd)
	root.CompletionOptions.DisableDefaultCmd = true
	return root
}

// resolveConfig applies defaults < file < .env/env < flags.
func resolveConfig(opts *Options) (config.Config, error) {
	cfg, path, err := config.Discover(opts.ConfigPath)
	if err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	config.LoadDotEnv(".env")
	cfg.ApplyEnv()
	if opts.URL != "" {
		cfg.URL = opts.URL
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	if opts.LogFormat != "" {
		cfg.LogFormat = opts.LogFormat
	}
	if opts.StatusAddr != "" {
		cfg.StatusAddr = opts.StatusAddr
	}
	if opts.TimeoutMS > 0 {
		cfg.RequestTimeoutMS = opts.TimeoutMS
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
