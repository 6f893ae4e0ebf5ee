// Package generator writes unit tests for changed source files by asking a
// text-generation service for them.
package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/goaux/contextvalue"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/takumakei/test-gen-go/execpipe"
	"github.com/takumakei/test-gen-go/llm"
)

// Main runs the command described by config and exits the process.
func Main(ctx context.Context, config Config) {
	os.Exit(Execute(ctx, config, os.Args[1:], os.Stdout, os.Stderr))
}

// Execute runs the command with args and returns the exit code.
func Execute(ctx context.Context, config Config, args []string, stdout, stderr io.Writer) int {
	config.withDefaults()

	fl := new(flagsType)
	cmd := &cobra.Command{
		Use:     config.Use,
		Short:   config.Short,
		Long:    render(config.Long),
		Version: config.Version,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, fl)
		},

		ValidArgsFunction: validArgs,

		SilenceErrors: true,
		SilenceUsage:  true,
	}

	f := cmd.Flags()
	f.SortFlags = false
	f.StringVarP(&fl.Base, "base", "b", config.DefaultBase, "Base `revision` to diff HEAD against")
	f.StringVarP(&fl.Provider, "provider", "P", config.DefaultProvider, "Generation `provider` (gemini, openai)")
	f.StringVarP(&fl.Model, "model", "m", config.DefaultModel, "`model` name, empty for the provider default")
	f.StringVarP(&fl.Settings, "config", "c", config.DefaultSettings, "Settings `filename.yaml`, ignored if missing")
	f.StringSliceVarP(&fl.Files, "file", "f", nil, "Generate for `filename.go` instead of the diff (repeatable)")
	f.BoolVarP(&fl.Format, "format", "F", config.DefaultFormat, "Use goimports if true")
	f.BoolVarP(&fl.Verbose, "verbose", "v", false, "Log debug messages")

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.MarkFlagFilename("config", "yaml", "yml")
	cmd.MarkFlagFilename("file", strings.TrimPrefix(config.Extension, "."))
	cmd.RegisterFlagCompletionFunc("provider", func(*cobra.Command, []string, string) ([]cobra.Completion, cobra.ShellCompDirective) {
		return []cobra.Completion{llm.ProviderGemini, llm.ProviderOpenAI}, cobra.ShellCompDirectiveNoFileComp
	})

	if args == nil {
		args = []string{} // cobra falls back to os.Args on nil
	}
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	ctx = contextvalue.With(ctx, &config)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err.Error())
		return 1
	}
	return 0
}

func render(usage string) string {
	if isTTY(os.Stdout) {
		r, err := glamour.NewTermRenderer(
			glamour.WithEnvironmentConfig(),
			glamour.WithWordWrap(100),
		)
		if err == nil { // if NO error
			if s, err := r.Render(usage); err == nil { // if NO error
				return s
			}
		}
	}
	return usage
}

func validArgs(_ *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
	return nil, cobra.ShellCompDirectiveNoFileComp
}

type flagsType struct {
	Base     string
	Provider string
	Model    string
	Settings string
	Files    []string
	Format   bool
	Verbose  bool
}

func isTTY(io any) bool {
	if f, ok := io.(*os.File); ok {
		return isatty.IsTerminal(f.Fd())
	}
	return false
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// changed returns v if the flag was given on the command line, "" otherwise.
func changed(f *pflag.FlagSet, name, v string) string {
	if f.Changed(name) {
		return v
	}
	return ""
}

func run(cmd *cobra.Command, fl *flagsType) error {
	ctx := cmd.Context()
	config, ok := contextvalue.From[*Config](ctx)
	if !ok {
		panic("never")
	}

	settings, err := LoadSettings(config.path(fl.Settings))
	if err != nil {
		return fmt.Errorf("settings %s: %w", fl.Settings, err)
	}
	f := cmd.Flags()
	base := pick(changed(f, "base", fl.Base), settings.Base, fl.Base)
	provider := pick(changed(f, "provider", fl.Provider), settings.Provider, fl.Provider)
	model := pick(changed(f, "model", fl.Model), settings.Model, fl.Model)
	ext := pick(settings.Extension, config.Extension)
	suffix := pick(settings.TestSuffix, config.TestSuffix)

	// The credential is checked before anything else touches the working copy.
	env, err := llm.CredentialEnv(provider)
	if err != nil {
		return err
	}
	apiKey := config.Getenv(env)
	if apiKey == "" {
		return fmt.Errorf("%s not set", env)
	}

	prompt, err := ParsePrompt(pick(settings.Prompt, config.Prompt))
	if err != nil {
		return fmt.Errorf("prompt template: %w", err)
	}

	var formatter string
	if fl.Format {
		if err := execpipe.CheckPath("goimports"); err != nil {
			return errors.New("goimports was not found, consider using `--format=false`")
		}
		formatter = "goimports"
	}

	logger := newLogger(cmd.ErrOrStderr(), fl.Verbose)
	runner := &Runner{
		Lister:     config.NewLister(config.Dir),
		Prompt:     prompt,
		Base:       base,
		Extension:  ext,
		TestSuffix: suffix,
		Dir:        config.Dir,
		Formatter:  formatter,
		Logger:     logger,
		Out:        cmd.OutOrStdout(),
	}

	var paths ChangeSet
	if len(fl.Files) > 0 {
		paths = runner.Select(fl.Files)
	} else {
		paths = runner.ChangedFiles(ctx)
	}
	if len(paths) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No %s files changed.\n", ext)
		return nil
	}

	gen, err := config.NewGenerator(ctx, llm.Options{
		Provider: provider,
		Model:    model,
		APIKey:   apiKey,
		BaseURL:  settings.BaseURL,
	})
	if err != nil {
		return err
	}
	defer gen.Close()
	runner.Generator = gen

	report := runner.Run(ctx, paths)
	logger.Info("done",
		"created", len(report.Created),
		"skipped", len(report.Skipped),
		"failed", len(report.Failed),
	)
	return nil
}
