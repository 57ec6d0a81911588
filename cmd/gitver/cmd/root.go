// Package cmd implements the gitver command line.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmgilman/gitver/cache"
	"github.com/jmgilman/gitver/config"
	platformerrors "github.com/jmgilman/gitver/errors"
	"github.com/jmgilman/gitver/internal/logger"
	"github.com/jmgilman/gitver/metadata"
	"github.com/jmgilman/gitver/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries state shared by the commands of one invocation.
type app struct {
	viper      *viper.Viper
	configPath string
	cfg        *config.Config
}

// Execute runs gitver with the process arguments and exits with the status
// matching the error, if any.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	code := Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	os.Exit(code)
}

// Run executes gitver with args and returns the exit status. Only the
// version is written to stdout; errors and logs go to stderr.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		var platformErr platformerrors.PlatformError
		if platformerrors.As(err, &platformErr) && len(platformErr.Context()) > 0 {
			logger.Logger().Debugw("command failed", "code", platformErr.Code(), "context", platformErr.Context())
		}

		_, _ = fmt.Fprintf(stderr, "gitver: %v\n", err)
		return platformerrors.ExitCode(err)
	}

	return platformerrors.ExitOK
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	a := &app{viper: viper.New()}

	root := &cobra.Command{
		Use:   "gitver -g <path>",
		Short: "Print a semantic version derived from git history.",
		Long: `Print a semantic version of the form

  <major>.<minor>.<patch>-<distance>.<commit>[+<timestamp>]

where major.minor.patch comes from the nearest reachable tag, distance is the
number of commits since that tag and commit is the abbreviated HEAD id.

Every flag can also be set through a GITVER_ environment variable (for
example GITVER_CACHE=true) or in a YAML file given with --config. A
.gitver.yaml in the working directory is read when present.

Exit status is 1 for repository errors, 2 for tags that are not a
major.minor.patch version and 3 for anything else.`,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.load,
		RunE:              a.resolve,
	}

	persistent := root.PersistentFlags()
	persistent.StringP(config.KeyGitDir, "g", "", "path to the git repository (required)")
	persistent.String(config.KeyCacheDir, cache.DefaultDir, "directory holding cache entries")
	persistent.String(config.KeyLogLevel, config.DefaultLogLevel, "log level written to stderr (debug, info, warn, error)")
	persistent.StringVar(&a.configPath, "config", "", "path to a YAML config file")

	flags := root.Flags()
	flags.BoolP(config.KeyTimestamp, "m", false, "append +<UTC timestamp> to freshly computed versions")
	flags.BoolP(config.KeyCache, "c", false, "read and write the version cache")
	flags.String(config.KeyBackend, metadata.BackendGoGit, "metadata backend: go-git or git")
	flags.String(config.KeyDefaultVersion, version.DefaultCore, "version used when no tag is reachable")
	flags.Bool(config.KeyShortRelease, false, "print the bare version for a clean, exactly tagged HEAD")
	flags.Bool(config.KeyDirty, false, "mark versions of modified working trees with .dirty")
	flags.String(config.KeyTagPrefix, "", "only consider tags starting with this prefix")
	flags.String(config.KeyTagMatch, "", "only consider tags matching this glob, as git describe --match")
	flags.Int(config.KeyAbbrev, metadata.DefaultAbbrev, "length of the abbreviated commit id")

	root.AddCommand(newCacheCommand(a), newVersionCommand())

	return root
}

// load merges flags, environment and config file, then installs the logger.
func (a *app) load(cmd *cobra.Command, _ []string) error {
	if err := a.viper.BindPFlags(cmd.Flags()); err != nil {
		return platformerrors.Wrap(err, platformerrors.CodeInvalidConfig, "failed to bind flags")
	}

	cfg, err := config.Load(a.viper, a.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := logger.ParseLogLevel(cfg.LogLevel)
	logger.SetLogger(logger.NewWithWriter(cmd.ErrOrStderr(), level))
	cmd.SetContext(logger.WithName(cmd.Context(), cmd.Name()))

	a.cfg = cfg
	return nil
}

func (a *app) resolve(cmd *cobra.Command, _ []string) error {
	if err := a.cfg.RequireGitDir(); err != nil {
		return err
	}

	var opts []version.ResolverOption
	if a.cfg.Cache {
		opts = append(opts, version.WithCache(cache.New(a.cfg.CacheDir, cache.WithSelection(a.cfg.CacheSelection()))))
	}

	sourceOptions := a.cfg.MetadataOptions()
	open := func(repoPath string) (metadata.Source, error) {
		return metadata.New(repoPath, sourceOptions)
	}

	v, err := version.NewResolver(open, a.cfg.VersionOptions(), opts...).Resolve(cmd.Context(), a.cfg.GitDir)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), v.String())
	return err
}
