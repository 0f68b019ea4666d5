// Command gitsnip extracts a single file from a remote Git repository at a
// chosen branch, tag, or commit, and caches it under a content-addressed
// name in the snippets directory.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gitsnip/gitsnip"
	"github.com/gitsnip/gitsnip/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type rootFlags struct {
	gitURL      string
	branch      string
	tag         string
	commitHash  string
	path        string
	snippetsDir string
	logLevel    string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "gitsnip",
		Short: "Extract and cache a single file from a remote git repository",
		Long: `gitsnip resolves a branch, tag, or commit on a remote git repository,
fetches exactly one commit, and caches the requested file under
a content-addressed name. Re-running with unchanged upstream state
returns the cached snippet without fetching anything.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.gitURL, "git", "", "remote repository URL (required)")
	cmd.Flags().StringVar(&flags.branch, "branch", "", "branch to resolve")
	cmd.Flags().StringVar(&flags.tag, "tag", "", "tag to resolve")
	cmd.Flags().StringVar(&flags.commitHash, "commit-hash", "", "explicit commit hash")
	cmd.Flags().StringVar(&flags.path, "path", "", "file path relative to the repository root (required)")
	cmd.Flags().StringVar(&flags.snippetsDir, "snippets-dir", "", "directory for cached snippets (default \".snippets\")")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "", "log level (default \"info\")")

	_ = cmd.MarkFlagRequired("git")
	_ = cmd.MarkFlagRequired("path")
	cmd.MarkFlagsMutuallyExclusive("branch", "tag", "commit-hash")

	return cmd
}

func run(cmd *cobra.Command, flags *rootFlags) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if flags.snippetsDir != "" {
		cfg.SnippetsDir = flags.snippetsDir
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	selector, err := gitsnip.NewSelector(flags.branch, flags.tag, flags.commitHash)
	if err != nil {
		return err
	}

	result, err := gitsnip.Extract(cmd.Context(), gitsnip.Request{
		RepoURL:  flags.gitURL,
		Selector: selector,
		Path:     flags.path,
	},
		gitsnip.WithStoreDir(cfg.SnippetsDir),
		gitsnip.WithWorkspaceDir(cfg.WorkspaceDir),
		gitsnip.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"commit":    result.Commit,
		"selector":  result.Selector.String(),
		"refreshed": result.Refreshed,
	}).Info("done")
	fmt.Fprintln(cmd.OutOrStdout(), result.SnippetPath)

	return nil
}

func newLogger(cfg *config.Config) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(level)
	if cfg.LogJSON {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	}

	return logger, nil
}
