package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/dshills/gitdump/internal/config"
	"github.com/dshills/gitdump/internal/cursor"
	"github.com/dshills/gitdump/internal/dump"
	"github.com/dshills/gitdump/internal/gitctx"
	"github.com/dshills/gitdump/internal/log"
	"github.com/dshills/gitdump/internal/output"
	"github.com/dshills/gitdump/internal/patch"
	"github.com/dshills/gitdump/internal/tags"
)

// Dump-only flags
var (
	flagNoMerges        bool
	flagNestPrereleases bool
	flagFormat          string
)

// appFs is the filesystem patches and cursors are written to.
var appFs afero.Fs = afero.NewOsFs()

func addDumpFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&flagNoMerges, "no-merges", false, "Skip merge commits")
	cmd.Flags().BoolVar(&flagNestPrereleases, "nest-prereleases", false, "Place prerelease tags such as v3.0-rc1 under v3.0/")
	cmd.Flags().StringVar(&flagFormat, "format", "", "Report format (text, json)")
}

func buildOverrides(cmd *cobra.Command) map[string]string {
	m := make(map[string]string)
	if flagOut != "" {
		m["outputDir"] = flagOut
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if f := cmd.Flags().Lookup("no-merges"); f != nil && f.Changed {
		m["noMerges"] = strconv.FormatBool(flagNoMerges)
	}
	if f := cmd.Flags().Lookup("nest-prereleases"); f != nil && f.Changed {
		m["nestPrereleases"] = strconv.FormatBool(flagNestPrereleases)
	}
	return m
}

// session is the state every repository-bound command starts from.
type session struct {
	cfg    config.Config
	repo   *gitctx.Repo
	outDir string
	logger *slog.Logger
}

func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load(buildOverrides(cmd))
	if err != nil {
		return nil, usageError(err)
	}
	logger := log.New(cmd.ErrOrStderr(), flagVerbose, cfg.LogFormat)

	repo, err := gitctx.Open(commandContext(cmd), flagRepo, logger)
	if err != nil {
		return nil, err
	}
	outDir, err := resolveOutDir(cfg.OutputDir, flagOut != "", repo.Root())
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, repo: repo, outDir: outDir, logger: logger}, nil
}

// resolveOutDir makes the output directory absolute. A directory given on
// the command line is relative to the working directory, a configured one to
// the repository root. Writing into the git directory is refused.
func resolveOutDir(dir string, fromFlag bool, root string) (string, error) {
	if !filepath.IsAbs(dir) {
		if fromFlag {
			abs, err := filepath.Abs(dir)
			if err != nil {
				return "", usageError(fmt.Errorf("resolving output directory: %w", err))
			}
			dir = abs
		} else {
			dir = filepath.Join(root, dir)
		}
	}
	dir = filepath.Clean(dir)

	gitDir := filepath.Join(root, ".git")
	if dir == gitDir || strings.HasPrefix(dir, gitDir+string(filepath.Separator)) {
		return "", usageError(fmt.Errorf("output directory %s is inside the git directory", dir))
	}
	return dir, nil
}

// sessionError passes usage errors back to cobra and reports the rest.
func sessionError(cmd *cobra.Command, err error) error {
	var ue *UsageError
	if errors.As(err, &ue) {
		return err
	}
	return fail(cmd, err)
}

func globArg(args []string) (string, error) {
	if len(args) == 0 {
		return "", nil
	}
	if err := tags.ValidateGlob(args[0]); err != nil {
		return "", usageError(err)
	}
	return args[0], nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func runDump(cmd *cobra.Command, args []string) error {
	start := time.Now()
	glob, err := globArg(args)
	if err != nil {
		return err
	}
	s, err := openSession(cmd)
	if err != nil {
		return sessionError(cmd, err)
	}
	writer, err := output.GetWriter(s.cfg.Format)
	if err != nil {
		return usageError(err)
	}

	ctx := commandContext(cmd)
	logger := s.logger
	selector := cursor.Selector(flagAll, glob)

	sink := patch.NewWriter(appFs, s.outDir, patch.Options{MaxNameLength: s.cfg.FilenameMaxLength}, logger)
	store := cursor.New(appFs, s.outDir, selector)
	opts := dump.Options{
		Flat:            flagAll,
		Glob:            glob,
		NoMerges:        s.cfg.NoMerges,
		NestPrereleases: s.cfg.NestPrereleases,
		UnreleasedDir:   s.cfg.UnreleasedDir,
		Logger:          logger,
	}

	logger.Debug("starting dump",
		"repo", s.repo.Root(),
		"out", s.outDir,
		"selector", selector,
	)
	res, err := dump.Incremental(ctx, s.repo, sink, store, opts)
	if err != nil {
		return fail(cmd, err)
	}

	report := output.NewReport(output.RunInfo{
		Version:  version,
		Meta:     s.repo.Meta(ctx),
		OutDir:   s.outDir,
		Selector: selector,
		Flat:     flagAll,
		Glob:     glob,
		Elapsed:  time.Since(start),
	}, res)
	if err := writer.Write(cmd.OutOrStdout(), report); err != nil {
		return fail(cmd, fmt.Errorf("writing report: %w", err))
	}
	return nil
}
