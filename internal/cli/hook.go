package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

const (
	hookMarkerStart = "# >>> git-dump-commit post-commit hook >>>"
	hookMarkerEnd   = "# <<< git-dump-commit post-commit hook <<<"
	hookName        = "hooks/post-commit"
)

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Manage the git post-commit hook",
	Long: `Install a post-commit hook that runs an incremental dump after every
commit. The hook uses the --out, --all and tag glob given at install time.`,
}

var hookInstallCmd = &cobra.Command{
	Use:   "install [tag-glob]",
	Short: "Run git-dump-commit after every commit",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		glob, err := globArg(args)
		if err != nil {
			return err
		}
		s, err := openSession(cmd)
		if err != nil {
			return sessionError(cmd, err)
		}
		hookPath, err := s.repo.GitPath(commandContext(cmd), hookName)
		if err != nil {
			return fail(cmd, err)
		}

		section := generateHookScript(s.outDir, flagAll, glob)

		existing, err := os.ReadFile(hookPath)
		if err != nil && !os.IsNotExist(err) {
			return fail(cmd, fmt.Errorf("reading hook file: %w", err))
		}

		var content string
		if os.IsNotExist(err) || len(existing) == 0 {
			content = "#!/bin/sh\n" + section
		} else {
			content = replaceHookSection(string(existing), section)
		}

		if err := os.MkdirAll(filepath.Dir(hookPath), 0o755); err != nil {
			return fail(cmd, fmt.Errorf("creating hooks directory: %w", err))
		}
		if err := os.WriteFile(hookPath, []byte(content), 0o755); err != nil {
			return fail(cmd, fmt.Errorf("writing hook file: %w", err))
		}
		// WriteFile keeps the mode of an existing file.
		if err := os.Chmod(hookPath, 0o755); err != nil {
			return fail(cmd, fmt.Errorf("making hook executable: %w", err))
		}

		cmd.Printf("Installed post-commit hook at %s\n", hookPath)
		return nil
	},
}

var hookUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the post-commit hook",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return sessionError(cmd, err)
		}
		hookPath, err := s.repo.GitPath(commandContext(cmd), hookName)
		if err != nil {
			return fail(cmd, err)
		}

		existing, err := os.ReadFile(hookPath)
		if err != nil {
			if os.IsNotExist(err) {
				cmd.Println("No post-commit hook found.")
				return nil
			}
			return fail(cmd, fmt.Errorf("reading hook file: %w", err))
		}

		content := removeHookSection(string(existing))

		// If only shebang (and whitespace) remains, delete the file entirely
		trimmed := strings.TrimSpace(content)
		if trimmed == "" || trimmed == "#!/bin/sh" || trimmed == "#!/bin/bash" {
			if err := os.Remove(hookPath); err != nil {
				return fail(cmd, fmt.Errorf("removing hook file: %w", err))
			}
			cmd.Printf("Removed post-commit hook at %s\n", hookPath)
			return nil
		}

		if err := os.WriteFile(hookPath, []byte(content), 0o755); err != nil {
			return fail(cmd, fmt.Errorf("writing hook file: %w", err))
		}

		cmd.Printf("Removed git-dump-commit section from %s\n", hookPath)
		return nil
	},
}

func generateHookScript(outDir string, all bool, glob string) string {
	args := []string{"git-dump-commit", "--out", shellQuote(outDir)}
	if all {
		args = append(args, "--all")
	}
	if glob != "" {
		args = append(args, "--", shellQuote(glob))
	}

	var b strings.Builder
	b.WriteString(hookMarkerStart + "\n")
	b.WriteString(strings.Join(args, " ") + " >/dev/null\n")
	b.WriteString("GITDUMP_EXIT=$?\n")
	b.WriteString("if [ $GITDUMP_EXIT -ne 0 ]; then\n")
	b.WriteString("  echo \"git-dump-commit: dump failed (exit $GITDUMP_EXIT)\" >&2\n")
	b.WriteString("fi\n")
	b.WriteString(hookMarkerEnd + "\n")
	return b.String()
}

// shellQuote wraps s in single quotes for /bin/sh.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func replaceHookSection(existing, section string) string {
	startIdx := strings.Index(existing, hookMarkerStart)
	endIdx := strings.Index(existing, hookMarkerEnd)

	if startIdx == -1 || endIdx == -1 {
		if !strings.HasSuffix(existing, "\n") {
			existing += "\n"
		}
		return existing + section
	}

	before := existing[:startIdx]
	after := existing[endIdx+len(hookMarkerEnd):]
	// Trim leading newline from after to avoid double newlines
	after = strings.TrimPrefix(after, "\n")
	return before + section + after
}

func removeHookSection(existing string) string {
	startIdx := strings.Index(existing, hookMarkerStart)
	endIdx := strings.Index(existing, hookMarkerEnd)

	if startIdx == -1 || endIdx == -1 {
		return existing
	}

	before := existing[:startIdx]
	after := existing[endIdx+len(hookMarkerEnd):]
	after = strings.TrimPrefix(after, "\n")

	return before + after
}

func init() {
	hookCmd.AddCommand(hookInstallCmd)
	hookCmd.AddCommand(hookUninstallCmd)
}
