package cli

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

type testRepo struct {
	t   *testing.T
	dir string
}

// isolate points the config directory at a temp dir and clears GITDUMP_*
// variables so the developer's own settings do not leak into tests.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, kv := range os.Environ() {
		if name, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(name, "GITDUMP_") {
			t.Setenv(name, "")
			os.Unsetenv(name)
		}
	}
	return dir
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()
	isolate(t)
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := &testRepo{t: t, dir: dir}
	r.git("init", "-q")
	r.git("checkout", "-q", "-b", "main")
	return r
}

func (r *testRepo) git(args ...string) string {
	r.t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = r.dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=test",
		"GIT_AUTHOR_EMAIL=test@test.com",
		"GIT_COMMITTER_NAME=test",
		"GIT_COMMITTER_EMAIL=test@test.com",
		"GIT_CONFIG_NOSYSTEM=1",
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		r.t.Fatalf("git %v failed: %v\n%s", args, err, out)
	}
	return strings.TrimSpace(string(out))
}

// commit adds a file named after msg and commits it, returning the SHA.
func (r *testRepo) commit(msg string) string {
	r.t.Helper()
	name := strings.ReplaceAll(msg, " ", "_") + ".txt"
	if err := os.WriteFile(filepath.Join(r.dir, name), []byte(msg+"\n"), 0o644); err != nil {
		r.t.Fatal(err)
	}
	r.git("add", name)
	r.git("-c", "commit.gpgsign=false", "commit", "-q", "-m", msg)
	return r.git("rev-parse", "HEAD")
}

type result struct {
	code   int
	stdout string
	stderr string
}

// run executes the command tree with a clean flag state.
func run(t *testing.T, args ...string) result {
	t.Helper()
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), args, &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

// patchFiles lists the patch files in dir, sorted.
func patchFiles(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "*.patch"))
	if err != nil {
		t.Fatal(err)
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = filepath.Base(m)
	}
	return names
}

// headerSHA returns the commit recorded on the first line of a patch file.
func headerSHA(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	line, _, _ := strings.Cut(string(data), "\n")
	fields := strings.Fields(line)
	if len(fields) < 2 || fields[0] != "From" {
		t.Fatalf("%s: unexpected first line %q", path, line)
	}
	return fields[1]
}
