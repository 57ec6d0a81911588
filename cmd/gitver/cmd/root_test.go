package cmd

import (
	"bytes"
	"context"
	"os"
	osexec "os/exec"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/jmgilman/gitver/cache"
	platformerrors "github.com/jmgilman/gitver/errors"
	"github.com/jmgilman/gitver/git"
	"github.com/jmgilman/gitver/git/testutil"
	"github.com/jmgilman/gitver/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type result struct {
	code   int
	stdout string
	stderr string
}

func run(t *testing.T, args ...string) result {
	t.Helper()

	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), args, &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

// newRepo creates an on-disk repository with one tagged commit followed by
// distance more commits and returns its path and HEAD.
func newRepo(t *testing.T, tag string, distance int) (string, *git.Repository) {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.Init(dir)
	require.NoError(t, err)

	tagged, err := testutil.CreateTestCommit(repo, testutil.TestInitialCommit)
	require.NoError(t, err)
	if tag != "" {
		require.NoError(t, testutil.CreateTestTag(repo, tag, tagged, ""))
	}
	_, err = testutil.CreateLinearHistory(repo, distance)
	require.NoError(t, err)

	return dir, repo
}

func headID(t *testing.T, repo *git.Repository) string {
	t.Helper()
	head, err := repo.Head()
	require.NoError(t, err)
	return head.ShortHash(7)
}

func TestRun_Resolve(t *testing.T) {
	t.Chdir(t.TempDir())
	dir, repo := newRepo(t, testutil.TestTagName, 44)

	res := run(t, "-g", dir)

	require.Equal(t, platformerrors.ExitOK, res.code, res.stderr)
	assert.Equal(t, "0.2.11-44."+headID(t, repo)+"\n", res.stdout)
	assert.Empty(t, res.stderr)
}

func TestRun_Timestamp(t *testing.T) {
	t.Chdir(t.TempDir())
	dir, repo := newRepo(t, testutil.TestTagName, 44)

	res := run(t, "-g", dir, "-m")

	require.Equal(t, platformerrors.ExitOK, res.code, res.stderr)
	pattern := `^0\.2\.11-44\.` + headID(t, repo) + `\+\d{14}\n$`
	assert.Regexp(t, regexp.MustCompile(pattern), res.stdout)
}

func TestRun_CacheIsTransparent(t *testing.T) {
	t.Chdir(t.TempDir())
	dir, repo := newRepo(t, testutil.TestTagName, 44)
	cacheDir := filepath.Join(t.TempDir(), "cache")
	want := "0.2.11-44." + headID(t, repo)

	first := run(t, "-g", dir, "-c", "-m", "--cache-dir", cacheDir)
	require.Equal(t, platformerrors.ExitOK, first.code, first.stderr)
	assert.Regexp(t, `^`+regexp.QuoteMeta(want)+`\+\d{14}\n$`, first.stdout)

	entries, err := os.ReadDir(cacheDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	second := run(t, "-g", dir, "-c", "-m", "--cache-dir", cacheDir)
	require.Equal(t, platformerrors.ExitOK, second.code, second.stderr)
	assert.Equal(t, want+"\n", second.stdout, "cached versions carry no timestamp")

	_, err = testutil.CreateTestCommit(repo, "after cache")
	require.NoError(t, err)

	third := run(t, "-g", dir, "-c", "--cache-dir", cacheDir)
	require.Equal(t, platformerrors.ExitOK, third.code, third.stderr)
	assert.Equal(t, "0.2.11-45."+headID(t, repo)+"\n", third.stdout)
}

func TestRun_CacheInsideRepository(t *testing.T) {
	backends := []string{metadata.BackendGoGit}
	if _, err := osexec.LookPath("git"); err == nil {
		backends = append(backends, metadata.BackendCLI)
	}

	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			t.Run("short release", func(t *testing.T) {
				dir, _ := newRepo(t, "1.0.0", 0)
				t.Chdir(dir)

				first := run(t, "-g", ".", "-c", "--short-release", "--backend", backend)
				require.Equal(t, platformerrors.ExitOK, first.code, first.stderr)
				assert.Equal(t, "1.0.0\n", first.stdout)

				entries, err := os.ReadDir(filepath.Join(dir, cache.DefaultDir))
				require.NoError(t, err)
				require.Len(t, entries, 1)

				second := run(t, "-g", ".", "-c", "--short-release", "--backend", backend)
				require.Equal(t, platformerrors.ExitOK, second.code, second.stderr)
				assert.Equal(t, first.stdout, second.stdout)
			})

			t.Run("dirty marking", func(t *testing.T) {
				dir, repo := newRepo(t, "1.0.0", 3)
				t.Chdir(dir)
				want := "1.0.0-3." + headID(t, repo) + "\n"

				first := run(t, "-g", ".", "-c", "--dirty", "--backend", backend)
				require.Equal(t, platformerrors.ExitOK, first.code, first.stderr)
				assert.Equal(t, want, first.stdout)

				second := run(t, "-g", ".", "-c", "--dirty", "--backend", backend)
				require.Equal(t, platformerrors.ExitOK, second.code, second.stderr)
				assert.Equal(t, want, second.stdout)

				require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("wip"), 0o600))
				third := run(t, "-g", ".", "-c", "--dirty", "--backend", backend)
				require.Equal(t, platformerrors.ExitOK, third.code, third.stderr)
				assert.Equal(t, "1.0.0-3."+headID(t, repo)+".dirty\n", third.stdout)
			})
		})
	}
}

func TestRun_CacheFollowsTagSettings(t *testing.T) {
	t.Chdir(t.TempDir())
	dir, repo := newRepo(t, "1.0.0", 2)
	require.NoError(t, testutil.CreateTestTag(repo, "2.0.0", "HEAD", ""))
	cacheDir := filepath.Join(t.TempDir(), "cache")
	head := headID(t, repo)

	res := run(t, "-g", dir, "-c", "--cache-dir", cacheDir)
	require.Equal(t, platformerrors.ExitOK, res.code, res.stderr)
	assert.Equal(t, "2.0.0-0."+head+"\n", res.stdout)

	res = run(t, "-g", dir, "-c", "--cache-dir", cacheDir, "--tag-match", "1.*")
	require.Equal(t, platformerrors.ExitOK, res.code, res.stderr)
	assert.Equal(t, "1.0.0-2."+head+"\n", res.stdout)

	res = run(t, "-g", dir, "-c", "--cache-dir", cacheDir)
	require.Equal(t, platformerrors.ExitOK, res.code, res.stderr)
	assert.Equal(t, "2.0.0-0."+head+"\n", res.stdout)
}

func TestRun_Errors(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Run("malformed tag", func(t *testing.T) {
		dir, _ := newRepo(t, testutil.TestTagNameMalformed, 2)

		res := run(t, "-g", dir)
		assert.Equal(t, platformerrors.ExitVersionParse, res.code)
		assert.Empty(t, res.stdout)
		assert.Contains(t, res.stderr, "v1.2")
	})

	t.Run("not a repository", func(t *testing.T) {
		res := run(t, "-g", t.TempDir())
		assert.Equal(t, platformerrors.ExitRepository, res.code)
		assert.Empty(t, res.stdout)
		assert.NotEmpty(t, res.stderr)
	})

	t.Run("missing path", func(t *testing.T) {
		res := run(t, "-g", filepath.Join(t.TempDir(), "absent"))
		assert.Equal(t, platformerrors.ExitRepository, res.code)
		assert.Empty(t, res.stdout)
	})

	t.Run("debug log names the repository", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "absent")
		res := run(t, "-g", missing, "--log-level", "debug")
		assert.Equal(t, platformerrors.ExitRepository, res.code)
		assert.Contains(t, res.stderr, "command failed")
		assert.Contains(t, res.stderr, missing)
	})

	t.Run("repository without commits", func(t *testing.T) {
		dir := t.TempDir()
		_, err := git.Init(dir)
		require.NoError(t, err)

		res := run(t, "-g", dir)
		assert.Equal(t, platformerrors.ExitRepository, res.code)
	})

	t.Run("no repository flag", func(t *testing.T) {
		res := run(t)
		assert.Equal(t, platformerrors.ExitOther, res.code)
		assert.Contains(t, res.stderr, "--git-dir")
	})

	t.Run("invalid backend", func(t *testing.T) {
		dir, _ := newRepo(t, testutil.TestTagName, 0)
		res := run(t, "-g", dir, "--backend", "svn")
		assert.Equal(t, platformerrors.ExitOther, res.code)
		assert.Empty(t, res.stdout)
	})

	t.Run("unknown flag", func(t *testing.T) {
		res := run(t, "--nope")
		assert.Equal(t, platformerrors.ExitOther, res.code)
	})
}

func TestRun_Options(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Run("short release on exact tag", func(t *testing.T) {
		dir, _ := newRepo(t, "v1.0.0", 0)
		res := run(t, "-g", dir, "--short-release")
		require.Equal(t, platformerrors.ExitOK, res.code, res.stderr)
		assert.Equal(t, "1.0.0\n", res.stdout)
	})

	t.Run("default version without tags", func(t *testing.T) {
		dir, repo := newRepo(t, "", 2)
		res := run(t, "-g", dir, "--default-version", "0.1.0")
		require.Equal(t, platformerrors.ExitOK, res.code, res.stderr)
		assert.Equal(t, "0.1.0-3."+headID(t, repo)+"\n", res.stdout)
	})

	t.Run("dirty working tree", func(t *testing.T) {
		dir, repo := newRepo(t, testutil.TestTagName, 1)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "untracked.txt"), []byte("x"), 0o600))

		res := run(t, "-g", dir, "--dirty")
		require.Equal(t, platformerrors.ExitOK, res.code, res.stderr)
		assert.Equal(t, "0.2.11-1."+headID(t, repo)+".dirty\n", res.stdout)
	})

	t.Run("abbrev", func(t *testing.T) {
		dir, repo := newRepo(t, testutil.TestTagName, 1)
		head, err := repo.Head()
		require.NoError(t, err)

		res := run(t, "-g", dir, "--abbrev", "12")
		require.Equal(t, platformerrors.ExitOK, res.code, res.stderr)
		assert.Equal(t, "0.2.11-1."+head.ShortHash(12)+"\n", res.stdout)
	})

	t.Run("tag pattern", func(t *testing.T) {
		dir, repo := newRepo(t, "v1.4.0", 2)
		require.NoError(t, testutil.CreateTestTag(repo, "v2.0.0-rc1", "HEAD", ""))

		res := run(t, "-g", dir, "--tag-match", "v1.*")
		require.Equal(t, platformerrors.ExitOK, res.code, res.stderr)
		assert.Equal(t, "1.4.0-2."+headID(t, repo)+"\n", res.stdout)
	})

	t.Run("environment", func(t *testing.T) {
		dir, _ := newRepo(t, "v2.0.0", 0)
		t.Setenv("GITVER_GIT_DIR", dir)
		t.Setenv("GITVER_SHORT_RELEASE", "true")

		res := run(t)
		require.Equal(t, platformerrors.ExitOK, res.code, res.stderr)
		assert.Equal(t, "2.0.0\n", res.stdout)
	})

	t.Run("config file", func(t *testing.T) {
		dir, repo := newRepo(t, testutil.TestTagName, 3)
		path := filepath.Join(t.TempDir(), "gitver.yaml")
		require.NoError(t, os.WriteFile(path, []byte("git-dir: "+dir+"\nabbrev: 10\n"), 0o600))
		head, err := repo.Head()
		require.NoError(t, err)

		res := run(t, "--config", path)
		require.Equal(t, platformerrors.ExitOK, res.code, res.stderr)
		assert.Equal(t, "0.2.11-3."+head.ShortHash(10)+"\n", res.stdout)
	})

	t.Run("debug logs stay on stderr", func(t *testing.T) {
		dir, repo := newRepo(t, testutil.TestTagName, 1)
		res := run(t, "-g", dir, "--log-level", "debug")
		require.Equal(t, platformerrors.ExitOK, res.code, res.stderr)
		assert.Equal(t, "0.2.11-1."+headID(t, repo)+"\n", res.stdout)
		assert.Contains(t, res.stderr, "described HEAD")
	})
}

func TestRun_CacheClear(t *testing.T) {
	t.Chdir(t.TempDir())
	dirA, _ := newRepo(t, testutil.TestTagName, 1)
	dirB, _ := newRepo(t, testutil.TestTagName, 2)
	cacheDir := filepath.Join(t.TempDir(), "cache")

	for _, dir := range []string{dirA, dirB} {
		res := run(t, "-g", dir, "-c", "--cache-dir", cacheDir)
		require.Equal(t, platformerrors.ExitOK, res.code, res.stderr)
	}
	countEntries := func() int {
		entries, err := os.ReadDir(cacheDir)
		require.NoError(t, err)
		return len(entries)
	}
	require.Equal(t, 2, countEntries())

	res := run(t, "cache", "clear", "-g", dirA, "--cache-dir", cacheDir)
	require.Equal(t, platformerrors.ExitOK, res.code, res.stderr)
	assert.Empty(t, res.stdout)
	assert.Equal(t, 1, countEntries())

	res = run(t, "cache", "clear", "--all", "--cache-dir", cacheDir)
	require.Equal(t, platformerrors.ExitOK, res.code, res.stderr)
	assert.Equal(t, 0, countEntries())

	res = run(t, "cache", "clear", "--cache-dir", cacheDir)
	assert.Equal(t, platformerrors.ExitOther, res.code, "a repository or --all is required")
}

func TestRun_Version(t *testing.T) {
	t.Setenv("GITVER_BACKEND", "svn")

	res := run(t, "version")
	require.Equal(t, platformerrors.ExitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "gitver "+Version)
}
