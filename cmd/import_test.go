package cmd

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mfm/internal"
)

// runCLI executes the root command in an isolated environment and returns
// what was written to stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MFM_LOG_LEVEL", "off")
	chdirTemp(t, t.TempDir())

	for _, c := range []*cobra.Command{rootCmd, importCmd, watchCmd} {
		c.Flags().VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("not really an image"), 0644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func planEvents(t *testing.T, out string) []internal.PlanEvent {
	t.Helper()
	var events []internal.PlanEvent
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		var ev internal.PlanEvent
		require.NoError(t, json.Unmarshal(sc.Bytes(), &ev), "line: %s", sc.Text())
		events = append(events, ev)
	}
	return events
}

func TestImportCommand_JSON(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "library")
	mtime := time.Date(2019, 3, 4, 5, 6, 7, 0, time.Local)
	writeFile(t, filepath.Join(in, "Summer Trip", "beach", "IMG_1.JPG"), mtime)
	writeFile(t, filepath.Join(in, "Summer Trip", "videos", "clip.mov"), mtime)

	stdout, err := runCLI(t, "import", in, out, "--json", "--context-levels", "2")
	require.NoError(t, err)

	events := planEvents(t, stdout)
	require.Len(t, events, 3)

	dests := map[string]string{}
	for _, ev := range events[:2] {
		assert.Equal(t, "mapped", ev.Event)
		assert.Equal(t, "from_filesystem", ev.Provenance)
		dests[filepath.Base(ev.Src)] = filepath.Base(ev.Dest)
	}
	assert.Equal(t, "20190304_050607_Summer-Trip-beach.jpg", dests["IMG_1.JPG"])
	assert.Equal(t, "20190304_050607_Summer-Trip-videos.mov", dests["clip.mov"])

	summary := events[2]
	assert.Equal(t, "summary", summary.Event)
	assert.Equal(t, 2, summary.Mapped)
	assert.False(t, summary.Cancelled)
	assert.DirExists(t, out)
}

func TestImportCommand_TextSummary(t *testing.T) {
	in := t.TempDir()
	writeFile(t, filepath.Join(in, "a.png"), time.Now())
	writeFile(t, filepath.Join(in, "sub", "b.png"), time.Now())

	stdout, err := runCLI(t, "import", in, t.TempDir(), "--no-traverse")
	require.NoError(t, err)

	assert.Contains(t, stdout, "1 files mapped")
	assert.Contains(t, stdout, "1 subdirectories")
}

func TestImportCommand_MissingInput(t *testing.T) {
	_, err := runCLI(t, "import", filepath.Join(t.TempDir(), "missing"), t.TempDir())

	assert.ErrorIs(t, err, internal.ErrPathNotFound)
}

func TestImportCommand_Args(t *testing.T) {
	_, err := runCLI(t, "import", t.TempDir())

	assert.Error(t, err)
}

func TestVersionFlag(t *testing.T) {
	stdout, err := runCLI(t, "--version")
	require.NoError(t, err)

	assert.Contains(t, stdout, Version)
}

// chdirTemp changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdirTemp(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
