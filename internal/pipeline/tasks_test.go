package pipeline

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/walletbuilder/internal/config"
	ferrors "git.home.luguber.info/inful/walletbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/walletbuilder/internal/testutil/testutils"
)

func runSteps(t *testing.T, cfg *config.Config, defs []StepDef) *Report {
	t.Helper()
	report, err := NewRunner(WithLogger(quietLogger())).Run(context.Background(), cfg, defs)
	require.NoError(t, err)
	return report
}

func TestCleanMissingDirIsNoop(t *testing.T) {
	cfg := testConfig(t)
	_, err := Clean(context.Background(), cfg)
	require.NoError(t, err)
	_, err = Clean(context.Background(), cfg)
	require.NoError(t, err)
}

func TestCleanRemovesOnlyItsOutputDir(t *testing.T) {
	root := t.TempDir()
	testutils.WriteTree(t, root, map[string]string{
		"dist/v3/stale.js":  "old",
		"dist/v2/keep.js":   "v2",
		"docs/index.html":   "web",
		"dist/old-pack.zip": "zip",
	})
	cfg := testutils.Config(t, root, config.TaskBuild, config.TargetChromium)

	_, err := Clean(context.Background(), cfg)
	require.NoError(t, err)

	fa := testutils.NewFileAssertions(t, root)
	fa.AssertNotExists("dist/v3")
	fa.AssertFileExists("dist/v2/keep.js")
	fa.AssertFileExists("docs/index.html")
	fa.AssertFileExists("dist/old-pack.zip")
}

func TestGuardOutputDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, guardOutputDir(root, filepath.Join(root, "docs")))
	require.NoError(t, guardOutputDir(root, filepath.Join(root, "dist", "v2")))
	require.Error(t, guardOutputDir(root, root))
	require.Error(t, guardOutputDir(root, filepath.Join(root, "dist")))
	require.Error(t, guardOutputDir(root, filepath.Join(root, "src")))
	require.Error(t, guardOutputDir(root, filepath.Dir(root)))
}

func TestBuildWeb(t *testing.T) {
	root := testutils.NewProject(t)
	cfg := testutils.Config(t, root, config.TaskBuild, config.TargetWeb)

	report := runSteps(t, cfg, BuildSteps())
	assert.Len(t, report.Steps, 5)

	fa := testutils.NewFileAssertions(t, filepath.Join(root, "docs"))
	fa.AssertFileExists("assets/favicon/favicon.ico").
		AssertFileExists("assets/favicon/apple-touch.png").
		AssertFileExists("assets/ui/icon-send.svg").
		AssertFileExists("assets/lottie/done.json").
		AssertFileExists("libs/tonweb-0.0.66.js").
		AssertFileExists("css/main.css").
		AssertFileExists("css/view/modal.css").
		AssertFileExists("js/Controller.js").
		AssertFileExists("js/View.js").
		AssertNotExists("manifest.json").
		AssertNotExists("assets/extension").
		AssertNotExists("js/extension")
	fa.AssertFileContains("index.html", "<body>").
		AssertFileContains("index.html", "js/Controller.js?v=1.2.3").
		AssertFileContains("js/Controller.js", "web-main-key")
}

func TestBuildChromium(t *testing.T) {
	root := testutils.NewProject(t)
	cfg := testutils.Config(t, root, config.TaskBuild, config.TargetChromium)

	runSteps(t, cfg, BuildSteps())

	fa := testutils.NewFileAssertions(t, filepath.Join(root, "dist", "v3"))
	fa.AssertFileContains("manifest.json", `"version": "1.2.3"`).
		AssertFileNotContains("manifest.json", "{{").
		AssertFileExists("assets/extension/popup.png").
		AssertFileExists("js/extension/background.js").
		AssertFileExists("assets/favicon/favicon.ico").
		AssertFileExists("assets/favicon/192x192.png").
		AssertNotExists("assets/favicon/apple-touch.png").
		AssertFileContains("index.html", `<body class="plugin">`).
		AssertFileNotContains("index.html", "Controller.js")
	testutils.NewFileAssertions(t, root).AssertNotExists("docs")
}

func TestBuildFirefoxHasNoChromiumFavicons(t *testing.T) {
	root := testutils.NewProject(t)
	cfg := testutils.Config(t, root, config.TaskBuild, config.TargetFirefox)

	runSteps(t, cfg, BuildSteps())

	fa := testutils.NewFileAssertions(t, filepath.Join(root, "dist", "v2"))
	fa.AssertFileContains("manifest.json", `"manifest_version": 2`).
		AssertNotExists("assets/favicon")
}

func TestBuildRemovesStaleOutput(t *testing.T) {
	root := testutils.NewProject(t)
	testutils.WriteTree(t, root, map[string]string{"docs/stale.txt": "old"})
	cfg := testutils.Config(t, root, config.TaskBuild, config.TargetWeb)

	runSteps(t, cfg, BuildSteps())
	testutils.NewFileAssertions(t, root).AssertNotExists("docs/stale.txt")
}

func TestBuildScriptErrorIsStepFailure(t *testing.T) {
	root := testutils.NewProject(t)
	testutils.WriteTree(t, root, map[string]string{"src/js/view/View.js": "class {"})
	cfg := testutils.Config(t, root, config.TaskBuild, config.TargetWeb)

	_, err := NewRunner(WithLogger(quietLogger())).Run(context.Background(), cfg, BuildSteps())
	require.Error(t, err)

	var se *StepError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StepScripts, se.Step)
	assert.Equal(t, ferrors.ExitBuild, ferrors.NewCLIErrorAdapter(false, quietLogger()).ExitCodeFor(err))
	testutils.NewFileAssertions(t, root).AssertNotExists("docs/index.html")
}

func TestStepErrorsAreClassified(t *testing.T) {
	tests := []struct {
		name     string
		target   config.Target
		task     config.Task
		prepare  func(t *testing.T, root string)
		step     Step
		category ferrors.ErrorCategory
	}{
		{
			name:   "missing required favicon",
			task:   config.TaskBuild,
			target: config.TargetChromium,
			prepare: func(t *testing.T, root string) {
				require.NoError(t, os.Remove(filepath.Join(root, "src", "assets", "favicon", "favicon-16x16.png")))
			},
			step:     CopyAssets,
			category: ferrors.CategoryFileSystem,
		},
		{
			name:   "script syntax error",
			task:   config.TaskBuild,
			target: config.TargetWeb,
			prepare: func(t *testing.T, root string) {
				testutils.WriteTree(t, root, map[string]string{"src/js/view/View.js": "class {"})
			},
			step:     BundleScripts,
			category: ferrors.CategoryBundle,
		},
		{
			name:   "missing entry document",
			task:   config.TaskBuild,
			target: config.TargetWeb,
			prepare: func(t *testing.T, root string) {
				require.NoError(t, os.Remove(filepath.Join(root, "src", "index.html")))
			},
			step:     RenderHTML,
			category: ferrors.CategoryBuild,
		},
		{
			name:     "nothing built yet",
			task:     config.TaskPack,
			target:   config.TargetChromium,
			prepare:  func(*testing.T, string) {},
			step:     Pack,
			category: ferrors.CategoryArchive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := testutils.NewProject(t)
			tt.prepare(t, root)
			cfg := testutils.Config(t, root, tt.task, tt.target)

			_, err := tt.step(context.Background(), cfg)
			require.Error(t, err)
			classified, ok := ferrors.AsClassified(err)
			require.True(t, ok)
			assert.Equal(t, tt.category, classified.Category())
			assert.NotNil(t, classified.Unwrap())
		})
	}
}

func TestPackChromium(t *testing.T) {
	root := testutils.NewProject(t)
	cfg := testutils.Config(t, root, config.TaskPack, config.TargetChromium)

	runSteps(t, cfg, PackSteps())

	dist, err := os.ReadDir(filepath.Join(root, "dist"))
	require.NoError(t, err)
	var zips []string
	for _, e := range dist {
		if !e.IsDir() {
			zips = append(zips, e.Name())
		}
	}
	assert.Equal(t, []string{"chromium-ton-wallet-1.2.3.zip"}, zips)

	zr, err := zip.OpenReader(filepath.Join(root, "dist", "chromium-ton-wallet-1.2.3.zip"))
	require.NoError(t, err)
	defer func() { _ = zr.Close() }()
	entries := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		entries = append(entries, f.Name)
	}
	sort.Strings(entries)
	assert.Equal(t, testutils.Files(t, filepath.Join(root, "dist", "v3")), entries)
	assert.Contains(t, entries, "manifest.json")
}

func TestPackChromiumSkipsDotfiles(t *testing.T) {
	root := testutils.NewProject(t)
	testutils.WriteTree(t, root, map[string]string{
		"src/assets/ui/.DS_Store":      "junk",
		"src/libs/.gitkeep":            "",
		"src/assets/extension/.hidden": "junk",
	})
	cfg := testutils.Config(t, root, config.TaskPack, config.TargetChromium)

	runSteps(t, cfg, PackSteps())

	testutils.NewFileAssertions(t, filepath.Join(root, "dist", "v3")).
		AssertFileExists("assets/ui/icon-send.svg").
		AssertNotExists("assets/ui/.DS_Store").
		AssertNotExists("libs/.gitkeep").
		AssertNotExists("assets/extension/.hidden")

	zr, err := zip.OpenReader(filepath.Join(root, "dist", "chromium-ton-wallet-1.2.3.zip"))
	require.NoError(t, err)
	defer func() { _ = zr.Close() }()
	for _, f := range zr.File {
		assert.NotContains(t, f.Name, "/.", f.Name)
	}
}

func TestPackStepRejectsWeb(t *testing.T) {
	root := t.TempDir()
	cfg := testutils.Config(t, root, config.TaskBuild, config.TargetWeb)

	_, err := Pack(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
	testutils.NewFileAssertions(t, root).AssertNotExists("dist")
}
