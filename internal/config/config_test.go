package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/walletbuilder/internal/foundation/errors"
)

func TestResolve(t *testing.T) {
	root := t.TempDir()
	cfg, err := Resolve(Options{
		Root:       root,
		Task:       "pack",
		Target:     "chromium",
		Lookup:     envMap(fullEnv()),
		SkipDotEnv: true,
	})
	require.NoError(t, err)

	assert.Equal(t, TaskPack, cfg.Task)
	assert.Equal(t, TargetChromium, cfg.Target)
	assert.Equal(t, BuildTypeV3, cfg.BuildType)
	assert.Equal(t, filepath.Join(root, "dist", "v3"), cfg.OutputDir())
	assert.Equal(t, filepath.Join(root, "build", "manifest"), cfg.ManifestDir())
	assert.Equal(t, "chromium-ton-wallet-1.2.3.zip", cfg.ArchiveName())
	assert.Equal(t, filepath.Join(root, "dist", "chromium-ton-wallet-1.2.3.zip"), cfg.ArchivePath())
	assert.Equal(t, []string{filepath.Join(root, "src"), filepath.Join(root, "build")}, cfg.WatchPaths())
}

func TestResolveValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		category ferrors.ErrorCategory
		message  string
	}{
		{
			name:     "unknown task",
			opts:     Options{Task: "publish", Target: "chromium"},
			category: ferrors.CategoryValidation,
			message:  "Pass one of possible task names: build, watch, pack",
		},
		{
			name:     "missing target",
			opts:     Options{Task: "build"},
			category: ferrors.CategoryValidation,
			message:  "Pass one of possible target values: web, chromium, firefox, safari",
		},
		{
			name:     "web is not packable",
			opts:     Options{Task: "pack", Target: "web"},
			category: ferrors.CategoryValidation,
			message:  "Pass one of possible target values: chromium, firefox",
		},
		{
			name:     "missing environment",
			opts:     Options{Task: "build", Target: "web", Lookup: envMap(map[string]string{})},
			category: ferrors.CategoryConfig,
			message:  "missing required environment variables: TON_WALLET_VERSION, TONCENTER_API_KEY_WEB_MAIN, TONCENTER_API_KEY_WEB_TEST, TONCENTER_API_KEY_EXT_MAIN, TONCENTER_API_KEY_EXT_TEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			tt.opts.Root = root
			tt.opts.SkipDotEnv = true
			if tt.opts.Lookup == nil {
				tt.opts.Lookup = envMap(fullEnv())
			}

			_, err := Resolve(tt.opts)
			require.Error(t, err)
			classified, ok := ferrors.AsClassified(err)
			require.True(t, ok)
			assert.Equal(t, tt.category, classified.Category())
			assert.Equal(t, tt.message, classified.Message())

			entries, err := os.ReadDir(root)
			require.NoError(t, err)
			assert.Empty(t, entries, "validation must not create any directory")
		})
	}
}

func TestResolveReadsProjectFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, DefaultProjectFile), []byte(`
product: ton-wallet-beta
watch:
  quiet_window: 100ms
  max_delay: 1s
  ignore:
    - "src/**/*.map"
`), 0o600))

	cfg, err := Resolve(Options{Root: root, Task: "watch", Target: "firefox", Lookup: envMap(fullEnv()), SkipDotEnv: true})
	require.NoError(t, err)
	assert.Equal(t, "ton-wallet-beta", cfg.Project.Product)
	assert.Equal(t, 100*time.Millisecond, cfg.Project.Watch.QuietWindow)
	assert.Equal(t, time.Second, cfg.Project.Watch.MaxDelay)
	assert.Equal(t, []string{"src/**/*.map"}, cfg.Project.Watch.Ignore)
}

func TestLoadProject(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		p, err := LoadProject(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultProject(), p)
	})

	t.Run("unknown keys are rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "p.yaml")
		require.NoError(t, os.WriteFile(path, []byte("prodcut: typo\n"), 0o600))
		_, err := LoadProject(path)
		require.Error(t, err)
	})

	t.Run("empty file yields defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "p.yaml")
		require.NoError(t, os.WriteFile(path, nil, 0o600))
		p, err := LoadProject(path)
		require.NoError(t, err)
		assert.Equal(t, DefaultProject(), p)
	})

	t.Run("max delay below quiet window", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "p.yaml")
		require.NoError(t, os.WriteFile(path, []byte("watch:\n  quiet_window: 2s\n  max_delay: 1s\n"), 0o600))
		_, err := LoadProject(path)
		require.Error(t, err)
	})
}
