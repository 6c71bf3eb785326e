package assets

import (
	"git.home.luguber.info/inful/walletbuilder/internal/config"
	"git.home.luguber.info/inful/walletbuilder/internal/manifest"
)

// Asset source patterns, relative to src/.
var (
	commonPatterns = []string{
		"assets/lottie/**/*",
		"assets/ui/**/*",
		"libs/**/*",
	}
	webPatterns       = []string{"assets/favicon/**/*"}
	extensionPatterns = []string{
		"assets/extension/**/*",
		"js/extension/**/*",
	}
	// Icon sizes the Chromium manifest references.
	chromiumFavicons = []string{
		"assets/favicon/favicon.ico",
		"assets/favicon/favicon-32x32.png",
		"assets/favicon/favicon-16x16.png",
		"assets/favicon/192x192.png",
	}
)

// PlanFor returns the independent copy sets for the configured build type and target.
func PlanFor(cfg *config.Config) []Set {
	src := cfg.SourceDir()
	sets := []Set{{Name: "common", Base: src, Patterns: commonPatterns}}

	if !cfg.BuildType.IsExtension() {
		sets = append(sets, Set{Name: "favicon", Base: src, Patterns: webPatterns})
	} else {
		sets = append(sets,
			Set{Name: "extension", Base: src, Patterns: extensionPatterns},
			manifestSet(cfg),
		)
	}

	if cfg.Target == config.TargetChromium {
		sets = append(sets, Set{Name: "chromium-favicon", Base: src, Patterns: chromiumFavicons})
	}
	return sets
}

func manifestSet(cfg *config.Config) Set {
	manifestVersion := 2
	if cfg.BuildType == config.BuildTypeV3 {
		manifestVersion = 3
	}
	version := cfg.Env.WalletVersion
	return Set{
		Name:     "manifest",
		Base:     cfg.ManifestDir(),
		Patterns: []string{cfg.BuildType.ManifestTemplate()},
		Render: func(_ string, data []byte) (string, []byte, error) {
			out, err := manifest.Render(data, version, manifestVersion)
			return manifest.FileName, out, err
		},
	}
}
