// Package testutils builds wallet project fixtures for tests.
package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"git.home.luguber.info/inful/walletbuilder/internal/config"
)

const (
	testDirPermissions  = 0o750
	testFilePermissions = 0o600
)

// IndexHTML is the fixture entry document.
const IndexHTML = `<!DOCTYPE html>
<html>
<head>
    <title>TON Wallet {{TON_WALLET_VERSION}}</title>
    <link rel="stylesheet" href="css/main.css">
</head>
<body>
    <div id="app"></div>
    <script src="js/View.js"></script>
    <script type="text/javascript" src="js/Controller.js?v={{TON_WALLET_VERSION}}"></script>
</body>
</html>
`

// ManifestV3 and ManifestV2 are the fixture manifest templates.
const (
	ManifestV3 = `{
  "manifest_version": 3,
  "name": "TON Wallet",
  "version": "{{TON_WALLET_VERSION}}",
  "background": { "service_worker": "js/extension/background.js" },
  "icons": { "16": "assets/favicon/favicon-16x16.png", "192": "assets/favicon/192x192.png" }
}
`
	ManifestV2 = `{
  "manifest_version": 2,
  "name": "TON Wallet",
  "version": "{{TON_WALLET_VERSION}}",
  "background": { "scripts": ["js/extension/background.js"] }
}
`
)

// ProjectFiles is the default fixture tree, keyed by slash-separated path.
func ProjectFiles() map[string]string {
	return map[string]string{
		"src/index.html":                        IndexHTML,
		"src/assets/ui/icon-send.svg":           "<svg/>",
		"src/assets/ui/fonts/mono.woff2":        "font",
		"src/assets/lottie/done.json":           `{"v":"5.5.7"}`,
		"src/assets/favicon/favicon.ico":        "ico",
		"src/assets/favicon/favicon-16x16.png":  "png16",
		"src/assets/favicon/favicon-32x32.png":  "png32",
		"src/assets/favicon/192x192.png":        "png192",
		"src/assets/favicon/apple-touch.png":    "apple",
		"src/assets/extension/popup.png":        "popup",
		"src/libs/tonweb-0.0.66.js":             "var TonWeb = {};",
		"src/js/extension/background.js":        "console.log('bg');",
		"src/css/main.css":                      "body {\n  margin: 0px;\n  color: #ffffff;\n}\n",
		"src/css/view/modal.css":                ".modal  {  display : none ; }\n",
		"src/js/Controller.js":                  "import {KEY} from './keys.js';\nexport class Controller { constructor() { this.key = KEY; } }\nwindow.controller = new Controller();\n",
		"src/js/keys.js":                        "export const KEY = TONCENTER_API_KEY_WEB_MAIN + ':' + TONCENTER_API_KEY_EXT_TEST;\n",
		"src/js/view/View.js":                   "class View { show() { return 'view'; } }\nwindow.view = new View();\n",
		"build/manifest/v3.json":                ManifestV3,
		"build/manifest/v2.json":                ManifestV2,
	}
}

// WriteTree writes files under root.
func WriteTree(t testing.TB, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), testDirPermissions); err != nil {
			t.Fatalf("mkdir %s: %v", path, err)
		}
		if err := os.WriteFile(path, []byte(content), testFilePermissions); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
}

// NewProject creates a fixture project in a temp dir and returns its root.
func NewProject(t testing.TB) string {
	t.Helper()
	root := t.TempDir()
	WriteTree(t, root, ProjectFiles())
	return root
}

// Env returns a complete set of required variables with the given wallet version.
func Env(version string) map[string]string {
	return map[string]string{
		config.EnvWalletVersion: version,
		config.EnvKeyWebMain:    "web-main-key",
		config.EnvKeyWebTest:    "web-test-key",
		config.EnvKeyExtMain:    "ext-main-key",
		config.EnvKeyExtTest:    "ext-test-key",
	}
}

// Lookup adapts a map to config.LookupFunc.
func Lookup(vars map[string]string) config.LookupFunc {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

// Config resolves a configuration for root without reading .env files.
func Config(t testing.TB, root string, task config.Task, target config.Target) *config.Config {
	t.Helper()
	cfg, err := config.Resolve(config.Options{
		Root:       root,
		Task:       string(task),
		Target:     string(target),
		Lookup:     Lookup(Env("1.2.3")),
		SkipDotEnv: true,
	})
	if err != nil {
		t.Fatalf("resolve config: %v", err)
	}
	return cfg
}
