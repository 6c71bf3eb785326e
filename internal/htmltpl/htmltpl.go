// Package htmltpl renders the application entry document for a build type.
package htmltpl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/walletbuilder/internal/assets"
)

const (
	// VersionPlaceholder is replaced with the wallet version.
	VersionPlaceholder = "{{TON_WALLET_VERSION}}"
	// FileName is the entry document name in both src and output.
	FileName = "index.html"

	pluginClass = "plugin"
)

// controllerScriptLine matches a whole line holding a script tag that loads the controller.
var controllerScriptLine = regexp.MustCompile(`(?m)^.*<script.*src=".*Controller\.js.*".*(?:\r\n|\r|\n|$)`)

// Render substitutes the version and, for extension builds, marks the body
// as plugin and strips the controller script lines.
func Render(src []byte, version string, plugin bool) []byte {
	out := strings.ReplaceAll(string(src), VersionPlaceholder, version)
	if plugin {
		out = strings.ReplaceAll(out, "<body>", `<body class="plugin">`)
		out = controllerScriptLine.ReplaceAllString(out, "")
	}
	return []byte(out)
}

// Emit renders srcPath into outDir/index.html. Extension output is checked
// with Verify before it is written.
func Emit(ctx context.Context, srcPath, outDir, version string, plugin bool) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return "", err
	}

	out := Render(data, version, plugin)
	if plugin {
		if err := Verify(out); err != nil {
			return "", fmt.Errorf("%s: %w", srcPath, err)
		}
	}

	dst := filepath.Join(outDir, FileName)
	if err := assets.WriteFile(dst, out); err != nil {
		return "", err
	}
	return dst, nil
}

// Verify parses an extension document and reports a body without the plugin
// class or a controller script that survived line filtering.
func Verify(doc []byte) error {
	root, err := html.Parse(bytes.NewReader(doc))
	if err != nil {
		return fmt.Errorf("parse html: %w", err)
	}

	var (
		bodyMarked bool
		problems   []error
	)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "body":
				bodyMarked = hasClass(n, pluginClass)
			case "script":
				if src := attr(n, "src"); strings.Contains(src, "Controller.js") {
					problems = append(problems, fmt.Errorf("controller script %q still present", src))
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	if !bodyMarked {
		problems = append([]error{errors.New(`body is missing class "plugin"`)}, problems...)
	}
	return errors.Join(problems...)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}
