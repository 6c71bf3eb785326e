// Package styles minifies the stylesheet tree into the output css directory.
package styles

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"git.home.luguber.info/inful/walletbuilder/internal/assets"
)

const pattern = "**/*.css"

// Compile minifies every stylesheet under srcDir into outDir, keeping the
// relative tree. It returns the number of files written.
func Compile(ctx context.Context, srcDir, outDir string) (int, error) {
	files, err := assets.Resolve(srcDir, []string{pattern})
	if err != nil {
		return 0, err
	}

	for i, rel := range files {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		src := filepath.Join(srcDir, filepath.FromSlash(rel))
		data, err := os.ReadFile(src)
		if err != nil {
			return i, err
		}
		out, err := Minify(string(data), rel)
		if err != nil {
			return i, err
		}
		if err := assets.WriteFile(filepath.Join(outDir, filepath.FromSlash(rel)), []byte(out)); err != nil {
			return i, err
		}
	}
	return len(files), nil
}

// Minify returns the minified stylesheet. name is only used in error messages.
func Minify(source, name string) (string, error) {
	result := api.Transform(source, api.TransformOptions{
		Loader:           api.LoaderCSS,
		Sourcefile:       name,
		MinifyWhitespace: true,
		MinifySyntax:     true,
		LegalComments:    api.LegalCommentsNone,
		LogLevel:         api.LogLevelSilent,
	})
	if len(result.Errors) > 0 {
		msgs := api.FormatMessages(result.Errors, api.FormatMessagesOptions{Kind: api.ErrorMessage})
		return "", fmt.Errorf("minify %s: %s", name, strings.TrimSpace(strings.Join(msgs, "\n")))
	}
	return string(result.Code), nil
}
