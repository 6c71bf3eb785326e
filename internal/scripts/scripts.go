// Package scripts bundles the application entry points with esbuild.
package scripts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// Entry is one bundle: Source is bundled into <OutDir>/<Name>.js.
type Entry struct {
	Name   string
	Source string
}

// Options configure a single bundling pass.
type Options struct {
	// WorkDir resolves relative entry sources.
	WorkDir string
	Entries []Entry
	OutDir  string
	// Defines maps identifiers to JavaScript expressions substituted at bundle time.
	Defines map[string]string
}

// DefaultEntries are the controller and view modules of the wallet.
func DefaultEntries() []Entry {
	return []Entry{
		{Name: "Controller", Source: "src/js/Controller.js"},
		{Name: "View", Source: "src/js/view/View.js"},
	}
}

// Result summarizes a successful bundle.
type Result struct {
	Files    []string
	Warnings int
}

// Bundle runs esbuild once in minifying, non-watch mode. Any esbuild error fails the bundle.
func Bundle(ctx context.Context, opts Options) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if len(opts.Entries) == 0 {
		return Result{}, errors.New("no entry points")
	}

	entries := make([]api.EntryPoint, 0, len(opts.Entries))
	for _, e := range opts.Entries {
		entries = append(entries, api.EntryPoint{InputPath: e.Source, OutputPath: e.Name})
	}

	result := api.Build(api.BuildOptions{
		AbsWorkingDir:       opts.WorkDir,
		EntryPointsAdvanced: entries,
		Outdir:              opts.OutDir,
		Bundle:              true,
		Write:               true,
		Platform:            api.PlatformBrowser,
		Format:              api.FormatIIFE,
		Define:              opts.Defines,
		MinifyWhitespace:    true,
		MinifyIdentifiers:   true,
		MinifySyntax:        true,
		Sourcemap:           api.SourceMapNone,
		LegalComments:       api.LegalCommentsNone,
		LogLevel:            api.LogLevelSilent,
	})

	if len(result.Errors) > 0 {
		msgs := api.FormatMessages(result.Errors, api.FormatMessagesOptions{Kind: api.ErrorMessage})
		return Result{}, &BundleError{Count: len(result.Errors), Details: strings.TrimSpace(strings.Join(msgs, "\n"))}
	}

	files := make([]string, 0, len(result.OutputFiles))
	for _, f := range result.OutputFiles {
		files = append(files, f.Path)
	}
	return Result{Files: files, Warnings: len(result.Warnings)}, nil
}

// BundleError carries the formatted esbuild diagnostics.
type BundleError struct {
	Count   int
	Details string
}

func (e *BundleError) Error() string {
	return fmt.Sprintf("esbuild failed with %d error(s):\n%s", e.Count, e.Details)
}
