// Package manifest renders and validates browser-extension manifest templates.
package manifest

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"regexp"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// VersionPlaceholder is replaced with the configured wallet version.
const VersionPlaceholder = "{{TON_WALLET_VERSION}}"

// FileName is the canonical manifest name at the extension root.
const FileName = "manifest.json"

var unresolved = regexp.MustCompile(`\{\{\s*[A-Za-z0-9_]+\s*\}\}`)

//go:embed schema/*.json
var schemaFS embed.FS

var (
	schemaMu sync.Mutex
	schemas  = map[int]*jsonschema.Schema{}
)

// Render substitutes the version placeholder in a manifest template and
// validates the result for the given manifest version (2 or 3).
func Render(template []byte, version string, manifestVersion int) ([]byte, error) {
	out := bytes.ReplaceAll(template, []byte(VersionPlaceholder), []byte(version))
	if m := unresolved.Find(out); m != nil {
		return nil, fmt.Errorf("unresolved placeholder %s in manifest", m)
	}
	if err := Validate(out, manifestVersion); err != nil {
		return nil, err
	}
	return out, nil
}

// Validate checks a rendered manifest against the embedded schema for manifestVersion.
func Validate(data []byte, manifestVersion int) error {
	sch, err := loadSchema(manifestVersion)
	if err != nil {
		return err
	}

	var document any
	if err := json.Unmarshal(data, &document); err != nil {
		return fmt.Errorf("parse manifest: %w", err)
	}
	if err := sch.Validate(document); err != nil {
		return fmt.Errorf("manifest v%d: %w", manifestVersion, err)
	}
	return nil
}

func loadSchema(manifestVersion int) (*jsonschema.Schema, error) {
	schemaMu.Lock()
	defer schemaMu.Unlock()

	if sch, ok := schemas[manifestVersion]; ok {
		return sch, nil
	}

	name := fmt.Sprintf("schema/v%d.schema.json", manifestVersion)
	raw, err := schemaFS.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("no manifest schema for version %d", manifestVersion)
	}

	url := "mem://walletbuilder/" + name
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("load manifest schema: %w", err)
	}
	sch, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile manifest schema: %w", err)
	}
	schemas[manifestVersion] = sch
	return sch, nil
}
