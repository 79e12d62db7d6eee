package config

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON string

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	})
	if schemaErr != nil {
		return nil, fmt.Errorf("compile config schema: %w", schemaErr)
	}
	return schema, nil
}

// ValidateSettings checks raw config settings against the embedded JSON
// schema before they are unmarshalled into Config, so typos in keys or
// values surface with the schema's wording instead of as silent zero values.
func ValidateSettings(settings map[string]any) error {
	compiled, err := compiledSchema()
	if err != nil {
		return err
	}
	result, err := compiled.Validate(gojsonschema.NewGoLoader(settings))
	if err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, schemaErr := range result.Errors() {
		problems = append(problems, schemaErr.String())
	}
	sort.Strings(problems)

	return fmt.Errorf("config does not match schema: %s", strings.Join(problems, "; "))
}
