package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const profileSchemaURL = "profile.schema.json"

const profileSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "api-tester profile",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "totalCalls":       { "type": "integer", "minimum": 0 },
    "numThreads":       { "type": "integer", "minimum": 1 },
    "sleepTime":        { "type": "integer", "minimum": 0, "maximum": 9223372036854 },
    "requestTimeOut":   { "type": "integer", "minimum": 0, "maximum": 9223372036854 },
    "connectTimeOut":   { "type": "integer", "minimum": 0, "maximum": 9223372036854 },
    "reuseConnects":    { "type": "boolean" },
    "keepConnectsOpen": { "type": "boolean" }
  }
}`

var (
	compiledProfileSchema *jsonschema.Schema
	profileSchemaErr      error
	profileSchemaOnce     sync.Once
)

// ValidationErrors collects every schema violation found in a profile.
type ValidationErrors []error

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("invalid profile: ")
	for i, err := range ve {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(err.Error())
	}
	return sb.String()
}

func loadProfileSchema() (*jsonschema.Schema, error) {
	profileSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(profileSchemaURL, strings.NewReader(profileSchema)); err != nil {
			profileSchemaErr = fmt.Errorf("invalid profile schema: %w", err)
			return
		}
		compiledProfileSchema, profileSchemaErr = compiler.Compile(profileSchemaURL)
	})
	return compiledProfileSchema, profileSchemaErr
}

// validateProfileDocument checks a decoded YAML or JSON document against the
// profile schema. An empty document is an empty profile.
func validateProfileDocument(doc interface{}) error {
	schema, err := loadProfileSchema()
	if err != nil {
		return err
	}

	if doc == nil {
		doc = map[string]interface{}{}
	}

	// The validator expects encoding/json value types.
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("profile must be a mapping of option names to values: %w", err)
	}
	var normalized interface{}
	if err := json.Unmarshal(raw, &normalized); err != nil {
		return fmt.Errorf("profile must be a mapping of option names to values: %w", err)
	}

	if err := schema.Validate(normalized); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			return extractValidationErrors(validationErr)
		}
		return ValidationErrors{err}
	}
	return nil
}

func extractValidationErrors(err *jsonschema.ValidationError) ValidationErrors {
	var errs ValidationErrors

	// Only leaves carry the useful message; parents just say "doesn't validate".
	if len(err.Causes) == 0 {
		location := err.InstanceLocation
		if location == "" {
			location = "/"
		}
		errs = append(errs, fmt.Errorf("%s: %s", location, err.Message))
	}

	for _, cause := range err.Causes {
		errs = append(errs, extractValidationErrors(cause)...)
	}

	return errs
}
