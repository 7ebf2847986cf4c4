// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// ValidateParams validates a set of arguments against a JSON schema
func ValidateParams(schema map[string]interface{}, params map[string]interface{}) error {
	// Serialize the schema so gojsonschema can load it in its canonical form
	schemaBytes, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("schema validation error: failed to serialize schema: %w", err)
	}
	schemaLoader := gojsonschema.NewBytesLoader(schemaBytes)

	// Serialize params the same way for consistency
	paramsBytes, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("schema validation error: failed to serialize params: %w", err)
	}
	documentLoader := gojsonschema.NewBytesLoader(paramsBytes)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		errorMsg := "parameter validation failed:\n"
		for _, err := range result.Errors() {
			errorMsg += fmt.Sprintf("- %s\n", err)
		}
		return fmt.Errorf("%s", errorMsg)
	}

	return nil
}

// MergeWithDefaults merges arguments over a set of default values
func MergeWithDefaults(params map[string]interface{}, defaults map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})

	for k, v := range defaults {
		result[k] = v
	}

	for k, v := range params {
		result[k] = v
	}

	return result
}
