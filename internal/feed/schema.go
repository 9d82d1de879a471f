package feed

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// rawOrderSchema describes one record of the upstream feed. Records failing
// this schema are dropped at the boundary before normalization.
var rawOrderSchema = map[string]interface{}{
	"type": "object",
	"required": []interface{}{
		"order_no", "order_date", "song_name", "order_type",
		"order_price", "recent_price", "order_royalty_rate",
	},
	"properties": map[string]interface{}{
		"order_no":           map[string]interface{}{"type": "string", "minLength": 1},
		"order_date":         map[string]interface{}{"type": "string", "minLength": 1},
		"song_name":          map[string]interface{}{"type": "string"},
		"song_artist":        map[string]interface{}{"type": "string"},
		"song_category":      map[string]interface{}{"type": "string"},
		"order_type":         map[string]interface{}{"type": "string", "minLength": 1},
		"order_status":       map[string]interface{}{"type": "string"},
		"order_price":        map[string]interface{}{"type": "number", "minimum": 0},
		"order_count":        map[string]interface{}{"type": "integer", "minimum": 0},
		"leaves_count":       map[string]interface{}{"type": "integer", "minimum": 0},
		"recent_price":       map[string]interface{}{"type": "number", "minimum": 0},
		"order_royalty_rate": map[string]interface{}{"type": "number", "minimum": 0, "maximum": 1},
		"url_link":           map[string]interface{}{"type": "string"},
	},
}

// RecordValidator validates raw feed records against the compiled schema.
type RecordValidator struct {
	schema *jsonschema.Schema
}

// NewRecordValidator compiles the raw order schema.
func NewRecordValidator() (*RecordValidator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7

	schemaJSON, err := json.Marshal(rawOrderSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	if err := compiler.AddResource("raw_order.json", bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	schema, err := compiler.Compile("raw_order.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &RecordValidator{schema: schema}, nil
}

// Validate validates one decoded feed record.
func (v *RecordValidator) Validate(record interface{}) error {
	if err := v.schema.Validate(record); err != nil {
		if ve, ok := err.(*jsonschema.ValidationError); ok {
			return fmt.Errorf("record field %q: %s", ve.InstanceLocation, ve.Message)
		}
		return fmt.Errorf("record validation failed: %w", err)
	}
	return nil
}
