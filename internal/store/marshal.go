package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/uniqname/internal/attr"
)

// marshalAttrs converts an attribute object to canonical JSON TEXT for storage.
func marshalAttrs(attrs attr.Object) (string, error) {
	if attrs == nil {
		attrs = attr.Object{}
	}
	data, err := attr.MarshalCanonical(attrs)
	if err != nil {
		return "", fmt.Errorf("marshal attrs: %w", err)
	}
	return string(data), nil
}

// unmarshalAttrs parses canonical JSON TEXT to an attribute object.
// attr.Object.UnmarshalJSON keeps integers exact via json.Number.
func unmarshalAttrs(data string) (attr.Object, error) {
	if data == "" || data == "{}" {
		return attr.Object{}, nil
	}
	var obj attr.Object
	if err := json.Unmarshal([]byte(data), &obj); err != nil {
		return nil, fmt.Errorf("unmarshal attrs: %w", err)
	}
	return obj, nil
}
