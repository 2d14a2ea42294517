package agent

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// TypedConfig stores a Config together with its Type so that it can be
// deserialized into its concrete type without knowing that type
// beforehand.
type TypedConfig struct {
	Type
	Config
}

// NewTypedConfig types the argument Config
func NewTypedConfig(c Config) TypedConfig {
	return TypedConfig{Type: c.Type(), Config: c}
}

type typedConfigJSON struct {
	Type   Type
	Config json.RawMessage
}

// MarshalJSON implements the json.Marshaler interface
func (t TypedConfig) MarshalJSON() ([]byte, error) {
	config, err := json.Marshal(t.Config)
	if err != nil {
		return nil, err
	}
	return json.Marshal(typedConfigJSON{t.Type, config})
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (t *TypedConfig) UnmarshalJSON(data []byte) error {
	var raw typedConfigJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	config, err := NewConfig(raw.Type)
	if err != nil {
		return fmt.Errorf("unmarshalJSON: %w", err)
	}

	// Decode into a pointer to the concrete type, then store the value
	value := reflect.New(reflect.TypeOf(config))
	value.Elem().Set(reflect.ValueOf(config))
	if len(raw.Config) > 0 && string(raw.Config) != "null" {
		if err := json.Unmarshal(raw.Config, value.Interface()); err != nil {
			return fmt.Errorf("unmarshalJSON: %w", err)
		}
	}

	t.Type = raw.Type
	t.Config = value.Elem().Interface().(Config)
	return nil
}
