package entities

import (
	"reflect"

	mapstructure "github.com/go-viper/mapstructure/v2"
)

// decodeAttrs decodes a parsed attribute bag into a kind-specific typed args
// struct. Attrs values are always strings (they come straight off a
// filename), so weak typing is enabled: "15" decodes into an int field,
// "true"/"1" into a bool field, a bare flag ("") into a bool field as true,
// "12.5%" is left to the field's own UnmarshalText when present (Margin,
// Crop, Coords, Angles below).
func decodeAttrs(attrs Attrs, dst any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		TagName:          "arg",
		Result:           dst,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(func(from, to reflect.Value) (any, error) {
			if from.Kind() == reflect.String && from.String() == "" && to.Kind() == reflect.Bool {
				return true, nil
			}
			return from.Interface(), nil
		}, textUnmarshalHook),
	})
	if err != nil {
		return err
	}
	return dec.Decode(map[string]any(attrs))
}
