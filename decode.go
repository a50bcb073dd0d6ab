package contracts

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// LoadInto loads data through c and decodes the result into a T. Struct
// fields are matched with the same priority dump uses: `contract` tag, then
// `json` tag, then the field name. Validation errors are returned unchanged;
// decoding failures are wrapped.
func LoadInto[T any](c *Contract, data any) (T, error) {
	var zero T
	out, err := c.Load(data)
	if err != nil {
		return zero, err
	}
	var dst T
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          TagName,
		Result:           &dst,
		WeaklyTypedInput: false,
		Squash:           true,
		DecodeHook:       mapstructure.DecodeHookFuncValue(structKeyHook),
	})
	if err != nil {
		return zero, fmt.Errorf("contracts: decode %s: %w", c.def.name, err)
	}
	if err := dec.Decode(out); err != nil {
		return zero, fmt.Errorf("contracts: decode %s: %w", c.def.name, err)
	}
	return dst, nil
}

// structKeyHook renames a mapping's keys to the names mapstructure matches
// when the target is a struct.
func structKeyHook(from, to reflect.Value) (any, error) {
	if !from.IsValid() {
		return nil, nil
	}
	m, ok := from.Interface().(map[string]any)
	if !ok {
		return from.Interface(), nil
	}
	t := to.Type()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return m, nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	renameKeys(t, m, out)
	return out, nil
}

func renameKeys(t reflect.Type, in, out map[string]any) {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag, _, _ := strings.Cut(sf.Tag.Get(TagName), ",")
		if sf.Anonymous && tag == "" && sf.Type.Kind() == reflect.Struct {
			renameKeys(sf.Type, in, out)
			continue
		}
		if !sf.IsExported() {
			continue
		}
		want := sf.Name
		if tag != "" {
			want = tag
		}
		key := ResolveStructKey(sf)
		if key == "-" || key == want {
			continue
		}
		if v, ok := in[key]; ok {
			delete(out, key)
			out[want] = v
		}
	}
}
