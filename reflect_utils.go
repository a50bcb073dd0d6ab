package contracts

import (
	"reflect"
	"strings"
	"sync"
)

// TagName is the struct tag consulted when reading struct objects on dump and
// when decoding load results into structs.
const TagName = "contract"

// ResolveStructKey resolves a struct field's external key.
// Priority: contract tag > json tag name > field name; "-" disables the field.
func ResolveStructKey(sf reflect.StructField) string {
	if ct := sf.Tag.Get(TagName); ct != "" {
		name, _, _ := strings.Cut(ct, ",")
		if name != "" {
			return name
		}
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-"
		}
		if name, _, _ := strings.Cut(jt, ","); name != "" {
			return name
		}
	}
	return sf.Name
}

// structKeys caches key -> field index path per struct type. Embedded
// structs are flattened; outer fields win over promoted ones.
var structKeys sync.Map // reflect.Type -> map[string][]int

func keysOf(t reflect.Type) map[string][]int {
	if m, ok := structKeys.Load(t); ok {
		return m.(map[string][]int)
	}
	m := map[string][]int{}
	collectKeys(t, nil, m)
	actual, _ := structKeys.LoadOrStore(t, m)
	return actual.(map[string][]int)
}

func collectKeys(t reflect.Type, prefix []int, into map[string][]int) {
	var embedded []reflect.StructField
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous && sf.Tag.Get(TagName) == "" && sf.Tag.Get("json") == "" {
			ft := sf.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				embedded = append(embedded, sf)
				continue
			}
		}
		if !sf.IsExported() {
			continue
		}
		key := ResolveStructKey(sf)
		if key == "-" {
			continue
		}
		if _, taken := into[key]; !taken {
			into[key] = append(append([]int(nil), prefix...), i)
		}
	}
	for _, sf := range embedded {
		ft := sf.Type
		if ft.Kind() == reflect.Pointer {
			// pointer embeds are skipped: a nil pointer has no fields to read
			continue
		}
		collectKeys(ft, append(append([]int(nil), prefix...), sf.Index...), into)
	}
}
