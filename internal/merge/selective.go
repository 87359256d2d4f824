package merge

import (
	"fmt"
	"strings"

	"github.com/sap-gg/clifeed/internal/jsonobj"
)

// Selective refreshes the members of target from the same-named fields of
// computed. computed is serialized to JSON first; names match exactly, or
// case-insensitively when there is no exact match.
//
// The merge is one-directional: members of target without a counterpart are
// left untouched, and fields of computed that target does not have are never
// added. Empty fields dropped by omitempty therefore never overwrite anything.
func Selective(target *jsonobj.Object, computed any) error {
	data, err := jsonobj.Marshal(computed)
	if err != nil {
		return fmt.Errorf("marshal computed value: %w", err)
	}
	fields, err := jsonobj.Parse(data)
	if err != nil {
		return fmt.Errorf("computed value is not an object: %w", err)
	}

	folded := make(map[string]string, fields.Len())
	for _, name := range fields.Keys() {
		lower := strings.ToLower(name)
		if _, ok := folded[lower]; !ok {
			folded[lower] = name
		}
	}

	// Keys returns a snapshot, so replacing values below cannot affect the walk.
	for _, key := range target.Keys() {
		name := key
		if !fields.Has(name) {
			var ok bool
			if name, ok = folded[strings.ToLower(key)]; !ok {
				continue
			}
		}
		raw, _ := fields.Raw(name)
		target.Set(key, raw)
	}
	return nil
}
