package merge

// Overlay layers override documents on top of base, as decoded from YAML or
// TOML, and returns a new document. None of the inputs are modified.
//
// Mappings are merged key by key and anything else, lists included, is
// replaced. A null override value removes the key, which is how an override
// file drops an entry from the defaults.
func Overlay(base map[string]any, overrides ...map[string]any) map[string]any {
	result := overlayInto(make(map[string]any, len(base)), base)
	for _, o := range overrides {
		result = overlayInto(result, o)
	}
	return result
}

func overlayInto(dst, src map[string]any) map[string]any {
	for k, v := range src {
		switch v := v.(type) {
		case nil:
			delete(dst, k)
		case map[string]any:
			existing, _ := dst[k].(map[string]any)
			if existing == nil {
				existing = make(map[string]any, len(v))
			}
			dst[k] = overlayInto(existing, v)
		default:
			dst[k] = v
		}
	}
	return dst
}
