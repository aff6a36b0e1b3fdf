package jsonc

import "encoding/json"

// Decode marshals v's native form and unmarshals it into target,
// bridging the ordered Value tree into ordinary Go structs so that
// callers (pkg/spacefile) can validate with struct tags.
func Decode(v Value, target interface{}) error {
	native := v.ToNative()
	b, err := json.Marshal(native)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, target)
}

// Keys returns the top-level keys of an object Value in source order,
// or nil if v is not an object. Used for "no unknown top-level keys"
// validation.
func Keys(v Value) []string {
	if v.Kind != KindObject || v.Object == nil {
		return nil
	}
	keys := make([]string, 0, v.Object.Len())
	for pair := v.Object.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}
