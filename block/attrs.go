package block

// Attribute accessors used by the per-type extractors. Every read resolves a
// missing or mistyped value to the caller supplied default - malformed
// content must never fail the conversion.

// StringAttr returns a string attribute or def when absent or not a string.
func (b *Block) StringAttr(key, def string) string {
	if v, ok := b.Attrs[key].(string); ok {
		return v
	}
	return def
}

// IntAttr returns an integer attribute or def. JSON decoding produces
// float64 for all numbers, so both shapes are accepted.
func (b *Block) IntAttr(key string, def int) int {
	switch v := b.Attrs[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return def
}

// FloatAttr returns a numeric attribute or def.
func (b *Block) FloatAttr(key string, def float64) float64 {
	switch v := b.Attrs[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return def
}

// BoolAttr returns a boolean attribute or def.
func (b *Block) BoolAttr(key string, def bool) bool {
	if v, ok := b.Attrs[key].(bool); ok {
		return v
	}
	return def
}

// MapAttr returns an object attribute or nil.
func (b *Block) MapAttr(key string) map[string]any {
	if v, ok := b.Attrs[key].(map[string]any); ok {
		return v
	}
	return nil
}

// ListAttr returns an array attribute or nil.
func (b *Block) ListAttr(key string) []any {
	if v, ok := b.Attrs[key].([]any); ok {
		return v
	}
	return nil
}

// HasAttr reports whether the attribute is present at all. Needed where
// presence and zero value differ, e.g. dropCap contributes a class only when
// the attribute exists and is true.
func (b *Block) HasAttr(key string) bool {
	_, ok := b.Attrs[key]
	return ok
}

// nested walks a path of object attributes, e.g. style.color.background.
func nested(m map[string]any, path ...string) any {
	var cur any = m
	for _, p := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = obj[p]
	}
	return cur
}

// NestedString resolves a dotted attribute path to a string, or "".
func (b *Block) NestedString(path ...string) string {
	if v, ok := nested(b.Attrs, path...).(string); ok {
		return v
	}
	return ""
}
