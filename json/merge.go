package json

// Merge moves every member of src into dst. Members of dst sharing a key
// with a moved member are removed and released first. src is left empty;
// its members now belong to dst and must not be reached through src again.
func Merge(dst, src *Value) error {
	if !dst.IsObject() || !src.IsObject() || dst == src {
		return ErrArgument
	}
	if encloses(src, dst) || encloses(dst, src) {
		return ErrArgument
	}

	for key, member := range src.obj.Drain() {
		dst.Delete(key)
		dst.obj.Insert(key, member)
		member.parent = dst
	}
	return nil
}

// encloses reports whether outer is an ancestor of v.
func encloses(outer, v *Value) bool {
	for p := v.parent; p != nil; p = p.parent {
		if p == outer {
			return true
		}
	}
	return false
}
