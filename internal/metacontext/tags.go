package metacontext

// tagsMatchAny reports true iff at least one pattern matches at least one
// item tag. A pattern matches when keys are equal (case-sensitive)
// and, if the pattern specifies a value, values are equal too; a key-only
// pattern matches any value of that key.
func tagsMatchAny(itemTags, patternTags []Tag) bool {
	for _, pattern := range patternTags {
		for _, tag := range itemTags {
			if tagMatches(tag, pattern) {
				return true
			}
		}
	}
	return false
}

func tagMatches(tag, pattern Tag) bool {
	if tag.Key != pattern.Key {
		return false
	}
	if !pattern.HasValue {
		return true
	}
	return tag.HasValue && tag.Value == pattern.Value
}

// summarizeRef returns the primary human-readable field for ref, or "" if it
// does not resolve to an existing object.
func (s *Store) summarizeRef(ref Ref) string {
	return s.Summarize(ref)
}
