package source

// setNested walks segments into nested maps, creating levels as needed, and
// sets the final segment to value. If a leaf already occupies an intermediate
// path the value is skipped; the earlier setting wins.
func setNested(m map[string]any, segments []string, value string) {
	for i, seg := range segments {
		if i == len(segments)-1 {
			m[seg] = value
			return
		}
		next, ok := m[seg].(map[string]any)
		if !ok {
			if _, exists := m[seg]; exists {
				return
			}
			next = make(map[string]any)
			m[seg] = next
		}
		m = next
	}
}
