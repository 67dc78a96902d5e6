package sanitizer

// Slice applies strategy to each item, dropping empties and duplicates
// while keeping first-seen order.
func Slice(items []string, strategy Strategy) []string {
	result := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))

	for _, item := range items {
		normalized := strategy(item)
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		result = append(result, normalized)
	}
	return result
}
