package minecraft

// ExtractJSONObjects splits a stream of concatenated top-level JSON
// objects into individual documents by tracking brace depth. cat prints
// the stats files back to back with no separator, so the output cannot
// be decoded in one pass.
//
// Stats documents never contain braces inside string values, so plain
// depth counting is sufficient.
func ExtractJSONObjects(text string) []string {
	var objects []string
	depth := 0
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			depth--
			if depth == 0 {
				objects = append(objects, text[start:i+1])
			}
		}
	}
	return objects
}
