package serving

import "strings"

// extractInputPath selects a sub-path of the event body as the effective
// request payload. An empty path returns the body unchanged; a missing key
// anywhere along the path yields nil.
func extractInputPath(path string, body any) any {
	if path == "" {
		return body
	}
	cur := body
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[key]
	}
	return cur
}

// updateResultPath writes the response into the given sub-path of the
// original event body, leaving the rest of the envelope untouched.
// With an empty path (or a non-mapping original) the response replaces the
// body wholesale. Intermediate maps are created as needed.
func updateResultPath(path string, original, response any) any {
	if path == "" {
		return response
	}
	root, ok := original.(map[string]any)
	if !ok {
		return response
	}
	keys := strings.Split(path, ".")
	cur := root
	for _, key := range keys[:len(keys)-1] {
		next, ok := cur[key].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[key] = next
		}
		cur = next
	}
	cur[keys[len(keys)-1]] = response
	return root
}
