package remote

import "strings"

// ResolveImageURL turns an image path from a dish payload into a URL under
// base. Absolute http(s) URLs are returned unchanged and a leading "./" is
// dropped.
func ResolveImageURL(base, path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	path = strings.TrimPrefix(path, "./")
	return strings.TrimRight(base, "/") + "/" + path
}
