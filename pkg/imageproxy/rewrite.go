package imageproxy

import "strings"

// RewriteSize rewrites an origin image URL to request a size-specific
// variant by replacing the first recognized size token with target. Origin
// URLs embed their size tier as a literal path token (e.g. ".../small/x.jpg").
// The URL is returned unchanged when target is empty, when no known token
// is present, or when the URL already carries the target token.
func RewriteSize(rawURL, target string, known []string) string {
	if target == "" {
		return rawURL
	}
	for _, token := range known {
		if token == "" || token == target {
			continue
		}
		marker := "/" + token + "/"
		if idx := strings.Index(rawURL, marker); idx >= 0 {
			return rawURL[:idx] + "/" + target + "/" + rawURL[idx+len(marker):]
		}
	}
	return rawURL
}
