package domain

import (
	"regexp"
	"strings"
)

var driveFileID = regexp.MustCompile(`/d/([a-zA-Z0-9_-]+)`)

// ResolveSourceURL rewrites cloud-drive share links to their direct-download
// form and passes everything else through.
func ResolveSourceURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	switch {
	case strings.Contains(raw, "drive.google.com"):
		if m := driveFileID.FindStringSubmatch(raw); m != nil {
			return "https://drive.google.com/uc?export=download&id=" + m[1]
		}
	case strings.Contains(raw, "dropbox.com"):
		return dropboxDirect(raw)
	}
	return raw
}

// dropboxDirect forces dl=1, keeping the rest of the link untouched.
func dropboxDirect(raw string) string {
	switch {
	case strings.Contains(raw, "dl=1"):
		return raw
	case strings.Contains(raw, "dl=0"):
		return strings.Replace(raw, "dl=0", "dl=1", 1)
	case strings.Contains(raw, "?"):
		return raw + "&dl=1"
	default:
		return raw + "?dl=1"
	}
}
