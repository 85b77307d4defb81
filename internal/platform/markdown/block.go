package markdown

import "strings"

// ReplaceBlock swaps the generated section named name inside body, or
// appends it when the markers are missing. Text outside the markers is the
// reader's and is never touched.
func ReplaceBlock(body, name, generated string) string {
	start := "<!-- granth:" + name + ":start -->"
	end := "<!-- granth:" + name + ":end -->"
	block := start + "\n" + generated + "\n" + end

	i := strings.Index(body, start)
	j := strings.Index(body, end)
	if i >= 0 && j > i {
		return body[:i] + block + body[j+len(end):]
	}
	switch {
	case strings.TrimSpace(body) == "":
		return block + "\n"
	case strings.HasSuffix(body, "\n"):
		return body + "\n" + block + "\n"
	default:
		return body + "\n\n" + block + "\n"
	}
}
