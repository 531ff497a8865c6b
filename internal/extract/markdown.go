// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import "regexp"

var markdownFenceRe = regexp.MustCompile("```(?:markdown|plaintext)?\\s*([\\s\\S]*?)```")

// Markdown returns the body of the first fenced block in text (tagged
// markdown, plaintext, or untagged). Text without a fence is returned as is.
func Markdown(text string) string {
	if m := markdownFenceRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return text
}
