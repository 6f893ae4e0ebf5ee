package generator

import (
	"regexp"
	"strings"
)

const fence = "```"

// reFenceLine matches a line holding only a fence marker and its info string,
// together with the line break that ends it.
var reFenceLine = regexp.MustCompile("(?m)^[ \\t]*```[^`\\n]*(?:\\n|$)")

// StripFences removes markdown code fence markers from generated text.
// Fence lines are removed whole; any other marker is removed on its own,
// leaving the rest of its line in place. The result never contains "```".
func StripFences(text string) string {
	for strings.Contains(text, fence) {
		text = reFenceLine.ReplaceAllString(text, "")
		text = strings.ReplaceAll(text, fence, "")
	}
	return text
}
