// ABOUTME: Plain-text rendering of search results for tool output
// ABOUTME: Markdown-style bold names followed by descriptions

package prompts

import (
	"fmt"
	"strings"

	"github.com/2389/promptmesh-gateway/internal/store"
)

// FormatSearchSummary renders matches as:
//
//	Found N prompts matching "Q":
//
//	**name**
//	description
//
// with one blank line between entries.
func FormatSearchSummary(query string, matches []*store.PromptWithContent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d prompts matching \"%s\":\n\n", len(matches), query)

	entries := make([]string, len(matches))
	for i, p := range matches {
		entries[i] = "**" + p.Name + "**\n" + p.Description + "\n"
	}
	b.WriteString(strings.Join(entries, "\n"))
	return b.String()
}
