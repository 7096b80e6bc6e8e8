package answer

import (
	"fmt"
	"strings"
)

const contextSeparator = "\n\n---\n\n"

// buildPrompt assembles the completion prompt sent to generative backends.
// Retrieved contexts are joined with a separator so the model can tell
// documents apart.
func buildPrompt(question string, contexts []string) string {
	return fmt.Sprintf(
		"Use the following contexts to answer the query:\n\n%s\n\nQuery: %s\nAnswer:",
		strings.Join(contexts, contextSeparator),
		question,
	)
}
