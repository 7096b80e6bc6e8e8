// Package corpus loads document records from the filesystem for indexing.
// Text formats are read directly; binary document formats (PDF, Word) are
// delegated to an Extractor collaborator and skipped when none is configured.
package corpus

import "context"

// DefaultPatterns lists the file name patterns indexed by default.
var DefaultPatterns = []string{
	"*.txt", "*.md", "*.csv", "*.json", "*.xml", "*.log",
	"*.py", "*.java", "*.js", "*.ts", "*.html", "*.css",
	"*.yaml", "*.yml", "*.ini", "*.cfg", "*.conf", "*.err", "*.out",
	"*.sql", "*.sh", "*.bat", "*.ps1", "*.c", "*.cpp", "*.h",
	"*.pdf", "*.docx", "*.doc",
}

// Extractor pulls indexable text out of binary document formats. Extracted
// lines carry the structural tags ("[Page N]", "[Para N]", "[Table N]") that
// the answer synthesizer inspects for deep links.
type Extractor interface {
	// Supports reports whether this extractor handles the given path.
	Supports(path string) bool
	// Extract returns the text content, empty for an unreadable file.
	Extract(ctx context.Context, path string) (string, error)
}
