package health

import domindex "github.com/kailas-cloud/docdex/internal/domain/index"

// IndexStatus exposes the live index state the health report is built from.
type IndexStatus interface {
	Current() *domindex.Index
	Rebuilding() bool
}
