// Package parser provides incremental parsing of sales-ledger files.
//
// The ledger is a single JSON document whose root value is an array of
// item records. The document may be too large to hold as a parsed
// tree, so parsing is incremental: one array element is materialized
// at a time and handed downstream before the next is touched.
package parser

import (
	"context"
	"io"

	"github.com/salescan/salescan/internal/model"
)

// Parser streams item records out of a ledger.
// Implementations must not retain references to the output channel
// after returning. The caller owns closing the channel.
type Parser interface {
	// Parse reads from r and sends decoded items to out.
	// It should respect context cancellation.
	Parse(ctx context.Context, r io.Reader, out chan<- *model.Item) error
}

// Config holds common parser configuration.
type Config struct {
	// BufferSize is the read-ahead buffer size in bytes.
	// Zero selects DefaultBufferSize.
	BufferSize int
}

// DefaultBufferSize is the default read-ahead buffer size.
const DefaultBufferSize = 64 * 1024
