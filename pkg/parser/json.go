package parser

import (
	"bufio"
	"context"
	"encoding/json"
	"io"

	"github.com/salescan/salescan/internal/model"
	"github.com/salescan/salescan/internal/pool"
	sserrors "github.com/salescan/salescan/pkg/errors"
)

// JSONArrayParser implements streaming decode of a root-level JSON
// array. Elements are decoded one at a time via the json.Decoder token
// API, so memory use is bounded by the largest single record, not the
// document.
type JSONArrayParser struct {
	cfg   Config
	items *pool.ItemPool
}

// NewJSONArrayParser creates a new JSON array parser.
func NewJSONArrayParser(cfg Config) *JSONArrayParser {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultBufferSize
	}
	return &JSONArrayParser{
		cfg:   cfg,
		items: pool.NewItemPool(),
	}
}

// Recycle returns a consumed item to the parser's pool.
func (p *JSONArrayParser) Recycle(it *model.Item) {
	p.items.Put(it)
}

// Parse implements the Parser interface for JSON array ledgers.
// Records already sent remain valid downstream when a later record
// fails to decode; the error reports the index of the failed record.
func (p *JSONArrayParser) Parse(ctx context.Context, r io.Reader, out chan<- *model.Item) error {
	dec := json.NewDecoder(bufio.NewReaderSize(r, p.cfg.BufferSize))

	tok, err := dec.Token()
	if err != nil {
		return sserrors.Wrap(err, sserrors.CodeParseFailed, "reading array start")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return sserrors.Wrap(ErrNotArray, sserrors.CodeParseFailed, "unexpected root value").
			WithContext("token", tok)
	}

	record := 0
	for dec.More() {
		select {
		case <-ctx.Done():
			return ErrContextCanceled
		default:
		}

		item := p.items.Get()
		if err := dec.Decode(item); err != nil {
			p.items.Put(item)
			return sserrors.ParseError(record, err)
		}
		record++

		select {
		case out <- item:
		case <-ctx.Done():
			p.items.Put(item)
			return ErrContextCanceled
		}
	}

	if _, err := dec.Token(); err != nil {
		return sserrors.Wrap(err, sserrors.CodeParseFailed, "reading array end").
			WithContext("records", record)
	}

	return nil
}
