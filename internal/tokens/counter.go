package tokens

import (
	"fmt"
	"strings"
	"sync"

	"srcmerge/internal/errors"
	"srcmerge/internal/log"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is used when no encoding is configured.
const DefaultEncoding = "cl100k_base"

// WhitespaceEncoding selects the offline word counter.
const WhitespaceEncoding = "whitespace"

// Counter turns text into a token count.
type Counter interface {
	Count(content string) (int, error)
	Name() string
}

// Tiktoken counts BPE tokens with a tiktoken encoding.
type Tiktoken struct {
	name string
	mu   sync.Mutex
	enc  *tiktoken.Tiktoken
}

// loadEncoding resolves an encoding or model name. Swapped in tests to
// simulate an unreachable BPE download.
var loadEncoding = func(name string) (*tiktoken.Tiktoken, error) {
	if strings.HasSuffix(name, "_base") {
		return tiktoken.GetEncoding(name)
	}
	return tiktoken.EncodingForModel(name)
}

// NewTiktoken loads an encoding by name ("cl100k_base") or by model name
// ("gpt-4o-mini"). Loading may fetch the BPE ranks on first use.
func NewTiktoken(name string) (*Tiktoken, error) {
	if name == "" {
		name = DefaultEncoding
	}
	enc, err := loadEncoding(name)
	if err != nil {
		return nil, errors.NewConfigError("failed to load tokenizer", name, errors.InvalidConfig, err)
	}
	return &Tiktoken{name: name, enc: enc}, nil
}

// Count encodes content and returns the number of tokens.
func (t *Tiktoken) Count(content string) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.WrapKind(fmt.Errorf("%v", r), errors.CountFailed, "tokenizer panic")
		}
	}()
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.enc.Encode(content, nil, nil)), nil
}

// Name returns the encoding or model name.
func (t *Tiktoken) Name() string {
	return t.name
}

// Whitespace approximates tokens as whitespace separated words.
type Whitespace struct{}

// Count returns the number of fields in content.
func (Whitespace) Count(content string) (int, error) {
	return len(strings.Fields(content)), nil
}

// Name returns WhitespaceEncoding.
func (Whitespace) Name() string {
	return WhitespaceEncoding
}

// NewCounter returns the counter configured by name. The whitespace counter
// is returned for WhitespaceEncoding and whenever the tiktoken encoding
// cannot be loaded, for instance offline on first use.
func NewCounter(name string) Counter {
	if name == WhitespaceEncoding {
		return Whitespace{}
	}
	t, err := NewTiktoken(name)
	if err != nil {
		log.LogWithFields(log.F("encoding", name), log.F("error", err)).Warn("Tokenizer unavailable, counting whitespace separated words")
		return Whitespace{}
	}
	return t
}
