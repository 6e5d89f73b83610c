package core

// encoding.go turns raw file bytes into UTF-8 text for the CSV tokenizer.
//
// UTF-8 input (the default) has any byte-order mark removed and invalid
// sequences replaced with U+FFFD. A UTF-16 byte-order mark switches
// decoding to UTF-16 regardless of the declared encoding.

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// decoderFor resolves a declared character encoding name.
func decoderFor(name string) (encoding.Encoding, error) {
	key := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(strings.TrimSpace(name)))
	switch key {
	case "", "utf8", "ascii", "usascii":
		return unicode.UTF8, nil
	case "utf16", "utf16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), nil
	case "utf16be":
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM), nil
	case "iso88591", "latin1", "l1":
		return charmap.ISO8859_1, nil
	case "iso885915", "latin9":
		return charmap.ISO8859_15, nil
	case "windows1252", "cp1252":
		return charmap.Windows1252, nil
	case "macroman", "macintosh":
		return charmap.Macintosh, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, name)
}

// decodeReader wraps r so it yields UTF-8 text.
func decodeReader(r io.Reader, name string) (io.Reader, error) {
	enc, err := decoderFor(name)
	if err != nil {
		return nil, err
	}
	return transform.NewReader(r, unicode.BOMOverride(enc.NewDecoder())), nil
}

// quoteSwap exchanges the declared quote character with '"'. The CSV
// tokenizer only understands '"', so the stream is swapped before parsing
// and each field is swapped back afterwards.
func quoteSwap(quote rune) func(rune) rune {
	return func(r rune) rune {
		switch r {
		case quote:
			return '"'
		case '"':
			return quote
		}
		return r
	}
}

// withQuote applies quoteSwap to a stream when the declared quote is not '"'.
func withQuote(r io.Reader, quote rune) io.Reader {
	if quote == '"' || quote == 0 {
		return r
	}
	return transform.NewReader(r, runes.Map(quoteSwap(quote)))
}
