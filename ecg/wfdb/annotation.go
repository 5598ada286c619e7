package wfdb

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/cwbudde/algo-ecg/ecg"
)

// ErrMalformedAnnotation reports an annotation file that ends inside an
// entry or moves time before the start of the record.
var ErrMalformedAnnotation = errors.New("wfdb: malformed annotation file")

// Pseudo-codes of the MIT annotation format. They carry data for the
// entries around them and are never returned as annotations.
const (
	codeSkip = 59
	codeNum  = 60
	codeSub  = 61
	codeChn  = 62
	codeAux  = 63
)

// symbols maps MIT annotation codes to their mnemonics.
var symbols = map[int]string{
	1: "N", 2: "L", 3: "R", 4: "a", 5: "V", 6: "F", 7: "J", 8: "A", 9: "S", 10: "E",
	11: "j", 12: "/", 13: "Q", 14: "~", 16: "|", 18: "s", 19: "T", 20: "*",
	21: "D", 22: "\"", 23: "=", 24: "p", 25: "B", 26: "^", 27: "t", 28: "+", 29: "u", 30: "?",
	31: "!", 32: "[", 33: "]", 34: "e", 35: "n", 36: "@", 37: "x", 38: "f", 39: "(", 40: ")",
	41: "r",
}

var codes = func() map[string]int {
	m := make(map[string]int, len(symbols))
	for c, s := range symbols {
		m[s] = c
	}
	return m
}()

// Symbol returns the mnemonic of an annotation code. Codes without a
// mnemonic are rendered as "[code]".
func Symbol(code int) string {
	if s, ok := symbols[code]; ok {
		return s
	}
	return fmt.Sprintf("[%d]", code)
}

// DecodeAnnotations parses an MIT format annotation stream. Entries are
// returned sorted by sample. A zero word or the end of the data ends the
// stream.
func DecodeAnnotations(data []byte) ([]ecg.Annotation, error) {
	var (
		anns []ecg.Annotation
		time int
		pos  int
	)
	for pos+2 <= len(data) {
		w := binary.LittleEndian.Uint16(data[pos:])
		pos += 2
		code, n := int(w>>10), int(w&0x3ff)
		if w == 0 {
			break
		}

		switch code {
		case codeSkip:
			if pos+4 > len(data) {
				return nil, fmt.Errorf("%w: skip entry truncated at byte %d", ErrMalformedAnnotation, pos)
			}
			hi := binary.LittleEndian.Uint16(data[pos:])
			lo := binary.LittleEndian.Uint16(data[pos+2:])
			pos += 4
			time += int(int32(uint32(hi)<<16 | uint32(lo)))
		case codeNum, codeSub, codeChn:
		case codeAux:
			end := pos + n
			if end > len(data) {
				return nil, fmt.Errorf("%w: aux string truncated at byte %d", ErrMalformedAnnotation, pos)
			}
			if len(anns) > 0 {
				anns[len(anns)-1].Aux = trimNUL(data[pos:end])
			}
			pos = end + n%2
		default:
			time += n
			if time < 0 {
				return nil, fmt.Errorf("%w: negative sample %d", ErrMalformedAnnotation, time)
			}
			// Code 0 with a nonzero interval only advances time.
			if code == 0 {
				continue
			}
			anns = append(anns, ecg.Annotation{Sample: time, Symbol: Symbol(code)})
		}
	}
	slices.SortStableFunc(anns, func(a, b ecg.Annotation) int { return a.Sample - b.Sample })
	return anns, nil
}

// ReadAnnotations decodes an annotation stream from r.
func ReadAnnotations(r io.Reader) ([]ecg.Annotation, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("wfdb: reading annotations: %w", err)
	}
	return DecodeAnnotations(data)
}

// EncodeAnnotations writes anns in MIT format, terminated by a zero word.
// Annotations must be sorted by sample. Symbols are looked up in the
// standard code table; intervals that do not fit ten bits use skip entries.
func EncodeAnnotations(anns []ecg.Annotation) ([]byte, error) {
	var out []byte
	word := func(code, n int) {
		out = binary.LittleEndian.AppendUint16(out, uint16(code<<10|n&0x3ff))
	}
	prev := 0
	for i, a := range anns {
		code, ok := codes[a.Symbol]
		if !ok {
			return nil, fmt.Errorf("wfdb: annotation %d has unknown symbol %q", i, a.Symbol)
		}
		d := a.Sample - prev
		if d < 0 {
			return nil, fmt.Errorf("wfdb: annotation %d at sample %d precedes %d", i, a.Sample, prev)
		}
		if d > 0x3ff {
			word(codeSkip, 0)
			v := uint32(int32(d))
			out = binary.LittleEndian.AppendUint16(out, uint16(v>>16))
			out = binary.LittleEndian.AppendUint16(out, uint16(v))
			d = 0
		}
		word(code, d)
		if a.Aux != "" {
			aux := []byte(a.Aux)
			if len(aux) > 0xff {
				aux = aux[:0xff]
			}
			word(codeAux, len(aux))
			out = append(out, aux...)
			if len(aux)%2 == 1 {
				out = append(out, 0)
			}
		}
		prev = a.Sample
	}
	word(0, 0)
	return out, nil
}

func trimNUL(b []byte) string {
	if i := slices.Index(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
