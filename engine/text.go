package engine

import (
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// setInfo writes entries into the document information dictionary, creating it if needed.
func setInfo(pctx *model.Context, entries map[string]string) error {
	if pctx.Info == nil {
		ir, err := pctx.IndRefForNewObject(types.NewDict())
		if err != nil {
			return fmt.Errorf("info dictionary: %w", err)
		}
		pctx.Info = ir
	}
	d, err := pctx.DereferenceDict(*pctx.Info)
	if err != nil {
		return fmt.Errorf("info dictionary: %w", err)
	}
	if d == nil {
		return fmt.Errorf("info dictionary: missing object %s", pctx.Info)
	}
	for k, v := range entries {
		d[k] = encodeText(v)
	}
	return nil
}

// readInfo returns the text entries of the document information dictionary.
func readInfo(pctx *model.Context) (map[string]string, error) {
	out := map[string]string{}
	if pctx.Info == nil {
		return out, nil
	}
	d, err := pctx.DereferenceDict(*pctx.Info)
	if err != nil || d == nil {
		return out, err
	}
	for k, o := range d {
		o, err := pctx.Dereference(o)
		if err != nil {
			continue
		}
		switch v := o.(type) {
		case types.StringLiteral:
			out[k] = decodeLiteral(string(v))
		case types.HexLiteral:
			out[k] = decodeHex(string(v))
		}
	}
	return out, nil
}

// encodeText produces a PDF text string: an escaped literal for ASCII, UTF-16BE
// with byte order mark otherwise.
func encodeText(s string) types.Object {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		r := strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`, "\r", `\r`, "\n", `\n`)
		return types.StringLiteral(r.Replace(s))
	}
	units := utf16.Encode([]rune(s))
	b := make([]byte, 2, 2+2*len(units))
	b[0], b[1] = 0xFE, 0xFF
	for _, u := range units {
		b = append(b, byte(u>>8), byte(u))
	}
	return types.HexLiteral(strings.ToUpper(hex.EncodeToString(b)))
}

func decodeLiteral(s string) string {
	var b []byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b = append(b, c)
			continue
		}
		i++
		switch c = s[i]; c {
		case 'n':
			b = append(b, '\n')
		case 'r':
			b = append(b, '\r')
		case 't':
			b = append(b, '\t')
		case 'b':
			b = append(b, '\b')
		case 'f':
			b = append(b, '\f')
		case '\r':
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
		case '\n':
		case '0', '1', '2', '3', '4', '5', '6', '7':
			v := int(c - '0')
			for n := 0; n < 2 && i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '7'; n++ {
				i++
				v = v*8 + int(s[i]-'0')
			}
			b = append(b, byte(v))
		default:
			b = append(b, c)
		}
	}
	return decodeBytes(b)
}

func decodeHex(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
			return -1
		}
		return r
	}, s)
	if len(s)%2 == 1 {
		s += "0"
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return ""
	}
	return decodeBytes(b)
}

// pdfDocDiffs are the PDFDocEncoding code points that differ from Latin-1.
// Undefined codes map to U+FFFD.
var pdfDocDiffs = map[byte]rune{
	0x18: '\u02D8', 0x19: '\u02C7', 0x1A: '\u02C6', 0x1B: '\u02D9',
	0x1C: '\u02DD', 0x1D: '\u02DB', 0x1E: '\u02DA', 0x1F: '\u02DC',
	0x7F: '\uFFFD',
	0x80: '\u2022', 0x81: '\u2020', 0x82: '\u2021', 0x83: '\u2026',
	0x84: '\u2014', 0x85: '\u2013', 0x86: '\u0192', 0x87: '\u2044',
	0x88: '\u2039', 0x89: '\u203A', 0x8A: '\u2212', 0x8B: '\u2030',
	0x8C: '\u201E', 0x8D: '\u201C', 0x8E: '\u201D', 0x8F: '\u2018',
	0x90: '\u2019', 0x91: '\u201A', 0x92: '\u2122', 0x93: '\uFB01',
	0x94: '\uFB02', 0x95: '\u0141', 0x96: '\u0152', 0x97: '\u0160',
	0x98: '\u0178', 0x99: '\u017D', 0x9A: '\u0131', 0x9B: '\u0142',
	0x9C: '\u0153', 0x9D: '\u0161', 0x9E: '\u017E', 0x9F: '\uFFFD',
	0xA0: '\u20AC', 0xAD: '\uFFFD',
}

// pdfDocEncoding maps every byte of a PDFDocEncoding string to its rune.
var pdfDocEncoding = func() (t [256]rune) {
	for i := range t {
		t[i] = rune(i)
	}
	for b, r := range pdfDocDiffs {
		t[b] = r
	}
	return t
}()

// decodeBytes handles UTF-16BE with BOM; anything else is PDFDocEncoding.
func decodeBytes(b []byte) string {
	if len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF {
		units := make([]uint16, 0, (len(b)-2)/2)
		for i := 2; i+1 < len(b); i += 2 {
			units = append(units, uint16(b[i])<<8|uint16(b[i+1]))
		}
		return string(utf16.Decode(units))
	}
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = pdfDocEncoding[c]
	}
	return string(runes)
}
