package header

import "strings"

// The header dictionary is matched against this template, in this key order:
//
//	{'descr': '<descr>', 'fortran_order': <fortran>, 'shape': (<shape>), }
//
// Each field is the shortest text that lets the rest of the template match,
// and no field may span a line break.
const (
	keyDescr   = "{'descr': '"
	keyFortran = "', 'fortran_order': "
	keyShape   = ", 'shape': ("
	dictEnd    = "), }"
)

type headerFields struct {
	descr        string
	fortranOrder string
	shape        string
}

// extract pulls the three fields out of the header text.
func extract(text string) (headerFields, bool) {
	rest, ok := strings.CutPrefix(text, keyDescr)
	if !ok {
		return headerFields{}, false
	}
	if i := strings.IndexAny(rest, "\r\n"); i >= 0 {
		rest = rest[:i]
	}

	for _, d := range indexAll(rest, keyFortran) {
		descr := rest[:d]
		afterDescr := rest[d+len(keyFortran):]
		for _, f := range indexAll(afterDescr, keyShape) {
			fortran := afterDescr[:f]
			afterFortran := afterDescr[f+len(keyShape):]
			if s := strings.Index(afterFortran, dictEnd); s >= 0 {
				return headerFields{
					descr:        descr,
					fortranOrder: fortran,
					shape:        afterFortran[:s],
				}, true
			}
		}
	}
	return headerFields{}, false
}

// indexAll returns the offsets of every occurrence of sep in s, in order.
func indexAll(s, sep string) []int {
	var out []int
	for off := 0; ; {
		i := strings.Index(s[off:], sep)
		if i < 0 {
			return out
		}
		out = append(out, off+i)
		off += i + 1
	}
}
