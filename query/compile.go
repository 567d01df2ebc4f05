package query

import (
	"strings"

	"github.com/manojoshi/tablelimit/internal"
)

// Compile renders a FilterSet as a readable expression, for example
//
//	(name CONTAIN 'geo' AND (party IS 'Whig' OR party IS 'Federalist'))
//
// An empty set compiles to "*". The output is for logs, the CLI and HTTP
// responses; nothing parses it back.
func Compile(fs *FilterSet) string {
	if fs == nil || fs.Empty() {
		return "*"
	}
	sb := internal.GetBuilder()
	defer internal.PutBuilder(sb)
	compileSet(sb, fs)
	return sb.String()
}

// -------------------------------------------------------------------
// node writers
// -------------------------------------------------------------------

func compileSet(sb *strings.Builder, fs *FilterSet) {
	sep := " AND "
	switch fs.operator {
	case Or:
		sep = " OR "
	case Not:
		sb.WriteString("NOT ")
	}

	sb.WriteByte('(')
	n := 0
	for _, f := range fs.Filters() {
		if n > 0 {
			sb.WriteString(sep)
		}
		compileFilter(sb, f)
		n++
	}
	for _, c := range fs.children {
		if c.Empty() {
			continue
		}
		if n > 0 {
			sb.WriteString(sep)
		}
		compileSet(sb, c)
		n++
	}
	sb.WriteByte(')')
}

func compileFilter(sb *strings.Builder, f Filter) {
	sb.WriteString(f.property)
	sb.WriteByte(' ')
	sb.WriteString(string(f.comparison))
	for _, v := range f.values {
		sb.WriteString(" '")
		sb.WriteString(strings.ReplaceAll(v.String(), "'", `\'`))
		sb.WriteByte('\'')
	}
}
