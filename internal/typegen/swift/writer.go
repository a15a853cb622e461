package swift

import (
	"fmt"
	"strings"
)

const indentUnit = "    "

// codeWriter accumulates indented Swift source.
type codeWriter struct {
	b      strings.Builder
	indent int
}

func (w *codeWriter) line(format string, args ...any) {
	if format == "" {
		w.b.WriteString("\n")
		return
	}
	w.b.WriteString(strings.Repeat(indentUnit, w.indent))
	if len(args) > 0 {
		format = fmt.Sprintf(format, args...)
	}
	w.b.WriteString(format)
	w.b.WriteString("\n")
}

func (w *codeWriter) blank() {
	w.line("")
}

func (w *codeWriter) open(format string, args ...any) {
	w.line(format+" {", args...)
	w.indent++
}

func (w *codeWriter) close() {
	w.indent--
	w.line("}")
}

// doc writes text as "///" comment lines.
func (w *codeWriter) doc(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimRight(l, " \t\r")
		if l == "" {
			w.line("///")
			continue
		}
		w.line("/// %s", l)
	}
}

// block writes pre-rendered source at the current indentation.
func (w *codeWriter) block(src string) {
	for _, l := range strings.Split(strings.TrimRight(src, "\n"), "\n") {
		if l == "" {
			w.blank()
			continue
		}
		w.b.WriteString(strings.Repeat(indentUnit, w.indent))
		w.b.WriteString(l)
		w.b.WriteString("\n")
	}
}

func (w *codeWriter) String() string {
	return w.b.String()
}

// literal renders s as a Swift string literal.
func literal(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`, "\t", `\t`)
	return `"` + r.Replace(s) + `"`
}
