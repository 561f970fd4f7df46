// Package codegen turns a shaken graph.Graph into Go source: one
// mutually-recursive jump routine per node, plus a small Lex wrapper
// that drives them from cursor.Cursor until it produces a Token.
package codegen

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"github.com/nihei9/lexergen/graph"
	"github.com/nihei9/lexergen/lexerr"
)

var fileTmpl = template.Must(template.New("lexer").Parse(`// Code generated by lexergen. DO NOT EDIT.

package {{.Package}}

import (
	"github.com/nihei9/lexergen/cursor"
)

{{range .Routines}}
func jumpTo_{{.ID}}(c *cursor.Cursor, start cursor.Position) (cursor.Token, error) {
{{.Body}}}
{{end}}
// Lex scans a single token starting at the cursor's current position.
// Call it repeatedly until the returned Token's EOF field is true or an
// error is returned; a non-nil error terminates the iterator on that
// token, and the caller decides whether to restart past it.
func Lex(c *cursor.Cursor) (cursor.Token, error) {
	if c.AtEOF() {
		return c.EOFToken(), nil
	}
	start := c.Start()
	return jumpTo_{{.Root}}(c, start)
}
`))

type routineData struct {
	ID   int
	Body string
}

type fileData struct {
	Package  string
	Routines []routineData
	Root     int
}

// Generate renders the Go source implementing g's automaton. g must
// already have gone through MakeRoot and Shake.
func Generate(g *graph.Graph, packageName string) ([]byte, error) {
	nodes := g.Nodes()
	routines := make([]routineData, 0, len(nodes)-1)
	for id := 1; id < len(nodes); id++ {
		body, err := routineBody(g, graph.NodeId(id), nodes[id])
		if err != nil {
			return nil, err
		}
		routines = append(routines, routineData{ID: id, Body: body})
	}

	var b strings.Builder
	err := fileTmpl.Execute(&b, fileData{
		Package:  packageName,
		Routines: routines,
		Root:     int(g.Root()),
	})
	if err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

func routineBody(g *graph.Graph, id graph.NodeId, n graph.Node) (string, error) {
	switch v := n.(type) {
	case *graph.Leaf:
		return leafBody(g, v), nil
	case *graph.Seq:
		return seqBody(v), nil
	case *graph.Branch:
		return branchBody(v), nil
	}
	return "", lexerr.ErrShakingError
}

// bailFallback is spliced in wherever a node has no miss target: it asks
// the cursor for the longest accepted lexeme so far, and if there wasn't
// one, surfaces the cursor's own error (lexerr.ErrNotMatch or
// lexerr.ErrEmptyToken) alongside the Invalid token describing the
// offending span, instead of coercing it to a nil error.
const bailFallback = `	tok, err := c.Accept(start)
	if err == nil {
		return tok, nil
	}
	return c.Error(start), err
`

func leafBody(g *graph.Graph, v *graph.Leaf) string {
	t := g.Terminals()[v.EndsId]
	var b strings.Builder
	switch t.Kind {
	case graph.Skip:
		fmt.Fprintf(&b, "\tc.SetToken(%d, %q)\n", v.EndsId, t.Name)
		b.WriteString("\tc.Skip(start)\n")
		b.WriteString("\treturn Lex(c)\n")
	case graph.FillCallback:
		fmt.Fprintf(&b, "\tc.SetToken(%d, %q)\n", v.EndsId, t.Name)
		b.WriteString("\ttok, err := c.Accept(start)\n")
		b.WriteString("\tif err != nil {\n\t\treturn tok, err\n\t}\n")
		fmt.Fprintf(&b, "\ttok.Value = %s(tok.Lexeme)\n", t.Callback)
		b.WriteString("\treturn tok, nil\n")
	case graph.CreateCallback:
		fmt.Fprintf(&b, "\treturn %s(c, start)\n", t.Callback)
	default:
		fmt.Fprintf(&b, "\tc.SetToken(%d, %q)\n", v.EndsId, t.Name)
		b.WriteString("\treturn c.Accept(start)\n")
	}
	return b.String()
}

func missBody(miss graph.NodeId) string {
	if miss == graph.NilNode {
		return bailFallback
	}
	return fmt.Sprintf("\treturn jumpTo_%d(c, start)\n", int(miss))
}

func seqBody(v *graph.Seq) string {
	var b strings.Builder
	for i, r := range v.Run {
		fmt.Fprintf(&b, "\tif got, ok := c.Peek(); !ok || got != %s {\n", runeLit(r))
		switch v.MissKind {
		case graph.SeqMissAnytime:
			b.WriteString(indent(missBody(v.Miss), "\t"))
		case graph.SeqMissFirst:
			if i == 0 {
				b.WriteString(indent(missBody(v.Miss), "\t"))
			} else {
				b.WriteString(indent(bailFallback, "\t"))
			}
		default:
			b.WriteString(indent(bailFallback, "\t"))
		}
		b.WriteString("\t}\n\tc.Bump()\n")
	}
	fmt.Fprintf(&b, "\treturn jumpTo_%d(c, start)\n", int(v.Then))
	return b.String()
}

func branchBody(v *graph.Branch) string {
	entries := append([]graph.BranchEntry{}, v.Entries...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Range.Lo < entries[j].Range.Lo })

	var b strings.Builder
	b.WriteString("\tgot, ok := c.Peek()\n")
	b.WriteString("\tif !ok {\n")
	b.WriteString(indent(missBody(v.Miss), "\t"))
	b.WriteString("\t}\n\tswitch {\n")
	for _, e := range entries {
		if e.Range.Lo == e.Range.Hi {
			fmt.Fprintf(&b, "\tcase got == %s:\n", runeLit(e.Range.Lo))
		} else {
			fmt.Fprintf(&b, "\tcase got >= %s && got <= %s:\n", runeLit(e.Range.Lo), runeLit(e.Range.Hi))
		}
		fmt.Fprintf(&b, "\t\tc.Bump()\n\t\treturn jumpTo_%d(c, start)\n", int(e.Target))
	}
	b.WriteString("\tdefault:\n")
	b.WriteString(indent(missBody(v.Miss), "\t\t"))
	b.WriteString("\t}\n")
	return b.String()
}

func runeLit(r rune) string {
	return strconv.QuoteRune(r)
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n") + "\n"
}
