package lexspec

import (
	"bytes"
	"fmt"

	"github.com/nihei9/lexergen/graph"
	"github.com/nihei9/lexergen/hir"
	"github.com/nihei9/lexergen/regexfrontend"
)

// CompileError reports why one entry's pattern failed to compile; it
// never aborts compilation of the rest of the set, so a caller can
// report every broken pattern in one pass.
type CompileError struct {
	Name     string
	Fragment bool
	Cause    error
	Detail   string
}

func (e *CompileError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%v: %v (%v)", e.Name, e.Cause, e.Detail)
	}
	return fmt.Sprintf("%v: %v", e.Name, e.Cause)
}

// Compile validates s, parses and fragment-resolves every pattern,
// lowers each to HIR, folds the results into a single graph.Graph, and
// runs MakeRoot and Shake on it, so the returned graph is ready for
// codegen.
func Compile(s *Spec) (*graph.Graph, []*CompileError, error) {
	if err := s.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid lexical specification: %w", err)
	}

	var fragEntries, patEntries []*Entry
	for _, e := range s.Entries {
		if e.Fragment {
			fragEntries = append(fragEntries, e)
		} else {
			patEntries = append(patEntries, e)
		}
	}

	fragDefs := map[string]regexfrontend.AST{}
	var cerrs []*CompileError

	for _, e := range fragEntries {
		t, cerr := parseEntry(e)
		if cerr != nil {
			cerrs = append(cerrs, cerr)
			continue
		}
		fragDefs[e.Name] = t
	}

	patASTs := make(map[*Entry]regexfrontend.AST, len(patEntries))
	patList := make([]regexfrontend.AST, 0, len(patEntries))
	for _, e := range patEntries {
		t, cerr := parseEntry(e)
		if cerr != nil {
			cerrs = append(cerrs, cerr)
			continue
		}
		patASTs[e] = t
		patList = append(patList, t)
	}
	if len(cerrs) > 0 {
		return nil, cerrs, fmt.Errorf("compile error")
	}

	fragTab := regexfrontend.NewFragmentTable(fragDefs)
	if err := fragTab.Resolve(patList); err != nil {
		return nil, nil, err
	}

	g := graph.New()
	for _, e := range patEntries {
		t := patASTs[e]
		h, err := hir.Lower(t)
		if err != nil {
			cerrs = append(cerrs, &CompileError{Name: e.Name, Cause: err})
			continue
		}
		term, err := entryToTerminal(e, h)
		if err != nil {
			cerrs = append(cerrs, &CompileError{Name: e.Name, Cause: err})
			continue
		}
		if err := g.PushTerminal(term); err != nil {
			cerrs = append(cerrs, &CompileError{Name: e.Name, Cause: err})
			continue
		}
	}
	if len(cerrs) > 0 {
		return nil, cerrs, fmt.Errorf("compile error")
	}

	if err := g.MakeRoot(); err != nil {
		return nil, nil, err
	}
	if err := g.Shake(); err != nil {
		return nil, nil, err
	}
	return g, nil, nil
}

func parseEntry(e *Entry) (regexfrontend.AST, *CompileError) {
	p := regexfrontend.NewParser(bytes.NewReader([]byte(e.Pattern)))
	t, err := p.Parse()
	if err != nil {
		detail, cause, _ := p.Error()
		if cause == nil {
			cause = err
		}
		return nil, &CompileError{Name: e.Name, Fragment: e.Fragment, Cause: cause, Detail: detail}
	}
	return t, nil
}

func entryToTerminal(e *Entry, h hir.HIR) (graph.Terminal, error) {
	kind := graph.Standalone
	callback := ""
	switch {
	case e.Skip:
		kind = graph.Skip
	case e.FillCallback != "":
		kind = graph.FillCallback
		callback = e.FillCallback
	case e.CreateCallback != "":
		kind = graph.CreateCallback
		callback = e.CreateCallback
	}
	// An entry that leaves Priority at its zero value hasn't set one;
	// fall back to the HIR's own derived priority.
	priority := e.Priority
	if priority == 0 {
		priority = h.Priority()
	}
	return graph.Terminal{
		Name:     e.Name,
		Kind:     kind,
		Callback: callback,
		HIR:      h,
		Priority: priority,
	}, nil
}
