package engine

import (
	"fmt"
	"go/ast"
	"go/token"
	"regexp"
	"strconv"
	"strings"
)

// candidate is a structural finding before exclusion and message rendering.
type candidate struct {
	line   int
	column int
	text   string
	vars   map[string]string
	doc    string // enclosing declaration doc, for attribute exclusion
}

func collectCandidates(m *structuralMatcher, tree *SourceTree) []candidate {
	switch m.kind {
	case kindCall:
		return findCalls(tree, m.names)
	case kindReturnNilOnly:
		return findReturnNilOnly(tree)
	case kindEmptyFunctionBody:
		return findEmptyFunctionBodies(tree)
	case kindPublicWithoutDocs:
		return findPublicWithoutDocs(tree)
	case kindCyclomaticComplexity:
		return findComplexFunctions(tree, m.threshold)
	case kindFunctionLines:
		return findLongFunctions(tree, m.threshold)
	case kindNestingDepth:
		return findDeepNesting(tree, m.threshold)
	case kindFunctionArgs:
		return findWideSignatures(tree, m.threshold)
	case kindUnsafeUsage:
		return findUnsafeUsage(tree)
	case kindGenericWithoutBounds:
		return findUnboundedGenerics(tree)
	case kindTestWithoutAssertion:
		return findTestsWithoutAssertions(tree)
	case kindSkippedTest:
		return findSkippedTests(tree)
	case kindImportPattern:
		return findImports(tree, m.importRe)
	default:
		return nil
	}
}

func newCandidate(tree *SourceTree, pos token.Pos, text string, vars map[string]string) candidate {
	p := tree.position(pos)
	return candidate{line: p.Line, column: p.Column, text: text, vars: vars}
}

// findCalls reports every call whose callee name is in the set. Method calls
// match on the selector name so `log.Panic` matches a `panic` entry only via
// its own name, not the receiver.
func findCalls(tree *SourceTree, names map[string]bool) []candidate {
	var found []candidate
	funcDocs := docRanges(tree)
	ast.Inspect(tree.File, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		name := calleeName(call)
		if name == "" || !names[name] {
			return true
		}
		c := newCandidate(tree, call.Pos(), name+"()", map[string]string{"name": name})
		c.doc = funcDocs.docFor(call.Pos())
		found = append(found, c)
		return true
	})
	return found
}

func calleeName(call *ast.CallExpr) string {
	switch fn := call.Fun.(type) {
	case *ast.Ident:
		return fn.Name
	case *ast.SelectorExpr:
		return fn.Sel.Name
	default:
		return ""
	}
}

// findReturnNilOnly flags error-returning functions whose entire body is a
// single `return nil`. A preceding statement, even a blank assignment, means
// the function did some work and is not flagged.
func findReturnNilOnly(tree *SourceTree) []candidate {
	var found []candidate
	ast.Inspect(tree.File, func(n ast.Node) bool {
		fn, ok := n.(*ast.FuncDecl)
		if !ok || fn.Body == nil || !returnsError(fn.Type) {
			return true
		}
		if len(fn.Body.List) != 1 {
			return true
		}
		ret, ok := fn.Body.List[0].(*ast.ReturnStmt)
		if !ok || len(ret.Results) == 0 || !allNil(ret.Results) {
			return true
		}
		c := newCandidate(tree, fn.Pos(), fn.Name.Name, map[string]string{"name": fn.Name.Name})
		c.doc = fn.Doc.Text()
		found = append(found, c)
		return true
	})
	return found
}

func returnsError(ft *ast.FuncType) bool {
	if ft.Results == nil || len(ft.Results.List) == 0 {
		return false
	}
	last := ft.Results.List[len(ft.Results.List)-1]
	ident, ok := last.Type.(*ast.Ident)
	return ok && ident.Name == "error"
}

func allNil(exprs []ast.Expr) bool {
	for _, expr := range exprs {
		ident, ok := expr.(*ast.Ident)
		if !ok || ident.Name != "nil" {
			return false
		}
	}
	return true
}

func findEmptyFunctionBodies(tree *SourceTree) []candidate {
	var found []candidate
	ast.Inspect(tree.File, func(n ast.Node) bool {
		fn, ok := n.(*ast.FuncDecl)
		if !ok || fn.Body == nil || len(fn.Body.List) > 0 {
			return true
		}
		c := newCandidate(tree, fn.Pos(), fn.Name.Name, map[string]string{"name": fn.Name.Name})
		c.doc = fn.Doc.Text()
		found = append(found, c)
		return true
	})
	return found
}

// findPublicWithoutDocs flags exported top-level declarations that carry no
// doc comment.
func findPublicWithoutDocs(tree *SourceTree) []candidate {
	var found []candidate
	flag := func(pos token.Pos, kind, name string) {
		found = append(found, newCandidate(tree, pos, name, map[string]string{
			"name": name,
			"kind": kind,
		}))
	}
	for _, decl := range tree.File.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if d.Name.IsExported() && d.Doc.Text() == "" {
				flag(d.Pos(), "function", d.Name.Name)
			}
		case *ast.GenDecl:
			for _, spec := range d.Specs {
				switch s := spec.(type) {
				case *ast.TypeSpec:
					if s.Name.IsExported() && d.Doc.Text() == "" && s.Doc.Text() == "" {
						flag(s.Pos(), "type", s.Name.Name)
					}
				case *ast.ValueSpec:
					if d.Doc.Text() != "" || s.Doc.Text() != "" {
						continue
					}
					for _, name := range s.Names {
						if name.IsExported() {
							flag(name.Pos(), declKind(d.Tok), name.Name)
						}
					}
				}
			}
		}
	}
	return found
}

func declKind(tok token.Token) string {
	if tok == token.CONST {
		return "constant"
	}
	return "variable"
}

// findComplexFunctions computes cyclomatic complexity per function: one plus
// every branch point (if, for, range, case, comm clause, && and ||).
func findComplexFunctions(tree *SourceTree, threshold int) []candidate {
	var found []candidate
	ast.Inspect(tree.File, func(n ast.Node) bool {
		fn, ok := n.(*ast.FuncDecl)
		if !ok || fn.Body == nil {
			return true
		}
		complexity := 1
		ast.Inspect(fn.Body, func(inner ast.Node) bool {
			switch node := inner.(type) {
			case *ast.IfStmt, *ast.ForStmt, *ast.RangeStmt, *ast.CaseClause, *ast.CommClause:
				complexity++
			case *ast.BinaryExpr:
				if node.Op == token.LAND || node.Op == token.LOR {
					complexity++
				}
			}
			return true
		})
		if complexity <= threshold {
			return true
		}
		c := newCandidate(tree, fn.Pos(), fn.Name.Name, map[string]string{
			"name":  fn.Name.Name,
			"value": strconv.Itoa(complexity),
		})
		c.doc = fn.Doc.Text()
		found = append(found, c)
		return true
	})
	return found
}

func findLongFunctions(tree *SourceTree, threshold int) []candidate {
	var found []candidate
	ast.Inspect(tree.File, func(n ast.Node) bool {
		fn, ok := n.(*ast.FuncDecl)
		if !ok || fn.Body == nil {
			return true
		}
		lines := tree.position(fn.Body.End()).Line - tree.position(fn.Body.Pos()).Line + 1
		if lines <= threshold {
			return true
		}
		c := newCandidate(tree, fn.Pos(), fn.Name.Name, map[string]string{
			"name":  fn.Name.Name,
			"lines": strconv.Itoa(lines),
			"value": strconv.Itoa(lines),
		})
		c.doc = fn.Doc.Text()
		found = append(found, c)
		return true
	})
	return found
}

// findDeepNesting reports each control construct nested deeper than the
// threshold, where the function body itself is depth zero.
func findDeepNesting(tree *SourceTree, threshold int) []candidate {
	var found []candidate
	ast.Inspect(tree.File, func(n ast.Node) bool {
		fn, ok := n.(*ast.FuncDecl)
		if !ok || fn.Body == nil {
			return true
		}
		doc := fn.Doc.Text()
		var walk func(node ast.Node, depth int)
		walk = func(node ast.Node, depth int) {
			ast.Inspect(node, func(inner ast.Node) bool {
				if inner == node {
					return true
				}
				switch inner.(type) {
				case *ast.IfStmt, *ast.ForStmt, *ast.RangeStmt,
					*ast.SwitchStmt, *ast.TypeSwitchStmt, *ast.SelectStmt:
					next := depth + 1
					if next > threshold {
						c := newCandidate(tree, inner.Pos(), fn.Name.Name, map[string]string{
							"name":  fn.Name.Name,
							"depth": strconv.Itoa(next),
							"value": strconv.Itoa(next),
						})
						c.doc = doc
						found = append(found, c)
					}
					walk(inner, next)
					return false
				}
				return true
			})
		}
		walk(fn.Body, 0)
		return true
	})
	return found
}

func findWideSignatures(tree *SourceTree, threshold int) []candidate {
	var found []candidate
	ast.Inspect(tree.File, func(n ast.Node) bool {
		fn, ok := n.(*ast.FuncDecl)
		if !ok {
			return true
		}
		args := 0
		for _, field := range fn.Type.Params.List {
			if len(field.Names) == 0 {
				args++
				continue
			}
			args += len(field.Names)
		}
		if args <= threshold {
			return true
		}
		c := newCandidate(tree, fn.Pos(), fn.Name.Name, map[string]string{
			"name":  fn.Name.Name,
			"count": strconv.Itoa(args),
			"value": strconv.Itoa(args),
		})
		c.doc = fn.Doc.Text()
		found = append(found, c)
		return true
	})
	return found
}

// findUnsafeUsage flags every reference into the unsafe package.
func findUnsafeUsage(tree *SourceTree) []candidate {
	var found []candidate
	funcDocs := docRanges(tree)
	ast.Inspect(tree.File, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		ident, ok := sel.X.(*ast.Ident)
		if !ok || ident.Name != "unsafe" {
			return true
		}
		text := fmt.Sprintf("unsafe.%s", sel.Sel.Name)
		c := newCandidate(tree, sel.Pos(), text, map[string]string{"name": text})
		c.doc = funcDocs.docFor(sel.Pos())
		found = append(found, c)
		return true
	})
	return found
}

// findUnboundedGenerics flags type parameters constrained only by `any` or an
// empty interface.
func findUnboundedGenerics(tree *SourceTree) []candidate {
	var found []candidate
	flagParams(tree, &found)
	return found
}

func flagParams(tree *SourceTree, found *[]candidate) {
	ast.Inspect(tree.File, func(n ast.Node) bool {
		var params *ast.FieldList
		var owner string
		var doc string
		switch d := n.(type) {
		case *ast.FuncDecl:
			params = d.Type.TypeParams
			owner = d.Name.Name
			doc = d.Doc.Text()
		case *ast.TypeSpec:
			params = d.TypeParams
			owner = d.Name.Name
			doc = d.Doc.Text()
		default:
			return true
		}
		if params == nil {
			return true
		}
		for _, field := range params.List {
			if !unboundedConstraint(field.Type) {
				continue
			}
			for _, name := range field.Names {
				c := newCandidate(tree, name.Pos(), name.Name, map[string]string{
					"name":  owner,
					"param": name.Name,
				})
				c.doc = doc
				*found = append(*found, c)
			}
		}
		return true
	})
}

func unboundedConstraint(expr ast.Expr) bool {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name == "any"
	case *ast.InterfaceType:
		return t.Methods == nil || len(t.Methods.List) == 0
	default:
		return false
	}
}

// findTestsWithoutAssertions flags Test functions whose body never fails or
// asserts through the testing.T surface or a testify helper.
func findTestsWithoutAssertions(tree *SourceTree) []candidate {
	var found []candidate
	for _, fn := range testFunctions(tree) {
		if hasAssertion(fn) {
			continue
		}
		// A deliberately skipped test is not an assertion problem.
		if _, skipped := skipCall(fn); skipped {
			continue
		}
		c := newCandidate(tree, fn.Pos(), fn.Name.Name, map[string]string{"name": fn.Name.Name})
		c.doc = fn.Doc.Text()
		found = append(found, c)
	}
	return found
}

func findSkippedTests(tree *SourceTree) []candidate {
	var found []candidate
	for _, fn := range testFunctions(tree) {
		pos, ok := skipCall(fn)
		if !ok {
			continue
		}
		c := newCandidate(tree, pos, fn.Name.Name, map[string]string{"name": fn.Name.Name})
		c.doc = fn.Doc.Text()
		found = append(found, c)
	}
	return found
}

func testFunctions(tree *SourceTree) []*ast.FuncDecl {
	var tests []*ast.FuncDecl
	for _, decl := range tree.File.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Recv != nil || fn.Body == nil {
			continue
		}
		if !strings.HasPrefix(fn.Name.Name, "Test") {
			continue
		}
		if fn.Type.Params == nil || len(fn.Type.Params.List) != 1 {
			continue
		}
		tests = append(tests, fn)
	}
	return tests
}

var assertionReceivers = map[string]bool{
	"assert":  true,
	"require": true,
}

var assertionMethods = map[string]bool{
	"Error": true, "Errorf": true,
	"Fatal": true, "Fatalf": true,
	"Fail": true, "FailNow": true,
}

func hasAssertion(fn *ast.FuncDecl) bool {
	asserted := false
	ast.Inspect(fn.Body, func(n ast.Node) bool {
		if asserted {
			return false
		}
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		sel, ok := call.Fun.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		if ident, ok := sel.X.(*ast.Ident); ok && assertionReceivers[ident.Name] {
			asserted = true
			return false
		}
		if assertionMethods[sel.Sel.Name] {
			asserted = true
			return false
		}
		return true
	})
	return asserted
}

func skipCall(fn *ast.FuncDecl) (token.Pos, bool) {
	var pos token.Pos
	found := false
	ast.Inspect(fn.Body, func(n ast.Node) bool {
		if found {
			return false
		}
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		sel, ok := call.Fun.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		switch sel.Sel.Name {
		case "Skip", "Skipf", "SkipNow":
			pos = call.Pos()
			found = true
			return false
		}
		return true
	})
	return pos, found
}

// findImports matches the pattern against both the bare import path and its
// textual form, so layering rules can be written either way.
func findImports(tree *SourceTree, re *regexp.Regexp) []candidate {
	var found []candidate
	for _, imp := range tree.File.Imports {
		path := strings.Trim(imp.Path.Value, `"`)
		text := "import " + imp.Path.Value
		if imp.Name != nil {
			text = "import " + imp.Name.Name + " " + imp.Path.Value
		}
		if !re.MatchString(path) && !re.MatchString(text) {
			continue
		}
		found = append(found, newCandidate(tree, imp.Pos(), text, map[string]string{
			"name": path,
			"path": path,
		}))
	}
	return found
}

// declDocs maps function body ranges to their doc comments so expression
// level matchers can honor declaration level allow directives.
type declDocs struct {
	ranges []docRange
}

type docRange struct {
	start, end token.Pos
	doc        string
}

func docRanges(tree *SourceTree) declDocs {
	var docs declDocs
	for _, decl := range tree.File.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Doc == nil {
			continue
		}
		docs.ranges = append(docs.ranges, docRange{
			start: fn.Pos(),
			end:   fn.End(),
			doc:   fn.Doc.Text(),
		})
	}
	return docs
}

func (d declDocs) docFor(pos token.Pos) string {
	for _, r := range d.ranges {
		if pos >= r.start && pos <= r.end {
			return r.doc
		}
	}
	return ""
}
