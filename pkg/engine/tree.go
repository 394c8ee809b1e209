package engine

import (
	"go/ast"
	"go/token"
)

// SourceTree pairs a parsed Go source file with the fileset that owns its
// positions. The engine consumes trees, it never builds them.
type SourceTree struct {
	Fset *token.FileSet
	File *ast.File
}

func (t *SourceTree) valid() bool {
	return t != nil && t.Fset != nil && t.File != nil
}

func (t *SourceTree) position(pos token.Pos) token.Position {
	return t.Fset.Position(pos)
}
