package pysrc

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"docstitch/internal/domain"
)

// Parse parses Python source text into a document Tree. Malformed input is
// unsupported: any syntax error fails the whole file with ErrParseFailure.
func Parse(ctx context.Context, src []byte, filename string) (*Tree, error) {
	root, done, err := parse(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrParseFailure, filename, err)
	}
	defer done()

	if root.HasError() {
		return nil, fmt.Errorf("%w: %s: source contains syntax errors", domain.ErrParseFailure, filename)
	}

	t := &Tree{src: src, filename: filename}
	t.buildModule(root)
	return t, nil
}

// Validate re-parses emitted source text with the same grammar as Parse.
// A non-nil error means the text must not be written anywhere.
func Validate(ctx context.Context, src []byte) error {
	root, done, err := parse(ctx, src)
	if err != nil {
		return err
	}
	defer done()

	if root.HasError() {
		return fmt.Errorf("emitted source contains syntax errors")
	}
	return nil
}

// parse runs tree-sitter over src. A fresh parser per call keeps concurrent
// file passes independent.
func parse(ctx context.Context, src []byte) (*sitter.Node, func(), error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, nil, err
	}

	root := tree.RootNode()
	if root == nil {
		tree.Close()
		return nil, nil, fmt.Errorf("parser returned no root node")
	}
	return root, func() { tree.Close() }, nil
}
