// Package hclcodec reads HCL content files into tree nodes. Attributes become
// object members in source order; blocks become nested objects keyed by type
// and then by each label. Repeated unlabeled blocks collect into an array.
package hclcodec

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vellum-engine/vellum/runtime/codec/tree"
)

// Decode parses an HCL document. filename is used in diagnostics only.
func Decode(src []byte, filename string) (*tree.Node, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, diags
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("%s: unsupported body type %T", filename, file.Body)
	}
	return bodyToNode(body)
}

// NewReader decodes src and returns a reader over it.
func NewReader(src []byte, filename string) (*tree.Reader, error) {
	n, err := Decode(src, filename)
	if err != nil {
		return nil, err
	}
	return tree.NewReader(n), nil
}

func bodyToNode(body *hclsyntax.Body) (*tree.Node, error) {
	attrs := make([]*hclsyntax.Attribute, 0, len(body.Attributes))
	for _, a := range body.Attributes {
		attrs = append(attrs, a)
	}
	sort.Slice(attrs, func(i, j int) bool {
		return attrs[i].SrcRange.Start.Byte < attrs[j].SrcRange.Start.Byte
	})

	obj := tree.NewObject()
	for _, a := range attrs {
		v, diags := a.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, diags
		}
		n, err := ctyToNode(v)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", a.Name, err)
		}
		obj.Set(a.Name, n)
	}

	for _, b := range body.Blocks {
		content, err := bodyToNode(b.Body)
		if err != nil {
			return nil, fmt.Errorf("block %q: %w", b.Type, err)
		}
		insertBlock(obj, b.Type, b.Labels, content)
	}
	return obj, nil
}

func insertBlock(obj *tree.Node, key string, labels []string, content *tree.Node) {
	if len(labels) == 0 {
		existing, ok := obj.Get(key)
		switch {
		case !ok:
			obj.Set(key, content)
		case existing.Kind == tree.Array:
			existing.Append(content)
		default:
			obj.Set(key, tree.NewArray(existing, content))
		}
		return
	}

	child, ok := obj.Get(key)
	if !ok || child.Kind != tree.Object {
		child = tree.NewObject()
		obj.Set(key, child)
	}
	insertBlock(child, labels[0], labels[1:], content)
}

func ctyToNode(v cty.Value) (*tree.Node, error) {
	if v.IsNull() {
		return tree.NullValue(), nil
	}
	if !v.IsKnown() {
		return nil, fmt.Errorf("value is not known")
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return tree.StringValue(v.AsString()), nil
	case ty == cty.Bool:
		var b bool
		if err := gocty.FromCtyValue(v, &b); err != nil {
			return nil, err
		}
		return tree.BoolValue(b), nil
	case ty == cty.Number:
		return numberToNode(v)
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		arr := tree.NewArray()
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			n, err := ctyToNode(ev)
			if err != nil {
				return nil, err
			}
			arr.Append(n)
		}
		return arr, nil
	case ty.IsObjectType() || ty.IsMapType():
		obj := tree.NewObject()
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			n, err := ctyToNode(ev)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k.AsString(), err)
			}
			obj.Set(k.AsString(), n)
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported type %s", ty.FriendlyName())
	}
}

func numberToNode(v cty.Value) (*tree.Node, error) {
	bf := v.AsBigFloat()
	if bf.IsInt() {
		if i, acc := bf.Int64(); acc == big.Exact {
			return tree.IntValue(i), nil
		}
		if u, acc := bf.Uint64(); acc == big.Exact {
			return tree.UintValue(u), nil
		}
	}
	var f float64
	if err := gocty.FromCtyValue(v, &f); err != nil {
		return nil, err
	}
	return tree.FloatValue(f), nil
}
