/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: paths.go
Description: Path addressing for descriptor trees. Object members join with a dot and array
elements carry a [] suffix, so "policy.items[].amount" names the amount of every item.
The root is the empty path.
*/

package shape

import (
	"sort"
	"strings"
)

const elemSuffix = "[]"

// JoinPath appends an object member to a path
func JoinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

// ElemPath returns the path of an array's elements
func ElemPath(path string) string {
	return path + elemSuffix
}

// FieldName returns the member name a path ends in, ignoring array suffixes
func FieldName(path string) string {
	for strings.HasSuffix(path, elemSuffix) {
		path = strings.TrimSuffix(path, elemSuffix)
	}
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[i+1:]
	}
	return path
}

// Walk visits every node with its path. anyOf nodes are visited once at their path
// and their variants' children are visited beneath the same path.
func (d *Descriptor) Walk(fn func(path string, node *Descriptor)) {
	if d == nil {
		return
	}
	fn("", d)
	d.walkChildren("", fn)
}

func (d *Descriptor) walkChildren(path string, fn func(string, *Descriptor)) {
	switch d.Kind {
	case KindObject:
		for _, name := range d.FieldNames() {
			child := d.Fields[name].Shape
			childPath := JoinPath(path, name)
			fn(childPath, child)
			child.walkChildren(childPath, fn)
		}
	case KindArray:
		if d.Elem != nil {
			elemPath := ElemPath(path)
			fn(elemPath, d.Elem)
			d.Elem.walkChildren(elemPath, fn)
		}
	case KindAnyOf:
		for _, v := range d.Variants {
			v.walkChildren(path, fn)
		}
	}
}

// Paths lists every path in the tree, sorted and without duplicates
func (d *Descriptor) Paths() []string {
	seen := make(map[string]struct{})
	d.Walk(func(path string, _ *Descriptor) {
		seen[path] = struct{}{}
	})
	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Lookup returns the node at path, or nil when the path does not exist
func (d *Descriptor) Lookup(path string) *Descriptor {
	var found *Descriptor
	d.Walk(func(p string, node *Descriptor) {
		if found == nil && p == path {
			found = node
		}
	})
	return found
}
