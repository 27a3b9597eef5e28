// Package buildutil extracts attributes from buildtools call expressions.
//
// Workspace descriptors are written as Starlark calls such as
//
//	pcd_usage(cname = "PcdDebugPropertyMask", item_type = "FIXED_AT_BUILD")
//
// and these helpers read the keyword arguments of a single call.
package buildutil

import (
	"fmt"
	"strconv"

	"github.com/bazelbuild/buildtools/build"
)

// attr returns the right hand side of the keyword argument name, or nil.
func attr(call *build.CallExpr, name string) build.Expr {
	for _, arg := range call.List {
		assign, ok := arg.(*build.AssignExpr)
		if !ok {
			continue
		}
		lhs, ok := assign.LHS.(*build.Ident)
		if !ok || lhs.Name != name {
			continue
		}
		return assign.RHS
	}
	return nil
}

// Has reports whether the call sets the keyword argument name.
func Has(call *build.CallExpr, name string) bool {
	return attr(call, name) != nil
}

// String extracts a string attribute by name.
// Returns empty string if the attribute is not found or not a string.
func String(call *build.CallExpr, name string) string {
	if str, ok := attr(call, name).(*build.StringExpr); ok {
		return str.Value
	}
	return ""
}

// Int64 extracts an integer attribute by name. Hex (0x), octal (0o) and
// binary (0b) literals are accepted. A missing attribute yields 0 and no
// error.
func Int64(call *build.CallExpr, name string) (int64, error) {
	rhs := attr(call, name)
	if rhs == nil {
		return 0, nil
	}
	lit, ok := rhs.(*build.LiteralExpr)
	if !ok {
		return 0, fmt.Errorf("attribute %s: expected integer literal", name)
	}
	val, err := strconv.ParseInt(lit.Token, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("attribute %s: %w", name, err)
	}
	return val, nil
}

// Bool extracts a boolean attribute by name.
// Returns false if the attribute is not found or not True.
func Bool(call *build.CallExpr, name string) bool {
	if ident, ok := attr(call, name).(*build.Ident); ok {
		return ident.Name == "True"
	}
	return false
}

// StringList extracts a list of strings attribute by name.
// Returns nil if the attribute is not found or not a list.
// Non-string elements in the list are silently skipped.
func StringList(call *build.CallExpr, name string) []string {
	list, ok := attr(call, name).(*build.ListExpr)
	if !ok {
		return nil
	}
	result := make([]string, 0, len(list.List))
	for _, elem := range list.List {
		if str, ok := elem.(*build.StringExpr); ok {
			result = append(result, str.Value)
		}
	}
	return result
}

// FuncName returns the function name from a CallExpr.
// Returns empty string if the call is not a simple function call
// (e.g., method calls like foo.bar()).
func FuncName(call *build.CallExpr) string {
	if ident, ok := call.X.(*build.Ident); ok {
		return ident.Name
	}
	return ""
}
