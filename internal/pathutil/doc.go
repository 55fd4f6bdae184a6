// Copyright 2024 Erraggy
// SPDX-License-Identifier: MIT

// Package pathutil provides efficient path building utilities for document
// traversal, and builders for local component references.
//
// The primary type is [PathBuilder], which uses push/pop semantics to build
// paths incrementally without allocating intermediate strings. This is
// particularly useful in recursive traversal where paths are built on each
// recursive call but only used when reporting errors or as visitor context.
//
// # PathBuilder Usage
//
// Use [Get] to obtain a pooled PathBuilder, and [Put] to return it:
//
//	path := pathutil.Get()
//	defer pathutil.Put(path)
//
//	path.Push("properties")
//	path.Push(propName)
//	// ... recurse ...
//	path.Pop()
//	path.Pop()
//
//	// Only call String() when needed (e.g., reporting an error)
//	if hasError {
//	    return fmt.Errorf("error at %s", path.String())
//	}
//
// Array indices are supported via [PathBuilder.PushIndex]:
//
//	path.Push("items")
//	path.PushIndex(0)  // produces "items[0]"
//
// # Reference Builders
//
// The package also provides functions for building local JSON Pointer
// references:
//
//	ref := pathutil.SchemaRef("Pet")   // "#/components/schemas/Pet"
//	ref := pathutil.ChannelRef("pets") // "#/channels/pets"
//
// # Output Path Sanitization
//
// [SanitizeOutputPath] validates and cleans output file paths for security.
// It resolves ".." components into a clean absolute path and rejects
// symlinks:
//
//	safe, err := pathutil.SanitizeOutputPath(userProvidedPath)
//	if err != nil {
//	    return err // symlink detected, or the path could not be resolved
//	}
package pathutil
