// Package collection assembles a collection from its source document.
//
// A Collection pairs the metadata record extracted from the collection
// document with the list of files that belong to it: the document itself
// (unless the caller opts out of retaining it) and, when loaded from a
// directory, every resource next to it.
//
//	registry := licenses.NewRegistry(licenses.DefaultSource())
//	opts := collection.DefaultOptions()
//	opts.Registry = registry
//	coll, err := collection.FromBuffer(ctx, r, opts)
package collection
