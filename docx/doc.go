// Package docx converts WordprocessingML parts into the document tree of
// package model and back.
//
// Convert takes the parsed parts of a package and returns the main document
// tree together with headers, footers, comments, notes and diagnostics.
// Conversion is driven by translators: each XML element is offered to the
// candidate translators of its tag, and the first one that consumes it
// produces tree nodes. Elements no translator accepts are kept as passthrough
// nodes unless WithDropUnknown is set.
//
// The Exporter runs the translators in reverse. Properties that only come
// from styles are left out, so a converted document written back keeps the
// formatting it had.
//
//	res, err := docx.Convert(parts, rels, docx.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	for _, d := range res.Diagnostics {
//		fmt.Println(d)
//	}
package docx
