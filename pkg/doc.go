// Package pkg holds the pathgraph libraries.
//
// # Overview
//
// pathgraph turns a floor plan image, in which walkable paths are painted in
// a reserved color, into an undirected navigation graph. The packages are:
//
//  1. [raster] - palette matching and the immutable pixel grid
//  2. [extract] - node classification, path tracing and graph building
//  3. [graph] - the graph model and its JSON document form
//  4. [export] - XML, JSON and DOT writers
//  5. [source] - file naming convention and image decoding
//  6. [pipeline] - cached decode → extract → export runs
//  7. [cache], [config], [observability], [errors] - supporting layers
//
// # Architecture
//
//	<name>-<floor>-PATH.png
//	         ↓
//	    [source] (decode, parse name and floor)
//	         ↓
//	    [raster] (classify every pixel against the palette)
//	         ↓
//	    [extract] (nodes, traces, edges, data-quality report)
//	         ↓
//	    [export] (<name>-<floor>-map.xml / .json / .dot)
//
// # Quick Start
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	res, err := runner.ExecuteFile(ctx, "library-2-PATH.png", pipeline.Options{
//	    Name:    "library",
//	    Floor:   2,
//	    Formats: []string{export.FormatXML},
//	})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("library-2-map.xml", res.Artifacts[export.FormatXML], 0o644)
package pkg
