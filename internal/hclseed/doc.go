// Package hclseed provides the HCL implementation of config.Loader. It reads
// seed diagrams written as `node` and `link` blocks:
//
//	node "start" {
//	  text  = "Begin"
//	  shape = shape.start
//	  x = 10, y = 10, width = 30, height = 30
//	}
//
//	link "start-to-check" {
//	  origin      = "start"
//	  destination = "check"
//	}
//
// The `shape` object exposes the palette shapes (start, input, process,
// decision, rectangle); any other string is accepted as well.
package hclseed
