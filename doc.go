// Command-line access lives in cmd/detect; this file only documents the
// module layout for godoc.
//
// go.viam.com/shapedetect finds geometric primitives in oriented point
// clouds. The public surface is this package's Detect function plus the
// shapes package's Kind registry; everything under internal/ and the
// pointset, octree, subsetladder, candidate, and components packages is
// the machinery Detect composes.
package shapedetect
