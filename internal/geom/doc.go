// Package geom implements the rectangle and coordinate math used by the drag
// engine: rect operations, corners and centroids, scroll-aware rects, and
// inversion of 2-D/3-D affine transforms.
// Types are re-exported through the root dnd package for public consumption.
package geom
