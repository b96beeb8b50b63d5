// Package mask composites selection primitives into a binary mask for an
// image-editing service.
//
// # Pipeline
//
// BuildMask takes the primitives of a selection model, in insertion order,
// together with the geometry of the target layer:
//
//  1. A bitmap of the layer's original size is allocated, all excluded (0).
//  2. Each primitive is mapped from display space to image space.
//  3. Rectangles are inflated by 1% of their larger side, clamped to the
//     image and filled. Strokes are drawn with round caps and joins.
//  4. The result is the union of all primitives: nothing drawn later can
//     clear a pixel drawn earlier.
//
// Drawing goes through the Surface interface. VectorSurface implements it
// with golang.org/x/image/vector, which anti-aliases edges; set
// Options.Binary to threshold them away.
//
// # Errors
//
// ErrNoSelectionDrawn and ErrLayerGeometryMissing fail the whole build.
// ErrInvalidPrimitiveGeometry only ever appears in Mask.Skipped: the
// offending primitive is dropped and the rest of the mask is still built.
//
// # Concurrency
//
// BuildMask keeps no state between calls. To build off the interactive
// goroutine, pass it a selection.Model snapshot so later edits to the model
// cannot race with the build.
package mask
