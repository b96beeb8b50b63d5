// Package imaging provides the source-image side of mask editing: a cache of
// decoded images and the edge detector used for magnetic-lasso snapping.
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward.
//
// # Edge Detection
//
// The detector converts pixels to luminance with ITU-R BT.601 weights and
// computes a Sobel gradient-magnitude map. FindNearestEdge samples a small
// window around a cursor position and returns the strongest edge within a
// radius, or the cursor position itself when nothing qualifies. It never
// fails, so callers can invoke it on every pointer move; rate limiting (one
// query per animation frame, say) is left to the caller.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. The edge functions are pure: they
// read their inputs, never modify them, and return freshly allocated
// results.
package imaging
