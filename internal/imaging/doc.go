// Package imaging provides the raster helpers shared by the text rendering
// pipeline.
//
// It covers loading and caching background source images, resolving text
// colors, encoding finished canvases, measuring mean intensities for the
// contrast gate, and drawing box outlines onto canvases. Heavy lifting
// (resampling, blurring, compositing, encoding) is delegated to
// github.com/disintegration/imaging; this package only adapts it to the
// pipeline's types.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For rectangles, Min is inclusive and Max is exclusive (image.Rectangle)
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Every other function is
// stateless; randomness is always taken from a caller-supplied *rand.Rand so
// that parallel renders never share a generator.
//
// # Color Representation
//
// Colors are handled as color.NRGBA (non-premultiplied) because glyph fills
// carry a randomized alpha that must be applied exactly once, at compositing
// time.
package imaging
