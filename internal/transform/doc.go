// Package transform applies the geometric perturbations of the generator:
// skew rotation, periodic displacement, and the final orientation-dependent
// resize.
//
// Every operation takes a canvas and its instance mask together and returns
// both, resampled through the same geometry. Canvases are resampled smoothly
// by github.com/disintegration/imaging; masks are always sampled
// nearest-neighbor so no pixel carries an ID that was not rendered.
package transform
