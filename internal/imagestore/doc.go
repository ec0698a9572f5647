// Package imagestore resolves annotated image identifiers to decoded
// screenshots.
//
// Identifiers are file names inside the configured images directory. PNG,
// JPEG and GIF decode through the standard library; BMP, TIFF and WebP through
// golang.org/x/image. Decoded frames are kept in a bounded LRU so a re-audit
// after a calibration commit does not decode the corpus again.
//
// This package is the single boundary where channel order is decided: frames
// report non-premultiplied RGB, swapping red and blue only when the corpus was
// captured as raw BGR buffers.
package imagestore
