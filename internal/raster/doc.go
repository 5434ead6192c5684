// Package raster defines the rendering boundary consumed by the scan
// engine, plus a software implementation of it.
//
// The engine never assumes a particular renderer: everything it needs is
// the Rasterizer interface, which turns a parsed document into an RGBA
// pixel buffer for a requested viewport and sampling density. The bundled
// software implementation draws with the gg 2D graphics library; a
// headless-browser or GPU-backed implementation would satisfy the same
// interface.
//
// # Contract
//
// Render must be deterministic for unchanged input, must honor transparent
// backgrounds (so background pixels are distinguishable by alpha rather
// than guessed color), and must respect the deadline carried by its
// context. Renderer failures are surfaced unmodified; this package never
// retries.
//
// # Sessions
//
// A rendering surface must not be driven by two scans at once. Session
// wraps a Rasterizer with exclusive ownership: concurrent Render calls on
// one Session serialize, and each concurrent scan is expected to own its
// own Session.
package raster
