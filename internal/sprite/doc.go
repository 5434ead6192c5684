// Package sprite handles multi-element scans: detecting sprite groups by
// identifier naming convention, scanning members concurrently, and
// aggregating per-member boxes into group envelopes.
//
// # Grouping Heuristic
//
// Sprite sheets conventionally name members with a common prefix and a
// trailing counter: icon-01, icon-02, or star1, star2. Groups strips
// trailing digits (and one trailing - or _ separator) from each id and
// groups ids that share the resulting nonempty prefix. Only prefixes with
// at least two members form a group; lone ids stay ungrouped.
//
// # Concurrency
//
// Members of a group are independent targets, so their scans run
// concurrently. Each scan owns its own rasterizer session (one engine per
// goroutine); no state is shared until the final union, which is a pure
// order-independent reduction over completed results.
package sprite
