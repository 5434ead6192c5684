package scan

import "fmt"

// EmptyContentError reports that no pixel in a scan pass exceeded the
// background threshold: the target renders to nothing visible. It is
// terminal for the given input and is never masked by returning a
// zero-area box.
type EmptyContentError struct {
	// Target is the scanned element id, or empty for a whole-content scan.
	Target string

	// Pass names the pass that found nothing: "coarse", "fine", or
	// "clipped" when content exists but lies entirely outside the
	// declared viewBox.
	Pass string
}

func (e *EmptyContentError) Error() string {
	target := "whole content"
	if e.Target != "" {
		target = fmt.Sprintf("target %q", e.Target)
	}
	return fmt.Sprintf("no content above background threshold (%s, %s pass)", target, e.Pass)
}
