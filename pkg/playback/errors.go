package playback

import "errors"

// ErrUnmounted is returned by a handle whose underlying resource has been
// torn down. The coordinator treats it as a no-op.
var ErrUnmounted = errors.New("player handle unmounted")
