package snapshot

import "time"

// SnapshotterBuilderOption is a functional option used to configure a Snapshotter during construction.
type SnapshotterBuilderOption func(*snapshotter)

// WithDir sets the output directory. It is created on the first capture.
//
// Parameters:
//   - dir: the output directory
//
// Returns:
//   - SnapshotterBuilderOption: a function that sets the directory
func WithDir(dir string) SnapshotterBuilderOption {
	return func(s *snapshotter) {
		if dir != "" {
			s.dir = dir
		}
	}
}

// WithFormat sets the output encoding, FormatWebP or FormatPNG.
//
// Parameters:
//   - format: the encoding name
//
// Returns:
//   - SnapshotterBuilderOption: a function that sets the format
func WithFormat(format string) SnapshotterBuilderOption {
	return func(s *snapshotter) {
		s.format = format
	}
}

// WithScale sets the integer upscale factor. Values below 1 are treated as 1.
//
// Parameters:
//   - scale: the upscale factor
//
// Returns:
//   - SnapshotterBuilderOption: a function that sets the scale
func WithScale(scale int) SnapshotterBuilderOption {
	return func(s *snapshotter) {
		s.scale = max(scale, 1)
	}
}

// WithAlpha keeps the traced alpha channel instead of writing opaque pixels.
//
// Returns:
//   - SnapshotterBuilderOption: a function that preserves alpha
func WithAlpha() SnapshotterBuilderOption {
	return func(s *snapshotter) {
		s.opaque = false
	}
}

// WithClock overrides the time source used to name files.
//
// Parameters:
//   - now: the time source
//
// Returns:
//   - SnapshotterBuilderOption: a function that sets the clock
func WithClock(now func() time.Time) SnapshotterBuilderOption {
	return func(s *snapshotter) {
		if now != nil {
			s.now = now
		}
	}
}
