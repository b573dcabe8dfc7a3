package window

// WindowBuilderOption configures an engineWindow before the platform window is created.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the title bar text.
//
// Parameters:
//   - title: the window title
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = title
	}
}

// WithSize sets the size the window opens at.
//
// Parameters:
//   - width: client area width in pixels
//   - height: client area height in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.width, w.height = width, height
	}
}

// WithMinSize sets the smallest size the user can drag the window to.
// Values below one pixel are raised to one.
//
// Parameters:
//   - width: minimum client area width in pixels
//   - height: minimum client area height in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithMinSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.minWidth, w.minHeight = max(width, 1), max(height, 1)
	}
}

// WithMaxSize sets the largest size the user can drag the window to.
//
// Parameters:
//   - width: maximum client area width in pixels
//   - height: maximum client area height in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithMaxSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.maxWidth, w.maxHeight = width, height
	}
}

// applyOptions applies options over the defaults and reconciles the size limits so that
// min <= size <= max holds on both axes.
func (w *engineWindow) applyOptions(options ...WindowBuilderOption) {
	for _, opt := range options {
		opt(w)
	}
	w.maxWidth = max(w.maxWidth, w.minWidth)
	w.maxHeight = max(w.maxHeight, w.minHeight)
	w.width = min(max(w.width, w.minWidth), w.maxWidth)
	w.height = min(max(w.height, w.minHeight), w.maxHeight)
}
