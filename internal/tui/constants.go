package tui

// Package-level constants to avoid magic numbers and improve readability.
const (
	channelBufferSize = 256

	// screenMargin keeps triggers off the terminal edges.
	screenMargin = 2
	// headerLines is the title plus a spacer above the trigger area.
	headerLines = 2
	// footerLines is the status line plus the help line.
	footerLines = 2

	// initialContentLines is the number of body lines a fresh panel shows.
	initialContentLines = 3
	// maxContentLines caps how tall the grow key can make a panel.
	maxContentLines = 40
)

// Colors shared by the views.
const (
	colorAccent = "69"
	colorMuted  = "241"
	colorOpen   = "46"
	colorWarn   = "208"
)
