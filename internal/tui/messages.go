package tui

// Message types for Bubble Tea update loop.

// taskMsg carries a scheduled task that must run on the update loop.
type taskMsg struct{ run func() }
