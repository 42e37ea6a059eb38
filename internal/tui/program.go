package tui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/ensigniasec/popover/internal/config"
	"github.com/ensigniasec/popover/internal/schedule"
)

// Run starts the Bubble Tea demo. Deferred popover work is queued and replayed
// on the update loop, so every state change happens on one goroutine.
func Run(ctx context.Context, cfg config.Config) error {
	queue := schedule.NewQueue(channelBufferSize)
	defer queue.Close()

	model := NewModel(cfg, WithQueue(queue))
	defer model.Stop()

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	// Silence external logs (WARN/ERRO) during TUI to avoid corrupting the view.
	prevOut := logrus.StandardLogger().Out
	logrus.SetOutput(io.Discard)
	defer logrus.SetOutput(prevOut)

	_, err := p.Run()
	return err
}
