package gifts

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"gift-advisor/internal/domain"
	"gift-advisor/internal/usecase/lifecycle"
)

// App runs the gift advisor TUI against a lifecycle controller.
type App struct {
	controller *lifecycle.Controller
	members    MemberSource
	server     string
	target     domain.Target
	logger     *slog.Logger
	opts       []tea.ProgramOption
}

// NewApp creates the TUI. server is shown in the status bar.
func NewApp(controller *lifecycle.Controller, members MemberSource, server string, target domain.Target, logger *slog.Logger) *App {
	return &App{
		controller: controller,
		members:    members,
		server:     server,
		target:     target,
		logger:     logger,
		opts:       []tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion()},
	}
}

// Run blocks until the user quits or ctx is cancelled. The controller is
// disposed before Run returns, so no request outlives the view.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := NewModel(ModelDeps{
		Ctx:        ctx,
		Members:    a.members,
		Controller: a.controller,
		Server:     a.server,
		Target:     a.target,
		Logger:     a.logger,
	})
	program := tea.NewProgram(model, a.opts...)

	// Controller listeners run under its lock; the mailbox keeps them from
	// ever waiting on the UI.
	mb := newMailbox()
	unsubscribe := a.controller.Subscribe(mb.put)
	go mb.pump(ctx, func(s domain.UIState) {
		program.Send(StateMsg{State: s})
	})

	// Monitor context cancellation to quit the program.
	go func() {
		<-ctx.Done()
		program.Send(QuitMsg{})
	}()

	_, err := program.Run()

	unsubscribe()
	a.controller.Dispose()
	a.controller.Wait()
	return err
}
