package sysdash

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type tickMsg struct {
	seq uint64
}

type resultMsg FetchResult

type dashboardModel struct {
	ctx    context.Context
	ctrl   *Controller
	sched  *Scheduler
	host   string
	tabs   *TabSet
	width  int
	height int
	ready  bool
}

func NewDashboard(ctx context.Context, ctrl *Controller, sched *Scheduler, host string) dashboardModel {
	return dashboardModel{
		ctx:   ctx,
		ctrl:  ctrl,
		sched: sched,
		host:  host,
		tabs:  NewTabSet(),
	}
}

// fetchCmd runs the fetch off the event loop; the result comes back as a
// message so only Update touches dashboard state.
func (m dashboardModel) fetchCmd(seq uint64) tea.Cmd {
	return func() tea.Msg {
		return resultMsg(m.ctrl.Fetch(m.ctx, seq))
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return nil
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "[", "h", "left":
			m.tabs.PrevTab()
		case "]", "l", "right":
			m.tabs.NextTab()
		case "r":
			return m, m.fetchCmd(m.sched.Next())
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case tickMsg:
		return m, m.fetchCmd(msg.seq)

	case resultMsg:
		m.ctrl.Handle(FetchResult(msg))
	}

	return m, nil
}

func (m dashboardModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	return renderPage(m.ctrl.State(), m.tabs, m.host, m.width, m.height)
}

// Dashboard runs the terminal UI until the user quits or ctx is done.
// The scheduler feeds ticks into the program from its own goroutine.
func Dashboard(ctx context.Context, src DetectedSource, interval time.Duration, history int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ctrl := NewController(src.Data, NewDashboardState(history))
	sched := NewScheduler(interval)
	p := tea.NewProgram(NewDashboard(ctx, ctrl, sched, src.Name), tea.WithAltScreen(), tea.WithContext(ctx))

	go sched.Run(ctx, func(seq uint64) {
		p.Send(tickMsg{seq: seq})
	})

	return runProgram(ctx, p)
}

// runProgram treats a program stopped by ctx, e.g. on SIGTERM, as a clean exit
func runProgram(ctx context.Context, p *tea.Program) error {
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("running dashboard: %w", err)
	}
	return nil
}
