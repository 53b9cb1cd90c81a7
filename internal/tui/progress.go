package tui

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Task is a unit of work reporting its stages through report.
type Task func(ctx context.Context, report func(stage string)) (summary string, err error)

type stageMsg string

type doneMsg struct {
	summary string
	err     error
}

// progressModel shows a spinner with the current stage until the task ends.
type progressModel struct {
	spinner spinner.Model
	stage   string
	done    bool
	summary string
	err     error
}

func newProgressModel(stage string) progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle
	return progressModel{spinner: s, stage: stage}
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stageMsg:
		m.stage = string(msg)
		return m, nil
	case doneMsg:
		m.done = true
		m.summary = msg.summary
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.done {
		if m.err != nil {
			return ErrorStyle.Render(SymbolCross+" "+m.stage) + "\n"
		}
		return SuccessStyle.Render(SymbolCheck+" "+m.summary) + "\n"
	}
	return m.spinner.View() + " " + m.stage + "\n"
}

// RunWithProgress runs task while showing its stages. In interactive mode
// a spinner is drawn on out; otherwise each stage is printed as a line.
// The task's error is returned unchanged.
func RunWithProgress(ctx context.Context, out io.Writer, interactive bool, first string, task Task) error {
	if !interactive {
		summary, err := task(ctx, func(stage string) {
			fmt.Fprintf(out, "%s %s...\n", SymbolSpinner, stage)
		})
		if err == nil && summary != "" {
			fmt.Fprintf(out, "%s %s\n", SymbolCheck, summary)
		}
		return err
	}

	p := tea.NewProgram(newProgressModel(first),
		tea.WithOutput(out),
		tea.WithInput(nil),
		tea.WithContext(ctx),
	)

	result := make(chan error, 1)
	go func() {
		summary, err := task(ctx, func(stage string) { p.Send(stageMsg(stage)) })
		p.Send(doneMsg{summary: summary, err: err})
		result <- err
	}()

	if _, err := p.Run(); err != nil {
		// The program stops early when ctx ends; the task sees the same ctx.
		taskErr := <-result
		if taskErr != nil {
			return taskErr
		}
		return err
	}
	return <-result
}
