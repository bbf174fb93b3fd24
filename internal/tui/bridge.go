package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/connermo/ai4s/internal/refresh"
)

// resultMsg carries one render callback from the refresh controller.
type resultMsg struct{ res refresh.Result }

// refreshErrorMsg carries one error callback from the refresh controller.
type refreshErrorMsg struct{ res refresh.Result }

func (resultMsg) subscription() {}
func (refreshErrorMsg) subscription() {}

// subscriptionMsg marks messages delivered by a Bridge.
type subscriptionMsg interface{ subscription() }

// Bridge hands controller callbacks, which run on controller goroutines,
// to the Bubble Tea event loop over a channel.
type Bridge struct {
	ch   chan tea.Msg
	done chan struct{}
	once sync.Once
}

// NewBridge returns a bridge with the given channel buffer.
func NewBridge(buffer int) *Bridge {
	if buffer < 0 {
		buffer = 0
	}
	return &Bridge{
		ch:   make(chan tea.Msg, buffer),
		done: make(chan struct{}),
	}
}

// Callbacks returns controller callbacks that feed the bridge.
func (b *Bridge) Callbacks() refresh.Callbacks {
	return refresh.Callbacks{
		Render: func(res refresh.Result) { b.send(resultMsg{res: res}) },
		Error:  func(res refresh.Result) { b.send(refreshErrorMsg{res: res}) },
	}
}

// Tee returns callbacks that feed the bridge and then call extra.
func (b *Bridge) Tee(extra func(refresh.Result)) refresh.Callbacks {
	cb := b.Callbacks()
	render := cb.Render
	cb.Render = func(res refresh.Result) {
		render(res)
		extra(res)
	}
	return cb
}

func (b *Bridge) send(msg tea.Msg) {
	select {
	case b.ch <- msg:
	case <-b.done:
	}
}

// Wait returns a command that blocks until the next message. It returns
// nil once the bridge is closed.
func (b *Bridge) Wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-b.ch:
			return msg
		case <-b.done:
			return nil
		}
	}
}

// Close unblocks pending sends and waits.
func (b *Bridge) Close() {
	b.once.Do(func() { close(b.done) })
}
