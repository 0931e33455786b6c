// Package frame carries the per-frame context handed to representation
// update hooks and collects the draw commands they produce.
package frame

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// State is the context of one rendered frame. The core passes it through to
// representations unchanged.
type State struct {
	Number   uint64
	Time     time.Time
	Camera   mgl64.Vec3
	Commands *CommandList
}

// NewState returns a frame state with an empty command list.
func NewState(number uint64, t time.Time, camera mgl64.Vec3) *State {
	return &State{
		Number:   number,
		Time:     t,
		Camera:   camera,
		Commands: &CommandList{},
	}
}

// Command is one draw submission for the host renderer.
type Command struct {
	Owner       string
	Kind        string
	Asset       string
	ModelMatrix mgl64.Mat4
}

// CommandList accumulates draw commands for a frame.
type CommandList struct {
	commands []Command
}

func (l *CommandList) Push(c Command) {
	l.commands = append(l.commands, c)
}

func (l *CommandList) Len() int {
	return len(l.commands)
}

// Commands returns the recorded commands in submission order.
func (l *CommandList) Commands() []Command {
	out := make([]Command, len(l.commands))
	copy(out, l.commands)
	return out
}

func (l *CommandList) Reset() {
	l.commands = l.commands[:0]
}
