package gui

import (
	"fmt"
	"image"
)

// Event is delivered to an object's EventHandler.
type Event int

const (
	EventPressed Event = iota
	EventPressing
	EventPressLost
	EventReleased
	EventClicked
)

func (e Event) String() string {
	switch e {
	case EventPressed:
		return "pressed"
	case EventPressing:
		return "pressing"
	case EventPressLost:
		return "press_lost"
	case EventReleased:
		return "released"
	case EventClicked:
		return "clicked"
	default:
		return fmt.Sprintf("Event(%d)", int(e))
	}
}

// EventHandler is invoked synchronously from TaskHandler (or SendEvent)
// while the caller's GUI lock is held. It must not block and must not call
// TaskHandler.
type EventHandler func(obj *Obj, e Event)

// SendEvent delivers e to obj's handler, if any.
func (l *Lib) SendEvent(obj *Obj, e Event) {
	l.stats.events.Add(1)
	if obj.handler != nil {
		obj.handler(obj, e)
	}
}

// InputState is the state of a pointer.
type InputState int

const (
	InputReleased InputState = iota
	InputPressed
)

// InputData is filled by an InputReadFunc.
type InputData struct {
	Point image.Point
	State InputState
}

// InputReadFunc reads the pointer state into data. Returning true asks for
// another read in the same poll (buffered samples).
type InputReadFunc func(data *InputData) (more bool)

// InputDriver describes a pointer input device.
type InputDriver struct {
	Read InputReadFunc
}

// InputDevice is a registered pointer.
type InputDevice struct {
	lib      *Lib
	drv      InputDriver
	lastRead uint32
	last     InputData
	pressed  *Obj
}

// RegisterInput adds a pointer input device polled by TaskHandler.
func (l *Lib) RegisterInput(drv InputDriver) *InputDevice {
	in := &InputDevice{lib: l, drv: drv, lastRead: l.TickGet()}
	l.inputs = append(l.inputs, in)
	return in
}

// maxReadsPerPoll bounds buffered reads so a misbehaving driver cannot
// stall the task handler.
const maxReadsPerPoll = 16

func (in *InputDevice) poll() {
	for i := 0; i < maxReadsPerPoll; i++ {
		var data InputData
		more := in.drv.Read(&data)
		in.process(data)
		if !more {
			return
		}
	}
}

func (in *InputDevice) process(data InputData) {
	l := in.lib
	defer func() { in.last = data }()

	if data.State == InputPressed {
		if in.pressed == nil {
			if in.last.State == InputPressed {
				// Still held after a press was lost; wait for release.
				return
			}
			if l.active == nil {
				return
			}
			if target := l.active.hit(data.Point); target != nil {
				in.pressed = target
				l.SendEvent(target, EventPressed)
			}
			return
		}
		if data.Point.In(in.pressed.visibleArea()) {
			l.SendEvent(in.pressed, EventPressing)
			return
		}
		lost := in.pressed
		in.pressed = nil
		l.SendEvent(lost, EventPressLost)
		return
	}

	if in.pressed == nil {
		return
	}
	target := in.pressed
	in.pressed = nil
	l.SendEvent(target, EventReleased)
	if data.Point.In(target.visibleArea()) {
		l.SendEvent(target, EventClicked)
	}
}
