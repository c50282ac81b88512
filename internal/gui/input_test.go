package gui

import (
	"image"
	"reflect"
	"testing"
)

// scriptedPointer replays one sample per read.
type scriptedPointer struct {
	samples []InputData
	i       int
}

func (p *scriptedPointer) read(data *InputData) bool {
	if p.i < len(p.samples) {
		*data = p.samples[p.i]
		p.i++
		return false
	}
	if len(p.samples) > 0 {
		data.Point = p.samples[len(p.samples)-1].Point
	}
	return false
}

func press(x, y int) InputData   { return InputData{Point: image.Pt(x, y), State: InputPressed} }
func release(x, y int) InputData { return InputData{Point: image.Pt(x, y), State: InputReleased} }

func TestInput_EventSequences(t *testing.T) {
	tests := map[string]struct {
		samples []InputData
		want    []Event
	}{
		"click inside button": {
			samples: []InputData{press(50, 160), press(52, 161), release(52, 161)},
			want:    []Event{EventPressed, EventPressing, EventReleased, EventClicked},
		},
		"release outside after leaving": {
			samples: []InputData{press(50, 160), press(5, 5), release(5, 5)},
			want:    []Event{EventPressed, EventPressLost},
		},
		"press on non-clickable label hits button": {
			samples: []InputData{press(120, 165), release(120, 165)},
			want:    []Event{EventPressed, EventReleased, EventClicked},
		},
		"press outside button": {
			samples: []InputData{press(5, 5), release(5, 5)},
			want:    nil,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			lib, _ := newTestLib(t, true)
			scr := lib.NewObj(nil)
			btn := lib.NewButton(scr)
			btn.SetSize(200, 40)
			btn.Align(scr, AlignCenter, 0, 0)
			lbl := lib.NewLabel(btn)
			lbl.SetSize(84, 16)
			lbl.Align(btn, AlignCenter, 0, 0)
			lib.LoadScreen(scr)

			var got []Event
			btn.SetEventHandler(func(obj *Obj, e Event) {
				if obj != btn {
					t.Errorf("handler got obj %d, want button", obj.ID())
				}
				got = append(got, e)
			})

			ptr := &scriptedPointer{samples: tt.samples}
			lib.RegisterInput(InputDriver{Read: ptr.read})
			for range tt.samples {
				lib.TickInc(InputPeriod)
				lib.TaskHandler()
			}

			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("events = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInput_NotPolledBeforePeriod(t *testing.T) {
	lib, _ := newTestLib(t, true)
	scr := lib.NewObj(nil)
	lib.LoadScreen(scr)

	reads := 0
	lib.RegisterInput(InputDriver{Read: func(*InputData) bool {
		reads++
		return false
	}})
	lib.TickInc(InputPeriod - 1)
	lib.TaskHandler()
	if reads != 0 {
		t.Errorf("reads = %d before the input period", reads)
	}
	lib.TickInc(1)
	lib.TaskHandler()
	if reads != 1 {
		t.Errorf("reads = %d, want 1", reads)
	}
}

func TestInput_BufferedReadsAreBounded(t *testing.T) {
	lib, _ := newTestLib(t, true)
	lib.LoadScreen(lib.NewObj(nil))

	reads := 0
	lib.RegisterInput(InputDriver{Read: func(*InputData) bool {
		reads++
		return true
	}})
	lib.TickInc(InputPeriod)
	lib.TaskHandler()
	if reads != maxReadsPerPoll {
		t.Errorf("reads = %d, want %d", reads, maxReadsPerPoll)
	}
}
