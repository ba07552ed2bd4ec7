// Package gesture turns smoothed motion samples into directional wave gestures.
package gesture

import (
	"encoding/json"
	"fmt"
	"time"
)

// Direction is the direction of a detected hand wave.
type Direction int

const (
	// Left is a horizontal wave towards the user's left (mirrored view).
	Left Direction = iota + 1
	// Right is a horizontal wave towards the user's right (mirrored view).
	Right
	// Up is a short upward wave.
	Up
	// Down is a short downward wave.
	Down
	// LongUp is an upward wave whose displacement exceeds the long threshold.
	LongUp
	// LongDown is a downward wave whose displacement exceeds the long threshold.
	LongDown
)

var directionNames = map[Direction]string{
	Left:     "Left",
	Right:    "Right",
	Up:       "Up",
	Down:     "Down",
	LongUp:   "Long up",
	LongDown: "Long down",
}

// String returns the display name of the direction.
func (d Direction) String() string {
	if name, ok := directionNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// ParseDirection parses a direction name as produced by String.
// Matching is exact except that "long_up" style keys are also accepted.
func ParseDirection(s string) (Direction, error) {
	for d, name := range directionNames {
		if s == name {
			return d, nil
		}
	}
	switch s {
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	case "long_up":
		return LongUp, nil
	case "long_down":
		return LongDown, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// Event is a single detected gesture.
type Event struct {
	Direction Direction
	Magnitude int // changed pixel count of the sample that completed the gesture
}

// eventJSON keeps the flag fields page code has always switched on.
type eventJSON struct {
	Direction string `json:"direction"`
	Magnitude int    `json:"magnitude"`
	Up        bool   `json:"up"`
	Down      bool   `json:"down"`
	Left      bool   `json:"left"`
	Right     bool   `json:"right"`
}

// MarshalJSON encodes the event with its direction name and boolean flags.
func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(eventJSON{
		Direction: e.Direction.String(),
		Magnitude: e.Magnitude,
		Up:        e.Direction == Up || e.Direction == LongUp,
		Down:      e.Direction == Down || e.Direction == LongDown,
		Left:      e.Direction == Left,
		Right:     e.Direction == Right,
	})
}

// UnmarshalJSON decodes an event encoded by MarshalJSON.
func (e *Event) UnmarshalJSON(data []byte) error {
	var raw eventJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d, err := ParseDirection(raw.Direction)
	if err != nil {
		return err
	}
	e.Direction = d
	e.Magnitude = raw.Magnitude
	return nil
}

// Notification is what a Sink receives. Exactly one of Gesture and Error is set.
type Notification struct {
	Gesture *Event        `json:"gesture,omitempty"`
	Error   *ErrorPayload `json:"error,omitempty"`
	Session string        `json:"session,omitempty"`
	Time    time.Time     `json:"time"`
}

// IsError reports whether the notification carries an error.
func (n Notification) IsError() bool {
	return n.Error != nil
}

// Sink receives gesture and error notifications.
type Sink interface {
	Notify(n Notification)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(n Notification)

// Notify calls f(n).
func (f SinkFunc) Notify(n Notification) {
	f(n)
}

// MultiSink fans a notification out to every sink in order.
type MultiSink []Sink

// Notify forwards n to every non-nil sink.
func (m MultiSink) Notify(n Notification) {
	for _, s := range m {
		if s != nil {
			s.Notify(n)
		}
	}
}
