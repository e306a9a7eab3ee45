// Package roomconfig holds the editable state of a room's configuration: the
// loaded server copy, the viewer's draft, and the confirm-then-commit flow that
// persists it.
package roomconfig

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"smartoffice-console/models"
)

// Field names an editable property. Mode and Target apply to a channel; the
// schedule fields ignore the channel argument.
type Field string

const (
	FieldMode        Field = "mode"
	FieldTarget      Field = "target"
	FieldAutoOnTime  Field = "autoOnTime"
	FieldAutoOffTime Field = "autoOffTime"
	FieldAutoControl Field = "autoControl"
)

// Range is the inclusive range of a channel target.
type Range struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Unit string  `json:"unit"`
}

var Ranges = map[models.Channel]Range{
	models.ChannelTemperature: {Min: 10, Max: 35, Unit: "°C"},
	models.ChannelHumidity:    {Min: 0, Max: 100, Unit: "%"},
	models.ChannelLight:       {Min: 0, Max: 2000, Unit: "lux"},
}

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// ValidationError rejects a staged edit.
type ValidationError struct {
	Channel models.Channel `json:"channel,omitempty"`
	Field   Field          `json:"field"`
	Message string         `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Channel != "" {
		return fmt.Sprintf("%s.%s: %s", e.Channel, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// StageEdit returns draft with one field replaced. It never mutates its input
// and leaves persisted state alone. A channel target is editable only while the
// channel is in auto mode, and the schedule only while auto control is ON;
// targets of manual or off channels are still carried in the draft.
func StageEdit(draft models.RoomConfiguration, channel models.Channel, field Field, value any) (models.RoomConfiguration, error) {
	invalid := func(format string, args ...any) (models.RoomConfiguration, error) {
		return draft, &ValidationError{Channel: channel, Field: field, Message: fmt.Sprintf(format, args...)}
	}

	switch field {
	case FieldMode, FieldTarget:
		r, ok := Ranges[channel]
		if !ok {
			return invalid("unknown channel")
		}
		cc := draft.Channel(channel)
		if field == FieldMode {
			s, ok := asString(value)
			if !ok || !models.Mode(s).Valid() {
				return invalid("must be one of auto, manual, off")
			}
			cc.Mode = models.Mode(s)
		} else {
			if cc.Mode != models.ModeAuto {
				return invalid("target is editable only in auto mode")
			}
			n, ok := asNumber(value)
			if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
				return invalid("must be a number")
			}
			if n < r.Min || n > r.Max {
				return invalid("must be between %g and %g %s", r.Min, r.Max, r.Unit)
			}
			cc.Target = n
		}
		return draft.WithChannel(channel, cc), nil

	case FieldAutoOnTime, FieldAutoOffTime:
		channel = ""
		if draft.AutoControl == models.AutoControlOff {
			return invalid("schedule is editable only while auto control is ON")
		}
		s, ok := asString(value)
		if !ok || !clockPattern.MatchString(s) {
			return invalid("must be a 24-hour HH:MM time")
		}
		if field == FieldAutoOnTime {
			draft.AutoOnTime = s
		} else {
			draft.AutoOffTime = s
		}
		return draft, nil

	case FieldAutoControl:
		channel = ""
		s, ok := asString(value)
		s = strings.ToUpper(s)
		if !ok || (s != models.AutoControlOn && s != models.AutoControlOff) {
			return invalid("must be ON or OFF")
		}
		draft.AutoControl = s
		return draft, nil
	}

	return invalid("unknown field")
}

func asString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s), true
	case models.Mode:
		return string(s), true
	}
	return "", false
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

// Change is one field that differs between two configurations.
type Change struct {
	Channel models.Channel `json:"channel,omitempty"`
	Field   Field          `json:"field"`
	Old     string         `json:"old"`
	New     string         `json:"new"`
}

func formatTarget(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Diff lists the fields of after that differ from before, channels first.
func Diff(before, after models.RoomConfiguration) []Change {
	var changes []Change
	for _, ch := range models.Channels {
		b, a := before.Channel(ch), after.Channel(ch)
		if b.Mode != a.Mode {
			changes = append(changes, Change{Channel: ch, Field: FieldMode, Old: string(b.Mode), New: string(a.Mode)})
		}
		if b.Target != a.Target {
			changes = append(changes, Change{Channel: ch, Field: FieldTarget, Old: formatTarget(b.Target), New: formatTarget(a.Target)})
		}
	}
	if before.AutoOnTime != after.AutoOnTime {
		changes = append(changes, Change{Field: FieldAutoOnTime, Old: before.AutoOnTime, New: after.AutoOnTime})
	}
	if before.AutoOffTime != after.AutoOffTime {
		changes = append(changes, Change{Field: FieldAutoOffTime, Old: before.AutoOffTime, New: after.AutoOffTime})
	}
	if before.AutoControl != after.AutoControl {
		changes = append(changes, Change{Field: FieldAutoControl, Old: before.AutoControl, New: after.AutoControl})
	}
	return changes
}

// BuildUpdate converts a draft into the full-replace payload. With
// sendNonAutoTargets false, targets of manual and off channels are withheld.
func BuildUpdate(draft models.RoomConfiguration, sendNonAutoTargets bool) models.RoomConfigUpdate {
	target := func(cc models.ChannelConfig) *float64 {
		if !sendNonAutoTargets && cc.Mode != models.ModeAuto {
			return nil
		}
		v := cc.Target
		return &v
	}
	return models.RoomConfigUpdate{
		TemperatureMode:   draft.Temperature.Mode,
		HumidityMode:      draft.Humidity.Mode,
		LightMode:         draft.Light.Mode,
		TargetTemperature: target(draft.Temperature),
		TargetHumidity:    target(draft.Humidity),
		TargetLight:       target(draft.Light),
		AutoOnTime:        draft.AutoOnTime,
		AutoOffTime:       draft.AutoOffTime,
		AutoControl:       draft.AutoControl,
	}
}
