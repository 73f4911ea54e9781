package capture

import (
	"errors"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ErrInvalidSnapshot is returned when snapshot JSON cannot be decoded.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Snapshot is what a host renders after an event: the display, the
// committed value, the flags and the values emitted by that event.
type Snapshot struct {
	Display    []string
	Value      string
	InProgress bool
	Valid      bool
	Committed  bool
	Emitted    []string
}

// NewSnapshot captures s together with the values emitted since the
// previous snapshot.
func NewSnapshot(s State, emitted []string) Snapshot {
	return Snapshot{
		Display:    cloneKeys(s.Display),
		Value:      s.Value,
		InProgress: s.Status.InProgress,
		Valid:      s.Status.Valid,
		Committed:  s.Status.Committed,
		Emitted:    cloneKeys(emitted),
	}
}

// MarshalJSON encodes the snapshot as
//
//	{"display":[..],"value":"..","inProgress":b,"isValid":b,"committed":b,"emitted":[..]}
//
// Empty lists encode as [] rather than null.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	out := []byte(`{"display":[],"value":"","inProgress":false,"isValid":false,"committed":false,"emitted":[]}`)
	var err error
	set := func(path string, v any) {
		if err == nil {
			out, err = sjson.SetBytes(out, path, v)
		}
	}
	for _, k := range s.Display {
		set("display.-1", k)
	}
	set("value", s.Value)
	set("inProgress", s.InProgress)
	set("isValid", s.Valid)
	set("committed", s.Committed)
	for _, v := range s.Emitted {
		set("emitted.-1", v)
	}
	return out, err
}

// UnmarshalJSON decodes the format written by MarshalJSON.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return ErrInvalidSnapshot
	}
	res := gjson.ParseBytes(data)
	if !res.IsObject() {
		return ErrInvalidSnapshot
	}
	*s = Snapshot{
		Display:    stringArray(res.Get("display")),
		Value:      res.Get("value").String(),
		InProgress: res.Get("inProgress").Bool(),
		Valid:      res.Get("isValid").Bool(),
		Committed:  res.Get("committed").Bool(),
		Emitted:    stringArray(res.Get("emitted")),
	}
	return nil
}

func stringArray(r gjson.Result) []string {
	var out []string
	for _, item := range r.Array() {
		out = append(out, item.String())
	}
	return out
}
