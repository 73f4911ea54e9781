package web

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/keychord/internal/capture"
	"github.com/dshills/keychord/internal/input/key"
)

// Frame errors.
var (
	// ErrMalformedFrame indicates a frame that is not a JSON object.
	ErrMalformedFrame = errors.New("malformed frame")

	// ErrUnknownFrameType indicates an unsupported "type".
	ErrUnknownFrameType = errors.New("unknown frame type")

	// ErrMissingKey indicates a key frame without a "key".
	ErrMissingKey = errors.New("missing key")
)

// FrameType is the kind of event a frame carries.
type FrameType string

// Frame types sent by the page.
const (
	FrameKeyDown FrameType = "keydown"
	FrameKeyUp   FrameType = "keyup"
	FrameBlur    FrameType = "blur"
	FrameWrite   FrameType = "write"
	FrameReset   FrameType = "reset"
)

// Frame is one decoded client message.
type Frame struct {
	Type  FrameType
	Key   string
	Value string
}

// DecodeFrame parses a client message. Key names are normalized.
func DecodeFrame(data []byte) (Frame, error) {
	if !gjson.ValidBytes(data) {
		return Frame{}, ErrMalformedFrame
	}
	res := gjson.ParseBytes(data)
	if !res.IsObject() {
		return Frame{}, ErrMalformedFrame
	}

	f := Frame{
		Type:  FrameType(res.Get("type").String()),
		Key:   res.Get("key").String(),
		Value: res.Get("value").String(),
	}

	switch f.Type {
	case FrameKeyDown, FrameKeyUp:
		if f.Key == "" {
			return Frame{}, fmt.Errorf("%w in %s frame", ErrMissingKey, f.Type)
		}
		f.Key = key.Normalize(f.Key)
	case FrameBlur, FrameWrite, FrameReset:
	default:
		return Frame{}, fmt.Errorf("%w: %q", ErrUnknownFrameType, f.Type)
	}
	return f, nil
}

// Apply delivers the frame to rec.
func (f Frame) Apply(rec *capture.Recorder) {
	switch f.Type {
	case FrameKeyDown:
		rec.KeyDown(f.Key)
	case FrameKeyUp:
		rec.KeyUp(f.Key)
	case FrameBlur:
		rec.Blur()
	case FrameWrite:
		rec.WriteValue(f.Value)
	case FrameReset:
		rec.Reset()
	}
}

// errorFrame encodes an error reply.
func errorFrame(err error) []byte {
	out, _ := sjson.SetBytes([]byte(`{}`), "error", err.Error())
	return out
}
