package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// CommandType is the value of a command's "type" tag.
type CommandType string

// Command tags.
const (
	TypeAuth          CommandType = "auth"
	TypePrint         CommandType = "print"
	TypeCut           CommandType = "cut"
	TypeOpenDrawer    CommandType = "open_drawer"
	TypeDisplayUpdate CommandType = "display_update"
	TypeDisplayClear  CommandType = "display_clear"
)

// Command is one decoded inbound message. The set of implementations is closed.
type Command interface {
	Type() CommandType
	isCommand()
}

// Auth presents the shared secret.
type Auth struct {
	Token string
}

// Print prints optional text, optionally followed by a feed and cut.
type Print struct {
	DeviceID string
	Text     *string
	AutoCut  bool
}

// Cut feeds and cuts the paper.
type Cut struct {
	DeviceID string
}

// OpenDrawer kicks a cash drawer open.
type OpenDrawer struct {
	DeviceID string
}

// DisplayUpdate shows two lines on a customer display.
type DisplayUpdate struct {
	DeviceID string
	Line1    string
	Line2    string
}

// DisplayClear blanks a customer display.
type DisplayClear struct {
	DeviceID string
}

func (Auth) Type() CommandType          { return TypeAuth }
func (Print) Type() CommandType         { return TypePrint }
func (Cut) Type() CommandType           { return TypeCut }
func (OpenDrawer) Type() CommandType    { return TypeOpenDrawer }
func (DisplayUpdate) Type() CommandType { return TypeDisplayUpdate }
func (DisplayClear) Type() CommandType  { return TypeDisplayClear }

func (Auth) isCommand()          {}
func (Print) isCommand()         {}
func (Cut) isCommand()           {}
func (OpenDrawer) isCommand()    {}
func (DisplayUpdate) isCommand() {}
func (DisplayClear) isCommand()  {}

// DeviceOf returns the device a command targets. Auth targets none.
func DeviceOf(cmd Command) (string, bool) {
	switch c := cmd.(type) {
	case Print:
		return c.DeviceID, true
	case Cut:
		return c.DeviceID, true
	case OpenDrawer:
		return c.DeviceID, true
	case DisplayUpdate:
		return c.DeviceID, true
	case DisplayClear:
		return c.DeviceID, true
	default:
		return "", false
	}
}

// envelope is the union of all top-level fields. Pointers distinguish
// absent fields from empty ones.
type envelope struct {
	Type     *string         `json:"type"`
	Token    *string         `json:"token"`
	DeviceID *string         `json:"device_id"`
	Data     json.RawMessage `json:"data"`
}

type printData struct {
	Text    *string `json:"text,omitempty"`
	AutoCut bool    `json:"auto_cut"`
}

type displayData struct {
	Line1 *string `json:"line1"`
	Line2 *string `json:"line2"`
}

// Decode parses one inbound message.
//
// Unknown fields are ignored. A malformed message, an unknown tag or a
// missing required field returns a *DecodeError matching ErrInvalidCommand.
func Decode(data []byte) (Command, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, decodeErr(err, err.Error())
	}
	if env.Type == nil {
		return nil, missingField("type")
	}

	switch CommandType(*env.Type) {
	case TypeAuth:
		if env.Token == nil {
			return nil, missingField("token")
		}
		return Auth{Token: *env.Token}, nil

	case TypePrint:
		id, err := requireDevice(env)
		if err != nil {
			return nil, err
		}
		if isAbsent(env.Data) {
			return nil, missingField("data")
		}
		var pd printData
		if err := json.Unmarshal(env.Data, &pd); err != nil {
			return nil, decodeErr(err, "data: "+err.Error())
		}
		return Print{DeviceID: id, Text: pd.Text, AutoCut: pd.AutoCut}, nil

	case TypeCut:
		id, err := requireDevice(env)
		if err != nil {
			return nil, err
		}
		return Cut{DeviceID: id}, nil

	case TypeOpenDrawer:
		id, err := requireDevice(env)
		if err != nil {
			return nil, err
		}
		return OpenDrawer{DeviceID: id}, nil

	case TypeDisplayUpdate:
		id, err := requireDevice(env)
		if err != nil {
			return nil, err
		}
		if isAbsent(env.Data) {
			return nil, missingField("data")
		}
		var dd displayData
		if err := json.Unmarshal(env.Data, &dd); err != nil {
			return nil, decodeErr(err, "data: "+err.Error())
		}
		if dd.Line1 == nil {
			return nil, missingField("data.line1")
		}
		if dd.Line2 == nil {
			return nil, missingField("data.line2")
		}
		return DisplayUpdate{DeviceID: id, Line1: *dd.Line1, Line2: *dd.Line2}, nil

	case TypeDisplayClear:
		id, err := requireDevice(env)
		if err != nil {
			return nil, err
		}
		return DisplayClear{DeviceID: id}, nil

	default:
		return nil, decodeErr(nil, fmt.Sprintf("unknown command type %q", *env.Type))
	}
}

func requireDevice(env envelope) (string, error) {
	if env.DeviceID == nil {
		return "", missingField("device_id")
	}
	return *env.DeviceID, nil
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// wireCommand is the outbound shape used by Encode.
type wireCommand struct {
	Type     CommandType `json:"type"`
	Token    *string     `json:"token,omitempty"`
	DeviceID *string     `json:"device_id,omitempty"`
	Data     any         `json:"data,omitempty"`
}

// Encode serialises a command into its wire form. Decode(Encode(c)) == c.
func Encode(cmd Command) ([]byte, error) {
	w := wireCommand{Type: cmd.Type()}

	switch c := cmd.(type) {
	case Auth:
		w.Token = &c.Token
	case Print:
		w.DeviceID = &c.DeviceID
		w.Data = printData{Text: c.Text, AutoCut: c.AutoCut}
	case DisplayUpdate:
		w.DeviceID = &c.DeviceID
		w.Data = displayData{Line1: &c.Line1, Line2: &c.Line2}
	default:
		id, _ := DeviceOf(cmd)
		w.DeviceID = &id
	}

	return json.Marshal(w)
}
