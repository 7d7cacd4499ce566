package protocol

import (
	"encoding/json"
	"fmt"
)

// Command tags used by the device family.
const (
	CmdScan       = "scan"
	CmdStatus     = "devStatus"
	CmdTurn       = "turn"
	CmdBrightness = "brightness"
	CmdColor      = "colorwc"
)

// Discovery and control endpoints.
const (
	DefaultMulticastAddr = "239.255.255.250:4001"
	DefaultListenPort    = 4002
	DefaultControlPort   = 4003
)

// ScanRequest builds the multicast discovery request.
func ScanRequest() *Frame {
	return &Frame{Cmd: CmdScan, Data: json.RawMessage(`{"account_topic":"reserve"}`)}
}

// StatusRequest builds a devStatus query.
func StatusRequest() *Frame {
	return &Frame{Cmd: CmdStatus, Data: json.RawMessage(`{}`)}
}

// TurnCommand builds a power command.
func TurnCommand(on bool) *Frame {
	value := 0
	if on {
		value = 1
	}
	return &Frame{Cmd: CmdTurn, Data: json.RawMessage(fmt.Sprintf(`{"value":%d}`, value))}
}

// BrightnessCommand builds a brightness command. Devices accept 1-100.
func BrightnessCommand(percent int) (*Frame, error) {
	if percent < 1 || percent > 100 {
		return nil, fmt.Errorf("%w: brightness %d out of range 1-100", ErrEncoding, percent)
	}
	return &Frame{Cmd: CmdBrightness, Data: json.RawMessage(fmt.Sprintf(`{"value":%d}`, percent))}, nil
}

// ColorCommand builds a colorwc command. A kelvin value of 0 selects the RGB
// color; a non-zero value selects white at that temperature (2000-9000).
func ColorCommand(c RGB, kelvin int) (*Frame, error) {
	if kelvin != 0 && (kelvin < 2000 || kelvin > 9000) {
		return nil, fmt.Errorf("%w: color temperature %dK out of range 2000-9000", ErrEncoding, kelvin)
	}
	return NewFrame(CmdColor, colorData{Color: c, ColorTemInKelvin: kelvin})
}

type colorData struct {
	Color            RGB `json:"color"`
	ColorTemInKelvin int `json:"colorTemInKelvin"`
}
