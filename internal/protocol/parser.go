package protocol

import (
	"encoding/json"
	"fmt"
	"math"
)

// RGB is a 24-bit color.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// ScanInfo is the data object of a scan response.
type ScanInfo struct {
	IP              string          `json:"ip"`
	Device          string          `json:"device"`
	SKU             string          `json:"sku"`
	BLEVersionHard  string          `json:"bleVersionHard,omitempty"`
	BLEVersionSoft  string          `json:"bleVersionSoft,omitempty"`
	WifiVersionHard string          `json:"wifiVersionHard,omitempty"`
	WifiVersionSoft string          `json:"wifiVersionSoft,omitempty"`
	Raw             json.RawMessage `json:"-"`
}

// Status is the data object of a devStatus response.
type Status struct {
	On             bool
	Brightness     int
	Color          *RGB
	ColorTemKelvin *int
	Raw            json.RawMessage
}

// ParseScanResponse extracts device identity from a scan response frame.
// Missing fields are left empty.
func ParseScanResponse(f *Frame) (*ScanInfo, error) {
	if err := expect(f, CmdScan); err != nil {
		return nil, err
	}

	info := &ScanInfo{Raw: f.Data}
	if len(f.Data) == 0 {
		return info, nil
	}
	if err := json.Unmarshal(f.Data, info); err != nil {
		return nil, fmt.Errorf("%w: scan data: %v", ErrMalformedFrame, err)
	}
	info.Raw = f.Data
	return info, nil
}

// ParseStatus extracts device state from a devStatus response frame.
// onOff may be 0/1 or a boolean; brightness is clamped to 0-100. Sub-fields
// of the wrong type are ignored.
func ParseStatus(f *Frame) (*Status, error) {
	if err := expect(f, CmdStatus); err != nil {
		return nil, err
	}

	st := &Status{Raw: f.Data}
	if len(f.Data) == 0 {
		return st, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(f.Data, &fields); err != nil {
		return nil, fmt.Errorf("%w: status data is not an object: %v", ErrMalformedFrame, err)
	}

	if raw, ok := fields["onOff"]; ok {
		st.On = parseOnOff(raw)
	}
	if n, ok := number(fields["brightness"]); ok {
		st.Brightness = int(clamp(math.Round(n), 0, 100))
	}
	if raw, ok := fields["color"]; ok {
		st.Color = parseColor(raw)
	}
	if n, ok := number(fields["colorTemInKelvin"]); ok && n > 0 {
		k := int(n)
		st.ColorTemKelvin = &k
	}
	return st, nil
}

func expect(f *Frame, cmd string) error {
	if f == nil {
		return fmt.Errorf("%w: nil frame", ErrMalformedFrame)
	}
	if f.Cmd != cmd {
		return fmt.Errorf("%w: expected %s, got %s", ErrMalformedFrame, cmd, f.Cmd)
	}
	return nil
}

func parseOnOff(raw json.RawMessage) bool {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	n, ok := number(raw)
	return ok && n != 0
}

func parseColor(raw json.RawMessage) *RGB {
	var c map[string]json.RawMessage
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil
	}
	r, okR := number(c["r"])
	g, okG := number(c["g"])
	b, okB := number(c["b"])
	if !okR && !okG && !okB {
		return nil
	}
	return &RGB{
		R: uint8(clamp(r, 0, 255)),
		G: uint8(clamp(g, 0, 255)),
		B: uint8(clamp(b, 0, 255)),
	}
}

func number(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	return n, true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
