package bridge

import (
	"context"
	"encoding/json"

	"github.com/muurk/lightbridge/internal/protocol"
)

// StatusResponse is a device's reported state.
type StatusResponse struct {
	Online         bool            `json:"online"`
	On             bool            `json:"power"`
	Brightness     int             `json:"brightness"`
	Color          *protocol.RGB   `json:"color,omitempty"`
	ColorTemKelvin *int            `json:"color_temp_kelvin,omitempty"`
	Attributes     json.RawMessage `json:"attributes,omitempty"`
}

// GetStatus queries a device's state with a devStatus request. A zero port
// selects the configured control port.
func (b *Bridge) GetStatus(ctx context.Context, host string, port int) (*StatusResponse, error) {
	in, err := b.request(ctx, DeviceAddress{Host: host, Port: port}, protocol.StatusRequest(), protocol.CmdStatus, 0)
	if err != nil {
		return nil, err
	}

	st, err := protocol.ParseStatus(in.frame)
	if err != nil {
		return nil, newMalformedError(in.source.String(), err)
	}

	return &StatusResponse{
		Online:         true,
		On:             st.On,
		Brightness:     st.Brightness,
		Color:          st.Color,
		ColorTemKelvin: st.ColorTemKelvin,
		Attributes:     st.Raw,
	}, nil
}
