// Package protocol implements the JSON-over-UDP frame format spoken by
// Govee LAN-API lights.
//
// Every datagram carries exactly one frame wrapped in a fixed envelope:
//
//	{"msg":{"cmd":"devStatus","data":{}}}
//
// The cmd field is the frame tag. Responses reuse the tag of the request they
// answer (a devStatus request is answered by a devStatus frame), which is what
// the bridge correlates on.
//
// # Ports
//
//   - 4001: devices listen for multicast scan requests on 239.255.255.250
//   - 4002: devices send scan and status responses to this port
//   - 4003: devices accept control and status requests on this port
//
// # Commands
//
//   - scan: discovery request, answered with ip, device, sku and firmware versions
//   - devStatus: state query, answered with onOff, brightness, color, colorTemInKelvin
//   - turn: power, value 0 or 1
//   - brightness: value 1-100
//   - colorwc: color{r,g,b} and colorTemInKelvin
//
// # Encoding
//
// Encode never drops fields: a payload that cannot be represented as JSON, or
// that exceeds the codec's size limit, fails with an error wrapping ErrEncoding.
// Decode rejects datagrams that are not a JSON envelope with a non-empty
// msg.cmd, returning an error wrapping ErrMalformedFrame.
package protocol
