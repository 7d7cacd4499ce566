// Package cloud is a thin client for the Govee developer cloud API.
//
// It forwards calls and returns response bodies untouched:
//
//	GET /v1/devices                       list devices
//	PUT /v1/devices/control               {"device","model","cmd"}
//	GET /v1/devices/state?device=&model=  device state
//
// The API key is passed per call in the Govee-API-Key header and is never
// stored. Failures are *APIError values typed as network, timeout, auth,
// rate-limit, HTTP, parse or validation errors.
package cloud
