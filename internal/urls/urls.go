package urls

// Documentation URLs for guides and troubleshooting

// LANGuide is Govee's guide to the LAN API, listing supported models and
// how to enable "LAN Control" for a light in the Govee Home app.
const LANGuide = "https://app-h5.govee.com/user-manual/wlan-guide"

// DeveloperPortal is the Govee developer platform, where cloud API keys
// are requested and the cloud API is documented.
const DeveloperPortal = "https://developer.govee.com/"
