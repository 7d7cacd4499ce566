// Package urls provides documentation URLs referenced in CLI output.
//
// Troubleshooting boxes point users at these pages when a light does not
// answer on the LAN or the cloud rejects an API key.
package urls
