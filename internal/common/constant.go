// Package common contains shared constants and sentinel errors used across
// SeqSubmit components.
package common

// TokenHeaderName is the HTTP header used to carry the archive access token
// on outbound requests.
const TokenHeaderName = "X-Auth-Token"
