package session

import (
	"fmt"

	"golang.org/x/mod/semver"
)

// VersionUnsupported is the error code when the client API version cannot be served.
const VersionUnsupported = "version_unsupported"

// VersionError is returned when a client requests an unsupported API version.
type VersionError struct {
	Code          string
	Message       string
	ClientVersion string
	ServerVersion string
}

func (e *VersionError) Error() string {
	return e.Message
}

// CheckVersion reports whether the server can answer a client built against
// clientVersion. The client must target the same major version and must not
// be newer than the server. An empty client version is always accepted.
func CheckVersion(serverVersion, clientVersion string) error {
	if clientVersion == "" {
		return nil
	}

	sv := normalizeVersion(serverVersion)
	cv := normalizeVersion(clientVersion)
	if !semver.IsValid(cv) {
		return &VersionError{
			Code:          VersionUnsupported,
			Message:       fmt.Sprintf("invalid client version %q", clientVersion),
			ClientVersion: clientVersion,
			ServerVersion: serverVersion,
		}
	}
	if !semver.IsValid(sv) {
		return nil
	}

	if semver.Major(sv) != semver.Major(cv) || semver.Compare(cv, sv) > 0 {
		return &VersionError{
			Code:          VersionUnsupported,
			Message:       fmt.Sprintf("client requires version %s, server supports %s", clientVersion, serverVersion),
			ClientVersion: clientVersion,
			ServerVersion: serverVersion,
		}
	}
	return nil
}

// normalizeVersion adds "v" prefix if needed for semver parsing.
func normalizeVersion(v string) string {
	if v == "" {
		return "v0.0.0"
	}
	if v[0] != 'v' {
		return "v" + v
	}
	return v
}
