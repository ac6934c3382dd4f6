package version

import "errors"

// ErrInvalidVersion indicates a string did not parse as a VersionString.
var ErrInvalidVersion = errors.New("invalid version string")
