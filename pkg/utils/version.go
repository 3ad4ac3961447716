// Package utils provides bespoke, one off utils that don't make sense to be
// their own package
package utils

import "fmt"

// Build metadata, set with -ldflags "-X" at release time.
var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "dev"
)

// UserAgent is the User-Agent ragdesk sends to the workspace API.
func UserAgent() string {
	return fmt.Sprintf("ragdesk/%s (%s)", Version, Sha)
}
