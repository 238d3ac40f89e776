// ABOUTME: Version information for playwav
// ABOUTME: Single source of truth for the version string
package version

import "fmt"

const (
	// Version is the current release
	Version = "0.1.0"

	// Product is the program name
	Product = "playwav"

	// Manufacturer is the project owner
	Manufacturer = "NotCompsky"
)

// String returns "<product> <version>"
func String() string {
	return fmt.Sprintf("%s %s", Product, Version)
}
