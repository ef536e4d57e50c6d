// ABOUTME: Version information for soundbox
// ABOUTME: Reported in server/hello and the status UI header
package version

import "fmt"

const (
	Version      = "0.3.0"
	Product      = "Soundbox"
	Manufacturer = "Soundbox Project"
)

// String returns "Product Version"
func String() string {
	return fmt.Sprintf("%s %s", Product, Version)
}
