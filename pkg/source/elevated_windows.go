//go:build windows
// +build windows

package source

import "golang.org/x/sys/windows"

// elevated reports whether the process token is elevated. RWEverything needs
// administrator rights to load its driver.
func elevated() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}
