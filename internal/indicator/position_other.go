//go:build !linux

package indicator

// positionWindow не реализовано: окно открывается там, где его поставит система.
func positionWindow(title string, width, height int) {}
