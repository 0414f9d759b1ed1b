// focusfollow - focus follows mouse from the system tray
//
//	focusfollow                      Run the tray application
//	focusfollow run                  Same as above
//	focusfollow status               Show the desktop's focus tracking settings
//	focusfollow selftest             Apply, verify and restore the settings
//	focusfollow autostart <action>   Manage launch at login (enable|disable|status)
//	focusfollow version              Print the version
package main

import (
	"context"
	"os"
)

func main() {
	if err := Root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
