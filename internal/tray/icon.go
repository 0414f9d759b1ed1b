package tray

import (
	"embed"
	"runtime"
)

//go:embed assets/*
var assets embed.FS

// iconFor returns the tray icon for the tracking state. Windows wants ICO
// data, every other systray backend takes PNG.
func iconFor(enabled bool) []byte {
	name := "off"
	if enabled {
		name = "on"
	}
	ext := ".png"
	if runtime.GOOS == "windows" {
		ext = ".ico"
	}
	data, _ := assets.ReadFile("assets/" + name + ext)
	return data
}
