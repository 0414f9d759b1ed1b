package autostart

import (
	"bytes"
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
)

// LaunchAgent registers the app through a per-user launchd agent.
type LaunchAgent struct {
	dir   string
	label string
}

// NewLaunchAgent returns a manager writing <dir>/<label>.plist.
func NewLaunchAgent(dir, label string) *LaunchAgent {
	return &LaunchAgent{dir: dir, label: label}
}

// LaunchAgentsDir returns ~/Library/LaunchAgents.
func LaunchAgentsDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "Library", "LaunchAgents")
}

// Location returns the path of the plist.
func (a *LaunchAgent) Location() string {
	return filepath.Join(a.dir, a.label+".plist")
}

// IsEnabled reports whether the plist exists.
func (a *LaunchAgent) IsEnabled() (bool, error) {
	return fileExists(a.Location())
}

// Enable writes the plist. launchd picks it up at next login.
func (a *LaunchAgent) Enable(execPath string) error {
	return writeFileAtomic(a.Location(), a.render(execPath), 0644)
}

// Disable removes the plist.
func (a *LaunchAgent) Disable() error {
	return removeFile(a.Location())
}

func (a *LaunchAgent) render(execPath string) []byte {
	var b bytes.Buffer
	b.WriteString(xml.Header)
	b.WriteString(`<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">` + "\n")
	b.WriteString(`<plist version="1.0">` + "\n<dict>\n")
	b.WriteString("\t<key>Label</key>\n\t<string>" + escapeXML(a.label) + "</string>\n")
	b.WriteString("\t<key>ProgramArguments</key>\n\t<array>\n")
	b.WriteString("\t\t<string>" + escapeXML(execPath) + "</string>\n")
	b.WriteString("\t</array>\n")
	b.WriteString("\t<key>RunAtLoad</key>\n\t<true/>\n")
	b.WriteString("\t<key>ProcessType</key>\n\t<string>Interactive</string>\n")
	b.WriteString("</dict>\n</plist>\n")
	return b.Bytes()
}

func escapeXML(s string) string {
	var sb strings.Builder
	xml.EscapeText(&sb, []byte(s))
	return sb.String()
}
