package autostart

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
)

// DesktopEntry registers the app through an XDG autostart .desktop file.
type DesktopEntry struct {
	dir  string
	name string
}

// NewDesktopEntry returns a manager writing <dir>/<name>.desktop.
func NewDesktopEntry(dir, name string) *DesktopEntry {
	return &DesktopEntry{dir: dir, name: name}
}

// XDGAutostartDir returns $XDG_CONFIG_HOME/autostart, defaulting to
// ~/.config/autostart.
func XDGAutostartDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "autostart")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "autostart")
}

// Location returns the path of the desktop file.
func (d *DesktopEntry) Location() string {
	return filepath.Join(d.dir, d.name+".desktop")
}

// IsEnabled reports whether the desktop file exists and is not hidden.
func (d *DesktopEntry) IsEnabled() (bool, error) {
	ok, err := fileExists(d.Location())
	if err != nil || !ok {
		return false, err
	}
	data, err := os.ReadFile(d.Location())
	if err != nil {
		return false, err
	}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "Hidden=true" {
			return false, nil
		}
	}
	return true, nil
}

// Enable writes the desktop file.
func (d *DesktopEntry) Enable(execPath string) error {
	return writeFileAtomic(d.Location(), d.render(execPath), 0644)
}

// Disable removes the desktop file.
func (d *DesktopEntry) Disable() error {
	return removeFile(d.Location())
}

func (d *DesktopEntry) render(execPath string) []byte {
	var b bytes.Buffer
	b.WriteString("[Desktop Entry]\n")
	b.WriteString("Type=Application\n")
	b.WriteString("Name=" + d.name + "\n")
	b.WriteString("Comment=Focus follows mouse\n")
	b.WriteString("Exec=" + desktopQuote(execPath) + "\n")
	b.WriteString("Terminal=false\n")
	b.WriteString("NoDisplay=true\n")
	b.WriteString("X-GNOME-Autostart-enabled=true\n")
	return b.Bytes()
}

// desktopQuote quotes an Exec argument per the Desktop Entry
// specification when it contains reserved characters.
func desktopQuote(arg string) string {
	if !strings.ContainsAny(arg, " \t\"'\\$`<>|;&*?#()") {
		return arg
	}
	r := strings.NewReplacer(`\`, `\\\\`, `"`, `\\"`, "`", "\\\\`", "$", `\\$`)
	return `"` + r.Replace(arg) + `"`
}
