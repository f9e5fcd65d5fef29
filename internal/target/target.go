// Package target defines the deployment shapes a source tree can be built
// into and parses target selectors from the command line or environment.
package target

import (
	"strings"

	"github.com/conneroisu/targetforge/internal/errors"
)

// Target is one deployment shape of the application.
type Target string

const (
	Web               Target = "web"
	ServerRendered    Target = "server-rendered"
	ProgressiveWebApp Target = "progressive-web-app"
	DesktopShell      Target = "desktop-shell"
	MobileShell       Target = "mobile-shell"
	BrowserExtension  Target = "browser-extension"
)

type info struct {
	mode        string
	aliases     []string
	description string
}

var targets = []Target{Web, ServerRendered, ProgressiveWebApp, DesktopShell, MobileShell, BrowserExtension}

var infos = map[Target]info{
	Web:               {mode: "spa", aliases: []string{"spa"}, description: "Single-page browser bundle"},
	ServerRendered:    {mode: "ssr", aliases: []string{"ssr"}, description: "Server-rendered client and server bundles"},
	ProgressiveWebApp: {mode: "pwa", aliases: []string{"pwa"}, description: "Installable browser bundle with manifest"},
	DesktopShell:      {mode: "electron", aliases: []string{"electron"}, description: "Desktop shell with main and privileged preload bundles"},
	MobileShell:       {mode: "mobile", aliases: []string{"mobile"}, description: "Browser bundle packaged by a mobile shell (capacitor or cordova)"},
	BrowserExtension:  {mode: "bex", aliases: []string{"bex"}, description: "Browser extension with content scripts"},
}

// All returns every target in declaration order.
func All() []Target {
	out := make([]Target, len(targets))
	copy(out, targets)
	return out
}

// Names returns the canonical names of every target.
func Names() []string {
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = string(t)
	}
	return names
}

// Parse converts a canonical target name or one of its mode aliases into a
// Target. Matching ignores case and surrounding whitespace.
func Parse(s string) (Target, error) {
	value := strings.ToLower(strings.TrimSpace(s))
	for _, t := range targets {
		if value == string(t) {
			return t, nil
		}
		for _, alias := range infos[t].aliases {
			if value == alias {
				return t, nil
			}
		}
	}
	return "", errors.NewUnknownTargetError(s, Names())
}

// Valid reports whether t is one of the enumerated targets.
func (t Target) Valid() bool {
	_, ok := infos[t]
	return ok
}

func (t Target) String() string {
	return string(t)
}

// Mode returns the short mode name used in default output directory names.
// The mobile shell writes to a directory named after its shell instead.
func (t Target) Mode() string {
	return infos[t].mode
}

// Aliases returns the alternative selectors accepted by Parse.
func (t Target) Aliases() []string {
	return append([]string(nil), infos[t].aliases...)
}

// Description returns a one-line summary of the deployment shape.
func (t Target) Description() string {
	return infos[t].description
}
