// Package browser hands URLs to the desktop's default browser.
package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// launchers maps GOOS to the command that opens a URL.
var launchers = map[string][]string{
	"darwin":  {"open"},
	"linux":   {"xdg-open"},
	"freebsd": {"xdg-open"},
	"windows": {"rundll32", "url.dll,FileProtocolHandler"},
}

// start runs the launcher without waiting for it.
var start = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// Open opens an http(s) URL in the user's default browser.
func Open(raw string) error {
	return open(runtime.GOOS, raw)
}

func open(goos, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("browser: refusing to open %q", raw)
	}
	argv, ok := launchers[goos]
	if !ok {
		return fmt.Errorf("browser: unsupported OS: %s", goos)
	}
	args := append(append([]string(nil), argv[1:]...), u.String())
	return start(argv[0], args...)
}
