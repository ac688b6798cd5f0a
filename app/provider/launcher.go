package provider

import (
	"errors"
	"os/exec"
	"runtime"
	"strings"
)

var ErrUnsupportedPlatform = errors.New("unsupported platform")

// Launcher hands a URL to something that can display it to the donor.
type Launcher interface {
	Open(url string) error
}

type BrowserLauncher struct {
	goos  string
	start func(name string, args ...string) error
}

func NewBrowserLauncher() *BrowserLauncher {
	return &BrowserLauncher{goos: runtime.GOOS, start: startCommand}
}

func (l *BrowserLauncher) Open(url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return errors.New("url is required")
	}
	name, args, err := browserCommand(l.goos, url)
	if err != nil {
		return err
	}
	return l.start(name, args...)
}

func browserCommand(goos, url string) (string, []string, error) {
	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{url}, nil
	case "darwin":
		return "open", []string{url}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}, nil
	default:
		return "", nil, ErrUnsupportedPlatform
	}
}

func startCommand(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
