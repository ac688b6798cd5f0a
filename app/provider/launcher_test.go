package provider

import (
	"errors"
	"testing"
)

func TestBrowserCommandPerPlatform(t *testing.T) {
	cases := map[string]string{
		"linux":   "xdg-open",
		"darwin":  "open",
		"windows": "rundll32",
	}
	for goos, want := range cases {
		name, args, err := browserCommand(goos, "http://x")
		if err != nil || name != want {
			t.Fatalf("%s: expected %s, got %s (%v)", goos, want, name, err)
		}
		if args[len(args)-1] != "http://x" {
			t.Fatalf("%s: expected url as last argument, got %v", goos, args)
		}
	}

	if _, _, err := browserCommand("plan9", "http://x"); !errors.Is(err, ErrUnsupportedPlatform) {
		t.Fatalf("expected ErrUnsupportedPlatform, got %v", err)
	}
}

func TestBrowserLauncherStartsCommand(t *testing.T) {
	var started []string
	launcher := &BrowserLauncher{goos: "darwin", start: func(name string, args ...string) error {
		started = append([]string{name}, args...)
		return nil
	}}

	if err := launcher.Open("https://receipts.example.org/1.html"); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if len(started) != 2 || started[0] != "open" {
		t.Fatalf("unexpected command: %v", started)
	}
	if err := launcher.Open(" "); err == nil {
		t.Fatal("expected error for empty url")
	}
}
