package notebook

import "os/exec"

// openBrowser launches the platform browser at url, best effort. Failures
// are logged and never fatal.
func (a *App) openBrowser(url string) {
	name, args := browserCommand(url)
	if name == "" {
		a.log.Warn("No browser launcher available on this platform", "url", url)
		return
	}

	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		a.log.Warn("Failed to open browser", "error", err, "url", url)
		return
	}
	// Detach; we never wait on the browser process
	go func() { _ = cmd.Wait() }()
}
