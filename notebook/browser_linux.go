//go:build linux

package notebook

import "os/exec"

func browserCommand(url string) (string, []string) {
	for _, opener := range []string{"xdg-open", "sensible-browser"} {
		if _, err := exec.LookPath(opener); err == nil {
			return opener, []string{url}
		}
	}
	return "", nil
}
