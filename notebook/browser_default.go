//go:build !linux && !darwin && !windows

package notebook

func browserCommand(url string) (string, []string) {
	return "", nil
}
