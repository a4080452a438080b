//go:build darwin

package notebook

func browserCommand(url string) (string, []string) {
	return "open", []string{url}
}
