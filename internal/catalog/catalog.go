// Package catalog holds the built-in utility stylesheet used when no other CSS
// is supplied.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
)

//go:embed tailwind.css
var builtin string

// Version identifies the revision of the built-in stylesheet. Bump it whenever
// tailwind.css changes.
const Version = "3.4-email.1"

// CSS returns the built-in utility stylesheet text
func CSS() string {
	return builtin
}

// Compose returns the stylesheet text for one conversion: the built-in
// catalog, then the contents of the optional extra file, then any additional
// blocks in order. Later text wins for duplicate selectors.
func Compose(extraPath string, blocks ...string) (string, error) {
	var b strings.Builder
	b.WriteString(builtin)

	if extraPath != "" {
		data, err := os.ReadFile(extraPath)
		if err != nil {
			return "", fmt.Errorf("unable to read stylesheet '%s': %w", extraPath, err)
		}
		b.WriteByte('\n')
		b.Write(data)
	}
	for _, block := range blocks {
		b.WriteByte('\n')
		b.WriteString(block)
	}
	return b.String(), nil
}
