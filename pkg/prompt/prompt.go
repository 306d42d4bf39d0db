// Package prompt holds the interactive questions the CLI asks when a flag
// was left out.
package prompt

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/tosih/slm-mapper/pkg/export"
	"github.com/tosih/slm-mapper/pkg/models"
	"golang.org/x/term"
)

// optionLabel is how a catalog entry is shown in the selector
func optionLabel(e models.CatalogEntry) string {
	label := fmt.Sprintf("%s [%s]", e.Name, e.Mode)
	if e.Inverse == "" {
		label += " (no inverse)"
	}
	return label
}

// mapOptions returns the selector labels and the entry name behind each
func mapOptions(catalog models.Catalog) ([]string, map[string]string) {
	options := make([]string, len(catalog))
	names := make(map[string]string, len(catalog))
	for i, e := range catalog {
		options[i] = optionLabel(e)
		names[options[i]] = e.Name
	}
	return options, names
}

// ChooseMap asks for a catalog entry and returns its name
func ChooseMap(catalog models.Catalog) (string, error) {
	if len(catalog) == 0 {
		return "", fmt.Errorf("%w: the catalog is empty", models.ErrConfiguration)
	}
	options, names := mapOptions(catalog)

	selected, err := pterm.DefaultInteractiveSelect.
		WithOptions(options).
		Show("Select a calibration map")
	if err != nil {
		return "", err
	}
	return names[selected], nil
}

// Suggestion returns the free name offered after a write collision
func Suggestion(err error) (string, bool) {
	var collision *export.CollisionError
	if !errors.As(err, &collision) || collision.Next == "" {
		return "", false
	}
	return collision.Next, true
}

// ConfirmSuffix asks whether to save under the next free name after a write
// collision. It returns false for any other error.
func ConfirmSuffix(err error) bool {
	next, ok := Suggestion(err)
	if !ok {
		return false
	}

	pterm.Warning.Println(err)
	result, _ := pterm.DefaultInteractiveConfirm.
		WithDefaultValue(false).
		Show(fmt.Sprintf("Save as %s instead?", filepath.Base(next)))
	return result
}

// Interactive reports whether stdin is a terminal, so questions can be asked
func Interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
