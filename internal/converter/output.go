package converter

import (
	"os"

	"mdexport/internal/models"
)

// ensureOutput treats a missing or empty output file as a converter failure,
// since some tools exit 0 without writing anything.
func ensureOutput(tool string, path string) error {
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return &models.ConverterError{
			Tool:       tool,
			ExitCode:   0,
			Diagnostic: "no output produced at " + path,
		}
	}
	return nil
}
