package ufo

import (
	"fmt"
	"os"

	"howett.net/plist"
)

// readPlist decodes the property list in the file at path into v.
func readPlist(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := plist.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidUFO, path, err)
	}
	return nil
}
