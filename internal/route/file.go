package route

import (
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// ExtensionsFile is the on-disk form of the mutable part of a catalog.
//
//	dlc = ["summer", "winter"]
//	special = ["epilogue"]
type ExtensionsFile struct {
	DLC     []string `toml:"dlc"`
	Special []string `toml:"special"`
}

// LoadCatalogFile reads the extensions file at path and replaces c's DLC and
// special lists with its contents. A missing file leaves c unchanged.
func LoadCatalogFile(path string, c *Catalog) error {
	ext, err := ReadExtensions(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	c.ReplaceExtensions(ext.DLC, ext.Special)
	return nil
}

// ReadExtensions parses the extensions file at path. The returned error
// satisfies os.IsNotExist when the file is absent.
func ReadExtensions(path string) (ExtensionsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ExtensionsFile{}, err
		}
		return ExtensionsFile{}, fmt.Errorf("route: reading %s: %w", path, err)
	}
	var ext ExtensionsFile
	if err := toml.Unmarshal(data, &ext); err != nil {
		return ExtensionsFile{}, fmt.Errorf("route: parsing %s: %w", path, err)
	}
	return ext, nil
}

// SaveCatalogFile writes c's DLC and special lists to path atomically
// (write temp + rename).
func SaveCatalogFile(path string, c *Catalog) error {
	data, err := toml.Marshal(ExtensionsFile{
		DLC:     c.DLCRoutes(),
		Special: c.SpecialRoutes(),
	})
	if err != nil {
		return fmt.Errorf("route: marshaling extensions: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("route: writing temp extensions file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("route: renaming extensions file: %w", err)
	}
	return nil
}
