package reader

import (
	"fmt"
	"os"
	"strings"

	"github.com/tosih/slm-mapper/pkg/models"
	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Maps models.Catalog `yaml:"maps"`
}

// ReadCatalog loads a YAML map catalog, replacing the predefined one
func ReadCatalog(filename string) (models.Catalog, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrConfiguration, filename, err)
	}
	if len(cf.Maps) == 0 {
		return nil, fmt.Errorf("%w: %s lists no maps", models.ErrConfiguration, filename)
	}

	seen := make(map[string]bool)
	for i, e := range cf.Maps {
		if strings.TrimSpace(e.Name) == "" || e.Map == "" {
			return nil, fmt.Errorf("%w: %s: entry %d needs a name and a map", models.ErrConfiguration, filename, i+1)
		}
		if _, err := models.ParseMode(e.Mode); err != nil {
			return nil, fmt.Errorf("%s: %s: %w", filename, e.Name, err)
		}
		key := strings.ToLower(e.Name)
		if seen[key] {
			return nil, fmt.Errorf("%w: %s: duplicate map name %q", models.ErrConfiguration, filename, e.Name)
		}
		seen[key] = true
	}

	return cf.Maps, nil
}

// WriteCatalog stores a catalog in the format ReadCatalog expects
func WriteCatalog(filename string, catalog models.Catalog) error {
	data, err := yaml.Marshal(catalogFile{Maps: catalog})
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0o644)
}
