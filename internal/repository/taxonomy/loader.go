// Package taxonomy loads the gap-analysis catalogs from YAML.
package taxonomy

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/simcheck/internal/domain/gap"
)

//go:embed topics.yaml
var defaultTopics []byte

//go:embed funnel.yaml
var defaultFunnel []byte

// Catalog holds both gap-analysis taxonomies.
type Catalog struct {
	Topics gap.Taxonomy
	Funnel gap.FunnelTaxonomy
}

// Default returns the built-in catalogs.
func Default() (Catalog, error) {
	return parse(defaultTopics, defaultFunnel)
}

// Load reads overrides from dir when set: topics.yaml and funnel.yaml are each
// optional and fall back to the built-in version.
func Load(dir string) (Catalog, error) {
	if dir == "" {
		return Default()
	}
	topics, err := readOr(dir+"/topics.yaml", defaultTopics)
	if err != nil {
		return Catalog{}, err
	}
	funnel, err := readOr(dir+"/funnel.yaml", defaultFunnel)
	if err != nil {
		return Catalog{}, err
	}
	return parse(topics, funnel)
}

func parse(topicsYAML, funnelYAML []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(topicsYAML, &c.Topics); err != nil {
		return Catalog{}, fmt.Errorf("parse topics taxonomy: %w", err)
	}
	if err := c.Topics.Validate(); err != nil {
		return Catalog{}, fmt.Errorf("topics taxonomy: %w", err)
	}
	if err := yaml.Unmarshal(funnelYAML, &c.Funnel); err != nil {
		return Catalog{}, fmt.Errorf("parse funnel taxonomy: %w", err)
	}
	if err := c.Funnel.Validate(); err != nil {
		return Catalog{}, fmt.Errorf("funnel taxonomy: %w", err)
	}
	return c, nil
}

func readOr(path string, fallback []byte) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return fallback, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read taxonomy %s: %w", path, err)
	}
	return data, nil
}
