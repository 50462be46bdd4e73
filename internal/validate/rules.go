package validate

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/integrity-cli/internal/config"
)

// LoadRulesFile reads a YAML rules file and merges it over base. Only
// fields present in the file override; absent fields keep the base
// value, so a file can tighten one rule without restating the rest.
func LoadRulesFile(path string, base config.ValidationRules) (config.ValidationRules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, eris.Wrapf(err, "validate: read rules file %s", path)
	}

	var file struct {
		ContentMinLength *int     `yaml:"content_min_length"`
		ContentMaxLength *int     `yaml:"content_max_length"`
		RequiredFields   []string `yaml:"required_fields"`
		OptionalFields   []string `yaml:"optional_fields"`
		Categories       []string `yaml:"categories"`
		TimestampLayouts []string `yaml:"timestamp_layouts"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return base, eris.Wrapf(err, "validate: parse rules file %s", path)
	}

	merged := base
	if file.ContentMinLength != nil {
		merged.ContentMinLength = *file.ContentMinLength
	}
	if file.ContentMaxLength != nil {
		merged.ContentMaxLength = *file.ContentMaxLength
	}
	if file.RequiredFields != nil {
		merged.RequiredFields = file.RequiredFields
	}
	if file.OptionalFields != nil {
		merged.OptionalFields = file.OptionalFields
	}
	if file.Categories != nil {
		merged.Categories = file.Categories
	}
	if file.TimestampLayouts != nil {
		merged.TimestampLayouts = file.TimestampLayouts
	}
	return merged, nil
}
