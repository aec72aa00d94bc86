// engine/internal/outreach/personas.go
package outreach

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Persona is one writing identity: the signature name and the system
// prompt steering the model.
type Persona struct {
	Name         string `yaml:"name"`
	SystemPrompt string `yaml:"system_prompt"`
}

// DefaultPersonaKey is used when a request names no persona.
const DefaultPersonaKey = "default"

func defaultPersonas() map[string]Persona {
	return map[string]Persona{
		DefaultPersonaKey: {
			Name: "Abj",
			SystemPrompt: "You are a professional job applicant. You write short, direct " +
				"application emails. You never mention being an AI and never add explanations " +
				"outside the email itself.",
		},
	}
}

// LoadPersonas reads the persona file. A missing file is not an error;
// the built-in default applies.
func LoadPersonas(path string) (map[string]Persona, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultPersonas(), nil
		}
		return nil, err
	}

	var raw map[string]Persona
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("parse personas %s: %w", path, err)
	}
	if len(raw) == 0 {
		return defaultPersonas(), nil
	}
	if _, ok := raw[DefaultPersonaKey]; !ok {
		raw[DefaultPersonaKey] = defaultPersonas()[DefaultPersonaKey]
	}
	return raw, nil
}
