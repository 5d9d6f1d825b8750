package catalog

import (
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// catalogFile is the on-disk YAML structure of a template catalog.
type catalogFile struct {
	Templates []*Template `yaml:"templates"`
}

// Load reads a template catalog from a YAML file at the specified path.
// It validates every template definition and returns any errors.
//
// Catalog file format:
//
//	templates:
//	  - id: constitutional_v2
//	    name: Constitutional synthesis
//	    category: constitutional
//	    body: |
//	      Synthesize a {{.TargetFormat}} rule for: {{.Principle}}
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %q: %w", path, err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog file %q: %w", path, err)
	}
	c.source = path
	return c, nil
}

// Parse parses catalog YAML from memory and validates it.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}

	if len(file.Templates) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		templates: make(map[string]*Template, len(file.Templates)),
		order:     make([]string, 0, len(file.Templates)),
	}

	for _, tmpl := range file.Templates {
		if err := validateTemplate(tmpl); err != nil {
			return nil, err
		}
		if _, exists := c.templates[tmpl.ID]; exists {
			return nil, &DuplicateTemplateError{ID: tmpl.ID}
		}
		c.templates[tmpl.ID] = tmpl
		c.order = append(c.order, tmpl.ID)
	}

	return c, nil
}

// validateTemplate checks a single template definition.
func validateTemplate(tmpl *Template) error {
	if tmpl == nil {
		return &InvalidTemplateError{Field: "template", Reason: "is null"}
	}
	if strings.TrimSpace(tmpl.ID) == "" {
		return &InvalidTemplateError{Field: "id", Reason: "must not be empty"}
	}
	if strings.TrimSpace(tmpl.Category) == "" {
		return &InvalidTemplateError{ID: tmpl.ID, Field: "category", Reason: "must not be empty"}
	}
	if strings.TrimSpace(tmpl.Body) == "" {
		return &InvalidTemplateError{ID: tmpl.ID, Field: "body", Reason: "must not be empty"}
	}

	// The body must parse as a text/template so render errors surface at
	// load time rather than on the first synthesis request.
	if _, err := template.New(tmpl.ID).Parse(tmpl.Body); err != nil {
		return &InvalidTemplateError{ID: tmpl.ID, Field: "body", Reason: fmt.Sprintf("does not parse: %v", err)}
	}

	return nil
}

// Render renders a template body against the given input.
func Render(tmpl *Template, input *RenderInput) (string, error) {
	if tmpl == nil {
		return "", &InvalidTemplateError{Field: "template", Reason: "is null"}
	}

	t, err := template.New(tmpl.ID).Parse(tmpl.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %q: %w", tmpl.ID, err)
	}

	var sb strings.Builder
	if err := t.Execute(&sb, input); err != nil {
		return "", fmt.Errorf("failed to render template %q: %w", tmpl.ID, err)
	}

	return sb.String(), nil
}
