package catalog

// Template is a single prompt template registered in the catalog.
// Templates are created once at startup from the catalog file and are
// immutable afterwards; reloads replace whole templates rather than
// mutating them in place.
type Template struct {
	// ID is the unique template identifier (e.g., "constitutional_v2").
	ID string `yaml:"id"`

	// Name is a human-readable label for dashboards and logs.
	Name string `yaml:"name"`

	// Category tags the template for eligibility filtering.
	// Examples: "constitutional", "safety_critical", "fairness_aware", "adaptive".
	// Matching is exact and case-sensitive.
	Category string `yaml:"category"`

	// Description explains when the template should be used.
	Description string `yaml:"description,omitempty"`

	// Body is the prompt template text. It is rendered with text/template
	// against a RenderInput before being sent to the synthesis model.
	Body string `yaml:"body"`

	// Metadata contains free-form template annotations.
	Metadata map[string]string `yaml:"metadata,omitempty"`
}

// RenderInput contains the fields available to a template body during
// rendering.
type RenderInput struct {
	// Principle is the natural-language governance statement to synthesize
	// rules from.
	Principle string

	// TargetFormat is the requested rule language ("datalog", "rego").
	TargetFormat string

	// SafetyLevel is the requested safety level for the synthesis.
	SafetyLevel string

	// Context contains additional request-scoped values.
	Context map[string]string
}

// Catalog is an immutable set of templates keyed by ID, preserving the
// order in which templates were declared in the source file.
type Catalog struct {
	templates map[string]*Template
	order     []string
	source    string
}

// Get returns the template with the given ID, or nil if not present.
func (c *Catalog) Get(id string) *Template {
	return c.templates[id]
}

// Templates returns all templates in declaration order.
func (c *Catalog) Templates() []*Template {
	result := make([]*Template, 0, len(c.order))
	for _, id := range c.order {
		result = append(result, c.templates[id])
	}
	return result
}

// IDs returns the template IDs in declaration order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.order))
	copy(ids, c.order)
	return ids
}

// Len returns the number of templates in the catalog.
func (c *Catalog) Len() int {
	return len(c.order)
}

// Source returns the path the catalog was loaded from, if any.
func (c *Catalog) Source() string {
	return c.source
}
