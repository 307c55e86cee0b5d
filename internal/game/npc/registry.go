package npc

import (
	"embed"
	"fmt"
	"sort"
	"strings"
)

//go:embed content
var defaultContent embed.FS

// DefaultTemplateID names the template used when a requested enemy is unknown.
const DefaultTemplateID = "goblin"

// Registry is an immutable lookup of enemy templates by id or display name.
type Registry struct {
	byKey    map[string]*Template
	ordered  []*Template
	fallback *Template
}

// Key normalises an enemy id or display name: "Goblin Scout" and
// "goblin_scout" share a key.
func Key(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}

// NewRegistry indexes templates by id and name.
//
// Precondition: every template has passed Validate.
// Postcondition: Returns an error when ids collide or no template has id fallbackID.
func NewRegistry(templates []*Template, fallbackID string) (*Registry, error) {
	r := &Registry{byKey: make(map[string]*Template, len(templates)*2)}
	for _, t := range templates {
		id := Key(t.ID)
		if _, dup := r.byKey[id]; dup {
			return nil, fmt.Errorf("npc registry: duplicate template id %q", t.ID)
		}
		r.byKey[id] = t
		r.ordered = append(r.ordered, t)
	}
	for _, t := range templates {
		if name := Key(t.Name); r.byKey[name] == nil {
			r.byKey[name] = t
		}
	}
	r.fallback = r.byKey[Key(fallbackID)]
	if r.fallback == nil {
		return nil, fmt.Errorf("npc registry: fallback template %q not found", fallbackID)
	}
	sort.Slice(r.ordered, func(i, j int) bool { return r.ordered[i].ID < r.ordered[j].ID })
	return r, nil
}

// LoadRegistry loads templates from dir, or the embedded defaults when dir is empty.
//
// Postcondition: Returns a Registry with the goblin fallback, or an error.
func LoadRegistry(dir string) (*Registry, error) {
	var (
		templates []*Template
		err       error
	)
	if dir == "" {
		templates, err = LoadTemplatesFS(defaultContent, "content/enemies")
	} else {
		templates, err = LoadTemplates(dir)
	}
	if err != nil {
		return nil, err
	}
	return NewRegistry(templates, DefaultTemplateID)
}

// DefaultRegistry returns the registry over the embedded enemy content.
func DefaultRegistry() *Registry {
	r, err := LoadRegistry("")
	if err != nil {
		panic("npc: embedded content: " + err.Error())
	}
	return r
}

// Lookup returns the template for an id or display name.
func (r *Registry) Lookup(name string) (*Template, bool) {
	t, ok := r.byKey[Key(name)]
	return t, ok
}

// Resolve returns the named template, or the fallback template when the
// name is unknown.
//
// Postcondition: Never returns nil.
func (r *Registry) Resolve(name string) *Template {
	if t, ok := r.Lookup(name); ok {
		return t
	}
	return r.fallback
}

// All returns every template ordered by id.
func (r *Registry) All() []*Template {
	out := make([]*Template, len(r.ordered))
	copy(out, r.ordered)
	return out
}
