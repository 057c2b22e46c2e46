// Package catalog is the closed registry of component types a generated UI
// tree may use: each type's prop schema, whether it accepts children, which
// props bind to the data model, and the actions interactive components may
// trigger.
//
// The catalog is loaded once (from the embedded catalog.yaml or a file) and is
// immutable afterwards, so a single *Catalog can be shared by every
// normalizer and documentation generator in the process.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/google/cel-go/cel"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embedded []byte

// BindingKind is the kind of value a binding prop points at.
type BindingKind string

const (
	BindRows    BindingKind = "rows"
	BindSelect  BindingKind = "select"
	BindSlider  BindingKind = "slider"
	BindBoolean BindingKind = "boolean"
	BindString  BindingKind = "string"
	BindNumber  BindingKind = "number"
	BindSeries  BindingKind = "series"
)

// Range bounds a numeric prop.
type Range struct {
	Min     float64 `yaml:"min" json:"min"`
	Max     float64 `yaml:"max" json:"max"`
	Default float64 `yaml:"default" json:"default"`
	Integer bool    `yaml:"integer,omitempty" json:"integer,omitempty"`
}

// Clamp coerces v into the range. Non-numeric input yields the default.
func (r Range) Clamp(v any) float64 {
	f, ok := v.(float64)
	if !ok {
		return r.Default
	}
	if r.Integer {
		f = float64(int64(f))
	}
	if f < r.Min {
		return r.Min
	}
	if f > r.Max {
		return r.Max
	}
	return f
}

// Rule is a CEL expression over `props` that must evaluate to true.
type Rule struct {
	Expr    string `yaml:"expr" json:"expr"`
	Message string `yaml:"message" json:"message"`
}

// Component describes one allowed element type.
type Component struct {
	Name        string                       `yaml:"name" json:"name"`
	Description string                       `yaml:"description" json:"description"`
	Children    bool                         `yaml:"children,omitempty" json:"children,omitempty"`
	Props       map[string]any               `yaml:"props" json:"props"`
	Aliases     map[string]string            `yaml:"aliases,omitempty" json:"aliases,omitempty"`
	Synonyms    map[string]map[string]string `yaml:"synonyms,omitempty" json:"synonyms,omitempty"`
	Ranges      map[string]Range             `yaml:"ranges,omitempty" json:"ranges,omitempty"`
	Bindings    map[string]BindingKind       `yaml:"bindings,omitempty" json:"bindings,omitempty"`
	Rules       []Rule                       `yaml:"rules,omitempty" json:"rules,omitempty"`

	schema   *jsonschema.Schema
	programs []cel.Program
}

// Declares reports whether prop is part of the component's schema.
func (c *Component) Declares(prop string) bool {
	_, ok := c.properties()[prop]
	return ok
}

// DeclaredProps returns the schema's prop names, sorted.
func (c *Component) DeclaredProps() []string {
	props := c.properties()
	out := make([]string, 0, len(props))
	for k := range props {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Required returns the required prop names.
func (c *Component) Required() []string {
	raw, _ := c.Props["required"].([]any)
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if s, ok := r.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Enum returns the allowed values of an enum prop, or nil.
func (c *Component) Enum(prop string) []string {
	def, _ := c.properties()[prop].(map[string]any)
	raw, _ := def["enum"].([]any)
	if raw == nil {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		out = append(out, fmt.Sprint(v))
	}
	return out
}

func (c *Component) properties() map[string]any {
	props, _ := c.Props["properties"].(map[string]any)
	return props
}

// Actions lists the action names interactive components may use and the
// ones that are no longer permitted.
type Actions struct {
	Allowed []string `yaml:"allowed" json:"allowed"`
	Removed []string `yaml:"removed" json:"removed"`
}

type definition struct {
	Version    string       `yaml:"version" json:"version"`
	Actions    Actions      `yaml:"actions" json:"actions"`
	Components []*Component `yaml:"components" json:"components"`
}

// Catalog is the loaded, compiled registry.
type Catalog struct {
	version    *semver.Version
	def        definition
	components map[string]*Component
	allowed    map[string]bool
	removed    map[string]bool
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
	defaultErr  error
)

// Default returns the embedded catalog. It is parsed and compiled once.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCat, defaultErr = Load(embedded)
	})
	return defaultCat, defaultErr
}

// LoadFile loads a catalog definition from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Load(data)
}

// Load parses and compiles a YAML catalog definition.
func Load(data []byte) (*Catalog, error) {
	var def definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	version, err := semver.NewVersion(def.Version)
	if err != nil {
		return nil, fmt.Errorf("catalog version %q: %w", def.Version, err)
	}
	if len(def.Components) == 0 {
		return nil, fmt.Errorf("catalog %s declares no components", version)
	}

	c := &Catalog{
		version:    version,
		def:        def,
		components: make(map[string]*Component, len(def.Components)),
		allowed:    toSet(def.Actions.Allowed),
		removed:    toSet(def.Actions.Removed),
	}
	for name := range c.allowed {
		if c.removed[name] {
			return nil, fmt.Errorf("action %q is both allowed and removed", name)
		}
	}

	env, err := newRuleEnv()
	if err != nil {
		return nil, err
	}

	for _, comp := range def.Components {
		if comp.Name == "" {
			return nil, fmt.Errorf("catalog component without a name")
		}
		if _, dup := c.components[comp.Name]; dup {
			return nil, fmt.Errorf("component already registered: %s", comp.Name)
		}
		if comp.Props == nil {
			comp.Props = map[string]any{}
		}
		if err := c.compileSchema(comp); err != nil {
			return nil, err
		}
		if err := compileRules(env, comp); err != nil {
			return nil, err
		}
		for prop := range comp.Bindings {
			if !comp.Declares(prop) {
				return nil, fmt.Errorf("component %s binds undeclared prop %q", comp.Name, prop)
			}
		}
		c.components[comp.Name] = comp
	}
	return c, nil
}

func (c *Catalog) compileSchema(comp *Component) error {
	doc := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"$defs":                map[string]any{"action": c.actionSchema()},
	}
	for k, v := range comp.Props {
		doc[k] = v
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("component %s: encode schema: %w", comp.Name, err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	schemaURL := fmt.Sprintf("https://genui.schemas.local/catalog/%s.schema.json", comp.Name)
	if err := compiler.AddResource(schemaURL, strings.NewReader(string(raw))); err != nil {
		return fmt.Errorf("component %s: failed to load schema: %w", comp.Name, err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return fmt.Errorf("component %s: failed to compile schema: %w", comp.Name, err)
	}
	comp.schema = schema
	return nil
}

func (c *Catalog) actionSchema() map[string]any {
	names := make([]any, 0, len(c.def.Actions.Allowed))
	for _, n := range c.def.Actions.Allowed {
		names = append(names, n)
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":   map[string]any{"enum": names},
			"params": map[string]any{"type": "object"},
		},
		"required":             []any{"name"},
		"additionalProperties": false,
	}
}

// Version returns the catalog's semantic version.
func (c *Catalog) Version() *semver.Version { return c.version }

// Component returns the entry for a type name.
func (c *Catalog) Component(name string) (*Component, bool) {
	comp, ok := c.components[name]
	return comp, ok
}

// Names returns every component type name in declaration order.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.def.Components))
	for _, comp := range c.def.Components {
		out = append(out, comp.Name)
	}
	return out
}

// ActionAllowed reports whether name may be used by interactive components.
func (c *Catalog) ActionAllowed(name string) bool { return c.allowed[name] }

// ActionRemoved reports whether name is a no-longer-permitted action.
func (c *Catalog) ActionRemoved(name string) bool { return c.removed[name] }

// Actions returns the action lists.
func (c *Catalog) Actions() Actions { return c.def.Actions }

// MarshalJSON exposes the catalog definition.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	def := c.def
	def.Version = c.version.String()
	return json.Marshal(def)
}

func toSet(items []string) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, s := range items {
		out[s] = true
	}
	return out
}
