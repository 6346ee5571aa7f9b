package rules

// EffectKind distinguishes what an effect does when the simulator runs it.
type EffectKind string

const (
	EffectMutation EffectKind = "mutation" // state change on an entity
	EffectEvent    EffectKind = "event"    // event emission
	EffectCreate   EffectKind = "create"   // entity creation
	// EffectNarrate records a text-generation invocation. The template is
	// expanded by the simulator's template engine, never here.
	EffectNarrate EffectKind = "narrate"
)

// Effect is one entry of a rule's ordered effect list.
type Effect struct {
	Action string
	Args   []Term
	Kind   EffectKind
}

func (e Effect) Equal(o Effect) bool {
	if e.Action != o.Action || e.Kind != o.Kind || len(e.Args) != len(o.Args) {
		return false
	}
	for i := range e.Args {
		if !e.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return true
}

const (
	DefaultPriority   = 5
	DefaultLikelihood = 1.0

	MinPriority   = 0
	MaxPriority   = 10
	MinLikelihood = 0.0
	MaxLikelihood = 1.0
)

// Rule is the canonical, dialect-agnostic behavioral unit that every surface
// syntax parses into and renders from.
type Rule struct {
	Name         string
	RuleType     string // open enumeration; unknown values are preserved verbatim
	Priority     int
	Likelihood   float64
	Conditions   *Condition
	Effects      []Effect
	Tags         []string // set semantics, insertion order kept
	Dependencies []string
	IsActive     bool
	// SourceDialect is the tag of the dialect this rule was last parsed from.
	// Kept as a plain string so the model stays independent of the dialect
	// registry.
	SourceDialect string

	cachedOutput map[string]string
}

func NewRule(name string) *Rule {
	return &Rule{
		Name:       name,
		Priority:   DefaultPriority,
		Likelihood: DefaultLikelihood,
		IsActive:   true,
	}
}

// AddTag appends tag unless it is already present; reports whether it was added.
func (r *Rule) AddTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return false
		}
	}
	r.Tags = append(r.Tags, tag)
	return true
}

// CachedOutput returns previously rendered text for a dialect, if any.
func (r *Rule) CachedOutput(dialect string) (string, bool) {
	text, ok := r.cachedOutput[dialect]
	return text, ok
}

// CacheOutput stores rendered text for a dialect.
func (r *Rule) CacheOutput(dialect, text string) {
	if r.cachedOutput == nil {
		r.cachedOutput = make(map[string]string)
	}
	r.cachedOutput[dialect] = text
}

// InvalidateCache drops every cached rendering. Callers replace rule content
// wholesale (re-parse), so any logical change goes through here or through a
// fresh Rule value.
func (r *Rule) InvalidateCache() {
	r.cachedOutput = nil
}

// Equal reports structural equivalence: the relation the round-trip contract
// guarantees. SourceDialect and the render cache are cosmetic and ignored.
func (r *Rule) Equal(o *Rule) bool {
	if r == nil || o == nil {
		return r == o
	}
	if r.Name != o.Name || r.RuleType != o.RuleType ||
		r.Priority != o.Priority || r.Likelihood != o.Likelihood ||
		r.IsActive != o.IsActive {
		return false
	}
	if !r.Conditions.Equal(o.Conditions) {
		return false
	}
	if len(r.Effects) != len(o.Effects) {
		return false
	}
	for i := range r.Effects {
		if !r.Effects[i].Equal(o.Effects[i]) {
			return false
		}
	}
	return stringSlicesEqual(r.Tags, o.Tags) &&
		stringSlicesEqual(r.Dependencies, o.Dependencies)
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ClampPriority forces p into [MinPriority, MaxPriority]; the second result
// reports whether clamping changed the value.
func ClampPriority(p int) (int, bool) {
	switch {
	case p < MinPriority:
		return MinPriority, true
	case p > MaxPriority:
		return MaxPriority, true
	}
	return p, false
}

// ClampLikelihood forces l into [MinLikelihood, MaxLikelihood].
func ClampLikelihood(l float64) (float64, bool) {
	switch {
	case l < MinLikelihood:
		return MinLikelihood, true
	case l > MaxLikelihood:
		return MaxLikelihood, true
	}
	return l, false
}

// Binding pairs an entity id with an illustrative display name.
type Binding struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// NameContext substitutes illustrative character names into example text that
// emitters attach to exported rules. It never alters logical structure.
type NameContext []Binding

func (nc NameContext) Lookup(id string) (string, bool) {
	for _, b := range nc {
		if b.ID == id {
			return b.Name, true
		}
	}
	return "", false
}
