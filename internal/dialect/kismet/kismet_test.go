package kismet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ruleforge/internal/dialect"
	"ruleforge/internal/rules"
)

func TestParse_SuccessionClause(t *testing.T) {
	src := `
% succession logic
% @meta priority=9
noble_succession :- person(Heir), noble(Lord), parent_of(Lord, Heir), eldest_child(Heir), dies(Lord) => inherit_title(Heir, Lord.title).
`
	parsed, diags := NewParser().Parse(src)
	require.Len(t, parsed, 1)
	assert.Empty(t, diags)

	r := parsed[0]
	assert.Equal(t, "noble_succession", r.Name)
	assert.Equal(t, 9, r.Priority)
	assert.Equal(t, "kismet", r.SourceDialect)

	require.NotNil(t, r.Conditions)
	assert.Equal(t, rules.CombAnd, r.Conditions.Comb)
	assert.Len(t, r.Conditions.Children, 5)

	require.Len(t, r.Effects, 1)
	assert.Equal(t, "inherit_title", r.Effects[0].Action)
	assert.Equal(t, rules.Var("heir"), r.Effects[0].Args[0])
	assert.Equal(t, rules.FieldOf(rules.Var("lord"), "title"), r.Effects[0].Args[1])
}

func TestParse_MetaCarriesAllFields(t *testing.T) {
	src := `
% @meta type=trigger priority=2 likelihood=0.75 tags=social,mood requires=greeting,weather inactive
small_talk :- met(A, B) => emit(chat_event(A, B)).
`
	parsed, diags := NewParser().Parse(src)
	require.Len(t, parsed, 1)
	assert.Empty(t, diags)

	r := parsed[0]
	assert.Equal(t, "trigger", r.RuleType)
	assert.Equal(t, 2, r.Priority)
	assert.Equal(t, 0.75, r.Likelihood)
	assert.Equal(t, []string{"social", "mood"}, r.Tags)
	assert.Equal(t, []string{"greeting", "weather"}, r.Dependencies)
	assert.False(t, r.IsActive)
	assert.Equal(t, rules.EffectEvent, r.Effects[0].Kind)
}

func TestParse_VariableAndAtomConvention(t *testing.T) {
	src := `mood_shift :- mood(Person, happy), weather(rain), loud("very loud"), count(3), flag(true) => cheer(Person).`
	parsed, diags := NewParser().Parse(src)
	require.Len(t, parsed, 1)
	assert.Empty(t, diags)

	leaves := parsed[0].Conditions.Leaves()
	require.Len(t, leaves, 5)
	assert.Equal(t, rules.Var("person"), leaves[0].Args[0])
	assert.Equal(t, rules.Str("happy"), leaves[0].Args[1])
	assert.Equal(t, rules.Str("rain"), leaves[1].Args[0])
	assert.Equal(t, rules.Str("very loud"), leaves[2].Args[0])
	assert.Equal(t, rules.Num(3), leaves[3].Args[0])
	assert.Equal(t, rules.Bool(true), leaves[4].Args[0])
}

func TestParse_DisjunctionAndNegation(t *testing.T) {
	src := `alarm :- danger(X); (\+ calm(X), night()) => emit(alarm_event(X)).`
	parsed, diags := NewParser().Parse(src)
	require.Len(t, parsed, 1)
	assert.Empty(t, diags)

	cond := parsed[0].Conditions
	assert.Equal(t, rules.CombOr, cond.Comb)
	require.Len(t, cond.Children, 2)
	inner := cond.Children[1]
	assert.Equal(t, rules.CombAnd, inner.Comb)
	assert.Equal(t, rules.CombNot, inner.Children[0].Comb)
}

func TestParse_EffectWrappers(t *testing.T) {
	src := `festival :- spring() => open_gates(), emit(festival_event()), create(Feast(town)), narrate(festival_scene(town)).`
	parsed, diags := NewParser().Parse(src)
	require.Len(t, parsed, 1)
	assert.Empty(t, diags)

	effs := parsed[0].Effects
	require.Len(t, effs, 4)
	assert.Equal(t, rules.EffectMutation, effs[0].Kind)
	assert.Equal(t, rules.EffectEvent, effs[1].Kind)
	assert.Equal(t, rules.EffectCreate, effs[2].Kind)
	assert.Equal(t, "Feast", effs[2].Action)
	assert.Equal(t, rules.EffectNarrate, effs[3].Kind)
}

func TestParse_MultiLineClause(t *testing.T) {
	src := `
courtship :-
    single(Suitor),
    single(Beloved)
    => propose(Suitor, Beloved).
`
	parsed, diags := NewParser().Parse(src)
	require.Len(t, parsed, 1)
	assert.Empty(t, diags)
	assert.Len(t, parsed[0].Conditions.Children, 2)
}

func TestParse_FaultIsolation(t *testing.T) {
	src := `
good_one :- ready(X) => act(X).
broken :- ready(X => act(X).
good_two :- ready(Y) => act(Y).
`
	parsed, diags := NewParser().Parse(src)
	require.Len(t, parsed, 2)
	assert.Equal(t, "good_one", parsed[0].Name)
	assert.Equal(t, "good_two", parsed[1].Name)

	require.Len(t, diags, 1)
	assert.Equal(t, rules.SeverityError, diags[0].Severity)
	assert.Equal(t, "broken", diags[0].Rule)
}

func TestParse_UnterminatedClause(t *testing.T) {
	parsed, diags := NewParser().Parse("dangling :- ready(X) => act(X)")
	assert.Empty(t, parsed)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "unterminated")
}

func TestRoundTrip_PrettyAndCompact(t *testing.T) {
	src := `
% @meta type=volition-rule priority=7 likelihood=0.6 tags=conflict requires=reputation inactive
rivalry :- rivals(A, B), (won(B); praised(B)), \+ gracious(A) => sabotage(A, B), narrate(rivalry_scene(A, B)).
`
	original, diags := NewParser().Parse(src)
	require.Len(t, original, 1)
	require.Empty(t, diags)

	for _, pretty := range []bool{true, false} {
		text := NewEmitter().Render(original, dialect.RenderOptions{Pretty: pretty})
		reparsed, rediags := NewParser().Parse(text)
		require.Empty(t, rediags, "pretty=%v output: %s", pretty, text)
		require.Len(t, reparsed, 1)
		assert.True(t, original[0].Equal(reparsed[0]), "pretty=%v output: %s", pretty, text)
	}
}

func TestRender_MetaLineAlwaysPresent(t *testing.T) {
	r := rules.NewRule("steady")
	r.Conditions = rules.Leaf("calm", rules.Var("p"))
	r.Effects = []rules.Effect{{Action: "stay", Args: []rules.Term{rules.Var("p")}, Kind: rules.EffectMutation}}

	text := NewEmitter().Render([]*rules.Rule{r}, dialect.RenderOptions{})
	assert.Contains(t, text, "% @meta priority=5 likelihood=1\n")
	assert.Contains(t, text, "steady :- calm(P) => stay(P).")
}

func TestEmitVar_EverySpellingRecoverable(t *testing.T) {
	assert.Equal(t, "Heir", emitVar("heir"))
	assert.Equal(t, "_Lord", emitVar("Lord"))
	assert.Equal(t, "_hidden", emitVar("_hidden"))
	assert.Equal(t, "__Lord", emitVar("_Lord"))
	assert.Equal(t, "_", emitVar(""))

	for _, name := range []string{"heir", "Lord", "_hidden", "_Lord", "__x", "_"} {
		assert.Equal(t, name, canonicalVar(emitVar(name)))
	}
}

func TestRoundTrip_UppercaseLeadingVariable(t *testing.T) {
	r := rules.NewRule("succession")
	r.Conditions = rules.Leaf("noble", rules.Var("Lord"))
	r.Effects = []rules.Effect{{Action: "crown", Args: []rules.Term{rules.Var("Lord")}, Kind: rules.EffectMutation}}

	for _, pretty := range []bool{true, false} {
		text := NewEmitter().Render([]*rules.Rule{r}, dialect.RenderOptions{Pretty: pretty})
		assert.Contains(t, text, "_Lord")
		reparsed, diags := NewParser().Parse(text)
		require.Empty(t, diags, "pretty=%v output: %s", pretty, text)
		require.Len(t, reparsed, 1)
		assert.True(t, r.Equal(reparsed[0]), "pretty=%v output: %s", pretty, text)
	}
}

func TestParse_MutationActionSpelledLikeWrapper(t *testing.T) {
	src := `relay :- ready(X) => emit(X), create(), emit(narrate("tale")).`
	parsed, diags := NewParser().Parse(src)
	require.Len(t, parsed, 1)
	assert.Empty(t, diags)

	effs := parsed[0].Effects
	require.Len(t, effs, 3)
	assert.Equal(t, "emit", effs[0].Action)
	assert.Equal(t, rules.EffectMutation, effs[0].Kind)
	assert.Equal(t, rules.Var("x"), effs[0].Args[0])
	assert.Equal(t, "create", effs[1].Action)
	assert.Equal(t, rules.EffectMutation, effs[1].Kind)
	assert.Equal(t, "narrate", effs[2].Action)
	assert.Equal(t, rules.EffectEvent, effs[2].Kind)
}
