package tott

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ruleforge/internal/dialect"
	"ruleforge/internal/rules"
)

func TestParse_DefWithHeaderParams(t *testing.T) {
	src := `
# succession rules
def rule noble_succession(type=trigger, priority=9):
    if person(heir) and noble(lord) and parent_of(lord, heir) and dies(lord):
        inherit_title(heir, lord.title)
    tags: succession, nobility
`
	parsed, diags := NewParser().Parse(src)
	require.Len(t, parsed, 1)
	assert.Empty(t, diags)

	r := parsed[0]
	assert.Equal(t, "noble_succession", r.Name)
	assert.Equal(t, "trigger", r.RuleType)
	assert.Equal(t, 9, r.Priority)
	assert.Equal(t, []string{"succession", "nobility"}, r.Tags)
	assert.Equal(t, "tott", r.SourceDialect)

	require.NotNil(t, r.Conditions)
	assert.Len(t, r.Conditions.Children, 4)

	require.Len(t, r.Effects, 1)
	assert.Equal(t, rules.Var("heir"), r.Effects[0].Args[0])
	assert.Equal(t, rules.FieldOf(rules.Var("lord"), "title"), r.Effects[0].Args[1])
}

func TestParse_CarrierAnnotations(t *testing.T) {
	src := `
# @likelihood 0.45
# @requires adulthood,residency
# @inactive
def rule settle_down(priority=3):
    if wanderer(p):
        buy_house(p)
`
	parsed, diags := NewParser().Parse(src)
	require.Len(t, parsed, 1)
	assert.Empty(t, diags)

	r := parsed[0]
	assert.Equal(t, 0.45, r.Likelihood)
	assert.Equal(t, 3, r.Priority)
	assert.Equal(t, []string{"adulthood", "residency"}, r.Dependencies)
	assert.False(t, r.IsActive)
}

func TestParse_BareIdentsAreVariables(t *testing.T) {
	src := `
def rule gossip():
    if heard(listener, "a juicy rumor") and bored(listener, True) and patience(listener, 2):
        emit gossip_event(listener)
`
	parsed, diags := NewParser().Parse(src)
	require.Len(t, parsed, 1)
	assert.Empty(t, diags)

	leaves := parsed[0].Conditions.Leaves()
	require.Len(t, leaves, 3)
	assert.Equal(t, rules.Var("listener"), leaves[0].Args[0])
	assert.Equal(t, rules.Str("a juicy rumor"), leaves[0].Args[1])
	assert.Equal(t, rules.Bool(true), leaves[1].Args[1])
	assert.Equal(t, rules.Num(2), leaves[2].Args[1])
	assert.Equal(t, rules.EffectEvent, parsed[0].Effects[0].Kind)
}

func TestParse_PassBody(t *testing.T) {
	src := `
def rule placeholder():
    pass
`
	parsed, diags := NewParser().Parse(src)
	require.Len(t, parsed, 1)
	assert.Empty(t, diags)
	assert.Nil(t, parsed[0].Conditions)
	assert.Empty(t, parsed[0].Effects)
}

func TestParse_FaultIsolation(t *testing.T) {
	src := `
def rule good_one():
    if ready(p):
        act(p)

def rule broken():
    if ready(p)
        act(p)

def rule good_two():
    if ready(q):
        act(q)
`
	parsed, diags := NewParser().Parse(src)
	require.Len(t, parsed, 2)
	assert.Equal(t, "good_one", parsed[0].Name)
	assert.Equal(t, "good_two", parsed[1].Name)

	require.Len(t, diags, 1)
	assert.Equal(t, rules.SeverityError, diags[0].Severity)
	assert.Equal(t, "broken", diags[0].Rule)
}

func TestParse_JunkBetweenDefs(t *testing.T) {
	src := `
not a definition at all

def rule survivor():
    if alive(p):
        persist(p)
`
	parsed, diags := NewParser().Parse(src)
	require.Len(t, parsed, 1)
	assert.Equal(t, "survivor", parsed[0].Name)
	require.Len(t, diags, 1)
	assert.Equal(t, rules.SeverityError, diags[0].Severity)
}

func TestRoundTrip_PrettyAndCompact(t *testing.T) {
	src := `
# @likelihood 0.6
# @requires reputation
# @inactive
def rule rivalry(type=volition-rule, priority=7):
    if rivals(a, b) and (won(b) or praised(b)) and not gracious(a):
        sabotage(a, b)
        narrate rivalry_scene(a, b)
    tags: conflict
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

func TestRender_StringConstantsStayQuoted(t *testing.T) {
	r := rules.NewRule("mood_check")
	r.Conditions = rules.Leaf("mood", rules.Var("p"), rules.Str("happy"))
	r.Effects = []rules.Effect{{Action: "cheer", Args: []rules.Term{rules.Var("p"), rules.Bool(true)}, Kind: rules.EffectMutation}}

	text := NewEmitter().Render([]*rules.Rule{r}, dialect.RenderOptions{})
	assert.Contains(t, text, `mood(p, "happy")`)
	assert.Contains(t, text, "cheer(p, True)")

	reparsed, diags := NewParser().Parse(text)
	require.Empty(t, diags)
	require.Len(t, reparsed, 1)
	assert.True(t, r.Equal(reparsed[0]))
}

func TestRender_EmptyRuleEmitsPass(t *testing.T) {
	r := rules.NewRule("placeholder")
	text := NewEmitter().Render([]*rules.Rule{r}, dialect.RenderOptions{Pretty: true})
	assert.Contains(t, text, "def rule placeholder(priority=5):\n")
	assert.Contains(t, text, "    pass\n")
}
