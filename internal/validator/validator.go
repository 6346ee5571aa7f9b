// Package validator runs the static checks over canonical rules. Checks are
// ordered deterministically: rules in input order, checks in a fixed
// sequence, so validating unchanged content twice yields identical
// diagnostics in identical order.
package validator

import (
	"github.com/rs/zerolog/log"

	"ruleforge/internal/rules"
	"ruleforge/internal/ruleset"
	"ruleforge/internal/vocab"
)

// Report is the validation outcome. IsValid is true iff Errors is empty;
// warnings and suggestions never affect it.
type Report struct {
	IsValid     bool
	Errors      []rules.Diagnostic
	Warnings    []rules.Diagnostic
	Suggestions []rules.Diagnostic
}

// Options carries the optional external collaborators.
type Options struct {
	// Vocabulary is the read-only registry of known predicate/action names.
	// Nil skips the vocabulary checks entirely.
	Vocabulary *vocab.Vocabulary
}

// Validate runs every check over rs. Out-of-range numeric fields are clamped
// in place with a warning, matching parser behavior for programmatically
// built rules.
func Validate(rs []*rules.Rule, opts Options) Report {
	log.Debug().Int("rules", len(rs)).Msg("validating rule set")

	var rep Report

	checkDuplicates(rs, &rep)
	checkRanges(rs, &rep)
	checkDependencies(rs, &rep)
	checkCycles(rs, &rep)
	checkTags(rs, &rep)
	if opts.Vocabulary != nil {
		checkVocabulary(rs, opts.Vocabulary, &rep)
	}

	rep.IsValid = len(rep.Errors) == 0
	return rep
}

func checkDuplicates(rs []*rules.Rule, rep *Report) {
	seen := make(map[string]bool, len(rs))
	for _, r := range rs {
		if seen[r.Name] {
			rep.Errors = append(rep.Errors,
				rules.Errf(rules.CodeDuplicate, r.Name, 0, "duplicate rule name %q", r.Name))
			continue
		}
		seen[r.Name] = true
	}
}

func checkRanges(rs []*rules.Rule, rep *Report) {
	for _, r := range rs {
		if v, clamped := rules.ClampPriority(r.Priority); clamped {
			rep.Warnings = append(rep.Warnings,
				rules.Warnf(rules.CodeRange, r.Name, 0,
					"priority %d outside [%d,%d], clamped to %d",
					r.Priority, rules.MinPriority, rules.MaxPriority, v))
			r.Priority = v
		}
		if v, clamped := rules.ClampLikelihood(r.Likelihood); clamped {
			rep.Warnings = append(rep.Warnings,
				rules.Warnf(rules.CodeRange, r.Name, 0,
					"likelihood %g outside [%g,%g], clamped to %g",
					r.Likelihood, rules.MinLikelihood, rules.MaxLikelihood, v))
			r.Likelihood = v
		}
	}
}

func checkDependencies(rs []*rules.Rule, rep *Report) {
	known := make(map[string]bool, len(rs))
	for _, r := range rs {
		known[r.Name] = true
	}
	for _, r := range rs {
		for _, dep := range r.Dependencies {
			if !known[dep] {
				// Rule sets are assembled incrementally across files, so an
				// unresolved name is a warning, never a rejection.
				rep.Warnings = append(rep.Warnings,
					rules.Warnf(rules.CodeReference, r.Name, 0,
						"dependency %q not found in this rule set", dep))
			}
		}
	}
}

func checkCycles(rs []*rules.Rule, rep *Report) {
	graph := make(map[string][]string, len(rs))
	for _, r := range rs {
		if _, dup := graph[r.Name]; dup {
			continue
		}
		graph[r.Name] = append([]string(nil), r.Dependencies...)
	}
	for _, cycle := range ruleset.FindCycles(graph) {
		rep.Errors = append(rep.Errors,
			rules.Errf(rules.CodeCycle, cycle.Cycle[0], 0, "%s", cycle.Error()))
	}
}

func checkTags(rs []*rules.Rule, rep *Report) {
	for _, r := range rs {
		seen := make(map[string]bool, len(r.Tags))
		for _, tag := range r.Tags {
			if tag == "" {
				rep.Suggestions = append(rep.Suggestions,
					rules.Suggestf(rules.CodeTag, r.Name, 0, "empty tag entry"))
				continue
			}
			if seen[tag] {
				rep.Suggestions = append(rep.Suggestions,
					rules.Suggestf(rules.CodeTag, r.Name, 0, "duplicate tag %q", tag))
			}
			seen[tag] = true
		}
	}
}

func checkVocabulary(rs []*rules.Rule, v *vocab.Vocabulary, rep *Report) {
	for _, r := range rs {
		for _, pred := range r.Conditions.Leaves() {
			if !v.HasPredicate(pred.Functor) {
				rep.Suggestions = append(rep.Suggestions,
					rules.Suggestf(rules.CodeVocab, r.Name, 0,
						"predicate %q is not in the known-predicate registry", pred.Functor))
			}
		}
		for _, eff := range r.Effects {
			if !v.HasAction(eff.Action) {
				rep.Suggestions = append(rep.Suggestions,
					rules.Suggestf(rules.CodeVocab, r.Name, 0,
						"action %q is not in the known-action registry", eff.Action))
			}
		}
	}
}
