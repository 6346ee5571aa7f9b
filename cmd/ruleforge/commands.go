package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"ruleforge/internal/dialect"
	"ruleforge/internal/rules"
	"ruleforge/internal/validator"
	"ruleforge/internal/vocab"
	"ruleforge/pkg/compiler"
)

var (
	compileDialect string
	exportFrom     string
	exportTo       string
	exportPretty   bool
	bindingsPath   string
	validateTag    string
	vocabPath      string
	switchFrom     string
	switchTo       string
)

var compileCmd = &cobra.Command{
	Use:   "compile <file>",
	Short: "Parse a rule file and report what it contains",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := dialect.FromString(compileDialect)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		res, err := compiler.Compile(string(content), d)
		if err != nil {
			return err
		}
		printDiagnostics(res.Diagnostics)
		fmt.Printf("%d rule(s) parsed\n", len(res.Rules))
		for _, r := range res.Rules {
			fmt.Printf("  %s (type=%s priority=%d likelihood=%g)\n",
				r.Name, r.RuleType, r.Priority, r.Likelihood)
		}
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Re-emit a rule file in another dialect",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := dialect.FromString(exportFrom)
		if err != nil {
			return err
		}
		to, err := dialect.FromString(exportTo)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		res, err := compiler.Compile(string(content), from)
		if err != nil {
			return err
		}
		printDiagnostics(res.Diagnostics)

		var bindings rules.NameContext
		if bindingsPath != "" {
			bindings, err = loadBindings(bindingsPath)
			if err != nil {
				return err
			}
		}
		text, err := compiler.Export(res.Rules, to, compiler.ExportOptions{
			PrettyPrint: exportPretty,
			Bindings:    bindings,
		})
		if err != nil {
			return err
		}
		fmt.Print(text)
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Run static checks over a rule file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := dialect.FromString(validateTag)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var opts validator.Options
		if vocabPath != "" {
			opts.Vocabulary, err = vocab.Load(vocabPath)
			if err != nil {
				return err
			}
		}
		rep, err := compiler.Validate(string(content), d, opts)
		if err != nil {
			return err
		}
		printDiagnostics(rep.Errors)
		printDiagnostics(rep.Warnings)
		printDiagnostics(rep.Suggestions)
		if !rep.IsValid {
			return fmt.Errorf("%d error(s)", len(rep.Errors))
		}
		fmt.Println("valid")
		return nil
	},
}

var switchCmd = &cobra.Command{
	Use:   "switch <file>",
	Short: "Convert a rule file between dialects, failing closed on unparseable input",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := dialect.FromString(switchFrom)
		if err != nil {
			return err
		}
		to, err := dialect.FromString(switchTo)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		res, err := compiler.SwitchDialect(string(content), from, to)
		if err != nil {
			return err
		}
		if res.Warning != nil {
			log.Warn().Msg(res.Warning.Message)
		}
		fmt.Print(res.Content)
		return nil
	},
}

func printDiagnostics(diags []rules.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, d.String())
	}
}

func loadBindings(path string) (rules.NameContext, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bindings file: %w", err)
	}
	var nc rules.NameContext
	if err := yaml.Unmarshal(data, &nc); err != nil {
		return nil, fmt.Errorf("failed to parse bindings file: %w", err)
	}
	return nc, nil
}

func init() {
	compileCmd.Flags().StringVarP(&compileDialect, "dialect", "d", "", "source dialect (insimul|ensemble|kismet|tott)")
	_ = compileCmd.MarkFlagRequired("dialect")

	exportCmd.Flags().StringVar(&exportFrom, "from", "", "source dialect")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "target dialect")
	exportCmd.Flags().BoolVar(&exportPretty, "pretty", true, "pretty-print the exported text")
	exportCmd.Flags().StringVar(&bindingsPath, "bindings", "", "YAML file of {id, name} bindings for example comments")
	_ = exportCmd.MarkFlagRequired("from")
	_ = exportCmd.MarkFlagRequired("to")

	validateCmd.Flags().StringVarP(&validateTag, "dialect", "d", "", "source dialect")
	validateCmd.Flags().StringVar(&vocabPath, "vocab", "", "YAML file of known predicate/action names")
	_ = validateCmd.MarkFlagRequired("dialect")

	switchCmd.Flags().StringVar(&switchFrom, "from", "", "declared source dialect")
	switchCmd.Flags().StringVar(&switchTo, "to", "", "target dialect")
	_ = switchCmd.MarkFlagRequired("from")
	_ = switchCmd.MarkFlagRequired("to")
}
