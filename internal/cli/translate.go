package cli

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/adforge/adforge/pkg/binding"
)

// translateCommand creates the translate command, which translates a
// template's copy fields and prints the result without rendering.
func (c *CLI) translateCommand() *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "translate <template> <lang>",
		Short: "Translate a template's copy fields",
		Long: `Translate loads the template's default values and translates every
text field to the target language. Uploads and style fields pass
through untouched.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.Config()
			if err != nil {
				return err
			}
			if source == "" {
				source = cfg.Translate.SourceLang
			}

			engine := binding.NewEngine(c.newLoader(cfg.Templates))
			if err := engine.Load(ctx, args[0]); err != nil {
				return err
			}
			snapshot, err := engine.Snapshot()
			if err != nil {
				return err
			}

			sp := newSpinnerWithContext(ctx, "Translating "+args[0])
			sp.Start()
			res, err := c.newTranslator(ctx, cfg).TranslateFields(ctx, snapshot, source, args[1])
			sp.Stop()
			if err != nil {
				return err
			}

			names := make([]string, 0, len(res.Values))
			for name := range res.Values {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				if res.Values[name] == snapshot[name] {
					continue
				}
				printKeyValue(name, res.Values[name])
			}

			if res.AllUnchanged() {
				printWarning("No field could be translated to %s", args[1])
				return nil
			}
			printInfo("Translated %d fields, skipped %d, failed %d", res.Translated, res.Skipped, res.Failed)
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "source language (defaults to config)")
	return cmd
}
