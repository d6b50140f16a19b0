package cli

import (
	"github.com/spf13/cobra"

	"github.com/adforge/adforge/pkg/field"
)

// fieldsCommand creates the fields command listing a template's
// editable fields and their classified types.
func (c *CLI) fieldsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fields <template>",
		Short: "List a template's editable fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.Config()
			if err != nil {
				return err
			}

			tmpl, err := c.newLoader(cfg.Templates).Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			names := tmpl.Fields()
			printInfo("%s declares %d fields", StyleHighlight.Render(tmpl.Name), len(names))
			for _, name := range names {
				t := field.Classify(name)
				line := string(t)
				if prop := field.StyleProperty(name); prop != "" {
					line += " " + StyleDim.Render("("+prop+")")
				}
				printKeyValue(name, line)
			}
			printNewline()
			printNextStep("Render", "adforge render "+tmpl.Name)
			return nil
		},
	}
	return cmd
}
