package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/impactlens/internal/taxonomy"
	"github.com/spf13/cobra"
)

// taxonomyCmd represents the taxonomy command
var taxonomyCmd = &cobra.Command{
	Use:   "taxonomy",
	Short: "Inspect and validate factor taxonomies",
}

var taxonomyValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a taxonomy file (default: built-in)",
	Long: `Validate checks that category weights and each category's factor weights
sum to 1, that all four categories exist, that override attributes are only
used in keystone and that every attribute pattern compiles.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		tax, err := taxonomy.Load(path)
		if err != nil {
			return err
		}
		if path == "" {
			path = "built-in taxonomy"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is valid (%d categories, %d factors)\n", path, len(tax.Categories), tax.FactorCount())
		return nil
	},
}

var taxonomyShowCmd = &cobra.Command{
	Use:   "show [file]",
	Short: "Print categories, factors and weights",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		tax, err := taxonomy.Load(path)
		if err != nil {
			return err
		}
		printTaxonomy(cmd.OutOrStdout(), tax)
		return nil
	},
}

func printTaxonomy(w io.Writer, tax *taxonomy.Taxonomy) {
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
	fmt.Fprintln(w, "  Factor Taxonomy")
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
	for _, c := range tax.Categories {
		fmt.Fprintf(w, "\n%s (%s) %.0f%%\n", c.Name, c.Key, c.Weight*100)
		for _, f := range c.Factors {
			extra := ""
			if f.Override != "" {
				extra = " [override: " + f.Override + "]"
			}
			if f.NameFloor != nil {
				extra = fmt.Sprintf(" [name floor: %d]", f.NameFloor.Value)
			}
			fmt.Fprintf(w, "  %-22s %5.1f%%%s\n", f.ID, f.Weight*100, extra)
			fmt.Fprintf(w, "  %-22s %s\n", "", strings.Join(f.Keywords, ", "))
		}
	}
	fmt.Fprintln(w)
}

func init() {
	rootCmd.AddCommand(taxonomyCmd)
	taxonomyCmd.AddCommand(taxonomyValidateCmd)
	taxonomyCmd.AddCommand(taxonomyShowCmd)
}
