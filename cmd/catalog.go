package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mta-tools/wycena/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the price catalog files",
}

var catalogCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Load the catalog and report engine-upgrade interval problems",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cat, err := catalog.Load(cfg.Catalog.Dir)
		if err != nil {
			return err
		}

		fmt.Printf("catalog %s: %d salon rows, %d upgrade steps, %d bodykits, %d visual ids, %d visual names, %d mech keys\n",
			cfg.Catalog.Dir, len(cat.Salon), len(cat.EngineUpgrades), len(cat.Bodykits),
			len(cat.VisualByID), len(cat.VisualByName), len(cat.MechByKey))

		findings := cat.AuditEngineUpgrades()
		if len(findings) == 0 {
			fmt.Println("engine upgrade intervals: no gaps or overlaps")
			return nil
		}
		for _, f := range findings {
			fmt.Fprintln(os.Stderr, f)
		}
		return fmt.Errorf("%d engine upgrade interval problem(s)", len(findings))
	},
}

func init() {
	catalogCmd.AddCommand(catalogCheckCmd)
	rootCmd.AddCommand(catalogCmd)
}
