package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mta-tools/wycena/internal/catalog"
	"github.com/mta-tools/wycena/internal/model"
	"github.com/mta-tools/wycena/internal/store"
	"github.com/mta-tools/wycena/internal/valuation"
)

var pricesCmd = &cobra.Command{
	Use:   "prices",
	Short: "Inspect and manage crowd-sourced special color prices",
}

// -- prices list --

var pricesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored special color prices",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		typ, _ := cmd.Flags().GetString("type")
		recs, err := st.ListSpecialColorPrices(ctx, model.SpecialColorType(typ))
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			fmt.Fprintln(os.Stderr, "No prices stored.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TYPE\tNAME\tRARITY\tPRICE\tADDED BY\tUPDATED")
		for _, r := range recs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				r.Type, r.Name, r.Rarity, valuation.FormatMoney(r.Price),
				r.AddedBy, r.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

// -- prices set --

var pricesSetCmd = &cobra.Command{
	Use:   "set <lights|dashboard> <name> <rarity> <price>",
	Short: "Store one special color price",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		typ, err := parseColorType(args[0])
		if err != nil {
			return err
		}
		price, err := catalog.ParseMoney(args[3])
		if err != nil || price <= 0 {
			return eris.Errorf("'%s' is not a valid price", args[3])
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		rec := model.SpecialColorPrice{
			Type:    typ,
			Name:    args[1],
			Rarity:  args[2],
			Price:   price,
			AddedBy: "cli",
		}
		if err := st.UpsertSpecialColorPrice(ctx, rec); err != nil {
			return err
		}
		fmt.Printf("stored %s '%s - %s' = %s\n", typ, args[1], args[2], valuation.FormatMoney(price))
		return nil
	},
}

// -- prices import --

var pricesImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Bulk-load special color prices from a delimited file",
	Long:  "Reads 'type;name;rarity;price' lines (blank lines and # comments skipped) and upserts them. On Postgres the whole file goes in as one bulk merge.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		recs, err := readPriceFile(args[0])
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			fmt.Fprintln(os.Stderr, "Nothing to import.")
			return nil
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if pg, ok := st.(*store.PostgresStore); ok {
			n, err := pg.SeedSpecialColorPrices(ctx, recs)
			if err != nil {
				return err
			}
			fmt.Printf("imported %d price(s)\n", n)
			return nil
		}

		for _, rec := range recs {
			if err := st.UpsertSpecialColorPrice(ctx, rec); err != nil {
				return err
			}
		}
		fmt.Printf("imported %d price(s)\n", len(recs))
		return nil
	},
}

// readPriceFile parses 'type;name;rarity;price' lines.
func readPriceFile(path string) ([]model.SpecialColorPrice, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open %s", path)
	}
	defer f.Close() //nolint:errcheck

	var recs []model.SpecialColorPrice
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, ";")
		if len(fields) != 4 {
			zap.L().Warn("prices import: skipping malformed line",
				zap.String("file", path), zap.Int("line", lineNo))
			continue
		}
		typ, err := parseColorType(fields[0])
		if err != nil {
			zap.L().Warn("prices import: skipping unknown type",
				zap.String("file", path), zap.Int("line", lineNo), zap.String("type", fields[0]))
			continue
		}
		price, err := catalog.ParseMoney(fields[3])
		if err != nil || price <= 0 {
			zap.L().Warn("prices import: skipping bad price",
				zap.String("file", path), zap.Int("line", lineNo), zap.String("price", fields[3]))
			continue
		}
		recs = append(recs, model.SpecialColorPrice{
			Type:    typ,
			Name:    strings.TrimSpace(fields[1]),
			Rarity:  strings.TrimSpace(fields[2]),
			Price:   price,
			AddedBy: "import",
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrapf(err, "read %s", path)
	}
	return recs, nil
}

func parseColorType(s string) (model.SpecialColorType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lights":
		return model.ColorLights, nil
	case "dashboard":
		return model.ColorDashboard, nil
	}
	return "", eris.Errorf("unknown color type '%s': use lights or dashboard", s)
}

func init() {
	pricesListCmd.Flags().String("type", "", "filter by color type (lights or dashboard)")
	pricesCmd.AddCommand(pricesListCmd)
	pricesCmd.AddCommand(pricesSetCmd)
	pricesCmd.AddCommand(pricesImportCmd)
	rootCmd.AddCommand(pricesCmd)
}
