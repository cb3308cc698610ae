package main

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mta-tools/wycena/internal/catalog"
	"github.com/mta-tools/wycena/internal/valuation"
)

var evaluateConcurrency int

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <vuid>...",
	Short: "Value cached vehicles by VUID",
	Long:  "Runs the valuation engine for each VUID whose card is already on file. Vehicles without a cached card are reported and skipped; use the session command to paste new cards.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		vuids, err := parseVUIDs(args)
		if err != nil {
			return err
		}

		cat, err := catalog.Load(cfg.Catalog.Dir)
		if err != nil {
			return err
		}
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		eng := valuation.New(cat, st)

		var mu sync.Mutex
		reports := make(map[int]string, len(vuids))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(evaluateConcurrency)
		for _, vuid := range vuids {
			g.Go(func() error {
				card, err := st.GetVehicle(gctx, vuid)
				if err != nil {
					return err
				}
				if card == nil {
					mu.Lock()
					reports[vuid] = fmt.Sprintf("VUID %d: no cached card on file\n", vuid)
					mu.Unlock()
					return nil
				}

				res, err := eng.Evaluate(gctx, card)
				if err != nil {
					return err
				}
				zap.L().Debug("evaluated vehicle",
					zap.Int("vuid", vuid), zap.Int64("total", res.Total()), zap.Int("missing", len(res.Missing)))

				mu.Lock()
				reports[vuid] = res.Render(card)
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		for i, vuid := range vuids {
			if i > 0 {
				fmt.Println()
			}
			fmt.Print(reports[vuid])
		}
		return nil
	},
}

func parseVUIDs(args []string) ([]int, error) {
	vuids := make([]int, 0, len(args))
	seen := make(map[int]bool, len(args))
	for _, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil || v <= 0 {
			return nil, eris.Errorf("'%s' is not a vehicle id", a)
		}
		if seen[v] {
			continue
		}
		seen[v] = true
		vuids = append(vuids, v)
	}
	return vuids, nil
}

func init() {
	evaluateCmd.Flags().IntVar(&evaluateConcurrency, "concurrency", 4, "maximum vehicles valued in parallel")
	rootCmd.AddCommand(evaluateCmd)
}
