package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/mta-tools/wycena/internal/cardparse"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a vehicle card and print it as JSON",
	Long:  "Reads a pasted vehicle card from the given file, or stdin when no file is given, and prints the structured record.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			text []byte
			err  error
		)
		if len(args) == 1 {
			text, err = os.ReadFile(args[0])
			if err != nil {
				return eris.Wrapf(err, "read %s", args[0])
			}
		} else {
			text, err = io.ReadAll(os.Stdin)
			if err != nil {
				return eris.Wrap(err, "read stdin")
			}
		}

		card, err := cardparse.Parse(string(text))
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(card, "", "  ")
		if err != nil {
			return eris.Wrap(err, "marshal card")
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
}
