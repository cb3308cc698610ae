package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mta-tools/wycena/internal/catalog"
	"github.com/mta-tools/wycena/internal/session"
	"github.com/mta-tools/wycena/internal/valuation"
)

var sessionUser string

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Drive the valuation workflow from the console",
	Long: `Interactive console session against the valuation workflow.

Commands:
  wycena <vuid>   request a valuation
  quit            exit

Anything else is delivered to the workflow as a free-form message, the
way a chat reply would be: a pasted card (end it with a line containing
only '.') or key=value price lines.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

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
		wf := session.NewWorkflow(st, eng, session.NewManager(cfg.Session.TTL()))

		fmt.Printf("session as user '%s'; 'wycena <vuid>' to start, 'quit' to exit\n", sessionUser)

		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), 64*1024)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				return scanner.Err()
			}
			line := strings.TrimSpace(scanner.Text())

			switch {
			case line == "":
				continue
			case line == "quit" || line == "exit":
				return nil
			case strings.HasPrefix(line, "wycena "):
				vuid, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "wycena ")))
				if err != nil || vuid <= 0 {
					fmt.Println("usage: wycena <vuid>")
					continue
				}
				reply, err := wf.RequestValuation(ctx, sessionUser, "console", vuid)
				if err != nil {
					fmt.Fprintf(os.Stderr, "error: %v\n", err)
					continue
				}
				fmt.Println(reply.Text)
			default:
				text := line
				// multi-line paste: collect until a lone '.'
				if !strings.Contains(line, "=") {
					text = collectMultiline(scanner, line)
				}
				reply, err := wf.HandleMessage(ctx, sessionUser, "console", text)
				if err != nil {
					fmt.Fprintf(os.Stderr, "error: %v\n", err)
					continue
				}
				if reply == nil {
					fmt.Println("(no valuation pending; 'wycena <vuid>' to start)")
					continue
				}
				fmt.Println(reply.Text)
			}
		}
	},
}

// collectMultiline reads further lines up to a lone '.' so a whole card
// can be pasted into the console.
func collectMultiline(scanner *bufio.Scanner, first string) string {
	var b strings.Builder
	b.WriteString(first)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "." {
			break
		}
		b.WriteByte('\n')
		b.WriteString(line)
	}
	return b.String()
}

func init() {
	sessionCmd.Flags().StringVar(&sessionUser, "user", "console", "user id the session acts as")
	rootCmd.AddCommand(sessionCmd)
}
