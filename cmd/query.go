package cmd

import (
	"encoding/json"
	"fmt"

	"ctoken/pkg/resthttp"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query [market|config|state|rates|balance|allowance|borrow|request|transfers] [args...]",
	Short: "query a running ctoken server",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		host, _ := cmd.Flags().GetString("host")
		api := resthttp.NewAPI(host)

		path, err := queryPath(args)
		if err != nil {
			cmd.PrintErrln(err)
			return
		}

		resp, err := api.Get(ctx, path)
		if err != nil {
			cmd.PrintErrln("query failed:", err)
			return
		}

		data, _ := json.MarshalIndent(resp, "", "  ")
		cmd.Println(string(data))
	},
}

func queryPath(args []string) (string, error) {
	arg := func(i int) (string, error) {
		if len(args) <= i {
			return "", fmt.Errorf("query %s: missing argument %d", args[0], i)
		}

		return args[i], nil
	}

	switch args[0] {
	case "market":
		return "/market", nil
	case "config", "state", "rates":
		return "/market/" + args[0], nil
	case "balance", "borrow":
		addr, err := arg(1)
		if err != nil {
			return "", err
		}

		if args[0] == "borrow" {
			return "/borrows/" + addr, nil
		}

		return "/balances/" + addr, nil
	case "allowance":
		owner, err := arg(1)
		if err != nil {
			return "", err
		}

		spender, err := arg(2)
		if err != nil {
			return "", err
		}

		return fmt.Sprintf("/allowances/%s/%s", owner, spender), nil
	case "request":
		id, err := arg(1)
		if err != nil {
			return "", err
		}

		return "/requests/" + id, nil
	case "transfers":
		var from uint64
		if len(args) > 1 {
			from = cast.ToUint64(args[1])
		}

		return fmt.Sprintf("/transfers?from=%d", from), nil
	default:
		return "", fmt.Errorf("unknown query %q", args[0])
	}
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().String("host", "http://localhost:9000/api", "api host")
}
