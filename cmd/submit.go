package cmd

import (
	"encoding/json"

	"ctoken/core"
	"ctoken/pkg/number"
	"ctoken/pkg/resthttp"

	"github.com/gofrs/uuid"
	"github.com/spf13/cobra"
)

var submitCmd = &cobra.Command{
	Use:   "submit [mint|redeem|borrow|repay_borrow|transfer|transfer_from|approve]",
	Short: "queue a request on a running ctoken server",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		flags := cmd.Flags()

		req := &core.Request{
			ID:     uuid.Must(uuid.NewV4()).String(),
			Action: core.Action(args[0]),
		}

		if id, _ := flags.GetString("id"); id != "" {
			req.ID = id
		}

		for name, dst := range map[string]*core.Address{
			"sender":    &req.Sender,
			"owner":     &req.Owner,
			"recipient": &req.Recipient,
			"spender":   &req.Spender,
		} {
			v, _ := flags.GetString(name)
			*dst = core.Address(v)
		}

		for name, dst := range map[string]*number.Uint{
			"sent":       &req.Sent,
			"amount":     &req.Amount,
			"underlying": &req.Underlying,
		} {
			v, _ := flags.GetString(name)
			if v == "" {
				continue
			}

			u, err := number.Parse(v)
			if err != nil {
				cmd.PrintErrln(name, err)
				return
			}

			*dst = u
		}

		if err := req.Validate(); err != nil {
			cmd.PrintErrln("invalid request:", err)
			return
		}

		host, _ := flags.GetString("host")
		resp, err := resthttp.NewAPI(host).Submit(ctx, req)
		if err != nil {
			cmd.PrintErrln("submit failed:", err)
			return
		}

		data, _ := json.MarshalIndent(resp, "", "  ")
		cmd.Println(string(data))
	},
}

func init() {
	rootCmd.AddCommand(submitCmd)
	submitCmd.Flags().String("host", "http://localhost:9000/api", "api host")
	submitCmd.Flags().String("id", "", "request id, random uuid by default")
	submitCmd.Flags().String("sender", "", "sender address")
	submitCmd.Flags().String("sent", "", "underlying attached to mint, redeem or repay_borrow")
	submitCmd.Flags().String("amount", "", "shares, borrow amount or allowance")
	submitCmd.Flags().String("underlying", "", "underlying to redeem")
	submitCmd.Flags().String("owner", "", "share owner of transfer_from")
	submitCmd.Flags().String("recipient", "", "share recipient")
	submitCmd.Flags().String("spender", "", "approved spender")
}
