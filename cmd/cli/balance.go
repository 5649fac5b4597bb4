package main

import (
	"net/url"

	"github.com/spf13/cobra"

	"github.com/iho/doubleentry/internal/adapter/http/dto"
)

type windowFlags struct {
	from, to, currency string
}

func (f *windowFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.from, "from", "", "First day of the window (YYYY-MM-DD), inclusive")
	cmd.Flags().StringVar(&f.to, "to", "", "Last day of the window (YYYY-MM-DD), inclusive")
	cmd.Flags().StringVar(&f.currency, "currency", "", "Currency, defaults to the server's currency")
}

func (f *windowFlags) query() url.Values {
	q := url.Values{}
	if f.from != "" {
		q.Set("from", f.from)
	}
	if f.to != "" {
		q.Set("to", f.to)
	}
	if f.currency != "" {
		q.Set("currency", f.currency)
	}
	return q
}

func balanceCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Query balances",
	}

	cmd.AddCommand(balanceAccountCmd(opts), balanceTypeCmd(opts))
	return cmd
}

func balanceAccountCmd(opts *options) *cobra.Command {
	var window windowFlags

	cmd := &cobra.Command{
		Use:   "account ACCOUNT_ID",
		Short: "Show the balance of one account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.AccountBalanceResponse
			path := "/api/v1/accounts/" + url.PathEscape(args[0]) + "/balance"
			if err := newAPIClient(opts).get(cmd.Context(), path, window.query(), &resp); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	window.register(cmd)
	return cmd
}

func balanceTypeCmd(opts *options) *cobra.Command {
	var window windowFlags

	cmd := &cobra.Command{
		Use:   "type ACCOUNT_TYPE",
		Short: "Show the aggregate balance of an account type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.TypeBalanceResponse
			path := "/api/v1/balances/" + url.PathEscape(args[0])
			if err := newAPIClient(opts).get(cmd.Context(), path, window.query(), &resp); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	window.register(cmd)
	return cmd
}
