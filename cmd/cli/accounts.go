package main

import (
	"fmt"
	"net/url"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/iho/doubleentry/internal/adapter/http/dto"
)

func accountsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage accounts",
	}

	cmd.AddCommand(accountsCreateCmd(opts), accountsListCmd(opts), accountsGetCmd(opts), eventsCmd(opts, "accounts"))
	return cmd
}

func accountsCreateCmd(opts *options) *cobra.Command {
	var req dto.CreateAccountRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		Example: `  ledger-cli accounts create --name Cash --type asset
  ledger-cli accounts create --name "Accumulated Depreciation" --type asset --contra`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var account dto.AccountResponse
			if err := newAPIClient(opts).post(cmd.Context(), "/api/v1/accounts", req, &account); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), account)
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Account name")
	cmd.Flags().StringVar(&req.Type, "type", "", "Account type: asset, liability, equity, revenue or expense")
	cmd.Flags().BoolVar(&req.Contra, "contra", false, "Create a contra account")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func accountsListCmd(opts *options) *cobra.Command {
	var (
		accountType   string
		limit, offset int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if accountType != "" {
				query.Set("type", accountType)
			}
			query.Set("limit", strconv.Itoa(limit))
			query.Set("offset", strconv.Itoa(offset))

			var resp dto.ListAccountsResponse
			if err := newAPIClient(opts).get(cmd.Context(), "/api/v1/accounts", query, &resp); err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tTYPE\tCONTRA")
			for _, a := range resp.Accounts {
				fmt.Fprintf(w, "%s\t%s\t%s\t%v\n", a.ID, truncate(a.Name, 40), a.Type, a.Contra)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&accountType, "type", "", "Only list accounts of this type")
	cmd.Flags().IntVar(&limit, "limit", 50, "Page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "Page offset")

	return cmd
}

func accountsGetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get ACCOUNT_ID",
		Short: "Show an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var account dto.AccountResponse
			if err := newAPIClient(opts).get(cmd.Context(), "/api/v1/accounts/"+url.PathEscape(args[0]), nil, &account); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), account)
		},
	}
}
