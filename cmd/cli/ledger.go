package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/iho/doubleentry/internal/adapter/http/dto"
)

var errInconsistent = errors.New("ledger is inconsistent")

func ledgerCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger-wide reports",
	}

	cmd.AddCommand(trialBalanceCmd(opts), consistencyCmd(opts), reportCmd(opts))
	return cmd
}

func trialBalanceCmd(opts *options) *cobra.Command {
	var window windowFlags

	cmd := &cobra.Command{
		Use:   "trial-balance",
		Short: "Show balances per account type and the residual",
		RunE: func(cmd *cobra.Command, args []string) error {
			var tb dto.TrialBalanceResponse
			if err := newAPIClient(opts).get(cmd.Context(), "/api/v1/ledger/trial-balance", window.query(), &tb); err != nil {
				return err
			}

			types := make([]string, 0, len(tb.ByType))
			for t := range tb.ByType {
				types = append(types, t)
			}
			sort.Strings(types)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintf(w, "TYPE\tBALANCE\t%s\n", tb.Currency)
			for _, t := range types {
				fmt.Fprintf(w, "%s\t%s\t\n", t, tb.ByType[t].Amount)
			}
			fmt.Fprintf(w, "residual\t%s\t\n", tb.Residual.Amount)
			if err := w.Flush(); err != nil {
				return err
			}

			if !tb.Balanced {
				return errInconsistent
			}
			return nil
		},
	}

	window.register(cmd)
	return cmd
}

func consistencyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "consistency",
		Short: "Check that total debits equal total credits per currency",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.ConsistencyResponse
			err := newAPIClient(opts).get(cmd.Context(), "/api/v1/ledger/consistency", nil, &resp)

			var apiErr *apiError
			if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
				if jsonErr := json.Unmarshal(apiErr.Raw, &resp); jsonErr != nil {
					return err
				}
			} else if err != nil {
				return err
			}

			if err := printJSON(cmd.OutOrStdout(), resp); err != nil {
				return err
			}
			if !resp.Consistent {
				return errInconsistent
			}
			return nil
		},
	}
}

func reportCmd(opts *options) *cobra.Command {
	var currency string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Reconcile cached balances against the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if currency != "" {
				query.Set("currency", currency)
			}

			var report dto.ReconciliationReportResponse
			if err := newAPIClient(opts).get(cmd.Context(), "/api/v1/ledger/report", query, &report); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().StringVar(&currency, "currency", "", "Currency, defaults to the server's currency")
	return cmd
}
