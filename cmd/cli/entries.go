package main

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/iho/doubleentry/internal/adapter/http/dto"
	"github.com/iho/doubleentry/internal/adapter/http/middleware"
	"github.com/iho/doubleentry/internal/domain"
)

func entriesCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entries",
		Short: "Post and inspect journal entries",
	}

	cmd.AddCommand(entriesPostCmd(opts), entriesGetCmd(opts), entriesListCmd(opts), eventsCmd(opts, "entries"))
	return cmd
}

// parseLine reads a line given as ACCOUNT_ID:AMOUNT[:CURRENCY]. AMOUNT is in
// major units, e.g. 12.50.
func parseLine(s string) (dto.AmountRequest, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return dto.AmountRequest{}, fmt.Errorf("invalid line %q, expected ACCOUNT_ID:AMOUNT[:CURRENCY]", s)
	}
	if parts[0] == "" || parts[1] == "" {
		return dto.AmountRequest{}, fmt.Errorf("invalid line %q, account and amount are required", s)
	}

	line := dto.AmountRequest{AccountID: parts[0], Amount: parts[1]}
	if len(parts) == 3 {
		line.Currency = parts[2]
	}
	return line, nil
}

func parseLines(values []string) ([]dto.AmountRequest, error) {
	lines := make([]dto.AmountRequest, 0, len(values))
	for _, v := range values {
		line, err := parseLine(v)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func entriesPostCmd(opts *options) *cobra.Command {
	var (
		req             dto.PostEntryRequest
		docType, docID  string
		debits, credits []string
		idempotencyKey  string
	)

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Post a journal entry",
		Example: `  ledger-cli entries post --description "Owner investment" \
    --debit CASH_ID:1000.00 --credit CAPITAL_ID:1000.00
  ledger-cli entries post --description "Invoice 42" --date 2024-03-01 \
    --doc-type invoice --doc-id 42 \
    --debit RECEIVABLE_ID:120 --credit SALES_ID:100 --credit VAT_ID:20`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if req.Debits, err = parseLines(debits); err != nil {
				return err
			}
			if req.Credits, err = parseLines(credits); err != nil {
				return err
			}
			if docType != "" || docID != "" {
				req.DocumentRef = &dto.DocumentRefRequest{Type: docType, ID: docID}
			}

			client := newAPIClient(opts)
			if idempotencyKey != "" {
				client.header.Set(middleware.IdempotencyKeyHeader, idempotencyKey)
			}

			var entry dto.EntryResponse
			if err := client.post(cmd.Context(), "/api/v1/entries", req, &entry); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), entry)
		},
	}

	cmd.Flags().StringVar(&req.Description, "description", "", "Entry description")
	cmd.Flags().StringVar(&req.Date, "date", "", "Entry date (YYYY-MM-DD), defaults to today")
	cmd.Flags().StringVar(&docType, "doc-type", "", "Source document type")
	cmd.Flags().StringVar(&docID, "doc-id", "", "Source document ID")
	cmd.Flags().StringArrayVar(&debits, "debit", nil, "Debit line ACCOUNT_ID:AMOUNT[:CURRENCY], repeatable")
	cmd.Flags().StringArrayVar(&credits, "credit", nil, "Credit line ACCOUNT_ID:AMOUNT[:CURRENCY], repeatable")
	cmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency key for safe retries")

	return cmd
}

func entriesGetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get ENTRY_ID",
		Short: "Show a journal entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var entry dto.EntryResponse
			if err := newAPIClient(opts).get(cmd.Context(), "/api/v1/entries/"+url.PathEscape(args[0]), nil, &entry); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), entry)
		},
	}
}

func entriesListCmd(opts *options) *cobra.Command {
	var (
		accountID     string
		limit, offset int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List journal entries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			query.Set("limit", strconv.Itoa(limit))
			query.Set("offset", strconv.Itoa(offset))

			path := "/api/v1/entries"
			if accountID != "" {
				path = "/api/v1/accounts/" + url.PathEscape(accountID) + "/entries"
			}

			var entries []*dto.EntryResponse
			if err := newAPIClient(opts).get(cmd.Context(), path, query, &entries); err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDATE\tDESCRIPTION\tDEBITS\tCREDITS")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.Date, truncate(e.Description, 40), sumLines(e.Debits), sumLines(e.Credits))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "Only list entries touching this account")
	cmd.Flags().IntVar(&limit, "limit", 20, "Page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "Page offset")

	return cmd
}

// sumLines renders the lines of one side as "amount currency" per currency.
func sumLines(lines []dto.AmountResponse) string {
	totals := map[string]int64{}
	var order []string
	for _, l := range lines {
		if _, ok := totals[l.Currency]; !ok {
			order = append(order, l.Currency)
		}
		totals[l.Currency] += l.AmountMinor
	}

	parts := make([]string, 0, len(order))
	for _, c := range order {
		parts = append(parts, domain.NewMoney(totals[c], c).String())
	}
	return strings.Join(parts, ", ")
}
