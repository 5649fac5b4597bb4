package main

import (
	"fmt"
	"net/url"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/doubleentry/internal/adapter/http/dto"
)

// eventsCmd lists the outbox history of one account or entry. resource is
// the collection name in the API path.
func eventsCmd(opts *options, resource string) *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "events ID",
		Short: "Show the event history of one of the " + resource,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			query.Set("limit", strconv.Itoa(limit))
			query.Set("offset", strconv.Itoa(offset))

			var events []dto.EventResponse
			path := fmt.Sprintf("/api/v1/%s/%s/events", resource, url.PathEscape(args[0]))
			if err := newAPIClient(opts).get(cmd.Context(), path, query, &events); err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTYPE\tCREATED\tPUBLISHED")
			for _, e := range events {
				published := "-"
				if e.PublishedAt != nil {
					published = e.PublishedAt.Format(time.RFC3339)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.ID, e.EventType, e.CreatedAt.Format(time.RFC3339), published)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "Page offset")

	return cmd
}
