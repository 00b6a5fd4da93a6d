package cli

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/alageshkumardev-create/FitzdoPoc/internal/domain"
	"github.com/alageshkumardev-create/FitzdoPoc/pkg/logger"
)

func newProductsCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Query products from a running catalog API",
	}
	cmd.AddCommand(newProductsListCommand(opts), newProductsGetCommand(opts))
	return cmd
}

func newProductsListCommand(opts *rootOptions) *cobra.Command {
	var (
		output                        string
		q, category, sort             string
		minPrice, maxPrice, minRating float64
		sponsored                     bool
		page, limit                   int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products with optional filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params := url.Values{}
			set := func(name, value string) {
				if cmd.Flags().Changed(name) {
					params.Set(name, value)
				}
			}
			set("q", q)
			set("category", category)
			set("sort", sort)
			set("minPrice", strconv.FormatFloat(minPrice, 'f', -1, 64))
			set("maxPrice", strconv.FormatFloat(maxPrice, 'f', -1, 64))
			set("minRating", strconv.FormatFloat(minRating, 'f', -1, 64))
			set("sponsored", strconv.FormatBool(sponsored))
			set("page", strconv.Itoa(page))
			set("limit", strconv.Itoa(limit))

			client := NewAPIClient(opts.apiURL, logger.NewWithWriter("fitzdoctl", opts.logLevel, cmd.ErrOrStderr()))
			result, err := client.ListProducts(cmd.Context(), params)
			if err != nil {
				return err
			}

			switch output {
			case formatTable:
				if err := writeProductTable(cmd.OutOrStdout(), result.Items); err != nil {
					return err
				}
				pg := result.Pagination
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "page %d of %d (%d products)\n", pg.Page, pg.Pages, pg.Total)
				return err
			default:
				return writeJSON(cmd.OutOrStdout(), result)
			}
		},
	}

	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", formatJSON, "output format: json|table")
	f.StringVar(&q, "q", "", "text to search for in title, brand or category")
	f.StringVar(&category, "category", "", "category to match exactly")
	f.StringVar(&sort, "sort", "", "sort key: price|-price|-rating|-discountPercent|-createdAt")
	f.Float64Var(&minPrice, "minPrice", 0, "lowest price to include")
	f.Float64Var(&maxPrice, "maxPrice", 0, "highest price to include")
	f.Float64Var(&minRating, "minRating", 0, "lowest rating to include")
	f.BoolVar(&sponsored, "sponsored", false, "only sponsored products")
	f.IntVar(&page, "page", 0, "page number, starting at 1")
	f.IntVar(&limit, "limit", 0, "page size")
	return cmd
}

func newProductsGetCommand(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a single product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := NewAPIClient(opts.apiURL, logger.NewWithWriter("fitzdoctl", opts.logLevel, cmd.ErrOrStderr()))
			p, err := client.GetProduct(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if output == formatTable {
				return writeProductTable(cmd.OutOrStdout(), []domain.Product{*p})
			}
			return writeJSON(cmd.OutOrStdout(), p)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", formatJSON, "output format: json|table")
	return cmd
}
