package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/alageshkumardev-create/FitzdoPoc/internal/domain"
)

// Output formats.
const (
	formatJSON  = "json"
	formatTable = "table"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeProductTable(w io.Writer, products []domain.Product) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tBRAND\tCATEGORY\tPRICE\tMRP\tRATING\tSPONSORED")
	for i := range products {
		p := &products[i]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%.1f\t%t\n",
			p.ID, p.Title, p.Brand, p.Category,
			formatPrice(p.Price), formatPrice(p.MRP), p.Rating, p.IsSponsored(),
		)
	}
	return tw.Flush()
}

func formatPrice(v float64) string {
	return strings.TrimSuffix(strconv.FormatFloat(v, 'f', 2, 64), ".00")
}
