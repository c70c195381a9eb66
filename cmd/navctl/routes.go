package main

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"github.com/vango-dev/navcore/pkg/routes"
)

// formatRoutes renders the table as aligned columns in registration order.
func formatRoutes(table *routes.Table) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PATH\tNAME\tTARGET")
	for _, r := range table.Routes() {
		name := r.RouteName()
		if name == "" {
			name = "-"
		}
		switch r := r.(type) {
		case routes.View:
			fmt.Fprintf(w, "%s\t%s\tview %s\n", r.Path, name, r.View)
		case routes.Redirect:
			fmt.Fprintf(w, "%s\t%s\t→ %s\n", r.Path, name, r.Target)
		}
	}
	w.Flush()
	return buf.String()
}
