package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dmitrijs2005/useradmin/internal/client/listview"
	"github.com/dmitrijs2005/useradmin/internal/client/models"
)

func renderUsers(w io.Writer, v listview.View) {
	if len(v.Records) == 0 {
		fmt.Fprintln(w, "No results")
	} else {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tPHONE")
		for _, u := range v.Records {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, dash(u.Phone))
		}
		tw.Flush()
	}

	footer := fmt.Sprintf("Page %d of %d", v.Page, v.TotalPages)
	if v.Search != "" {
		footer += fmt.Sprintf(", search %q", v.Search)
	}
	fmt.Fprintln(w, footer)
}

func renderProfile(w io.Writer, u *models.User) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\t%s\n", u.ID)
	fmt.Fprintf(tw, "Name\t%s\n", u.Name)
	fmt.Fprintf(tw, "Email\t%s\n", u.Email)
	fmt.Fprintf(tw, "Phone\t%s\n", dash(u.Phone))
	fmt.Fprintf(tw, "Avatar\t%s\n", dash(u.Avatar))
	if u.Role != "" {
		fmt.Fprintf(tw, "Role\t%s\n", u.Role)
	}
	tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// isLocalError tells form validation failures from API errors.
func isLocalError(err error) bool {
	return errors.Is(err, models.ErrRequired) || errors.Is(err, models.ErrPasswordMismatch)
}
