package common

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// OverlapQuery holds the flags of the overlap check commands.
type OverlapQuery struct {
	Accounts string
	Start    string
	End      string
	Exclude  string
}

// AddOverlapFlags registers --accounts, --start, --end and --exclude on cmd.
func AddOverlapFlags(cmd *cobra.Command, q *OverlapQuery) {
	cmd.Flags().StringVar(&q.Accounts, "accounts", "", "Row ids to check (comma separated)")
	cmd.Flags().StringVar(&q.Start, "start", "", "First day of the range (YYYY-MM-DD)")
	cmd.Flags().StringVar(&q.End, "end", "", "Last day of the range (YYYY-MM-DD)")
	cmd.Flags().StringVar(&q.Exclude, "exclude", "", "Record id to leave out of the check")
	_ = cmd.MarkFlagRequired("accounts")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
}

// AccountIDs splits the --accounts value, dropping blanks.
func (q OverlapQuery) AccountIDs() []string {
	var ids []string
	for _, id := range strings.Split(q.Accounts, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// PrintOverlap reports overlapping record ids and the accounts they share.
// Nothing is printed when ids is empty.
func PrintOverlap(w io.Writer, accounts, ids []string) {
	if len(ids) == 0 {
		return
	}
	fmt.Fprintf(w, "Overlaps %s on %s\n", strings.Join(ids, ", "), strings.Join(accounts, ", "))
}
