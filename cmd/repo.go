package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/reposcout/format"
	"github.com/s0up4200/reposcout/github"
)

// repoCmd represents the repo command
var repoCmd = &cobra.Command{
	Use:   "repo <owner/name>...",
	Short: "Show repository details",
	Long: `Show details for one or more repositories. Lookups run concurrently.

Example:
  reposcout repo spf13/cobra spf13/viper`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRepo,
}

func runRepo(cmd *cobra.Command, args []string) error {
	refs := make([]github.RepoRef, 0, len(args))
	for _, arg := range args {
		ref, err := github.ParseRepoRef(arg)
		if err != nil {
			return err
		}
		refs = append(refs, ref)
	}

	out := cmd.OutOrStdout()
	var failed int

	for i, snap := range client.Repositories(cmd.Context(), refs) {
		if snap.Err != nil {
			failed++
			fmt.Fprintf(out, "\n%s: %s\n", refs[i], format.FormatError(snap.Err))
			continue
		}
		fmt.Fprint(out, formatter.FormatRepository(snap.Data))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d lookups failed", failed, len(refs))
	}
	return nil
}
