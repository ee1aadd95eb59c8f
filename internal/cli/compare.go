package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/LeJamon/goMIXR/internal/core/ledger"
)

// Diff is one difference between two snapshots.
type Diff struct {
	Kind  string `json:"kind"` // added, removed or modified
	Path  string `json:"path"`
	Left  string `json:"left,omitempty"`
	Right string `json:"right,omitempty"`
}

// compareCmd represents the compare command
var compareCmd = &cobra.Command{
	Use:   "compare <file1> <file2>",
	Short: "Compare two snapshot dumps",
	Long: `Compare two snapshot JSON files, as printed by "mixrd state show", and list
every parameter, asset, agent, stake and reward that differs.

Examples:
    mixrd state show 10 > a.json && mixrd state show 20 > b.json
    mixrd compare a.json b.json
    mixrd compare a.json b.json --json`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
	compareCmd.Flags().Bool("json", false, "print the differences as JSON")
}

func runCompare(cmd *cobra.Command, args []string) error {
	left, err := readSnapshot(args[0])
	if err != nil {
		return err
	}
	right, err := readSnapshot(args[1])
	if err != nil {
		return err
	}
	diffs := CompareSnapshots(left, right)

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return jsonEncode(out, diffs)
	}
	printDiffs(out, left.Seq, right.Seq, diffs)
	return nil
}

func readSnapshot(path string) (*ledger.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var snap ledger.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &snap, nil
}

// CompareSnapshots lists the differences from a to b, sorted by path.
func CompareSnapshots(a, b *ledger.Snapshot) []Diff {
	left, right := flatten(a), flatten(b)
	var diffs []Diff
	for path, l := range left {
		r, ok := right[path]
		switch {
		case !ok:
			diffs = append(diffs, Diff{Kind: "removed", Path: path, Left: l})
		case l != r:
			diffs = append(diffs, Diff{Kind: "modified", Path: path, Left: l, Right: r})
		}
	}
	for path, r := range right {
		if _, ok := left[path]; !ok {
			diffs = append(diffs, Diff{Kind: "added", Path: path, Right: r})
		}
	}
	sort.Slice(diffs, func(i, j int) bool { return diffs[i].Path < diffs[j].Path })
	return diffs
}

// flatten keys every comparable value by a stable path. Ranking is
// compared by position since its order is significant.
func flatten(s *ledger.Snapshot) map[string]string {
	m := map[string]string{
		"decimals":                 fmt.Sprint(s.Decimals),
		"minimum_fee":              s.MinimumFee,
		"deviation_ceiling":        s.DeviationCeiling,
		"supply":                   s.Supply,
		"fee_pool":                 s.FeePool,
		"reward_ceiling":           fmt.Sprint(s.RewardCeiling),
		"minimum_nomination_stake": s.MinimumNominationStake,
	}
	for _, a := range s.Assets {
		p := "assets/" + a.Address + "/"
		m[p+"symbol"] = a.Symbol
		m[p+"decimals"] = fmt.Sprint(a.Decimals)
		m[p+"target"] = a.Target
		m[p+"balance"] = a.Balance
		m[p+"deposit_fee"] = a.DepositFee
		m[p+"redemption_fee"] = a.RedemptionFee
	}
	for _, a := range s.Agents {
		m["agents/"+a.Address+"/name"] = a.Name
		m["agents/"+a.Address+"/contact"] = a.Contact
	}
	for _, k := range s.Stakes {
		m["stakes/"+k.Agent+"/"+k.Backer] = k.Amount
	}
	for i, r := range s.Ranking {
		m[fmt.Sprintf("ranking/%03d", i)] = r.Agent + " " + r.Value
	}
	for _, r := range s.Rewards {
		m["rewards/"+r.Backer] = r.Amount
	}
	return m
}

func printDiffs(w io.Writer, leftSeq, rightSeq uint64, diffs []Diff) {
	fmt.Fprintf(w, "Comparing snapshot %d with snapshot %d\n", leftSeq, rightSeq)
	if len(diffs) == 0 {
		fmt.Fprintln(w, "No differences")
		return
	}
	counts := map[string]int{}
	for _, d := range diffs {
		counts[d.Kind]++
		switch d.Kind {
		case "added":
			fmt.Fprintf(w, "+ %s = %s\n", d.Path, d.Right)
		case "removed":
			fmt.Fprintf(w, "- %s = %s\n", d.Path, d.Left)
		default:
			fmt.Fprintf(w, "~ %s: %s -> %s\n", d.Path, d.Left, d.Right)
		}
	}
	fmt.Fprintf(w, "%d added, %d removed, %d modified\n", counts["added"], counts["removed"], counts["modified"])
}

func jsonEncode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
