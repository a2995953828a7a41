package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-faces/internal/config"
)

var peopleCmd = &cobra.Command{
	Use:   "people",
	Short: "List, inspect and name clustered people",
}

var peopleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all people found by the last clustering run",
	Args:  cobra.NoArgs,
	RunE:  runPeopleList,
}

var peopleShowCmd = &cobra.Command{
	Use:   "show <cluster-id>",
	Short: "Show the photos of one person",
	Args:  cobra.ExactArgs(1),
	RunE:  runPeopleShow,
}

var peopleNameCmd = &cobra.Command{
	Use:   "name <cluster-id> <name>",
	Short: "Give a person a display name",
	Long: `Store a display name for a cluster id of the current clustering result.
An existing name is overwritten. Names are keyed by cluster id, so they may
need to be reassigned after re-clustering.

Only people of the current result can be named: the command fails when no
clustering result exists yet, for noise (negative ids) and for ids with no
faces in the last 'photo-faces cluster' run. The web UI answers these cases
with 404 or 400.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runPeopleName,
}

func init() {
	rootCmd.AddCommand(peopleCmd)
	peopleCmd.AddCommand(peopleListCmd, peopleShowCmd, peopleNameCmd)

	peopleListCmd.Flags().String("query", "", "Only list people whose name contains this text")
	peopleListCmd.Flags().Bool("json", false, "Output as JSON")
	peopleShowCmd.Flags().Bool("json", false, "Output as JSON")
}

func parseClusterID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid cluster id %q", arg)
	}
	return id, nil
}

func runPeopleList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ctx := context.Background()
	svc, closeStore, err := openGallery(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	summaries, err := svc.ListClusters(ctx, mustGetString(cmd, "query"))
	if err != nil {
		return err
	}

	if mustGetBool(cmd, "json") {
		return outputJSON(summaries)
	}

	if len(summaries) == 0 {
		fmt.Println("No people found.")
		return nil
	}

	fmt.Printf("%-6s %-30s %6s  %s\n", "ID", "NAME", "FACES", "REPRESENTATIVE")
	for _, s := range summaries {
		name := s.Name
		if s.Stale {
			name += " (stale)"
		}
		fmt.Printf("%-6d %-30s %6d  %s\n", s.ClusterID, name, s.FaceCount, s.RepresentativeImage)
	}
	fmt.Printf("\n%d people\n", len(summaries))
	return nil
}

func runPeopleShow(cmd *cobra.Command, args []string) error {
	clusterID, err := parseClusterID(args[0])
	if err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ctx := context.Background()
	svc, closeStore, err := openGallery(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	detail, err := svc.Cluster(ctx, clusterID)
	if err != nil {
		return err
	}

	if mustGetBool(cmd, "json") {
		return outputJSON(map[string]any{
			"cluster_id": detail.ClusterID,
			"name":       detail.Name,
			"named":      detail.Named,
			"stale":      detail.Stale,
			"images":     detail.Images,
		})
	}

	fmt.Printf("%s (cluster %d, %d photo(s))\n", detail.Name, detail.ClusterID, len(detail.Images))
	if detail.Stale {
		fmt.Println("Note: this name was given before the last clustering run.")
	}
	for _, img := range detail.Images {
		fmt.Printf("  %s\n", img)
	}
	return nil
}

func runPeopleName(cmd *cobra.Command, args []string) error {
	clusterID, err := parseClusterID(args[0])
	if err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ctx := context.Background()
	svc, closeStore, err := openGallery(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	record, err := svc.NameCluster(ctx, clusterID, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	fmt.Printf("Cluster %d is now named %q\n", record.ClusterID, record.Name)
	return nil
}
