package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"fund-portal/services"
	"fund-portal/utils"

	"github.com/spf13/cobra"
)

var viewCmd = &cobra.Command{
	Use:   "view <submission-id>",
	Short: "Print the reconciled view model of a submission",
	Args:  cobra.ExactArgs(1),
	RunE:  runView,
}

var mergeOut string

var mergeCmd = &cobra.Command{
	Use:   "merge <submission-id>",
	Short: "Merge the visible PDF attachments of a submission into one file",
	Args:  cobra.ExactArgs(1),
	RunE:  runMerge,
}

var (
	classifyID   int
	classifyCode string
	classifyName string
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify a status id/code/name triple",
	RunE:  runClassify,
}

var lookupsCmd = &cobra.Command{
	Use:   "lookups",
	Short: "Print the category and subcategory name tables",
	RunE:  runLookups,
}

func init() {
	mergeCmd.Flags().StringVarP(&mergeOut, "out", "o", "", "Output file (default <submission_number>_merged_document.pdf)")

	classifyCmd.Flags().IntVar(&classifyID, "id", 0, "application_status_id")
	classifyCmd.Flags().StringVar(&classifyCode, "code", "", "status code")
	classifyCmd.Flags().StringVar(&classifyName, "name", "", "status name")
}

func printJSON(cmd *cobra.Command, value any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func parseSubmissionID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid submission id %q", arg)
	}
	return id, nil
}

func runView(cmd *cobra.Command, args []string) error {
	submissionID, err := parseSubmissionID(args[0])
	if err != nil {
		return err
	}
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	statuses := services.NewStatusDirectory(rt.client, rt.cfg.Lookups.StatusTTL)
	submissions := services.NewSubmissionService(rt.client, statuses, rt.screens, nil, rt.logger)
	view, err := submissions.View(ctx, rt.session, submissionID, services.ViewOptions{})
	if err != nil {
		return err
	}
	return printJSON(cmd, view)
}

func runMerge(cmd *cobra.Command, args []string) error {
	submissionID, err := parseSubmissionID(args[0])
	if err != nil {
		return err
	}
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	statuses := services.NewStatusDirectory(rt.client, rt.cfg.Lookups.StatusTTL)
	merger := services.NewMergeAssembler(rt.client, rt.cfg.Merge.Concurrency, rt.logger)
	submissions := services.NewSubmissionService(rt.client, statuses, rt.screens, merger, rt.logger)

	published, err := submissions.Merge(ctx, rt.session, submissionID)
	if err != nil {
		return err
	}
	doc, err := rt.screens.GetMerged(ctx, rt.session.Owner, published.Token)
	if err != nil {
		return err
	}
	defer rt.screens.Close(ctx, rt.session.Owner, rt.session.ID)

	out := mergeOut
	if out == "" {
		out = published.Filename
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(out, doc.PDF, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d pages)\n", out, published.Pages)
	for _, name := range published.Skipped {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipped: %s\n", name)
	}
	return nil
}

func runClassify(cmd *cobra.Command, _ []string) error {
	var (
		id         *int
		code, name *string
	)
	if cmd.Flags().Changed("id") {
		id = &classifyID
	}
	if cmd.Flags().Changed("code") {
		code = &classifyCode
	}
	if cmd.Flags().Changed("name") {
		name = &classifyName
	}

	classification := services.ClassifyStatus(id, code, name)
	canonical := ""
	if code != nil {
		canonical, _ = utils.CanonicalStatusCode(*code)
	}
	return printJSON(cmd, map[string]any{
		"kind":           classification.Kind,
		"approved":       classification.Approved,
		"style":          classification.Style,
		"canonical_code": canonical,
	})
}

func runLookups(cmd *cobra.Command, _ []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	lookups, err := rt.session.Lookups.Get(ctx)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "categories:")
	for _, id := range sortedKeys(lookups.Categories) {
		fmt.Fprintf(w, "  %4d  %s\n", id, lookups.Categories[id])
	}
	fmt.Fprintln(w, "subcategories:")
	for _, id := range sortedKeys(lookups.Subcategories) {
		fmt.Fprintf(w, "  %4d  %s\n", id, lookups.Subcategories[id])
	}
	return nil
}

func sortedKeys(m map[int]string) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
