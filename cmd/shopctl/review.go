package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shopfront/backend/internal/client/shopclient"
)

func newReviewCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Write and inspect product reviews",
	}
	cmd.AddCommand(newReviewSubmitCmd(a), newReviewPendingCmd(a))
	return cmd
}

func newReviewSubmitCmd(a *app) *cobra.Command {
	var (
		rating  int
		comment string
	)
	cmd := &cobra.Command{
		Use:   "submit <product-id>",
		Short: "Review a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			form := shopclient.NewReviewForm(a.api, a.store, a.log)
			res, err := form.Submit(cmd.Context(), id, rating, comment)
			if errors.Is(err, shopclient.ErrAuthenticationRequired) {
				return fmt.Errorf("%w (run shopctl login)", err)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			return nil
		},
	}
	cmd.Flags().IntVar(&rating, "rating", 0, "rating from 1 to 5")
	cmd.Flags().StringVar(&comment, "comment", "", fmt.Sprintf("review text, at least %d characters", shopclient.MinCommentLength))
	_ = cmd.MarkFlagRequired("rating")
	_ = cmd.MarkFlagRequired("comment")
	return cmd
}

func newReviewPendingCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List reviews saved locally while the reviews service was unavailable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pending, err := a.store.PendingReviews()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(pending) == 0 {
				fmt.Fprintln(out, "No pending reviews")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PRODUCT\tRATING\tQUEUED\tCOMMENT")
			for _, r := range pending {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", r.ProductID, r.Rating, r.QueuedAt.Format("2006-01-02 15:04"), r.Comment)
			}
			return tw.Flush()
		},
	}
}
