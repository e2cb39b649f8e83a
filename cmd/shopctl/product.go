package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/shopfront/backend/internal/client/shopclient"
)

func newProductCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "product",
		Short: "Show products",
	}
	cmd.AddCommand(newProductViewCmd(a), newProductSimilarCmd(a))
	return cmd
}

type viewFlags struct {
	color    string
	size     string
	quantity int
	with     []string
	panels   bool
}

func newProductViewCmd(a *app) *cobra.Command {
	f := &viewFlags{}
	cmd := &cobra.Command{
		Use:   "view <product-id>",
		Short: "Open a product page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			page := shopclient.NewProductPage(a.api, a.catalog, a.store, a.log)
			if err := page.Load(cmd.Context(), id); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), page.ErrorMessage())
				return err
			}
			if err := f.apply(page); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printProductPage(out, page)
			if !f.panels {
				return nil
			}
			loaders := shopclient.NewLoaders(a.api, a.store, a.log)
			product := page.Product()
			printPanel(out, "Similar products", loaders.Similar(cmd.Context(), product))
			printPanel(out, "Recently viewed", loaders.RecentlyViewed(cmd.Context(), product.ID))
			printPanel(out, "Recommended for you", loaders.Recommended(cmd.Context(), product.ID))
			return nil
		},
	}
	cmd.Flags().StringVar(&f.color, "color", "", "select a color")
	cmd.Flags().StringVar(&f.size, "size", "", "select a size")
	cmd.Flags().IntVar(&f.quantity, "qty", 1, "quantity, clamped to stock")
	cmd.Flags().StringSliceVar(&f.with, "with", nil, "bought-together product ids to add to the bundle")
	cmd.Flags().BoolVar(&f.panels, "panels", true, "show the similar, recently viewed and recommended panels")
	return cmd
}

func (f *viewFlags) apply(page *shopclient.ProductPage) error {
	if f.color != "" {
		if err := page.SelectColor(f.color); err != nil {
			return err
		}
	}
	if f.size != "" {
		if err := page.SelectSize(f.size); err != nil {
			return err
		}
	}
	page.SetQuantity(f.quantity)
	for _, raw := range f.with {
		id, err := parseID(raw)
		if err != nil {
			return err
		}
		if !page.IsChecked(id) {
			page.ToggleBoughtTogether(id)
		}
	}
	return nil
}

func newProductSimilarCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "similar <product-id>",
		Short: "List products similar to a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			page := shopclient.NewProductPage(a.api, a.catalog, nil, a.log)
			if err := page.Load(cmd.Context(), id); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), page.ErrorMessage())
				return err
			}
			panel := shopclient.NewLoaders(a.api, nil, a.log).Similar(cmd.Context(), page.Product())
			printPanel(cmd.OutOrStdout(), "Similar to "+page.Product().Name, panel)
			return nil
		},
	}
}

func newRecentCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "recent",
		Short: "List recently viewed products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			panel := shopclient.NewLoaders(a.api, a.store, a.log).RecentlyViewed(cmd.Context(), uuid.Nil)
			printPanel(cmd.OutOrStdout(), "Recently viewed", panel)
			return nil
		},
	}
}

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid product id %q", s)
	}
	return id, nil
}

func printProductPage(w io.Writer, page *shopclient.ProductPage) {
	p := page.Product()
	fmt.Fprintf(w, "%s\n", p.Name)
	if page.Source() == shopclient.SourceStatic {
		fmt.Fprintln(w, "(offline copy, details may be out of date)")
	}
	if d := page.Discount(); d > 0 {
		fmt.Fprintf(w, "Price: %s (was %s, -%d%%)\n", p.EffectivePrice().StringFixed(2), p.Price.StringFixed(2), d)
	} else {
		fmt.Fprintf(w, "Price: %s\n", p.Price.StringFixed(2))
	}
	if p.Stock > 0 {
		fmt.Fprintf(w, "In stock: %d\n", p.Stock)
	} else {
		fmt.Fprintln(w, "Out of stock")
	}
	if p.Description != "" {
		fmt.Fprintf(w, "\n%s\n", p.Description)
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if page.SelectedColor() != "" {
		fmt.Fprintf(tw, "Color\t%s\n", page.SelectedColor())
	}
	if page.SelectedSize() != "" {
		fmt.Fprintf(tw, "Size\t%s\n", page.SelectedSize())
	}
	fmt.Fprintf(tw, "Quantity\t%d\n", page.Quantity())
	if page.SelectedImage() != "" {
		fmt.Fprintf(tw, "Image\t%s\n", page.SelectedImage())
	}
	for _, s := range p.Specifications {
		fmt.Fprintf(tw, "%s\t%s\n", s.Key, s.Value)
	}
	_ = tw.Flush()

	if bt := page.BoughtTogether(); len(bt) > 0 {
		fmt.Fprintln(w, "\nFrequently bought together")
		tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "[%s]\t%s\t%s\t(this item)\n", mark(page.IsChecked(p.ID)), p.Name, p.EffectivePrice().StringFixed(2))
		for _, item := range bt {
			if item.ID == p.ID {
				continue
			}
			fmt.Fprintf(tw, "[%s]\t%s\t%s\t%s\n", mark(page.IsChecked(item.ID)), item.Name, item.EffectivePrice().StringFixed(2), item.ID)
		}
		_ = tw.Flush()
		fmt.Fprintf(w, "Total: %s\n", page.TotalBoughtTogetherPrice())
	}
}

func printPanel(w io.Writer, title string, panel shopclient.Panel) {
	fmt.Fprintf(w, "\n%s\n", title)
	if len(panel.Products) == 0 {
		msg := panel.Message
		if msg == "" {
			msg = "Nothing to show"
		}
		fmt.Fprintf(w, "  %s\n", msg)
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, p := range panel.Products {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", p.ID, p.Name, p.EffectivePrice().StringFixed(2))
	}
	_ = tw.Flush()
}

func mark(checked bool) string {
	if checked {
		return "x"
	}
	return " "
}
