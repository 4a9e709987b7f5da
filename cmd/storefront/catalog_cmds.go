package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jask/storefront/internal/catalog"
)

var (
	productHeaders = []string{"ID", "Title", "Category", "Price"}
	userHeaders    = []string{"ID", "Name", "Email", "Username", "City"}
)

func newProductsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List products, optionally of one category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			category, _ := cmd.Flags().GetString("category")
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			var ps []catalog.Product
			if category == "" {
				ps, err = e.client.Products(cmd.Context())
			} else {
				ps, err = e.client.ProductsInCategory(cmd.Context(), category)
			}
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), format, ps, productHeaders, productRows(ps, e.cfg.UI.CurrencyPrefix))
		},
	}
	cmd.Flags().String("category", "", "Only products of this category label")
	return cmd
}

func newUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			us, err := e.client.Users(cmd.Context())
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), format, us, userHeaders, userRows(us))
		},
	}
}

func newUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "user <id>",
		Short: "Show one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			id, err := strconv.Atoi(args[0])
			if err != nil || id <= 0 {
				return fmt.Errorf("user id must be a positive integer, got %q", args[0])
			}
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			u, err := e.client.User(cmd.Context(), id)
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), format, u, userHeaders, userRows([]catalog.User{u}))
		},
	}
}

func newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List category labels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			labels, err := e.client.Categories(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(labels))
			for _, l := range labels {
				rows = append(rows, []string{l})
			}
			return write(cmd.OutOrStdout(), format, labels, []string{"Category"}, rows)
		},
	}
}

// snapshot is the shape printed by `storefront snapshot`.
type snapshot struct {
	Products   int `json:"products" yaml:"products"`
	Users      int `json:"users" yaml:"users"`
	Categories int `json:"categories" yaml:"categories"`
}

func newSnapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Read products, users and categories concurrently and print counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			var s snapshot
			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				ps, err := e.client.Products(ctx)
				s.Products = len(ps)
				return err
			})
			g.Go(func() error {
				us, err := e.client.Users(ctx)
				s.Users = len(us)
				return err
			})
			g.Go(func() error {
				labels, err := e.client.Categories(ctx)
				s.Categories = len(labels)
				return err
			})
			if err := g.Wait(); err != nil {
				return err
			}
			rows := [][]string{
				{"products", strconv.Itoa(s.Products)},
				{"users", strconv.Itoa(s.Users)},
				{"categories", strconv.Itoa(s.Categories)},
			}
			return write(cmd.OutOrStdout(), format, s, []string{"Collection", "Count"}, rows)
		},
	}
}
