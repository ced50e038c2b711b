package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category", "cat"},
		Short:   "Manage income and expense categories",
		Long:    `List, add, show, update, and archive the categories transactions are filed under.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(getCategoryCmd())
	cmd.AddCommand(updateCategoryCmd())
	cmd.AddCommand(archiveCategoryCmd())

	return cmd
}

func categoryFilter(kind *model.CategoryKind, includeArchived bool) service.CategoryFilter {
	return service.CategoryFilter{Kind: kind, IncludeArchived: includeArchived}
}

func listCategoriesCmd() *cobra.Command {
	var (
		kindFlag string
		all      bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Long:  `Display categories ordered by kind and name. Archived categories are hidden unless --all is given.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kind, err := parseKindFlag(kindFlag)
			if err != nil {
				return err
			}

			return withSession(cmd, func(s *session) error {
				categories, err := s.ledger.Categories.List(cmd.Context(), categoryFilter(kind, all))
				if err != nil {
					return fmt.Errorf("failed to list categories: %w", describeError(err))
				}

				out := cmd.OutOrStdout()
				if len(categories) == 0 {
					fmt.Fprintln(out, cli.InfoStyle.Render("No categories found. Use 'spice categories add' to create one."))
					return nil
				}

				rows := make([][]string, 0, len(categories))
				for _, c := range categories {
					status := ""
					if c.Archived {
						status = cli.SubtleStyle.Render("archived")
					}
					rows = append(rows, []string{c.ID, c.Name, cli.FormatKind(c.Kind), status})
				}
				fmt.Fprint(out, cli.RenderTable([]string{"ID", "Name", "Kind", "Status"}, rows))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&kindFlag, "kind", "", "only show this kind (income, expense)")
	cmd.Flags().BoolVar(&all, "all", false, "include archived categories")

	return cmd
}

func addCategoryCmd() *cobra.Command {
	var kindFlag string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new category",
		Long: `Create a new category. Names are unique per kind, so "Refunds" may exist
once as income and once as expense.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := model.ParseCategoryKind(kindFlag)
			if err != nil {
				return fmt.Errorf("invalid --kind %q: use income or expense", kindFlag)
			}

			return withSession(cmd, func(s *session) error {
				category, err := s.ledger.Categories.Create(cmd.Context(), args[0], kind)
				if err != nil {
					return fmt.Errorf("failed to create category: %w", describeError(err))
				}

				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created %s category %q (ID: %s)",
					category.Kind, category.Name, category.ID)))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&kindFlag, "kind", "k", "", "category kind (income, expense)")
	_ = cmd.MarkFlagRequired("kind")

	return cmd
}

func getCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <id>",
		Aliases: []string{"show"},
		Short:   "Show one category",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *session) error {
				c, err := s.ledger.Categories.Get(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("failed to get category: %w", describeError(err))
				}

				content := fmt.Sprintf("ID:       %s\nKind:     %s\nArchived: %t\nCreated:  %s",
					c.ID, cli.FormatKind(c.Kind), c.Archived, c.CreatedAt.Local().Format("2006-01-02 15:04"))
				fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox(c.Name, content))
				return nil
			})
		},
	}
}

func updateCategoryCmd() *cobra.Command {
	var (
		name     string
		kindFlag string
		archived bool
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a category",
		Long: `Replace the name, kind, or archived flag of a category. Fields that are not
given keep their current value.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("name") && !flags.Changed("kind") && !flags.Changed("archived") {
				return fmt.Errorf("must specify --name, --kind or --archived to update")
			}

			return withSession(cmd, func(s *session) error {
				ctx := cmd.Context()
				current, err := s.ledger.Categories.Get(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to get category: %w", describeError(err))
				}

				input := service.CategoryInput{
					Name:     current.Name,
					Kind:     current.Kind,
					Archived: current.Archived,
				}
				if flags.Changed("name") {
					input.Name = name
				}
				if flags.Changed("kind") {
					kind, err := model.ParseCategoryKind(kindFlag)
					if err != nil {
						return fmt.Errorf("invalid --kind %q: use income or expense", kindFlag)
					}
					input.Kind = kind
				}
				if flags.Changed("archived") {
					input.Archived = archived
				}

				updated, err := s.ledger.Categories.Update(ctx, current.ID, input)
				if err != nil {
					return fmt.Errorf("failed to update category: %w", describeError(err))
				}

				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated category %q (%s)", updated.Name, updated.Kind)))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new category name")
	cmd.Flags().StringVar(&kindFlag, "kind", "", "new category kind (income, expense)")
	cmd.Flags().BoolVar(&archived, "archived", false, "set or clear the archived flag")

	return cmd
}

func archiveCategoryCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "archive <id>",
		Short: "Archive a category",
		Long: `Hide a category from default listings. Transactions that reference it are
left untouched and keep reporting under it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *session) error {
				ctx := cmd.Context()
				c, err := s.ledger.Categories.Get(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to get category: %w", describeError(err))
				}

				ok, err := confirmed(cmd, yes, fmt.Sprintf("Archive %s category %q?", c.Kind, c.Name))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Archive cancelled."))
					return nil
				}

				if err := s.ledger.Categories.Archive(ctx, c.ID); err != nil {
					return fmt.Errorf("failed to archive category: %w", describeError(err))
				}

				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Archived category %q", c.Name)))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation prompt")

	return cmd
}
