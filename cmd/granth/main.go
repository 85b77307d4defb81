package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"granth/internal/bootstrap"
	catalogdto "granth/internal/modules/catalog/dto"
	engagementdto "granth/internal/modules/engagement/dto"
	"granth/internal/platform/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var vaultPath string

	root := &cobra.Command{
		Use:           "granth",
		Short:         "Read scripture PDFs and earn Satkarm points",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&vaultPath, "vault", ".", "vault path holding .granth/ and the reading journal")

	root.AddCommand(newReadCmd(&vaultPath))
	root.AddCommand(newResolveCmd(&vaultPath))
	root.AddCommand(newPageCmd(&vaultPath))
	root.AddCommand(newBookCmd(&vaultPath))
	root.AddCommand(newProgressCmd(&vaultPath))
	root.AddCommand(newProfileCmd(&vaultPath))
	root.AddCommand(newServeCmd(&vaultPath))
	root.AddCommand(newMigrateCmd(&vaultPath))
	return root
}

// withApp builds the application for one command and tears it down after,
// draining any queued engagement writes.
func withApp(vaultPath string, logToFile bool, run func(app *bootstrap.App) error) error {
	cfg, err := config.New(vaultPath)
	if err != nil {
		return err
	}
	log, closer, err := bootstrap.NewLogger(cfg, logToFile)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	app, err := bootstrap.New(context.Background(), cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()
	return run(app)
}

func newReadCmd(vaultPath *string) *cobra.Command {
	var url string
	var page int
	read := &cobra.Command{
		Use:   "read [slug]",
		Short: "Open the reader (a catalog book, a --url, or the book list)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			target := bootstrap.OpenTarget{URL: url, Page: page}
			if len(args) == 1 {
				target.Slug = args[0]
			}
			return withApp(*vaultPath, true, func(app *bootstrap.App) error {
				return bootstrap.RunTUI(app, target)
			})
		},
	}
	read.Flags().StringVar(&url, "url", "", "PDF link or local path (overrides the catalog link)")
	read.Flags().IntVar(&page, "page", 1, "page to start on")
	return read
}

func newResolveCmd(vaultPath *string) *cobra.Command {
	var url string
	resolve := &cobra.Command{
		Use:   "resolve [slug]",
		Short: "Show the direct download link a book would load from",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slug := firstArg(args)
			if slug == "" && strings.TrimSpace(url) == "" {
				return fmt.Errorf("a slug or --url is required")
			}
			return withApp(*vaultPath, false, func(app *bootstrap.App) error {
				out, err := app.ViewerCLI.Resolve(context.Background(), slug, url)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "book=%s title=%q\nsource=%s\nurl=%s\n", out.BookID, out.Title, out.SourceURL, out.URL)
				return nil
			})
		},
	}
	resolve.Flags().StringVar(&url, "url", "", "PDF link or local path")
	return resolve
}

func newPageCmd(vaultPath *string) *cobra.Command {
	var url string
	var page int
	pageCmd := &cobra.Command{
		Use:   "page [slug]",
		Short: "Load a book and print the text of one page",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slug := firstArg(args)
			if slug == "" && strings.TrimSpace(url) == "" {
				return fmt.Errorf("a slug or --url is required")
			}
			return withApp(*vaultPath, false, func(app *bootstrap.App) error {
				out, err := app.ViewerCLI.ReadPage(context.Background(), slug, url, page)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s  page %d/%d\n\n%s\n", out.Title, out.Page, out.PageCount, out.Text)
				return nil
			})
		},
	}
	pageCmd.Flags().StringVar(&url, "url", "", "PDF link or local path")
	pageCmd.Flags().IntVar(&page, "page", 1, "page number")
	return pageCmd
}

func newBookCmd(vaultPath *string) *cobra.Command {
	book := &cobra.Command{Use: "book", Short: "Manage the book catalog"}

	var input catalogdto.AddBookInput
	add := &cobra.Command{
		Use:   "add --title <title> --pdf-url <link>",
		Short: "Add or update a catalog book",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*vaultPath, false, func(app *bootstrap.App) error {
				out, err := app.CatalogCLI.AddBook(context.Background(), input)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s)\n", out.Title, out.Slug)
				return nil
			})
		},
	}
	add.Flags().StringVar(&input.Slug, "slug", "", "book slug (derived from the title when empty)")
	add.Flags().StringVar(&input.Title, "title", "", "book title")
	add.Flags().StringVar(&input.Author, "author", "", "author or tradition")
	add.Flags().StringVar(&input.PDFURL, "pdf-url", "", "PDF link (drive and dropbox share links are accepted)")
	add.Flags().IntVar(&input.Pages, "pages", 0, "page count, if known")
	add.Flags().StringVar(&input.Language, "language", "", "language of the text")

	show := &cobra.Command{
		Use:   "show <slug>",
		Short: "Show one catalog book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*vaultPath, false, func(app *bootstrap.App) error {
				b, err := app.CatalogCLI.ShowBook(context.Background(), args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "slug: %s\ntitle: %s\nauthor: %s\nlanguage: %s\npages: %d\npdf: %s\nactive: %t\n",
					b.Slug, b.Title, b.Author, b.Language, b.Pages, b.PDFURL, b.Active)
				return nil
			})
		},
	}

	var all bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List catalog books",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*vaultPath, false, func(app *bootstrap.App) error {
				books, err := app.CatalogCLI.ListBooks(context.Background(), all)
				if err != nil {
					return err
				}
				if len(books) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no books")
					return nil
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, b := range books {
					_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", b.Slug, b.Title, b.Author, b.Active)
				}
				return tw.Flush()
			})
		},
	}
	list.Flags().BoolVar(&all, "all", false, "include inactive books")

	book.AddCommand(add, show, list,
		newSetActiveCmd(vaultPath, "activate", true),
		newSetActiveCmd(vaultPath, "deactivate", false))
	return book
}

func newSetActiveCmd(vaultPath *string, use string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <slug>",
		Short: strings.ToUpper(use[:1]) + use[1:] + " a catalog book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*vaultPath, false, func(app *bootstrap.App) error {
				b, err := app.CatalogCLI.SetActive(context.Background(), args[0], active)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s active=%t\n", b.Slug, b.Active)
				return nil
			})
		},
	}
}

func newProgressCmd(vaultPath *string) *cobra.Command {
	progress := &cobra.Command{Use: "progress", Short: "Reading progress and engagement"}

	lister := func(use, short string, fetch func(*bootstrap.App) ([]engagementdto.ProgressOutput, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withApp(*vaultPath, false, func(app *bootstrap.App) error {
					recs, err := fetch(app)
					if err != nil {
						return err
					}
					printProgress(cmd, recs)
					return nil
				})
			},
		}
	}
	progress.AddCommand(
		lister("list", "Books in progress", func(app *bootstrap.App) ([]engagementdto.ProgressOutput, error) {
			return app.EngagementCLI.ListInProgress(context.Background())
		}),
		lister("completed", "Completed books", func(app *bootstrap.App) ([]engagementdto.ProgressOutput, error) {
			return app.EngagementCLI.ListCompleted(context.Background())
		}),
		lister("recent", "Books read in the last 30 days", func(app *bootstrap.App) ([]engagementdto.ProgressOutput, error) {
			return app.EngagementCLI.ListRecent(context.Background())
		}),
	)

	progress.AddCommand(&cobra.Command{
		Use:   "set <slug> <current-page> <total-pages>",
		Short: "Record the current page of a book",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			nums, err := atoiAll(args[1:])
			if err != nil {
				return err
			}
			return withApp(*vaultPath, false, func(app *bootstrap.App) error {
				out, err := app.EngagementCLI.UpdateProgress(context.Background(), args[0], nums[0], nums[1])
				if err != nil {
					return err
				}
				printProgress(cmd, []engagementdto.ProgressOutput{out})
				return nil
			})
		},
	})

	progress.AddCommand(&cobra.Command{
		Use:   "complete <slug>",
		Short: "Mark a book as completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*vaultPath, false, func(app *bootstrap.App) error {
				if err := app.EngagementCLI.MarkCompleted(context.Background(), args[0]); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s completed\n", args[0])
				return nil
			})
		},
	})

	progress.AddCommand(&cobra.Command{
		Use:   "record <slug> <page> <seconds>",
		Short: "Record time spent on a page",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			nums, err := atoiAll(args[1:])
			if err != nil {
				return err
			}
			return withApp(*vaultPath, false, func(app *bootstrap.App) error {
				out, err := app.EngagementCLI.RecordEngagement(context.Background(), args[0], nums[0], nums[1])
				if err != nil {
					return err
				}
				if !out.Recorded {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "interval too short; nothing recorded")
					return nil
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s page %d: %ds, +%d points (%s)\n", out.BookID, out.Page, out.Seconds, out.PointsEarned, out.Date)
				return nil
			})
		},
	})
	return progress
}

func newProfileCmd(vaultPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show Satkarm points and book counts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*vaultPath, false, func(app *bootstrap.App) error {
				p, err := app.EngagementCLI.Profile(context.Background())
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "user: %s\npoints: %d\nin progress: %d\ncompleted: %d\n",
					p.UserID, p.TotalPoints, p.BooksInProgress, p.BooksCompleted)
				return nil
			})
		},
	}
}

func newServeCmd(vaultPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog and progress JSON API",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return withApp(*vaultPath, false, func(app *bootstrap.App) error {
				return bootstrap.Serve(ctx, app)
			})
		},
	}
}

func newMigrateCmd(vaultPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the hosted database schema",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.New(*vaultPath)
			if err != nil {
				return err
			}
			log, closer, err := bootstrap.NewLogger(cfg, false)
			if err != nil {
				return err
			}
			defer func() { _ = closer.Close() }()
			return bootstrap.Migrate(cfg, log)
		},
	}
}

func printProgress(cmd *cobra.Command, recs []engagementdto.ProgressOutput) {
	if len(recs) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "nothing here yet")
		return
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, r := range recs {
		state := fmt.Sprintf("%.1f%%", r.CompletionPercentage)
		if r.IsCompleted {
			state = "completed " + r.CompletedAt.Format("2006-01-02")
		}
		_, _ = fmt.Fprintf(tw, "%s\tp.%d/%d\t%s\t%s\n", r.BookID, r.CurrentPage, r.TotalPages, state, r.LastReadAt.Format("2006-01-02 15:04"))
	}
	_ = tw.Flush()
}

func atoiAll(args []string) ([]int, error) {
	out := make([]int, len(args))
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", a)
		}
		out[i] = n
	}
	return out, nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
