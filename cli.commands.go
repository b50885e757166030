package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// clientOptions holds the flags shared by all client commands.
type clientOptions struct {
	apiURL  string
	timeout time.Duration
	verbose bool
	noColor bool
}

// newClient builds the api client described by the options.
func (o *clientOptions) newClient() (*CatalogClient, error) {
	logger := zap.NewNop()
	if o.verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
		logger = l
	}
	return NewCatalogClient(logger, o.apiURL, &http.Client{Timeout: o.timeout})
}

// color reports whether overdue rows can be printed in color on out.
func (o *clientOptions) color(out io.Writer) bool {
	if o.noColor {
		return false
	}
	f, ok := out.(*os.File)
	return ok && IsColorTerminal(f)
}

// NewRootCommand assembles the `serve` command and the catalog client commands.
func NewRootCommand() *cobra.Command {
	opts := &clientOptions{}
	root := &cobra.Command{
		Use:           "library",
		Short:         "Library catalog server and terminal client",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", GitTag, GitCommit, BuildTime),
	}

	defaultURL := os.Getenv("DLAP_API_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:5000"
	}
	root.PersistentFlags().StringVar(&opts.apiURL, "api", defaultURL, "base url of the catalog api")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "api call timeout")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log api calls")
	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "never highlight overdue books in color")

	root.AddCommand(
		newServeCommand(),
		newListCommand(opts),
		newShowCommand(opts),
		newAddCommand(opts),
		newEditCommand(opts),
		newDeleteCommand(opts),
		newBorrowCommand(opts),
		newReturnCommand(opts),
	)
	return root
}

func newServeCommand() *cobra.Command {
	var configFile, envFile string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the json api and the html interface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			config, err := LoadAndInitConfigs(configFile, envFile, GitCommit, GitTag, BuildTime)
			if err != nil {
				return err
			}
			app, err := NewApp(config)
			if err != nil {
				return fmt.Errorf("application failed to initialize: %w", err)
			}
			return app.Run()
		},
	}
	cmd.Flags().StringVar(&configFile, "config", "config.yml", "path to the yaml configuration file")
	cmd.Flags().StringVar(&envFile, "env", "config.env", "path to the optional environment file")
	return cmd
}

func newListCommand(opts *clientOptions) *cobra.Command {
	var filter BookFilter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List books, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch filter.Borrowed {
			case "all":
				filter.Borrowed = ""
			case "", FilterAvailable, FilterBorrowed:
			default:
				return fmt.Errorf("invalid status %q: must be all, available or borrowed", filter.Borrowed)
			}
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			books, err := c.List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return RenderBooks(cmd.OutOrStdout(), books, opts.color(cmd.OutOrStdout()))
		},
	}
	cmd.Flags().StringVar(&filter.Borrowed, "status", "all", "all, available or borrowed")
	cmd.Flags().StringVar(&filter.Category, "category", "", "exact category (case-insensitive)")
	cmd.Flags().StringVar(&filter.Name, "name", "", "exact name (case-insensitive)")
	return cmd
}

func newShowCommand(opts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show the details of a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := ParseBookID(args[0])
			if err != nil {
				return err
			}
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			entry, err := c.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return RenderBook(cmd.OutOrStdout(), entry)
		},
	}
}

// bookFlags binds the descriptive fields of a book to command flags.
func bookFlags(cmd *cobra.Command, book *Book) {
	cmd.Flags().StringVar(&book.Name, "name", "", "book name")
	cmd.Flags().StringVar(&book.PublicationDate, "date", "", "publication date")
	cmd.Flags().StringVar(&book.Author, "author", "", "author")
	cmd.Flags().StringVar(&book.Category, "category", "", "category: "+strings.Join(Categories, ", "))
}

func newAddCommand(opts *clientOptions) *cobra.Command {
	var book Book
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new book",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			entry, err := c.Add(cmd.Context(), book)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Book %q added with id %d.\n", entry.Name, entry.ID)
			return nil
		},
	}
	bookFlags(cmd, &book)
	for _, name := range []string{"name", "date", "author", "category"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newEditCommand(opts *clientOptions) *cobra.Command {
	var changes Book
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit the name, publication date, author or category of a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := ParseBookID(args[0])
			if err != nil {
				return err
			}
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			current, err := c.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			book := mergeBookChanges(current.Book, changes)
			entry, err := c.Update(cmd.Context(), id, book)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Book %d updated.\n", entry.ID)
			return nil
		},
	}
	bookFlags(cmd, &changes)
	return cmd
}

// mergeBookChanges applies the non-empty descriptive fields of changes onto current.
func mergeBookChanges(current, changes Book) Book {
	if changes.Name != "" {
		current.Name = changes.Name
	}
	if changes.PublicationDate != "" {
		current.PublicationDate = changes.PublicationDate
	}
	if changes.Author != "" {
		current.Author = changes.Author
	}
	if changes.Category != "" {
		current.Category = changes.Category
	}
	return current
}

func newDeleteCommand(opts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a book. Following books move one position down",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := ParseBookID(args[0])
			if err != nil {
				return err
			}
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			book, err := c.Delete(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Book %q deleted.\n", book.Name)
			return nil
		},
	}
}

func newBorrowCommand(opts *clientOptions) *cobra.Command {
	var req BorrowRequest
	cmd := &cobra.Command{
		Use:   "borrow <id>",
		Short: "Borrow an available book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := ParseBookID(args[0])
			if err != nil {
				return err
			}
			if req.DueDate != "" {
				if _, err = time.Parse(DateLayout, req.DueDate); err != nil {
					return fmt.Errorf("invalid due date %q: expected dd.mm.yyyy", req.DueDate)
				}
			}
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			entry, err := c.Borrow(cmd.Context(), id, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Book %q borrowed on %s.\n", entry.Name, entry.BorrowDate)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.DueDate, "due", "", "due date as dd.mm.yyyy")
	cmd.Flags().StringVar(&req.BorrowerName, "borrower", "", "borrower name")
	_ = cmd.MarkFlagRequired("due")
	return cmd
}

func newReturnCommand(opts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "return <id>",
		Short: "Return a borrowed book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := ParseBookID(args[0])
			if err != nil {
				return err
			}
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			entry, err := c.Return(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Book %q returned.\n", entry.Name)
			return nil
		},
	}
}

// Execute runs the root command and prints the error message of failed commands.
func Execute() int {
	if err := NewRootCommand().Execute(); err != nil {
		var apiErr *APIClientError
		if errors.As(err, &apiErr) {
			fmt.Fprintln(os.Stderr, "Error:", apiErr.Message)
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		return 1
	}
	return 0
}
