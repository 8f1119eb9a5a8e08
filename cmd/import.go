package main

import (
	"errors"
	"fmt"
	"os"

	"bookreview/internal/importer"
	"bookreview/internal/repository"

	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load books from a CSV file (isbn,title,author,year)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if file == "" {
				return errors.New("--file is required")
			}
			cfg, log := bootstrap()
			defer func() { _ = log.Sync() }()

			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("open %s: %w", file, err)
			}
			defer func() { _ = f.Close() }()

			conn, err := openDB(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer func() { _ = conn.Close() }()

			repos := repository.NewRepository(conn)
			res, err := importer.New(repos.Books, log).Import(cmd.Context(), f)
			if err != nil {
				log.Errorw("import failed", "file", file, "inserted", res.Inserted, "err", err)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d books, skipped %d existing\n", res.Inserted, res.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "books.csv", "CSV file to import")
	return cmd
}
