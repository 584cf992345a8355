package cli

import (
	"datatrans/models"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func (a *app) statsCommand() *cobra.Command {
	var language string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show translation progress per model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open()
			if err != nil {
				return err
			}
			defer e.close()

			overview, err := e.svc.Progress.Overview(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printBanner(out, "Translation progress", bannerDefaultWidth)

			header := []string{"Model", "Slug", "Fields", "Words", "Done", "Total", "%"}
			for _, lang := range a.cfg.TargetLanguages() {
				if language == "" || lang.Code == language {
					header = append(header, lang.Code)
				}
			}

			table := tablewriter.NewWriter(out)
			table.Header(header)
			for _, m := range overview.Models {
				row := []string{
					m.Name,
					m.Slug,
					strconv.Itoa(len(m.FieldNames)),
					strconv.Itoa(m.Words),
					strconv.Itoa(m.Stats.Done),
					strconv.Itoa(m.Stats.Total),
					formatPercent(m.Stats.Percent),
				}
				for _, ls := range m.Languages {
					if language == "" || ls.Code == language {
						row = append(row, formatPercent(ls.Stats.Percent))
					}
				}
				if err := table.Append(row); err != nil {
					return err
				}
			}
			if err := table.Render(); err != nil {
				return err
			}

			fmt.Fprintf(out, "Total words: %d\n", overview.Words)
			return nil
		},
	}
	cmd.Flags().StringVar(&language, "language", "", "Only show this target language")
	return cmd
}

func (a *app) wordsCommand() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "words [slug...]",
		Short: "Show source word counts per field",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open()
			if err != nil {
				return err
			}
			defer e.close()
			ctx := cmd.Context()

			slugs := args
			if len(slugs) == 0 {
				for _, m := range e.reg.Models() {
					slugs = append(slugs, m.Slug())
				}
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header([]string{"Model", "Field", "Words"})
			for _, slug := range slugs {
				m, ok := e.reg.Lookup(slug)
				if !ok {
					return fmt.Errorf("unknown model: %s", slug)
				}
				if refresh {
					if err := e.svc.WordCounts.Invalidate(ctx, m.ContentType); err != nil {
						return err
					}
				}
				for _, f := range m.Fields {
					n, err := e.svc.WordCounts.CountFieldWords(ctx, m, f.Name)
					if err != nil {
						return err
					}
					if err := table.Append([]string{m.Slug(), f.Name, strconv.Itoa(n)}); err != nil {
						return err
					}
				}
				total, err := e.svc.WordCounts.CountModelWords(ctx, m)
				if err != nil {
					return err
				}
				if err := table.Append([]string{m.Slug(), "*", strconv.Itoa(total)}); err != nil {
					return err
				}
			}
			return table.Render()
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Recount instead of trusting cached counts")
	return cmd
}

func (a *app) obsoletesCommand() *cobra.Command {
	var all, purge bool

	cmd := &cobra.Command{
		Use:   "obsoletes",
		Short: "List or purge translations whose source text is gone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open()
			if err != nil {
				return err
			}
			defer e.close()
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if purge {
				deleted, err := e.svc.Obsoletes.Purge(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Purged %d obsolete translations\n", deleted)
				return nil
			}

			found := e.svc.Obsoletes.Review
			if all {
				found = e.svc.Obsoletes.Find
			}
			rows, err := found(ctx)
			if err != nil {
				return err
			}
			if err := writeObsoletes(out, rows); err != nil {
				return err
			}

			if when, count, ok, err := e.svc.Obsoletes.LastPurge(ctx); err == nil && ok {
				fmt.Fprintf(out, "Last purge: %s (%d deleted)\n", when.Local().Format("2006-01-02 15:04:05"), count)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "List every obsolete translation, not only edited ones and originals")
	cmd.Flags().BoolVar(&purge, "purge", false, "Delete all obsolete translations")
	return cmd
}

func writeObsoletes(w io.Writer, rows []models.KeyValue) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"ID", "Model", "Object", "Field", "Lang", "Edited", "Digest", "Value"})
	for _, kv := range rows {
		object := "-"
		if kv.ObjectID != nil {
			object = strconv.FormatInt(*kv.ObjectID, 10)
		}
		err := table.Append([]string{
			strconv.FormatUint(uint64(kv.ID), 10),
			kv.ContentType,
			object,
			kv.Field,
			kv.Language,
			strconv.FormatBool(kv.Edited),
			kv.Digest[:min(8, len(kv.Digest))],
			truncate(kv.Value, 40),
		})
		if err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d obsolete translations\n", len(rows))
	return err
}

func formatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
