package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/srndpty/j-law-grep/internal/api"
	"github.com/srndpty/j-law-grep/internal/output"
)

// searchOptions holds CLI flags for one-shot search.
type searchOptions struct {
	mode   string
	law    string
	year   string
	size   int
	page   int
	format string
	all    bool
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a one-shot search and print the results",
		Long: `Search the law corpus once and print the results, without the
interactive screen. Suitable for scripts and pipes.

Examples:
  jlawgrep search "民法 709条"
  jlawgrep search --mode regex "第[0-9]+条" --law 会社法
  jlawgrep search "損害賠償" --format json | jq '.hits[].path'
  jlawgrep search "時効" --all`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return runSearch(cmd.Context(), cmd, query, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "literal", "Query mode: literal, regex")
	cmd.Flags().StringVar(&opts.law, "law", "", "Restrict to one law (e.g. 民法)")
	cmd.Flags().StringVar(&opts.year, "year", "", "Restrict to an enactment year")
	cmd.Flags().IntVarP(&opts.size, "size", "n", 0, "Results per page (1-100, default from config)")
	cmd.Flags().IntVarP(&opts.page, "page", "p", 1, "1-based result page")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	cmd.Flags().BoolVar(&opts.all, "all", false, "Fetch every page of results")

	return cmd
}

func runSearch(ctx context.Context, cmd *cobra.Command, query string, opts searchOptions) error {
	format, err := output.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	req := api.SearchRequest{
		Q:    query,
		Mode: api.ParseMode(opts.mode),
		Size: cfg.PageSize,
		Page: opts.page,
	}
	if opts.size > 0 {
		req.Size = opts.size
	}
	filters := make(map[string]string)
	if opts.law != "" {
		filters[api.FilterLaw] = opts.law
	}
	if opts.year != "" {
		filters[api.FilterYear] = opts.year
	}
	if len(filters) > 0 {
		req.Filters = filters
	}

	slog.Info("search_started", slog.String("query", query), slog.String("mode", string(req.Mode)))
	searcher := newSearcher(cfg)

	var resp *api.SearchResponse
	if opts.all {
		resp, err = searchAllPages(ctx, searcher, req)
	} else {
		resp, err = searcher.Search(ctx, req)
	}
	if err != nil {
		return err
	}

	if hist := newHistoryStore(cfg); hist != nil {
		if herr := hist.Append(req); herr != nil {
			slog.Warn("history_append_failed", slog.String("error", herr.Error()))
		}
	}

	slog.Info("search_complete", slog.Int("total", resp.Total), slog.Int("hits", len(resp.Hits)))
	return output.New(cmd.OutOrStdout()).Results(resp, format)
}

// maxConcurrentPages bounds the fan-out of --all against the backend.
const maxConcurrentPages = 4

// searchAllPages fetches the first page, then the remaining pages
// concurrently, and stitches the hits back together in page order so the
// backend's relevance ordering is preserved.
func searchAllPages(ctx context.Context, searcher api.Searcher, req api.SearchRequest) (*api.SearchResponse, error) {
	req.Page = 1
	first, err := searcher.Search(ctx, req)
	if err != nil {
		return nil, err
	}

	pages := (first.Total + req.Size - 1) / req.Size
	if pages <= 1 {
		return first, nil
	}

	results := make([][]api.SearchHit, pages+1)
	results[1] = first.Hits

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentPages)
	for page := 2; page <= pages; page++ {
		pageReq := req
		pageReq.Page = page
		g.Go(func() error {
			resp, err := searcher.Search(ctx, pageReq)
			if err != nil {
				return err
			}
			results[pageReq.Page] = resp.Hits
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := &api.SearchResponse{Total: first.Total, TookMS: first.TookMS}
	for _, hits := range results[1:] {
		merged.Hits = append(merged.Hits, hits...)
	}
	return merged, nil
}
