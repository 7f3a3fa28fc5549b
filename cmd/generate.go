package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	errors "github.com/Laisky/errors/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/Laisky/zap"
	"github.com/spf13/cobra"

	"github.com/Laisky/word-association/internal/global"
	"github.com/Laisky/word-association/internal/web/lwow/dao"
	"github.com/Laisky/word-association/library/assoc"
	"github.com/Laisky/word-association/library/log"
)

var generateCMD = &cobra.Command{
	Use:   "generate",
	Short: "answer cue words once",
	Long: `Answer up to 26 cue words with the association engine and print
one "cue  response" line per cue. Missing cues are answered with "idk".

Example usage:
  lwow generate --words dog,cat,apple --favorite-letter d`,
	Args: gcmd.NoExtraArgs,
	PreRun: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := initialize(ctx, cmd); err != nil {
			log.Logger.Panic("init", zap.Error(err))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		words, err := cmd.Flags().GetStringSlice("words")
		if err != nil {
			log.Logger.Panic("read words flag", zap.Error(err))
		}
		used, err := cmd.Flags().GetStringSlice("used")
		if err != nil {
			log.Logger.Panic("read used flag", zap.Error(err))
		}
		letter, err := cmd.Flags().GetString("favorite-letter")
		if err != nil {
			log.Logger.Panic("read favorite-letter flag", zap.Error(err))
		}

		req := assoc.Request{Cues: words, Used: used, FavoriteLetter: letter}
		if cmd.Flags().Changed("p-two-hop") {
			p, err := cmd.Flags().GetFloat64("p-two-hop")
			if err != nil {
				log.Logger.Panic("read p-two-hop flag", zap.Error(err))
			}
			req.PTwoHop = &p
		}

		if err = runGenerate(context.Background(), os.Stdout, req); err != nil {
			log.Logger.Panic("generate", zap.Error(err))
		}
	},
}

func init() {
	rootCMD.AddCommand(generateCMD)

	generateCMD.Flags().StringSlice("words", nil, "comma separated cue words, at most 26 (required)")
	generateCMD.Flags().StringSlice("used", nil, "comma separated words answered in earlier rounds")
	generateCMD.Flags().String("favorite-letter", "", "favorite letter bias")
	generateCMD.Flags().Float64("p-two-hop", assoc.DefaultPTwoHop, "probability of two-hop expansion")
	if err := generateCMD.MarkFlagRequired("words"); err != nil {
		log.Logger.Panic("mark flag required", zap.Error(err))
	}
}

func runGenerate(ctx context.Context, out io.Writer, req assoc.Request) error {
	if len(req.Cues) > assoc.ResponseCount {
		return errors.Errorf("at most %d words, got %d", assoc.ResponseCount, len(req.Cues))
	}
	if req.PTwoHop == nil {
		p := global.LoadSettings().PTwoHop
		req.PTwoHop = &p
	}
	if p := *req.PTwoHop; p < 0 || p > 1 {
		return errors.Errorf("p-two-hop must be in [0,1], got %v", p)
	}

	db, err := global.OpenAssocDB(ctx, global.LoadSettings(), true)
	if err != nil {
		return errors.Wrap(err, "open association db")
	}
	defer db.Close() // nolint: errcheck

	store, err := dao.NewSQLStore(db)
	if err != nil {
		return errors.Wrap(err, "new association store")
	}

	return generateTo(ctx, out, store, req)
}

// generateTo prints each cue next to its response.
func generateTo(ctx context.Context, out io.Writer, store *dao.SQLStore, req assoc.Request) error {
	if n, err := store.Count(ctx); err != nil || n == 0 {
		return errors.Errorf("association table unavailable (rows=%d, err=%v)", n, err)
	}

	sel, err := assoc.NewSelector(store, assoc.WithLogger(log.Logger.Named("assoc")))
	if err != nil {
		return errors.Wrap(err, "new selector")
	}
	responses := assoc.NewGenerator(sel).Generate(ctx, req)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for i, cue := range req.Cues {
		fmt.Fprintf(tw, "%s\t%s\n", cue, responses[i])
	}

	return errors.Wrap(tw.Flush(), "flush output")
}
