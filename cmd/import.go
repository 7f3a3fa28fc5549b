package cmd

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strings"

	errors "github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/Laisky/zap"
	"github.com/spf13/cobra"
	"golang.org/x/text/unicode/norm"

	"github.com/Laisky/word-association/internal/global"
	"github.com/Laisky/word-association/internal/web/lwow/dao"
	"github.com/Laisky/word-association/library/assoc"
	"github.com/Laisky/word-association/library/log"
)

const importBatchSize = 500

var importCMD = &cobra.Command{
	Use:   "import",
	Short: "import associations from csv",
	Long: `Import association rows from a CSV file into the associations table.

Every row is "cue,assoc1,assoc2"; a leading header row is skipped.
Text is NFKC normalized, the cue is reduced to its first lowercase
alphanumeric token and the letter column is the cue's first character.
Existing cues are replaced.

Example usage:
  lwow import -c settings.yml --file lwow.csv`,
	Args: gcmd.NoExtraArgs,
	PreRun: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := initialize(ctx, cmd); err != nil {
			log.Logger.Panic("init", zap.Error(err))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := runImport(ctx, cmd.Flag("file").Value.String(), gconfig.Shared.GetBool("dry")); err != nil {
			log.Logger.Panic("import associations", zap.Error(err))
		}
	},
}

func init() {
	rootCMD.AddCommand(importCMD)

	importCMD.Flags().String("file", "", "path to the association CSV file (required)")
	if err := importCMD.MarkFlagRequired("file"); err != nil {
		log.Logger.Panic("mark flag required", zap.Error(err))
	}
}

func runImport(ctx context.Context, path string, dry bool) error {
	fp, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer fp.Close() // nolint: errcheck

	entries, skipped, err := readAssociationsCSV(fp)
	if err != nil {
		return errors.Wrapf(err, "read %s", path)
	}
	log.Logger.Info("parsed association csv",
		zap.String("file", path),
		zap.Int("rows", len(entries)),
		zap.Int("skipped", skipped))
	if dry {
		log.Logger.Info("dry run, nothing written")
		return nil
	}

	s := global.LoadSettings()
	global.SetupDB(ctx, s, false)
	defer global.CloseDB()

	if err = global.Associations.Migrate(ctx); err != nil {
		return errors.Wrap(err, "migrate")
	}

	var cache *dao.CachedStore
	if global.Redis != nil && s.CacheTTL > 0 {
		if cache, err = dao.NewCachedStore(global.Associations, global.Redis.Client(),
			s.CacheTTL, log.Logger.Named("lookup_cache")); err != nil {
			return errors.Wrap(err, "new cached store")
		}
	}

	var total int
	for start := 0; start < len(entries); start += importBatchSize {
		batch := entries[start:min(start+importBatchSize, len(entries))]
		n, err := global.Associations.Upsert(ctx, batch)
		if err != nil {
			return errors.Wrapf(err, "upsert batch at row %d", start)
		}
		total += n

		if cache != nil {
			cues := make([]string, 0, len(batch))
			for _, e := range batch {
				cues = append(cues, e.Cue)
			}
			if err = cache.Invalidate(ctx, cues...); err != nil {
				log.Logger.Warn("invalidate lookup cache", zap.Error(err))
			}
		}
	}

	log.Logger.Info("imported associations", zap.Int("rows", total))
	return nil
}

// readAssociationsCSV parses "cue,assoc1,assoc2" rows.
// Rows with fewer than three fields, an empty cue or two empty
// associations are counted as skipped.
func readAssociationsCSV(r io.Reader) (entries []assoc.Entry, skipped int, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	for line := 0; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, skipped, errors.Wrapf(err, "read csv line %d", line+1)
		}

		if line == 0 && len(record) > 0 && strings.EqualFold(cleanText(record[0]), "cue") {
			continue
		}
		if len(record) < 3 {
			skipped++
			continue
		}

		cue := assoc.Normalize(cleanText(record[0]))
		a1, a2 := cleanText(record[1]), cleanText(record[2])
		if cue == "" || (a1 == "" && a2 == "") {
			skipped++
			continue
		}

		entries = append(entries, assoc.Entry{
			Cue:    cue,
			Letter: cue[:1],
			Assoc1: a1,
			Assoc2: a2,
		})
	}

	return entries, skipped, nil
}

// cleanText folds compatibility characters such as full-width letters,
// then trims and lowercases.
func cleanText(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(s)))
}
