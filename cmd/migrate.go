package cmd

import (
	"context"

	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/Laisky/zap"
	"github.com/spf13/cobra"

	"github.com/Laisky/word-association/internal/global"
	"github.com/Laisky/word-association/internal/web/lwow/dao"
	"github.com/Laisky/word-association/library/log"
)

var migrateCMD = &cobra.Command{
	Use:   "migrate",
	Short: "migrate",
	Long:  `create the associations and sessions tables, and purge expired sessions`,
	Args:  gcmd.NoExtraArgs,
	PreRun: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := initialize(ctx, cmd); err != nil {
			log.Logger.Panic("init", zap.Error(err))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		s := global.LoadSettings()
		global.SetupDB(ctx, s, false)
		defer global.CloseDB()

		if err := global.Associations.Migrate(ctx); err != nil {
			log.Logger.Panic("migrate associations", zap.Error(err))
		}

		sessions, err := dao.NewSQLSessionStore(ctx, global.AssocDB)
		if err != nil {
			log.Logger.Panic("migrate sessions", zap.Error(err))
		}
		purged, err := sessions.Purge(ctx)
		if err != nil {
			log.Logger.Panic("purge sessions", zap.Error(err))
		}

		n, err := global.Associations.Count(ctx)
		if err != nil {
			log.Logger.Panic("count associations", zap.Error(err))
		}
		log.Logger.Info("migrated",
			zap.Int64("associations", n),
			zap.Int64("purged_sessions", purged))
	},
}

func init() {
	rootCMD.AddCommand(migrateCMD)
}
