package cmd

import (
	"context"

	gconfig "github.com/Laisky/go-config/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/Laisky/zap"
	"github.com/spf13/cobra"

	"github.com/Laisky/word-association/internal/global"
	"github.com/Laisky/word-association/internal/web"
	"github.com/Laisky/word-association/library/log"
)

var apiCMD = &cobra.Command{
	Use:   "api",
	Short: "api",
	Long:  `HTTP API of the word-association game`,
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

		// sessions kept in sql need a writable database
		readOnly := s.SessionBackend != global.SessionBackendSQL
		global.SetupDB(ctx, s, readOnly)
		defer global.CloseDB()
		global.SetupServices(ctx, s)

		web.RunServer(gconfig.Shared.GetString("listen"), web.ServerOption{
			Controller:     global.LwowCtl,
			Throttle:       global.Throttle,
			AllowedOrigins: s.AllowedOrigins,
		})
	},
}

func init() {
	rootCMD.AddCommand(apiCMD)
}
