package cmd

import (
	"context"

	errors "github.com/Laisky/errors/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	glog "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Laisky/word-association/cmd/tui"
	"github.com/Laisky/word-association/internal/global"
	"github.com/Laisky/word-association/library/log"
)

var tuiCMD = &cobra.Command{
	Use:   "tui",
	Short: "play in the terminal",
	Long: `Play the word-association game in the terminal.

Pick a favorite letter, then answer 26 cues per round. The first
round cues are the letters of the alphabet, later rounds answer the
words the engine gave back.

Keyboard shortcuts:
  Enter   Confirm word / next round
  Esc     Drop last word
  q       Quit after a round
  Ctrl+C  Quit`,
	Args: gcmd.NoExtraArgs,
	PreRun: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := initialize(ctx, cmd); err != nil {
			log.Logger.Panic("init", zap.Error(err))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		if err := runTUI(context.Background()); err != nil {
			log.Logger.Panic("run tui", zap.Error(err))
		}
	},
}

func init() {
	rootCMD.AddCommand(tuiCMD)
}

// runTUI plays a game against the local store and returns any start/run error.
func runTUI(ctx context.Context) error {
	// log lines would tear the alt screen
	if err := log.Logger.ChangeLevel(glog.LevelError); err != nil {
		return errors.Wrap(err, "change log level")
	}

	s := global.LoadSettings()
	global.SetupDB(ctx, s, s.SessionBackend != global.SessionBackendSQL)
	defer global.CloseDB()
	global.SetupServices(ctx, s)

	p := tea.NewProgram(
		tui.NewModel(global.LwowSvc),
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return errors.WithStack(err)
}
