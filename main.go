package main

import (
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"eigen/internal/app"
	"eigen/internal/config"
	"eigen/internal/controller"
	"eigen/internal/decomp"
	"eigen/internal/grid"
	"eigen/internal/storage"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "eigen",
	Short: "Terminal matrix editor for decompositions",
	Long:  "Edit a small real matrix cell by cell. Every cell only accepts signed decimal numbers; the matrix can be saved to CSV or XLSX and handed to a decomposition.",
	Args:  cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cfgFile, cmd.Flags())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := c.Validate(); err != nil {
			return err
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	RunE: run,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./config.yaml)")
	def := controller.SizeAt(controller.DefaultSizeIndex)
	rootCmd.Flags().Int("rows", def, "initial number of rows")
	rootCmd.Flags().Int("cols", def, "initial number of columns")
	rootCmd.Flags().String("log-file", "eigen.log", "log file")
}

func run(cmd *cobra.Command, args []string) error {
	log := zap.L()

	kind, err := decomp.ParseKind(cfg.Decomposition)
	if err != nil {
		return err
	}

	ctl, err := controller.New(cfg.Matrix.Rows, cfg.Matrix.Cols,
		controller.WithMaxLength(cfg.Entry.MaxLength),
		controller.WithDeferred(cfg.Entry.Deferred),
		controller.WithLogger(log),
		controller.WithOnChange(func(cells [][]grid.Cell) {
			log.Debug("matrix changed", zap.String("cells", storage.FormatText(cells)))
		}),
	)
	if err != nil {
		return err
	}

	a := app.NewApp(ctl, app.Options{
		Decomposition: kind,
		MaxSize:       cfg.Matrix.MaxSize,
		CellWidth:     cfg.UI.CellWidth,
		Registry:      decomp.NewRegistry(),
		Logger:        log,
	})

	// start tcell
	s, err := tcell.NewScreen()
	if err != nil {
		return eris.Wrap(err, "cannot create screen")
	}
	if err := s.Init(); err != nil {
		return eris.Wrap(err, "cannot init screen")
	}
	defer s.Fini()
	s.Clear()

	if cfg.UI.Splash {
		app.SplashScreen(s, 150*time.Millisecond)
	}

	log.Info("started",
		zap.Int("rows", ctl.Rows()),
		zap.Int("cols", ctl.Cols()),
		zap.Stringer("decomposition", kind),
		zap.Bool("deferred", cfg.Entry.Deferred),
	)
	a.Run(s)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
