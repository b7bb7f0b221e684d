package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	gaitnotes "github.com/lucasjlepore/gait-analyzer"
	"github.com/lucasjlepore/gait-analyzer/phase"
	"github.com/lucasjlepore/gait-analyzer/pipeline"
	"github.com/lucasjlepore/gait-analyzer/session"
)

var (
	dbPath     string
	configPath string
	inputA     string
	inputB     string
	verbose    bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "gait_session",
	Short: "Save, annotate and report gait analysis sessions",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a session from one or two export archives",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, st *session.Store) error {
			s := session.New(logger)
			if err := bindInputs(s); err != nil {
				return err
			}
			if err := st.Save(ctx, s); err != nil {
				return err
			}
			fmt.Println(s.ID)
			return nil
		})
	},
}

var (
	annotateSlot    int
	annotateParam   string
	annotateComment string
	annotateWindows string
	annotateExclude bool
	annotateReset   bool
)

var annotateCmd = &cobra.Command{
	Use:   "annotate <session-id>",
	Short: "Set the comment, report flag or phase windows of one parameter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, st *session.Store) error {
			s, err := restore(ctx, st, args[0])
			if err != nil {
				return err
			}
			a, err := s.Analysis(session.Slot(annotateSlot), annotateParam)
			if err != nil {
				return err
			}
			if annotateReset {
				a.Reset()
			}
			if annotateWindows != "" {
				ws, err := parseWindows(annotateWindows)
				if err != nil {
					return err
				}
				if _, err := a.SetWindows(ws); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("comment") {
				a.SetComment(annotateComment)
			}
			if cmd.Flags().Changed("exclude") {
				a.SetIncluded(!annotateExclude)
			}
			if err := st.Save(ctx, s); err != nil {
				return err
			}
			printRows(a.Parameter, a.Rows())
			return nil
		})
	},
}

var reportSlot int

var reportCmd = &cobra.Command{
	Use:   "report <session-id>",
	Short: "Print the report of a saved session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, st *session.Store) error {
			s, err := restore(ctx, st, args[0])
			if err != nil {
				return err
			}
			notes, err := s.ReportNotes(session.Slot(reportSlot))
			if err != nil {
				return err
			}
			fmt.Print(notes)
			return nil
		})
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, st *session.Store) error {
			records, err := st.List(ctx)
			if err != nil {
				return err
			}
			for _, r := range records {
				fmt.Printf("%s  %s  %-40s %s\n", r.ID, r.UpdatedAt.Format("2006-01-02 15:04"), r.TitleA, r.TitleB)
			}
			return nil
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a saved session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, st *session.Store) error {
			return st.Delete(ctx, args[0])
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "gait_sessions.db", "Path to the session database")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Optional TOML/YAML configuration")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	for _, c := range []*cobra.Command{newCmd, annotateCmd, reportCmd} {
		c.Flags().StringVar(&inputA, "input", "", "Export archive or directory for slot 1")
		c.Flags().StringVar(&inputB, "input-b", "", "Export archive or directory for slot 2")
	}
	_ = newCmd.MarkFlagRequired("input")
	_ = annotateCmd.MarkFlagRequired("input")
	_ = reportCmd.MarkFlagRequired("input")

	annotateCmd.Flags().IntVar(&annotateSlot, "slot", 1, "Dataset slot (1 or 2)")
	annotateCmd.Flags().StringVar(&annotateParam, "parameter", "", "Kinematic parameter name")
	annotateCmd.Flags().StringVar(&annotateComment, "comment", "", "Analysis comment")
	annotateCmd.Flags().StringVar(&annotateWindows, "windows", "", "Phase windows as name:start:end, comma separated")
	annotateCmd.Flags().BoolVar(&annotateExclude, "exclude", false, "Leave the parameter out of the report")
	annotateCmd.Flags().BoolVar(&annotateReset, "reset", false, "Restore default windows and clear the comment first")
	_ = annotateCmd.MarkFlagRequired("parameter")

	reportCmd.Flags().IntVar(&reportSlot, "slot", 1, "Dataset slot (1 or 2)")

	rootCmd.AddCommand(newCmd, annotateCmd, reportCmd, listCmd, deleteCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "gait_session failed: %v\n", err)
		os.Exit(1)
	}
}

func withStore(ctx context.Context, fn func(context.Context, *session.Store) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := session.OpenStore(dbPath, logger)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(ctx, st)
}

func loadConfig() (gaitnotes.Config, error) {
	if configPath == "" {
		return gaitnotes.DefaultConfig(), nil
	}
	return gaitnotes.LoadConfig(configPath)
}

func bindInputs(s *session.Session) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	for slot, p := range map[session.Slot]string{session.SlotA: inputA, session.SlotB: inputB} {
		if p == "" {
			continue
		}
		_, d, err := pipeline.LoadDataset(p, cfg, logger)
		if err != nil {
			return err
		}
		if err := s.Bind(slot, d); err != nil {
			return err
		}
	}
	return nil
}

func restore(ctx context.Context, st *session.Store, id string) (*session.Session, error) {
	s, err := st.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := bindInputs(s); err != nil {
		return nil, err
	}
	if _, err := st.Restore(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// parseWindows reads "Stance:0:60,Swing:60:100".
func parseWindows(list string) ([]phase.Window, error) {
	var out []phase.Window
	for _, part := range strings.Split(list, ",") {
		fields := strings.Split(strings.TrimSpace(part), ":")
		if len(fields) != 3 {
			return nil, fmt.Errorf("window %q: want name:start:end", part)
		}
		start, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("window %q: %w", part, err)
		}
		end, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("window %q: %w", part, err)
		}
		out = append(out, phase.Window{Name: strings.TrimSpace(fields[0]), Start: start, End: end})
	}
	return out, nil
}

func printRows(name string, rows []phase.Row) {
	fmt.Println(name)
	fmt.Println(strings.Join(phase.Columns, " | "))
	for _, r := range rows {
		cells := []string{r.Name}
		for _, col := range phase.Columns[1:] {
			v, _ := r.Value(col)
			cells = append(cells, strconv.FormatFloat(v, 'g', -1, 64))
		}
		fmt.Println(strings.Join(cells, " | "))
	}
}
