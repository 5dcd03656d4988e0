package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"path/filepath"
	"strconv"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/mcoot/truthlie/internal/model"
	"github.com/mcoot/truthlie/internal/services/round"
)

func newRoundCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "round",
		Short: "Single-subject round commands",
	}

	cmd.AddCommand(newRoundDraftCmd())
	cmd.AddCommand(newRoundCreateCmd())
	cmd.AddCommand(newRoundActivateCmd())
	cmd.AddCommand(newRoundFinishCmd())
	cmd.AddCommand(newRoundEditCmd())
	cmd.AddCommand(newRoundGetCmd())
	cmd.AddCommand(newRoundListCmd())
	cmd.AddCommand(newRoundCountsCmd())
	cmd.AddCommand(newRoundTallyCmd())
	cmd.AddCommand(newRoundVoteCmd())

	return cmd
}

// formFlags reads a round form from command-line flags, optionally on top
// of a JSON form file
type formFlags struct {
	fs         afero.Fs
	cmd        *cobra.Command
	file       string
	name       string
	department string
	introducer string
	picture    string
	titles     []string
	details    []string
	lie        int
}

func (f *formFlags) register(cmd *cobra.Command) {
	f.cmd = cmd
	f.fs = afero.NewOsFs()
	flags := cmd.Flags()
	flags.StringVar(&f.file, "form", "", "JSON form file to start from (as written by 'round edit --out')")
	flags.StringVar(&f.name, "name", "", "Employee name")
	flags.StringVar(&f.department, "department", "", "Department")
	flags.StringVar(&f.introducer, "introducer", "", "Who is introducing the employee")
	flags.StringVar(&f.picture, "picture", "", "Path to the employee's picture (max 5MB)")
	flags.StringArrayVarP(&f.titles, "statement", "s", nil, "Statement title; repeat three times")
	flags.StringArrayVar(&f.details, "detail", nil, "Statement detail, in statement order")
	flags.IntVar(&f.lie, "lie", 0, "Which statement is the lie (1-3)")
}

// RoundForm implements round.FormProvider
func (f *formFlags) RoundForm(ctx context.Context) (round.Form, error) {
	form := round.NewForm()
	if f.file != "" {
		data, err := afero.ReadFile(f.fs, f.file)
		if err != nil {
			return form, err
		}
		if err := json.Unmarshal(data, &form); err != nil {
			return form, fmt.Errorf("reading form %s: %w", f.file, err)
		}
	}

	changed := f.cmd.Flags().Changed
	if changed("name") {
		form.EmployeeName = f.name
	}
	if changed("department") {
		form.Department = f.department
	}
	if changed("introducer") {
		form.Introducer = f.introducer
	}
	if len(f.titles) > model.StatementCount || len(f.details) > model.StatementCount {
		return form, fmt.Errorf("at most %d statements", model.StatementCount)
	}
	for i, title := range f.titles {
		form.Statements[i].Title = title
	}
	for i, detail := range f.details {
		form.Statements[i].Content = detail
	}
	if changed("lie") {
		form.Lie = f.lie
	}
	if f.picture != "" {
		picture, err := pictureInfo(f.fs, f.picture)
		if err != nil {
			return form, err
		}
		form.Picture = picture
	}
	return form, nil
}

// pictureInfo reads the metadata kept for a round's picture
func pictureInfo(fs afero.Fs, path string) (*model.Picture, error) {
	info, err := fs.Stat(path)
	if err != nil {
		return nil, err
	}
	return &model.Picture{
		Name:         filepath.Base(path),
		Size:         info.Size(),
		Type:         mime.TypeByExtension(filepath.Ext(path)),
		LastModified: info.ModTime().UnixMilli(),
	}, nil
}

// parseStatement converts a 1-based statement number into an index
func parseStatement(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", model.ErrInvalidStatementIndex, arg)
	}
	return n - 1, nil
}

func newRoundDraftCmd() *cobra.Command {
	form := &formFlags{}

	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Save a round as a draft (only --name is required)",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := app.RoundController.Submit(cmd.Context(), form, false)
			if err != nil {
				return err
			}
			out.Print(r)
			return nil
		},
	}
	form.register(cmd)

	return cmd
}

func newRoundCreateCmd() *cobra.Command {
	form := &formFlags{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a round and make it active immediately",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := app.RoundController.Submit(cmd.Context(), form, true)
			if err != nil {
				return err
			}
			out.Print(r)
			return nil
		},
	}
	form.register(cmd)

	return cmd
}

func newRoundActivateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "activate <id>",
		Short: "Publish a draft round",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := app.RoundController.Activate(cmd.Context(), model.RoundID(args[0]))
			if err != nil {
				return err
			}
			out.Print(r)
			return nil
		},
	}
}

func newRoundFinishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "finish <id>",
		Short: "Close an active round",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := app.RoundController.Finish(cmd.Context(), model.RoundID(args[0]))
			if err != nil {
				return err
			}
			out.Print(r)
			return nil
		},
	}
}

func newRoundEditCmd() *cobra.Command {
	var outFile string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Take a draft back for editing",
		Long: `Removes the draft and prints its form. With --out the form is written as
JSON, ready to be changed and saved again with 'round draft --form'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := app.RoundController.EditDraft(cmd.Context(), model.RoundID(args[0]))
			if err != nil {
				return err
			}
			form := round.FormFromRound(draft)
			if outFile == "" {
				out.Print(form)
				return nil
			}

			data, err := json.MarshalIndent(form, "", "  ")
			if err != nil {
				return err
			}
			if err := afero.WriteFile(afero.NewOsFs(), outFile, data, 0o644); err != nil {
				return err
			}
			out.PrintMessage(fmt.Sprintf("Form written to %s", outFile))
			return nil
		},
	}

	cmd.Flags().StringVar(&outFile, "out", "", "Write the form as JSON to this file")

	return cmd
}

func newRoundGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a round",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := app.RoundController.Get(cmd.Context(), model.RoundID(args[0]))
			if err != nil {
				return err
			}
			out.Print(r)
			return nil
		},
	}
}

func newRoundListCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List rounds",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch model.RoundStatus(status) {
			case "", model.RoundStatusDraft, model.RoundStatusActive, model.RoundStatusFinished:
			default:
				return fmt.Errorf("invalid status %q (must be draft, active or finished)", status)
			}
			out.Print(app.RoundController.List(cmd.Context(), model.RoundStatus(status)))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Only show rounds with this status: draft, active, finished")

	return cmd
}

func newRoundCountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "counts",
		Short: "Count rounds by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			out.Print(app.RoundController.Counts(cmd.Context()))
			return nil
		},
	}
}

func newRoundTallyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tally <id>",
		Short: "Show how votes on a round are split",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tally, err := app.RoundController.Tally(cmd.Context(), model.RoundID(args[0]))
			if err != nil {
				return err
			}
			out.Print(tally)
			return nil
		},
	}
}

func newRoundVoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vote <id> <statement>",
		Short: "Guess which statement (1-3) is the lie",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parseStatement(args[1])
			if err != nil {
				return err
			}
			voter, err := resolveVoter(cmd.Context())
			if err != nil {
				return err
			}
			return app.VotingEngine.VoteOnRound(cmd.Context(), model.RoundID(args[0]), voter, idx)
		},
	}
}

// resolveVoter returns the configured voter id, or this device's id,
// creating one on first use
func resolveVoter(ctx context.Context) (model.PlayerID, error) {
	if cfg.Voter != "" {
		return model.PlayerID(cfg.Voter), nil
	}
	if id := app.Store.VoterID(ctx); id != "" {
		return id, nil
	}
	id := model.PlayerID("voter_" + app.Random.UUID())
	if err := app.Store.SaveVoterID(ctx, id); err != nil {
		return "", err
	}
	return id, nil
}
