package cli

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/mcoot/truthlie/internal/model"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Multiplayer session commands",
	}

	cmd.AddCommand(newSessionCreateCmd())
	cmd.AddCommand(newSessionJoinCmd())
	cmd.AddCommand(newSessionStartCmd())
	cmd.AddCommand(newSessionSubmitCmd())
	cmd.AddCommand(newSessionVoteCmd())
	cmd.AddCommand(newSessionGetCmd())
	cmd.AddCommand(newSessionListCmd())
	cmd.AddCommand(newSessionCardCmd())
	cmd.AddCommand(newSessionHistoryCmd())
	cmd.AddCommand(newSessionPlayersCmd())

	return cmd
}

func sessionCode(arg string) model.SessionCode {
	return model.SessionCode(arg)
}

func newSessionCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <host-name>",
		Short: "Create a session and join it as host",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := app.SessionController.Create(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out.Print(session)
			return nil
		},
	}
}

func newSessionJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <code> <name>",
		Short: "Join a waiting session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			player, err := app.SessionController.Join(cmd.Context(), sessionCode(args[0]), args[1])
			if err != nil {
				return err
			}
			out.Print(player)
			return nil
		},
	}
}

func newSessionStartCmd() *cobra.Command {
	var player string

	cmd := &cobra.Command{
		Use:   "start <code>",
		Short: "Start the session (host only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := app.SessionController.Start(cmd.Context(), sessionCode(args[0]), model.PlayerID(player))
			if err != nil {
				return err
			}
			out.Print(session)
			return nil
		},
	}

	cmd.Flags().StringVar(&player, "player", "", "Host player id")
	_ = cmd.MarkFlagRequired("player")

	return cmd
}

func newSessionSubmitCmd() *cobra.Command {
	var player string

	cmd := &cobra.Command{
		Use:   "submit <code> <statement> <statement> <statement>",
		Short: "Submit your three statements when it is your turn",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			texts := [model.StatementCount]string{args[1], args[2], args[3]}
			session, err := app.SessionController.SubmitStatements(cmd.Context(), sessionCode(args[0]), model.PlayerID(player), texts)
			if err != nil {
				return err
			}
			out.Print(session)
			return nil
		},
	}

	cmd.Flags().StringVar(&player, "player", "", "Your player id")
	_ = cmd.MarkFlagRequired("player")

	return cmd
}

func newSessionVoteCmd() *cobra.Command {
	var player string

	cmd := &cobra.Command{
		Use:   "vote <code> <statement>",
		Short: "Guess which of the turn-holder's statements (1-3) is the lie",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parseStatement(args[1])
			if err != nil {
				return err
			}
			outcome, err := app.SessionController.SubmitVote(cmd.Context(), sessionCode(args[0]), model.PlayerID(player), idx)
			if err != nil {
				return err
			}
			out.Print(outcome)
			return nil
		},
	}

	cmd.Flags().StringVar(&player, "player", "", "Your player id")
	_ = cmd.MarkFlagRequired("player")

	return cmd
}

func newSessionGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <code>",
		Short: "Show a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := app.SessionController.Get(cmd.Context(), sessionCode(args[0]))
			if err != nil {
				return err
			}
			out.Print(session)
			return nil
		},
	}
}

func newSessionListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sessions waiting for players",
		RunE: func(cmd *cobra.Command, args []string) error {
			out.Print(app.SessionController.ListOpen(cmd.Context()))
			return nil
		},
	}
}

func newSessionCardCmd() *cobra.Command {
	var (
		outFile string
		size    int
	)

	cmd := &cobra.Command{
		Use:   "card <code>",
		Short: "Write a QR code join card for the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := sessionCode(args[0])
			png, err := app.ExportService.JoinCard(cmd.Context(), code, size)
			if err != nil {
				return err
			}
			if outFile == "" {
				outFile = fmt.Sprintf("join-%s.png", code)
			}
			if err := afero.WriteFile(afero.NewOsFs(), outFile, png, 0o644); err != nil {
				return err
			}
			out.PrintMessage(fmt.Sprintf("Join card written to %s", outFile))
			return nil
		},
	}

	cmd.Flags().StringVar(&outFile, "out", "", "Output PNG path (default: join-<code>.png)")
	cmd.Flags().IntVar(&size, "size", 0, "Card size in pixels (default: 320)")

	return cmd
}

func newSessionHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently finished sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out.Print(app.SessionController.History(cmd.Context(), limit))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Number of sessions to show (0 for all)")

	return cmd
}

func newSessionPlayersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "players",
		Short: "Show lifetime player statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out.Print(app.SessionController.Players(cmd.Context()))
			return nil
		},
	}
}
