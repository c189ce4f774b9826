package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/toky-team/toky-admin/internal/domain"
	"github.com/toky-team/toky-admin/internal/feed"
	"github.com/toky-team/toky-admin/internal/pager"
	"github.com/toky-team/toky-admin/internal/raffle"
	"github.com/toky-team/toky-admin/internal/realtime"
)

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	dimColor  = color.New(color.Faint)
)

func createLoginCmd(a *app) *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Start an admin session (simulator only; production uses OAuth)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.api.Login(cmd.Context(), username); err != nil {
				return err
			}
			me, err := a.api.Me(cmd.Context())
			if err != nil {
				return err
			}
			okColor.Printf("logged in as %s (%s)\n", me.Username, me.University)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "user00", "username to log in as")
	return cmd
}

func createHealthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check backend health",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := a.api.Health(cmd.Context())
			if err != nil {
				return err
			}
			okColor.Printf("backend status: %s\n", h.Status)
			return nil
		},
	}
}

func createChatCmd(a *app) *cobra.Command {
	chatCmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat history and moderation",
	}

	var sportName string
	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recent messages for a sport",
		RunE: func(cmd *cobra.Command, args []string) error {
			sport, err := parseSport(sportName)
			if err != nil {
				return err
			}
			p := pager.New(a.api, limit)
			if err := p.Load(cmd.Context(), sport); err != nil {
				return err
			}
			for _, c := range p.Items() {
				printChat(c)
			}
			if p.HasNext() {
				dimColor.Println("(more messages available)")
			}
			return nil
		},
	}
	listCmd.Flags().StringVar(&sportName, "sport", "football", "sport to list")
	listCmd.Flags().IntVar(&limit, "limit", pager.DefaultLimit, "page size")

	var watchSport string
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream live messages for a sport's room until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			sport, err := parseSport(watchSport)
			if err != nil {
				return err
			}
			f, err := feed.NewFeed(cmd.Context(), a.reg, a.log)
			if err != nil {
				return err
			}
			conn := a.reg.Get("chat")
			conn.On(realtime.EventReceiveMessage, func(data json.RawMessage) {
				var p realtime.ReceiveMessagePayload
				if json.Unmarshal(data, &p) == nil {
					printChat(p.Message)
				}
			})
			conn.On(realtime.EventMessageFiltered, func(data json.RawMessage) {
				var p realtime.MessageFilteredPayload
				if json.Unmarshal(data, &p) == nil {
					warnColor.Printf("message %s filtered\n", p.FilteredMessage.ID)
				}
			})
			if err := f.JoinRoom(sport); err != nil {
				return err
			}
			defer f.LeaveRoom(sport)

			fmt.Printf("watching %s chat, ctrl-c to stop\n", sport)
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			<-sigCh
			return nil
		},
	}
	watchCmd.Flags().StringVar(&watchSport, "sport", "football", "sport room to watch")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete messages by ID",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deleted, err := a.api.BulkDeleteMessages(cmd.Context(), args)
			for _, id := range deleted {
				okColor.Printf("deleted %s\n", id)
			}
			return err
		},
	}

	chatCmd.AddCommand(listCmd, watchCmd, deleteCmd)
	return chatCmd
}

func printChat(c domain.Chat) {
	if c.Removed() {
		dimColor.Printf("[%s] (removed message)\n", c.CreatedAt.Format("15:04:05"))
		return
	}
	fmt.Printf("[%s] %s %s: %s\n", c.CreatedAt.Format("15:04:05"), c.ID, c.Username, c.Content)
}

func createScoreCmd(a *app) *cobra.Command {
	scoreCmd := &cobra.Command{
		Use:   "score",
		Short: "Scoreboard control",
	}

	var sportName string
	makeAction := func(use, short string, run func(cmd *cobra.Command, sport domain.Sport) (domain.Score, error)) *cobra.Command {
		c := &cobra.Command{
			Use:   use,
			Short: short,
			RunE: func(cmd *cobra.Command, args []string) error {
				sport, err := parseSport(sportName)
				if err != nil {
					return err
				}
				score, err := run(cmd, sport)
				if err != nil {
					return err
				}
				printScore(score)
				return nil
			},
		}
		return c
	}

	getCmd := makeAction("get", "Show the scoreboard", func(cmd *cobra.Command, sport domain.Sport) (domain.Score, error) {
		return a.api.GetScore(cmd.Context(), sport)
	})
	startCmd := makeAction("start", "Start the match", func(cmd *cobra.Command, sport domain.Sport) (domain.Score, error) {
		return a.api.StartMatch(cmd.Context(), sport)
	})
	endCmd := makeAction("end", "End the match", func(cmd *cobra.Command, sport domain.Sport) (domain.Score, error) {
		return a.api.EndMatch(cmd.Context(), sport)
	})
	resetCmd := makeAction("reset", "Reset the scoreboard", func(cmd *cobra.Command, sport domain.Sport) (domain.Score, error) {
		return a.api.ResetMatch(cmd.Context(), sport)
	})

	var ku, yu int
	setCmd := makeAction("set", "Set both scores", func(cmd *cobra.Command, sport domain.Sport) (domain.Score, error) {
		return a.api.UpdateScore(cmd.Context(), sport, ku, yu)
	})
	setCmd.Flags().IntVar(&ku, "ku", 0, "KU score")
	setCmd.Flags().IntVar(&yu, "yu", 0, "YU score")

	scoreCmd.PersistentFlags().StringVar(&sportName, "sport", "football", "sport")
	scoreCmd.AddCommand(getCmd, startCmd, endCmd, resetCmd, setCmd)
	return scoreCmd
}

func printScore(s domain.Score) {
	fmt.Printf("%s  KU %d : %d YU  (%s)\n", s.Sport, s.KUScore, s.YUScore, s.MatchStatus)
}

func createCounterCmd(a *app, kind string) *cobra.Command {
	counterCmd := &cobra.Command{
		Use:   kind,
		Short: kind + " counters",
	}

	var sportName string
	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Show counters for a sport",
		RunE: func(cmd *cobra.Command, args []string) error {
			sport, err := parseSport(sportName)
			if err != nil {
				return err
			}
			if kind == "cheer" {
				c, err := a.api.GetCheer(cmd.Context(), sport)
				if err != nil {
					return err
				}
				fmt.Printf("%s  KU %d : %d YU\n", c.Sport, c.KULike, c.YULike)
				return nil
			}
			l, err := a.api.GetLike(cmd.Context(), sport)
			if err != nil {
				return err
			}
			fmt.Printf("%s  KU %d : %d YU\n", l.Sport, l.KULike, l.YULike)
			return nil
		},
	}

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset counters for a sport",
		RunE: func(cmd *cobra.Command, args []string) error {
			sport, err := parseSport(sportName)
			if err != nil {
				return err
			}
			if kind == "cheer" {
				if _, err := a.api.ResetCheer(cmd.Context(), sport); err != nil {
					return err
				}
			} else if _, err := a.api.ResetLike(cmd.Context(), sport); err != nil {
				return err
			}
			okColor.Printf("%s counters reset for %s\n", kind, sport)
			return nil
		},
	}

	counterCmd.PersistentFlags().StringVar(&sportName, "sport", "football", "sport")
	counterCmd.AddCommand(getCmd, resetCmd)
	return counterCmd
}

func createRaffleCmd(a *app) *cobra.Command {
	var giftID string
	var count, rounds int
	var includeAdmin bool

	cmd := &cobra.Command{
		Use:   "raffle",
		Short: "Run raffle draw rounds for a gift, excluding earlier winners",
		RunE: func(cmd *cobra.Command, args []string) error {
			tracker := raffle.NewTracker(a.api, giftID)
			for round := 1; round <= rounds; round++ {
				winners, err := tracker.Draw(cmd.Context(), count, includeAdmin)
				if err != nil {
					return err
				}
				fmt.Printf("round %d:\n", round)
				for _, w := range winners {
					okColor.Printf("  %s (%s, %s)\n", w.Username, w.University, w.PhoneNumber)
				}
			}
			dimColor.Printf("total winners: %d\n", tracker.TotalWinners())
			return nil
		},
	}
	cmd.Flags().StringVar(&giftID, "gift", "", "gift ID to draw for")
	cmd.Flags().IntVar(&count, "count", 1, "winners per round")
	cmd.Flags().IntVar(&rounds, "rounds", 1, "number of rounds")
	cmd.Flags().BoolVar(&includeAdmin, "include-admin", false, "allow admins to win")
	_ = cmd.MarkFlagRequired("gift")
	return cmd
}

func createUsersCmd(a *app) *cobra.Command {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "User roster and summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := a.api.UserSummary(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("users: %d (KU %d / YU %d), tickets issued: %d\n",
				summary.TotalUsers, summary.KUUsers, summary.YUUsers, summary.TotalTicket)
			return nil
		},
	}
	return usersCmd
}
