package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"pawpair/backend/internal/chat"
	"pawpair/backend/internal/config"
	"pawpair/backend/internal/match"
	"pawpair/backend/internal/models"
	"pawpair/backend/internal/storage"
)

const usage = `Usage: admin [-config path] <command> [args]

Commands:
  add-user <display_name> [telegram_id]
  matches <user_id>
  end-match <match_id>
  rooms <user_id>
  unread <room_id> <user_id>`

func main() {
	configFile := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	db, err := storage.OpenPostgres(cfg.Database.DSN, 1)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	storageSvc := storage.NewStorageService(db, nil) // No redis needed for admin CLI

	if err := run(context.Background(), storageSvc, flag.Args(), os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type usageError string

func (e usageError) Error() string { return "usage: admin " + string(e) }

// run executes one admin command against s.
func run(ctx context.Context, s *storage.Service, args []string, out io.Writer) error {
	if len(args) == 0 {
		return usageError("<command> [args]")
	}
	matches := match.NewRegistry(s)
	chatSvc := chat.NewService(s, s, nil, nil, chat.Options{})

	switch args[0] {
	case "add-user":
		if len(args) < 2 || len(args) > 3 {
			return usageError("add-user <display_name> [telegram_id]")
		}
		user := &models.User{DisplayName: args[1]}
		if len(args) == 3 {
			id, err := strconv.ParseInt(args[2], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid telegram id %q", args[2])
			}
			user.TelegramID = &id
		}
		if err := s.SaveUser(ctx, user); err != nil {
			return err
		}
		fmt.Fprintf(out, "User %s created (%s).\n", user.ID, user.DisplayName)

	case "matches":
		if len(args) != 2 {
			return usageError("matches <user_id>")
		}
		list, err := matches.ListForUser(ctx, args[1], nil)
		if err != nil {
			return err
		}
		for _, m := range list {
			fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", m.ID, m.OtherUser(args[1]), m.Status, m.CreatedAt.Format("2006-01-02 15:04"))
		}

	case "end-match":
		if len(args) != 2 {
			return usageError("end-match <match_id>")
		}
		m, err := matches.UpdateStatus(ctx, args[1], models.MatchEnded)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Match %s is %s.\n", m.ID, m.Status)

	case "rooms":
		if len(args) != 2 {
			return usageError("rooms <user_id>")
		}
		rooms, err := chatSvc.ListRoomsForUser(ctx, args[1])
		if err != nil {
			return err
		}
		for _, r := range rooms {
			fmt.Fprintf(out, "%s\t%s\n", r.ID, r.MatchID)
		}

	case "unread":
		if len(args) != 3 {
			return usageError("unread <room_id> <user_id>")
		}
		n, err := chatSvc.UnreadCount(ctx, args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%d\n", n)

	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
	return nil
}
