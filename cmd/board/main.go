package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/sarathsathish07/Task-Manager-App/internal/board"
	"github.com/sarathsathish07/Task-Manager-App/internal/client"
	"github.com/sarathsathish07/Task-Manager-App/internal/model"
	"github.com/sarathsathish07/Task-Manager-App/internal/pkg/logger"
)

// 终端版看板客户端：登录后以三列视图展示任务，
// move 命令走与网页拖拽相同的乐观更新协议。
func main() {
	var (
		server   = flag.String("server", "http://localhost:5000", "API server base URL")
		email    = flag.String("email", "", "login email")
		password = flag.String("password", "", "login password")
		logLevel = flag.String("log-level", "warn", "log level")
	)
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("usage: board -email <email> -password <password> [-server <url>]")
	}

	ctx := context.Background()
	appLogger := logger.NewDefault(*logLevel)

	api, err := client.New(*server)
	if err != nil {
		log.Fatalf("init client: %v", err)
	}
	profile, err := api.Login(ctx, *email, *password)
	if err != nil {
		log.Fatalf("login: %v", err)
	}
	fmt.Printf("Logged in as %s <%s>\n", profile.Name, profile.Email)

	ctl := &board.Controller{Board: board.New(), API: api, Logger: appLogger}
	if err := ctl.Refresh(ctx); err != nil {
		log.Fatalf("load tasks: %v", err)
	}

	render(ctl.Board)
	repl(ctx, api, ctl)
}

func repl(ctx context.Context, api *client.Client, ctl *board.Controller) {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println(`commands: add <title> | move <id> <todo|inprogress|done> | del <id> | search <text> | sort <recent|title> | ls | quit`)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "quit", "exit":
			if err := api.Logout(ctx); err != nil {
				fmt.Println("logout:", err)
			}
			return
		case "ls":
			if err := ctl.Refresh(ctx); err != nil {
				fmt.Println(err)
				continue
			}
			render(ctl.Board)
		case "add":
			if len(fields) < 2 {
				fmt.Println("usage: add <title>")
				continue
			}
			title := strings.Join(fields[1:], " ")
			if _, err := api.CreateTask(ctx, title, "", ""); err != nil {
				fmt.Println(err)
				continue
			}
			if err := ctl.Refresh(ctx); err != nil {
				fmt.Println(err)
				continue
			}
			render(ctl.Board)
		case "move":
			if len(fields) != 3 || !model.ValidStatus(fields[2]) {
				fmt.Println("usage: move <id> <todo|inprogress|done>")
				continue
			}
			id, err := strconv.ParseUint(fields[1], 10, 32)
			if err != nil {
				fmt.Println("invalid id")
				continue
			}
			if err := ctl.MoveTask(ctx, uint(id), model.TaskStatus(fields[2])); err != nil {
				fmt.Println(err)
			}
			render(ctl.Board)
		case "del":
			if len(fields) != 2 {
				fmt.Println("usage: del <id>")
				continue
			}
			id, err := strconv.ParseUint(fields[1], 10, 32)
			if err != nil {
				fmt.Println("invalid id")
				continue
			}
			if err := api.DeleteTask(ctx, uint(id)); err != nil {
				fmt.Println(err)
				continue
			}
			if err := ctl.Refresh(ctx); err != nil {
				fmt.Println(err)
				continue
			}
			render(ctl.Board)
		case "search":
			text := ""
			if len(fields) > 1 {
				text = strings.Join(fields[1:], " ")
			}
			ctl.Board.SetSearch(text)
			render(ctl.Board)
		case "sort":
			if len(fields) != 2 {
				fmt.Println("usage: sort <recent|title>")
				continue
			}
			ctl.Board.SetSort(board.SortMode(fields[1]))
			render(ctl.Board)
		default:
			fmt.Println("unknown command:", fields[0])
		}
	}
}

func render(b *board.Board) {
	cols := b.Columns()
	fmt.Println("=== TODO ===")
	printColumn(cols.Todo)
	fmt.Println("=== IN PROGRESS ===")
	printColumn(cols.InProgress)
	fmt.Println("=== DONE ===")
	printColumn(cols.Done)
}

func printColumn(tasks []model.Task) {
	if len(tasks) == 0 {
		fmt.Println("  (empty)")
		return
	}
	for _, t := range tasks {
		line := fmt.Sprintf("  [%d] %s", t.ID, t.Title)
		if t.AssignedTo != "" {
			line += " @" + t.AssignedTo
		}
		fmt.Println(line)
	}
}
