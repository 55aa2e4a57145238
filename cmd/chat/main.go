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

	"pairchat/internal/infrastructure/rest"
	"pairchat/internal/infrastructure/state"
	ws "pairchat/internal/infrastructure/websocket"
	"pairchat/internal/usecase"
	"pairchat/pkg/config"
	"pairchat/pkg/logger"
)

func main() {
	username := flag.String("username", "", "login username (skipped when AUTH_TOKEN is set)")
	password := flag.String("password", "", "login password")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	apiClient := rest.NewClient(cfg.APIBaseURL)
	auth := usecase.NewAuthUseCase(apiClient, os.Getenv("AUTH_TOKEN"))

	if auth.Token() == "" && *username != "" {
		if err := auth.Login(ctx, *username, *password); err != nil {
			log.Fatalf("Login failed: %v", err)
		}
	}
	if auth.Token() == "" {
		log.Fatal("No session: set AUTH_TOKEN or pass -username/-password")
	}

	data := usecase.NewDataUseCase(auth, apiClient)
	conn := ws.NewConnection(cfg.APIBaseURL, cfg.WSBaseURL)
	activeStore := state.NewFileStore(cfg.ActiveConvFile)
	engine := usecase.NewChatEngine(auth, apiClient, conn, activeStore, data, cfg.HistoryLimit)

	conn.OnFrame(engine.HandleFrame)
	conn.OnStateChange(func(s ws.State) {
		logger.Info("connection state: %s", s)
	})

	engine.Initialize(ctx)
	defer engine.Close()

	fmt.Println("commands: /list, /open <id>, /tasks, /balance, /refresh, /logout, /quit; anything else sends to the open conversation")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit":
			return
		case line == "/list":
			for _, conv := range engine.Conversations() {
				marker := " "
				if conv.ID == engine.ActiveConversationID() {
					marker = "*"
				}
				last := ""
				if conv.LastMessage != nil {
					last = conv.LastMessage.Content
				}
				fmt.Printf("%s %d %-16s unread=%d %s\n", marker, conv.ID, conv.User.Username, conv.UnreadCount, last)
			}
		case strings.HasPrefix(line, "/open "):
			id, err := strconv.ParseInt(strings.TrimSpace(strings.TrimPrefix(line, "/open ")), 10, 64)
			if err != nil {
				fmt.Println("usage: /open <conversation id>")
				continue
			}
			engine.SetActiveConversation(id)
		case line == "/tasks":
			for _, task := range data.Tasks() {
				fmt.Printf("%d [%s] %s\n", task.ID, task.Status, task.ItemName)
			}
		case line == "/refresh":
			data.FetchAll(ctx)
			engine.RefreshTasks(ctx)
			engine.RefreshDebts(ctx)
		case line == "/logout":
			engine.Close()
			auth.Logout()
			activeStore.Clear()
			return
		case line == "/balance":
			if b := data.Balance(); b != nil {
				fmt.Printf("owed=%.2f to collect=%.2f net=%.2f\n", b.TotalOwed, b.TotalToCollect, b.NetBalance)
			} else {
				fmt.Println("no balance yet")
			}
		default:
			id := engine.ActiveConversationID()
			if id == 0 {
				fmt.Println("no open conversation; /open <id> first")
				continue
			}
			engine.SendMessage(id, line)
		}
	}
}
