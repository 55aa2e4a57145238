package main

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"pairchat/internal/relay"
	"pairchat/pkg/config"
	"pairchat/pkg/errors"
)

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // local development relay only
	},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	hub := relay.NewHub()
	hub.Start(ctx)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	e.POST("/dev/token", func(c echo.Context) error {
		userID, err := strconv.ParseInt(c.QueryParam("user_id"), 10, 64)
		if err != nil || userID <= 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "user_id required"})
		}
		token, err := relay.MintDevToken(cfg.DevTokenSecret, userID, 24*time.Hour)
		if err != nil {
			return errors.Internal("failed to mint dev token", err)
		}
		return c.JSON(http.StatusOK, map[string]string{"access_token": token})
	})

	e.POST("/dev/notify", func(c echo.Context) error {
		userID, err := strconv.ParseInt(c.QueryParam("user_id"), 10, 64)
		if err != nil || userID <= 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "user_id required"})
		}
		taskID := parseOptionalID(c.QueryParam("task_id"))
		debtID := parseOptionalID(c.QueryParam("debt_id"))
		if taskID == nil && debtID == nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "task_id or debt_id required"})
		}
		hub.NotifyUser(userID, taskID, debtID)
		return c.JSON(http.StatusOK, map[string]string{"status": "queued"})
	})

	e.GET("/ws/:token", func(c echo.Context) error {
		userID, err := relay.VerifyDevToken(cfg.DevTokenSecret, c.Param("token"))
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
		}

		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			return errors.Internal("failed to upgrade connection", err)
		}

		client := &relay.Client{
			UserID: userID,
			Conn:   conn,
			Send:   make(chan []byte, 256),
		}
		hub.Register <- client

		go client.ReadPump(hub)
		go client.WritePump()
		return nil
	})

	e.Logger.Fatal(e.Start(":" + cfg.RelayPort))
}

func parseOptionalID(raw string) *int64 {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil
	}
	return &id
}
