package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"tadbirbot/internal/database"
	"tadbirbot/internal/models"
)

// Одноразовая заливка обязательных каналов в базу из yaml-файла.
// Используется при первом развёртывании, дальше каналы правятся через /add_channel.

type ChannelsConfig struct {
	Channels []models.Channel `yaml:"channels"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		channelsPath = flag.String("channels", "configs/channels.yaml", "path to channels.yaml")
		dbPath       = flag.String("db", "./data/tadbirbot.db", "path to sqlite db")
	)
	flag.Parse()

	data, err := os.ReadFile(*channelsPath)
	if err != nil {
		return fmt.Errorf("read channels: %w", err)
	}
	var cfg ChannelsConfig
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse channels: %w", err)
	}
	if len(cfg.Channels) == 0 {
		return fmt.Errorf("no channels in yaml")
	}

	db, err := database.NewDB(*dbPath, &logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	added := 0
	for i := range cfg.Channels {
		ch := cfg.Channels[i]
		if ch.ChatID == "" {
			continue
		}
		if err = db.AddChannel(ctx, &ch); err != nil {
			return fmt.Errorf("add %s: %w", ch.ChatID, err)
		}
		added++
	}

	fmt.Printf("done: added=%d\n", added)
	return nil
}
