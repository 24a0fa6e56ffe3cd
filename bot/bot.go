package bot

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"forumguard/command"
	"forumguard/config"
	"forumguard/database"
	"forumguard/dispatcher"
	"forumguard/escalation"
	"forumguard/gateway"
	"forumguard/grpc"
	"forumguard/handlers"
	"forumguard/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/viper"
)

// Bot encapsulates the bot's state.
type Bot struct {
	Session    *discordgo.Session
	Store      *database.Store
	Dispatcher *dispatcher.Dispatcher
	Sweeper    *escalation.Sweeper
	health     *grpc.HealthServer
}

// NewBot creates and initializes a new Bot instance.
func NewBot() (*Bot, error) {
	config.LoadConfig()
	token := viper.GetString("BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("no bot token provided")
	}

	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}

	dg.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsGuilds | discordgo.IntentsGuildMembers

	store, err := database.Open(viper.GetString("database.path"))
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	disp := dispatcher.New(store, gateway.New(dg))

	return &Bot{
		Session:    dg,
		Store:      store,
		Dispatcher: disp,
		Sweeper:    escalation.NewSweeper(store, disp),
	}, nil
}

// Start opens the bot's session and registers handlers.
func (b *Bot) Start() error {
	handlers.New(b.Store, b.Dispatcher).Register(b.Session)

	err := b.Session.Open()
	if err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	utils.InitLogger(b.Session)

	// Register slash commands
	for _, def := range command.GetCommandDefinitions() {
		_, err := b.Session.ApplicationCommandCreate(b.Session.State.User.ID, "", def)
		if err != nil {
			log.Printf("Cannot create '%v' command: %v", def.Name, err)
		}
	}

	startScheduler(b.Sweeper)

	if addr := viper.GetString("grpc.healthAddr"); addr != "" {
		b.health = grpc.NewHealthServer(addr)
		if err := b.health.Start(); err != nil {
			return fmt.Errorf("error starting health server: %w", err)
		}
	}

	fmt.Println("Bot is now running. Press CTRL-C to exit.")
	return nil
}

// Stop gracefully closes the bot's session.
func (b *Bot) Stop() {
	stopScheduler()
	if b.health != nil {
		b.health.Stop()
	}
	if b.Session != nil {
		b.Session.Close()
	}
	if b.Store != nil {
		b.Store.Close()
	}
	fmt.Println("Bot stopped gracefully.")
}

// Run is the main entry point for the bot application.
func Run() {
	bot, err := NewBot()
	if err != nil {
		log.Fatalf("Error initializing bot: %v", err)
	}

	if err := bot.Start(); err != nil {
		log.Fatalf("Error starting bot: %v", err)
	}

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	bot.Stop()
}
