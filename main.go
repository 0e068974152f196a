package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/kermits/telassist/agent/auth"
	contractx "github.com/kermits/telassist/agent/contract"
	"github.com/kermits/telassist/agent/faq"
	"github.com/kermits/telassist/agent/history"
	"github.com/kermits/telassist/agent/orchestrator"
	routerx "github.com/kermits/telassist/agent/router"
	statex "github.com/kermits/telassist/agent/state"
	"github.com/kermits/telassist/agent/wizard"
	configx "github.com/kermits/telassist/pkg/config"
	"github.com/kermits/telassist/pkg/knowledge"
	_ "github.com/kermits/telassist/pkg/logger/autoload"
	openrouterx "github.com/kermits/telassist/pkg/openrouter"
	"github.com/kermits/telassist/pkg/telecomdb"
	twiliox "github.com/kermits/telassist/pkg/twilio"
)

type AppConfig struct {
	// SMSEnabled gates the Twilio client so local runs work without
	// credentials.
	SMSEnabled bool `envconfig:"SMS_ENABLED" split_words:"true" default:"false"`

	// SessionStore picks the state backend: "memory" or "redis".
	SessionStore string `envconfig:"SESSION_STORE" split_words:"true" default:"memory"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCfg := configx.MustNew[AppConfig]("APP")

	oracle := openrouterx.MustNew(*configx.MustNew[openrouterx.Config]("OPENROUTER"))

	db, err := telecomdb.Connect(ctx, *configx.MustNew[telecomdb.Config]("TELECOMDB"))
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	services := contractx.Services{
		Identity:      telecomdb.NewIdentityStore(db),
		Subscriptions: telecomdb.NewSubscriptionStore(db),
		Billing:       telecomdb.NewBillingStore(db),
		Appointments:  telecomdb.NewAppointmentStore(db),
		Registration:  telecomdb.NewRegistrationStore(db),
	}

	knowledgeStore, err := knowledge.NewStore(*configx.MustNew[knowledge.Config]("KNOWLEDGE"))
	if err != nil {
		log.Fatal().Err(err).Msg("knowledge store init failed")
	}
	if err := knowledgeStore.Seed(ctx, knowledge.DefaultEntries()); err != nil {
		log.Fatal().Err(err).Msg("knowledge seed failed")
	}

	var notifier contractx.Notifier
	if appCfg.SMSEnabled {
		notifier = twiliox.MustNew(*configx.MustNew[twiliox.Config]("TWILIO"))
	}

	store, err := newSessionStore(appCfg.SessionStore)
	if err != nil {
		log.Fatal().Err(err).Msg("session store init failed")
	}

	engine := orchestrator.New(
		store,
		history.NewLedger(oracle),
		routerx.New(oracle),
		auth.NewGate(services.Identity, auth.WithExtractor(&auth.OracleExtractor{Oracle: oracle})),
		wizard.New(services, notifier),
		faq.NewResponder(knowledgeStore, oracle),
	)

	if err := runConsole(ctx, engine); err != nil {
		log.Fatal().Err(err).Msg("console session failed")
	}
}

func newSessionStore(kind string) (statex.Store, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "redis":
		return statex.NewUpstashRedisStore(*configx.MustNew[statex.UpstashRedisConfig]("UPSTASH_REDIS"))
	default:
		return statex.NewMemoryStore(), nil
	}
}

func runConsole(ctx context.Context, engine *orchestrator.Orchestrator) error {
	greeting, err := engine.BeginSession(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Asistan: %s\n", greeting.Message)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("Siz: ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		result, err := engine.SubmitTurn(ctx, greeting.SessionID, text)
		if err != nil {
			if errors.Is(err, statex.ErrSessionEnded) || errors.Is(err, contractx.ErrSessionNotFound) {
				return nil
			}
			return err
		}
		fmt.Printf("Asistan: %s\n", result.Reply)
		if result.SessionEnded {
			return nil
		}
	}
}
