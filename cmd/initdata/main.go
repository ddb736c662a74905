// Command initdata prints a signed Mini App initData string for local testing
// against /auth/telegram. The bot token comes from TELEGRAM_BOT_TOKEN (.env is
// honoured) or --bot-token.
package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/domain/auth/telegram"
	lg "github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/infra/log"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type params struct {
	UserID    string
	Username  string
	FirstName string
	LastName  string
	QueryID   string
	Age       time.Duration
}

type tgUser struct {
	ID        json.Number `json:"id"`
	Username  string      `json:"username,omitempty"`
	FirstName string      `json:"first_name,omitempty"`
	LastName  string      `json:"last_name,omitempty"`
}

// buildInitData собирает и подписывает initData так, как это делает клиент Telegram.
func buildInitData(botToken string, p params, now time.Time) (string, error) {
	if err := telegram.ValidateBotToken(botToken); err != nil {
		return "", err
	}
	if _, err := strconv.ParseInt(p.UserID, 10, 64); err != nil {
		return "", fmt.Errorf("user id %q: %w", p.UserID, err)
	}
	user, err := json.Marshal(tgUser{
		ID:        json.Number(p.UserID),
		Username:  p.Username,
		FirstName: p.FirstName,
		LastName:  p.LastName,
	})
	if err != nil {
		return "", err
	}

	values := url.Values{
		"auth_date": {strconv.FormatInt(now.Add(-p.Age).Unix(), 10)},
		"user":      {string(user)},
	}
	if p.QueryID != "" {
		values.Set("query_id", p.QueryID)
	}
	return telegram.SignValues(botToken, values), nil
}

func main() {
	_ = godotenv.Load()

	fs := pflag.NewFlagSet("initdata", pflag.ExitOnError)
	fs.String("bot-token", "", "bot token (default $TELEGRAM_BOT_TOKEN)")
	fs.String("id", "1", "telegram user id")
	fs.String("username", "", "username")
	fs.String("first-name", "Dev", "first name")
	fs.String("last-name", "", "last name")
	fs.String("query-id", "", "query_id")
	fs.Duration("age", 0, "how old auth_date should be")
	_ = fs.Parse(os.Args[1:])

	v := viper.New()
	_ = v.BindEnv("bot-token", "TELEGRAM_BOT_TOKEN")
	if err := v.BindPFlags(fs); err != nil {
		panic(err)
	}

	logger := lg.Must(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	raw, err := buildInitData(v.GetString("bot-token"), params{
		UserID:    v.GetString("id"),
		Username:  v.GetString("username"),
		FirstName: v.GetString("first-name"),
		LastName:  v.GetString("last-name"),
		QueryID:   v.GetString("query-id"),
		Age:       v.GetDuration("age"),
	}, time.Now())
	if err != nil {
		logger.Fatal("build initData", zap.Error(err))
	}
	fmt.Println(raw)
}
