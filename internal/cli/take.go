package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quiz-attempt-service/internal/auth"
	"quiz-attempt-service/internal/config"
	"quiz-attempt-service/internal/coordinator"
	"quiz-attempt-service/internal/infra/memory"
	infraredis "quiz-attempt-service/internal/infra/redis"
)

// NewTakeCmd answers a quiz against a running server the way a learner client
// does: start or resume an attempt, cache answers, submit once.
func NewTakeCmd(configPath *string) *cobra.Command {
	var (
		server  string
		userID  string
		token   string
		answers []string
	)
	cmd := &cobra.Command{
		Use:   "take <quiz-id>",
		Short: "Take a quiz against a running server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			quizID := args[0]

			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if token == "" {
				if userID == "" {
					return fmt.Errorf("either --token or --user is required")
				}
				token, err = auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, time.Hour).Issue(userID, "", "")
				if err != nil {
					return err
				}
			} else if userID == "" {
				claims, err := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, time.Hour).Parse(token)
				if err != nil {
					return err
				}
				userID = claims.Subject
			}

			var cache coordinator.Cache = memory.NewAnswerCache()
			if cfg.Redis.Addr != "" {
				client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
				defer client.Close()
				cache = infraredis.NewAnswerCache(client, config.TTLDuration(cfg.Redis.TTL, 24*time.Hour))
			}

			api := coordinator.NewClient(server, token)
			c := coordinator.New(api, cache, userID)

			attemptID, err := c.Begin(ctx, quizID)
			if err != nil {
				return err
			}
			for _, raw := range answers {
				questionID, index, err := parseAnswer(raw)
				if err != nil {
					return err
				}
				if err := c.Answer(ctx, quizID, questionID, index); err != nil {
					return err
				}
			}

			if _, err := c.TakeQuiz(ctx, quizID); err != nil {
				return err
			}
			view, err := api.GetAttempt(ctx, attemptID)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(view)
		},
	}
	cmd.Flags().StringVar(&server, "server", "http://localhost:8080", "base URL of the quiz server")
	cmd.Flags().StringVar(&userID, "user", "", "user id to sign a token for")
	cmd.Flags().StringVar(&token, "token", "", "bearer token (overrides --user)")
	cmd.Flags().StringArrayVar(&answers, "answer", nil, "answer as questionId=choiceIndex, repeatable")
	return cmd
}

func parseAnswer(raw string) (string, int, error) {
	questionID, value, ok := strings.Cut(raw, "=")
	if !ok || questionID == "" {
		return "", 0, fmt.Errorf("answer %q must look like questionId=index", raw)
	}
	index, err := strconv.Atoi(value)
	if err != nil {
		return "", 0, fmt.Errorf("answer %q: %w", raw, err)
	}
	return questionID, index, nil
}
