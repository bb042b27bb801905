package cli

import (
	"github.com/spf13/cobra"

	"quiz-attempt-service/internal/bank"
	"quiz-attempt-service/internal/config"
	"quiz-attempt-service/internal/domain"
	infraredis "quiz-attempt-service/internal/infra/redis"
)

// NewSeedCmd writes the sample question banks into the configured store.
func NewSeedCmd(configPath *string) *cobra.Command {
	var only string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the sample quizzes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Log.Level)

			b, err := openBackends(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer b.Close()

			quizzes := bank.SampleQuizzes()
			if only != "" {
				quiz, ok := quizzes[only]
				if !ok {
					return domain.ErrQuizNotFound
				}
				quizzes = map[string]domain.Quiz{only: quiz}
			}
			if err := bank.Seed(cmd.Context(), b.store, quizzes); err != nil {
				return err
			}
			var cached *infraredis.QuizRepository
			if b.redis != nil {
				cached = infraredis.NewQuizRepository(b.redis, bank.NewDocumentLoader(b.store), 0, logger)
			}
			for id, quiz := range quizzes {
				if cached != nil {
					if err := cached.Invalidate(cmd.Context(), id); err != nil {
						logger.Warn().Err(err).Str("quiz_id", id).Msg("failed to drop cached quiz")
					}
				}
				logger.Info().Str("quiz_id", id).Int("questions", len(quiz.Questions)).Msg("quiz seeded")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&only, "quiz", "", "seed a single sample quiz by id")
	return cmd
}
