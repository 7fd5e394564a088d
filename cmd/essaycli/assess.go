package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/noah-isme/gema-essay-api/internal/config"
	"github.com/noah-isme/gema-essay-api/internal/fixtures"
	"github.com/noah-isme/gema-essay-api/internal/models"
	"github.com/noah-isme/gema-essay-api/internal/repository"
	"github.com/noah-isme/gema-essay-api/internal/service"
	"github.com/noah-isme/gema-essay-api/pkg/ai"
)

type assessOptions struct {
	grade        string
	topic        string
	essayFile    string
	sample       string
	generate     string
	previousFile string
	verbose      bool
}

var assessOpts assessOptions

func init() {
	flags := assessCmd.Flags()
	flags.StringVar(&assessOpts.grade, "grade", string(models.DefaultGradeLevel), "Grade level, First through Twelfth")
	flags.StringVar(&assessOpts.topic, "topic", "", "Essay topic (required)")
	flags.StringVar(&assessOpts.essayFile, "essay-file", "", "Read the essay from a file, or - for stdin")
	flags.StringVar(&assessOpts.sample, "sample", "", "Use a canned essay: Low, Medium or High")
	flags.StringVar(&assessOpts.generate, "generate", "", "Generate an essay at quality Low, Medium or High")
	flags.StringVar(&assessOpts.previousFile, "previous-file", "", "Earlier essay to compare against")
	flags.BoolVar(&assessOpts.verbose, "verbose", false, "Log every generation attempt to stderr")
	_ = assessCmd.MarkFlagRequired("topic")
	assessCmd.MarkFlagsMutuallyExclusive("essay-file", "sample", "generate")
	assessCmd.MarkFlagsOneRequired("essay-file", "sample", "generate")
}

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Run one assessment round",
	Long: `Build a rubric for the grade, create a prompt for the topic, then check and
score one essay against them.

Examples:
  # Score an essay from a file
  essaycli assess --grade Fourth --topic golf --essay-file essay.txt

  # Try the grader with a canned essay
  essaycli assess --topic baseball --sample High

  # Let the model write a weak essay and compare it with an earlier one
  essaycli assess --topic golf --generate Low --previous-file last.txt`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		level := zerolog.WarnLevel
		if assessOpts.verbose {
			level = zerolog.DebugLevel
		}
		logger := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).Level(level).With().Timestamp().Logger()

		generator, err := ai.NewGenerator(cfg.ProviderConfig(logger))
		if err != nil {
			return err
		}

		svc := service.NewAssessmentService(
			repository.NewMemorySessionRepository(0),
			service.NewAssessmentComponents(generator, service.SettingsFromConfig(cfg.Grading), logger),
			nil,
			logger,
		)

		return runAssessment(cmd.Context(), cmd.OutOrStdout(), cmd.InOrStdin(), svc, assessOpts)
	},
}

func runAssessment(ctx context.Context, out io.Writer, in io.Reader, svc service.AssessmentService, opts assessOptions) error {
	grade, err := models.ParseGradeLevel(opts.grade)
	if err != nil {
		return fmt.Errorf("%w: %q", err, opts.grade)
	}

	session, err := svc.CreateSession(ctx)
	if err != nil {
		return err
	}

	if _, err := svc.SetGrade(ctx, session.ID, grade); err != nil {
		return fmt.Errorf("rubric: %w", err)
	}
	table, _, err := svc.DisplayRubric(ctx, session.ID)
	if err != nil {
		return err
	}
	maxScore, _, err := svc.MaxScore(ctx, session.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "## Rubric (%s grade)\n\n%s\n", grade, table)

	prompt, err := svc.GetOrCreatePrompt(ctx, session.ID, opts.topic)
	if err != nil {
		if errors.Is(err, service.ErrTopicRejected) {
			return errors.New("I'm sorry but I can't produce a prompt for that topic. Please choose a different topic")
		}
		return fmt.Errorf("prompt: %w", err)
	}
	fmt.Fprintf(out, "## Prompt\n\n%s\n\n", prompt)

	essay, err := selectEssay(ctx, in, svc, session.ID, opts)
	if err != nil {
		return err
	}
	if opts.essayFile == "" {
		fmt.Fprintf(out, "## Essay\n\n%s\n\n", essay)
	}

	previous := ""
	if opts.previousFile != "" {
		previous, err = readText(in, opts.previousFile)
		if err != nil {
			return err
		}
	}

	validity, err := svc.CheckValidity(ctx, session.ID, essay)
	if err != nil {
		return fmt.Errorf("validity: %w", err)
	}
	fmt.Fprintf(out, "## Feedback\n\n%s\n\n", validity.Feedback)
	if !validity.Valid {
		fmt.Fprintln(out, "The essay does not answer the prompt, so it was not scored.")
		return nil
	}

	report, err := svc.Score(ctx, session.ID, essay, previous)
	if err != nil {
		return fmt.Errorf("scoring: %w", err)
	}
	fmt.Fprintf(out, "## Score: %d / %d\n\n%s\n\n%s\n", report.Total, maxScore, strings.TrimSpace(report.Table), report.Summary)
	if report.Comparison != "" {
		fmt.Fprintf(out, "\n## Compared with your previous essay\n\n%s\n", report.Comparison)
	}
	return nil
}

func selectEssay(ctx context.Context, in io.Reader, svc service.AssessmentService, sessionID string, opts assessOptions) (string, error) {
	switch {
	case opts.essayFile != "":
		return readText(in, opts.essayFile)
	case opts.sample != "":
		quality, err := models.ParseQualityLevel(opts.sample)
		if err != nil {
			return "", fmt.Errorf("%w: %q", err, opts.sample)
		}
		essay, _ := fixtures.SampleEssay(quality)
		return essay, nil
	case opts.generate != "":
		quality, err := models.ParseQualityLevel(opts.generate)
		if err != nil {
			return "", fmt.Errorf("%w: %q", err, opts.generate)
		}
		essay, err := svc.GenerateEssay(ctx, sessionID, quality)
		if err != nil {
			return "", fmt.Errorf("essay: %w", err)
		}
		return essay, nil
	default:
		return "", errors.New("one of --essay-file, --sample or --generate is required")
	}
}

func readText(in io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(in)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
