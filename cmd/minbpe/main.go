package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/apoorvam/goterminal"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"minbpe/internal/pkg/minbpe/config"
	"minbpe/internal/pkg/minbpe/preprocess"
	"minbpe/internal/pkg/minbpe/preset"
	"minbpe/internal/pkg/minbpe/tokenizer"
)

func main() {
	fmt.Fprintf(os.Stderr, "minbpe %s\n", Version)

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.LoadAndParse()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse configuration")
	}

	if err := setupLogging(cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to setup logging")
	}

	switch cfg.Mode {
	case config.ModeTrain:
		runTrain(cfg)
	case config.ModeEncode:
		runEncode(cfg)
	case config.ModeDecode:
		runDecode(cfg)
	case config.ModeVocab:
		runVocab(cfg)
	}
}

func runTrain(cfg *config.Config) {
	corpus, err := os.ReadFile(cfg.InputPath)
	if err != nil {
		log.Fatal().Err(err).Str("input", cfg.InputPath).Msg("Failed to read corpus")
	}
	text := string(corpus)

	if cfg.Normalize {
		before := len(text)
		text = preprocess.NewNormalizer().Normalize(text)
		log.Debug().Int("bytes_before", before).Int("bytes_after", len(text)).Msg("Corpus normalized")
	}

	tok, err := preset.New(cfg.Preset)
	if err != nil {
		log.Fatal().Err(err).Str("preset", cfg.Preset).Msg("Failed to build tokenizer")
	}

	log.Info().
		Str("preset", cfg.Preset).
		Int("vocab_size", cfg.VocabSize).
		Int("corpus_bytes", len(text)).
		Msg("Training tokenizer...")

	var progress func(tokenizer.TrainProgress)
	var term *goterminal.Writer
	if cfg.Verbose {
		term = goterminal.New(os.Stderr)
		progress = func(p tokenizer.TrainProgress) {
			term.Clear()
			fmt.Fprintf(term, "merge %d/%d: (%d, %d) -> %d (%s) had %d occurrences\n",
				p.Iteration, p.Total, p.Pair.A, p.Pair.B, p.NewID, p.Token, p.Count)
			term.Print()
		}
	}

	startTime := time.Now()
	err = tok.Train(text, cfg.VocabSize, progress)
	if term != nil {
		term.Reset()
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Training failed")
	}

	log.Info().
		Dur("elapsed", time.Since(startTime)).
		Int("merges", tok.MergeCount()).
		Msg("Training finished")

	if err := tok.Save(cfg.OutputPrefix); err != nil {
		log.Fatal().Err(err).Str("output", cfg.OutputPrefix).Msg("Failed to save model")
	}
	log.Info().
		Str("model", cfg.OutputPrefix+".model").
		Str("vocab", cfg.OutputPrefix+".vocab").
		Msg("Model saved")
}

func runEncode(cfg *config.Config) {
	tok := loadModel(cfg.ModelPath)

	policy, err := tokenizer.ParseSpecialsPolicy(cfg.Special)
	if err != nil {
		log.Fatal().Err(err).Str("special", cfg.Special).Msg("Bad special-token policy")
	}

	ids, err := tok.Encode(cfg.Text, policy)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to encode")
	}

	log.Debug().Int("tokens", len(ids)).Int("bytes", len(cfg.Text)).Msg("Encoded")
	fmt.Println(formatIDs(ids))
}

func runDecode(cfg *config.Config) {
	tok := loadModel(cfg.ModelPath)

	ids, err := parseIDs(cfg.IDs)
	if err != nil {
		log.Fatal().Err(err).Msg("Bad token id list")
	}

	text, err := tok.Decode(ids)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to decode")
	}
	os.Stdout.WriteString(text)
}

func runVocab(cfg *config.Config) {
	tok := loadModel(cfg.ModelPath)
	if err := tok.WriteVocab(os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("Failed to write vocabulary")
	}
}

func loadModel(path string) *tokenizer.Tokenizer {
	tok, err := tokenizer.LoadModel(path)
	if err != nil {
		log.Fatal().Err(err).Str("model", path).Msg("Failed to load model")
	}
	log.Debug().
		Str("model", path).
		Str("pattern", tok.Pattern()).
		Int("merges", tok.MergeCount()).
		Msg("Model loaded")
	return tok
}

func formatIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

func parseIDs(s string) ([]int, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	ids := make([]int, 0, len(fields))
	for _, field := range fields {
		id, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("bad token id %q: %w", field, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func setupLogging(cfg *config.Config) error {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		log.Logger = zerolog.New(f).With().Timestamp().Logger()
	}

	return nil
}
