// Command flashcards runs a review session over a YAML deck file in the
// terminal and writes the new stages back to the file.
//
// Usage:
//
//	flashcards [-lessons] [-clump n] [-config flashcards.toml] deck.yaml
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sky-flux/flashcards"
	"github.com/sky-flux/flashcards/config"
	"github.com/sky-flux/flashcards/review"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "flashcards: %v\n", err)
		os.Exit(1)
	}
}

// options are the parsed command line.
type options struct {
	deckPath    string
	lessons     bool
	clumpSize   int
	lessonBatch int
}

func parseOptions(args []string) (options, error) {
	fs := flag.NewFlagSet("flashcards", flag.ContinueOnError)
	lessons := fs.Bool("lessons", false, "study new cards instead of reviewing due ones")
	clump := fs.Int("clump", 0, "number of groups studied at once (default from config)")
	configPath := fs.String("config", "", "optional TOML config file")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() != 1 {
		return options{}, errors.New("usage: flashcards [-lessons] [-clump n] [-config file] deck.yaml")
	}

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.Load(*configPath, "")
		if err != nil {
			return options{}, err
		}
		cfg = loaded
	}
	opts := options{
		deckPath:    fs.Arg(0),
		lessons:     *lessons,
		clumpSize:   cfg.Review.ClumpSize,
		lessonBatch: cfg.Review.LessonBatch,
	}
	if *clump != 0 {
		if *clump < 0 {
			return options{}, fmt.Errorf("invalid clump size %d", *clump)
		}
		opts.clumpSize = *clump
	}
	return opts, nil
}

func run(args []string, out io.Writer) error {
	opts, err := parseOptions(args)
	if err != nil {
		return err
	}

	b, err := loadBook(opts.deckPath)
	if err != nil {
		return err
	}

	mode := review.ModeReview
	var items []flashcards.ReviewItem
	if opts.lessons {
		mode = review.ModeLesson
		items = b.lessons(opts.lessonBatch)
	} else {
		sys, err := flashcards.NewSrsSystem(flashcards.DefaultSrsSystemID, "Default", flashcards.DefaultStageSeconds)
		if err != nil {
			return err
		}
		items = b.reviews(sys, time.Now())
	}
	if len(items) == 0 {
		fmt.Fprintln(out, "Nothing to study right now.")
		return nil
	}

	// The terminal belongs to the program; session logs are discarded.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := review.NewSession(context.Background(), items, b.submitter(time.Now), review.Config{
		ClumpSize: opts.clumpSize,
		Mode:      mode,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	p := tea.NewProgram(newModel(s), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run session: %w", err)
	}

	s.Wait()
	if err := b.save(); err != nil {
		return err
	}
	printSummary(out, s.Summary())
	if err := s.Err(); err != nil {
		return fmt.Errorf("some results were not saved: %w", err)
	}
	return nil
}

func printSummary(w io.Writer, sum review.Summary) {
	if len(sum) == 0 {
		fmt.Fprintln(w, "No groups completed.")
		return
	}
	correct, incorrect := sum.Partition()
	fmt.Fprintf(w, "%d correct, %d incorrect\n", len(correct), len(incorrect))
	for _, g := range incorrect {
		var cards []string
		for _, c := range g.Cards {
			if !c.Correct {
				cards = append(cards, c.Display)
			}
		}
		fmt.Fprintf(w, "  ✗ %s\n", strings.Join(cards, ", "))
	}
}
