package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/study"
)

func runStudy(cmd *cobra.Command, deckID string) error {
	cfg, client, err := setup(cmd)
	if err != nil {
		return err
	}

	types := make([]models.QuestionType, len(cfg.Types))
	for i, t := range cfg.Types {
		types[i] = models.QuestionType(t)
	}
	ctrl, err := study.New(deckID, client, study.Options{
		Mode:          study.Mode(cfg.Mode),
		IgnoreDueDate: cfg.IgnoreDueDate,
		Types:         types,
		Direction:     models.Direction(cfg.Direction),
		QuietPeriod:   cfg.QuietPeriod,
		OnSaveError:   saveWarning(cmd.ErrOrStderr()),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := ctrl.Start(ctx); err != nil {
		return err
	}
	loopErr := runLoop(ctx, ctrl, cmd.InOrStdin(), cmd.OutOrStdout())

	// The final flush must outlive an interrupted ctx.
	if err := ctrl.Close(context.WithoutCancel(ctx)); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "could not save progress: %v\n", err)
		if loopErr == nil {
			loopErr = err
		}
	}
	return loopErr
}

// saveWarning reports failed saves as they happen. Answers stay pending and
// are retried on the next save.
func saveWarning(w io.Writer) func(error) {
	return func(err error) {
		fmt.Fprintf(w, "warning: could not save answers, will retry: %v\n", err)
	}
}

const help = "commands: :s shuffle, :i toggle ignore-due-date, :r restart deck, :q quit"

// runLoop serves items until the session ends, the input runs out or the
// learner quits.
func runLoop(ctx context.Context, ctrl study.Controller, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	read := func() (string, bool) {
		if !scanner.Scan() {
			return "", false
		}
		return strings.TrimSpace(scanner.Text()), true
	}

	view := ctrl.View()
	fmt.Fprintf(out, "%s: %d to study (%s)\n%s\n", view.DeckName, view.Total, view.Mode, help)

	for ctx.Err() == nil {
		view = ctrl.View()
		if view.Current == nil {
			fmt.Fprintln(out, endMessage(view))
			return nil
		}

		var resp study.Response
		switch item := view.Current.(type) {
		case models.Card:
			fmt.Fprintf(out, "\n[%d/%d] %s\n", view.Known+1, view.Total, item.Term)
			fmt.Fprint(out, "know it? [y/n] ")
		case study.QuestionPrompt:
			fmt.Fprintf(out, "\n[%d/%d] %s\n", view.Known+1, view.Total, item.Prompt)
			for i, c := range item.Choices {
				fmt.Fprintf(out, "  %d) %s\n", i+1, c)
			}
			fmt.Fprint(out, "> ")
		default:
			return fmt.Errorf("unexpected item %T", item)
		}

		line, ok := read()
		if !ok {
			return scanner.Err()
		}

		switch line {
		case ":q":
			return nil
		case ":s":
			ctrl.Shuffle()
			continue
		case ":i":
			if err := ctrl.SetIgnoreDueDate(ctx, !view.IgnoreDueDate); err != nil {
				fmt.Fprintf(out, "could not switch: %v\n", err)
			}
			continue
		case ":r":
			if err := ctrl.Restart(ctx); err != nil {
				fmt.Fprintf(out, "could not restart: %v\n", err)
			}
			continue
		}

		resp, ok = parseResponse(view.Current, line)
		if !ok {
			fmt.Fprintln(out, help)
			continue
		}

		res, err := ctrl.Answer(ctx, resp)
		if err != nil {
			return err
		}
		if res.Correct {
			fmt.Fprintf(out, "correct: %s\n", res.Expected)
		} else {
			fmt.Fprintf(out, "answer: %s\n", res.Expected)
		}
		if res.View.LastSaveError != "" {
			fmt.Fprintf(out, "(not saved yet: %s)\n", res.View.LastSaveError)
		}
	}
	return ctx.Err()
}

func parseResponse(current any, line string) (study.Response, bool) {
	if q, ok := current.(study.QuestionPrompt); ok {
		if q.Type == models.QuestionMultipleChoices {
			n, err := strconv.Atoi(line)
			if err != nil || n < 1 || n > len(q.Choices) {
				return study.Response{}, false
			}
			idx := n - 1
			return study.Response{Choice: &idx}, true
		}
		if line == "" {
			return study.Response{}, false
		}
		return study.Response{Text: &line}, true
	}

	var correct bool
	switch strings.ToLower(line) {
	case "y", "yes":
		correct = true
	case "n", "no":
	default:
		return study.Response{}, false
	}
	return study.Response{Correct: &correct}, true
}

func endMessage(v study.View) string {
	switch v.Reason {
	case study.ReasonCompleted:
		return fmt.Sprintf("done: %d known, %d missed along the way", v.Known, v.Skipped)
	case study.ReasonNothingDue:
		return "nothing due right now; run with --ignore-due-date to study anyway"
	case study.ReasonNotEnoughCards:
		return "learn mode needs at least 4 cards"
	default:
		return "nothing to study"
	}
}
