package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cloo-solutions/resumechat/internal/domain"
	"github.com/cloo-solutions/resumechat/internal/service"
	"github.com/spf13/cobra"
)

const (
	welcomeMessage = "Welcome to the Resume Chatbot! Type 'exit' to quit."
	goodbyeMessage = "Exiting the chatbot. Goodbye!"
	userPrompt     = "You: "
	botPrefix      = "Bot: "
)

// Asker answers questions within a session.
type Asker interface {
	Ask(ctx context.Context, sessionID, question string) ([]domain.Exchange, error)
}

// ChatCmd returns the interactive chat command
func ChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat <resume.pdf>",
		Short: "Process a resume and chat about it in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  runChat,
	}

	cmd.Flags().Bool("facts", true, "Print the generated facts before the chat starts")

	return cmd
}

func runChat(cmd *cobra.Command, args []string) error {
	path := args[0]
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("cannot read resume: %w", err)
	}

	cfg, log, flush, err := bootstrap(os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	defer flush()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	app, err := NewApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	result, err := app.Service.Process(ctx, service.ProcessInput{Path: path, Filename: filepath.Base(path)})
	if err != nil {
		return errors.New(domain.MessageOf(err))
	}
	defer app.Service.Close(context.Background(), result.SessionID)

	out := cmd.OutOrStdout()
	if showFacts, _ := cmd.Flags().GetBool("facts"); showFacts {
		fmt.Fprintln(out, result.Facts)
		fmt.Fprintln(out)
	}

	return RunChat(ctx, app.Service, result.SessionID, cmd.InOrStdin(), out)
}

// RunChat reads questions from in until "exit" or end of input and prints
// each answer to out.
func RunChat(ctx context.Context, svc Asker, sessionID string, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, welcomeMessage)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, userPrompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			fmt.Fprintln(out, goodbyeMessage)
			return scanner.Err()
		}

		question := scanner.Text()
		if strings.EqualFold(strings.TrimSpace(question), "exit") {
			fmt.Fprintln(out, goodbyeMessage)
			return nil
		}
		if strings.TrimSpace(question) == "" {
			continue
		}

		history, err := svc.Ask(ctx, sessionID, question)
		switch {
		case len(history) > 0:
			fmt.Fprintln(out, botPrefix+history[len(history)-1].Answer)
		case err != nil:
			fmt.Fprintln(out, botPrefix+domain.QuestionErrorPrefix+domain.MessageOf(err))
		}

		if err := ctx.Err(); err != nil {
			return err
		}
	}
}
