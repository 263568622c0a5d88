package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nubank/butu-chat/internal/logger"
	"github.com/nubank/butu-chat/internal/relay"
	"github.com/nubank/butu-chat/internal/render"
	"github.com/nubank/butu-chat/internal/responder"
	"github.com/nubank/butu-chat/internal/store"
	"github.com/nubank/butu-chat/internal/widget"
)

type chatOptions struct {
	serverURL   string
	transcript  string
	replies     string
	botName     string
	logLevel    string
	typingSpeed time.Duration
	minDelay    time.Duration
	maxDelay    time.Duration
}

func newChatCmd() *cobra.Command {
	opts := chatOptions{}
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with Butu from the terminal",
		Long: `Chat with Butu from the terminal.

Commands:
  /image <path>  attach an image to the next message
  /clear         remove the pending image
  /quit          leave

Ctrl-C while a reply is on its way cancels it.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger.Setup(opts.logLevel, term.IsTerminal(int(os.Stderr.Fd())))
			return runChat(cmd.Context(), opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.serverURL, "server", "http://localhost:3000", "relay server base URL")
	f.StringVar(&opts.transcript, "transcript", "", "also write the conversation as HTML to this file")
	f.StringVar(&opts.replies, "replies", "", "YAML reply table replacing the built-in one")
	f.StringVar(&opts.botName, "name", "Butu", "assistant name shown in the conversation")
	f.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	f.DurationVar(&opts.typingSpeed, "typing-speed", render.DefaultTypingSpeed, "delay between revealed characters")
	f.DurationVar(&opts.minDelay, "min-delay", render.DefaultMinDelay, "shortest thinking delay")
	f.DurationVar(&opts.maxDelay, "max-delay", render.DefaultMaxDelay, "longest thinking delay")
	return cmd
}

func runChat(ctx context.Context, opts chatOptions, in io.Reader, out io.Writer) error {
	table := responder.DefaultTable()
	if opts.replies != "" {
		t, err := responder.LoadTable(opts.replies)
		if err != nil {
			return err
		}
		table = t
	}

	var view render.View = render.NewTerminalView(out, opts.botName)
	if opts.transcript != "" {
		f, err := os.Create(opts.transcript)
		if err != nil {
			return fmt.Errorf("create transcript: %w", err)
		}
		defer f.Close()
		io.WriteString(f, "<!DOCTYPE html>\n<meta charset=\"utf-8\">\n<div id=\"chatbot-messages\">\n")
		defer io.WriteString(f, "</div>\n")
		view = render.MultiView(view, render.NewHTMLView(f))
	}

	renderer := render.NewRenderer(view)
	renderer.TypingSpeed = opts.typingSpeed
	renderer.MinDelay = opts.minDelay
	renderer.MaxDelay = opts.maxDelay

	w := widget.New(store.NewSession(), responder.New(table), relay.New(opts.serverURL, nil), renderer, view)

	fmt.Fprintf(out, "Chatting with %s. /image <path> attaches a picture, /quit leaves.\n", opts.botName)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "/quit":
			return nil
		case line == "/clear":
			w.ClearAttachment()
			fmt.Fprintln(out, "(image removed)")
			continue
		case strings.HasPrefix(line, "/image "):
			if err := w.Attach(strings.TrimSpace(strings.TrimPrefix(line, "/image "))); err == nil {
				fmt.Fprintln(out, "(image attached, it will be sent with your next message)")
			}
			continue
		}

		submitCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
		err := w.Submit(submitCtx, line)
		stop()
		switch {
		case errors.Is(err, widget.ErrEmptyMessage):
		case errors.Is(err, context.Canceled):
			fmt.Fprintln(out, "(cancelled)")
		case err != nil:
			return err
		}
	}
	return scanner.Err()
}
