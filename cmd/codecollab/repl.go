package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/Prannn182/CodeCollab-Frontend/internal/connection"
	"github.com/Prannn182/CodeCollab-Frontend/sdk"
	qrcode "github.com/skip2/go-qrcode"
)

// roomClient is the part of sdk.Client the REPL drives.
type roomClient interface {
	View() sdk.View
	EditCode(code string) error
	SendChat(text string) error
	ChangeLanguage(language string) error
	RunCode() error
	ForceReconnect()
	LeaveRoom()
	Keystroke()
}

// repl reads commands from the terminal and prints room activity.
type repl struct {
	client roomClient
	out    io.Writer
	roomID string

	mu       sync.Mutex
	chatSeen int
	notes    map[string]bool
	status   connection.Status
	output   string
	language string
}

func newREPL(client roomClient, out io.Writer) *repl {
	return &repl{client: client, out: out, notes: make(map[string]bool)}
}

// parseCommand splits "/cmd arg..." into its name and argument. Lines without
// a leading slash are chat messages and return an empty name.
func parseCommand(line string) (name, arg string) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		return "", line
	}
	name, arg, _ = strings.Cut(line[1:], " ")
	return strings.ToLower(name), strings.TrimSpace(arg)
}

func (r *repl) run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	r.printf("Type a message to chat, or /help for commands.\n")
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := r.handle(line); quit {
				return nil
			}
		}
	}
}

// handle executes one input line and reports whether the REPL should exit.
func (r *repl) handle(line string) bool {
	name, arg := parseCommand(line)
	var err error
	switch name {
	case "":
		if arg == "" {
			return false
		}
		err = r.client.SendChat(arg)
	case "code":
		err = r.client.EditCode(strings.ReplaceAll(arg, `\n`, "\n"))
	case "show":
		doc := r.client.View().Session.Document
		r.printf("--- %s ---\n%s\n---\n", doc.Language, doc.Code)
	case "lang":
		err = r.client.ChangeLanguage(arg)
	case "run":
		err = r.client.RunCode()
	case "typing":
		r.client.Keystroke()
	case "users":
		r.printUsers(r.client.View())
	case "status":
		snap := r.client.View().Connection
		r.printf("Connection: %s (attempts %d)\n", snap.Status, snap.ReconnectAttempts)
		if snap.LastError != nil {
			r.printf("Last error: %v\n", snap.LastError)
		}
	case "reconnect":
		r.client.ForceReconnect()
	case "invite":
		r.printInvite()
	case "leave", "quit", "exit":
		r.client.LeaveRoom()
		return true
	case "help":
		r.printf(replHelp)
	default:
		r.printf("Unknown command /%s. Type /help for commands.\n", name)
	}
	if err != nil {
		r.printf("Error: %v\n", err)
	}
	return false
}

const replHelp = `Commands:
  <text>        Send a chat message
  /code <text>  Replace the document (\n for newlines)
  /show         Print the document
  /lang <name>  Switch language
  /run          Run the document
  /typing       Signal that you are typing
  /users        List participants
  /status       Show connection status
  /reconnect    Reconnect now
  /invite       Show the room id as a QR code
  /leave        Leave the room and exit
`

func (r *repl) printUsers(v sdk.View) {
	r.printf("%d user(s) in %s:\n", v.Session.UserCount, v.Session.RoomID)
	for _, u := range v.Session.Roster {
		marker := " "
		if u.ID == v.Session.LocalUserID {
			marker = "*"
		}
		typing := ""
		if u.IsTyping {
			typing = " (typing)"
		}
		r.printf(" %s %s%s\n", marker, u.Username, typing)
	}
}

func (r *repl) printInvite() {
	r.printf("Room id: %s\n", r.roomID)
	qr, err := qrcode.New(r.roomID, qrcode.Medium)
	if err != nil {
		r.printf("Failed to generate QR code: %v\n", err)
		return
	}
	r.printf("%s\n", qr.ToSmallString(false))
}

// render prints what changed since the previous view.
func (r *repl) render(v sdk.View) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v.Connection.Status != r.status {
		if r.status != "" {
			fmt.Fprintf(r.out, "[connection %s]\n", v.Connection.Status)
		}
		r.status = v.Connection.Status
	}

	if n := len(v.Session.ChatLog); n < r.chatSeen {
		r.chatSeen = 0
	}
	for _, m := range v.Session.ChatLog[r.chatSeen:] {
		fmt.Fprintf(r.out, "<%s> %s\n", m.Username, m.Body)
	}
	r.chatSeen = len(v.Session.ChatLog)

	for _, n := range v.Notifications {
		if !r.notes[n.ID] {
			r.notes[n.ID] = true
			fmt.Fprintf(r.out, "* %s\n", n.Message)
		}
	}

	if lang := v.Session.Document.Language; lang != r.language {
		if r.language != "" && lang != "" {
			fmt.Fprintf(r.out, "[language %s]\n", lang)
		}
		r.language = lang
	}

	run := v.Session.RunOutput
	if !run.Pending {
		out := run.Output + run.Error
		if out != "" && out != r.output {
			if run.Error != "" {
				fmt.Fprintf(r.out, "[run error]\n%s\n", run.Error)
			} else {
				fmt.Fprintf(r.out, "[run output]\n%s\n", run.Output)
			}
		}
		r.output = out
	}
}

func (r *repl) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, format, args...)
}
