package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/examroom/backend/internal/candidate"
	"github.com/examroom/backend/internal/model"
)

// A terminal exam client. Mostly useful for exercising the backend end
// to end; real candidates use the web frontend, which drives the same
// session engine.
func main() {
	var (
		server = flag.String("server", "http://localhost:8080", "Backend base URL")
		room   = flag.String("room", "", "Room number")
		name   = flag.String("name", "", "Candidate name")
		branch = flag.String("branch", "", "Candidate branch")
		regNo  = flag.String("reg", "", "Registration number")
	)
	flag.Parse()

	if *room == "" || *name == "" || *branch == "" || *regNo == "" {
		fmt.Fprintln(os.Stderr, "room, name, branch and reg are required")
		flag.Usage()
		os.Exit(1)
	}

	client := candidate.NewClient(*server, 15*time.Second)
	coordinator := candidate.NewCoordinator(client)

	paper, err := client.GetPaper(context.Background(), *room)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fetch paper: %v\n", err)
		os.Exit(1)
	}

	hooks := candidate.Hooks{
		OnStage: func(s candidate.Stage) {
			fmt.Printf("\n[stage] %s\n", s)
			switch s {
			case candidate.StageInstructions:
				fmt.Printf("Room %s, %d minutes, %d questions.\n", paper.RoomNumber, paper.DurationMinutes, len(paper.Questions))
				fmt.Println("The clock starts when you do. Type 'start' to begin.")
			case candidate.StageActive:
				printPaper(paper)
			}
		},
		OnWarning: func(d candidate.Decision) {
			fmt.Printf("\n[warning] violation recorded, %d warnings remaining\n", d.WarningsLeft)
		},
		OnReturnCountdown: func(d time.Duration) {
			fmt.Printf("\n[warning] violation limit reached, submitting in %s\n", d)
		},
		OnFullscreenLost: func() {
			fmt.Println("\n[warning] return to fullscreen to continue")
		},
		OnResult: func(o candidate.Outcome) {
			switch o.Kind {
			case candidate.OutcomeAccepted:
				if o.Score != nil && o.Score.Score != nil {
					fmt.Printf("\n[done] submitted, final score %.2f\n", o.Score.Score.Final)
				} else {
					fmt.Println("\n[done] submitted")
				}
			case candidate.OutcomeFailed:
				fmt.Printf("\n[error] submission failed (%v); type 'retry'\n", o.Err)
			default:
				fmt.Printf("\n[rejected] %v\n", o.Err)
			}
		},
	}

	cand := model.Candidate{Name: *name, Branch: *branch, RegNo: *regNo}
	ct := candidate.NewController(client, coordinator, *room, cand, hooks)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go readCommands(ct)

	if err := ct.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "session ended: %v\n", err)
		os.Exit(1)
	}
}

func printPaper(p *model.Paper) {
	for _, q := range p.Questions {
		fmt.Printf("\nQ%d. %s\n", q.Index+1, q.QuestionText)
		for i, opt := range q.Options {
			fmt.Printf("  %d) %s\n", i+1, opt)
		}
	}
	fmt.Println("\nCommands: answer <q> <text> | clear <q> | review <q> | submit | retry | quit")
}

func readCommands(ct *candidate.Controller) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		parts := strings.SplitN(strings.TrimSpace(scanner.Text()), " ", 3)
		switch parts[0] {
		case "start":
			ct.Start()
		case "answer":
			if len(parts) < 3 {
				fmt.Println("usage: answer <q> <text>")
				continue
			}
			q, err := strconv.Atoi(parts[1])
			if err != nil || q < 1 {
				fmt.Println("bad question number")
				continue
			}
			v := parts[2]
			ct.SetAnswer(q-1, &v)
		case "clear":
			if len(parts) < 2 {
				fmt.Println("usage: clear <q>")
				continue
			}
			q, err := strconv.Atoi(parts[1])
			if err != nil || q < 1 {
				fmt.Println("bad question number")
				continue
			}
			ct.SetAnswer(q-1, nil)
		case "review":
			if len(parts) < 2 {
				fmt.Println("usage: review <q>")
				continue
			}
			q, err := strconv.Atoi(parts[1])
			if err != nil || q < 1 {
				fmt.Println("bad question number")
				continue
			}
			ct.ToggleReview(q - 1)
		case "submit":
			ct.SubmitNow()
		case "retry":
			ct.RetrySubmit()
		case "quit":
			os.Exit(0)
		case "":
		default:
			fmt.Println("unknown command")
		}
	}
}
