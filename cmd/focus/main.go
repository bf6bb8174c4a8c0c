package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"focusflow/internal/client"
	"focusflow/internal/model"
	"focusflow/internal/timer"
)

func main() {
	apiURL := flag.String("api", envOrDefault("FOCUSFLOW_API", "http://localhost:8080"), "API base URL")
	token := flag.String("token", os.Getenv("FOCUSFLOW_TOKEN"), "bearer token")
	sessionID := flag.String("session", "", "session id to attach to")
	flag.Parse()

	if *token == "" || *sessionID == "" {
		log.Fatal("both -token and -session are required")
	}

	api := client.New(*apiURL, *token, *sessionID)
	beacon := client.NewBeaconSender(*apiURL, *token, *sessionID)
	ctrl := timer.New(api, beacon)

	ctx := context.Background()
	if err := ctrl.Load(ctx); err != nil {
		log.Fatalf("failed to load session: %v", err)
	}
	session := ctrl.Session()
	fmt.Printf("Attached to session %s (%ds on the clock)\n", session.ID, session.Duration)
	if session.Intention != "" {
		fmt.Printf("Intention: %s\n", session.Intention)
	}
	fmt.Println("Commands: p=pause, r=resume, n <text>=note, e=end, c=complete, q=quit")

	// Ctrl-C behaves like closing the tab: flush the latest value and go
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		ctrl.Flush()
		ctrl.Close()
		os.Exit(0)
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "p":
			ctrl.Pause()
			fmt.Printf("Paused at %ds\n", ctrl.Elapsed())
		case line == "r":
			if ctrl.State() == timer.StateReflecting {
				ctrl.ContinueSession()
			} else {
				ctrl.Resume()
			}
			fmt.Println("Running")
		case strings.HasPrefix(line, "n "):
			ctrl.SetNotes(strings.TrimPrefix(line, "n "))
			if err := ctrl.FlushNotes(ctx); err != nil {
				fmt.Printf("Saving notes failed: %v (will retry on next note)\n", err)
			}
		case line == "e":
			ctrl.EndSession()
			fmt.Printf("Session ended at %ds. Complete with 'c' or resume with 'r'.\n", ctrl.Elapsed())
		case line == "c":
			if ctrl.State() != timer.StateReflecting {
				fmt.Println("End the session first with 'e'")
				continue
			}
			reflection := promptReflection(scanner)
			if err := ctrl.Finalize(ctx, reflection); err != nil {
				fmt.Printf("Completing session failed: %v. Try 'c' again.\n", err)
				continue
			}
			fmt.Println("Session completed.")
			return
		case line == "q":
			ctrl.Flush()
			ctrl.Close()
			return
		case line == "":
			fmt.Printf("%s | %s\n", formatElapsed(ctrl.Elapsed()), ctrl.State())
		default:
			fmt.Println("Unknown command")
		}
	}
}

func promptReflection(scanner *bufio.Scanner) model.ReflectionPayload {
	var p model.ReflectionPayload
	fmt.Print("What went well? ")
	if scanner.Scan() {
		p.WhatWentWell = strings.TrimSpace(scanner.Text())
	}
	fmt.Print("What blocked you? ")
	if scanner.Scan() {
		p.WhatBlocked = strings.TrimSpace(scanner.Text())
	}
	fmt.Print("What's next? ")
	if scanner.Scan() {
		p.WhatNext = strings.TrimSpace(scanner.Text())
	}
	return p
}

func formatElapsed(seconds int) string {
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
