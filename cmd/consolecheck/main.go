package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/board-console/internal/backend"
	"github.com/park285/board-console/internal/evalbar"
	"github.com/park285/board-console/internal/render"
	"github.com/park285/board-console/pkg/consoledto"
)

func main() {
	baseURL := flag.String("backend", os.Getenv("BOARD_BACKEND_URL"), "controller base URL")
	dialectName := flag.String("dialect", envDefault("CONSOLE_BACKEND_DIALECT", "api"), "api or legacy")
	pngPath := flag.String("png", "", "write the board as PNG to this file")
	consoleURL := flag.String("console", os.Getenv("CONSOLE_WS_URL"), "console websocket URL to probe, e.g. ws://localhost:8080/ws")
	flag.Parse()

	if *baseURL == "" {
		log.Fatal("BOARD_BACKEND_URL (or -backend) is required")
	}
	dialect, err := backend.ParseDialect(*dialectName)
	if err != nil {
		log.Fatal(err)
	}
	client := backend.NewClient(*baseURL, backend.WithDialect(dialect), backend.WithTimeout(8*time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.Ping(ctx); err != nil {
		log.Printf("ping error: %v", err)
	} else {
		log.Printf("ping ok: %s (%s)", client.BaseURL(), client.Dialect())
	}

	snap, err := client.FetchBoard(ctx)
	switch {
	case err != nil:
		log.Printf("board error: %v", err)
	case !snap.Valid:
		log.Println("board: no state available")
	default:
		fmt.Println(snap.Grid.ASCII())
		fmt.Printf("FEN: %s\n", snap.Grid.Placement())
		if snap.Evaluation != nil {
			fmt.Printf("Eval: %s\n", evalbar.Compute(*snap.Evaluation).Text)
		}
		if snap.PGN != "" {
			fmt.Printf("PGN: %s\n", snap.PGN)
		}
		if *pngPath != "" {
			img, err := render.NewPNGRenderer().Render(ctx, snap.Grid, render.PNGOptions{Evaluation: snap.Evaluation})
			if err != nil {
				log.Printf("png render error: %v", err)
			} else if err := os.WriteFile(*pngPath, img, 0o644); err != nil {
				log.Printf("png write error: %v", err)
			} else {
				log.Printf("png written: %s (%d bytes)", *pngPath, len(img))
			}
		}
	}

	if paused, err := client.PauseState(ctx); err != nil {
		log.Printf("pause state error: %v", err)
	} else {
		log.Printf("move detection paused=%v", paused)
	}

	if *consoleURL == "" {
		log.Println("CONSOLE_WS_URL not set; skipping console check")
		return
	}
	checkConsole(*consoleURL)
}

// checkConsole opens a console session and prints the first frames.
func checkConsole(url string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if !strings.Contains(url, "?") {
		url += "?path=/board-view"
	}
	conn, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		log.Printf("console dial error: %v", err)
		return
	}
	defer conn.CloseNow()

	for i := 0; i < 3; i++ {
		var f consoledto.ServerFrame
		if err := wsjson.Read(ctx, conn, &f); err != nil {
			log.Printf("console read error: %v", err)
			return
		}
		switch f.Kind {
		case consoledto.FrameHello:
			log.Printf("console session=%s", f.Session)
		case consoledto.FramePatches:
			log.Printf("console patches=%d", len(f.Patches))
		default:
			log.Printf("console %s: %s", f.Kind, f.Error)
		}
	}
	conn.Close(websocket.StatusNormalClosure, "")
}

func envDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}
