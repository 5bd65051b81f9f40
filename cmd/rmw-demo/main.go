// Command rmw-demo runs a talker and a listener over the loopback
// middleware in one process.
//
// This example shows how to:
//   - Register a middleware implementation and select it
//   - Create a context, nodes, and a publisher/subscription pair
//   - Drive the two loops concurrently and shut them down cleanly
//   - Watch middleware trace events through the slog adapter
//
// Usage:
//
//	go run ./cmd/rmw-demo [-duration 10s] [-period 500ms] [-trace]
//
// The demo stops on SIGINT or after -duration, whichever comes first.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	stdlog "log"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ros-middleware/rmw-go/internal/loopback"
	"github.com/ros-middleware/rmw-go/internal/typesupport"
	"github.com/ros-middleware/rmw-go/pkg/log"
	"github.com/ros-middleware/rmw-go/pkg/rmw"
)

// chatMessage is the demo payload.
type chatMessage struct {
	Stamp time.Time `cbor:"1,keyasint"`
	Text  string    `cbor:"2,keyasint"`
	Seq   int64     `cbor:"3,keyasint"`
}

var chatType = typesupport.New[chatMessage]("rmw_demo/msg/Chat")

var (
	runFor = flag.Duration("duration", 10*time.Second, "How long to run")
	period = flag.Duration("period", 500*time.Millisecond, "Publish period")
	domain = flag.Int("domain", 0, "Domain ID")
	trace  = flag.Bool("trace", false, "Show middleware trace events")
)

func main() {
	flag.Parse()
	stdlog.SetFlags(stdlog.Ltime | stdlog.Lmicroseconds)
	stdlog.Println("RMW Loopback Demo")
	stdlog.Println("=================")

	level := slog.LevelInfo
	if *trace {
		level = slog.LevelDebug
	}
	slogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := rmw.Register(loopback.New(loopback.Config{Logger: log.NewSlogAdapter(slogger)})); err != nil {
		stdlog.Fatalf("Failed to register middleware: %v", err)
	}
	mw, err := rmw.Select()
	if err != nil {
		stdlog.Fatalf("Failed to select middleware: %v", err)
	}
	stdlog.Printf("Middleware: %s (%s)", mw.Name(), mw.SerializationFormat())

	opts := rmw.DefaultContextOptions()
	opts.DomainID = *domain
	rctx, err := mw.NewContext(opts)
	if err != nil {
		stdlog.Fatalf("Failed to create context: %v", err)
	}
	defer rctx.Close()
	stdlog.Printf("Domain: %d", rctx.DomainID())

	talker, err := rctx.CreateNode("talker", "/demo")
	if err != nil {
		stdlog.Fatalf("Failed to create talker: %v", err)
	}
	listener, err := rctx.CreateNode("listener", "/demo")
	if err != nil {
		stdlog.Fatalf("Failed to create listener: %v", err)
	}

	pub, err := talker.CreatePublisher(chatType, "/demo/chatter", rmw.DefaultPublisherOptions())
	if err != nil {
		stdlog.Fatalf("Failed to create publisher: %v", err)
	}
	sub, err := listener.CreateSubscription(chatType, "/demo/chatter", rmw.DefaultSubscriptionOptions())
	if err != nil {
		stdlog.Fatalf("Failed to create subscription: %v", err)
	}
	stdlog.Printf("Publisher QoS: %s", pub.ActualQoS())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *runFor)
	defer cancel()

	var sent, received atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return runTalker(gctx, pub, *period, &sent) })
	g.Go(func() error { return runListener(gctx, sub, &received) })

	if err := g.Wait(); err != nil {
		stdlog.Fatalf("Demo failed: %v", err)
	}

	stdlog.Println("Shutting down...")
	if err := rctx.Shutdown(); err != nil {
		stdlog.Printf("Error shutting down: %v", err)
	}
	stdlog.Printf("Sent %d, received %d", sent.Load(), received.Load())
	stdlog.Println("Goodbye!")
}

// runTalker publishes one stamped message per period until ctx ends.
func runTalker(ctx context.Context, pub rmw.Publisher, period time.Duration, sent *atomic.Int64) error {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for seq := int64(1); ; seq++ {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			msg := &chatMessage{
				Stamp: time.Now(),
				Text:  fmt.Sprintf("hello world %d", seq),
				Seq:   seq,
			}
			if err := pub.Publish(msg); err != nil {
				if errors.Is(err, rmw.ErrShutdown) {
					return nil
				}
				return fmt.Errorf("publish: %w", err)
			}
			sent.Add(1)
			stdlog.Printf("[SEND] #%d", seq)
		}
	}
}

// runListener drains the subscription whenever it reports ready and
// prints QoS events as they arrive.
func runListener(ctx context.Context, sub rmw.Subscription, received *atomic.Int64) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-sub.Events():
			if !ok {
				return nil
			}
			stdlog.Printf("[EVENT] %s", ev.Type)

		case <-sub.Ready():
			for {
				msg, info, ok, err := sub.Take()
				if err != nil {
					if errors.Is(err, rmw.ErrShutdown) || errors.Is(err, rmw.ErrClosed) {
						return nil
					}
					return fmt.Errorf("take: %w", err)
				}
				if !ok {
					break
				}
				chat := msg.(*chatMessage)
				received.Add(1)
				stdlog.Printf("[RECV] #%d %q (pub seq %d, latency %s)",
					chat.Seq, chat.Text, info.PublicationSequenceNumber,
					time.Since(chat.Stamp).Round(time.Microsecond))
			}
		}
	}
}
