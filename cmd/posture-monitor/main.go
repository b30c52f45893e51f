package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pranav-m-r/Smart-Posture-Monitor/internal/api"
	"github.com/pranav-m-r/Smart-Posture-Monitor/internal/config"
	"github.com/pranav-m-r/Smart-Posture-Monitor/internal/db"
	"github.com/pranav-m-r/Smart-Posture-Monitor/internal/engine"
	"github.com/pranav-m-r/Smart-Posture-Monitor/internal/metrics"
	"github.com/pranav-m-r/Smart-Posture-Monitor/internal/pose"
	"github.com/pranav-m-r/Smart-Posture-Monitor/internal/posefeed"
	"github.com/pranav-m-r/Smart-Posture-Monitor/internal/snapshot"
	"github.com/pranav-m-r/Smart-Posture-Monitor/internal/timeutil"
)

var (
	devMode       = flag.Bool("dev", false, "Replay fixture frames instead of reading the pose serial port")
	fixturesPath  = flag.String("fixtures", "fixtures.ndjson", "Fixture frames for dev mode, one JSON keypoint array per line")
	frameInterval = flag.Duration("frame-interval", 100*time.Millisecond, "Replay interval between fixture frames in dev mode")
	listen        = flag.String("listen", ":8080", "Listen address")
	serialPort    = flag.String("port", "/dev/ttyUSB0", "Serial port of the pose coprocessor")
	baudRate      = flag.Int("baud", 0, "Serial baud rate (0 selects the default)")
	dbFile        = flag.String("db", "posture_data.db", "Path to the sqlite database")
	migrationsDir = flag.String("migrations", "migrations", "Path to the migrations directory")
	configPath    = flag.String("config", "", "Path to a posture tuning JSON file (defaults apply when omitted)")
	cameraView    = flag.String("view", "", "Camera placement override: front or side")
)

// resetRequest asks the pipeline goroutine to roll the session over. The new
// session id is sent on reply.
type resetRequest struct {
	reply chan string
}

func main() {
	flag.Parse()

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	cfg := config.EmptyPostureConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadPostureConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}
	if *cameraView != "" {
		cfg.CameraView = cameraView
		if err := cfg.Validate(); err != nil {
			log.Fatalf("invalid camera view: %v", err)
		}
	}

	var feed posefeed.FeedInterface
	if *devMode {
		data, err := os.ReadFile(*fixturesPath)
		if err != nil {
			log.Fatalf("failed to open fixtures file: %v", err)
		}
		feed = posefeed.NewMockFeed(data, *frameInterval)
	} else {
		var err error
		feed, err = posefeed.NewSerialFeed(*serialPort, posefeed.PortOptions{BaudRate: *baudRate})
		if err != nil {
			log.Fatalf("failed to open pose serial port: %v", err)
		}
	}
	defer feed.Close()

	database, err := db.NewDB(*dbFile)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	if err := database.MigrateUp(*migrationsDir); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	clock := timeutil.RealClock{}
	eng := engine.New(cfg.EngineParams(), clock)
	holder := &snapshot.Holder{}

	// Current session id, read by HTTP handlers and rolled over by the
	// pipeline goroutine on reset.
	var sessionMu sync.Mutex
	sessionID := uuid.NewString()
	currentSession := func() string {
		sessionMu.Lock()
		defer sessionMu.Unlock()
		return sessionID
	}

	view := string(eng.View())
	if err := database.CreateSession(sessionID, view, eng.SessionStart()); err != nil {
		log.Fatalf("failed to create session: %v", err)
	}
	log.Printf("started session %s (camera view %s)", sessionID, view)

	resetChan := make(chan resetRequest)

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// run the monitor routine to manage IO on the pose feed
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := feed.Monitor(ctx); err != nil && err != context.Canceled {
			log.Printf("failed to monitor pose feed: %v", err)
		}
		log.Print("feed monitor routine terminated")
	}()

	// pipeline goroutine: the single writer of engine and snapshot state
	wg.Add(1)
	go func() {
		defer wg.Done()
		id, frames := feed.Subscribe()
		defer feed.Unsubscribe(id)
		for {
			select {
			case line := <-frames:
				handleFrame(database, eng, holder, currentSession(), line, clock.Now())

			case req := <-resetChan:
				now := clock.Now()
				sessionMu.Lock()
				oldID := sessionID
				sessionID = uuid.NewString()
				newID := sessionID
				sessionMu.Unlock()

				if err := database.CloseSession(oldID, now); err != nil {
					log.Printf("failed to close session %s: %v", oldID, err)
				}
				eng.Reset()
				if err := database.CreateSession(newID, view, eng.SessionStart()); err != nil {
					log.Printf("failed to create session %s: %v", newID, err)
				}
				log.Printf("session reset: %s -> %s", oldID, newID)
				req.reply <- newID

			case <-ctx.Done():
				log.Printf("pipeline routine terminated")
				return
			}
		}
	}()

	resetFn := func() (string, error) {
		req := resetRequest{reply: make(chan string, 1)}
		select {
		case resetChan <- req:
			return <-req.reply, nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		apiServer := api.NewServer(holder, database, resetFn, currentSession, cfg.GetGoodScoreBoundary())

		mux := http.NewServeMux()
		mux.Handle("/", apiServer.ServeMux())
		mux.Handle("/metrics", promhttp.Handler())

		server := &http.Server{
			Addr:    *listen,
			Handler: api.LoggingMiddleware(mux),
		}

		// Start server in a goroutine so it doesn't block
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}

		log.Printf("HTTP server routine stopped")
	}()

	wg.Wait()

	if err := database.CloseSession(currentSession(), clock.Now()); err != nil {
		log.Printf("failed to close session on shutdown: %v", err)
	}
	log.Printf("Graceful shutdown complete")
}

// handleFrame parses one keypoint line and runs it through the engine. A
// malformed line is counted and dropped without disturbing the pipeline.
func handleFrame(database *db.DB, eng *engine.Engine, holder *snapshot.Holder, sessionID, line string, now time.Time) {
	p, err := pose.Parse([]byte(line))
	if err != nil {
		metrics.MalformedFramesTotal.Inc()
		log.Printf("discarding malformed frame: %v", err)
		return
	}

	start := time.Now()
	assessment := eng.Update(p, now)
	metrics.UpdateLatency.Observe(time.Since(start).Seconds())

	holder.Publish(snapshot.Snapshot{
		Timestamp:  now,
		Pose:       p,
		Assessment: assessment,
	})

	metrics.FramesTotal.Inc()
	metrics.CurrentScore.Set(assessment.Result.Score)
	metrics.ClassificationsTotal.WithLabelValues(string(assessment.Result.Classification)).Inc()
	if assessment.Alerts.BadPosture {
		metrics.AlertsTotal.WithLabelValues("bad_posture").Inc()
	}
	if assessment.Alerts.Seated {
		metrics.AlertsTotal.WithLabelValues("seated").Inc()
	}
	if assessment.Alerts.Focused {
		metrics.AlertsTotal.WithLabelValues("focused").Inc()
	}

	if err := database.RecordAssessment(sessionID, assessment); err != nil {
		log.Printf("failed to record assessment: %v", err)
	}
}
