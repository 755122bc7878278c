package app

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ayusman/repcount/internal/capture"
	"github.com/ayusman/repcount/internal/tracker"
)

// runPipeline is the main detection loop that processes frames from the camera.
// It manages the state transitions between idle and active modes based on motion detection.
//
// Pipeline logic:
// 1. Start in idle mode (IdleFPS=5)
// 2. On motion detected, switch to active mode (ActiveFPS=15)
// 3. Run pose detection and feed the registry
// 4. After 2s without motion, switch back to idle mode
//
// Recorded videos skip the motion gate and run in active mode throughout.
// The loop exits when stopCh is closed or a video runs out of frames.
func (a *App) runPipeline(stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	gated := a.config.MotionThresh > 0 && !capture.IsFile(a.camera)

	activeMode := !gated
	lastMotionTime := time.Now()

	frameInterval := time.Second / time.Duration(IdleFPS)
	if activeMode {
		a.camera.SetFPS(ActiveFPS)
		frameInterval = time.Second / time.Duration(ActiveFPS)
	}

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			frame, err := a.camera.ReadFrame()
			if errors.Is(err, capture.ErrEndOfStream) {
				log.Println("Video finished")
				return
			}
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			a.setLatest(frame)

			if !a.IsEnabled() {
				frame.Close()
				continue
			}

			if gated {
				motionDetected, _ := a.motion.Detect(frame)

				if motionDetected {
					lastMotionTime = time.Now()

					if !activeMode {
						activeMode = true
						a.camera.SetFPS(ActiveFPS)
						ticker.Reset(time.Second / time.Duration(ActiveFPS))
						log.Println("Switched to active mode")
					}
				} else if activeMode {
					if time.Since(lastMotionTime) > time.Duration(IdleTimeoutMs)*time.Millisecond {
						activeMode = false
						a.camera.SetFPS(IdleFPS)
						ticker.Reset(time.Second / time.Duration(IdleFPS))
						log.Println("Switched to idle mode")
					}
				}
			}

			if !activeMode {
				frame.Close()
				continue
			}

			_, err = a.ProcessFrame(frame)
			frame.Close()
			if err != nil {
				log.Printf("Error processing frame: %v", err)
			}
		}
	}
}

// Analyze counts repetitions in a recorded video as fast as it decodes,
// without the motion gate or frame pacing. It returns the final counts.
func (a *App) Analyze() ([]tracker.PersonCounts, error) {
	camera := a.Camera()
	if err := camera.Open(); err != nil {
		return nil, fmt.Errorf("open video: %w", err)
	}
	defer camera.Close()

	frames := 0
	for {
		frame, err := camera.ReadFrame()
		if errors.Is(err, capture.ErrEndOfStream) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read frame %d: %w", frames, err)
		}
		frames++

		_, err = a.ProcessFrame(frame)
		frame.Close()
		if err != nil {
			log.Printf("Error processing frame %d: %v", frames, err)
		}
	}

	log.Printf("Analyzed %d frames", frames)
	return a.Counts(), nil
}
