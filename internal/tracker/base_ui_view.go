package tracker

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/lowaak/mapty/internal/go_func_utils"
	"github.com/lowaak/mapty/internal/workout"
)

// BaseUIView contains the base logic shared by all UI implementations
type BaseUIView struct {
	uiViewImpl  UIViewImpl
	model       *SessionModel
	controller  *SessionController
	context     context.Context
	cancelFunc  context.CancelFunc
	waitGroup   sync.WaitGroup
	unregisters []func()
	logger      *log.Logger
}

// NewBaseUIViewArg holds the arguments for creating a new BaseUIView
type NewBaseUIViewArg struct {
	UIViewImpl UIViewImpl
	Model      *SessionModel
	Controller *SessionController
	Logger     *log.Logger
}

// NewBaseUIView hooks the implementation to the controller and starts
// following the model
func NewBaseUIView(args NewBaseUIViewArg) *BaseUIView {
	if args.Logger == nil {
		panic("BaseUIView: logger cannot be nil")
	}
	if args.UIViewImpl == nil {
		panic("BaseUIView: UIViewImpl cannot be nil")
	}
	if args.Model == nil {
		panic("BaseUIView: model cannot be nil")
	}
	if args.Controller == nil {
		panic("BaseUIView: controller cannot be nil")
	}
	ctx, cancel := context.WithCancel(context.Background())

	base := &BaseUIView{
		uiViewImpl: args.UIViewImpl,
		model:      args.Model,
		controller: args.Controller,
		context:    ctx,
		cancelFunc: cancel,
		logger:     args.Logger,
	}

	args.UIViewImpl.Initialize(args.Controller)
	args.UIViewImpl.SetupKeyboardHandlers(args.Controller)
	args.UIViewImpl.UpdateStatus(base.status())

	base.waitGroup.Add(1)
	go_func_utils.SafeGo(base.logger, "BaseUIView.monitorLogResize", func() { base.monitorLogResize() })
	base.updateLogDisplay()

	base.setupEventListeners()

	return base
}

func (base *BaseUIView) setupEventListeners() {
	// State and workout changes happen on the event loop, so the view can be
	// updated in place.
	base.unregisters = append(base.unregisters,
		base.model.ListenToState(func(SessionState) {
			base.uiViewImpl.UpdateStatus(base.status())
		}),
		base.model.ListenToWorkoutAdded(func(workout.Workout) {
			base.uiViewImpl.UpdateStatus(base.status())
		}),
	)

	// Log lines arrive from any goroutine
	logChan := make(chan string, 1)
	logUnregister := base.model.ListenToLog(logChan)
	base.waitGroup.Add(1)
	go_func_utils.SafeGo(base.logger, "BaseUIView.logListener", func() {
		defer base.waitGroup.Done()
		defer logUnregister()
		for {
			select {
			case <-base.context.Done():
				return
			case _, ok := <-logChan:
				if !ok {
					return
				}
				base.uiViewImpl.Post(base.updateLogDisplay)
			}
		}
	})

	closeChan := make(chan struct{}, 1)
	closeUnregister := base.model.ListenToCloseApplication(closeChan)
	base.waitGroup.Add(1)
	go_func_utils.SafeGo(base.logger, "BaseUIView.closeListener", func() {
		defer base.waitGroup.Done()
		defer closeUnregister()
		select {
		case <-base.context.Done():
			return
		case _, ok := <-closeChan:
			if !ok {
				return
			}
			base.uiViewImpl.Stop()
		}
	})
}

func (base *BaseUIView) status() StatusInfo {
	return StatusInfo{
		State:        base.model.GetState(),
		WorkoutCount: base.model.WorkoutCount(),
	}
}

func (base *BaseUIView) updateLogDisplay() {
	height := base.uiViewImpl.GetLogViewHeight()
	if height <= 0 {
		return
	}

	logLines := base.model.GetLogTail(height)

	base.uiViewImpl.ClearLogView()
	for _, line := range logLines {
		if err := base.uiViewImpl.WriteLogLine(line); err != nil {
			base.logger.Printf("BaseUIView: Error writing to log view: %v", err)
		}
	}
}

func (base *BaseUIView) monitorLogResize() {
	defer base.waitGroup.Done()
	var lastHeight int
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-base.context.Done():
			return
		case <-ticker.C:
			height := base.uiViewImpl.GetLogViewHeight()
			if height != lastHeight && height > 0 {
				lastHeight = height
				base.uiViewImpl.Post(base.updateLogDisplay)
			}
		}
	}
}

// Shutdown stops all goroutines and waits for them to finish
func (base *BaseUIView) Shutdown() {
	base.logger.Println("BaseUIView: Shutting down")
	base.cancelFunc()
	base.waitGroup.Wait()
	for _, unregister := range base.unregisters {
		unregister()
	}
	base.logger.Println("BaseUIView: Shutdown complete")
}

// Run starts the session and the UI, and blocks until the UI exits
func (base *BaseUIView) Run() error {
	if err := base.controller.Start(); err != nil {
		return err
	}
	return base.uiViewImpl.Run()
}
