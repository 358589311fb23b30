package tracker

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/lowaak/mapty/internal/go_func_utils"
	"github.com/lowaak/mapty/internal/workout"
)

// Page names for tview.Pages
const (
	pageMain  = "main"
	pageAlert = "alert"
)

// Index of the kind specific input in the form
const specificFieldIndex = 3

// CursesUIViewImpl implements UIViewImpl using tview (curses-based terminal UI)
type CursesUIViewImpl struct {
	logger *log.Logger
	app    *tview.Application

	// Root container: main layout with the alert modal on top
	pages    *tview.Pages
	mainFlex *tview.Flex // map on the left, side panel on the right
	sideFlex *tview.Flex

	mapView    *MapWidget
	statusView *tview.TextView
	logView    *tview.TextView

	// Workout form
	form           *tview.Form
	kindDropDown   *tview.DropDown
	distanceField  *tview.InputField
	durationField  *tview.InputField
	cadenceField   *tview.InputField
	elevationField *tview.InputField
	specificKind   workout.Kind // kind whose specific input is shown
	formVisible    bool

	workoutList *tview.List
	workoutIDs  []string // parallel to workoutList items

	alertModal       *tview.Modal
	focusBeforeAlert tview.Primitive

	tabWidgets []tview.Primitive

	// Posted funcs, handed to the event loop in order by a single pump
	postMu   sync.Mutex
	posts    []func()
	postWake chan struct{}
	pumpOnce sync.Once
	stopOnce sync.Once
	stopped  chan struct{}
}

// NewCursesUIView builds the widgets. Controller callbacks are attached in Initialize.
func NewCursesUIView(logger *log.Logger, app *tview.Application, attribution string) *CursesUIViewImpl {
	if logger == nil {
		panic("CursesUIViewImpl: logger cannot be nil")
	}
	if app == nil {
		panic("CursesUIViewImpl: app cannot be nil")
	}

	ui := &CursesUIViewImpl{
		logger:       logger,
		app:          app,
		specificKind: workout.KindRunning,
		postWake:     make(chan struct{}, 1),
		stopped:      make(chan struct{}),
	}

	ui.mapView = NewMapWidget(attribution)

	ui.statusView = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	ui.statusView.SetBorder(true).SetTitle(" mapty ")

	// Note: no SetChangedFunc with app.Draw() here, updates are drawn by the
	// event loop that posted them.
	ui.logView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	ui.logView.SetBorder(true).SetTitle(" Logs ")

	ui.initForm()

	ui.workoutList = tview.NewList().
		ShowSecondaryText(true)
	ui.workoutList.SetBorder(true).SetTitle(" Workouts ")

	ui.alertModal = tview.NewModal().
		AddButtons([]string{"OK"})

	ui.sideFlex = tview.NewFlex().SetDirection(tview.FlexRow)
	ui.layoutSidePanel()

	ui.mainFlex = tview.NewFlex().
		AddItem(ui.mapView, 0, 3, true).
		AddItem(ui.sideFlex, 0, 2, false)

	ui.pages = tview.NewPages().
		AddPage(pageMain, ui.mainFlex, true, true).
		AddPage(pageAlert, ui.alertModal, true, false)

	return ui
}

func (ui *CursesUIViewImpl) initForm() {
	names := make([]string, 0, len(AllKindInfos))
	for _, info := range AllKindInfos {
		names = append(names, info.DisplayName)
	}
	ui.kindDropDown = tview.NewDropDown().
		SetLabel("Type").
		SetOptions(names, nil).
		SetCurrentOption(0)

	ui.distanceField = newNumberField("Distance", "km")
	ui.durationField = newNumberField("Duration", "min")
	ui.cadenceField = newNumberField(GetKindInfo(workout.KindRunning).SpecificName, "step/min")
	ui.elevationField = newNumberField(GetKindInfo(workout.KindCycling).SpecificName, "meters")

	ui.form = tview.NewForm().
		AddFormItem(ui.kindDropDown).
		AddFormItem(ui.distanceField).
		AddFormItem(ui.durationField).
		AddFormItem(ui.cadenceField)
	ui.form.SetBorder(true).SetTitle(" New workout ")
}

func newNumberField(label, placeholder string) *tview.InputField {
	return tview.NewInputField().
		SetLabel(label).
		SetPlaceholder(placeholder).
		SetFieldWidth(10)
}

// layoutSidePanel rebuilds the side panel, with the form on top when visible
func (ui *CursesUIViewImpl) layoutSidePanel() {
	ui.sideFlex.Clear()
	ui.sideFlex.AddItem(ui.statusView, 4, 0, false)
	if ui.formVisible {
		ui.sideFlex.AddItem(ui.form, 13, 0, true)
	}
	ui.sideFlex.AddItem(ui.workoutList, 0, 2, false)
	ui.sideFlex.AddItem(ui.logView, 0, 1, false)
}

// Initialize hooks the widgets to the controller
func (ui *CursesUIViewImpl) Initialize(controller *SessionController) {
	ui.kindDropDown.SetSelectedFunc(func(text string, index int) {
		if index < 0 || index >= len(AllKindInfos) {
			return
		}
		if AllKindInfos[index].Kind != ui.specificKind {
			controller.OnTypeChange()
		}
	})

	submitOnEnter := func(key tcell.Key) {
		if key == tcell.KeyEnter {
			// The form moves focus after this handler returns, submit afterwards
			ui.Post(func() { controller.SubmitWorkout() })
		}
	}
	for _, field := range []*tview.InputField{ui.distanceField, ui.durationField, ui.cadenceField, ui.elevationField} {
		field.SetDoneFunc(submitOnEnter)
	}

	ui.form.
		AddButton("Save", func() { controller.SubmitWorkout() }).
		AddButton("Cancel", controller.CancelForm).
		SetCancelFunc(controller.CancelForm)

	ui.workoutList.SetSelectedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		if index < 0 || index >= len(ui.workoutIDs) {
			ui.logger.Printf("UI: Workout index %d out of range (have %d)", index, len(ui.workoutIDs))
			return
		}
		controller.OnWorkoutSelected(ui.workoutIDs[index])
	})

	ui.alertModal.SetDoneFunc(func(buttonIndex int, buttonLabel string) {
		ui.pages.HidePage(pageAlert)
		focus := ui.focusBeforeAlert
		if focus == nil {
			focus = ui.mapView
		}
		ui.focusBeforeAlert = nil
		ui.app.SetFocus(focus)
	})

	ui.tabWidgets = []tview.Primitive{ui.mapView, ui.workoutList}
}

// SetupKeyboardHandlers sets up keyboard event handlers
func (ui *CursesUIViewImpl) SetupKeyboardHandlers(controller *SessionController) {
	ui.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		// The alert modal handles its own keys
		if name, _ := ui.pages.GetFrontPage(); name == pageAlert {
			return event
		}

		if event.Key() == tcell.KeyTab && !ui.form.HasFocus() {
			ui.focusNext()
			return nil
		}

		// Escape leaves the form, or quits from anywhere else
		if event.Key() == tcell.KeyEscape {
			if ui.formVisible {
				controller.CancelForm()
			} else {
				controller.OnEscapeKey()
			}
			return nil
		}

		return event
	})
}

func (ui *CursesUIViewImpl) focusNext() {
	widgets := ui.tabWidgets
	if ui.formVisible {
		widgets = append([]tview.Primitive{ui.form}, widgets...)
	}
	for i, widget := range widgets {
		if widget.HasFocus() {
			ui.app.SetFocus(widgets[(i+1)%len(widgets)])
			return
		}
	}
	ui.app.SetFocus(ui.mapView)
}

// --- MapAdapter ---

// SetView centers the map
func (ui *CursesUIViewImpl) SetView(center workout.Coordinates, zoom int) {
	ui.mapView.SetView(center, zoom)
}

// OnClick registers a map click callback
func (ui *CursesUIViewImpl) OnClick(callback func(workout.Coordinates)) func() {
	return ui.mapView.OnClick(callback)
}

// AddMarker places a marker on the map
func (ui *CursesUIViewImpl) AddMarker(at workout.Coordinates, content string, opts PopupOptions) {
	ui.mapView.AddMarker(at, content, opts)
}

// --- WorkoutForm ---

// Show reveals the form and focuses the distance input
func (ui *CursesUIViewImpl) Show() {
	if !ui.formVisible {
		ui.formVisible = true
		ui.layoutSidePanel()
	}
	ui.form.SetFocus(1)
	ui.app.SetFocus(ui.form)
}

// Hide clears the inputs and hides the form
func (ui *CursesUIViewImpl) Hide() {
	for _, field := range []*tview.InputField{ui.distanceField, ui.durationField, ui.cadenceField, ui.elevationField} {
		field.SetText("")
	}
	if ui.formVisible {
		ui.formVisible = false
		ui.layoutSidePanel()
	}
	ui.app.SetFocus(ui.mapView)
}

// Values reads the form
func (ui *CursesUIViewImpl) Values() FormValues {
	kind := workout.KindRunning
	if index, _ := ui.kindDropDown.GetCurrentOption(); index >= 0 && index < len(AllKindInfos) {
		kind = AllKindInfos[index].Kind
	}
	return FormValues{
		Kind:          kind,
		Distance:      ui.distanceField.GetText(),
		Duration:      ui.durationField.GetText(),
		Cadence:       ui.cadenceField.GetText(),
		ElevationGain: ui.elevationField.GetText(),
	}
}

// ToggleElevationField swaps the cadence input for the elevation input or back
func (ui *CursesUIViewImpl) ToggleElevationField() {
	ui.form.RemoveFormItem(specificFieldIndex)
	if ui.specificKind == workout.KindRunning {
		ui.specificKind = workout.KindCycling
		ui.form.AddFormItem(ui.elevationField)
	} else {
		ui.specificKind = workout.KindRunning
		ui.form.AddFormItem(ui.cadenceField)
	}
}

// --- WorkoutList ---

// AddWorkoutEntry shows the entry at the top of the list
func (ui *CursesUIViewImpl) AddWorkoutEntry(entry ListEntry) {
	title := fmt.Sprintf("%s %s", entry.Icon, tview.Escape(entry.Title))
	ui.workoutList.InsertItem(0, title, formatDetails(entry.Details), 0, nil)
	ui.workoutIDs = append([]string{entry.ID}, ui.workoutIDs...)
	ui.workoutList.SetCurrentItem(0)
}

func formatDetails(details []Detail) string {
	parts := make([]string, 0, len(details))
	for _, d := range details {
		parts = append(parts, fmt.Sprintf("%s %s %s", d.Icon, d.Value, d.Unit))
	}
	return strings.Join(parts, "  ")
}

// --- Alerter ---

// Alert shows message in a modal until dismissed
func (ui *CursesUIViewImpl) Alert(message string) {
	if name, _ := ui.pages.GetFrontPage(); name != pageAlert {
		ui.focusBeforeAlert = ui.app.GetFocus()
	}
	ui.alertModal.SetText(message)
	ui.pages.ShowPage(pageAlert)
	ui.app.SetFocus(ui.alertModal)
}

// --- Scheduler ---

// Post runs fn on the tview event loop, after everything posted before it.
// It never blocks, so it is safe to call from the event loop itself.
func (ui *CursesUIViewImpl) Post(fn func()) {
	ui.pumpOnce.Do(func() {
		go_func_utils.SafeGo(ui.logger, "CursesUIViewImpl.pumpPosts", ui.pumpPosts)
	})

	ui.postMu.Lock()
	ui.posts = append(ui.posts, fn)
	ui.postMu.Unlock()

	select {
	case ui.postWake <- struct{}{}:
	default:
	}
}

// pumpPosts hands posted funcs to QueueUpdateDraw one at a time. QueueUpdateDraw
// blocks until the func ran, which keeps them in order.
func (ui *CursesUIViewImpl) pumpPosts() {
	for {
		select {
		case <-ui.stopped:
			return
		case <-ui.postWake:
		}

		for {
			ui.postMu.Lock()
			if len(ui.posts) == 0 {
				ui.postMu.Unlock()
				break
			}
			fn := ui.posts[0]
			ui.posts[0] = nil
			ui.posts = ui.posts[1:]
			ui.postMu.Unlock()

			select {
			case <-ui.stopped:
				return
			default:
			}
			ui.app.QueueUpdateDraw(fn)
		}
	}
}

// UpdateStatus refreshes the status panel
func (ui *CursesUIViewImpl) UpdateStatus(status StatusInfo) {
	info, _ := GetSessionStateInfo(status.State)
	ui.statusView.SetText(fmt.Sprintf(" [yellow]%s[white]  %d workout(s)\n [gray]%s[white]",
		info.DisplayName, status.WorkoutCount, info.Hint))
}

// GetLogViewHeight returns the visible height of the log view
func (ui *CursesUIViewImpl) GetLogViewHeight() int {
	_, _, _, height := ui.logView.GetInnerRect()
	return height
}

// ClearLogView clears the log view
func (ui *CursesUIViewImpl) ClearLogView() {
	ui.logView.Clear()
}

// WriteLogLine writes a line to the log view
func (ui *CursesUIViewImpl) WriteLogLine(line string) error {
	_, err := fmt.Fprint(ui.logView, tview.Escape(line))
	return err
}

// Run starts the UI and blocks until it exits
func (ui *CursesUIViewImpl) Run() error {
	// SetRoot must be called before setting focus, otherwise focus may be reset
	ui.app.SetRoot(ui.pages, true).EnableMouse(true)
	ui.app.SetFocus(ui.mapView)
	return ui.app.Run()
}

// Stop stops the UI framework
func (ui *CursesUIViewImpl) Stop() {
	ui.stopOnce.Do(func() { close(ui.stopped) })
	ui.app.Stop()
}
