package web

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"coachdesk/internal/adapters/http/middleware"
	"coachdesk/internal/application/dayeditor"
	"coachdesk/internal/application/orchestrators"
	"coachdesk/internal/application/projections"
	"coachdesk/internal/domain/mealplan"
	"coachdesk/internal/domain/workoutplan"
)

// Plan kinds as they appear in editor URLs.
const (
	kindMeals    = "meals"
	kindWorkouts = "workouts"
)

// errNoEditor is returned when an editor action arrives before the screen was opened.
var errNoEditor = errors.New("no editor is open for this customer")

// planPage is the part of a plan screen that does not depend on the record type.
type planPage struct {
	CustomerID   string `json:"customerId"`
	CustomerName string `json:"customerName"`
	Checkpoint   int    `json:"checkpoint"`
	Checkpoints  []int  `json:"checkpoints"`
	Summaries    any    `json:"summaries"`
}

// dayPlan binds one record type to the shared editor handlers.
type dayPlan[R any] struct {
	kind       string
	editors    *dayeditor.Registry[R]
	dayOf      func(R) int
	clone      func(R) R
	setField   func(R, string, string) (R, error)
	newEntry   func(customerID string, day, checkpoint int) R
	addFood    func(R) R               // nil when the record has no food list
	removeFood func(R, int) (R, error)
	load       func(ctx context.Context, customerID string, checkpoint int) (planPage, []R, error)
	save       func(ctx context.Context, input orchestrators.SaveDayInput[R]) error
}

func mealPlan() dayPlan[mealplan.Entry] {
	return dayPlan[mealplan.Entry]{
		kind:       kindMeals,
		editors:    mealEditors,
		dayOf:      mealplan.Day,
		clone:      mealplan.Clone,
		setField:   mealplan.SetField,
		newEntry:   mealplan.NewEntry,
		addFood:    mealplan.AddFood,
		removeFood: mealplan.RemoveFood,
		load:       func(ctx context.Context, customerID string, checkpoint int) (planPage, []mealplan.Entry, error) {
			view, err := projections.QueryGetMealPlan(ctx, projections.GetPlanDaysQuery{
				CustomerID: customerID, Checkpoint: checkpoint,
			}, planDaysDeps())
			if err != nil {
				return planPage{}, nil, err
			}
			return planPage{
				CustomerID:   view.CustomerID,
				CustomerName: view.CustomerName,
				Checkpoint:   view.Checkpoint,
				Checkpoints:  view.Checkpoints,
				Summaries:    view.Summaries,
			}, view.Entries, nil
		},
		save:       func(ctx context.Context, input orchestrators.SaveDayInput[mealplan.Entry]) error {
			return orchestrators.ExecuteSaveMealDay(ctx, input, mealSaveDeps())
		},
	}
}

func workoutPlan() dayPlan[workoutplan.Entry] {
	return dayPlan[workoutplan.Entry]{
		kind:       kindWorkouts,
		editors:    workoutEditors,
		dayOf:      workoutplan.Day,
		clone:      workoutplan.Clone,
		setField:   workoutplan.SetField,
		newEntry:   workoutplan.NewEntry,
		load:       func(ctx context.Context, customerID string, checkpoint int) (planPage, []workoutplan.Entry, error) {
			view, err := projections.QueryGetWorkoutPlan(ctx, projections.GetPlanDaysQuery{
				CustomerID: customerID, Checkpoint: checkpoint,
			}, planDaysDeps())
			if err != nil {
				return planPage{}, nil, err
			}
			return planPage{
				CustomerID:   view.CustomerID,
				CustomerName: view.CustomerName,
				Checkpoint:   view.Checkpoint,
				Checkpoints:  view.Checkpoints,
				Summaries:    view.Summaries,
			}, view.Entries, nil
		},
		save:       func(ctx context.Context, input orchestrators.SaveDayInput[workoutplan.Entry]) error {
			return orchestrators.ExecuteSaveWorkoutDay(ctx, input, workoutSaveDeps())
		},
	}
}

func (p dayPlan[R]) key(r *http.Request, customerID string) dayeditor.Key {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	return dayeditor.Key{Owner: sess.ID, Customer: p.kind + ":" + customerID}
}

// open loads the customer's checkpoint and replaces any editor the caller had for it.
// The session is pinned to the checkpoint that was loaded.
func (p dayPlan[R]) open(ctx context.Context, key dayeditor.Key, customerID string, checkpoint int) (planPage, dayeditor.Session[R], error) {
	page, records, err := p.load(ctx, customerID, checkpoint)
	if err != nil {
		return planPage{}, dayeditor.Session[R]{}, err
	}
	s := dayeditor.Session[R]{Editor: dayeditor.New(records, p.dayOf, p.clone), Checkpoint: page.Checkpoint}
	p.editors.Put(key, s)
	return page, s, nil
}

// saveDay stores the buffer as the whole selected day of the session's
// checkpoint, then refetches that checkpoint into the editor. A failed save
// leaves the buffer editable.
func (p dayPlan[R]) saveDay(ctx context.Context, s dayeditor.Session[R], customerID string, actor orchestrators.Actor) error {
	return s.Editor.Save(ctx,
		func(ctx context.Context, day int, rows []R) error {
			return p.save(ctx, orchestrators.SaveDayInput[R]{
				CustomerID: customerID,
				Checkpoint: s.Checkpoint,
				Day:        day,
				Entries:    rows,
				Actor:      actor,
			})
		},
		func(ctx context.Context) ([]R, error) {
			_, records, err := p.load(ctx, customerID, s.Checkpoint)
			return records, err
		},
	)
}

// appendRow adds a blank record for the selected day to the buffer.
func (p dayPlan[R]) appendRow(s dayeditor.Session[R], customerID string) error {
	day, ok := s.Editor.SelectedDay()
	if !ok {
		return dayeditor.ErrNoDays
	}
	return s.Editor.Append(p.newEntry(customerID, day, s.Checkpoint))
}

// Editor API operations
const (
	opOpen = iota
	opState
	opSelect
	opStep
	opEdit
	opField
	opAppend
	opRemove
	opAddFood
	opRemoveFood
	opSave
	opCancel
)

// editorResponse is the JSON picture of an editor after every action.
type editorResponse[R any] struct {
	CustomerID string                `json:"customerId"`
	Checkpoint int                   `json:"checkpoint"`
	Editor     dayeditor.Snapshot[R] `json:"editor"`
}

// editorOp dispatches an editor API call to the record type named by {kind}.
func editorOp(op int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("kind") {
		case kindMeals:
			serveEditorOp(w, r, mealPlan(), op)
		case kindWorkouts:
			serveEditorOp(w, r, workoutPlan(), op)
		default:
			writeError(w, http.StatusNotFound, "unknown plan kind")
		}
	}
}

// serveEditorOp runs one editor action and answers with the editor snapshot.
func serveEditorOp[R any](w http.ResponseWriter, r *http.Request, p dayPlan[R], op int) {
	ctx := r.Context()
	customerID := r.PathValue("customerID")
	key := p.key(r, customerID)

	if op == opOpen {
		checkpoint, _ := strconv.Atoi(r.URL.Query().Get("checkpoint"))
		_, s, err := p.open(ctx, key, customerID, max(checkpoint, 0))
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, editorResponse[R]{CustomerID: customerID, Checkpoint: s.Checkpoint, Editor: s.Editor.Snapshot()})
		return
	}

	s, ok := p.editors.Get(key)
	if !ok {
		writeError(w, http.StatusNotFound, errNoEditor.Error())
		return
	}
	ed := s.Editor

	var err error
	switch op {
	case opState:
	case opSelect:
		var body struct {
			Day int `json:"day"`
		}
		if err := strictDecode(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		err = ed.SelectDay(body.Day)
	case opStep:
		var body struct {
			Direction string `json:"direction"`
		}
		if err := strictDecode(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		var dir dayeditor.Direction
		if dir, err = dayeditor.ParseDirection(body.Direction); err == nil {
			ed.Step(dir)
		}
	case opEdit:
		err = ed.BeginEdit()
	case opField:
		var body struct {
			Row   int    `json:"row"`
			Field string `json:"field"`
			Value string `json:"value"`
		}
		if err := strictDecode(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		err = ed.Apply(body.Row, func(rec R) (R, error) {
			rec, err := p.setField(rec, body.Field, body.Value)
			return rec, invalidField(err)
		})
	case opAppend:
		err = p.appendRow(s, customerID)
	case opRemove:
		err = withIndex(r, "index", ed.Remove)
	case opAddFood:
		if p.addFood == nil {
			writeError(w, http.StatusNotFound, "this plan has no food lists")
			return
		}
		err = withIndex(r, "index", func(row int) error { return ed.Update(row, p.addFood) })
	case opRemoveFood:
		if p.removeFood == nil {
			writeError(w, http.StatusNotFound, "this plan has no food lists")
			return
		}
		err = withIndex(r, "index", func(row int) error {
			return withIndex(r, "food", func(food int) error {
				return ed.Apply(row, func(rec R) (R, error) {
					rec, err := p.removeFood(rec, food)
					return rec, invalidField(err)
				})
			})
		})
	case opSave:
		err = p.saveDay(ctx, s, customerID, actorFrom(r))
	case opCancel:
		err = ed.Cancel()
	}
	if err != nil {
		slog.Debug("editor_event", "event", "action_rejected", "kind", p.kind, "customer_id", customerID, "error", err)
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, editorResponse[R]{CustomerID: customerID, Checkpoint: s.Checkpoint, Editor: ed.Snapshot()})
}

// withIndex parses the named path value as a row or food index and calls fn.
func withIndex(r *http.Request, name string, fn func(int) error) error {
	i, err := strconv.Atoi(r.PathValue(name))
	if err != nil {
		return dayeditor.ErrRowOutOfRange
	}
	return fn(i)
}

// invalidField marks field edit failures as caller errors.
func invalidField(err error) error {
	if err == nil {
		return nil
	}
	return orchestrators.InputError{Err: err}
}

// handleMealScreen renders the meal plan screen (GET /customers/{id}/meals).
func handleMealScreen(w http.ResponseWriter, r *http.Request) {
	renderScreen(w, r, mealPlan(), "meal_plan.html", http.StatusOK, "")
}

// handleMealScreenAction applies one meal screen action (POST /customers/{id}/meals).
func handleMealScreenAction(w http.ResponseWriter, r *http.Request) {
	serveScreenAction(w, r, mealPlan(), "meal_plan.html")
}

// handleWorkoutScreen renders the workout plan screen (GET /customers/{id}/workouts).
func handleWorkoutScreen(w http.ResponseWriter, r *http.Request) {
	renderScreen(w, r, workoutPlan(), "workout_plan.html", http.StatusOK, "")
}

// handleWorkoutScreenAction applies one workout screen action (POST /customers/{id}/workouts).
func handleWorkoutScreenAction(w http.ResponseWriter, r *http.Request) {
	serveScreenAction(w, r, workoutPlan(), "workout_plan.html")
}

// renderScreen loads the checkpoint and renders it through the caller's editor.
// The checkpoint comes from the query on GET and the hidden field on POST;
// a POST without one stays on the open session's checkpoint. An existing
// editor is refreshed only with records of its own checkpoint, otherwise a
// new one replaces it.
func renderScreen[R any](w http.ResponseWriter, r *http.Request, p dayPlan[R], templateName string, status int, formError string) {
	ctx := r.Context()
	customerID := r.PathValue("id")
	key := p.key(r, customerID)
	requested, _ := strconv.Atoi(r.FormValue("checkpoint"))

	s, ok := p.editors.Get(key)
	if ok && requested <= 0 && r.Method == http.MethodPost {
		requested = s.Checkpoint
	}
	page, records, err := p.load(ctx, customerID, max(requested, 0))
	if err != nil {
		renderLoadError(w, r, err)
		return
	}
	if ok && s.Checkpoint == page.Checkpoint {
		s.Editor.Refresh(records)
	} else {
		s = dayeditor.Session[R]{Editor: dayeditor.New(records, p.dayOf, p.clone), Checkpoint: page.Checkpoint}
		p.editors.Put(key, s)
	}
	ed := s.Editor

	snap := ed.Snapshot()
	renderTemplateStatus(w, r, status, templateName, map[string]any{
		"Page":       page,
		"Kind":       p.kind,
		"Editor":     snap,
		"Editing":    snap.State != dayeditor.Viewing.String(),
		"Error":      formError,
		"MealTypes":  mealplan.MealTypes,
		"Categories": workoutplan.Categories,
	})
}

// serveScreenAction runs the submitted action against the caller's editor.
// A form posted for a different checkpoint is not applied. While editing,
// posted field values are applied to the buffer before the action so nothing
// typed is lost. Success redirects back to the screen;
// a rejected action re-renders it with the message.
func serveScreenAction[R any](w http.ResponseWriter, r *http.Request, p dayPlan[R], templateName string) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	customerID := r.PathValue("id")
	s, ok := p.editors.Get(p.key(r, customerID))
	if !ok {
		http.Redirect(w, r, screenURL(p.kind, customerID, r.FormValue("checkpoint")), http.StatusSeeOther)
		return
	}

	if posted, err := strconv.Atoi(r.FormValue("checkpoint")); err == nil && posted > 0 && posted != s.Checkpoint {
		// The form belongs to another checkpoint than the open editor; reload it instead.
		http.Redirect(w, r, screenURL(p.kind, customerID, strconv.Itoa(posted)), http.StatusSeeOther)
		return
	}

	err := applyPostedFields(r.PostForm, s.Editor, p)
	if err == nil {
		err = screenAction(r, s, p, customerID)
	}
	if err != nil {
		status := errorStatus(err)
		if status == http.StatusInternalServerError {
			internalError(w, err)
			return
		}
		renderScreen(w, r, p, templateName, status, err.Error())
		return
	}
	http.Redirect(w, r, screenURL(p.kind, customerID, r.FormValue("checkpoint")), http.StatusSeeOther)
}

// screenAction runs an action of the form "verb[:row[:food]]", so one
// submit button names both the action and its target.
func screenAction[R any](r *http.Request, s dayeditor.Session[R], p dayPlan[R], customerID string) error {
	ed := s.Editor
	verb, args, _ := strings.Cut(r.FormValue("action"), ":")
	rowText, foodText, _ := strings.Cut(args, ":")
	row, rowErr := strconv.Atoi(rowText)
	if rowErr != nil {
		row = -1
	}
	switch verb {
	case "select":
		day, err := strconv.Atoi(cmp.Or(rowText, r.FormValue("day")))
		if err != nil {
			return dayeditor.ErrUnknownDay
		}
		return ed.SelectDay(day)
	case "prev", "next":
		dir, err := dayeditor.ParseDirection(verb)
		if err != nil {
			return err
		}
		ed.Step(dir)
		return nil
	case "edit":
		return ed.BeginEdit()
	case "cancel":
		return ed.Cancel()
	case "apply":
		return nil
	case "add":
		return p.appendRow(s, customerID)
	case "remove":
		return ed.Remove(row)
	case "add_food":
		if p.addFood == nil {
			return invalidField(errors.New("this plan has no food lists"))
		}
		return ed.Update(row, p.addFood)
	case "remove_food":
		if p.removeFood == nil {
			return invalidField(errors.New("this plan has no food lists"))
		}
		food, err := strconv.Atoi(foodText)
		if err != nil {
			return invalidField(mealplan.ErrFoodOutOfRange)
		}
		return ed.Apply(row, func(rec R) (R, error) {
			rec, err := p.removeFood(rec, food)
			return rec, invalidField(err)
		})
	case "save":
		return p.saveDay(r.Context(), s, customerID, actorFrom(r))
	default:
		return invalidField(errors.New("unknown action"))
	}
}

// applyPostedFields copies inputs named "f:{row}:{field}" into the buffer.
// It is a no-op outside edit mode.
func applyPostedFields[R any](form url.Values, ed *dayeditor.Editor[R], p dayPlan[R]) error {
	if ed.State() != dayeditor.Editing {
		return nil
	}
	for name, values := range form {
		rest, ok := strings.CutPrefix(name, "f:")
		if !ok || len(values) == 0 {
			continue
		}
		rowText, field, ok := strings.Cut(rest, ":")
		row, err := strconv.Atoi(rowText)
		if !ok || err != nil {
			continue
		}
		err = ed.Apply(row, func(rec R) (R, error) {
			rec, err := p.setField(rec, field, values[0])
			return rec, invalidField(err)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func screenURL(kind, customerID, checkpoint string) string {
	u := "/customers/" + url.PathEscape(customerID) + "/" + kind
	if checkpoint != "" && checkpoint != "0" {
		u += "?checkpoint=" + url.QueryEscape(checkpoint)
	}
	return u
}
