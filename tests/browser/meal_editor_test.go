package browser_test

import (
	"context"
	"testing"

	"github.com/playwright-community/playwright-go"

	mealStore "coachdesk/internal/adapters/storage/mealplan"
)

// TestMealEditor_EditAndSaveDay walks the advisor through one full edit of a day.
func TestMealEditor_EditAndSaveDay(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	app := newTestApp(t)
	app.seedCustomer(t, "c1", map[int][]int{1: {400}, 2: {550, 300}})
	page := app.newPage(t)
	app.login(t, page)

	if _, err := page.Goto(app.BaseURL + "/customers/c1/meals"); err != nil {
		t.Fatalf("failed to open meal plan: %v", err)
	}

	click := func(action string) {
		t.Helper()
		if err := page.Locator(`button[name=action][value="` + action + `"]`).Click(); err != nil {
			t.Fatalf("failed to click %s: %v", action, err)
		}
		if err := page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{State: playwright.LoadStateLoad}); err != nil {
			t.Fatalf("page did not load after %s: %v", action, err)
		}
	}

	click("next")
	click("edit")
	if err := page.Locator(`input[name="f:0:calories"]`).Fill("610"); err != nil {
		t.Fatalf("failed to fill calories: %v", err)
	}
	click("remove:1")
	click("save")

	// Back in view mode the edit button returns.
	if err := page.Locator(`button[value="edit"]`).WaitFor(); err != nil {
		t.Fatalf("editor did not return to view mode: %v", err)
	}

	entries, err := app.Stores.MealStore.ListByUser(context.Background(), "c1", mealStore.AllCheckpoints)
	if err != nil {
		t.Fatalf("failed to list meals: %v", err)
	}
	var day2 []int
	for _, e := range entries {
		if e.DayNumber == 2 {
			day2 = append(day2, e.Calories)
		}
	}
	if len(day2) != 1 || day2[0] != 610 {
		t.Errorf("day 2 calories = %v, want [610]", day2)
	}
}

// TestMealEditor_CancelKeepsStoredDay checks that cancelling throws the buffer away.
func TestMealEditor_CancelKeepsStoredDay(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	app := newTestApp(t)
	app.seedCustomer(t, "c1", map[int][]int{1: {400}})
	page := app.newPage(t)
	app.login(t, page)

	if _, err := page.Goto(app.BaseURL + "/customers/c1/meals"); err != nil {
		t.Fatalf("failed to open meal plan: %v", err)
	}
	if err := page.Locator(`button[value="edit"]`).Click(); err != nil {
		t.Fatalf("failed to start editing: %v", err)
	}
	if err := page.Locator(`input[name="f:0:calories"]`).Fill("999"); err != nil {
		t.Fatalf("failed to fill calories: %v", err)
	}
	if err := page.Locator(`button[value="cancel"]`).Click(); err != nil {
		t.Fatalf("failed to cancel: %v", err)
	}
	if err := page.Locator(`button[value="edit"]`).WaitFor(); err != nil {
		t.Fatalf("editor did not return to view mode: %v", err)
	}

	content, err := page.Content()
	if err != nil {
		t.Fatalf("failed to read page: %v", err)
	}
	if !containsAll(content, "400") {
		t.Error("stored calories not shown after cancel")
	}
}
