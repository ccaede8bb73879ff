package events

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestNormalizeClampsAndDefaults(t *testing.T) {
	e, err := Normalize(Event{
		DayOfWeek:   0,
		Time:        strings.Repeat("x", 50),
		Title:       strings.Repeat("t", 300),
		Description: strings.Repeat("d", 600),
		Location:    strings.Repeat("l", 300),
	})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if len(e.Time) != 20 || len(e.Title) != 200 || len(e.Description) != 500 || len(e.Location) != 200 {
		t.Fatalf("clamps not applied: time=%d title=%d desc=%d loc=%d",
			len(e.Time), len(e.Title), len(e.Description), len(e.Location))
	}
	if e.DurationMinutes != 60 {
		t.Fatalf("expected default duration 60, got %d", e.DurationMinutes)
	}
}

func TestNormalizeRejectsInvalid(t *testing.T) {
	cases := []Event{
		{DayOfWeek: 7, Time: "9:00 AM", Title: "Liturgy"},
		{DayOfWeek: -1, Time: "9:00 AM", Title: "Liturgy"},
		{DayOfWeek: 0, Time: "", Title: "Liturgy"},
		{DayOfWeek: 0, Time: "9:00 AM", Title: ""},
	}
	for i, e := range cases {
		if _, err := Normalize(e); err == nil {
			t.Fatalf("case %d: expected error for %+v", i, e)
		}
	}
}

func TestMemoryRepositoryCRUD(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	vespers, err := repo.Create(ctx, Event{DayOfWeek: 6, Time: "6:00 PM", SortOrder: 1, Title: "Vespers"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	liturgy, err := repo.Create(ctx, Event{DayOfWeek: 0, Time: "9:00 AM", SortOrder: 1, Title: "Divine Liturgy"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	matins, err := repo.Create(ctx, Event{DayOfWeek: 0, Time: "8:00 AM", SortOrder: 0, Title: "Matins"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if vespers.ID == "" || vespers.CreatedAt.IsZero() {
		t.Fatalf("incomplete event: %+v", vespers)
	}

	// Ordered by day then sort order: Matins, Liturgy on Sunday, Vespers Saturday.
	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 events, got %d", len(list))
	}
	if list[0].ID != matins.ID || list[1].ID != liturgy.ID || list[2].ID != vespers.ID {
		t.Fatalf("wrong order: %v, %v, %v", list[0].Title, list[1].Title, list[2].Title)
	}

	updated, err := repo.Update(ctx, liturgy.ID, Event{DayOfWeek: 0, Time: "9:30 AM", SortOrder: 1, Title: "Divine Liturgy"})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Time != "9:30 AM" || updated.CreatedAt != liturgy.CreatedAt {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	if _, err := repo.Update(ctx, "missing", Event{DayOfWeek: 0, Time: "x", SortOrder: 0, Title: "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := repo.Delete(ctx, vespers.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := repo.Delete(ctx, vespers.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}
}
