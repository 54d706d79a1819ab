package review

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/okwareddevnest/movie-discovery-app/internal/domain"
	"github.com/okwareddevnest/movie-discovery-app/internal/event"
)

type recordingPublisher struct {
	events []event.Event
}

func (r *recordingPublisher) Publish(_ context.Context, e event.Event) error {
	r.events = append(r.events, e)
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

// newTestService wires the service to a real SQLite repository with users
// u1 (Ann) and u2 (Bob).
func newTestService(t *testing.T) (domain.ReviewService, *gorm.DB, *recordingPublisher) {
	t.Helper()
	db := setupTestDB(t)
	seedUser(t, db, "u1", "Ann")
	seedUser(t, db, "u2", "Bob")
	pub := &recordingPublisher{}
	return NewReviewService(NewReviewRepository(db), pub), db, pub
}

func validInput() domain.ReviewInput {
	return domain.ReviewInput{MovieID: "550", Rating: 8, Title: "Great", Comment: "Loved it"}
}

func TestUpsert_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.ReviewInput)
	}{
		{"rating zero", func(in *domain.ReviewInput) { in.Rating = 0 }},
		{"rating eleven", func(in *domain.ReviewInput) { in.Rating = 11 }},
		{"negative rating", func(in *domain.ReviewInput) { in.Rating = -3 }},
		{"blank title", func(in *domain.ReviewInput) { in.Title = "   " }},
		{"blank comment", func(in *domain.ReviewInput) { in.Comment = "\t\n" }},
		{"blank movie", func(in *domain.ReviewInput) { in.MovieID = "" }},
		{"long title", func(in *domain.ReviewInput) { in.Title = strings.Repeat("t", 201) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, db, pub := newTestService(t)
			in := validInput()
			tt.mutate(&in)

			_, _, err := svc.Upsert(context.Background(), "u1", in)
			if !domain.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}

			var count int64
			db.Model(&domain.Review{}).Count(&count)
			if count != 0 {
				t.Errorf("no row should be written, found %d", count)
			}
			if len(pub.events) != 0 {
				t.Errorf("no event should be published")
			}
		})
	}
}

func TestUpsert_BoundaryRatings(t *testing.T) {
	svc, _, _ := newTestService(t)
	for _, rating := range []int{1, 10} {
		in := validInput()
		in.MovieID = "m" + strconv.Itoa(rating)
		in.Rating = rating
		if _, _, err := svc.Upsert(context.Background(), "u1", in); err != nil {
			t.Errorf("rating %d: %v", rating, err)
		}
	}
}

func TestUpsert_OverwriteAndAuthorName(t *testing.T) {
	svc, db, pub := newTestService(t)
	ctx := context.Background()

	in := validInput()
	in.Title = "  Great  "
	first, created, err := svc.Upsert(ctx, "u1", in)
	if err != nil || !created {
		t.Fatalf("first Upsert = %v, %v", created, err)
	}
	if first.UserName != "Ann" || first.Title != "Great" {
		t.Errorf("unexpected first review: %+v", first)
	}

	second, created, err := svc.Upsert(ctx, "u1", domain.ReviewInput{MovieID: "550", Rating: 4, Title: "Meh", Comment: "Second look"})
	if err != nil || created {
		t.Fatalf("second Upsert = %v, %v", created, err)
	}
	if second.ID != first.ID || second.Rating != 4 || second.Title != "Meh" || second.Comment != "Second look" {
		t.Errorf("unexpected overwrite: %+v", second)
	}

	var count int64
	db.Model(&domain.Review{}).Count(&count)
	if count != 1 {
		t.Errorf("expected one row, got %d", count)
	}
	if len(pub.events) != 2 || pub.events[1].Type != event.ReviewUpserted || pub.events[1].Rating != 4 {
		t.Errorf("unexpected events: %+v", pub.events)
	}
}

func TestListByMovie_TwoUsers(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for _, uid := range []string{"u1", "u2"} {
		if _, _, err := svc.Upsert(ctx, uid, validInput()); err != nil {
			t.Fatalf("Upsert %s: %v", uid, err)
		}
	}

	reviews, err := svc.ListByMovie(ctx, "550")
	if err != nil {
		t.Fatalf("ListByMovie: %v", err)
	}
	if len(reviews) != 2 {
		t.Fatalf("expected 2 reviews, got %d", len(reviews))
	}
	names := map[string]bool{}
	for _, r := range reviews {
		names[r.UserName] = true
	}
	if !names["Ann"] || !names["Bob"] {
		t.Errorf("expected both author names, got %v", names)
	}

	if _, err := svc.ListByMovie(ctx, " "); !domain.IsValidation(err) {
		t.Errorf("blank movie id: expected validation error, got %v", err)
	}
}

func TestDelete_OwnershipGate(t *testing.T) {
	svc, _, pub := newTestService(t)
	ctx := context.Background()

	r, _, err := svc.Upsert(ctx, "u1", validInput())
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	if err := svc.Delete(ctx, r.ID, "u2"); !domain.IsForbidden(err) {
		t.Fatalf("non-owner delete: expected Forbidden, got %v", err)
	}
	if err := svc.Delete(ctx, "missing", "u1"); !domain.IsNotFound(err) {
		t.Fatalf("missing review: expected NotFound, got %v", err)
	}
	if err := svc.Delete(ctx, r.ID, "u1"); err != nil {
		t.Fatalf("owner delete: %v", err)
	}

	byMovie, _ := svc.ListByMovie(ctx, "550")
	byUser, _ := svc.ListByUser(ctx, "u1")
	if len(byMovie) != 0 || len(byUser) != 0 {
		t.Errorf("deleted review still listed: %d by movie, %d by user", len(byMovie), len(byUser))
	}
	if last := pub.events[len(pub.events)-1]; last.Type != event.ReviewDeleted || last.ReviewID != r.ID {
		t.Errorf("unexpected last event: %+v", last)
	}
}
