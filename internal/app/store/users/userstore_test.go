package userstore

import (
	"errors"
	"testing"
	"time"

	"github.com/klicktools/klicktools/internal/domain/models"
	"github.com/klicktools/klicktools/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{
		Email: "Test@Example.com",
		Name:  "Test User",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if created.ID.IsZero() {
		t.Error("Create() did not assign ID")
	}
	if created.CreatedAt.IsZero() {
		t.Error("Create() did not set CreatedAt")
	}
	if created.UpdatedAt.IsZero() {
		t.Error("Create() did not set UpdatedAt")
	}

	// Role defaults to user
	if created.Role != models.RoleUser {
		t.Errorf("Create() Role = %q, want %q", created.Role, models.RoleUser)
	}

	// Email lowercased, folded copies set
	if created.Email != "test@example.com" {
		t.Errorf("Create() Email = %q, want lowercased", created.Email)
	}
	if created.EmailCI == "" {
		t.Error("Create() did not set EmailCI")
	}
	if created.NameCI == "" {
		t.Error("Create() did not set NameCI")
	}
}

func TestStore_Create_InvalidRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Create(ctx, models.User{
		Email: "test@example.com",
		Name:  "Test User",
		Role:  "superuser",
	})
	if err == nil {
		t.Error("Create() with invalid role should return error")
	}
}

func TestStore_Create_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Create(ctx, models.User{
		Email: "duplicate@example.com",
		Name:  "User One",
	})
	if err != nil {
		t.Fatalf("Create() first user error = %v", err)
	}

	// Same address with different casing must collide on email_ci.
	_, err = store.Create(ctx, models.User{
		Email: "Duplicate@Example.COM",
		Name:  "User Two",
	})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("Create() duplicate error = %v, want %v", err, ErrDuplicateEmail)
	}
}

func TestStore_GetByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{
		Email: "lookup@example.com",
		Name:  "Lookup User",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Lookup is case-insensitive
	got, err := store.GetByEmail(ctx, "LOOKUP@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("GetByEmail() ID = %v, want %v", got.ID, created.ID)
	}

	_, err = store.GetByEmail(ctx, "missing@example.com")
	if !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("GetByEmail() missing error = %v, want ErrNoDocuments", err)
	}
}

func TestStore_UpdateRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{
		Email: "promote@example.com",
		Name:  "Promote Me",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := store.UpdateRole(ctx, created.ID, models.RoleAdmin); err != nil {
		t.Fatalf("UpdateRole() error = %v", err)
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Role != models.RoleAdmin {
		t.Errorf("Role = %q, want %q", got.Role, models.RoleAdmin)
	}

	if err := store.UpdateRole(ctx, created.ID, "bogus"); err == nil {
		t.Error("UpdateRole() with invalid role should return error")
	}

	if err := store.UpdateRole(ctx, primitive.NewObjectID(), models.RoleUser); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("UpdateRole() missing user error = %v, want ErrNoDocuments", err)
	}
}

func TestStore_UpdatePassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{
		Email: "reset@example.com",
		Name:  "Reset Me",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := store.UpdatePassword(ctx, created.ID, "new-hash"); err != nil {
		t.Fatalf("UpdatePassword() error = %v", err)
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.PasswordHash == nil || *got.PasswordHash != "new-hash" {
		t.Error("UpdatePassword() did not persist the new hash")
	}
}

func TestStore_TouchLastLogin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{
		Email: "login@example.com",
		Name:  "Login User",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	at := time.Now().Truncate(time.Millisecond)
	if err := store.TouchLastLogin(ctx, created.ID, at); err != nil {
		t.Fatalf("TouchLastLogin() error = %v", err)
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.LastLoginAt == nil {
		t.Fatal("TouchLastLogin() did not set LastLoginAt")
	}
	if !got.LastLoginAt.Truncate(time.Millisecond).Equal(at) {
		t.Errorf("LastLoginAt = %v, want %v", got.LastLoginAt, at)
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{
		Email: "gone@example.com",
		Name:  "Gone User",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	n, err := store.Delete(ctx, created.ID)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Delete() count = %d, want 1", n)
	}

	n, err = store.Delete(ctx, created.ID)
	if err != nil {
		t.Fatalf("Delete() second call error = %v", err)
	}
	if n != 0 {
		t.Errorf("Delete() second call count = %d, want 0", n)
	}
}

func TestSearchFilter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	seed := []models.User{
		{Email: "alice@example.com", Name: "Alice Adams", Role: models.RoleAdmin},
		{Email: "bob@example.com", Name: "Bob Brown"},
		{Email: "carol@example.com", Name: "Carol Clark"},
	}
	for _, u := range seed {
		if _, err := store.Create(ctx, u); err != nil {
			t.Fatalf("Create(%s) error = %v", u.Email, err)
		}
	}

	cases := []struct {
		name   string
		search string
		role   string
		want   int64
	}{
		{"no filter", "", "", 3},
		{"search by email fragment", "alice", "", 1},
		{"search by name fragment", "clark", "", 1},
		{"role admin", "", "admin", 1},
		{"role user", "", "user", 2},
		{"search and role", "bob", "admin", 0},
		{"metacharacters match literally", "ali.e", "", 0},
		{"dollar sign is inert", "$", "", 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := store.Count(ctx, SearchFilter(tc.search, tc.role))
			if err != nil {
				t.Fatalf("Count() error = %v", err)
			}
			if got != tc.want {
				t.Errorf("Count() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestStore_CountAdmins(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for i, role := range []string{models.RoleAdmin, models.RoleUser, models.RoleAdmin} {
		_, err := store.Create(ctx, models.User{
			Email: string(rune('a'+i)) + "@example.com",
			Name:  "User",
			Role:  role,
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	got, err := store.CountAdmins(ctx)
	if err != nil {
		t.Fatalf("CountAdmins() error = %v", err)
	}
	if got != 2 {
		t.Errorf("CountAdmins() = %d, want 2", got)
	}

	// Sanity check that Find sees the same data.
	admins, err := store.Find(ctx, bson.M{"role": models.RoleAdmin})
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(admins) != 2 {
		t.Errorf("Find() returned %d admins, want 2", len(admins))
	}
}
