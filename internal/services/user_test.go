package services

import (
	"testing"

	"github.com/taskfleet/taskfleet/internal/auth"
	"github.com/taskfleet/taskfleet/internal/domain"
	"github.com/taskfleet/taskfleet/internal/models"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.users.Register(RegisterInput{
		Name:     "alice",
		Email:    " Alice@Example.com ",
		Password: "Sup3r$ecret",
	})

	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	if user.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}

	if user.Role != domain.RoleUser {
		t.Fatalf("expected USER role, got %s", user.Role)
	}

	var stored models.User

	if err := env.db.First(&stored, user.ID).Error; err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}

	if stored.PasswordHash == "Sup3r$ecret" {
		t.Fatal("password must not be stored in clear")
	}

	_, err = env.users.Register(RegisterInput{
		Name:     "other",
		Email:    "ALICE@example.com",
		Password: "An0ther$ecret",
	})

	if !domain.IsBadRequest(err) {
		t.Fatalf("expected BadRequest for duplicate email, got %v", err)
	}
}

func TestRegisterPasswordPolicy(t *testing.T) {
	env := newTestEnv(t)

	rejected := []string{
		"Sh0r$t",       // too short
		"sup3r$ecret",  // no upper case
		"SUP3R$ECRET",  // no lower case
		"Super$ecret",  // no digit
		"Sup3rSecret0", // no special character
	}

	for _, password := range rejected {
		_, err := env.users.Register(RegisterInput{
			Name:     "alice",
			Email:    "alice@example.com",
			Password: password,
		})

		if !domain.IsBadRequest(err) {
			t.Fatalf("expected BadRequest for password %q, got %v", password, err)
		}
	}
}

func TestLogin(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	if err := auth.InitJWTSecret(); err != nil {
		t.Fatalf("failed to init jwt secret: %v", err)
	}

	env := newTestEnv(t)

	registered, err := env.users.Register(RegisterInput{
		Name:     "alice",
		Email:    "alice@example.com",
		Password: "Sup3r$ecret",
	})

	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	login, err := env.users.Login("Alice@Example.com", "Sup3r$ecret")

	if err != nil {
		t.Fatalf("Login error: %v", err)
	}

	if login.Token == "" {
		t.Fatal("expected a token")
	}

	if login.User.ID != registered.ID {
		t.Fatalf("expected user %d, got %d", registered.ID, login.User.ID)
	}

	if _, err := env.users.Login("alice@example.com", "wrong"); !domain.IsUnauthorized(err) {
		t.Fatalf("expected Unauthorized for wrong password, got %v", err)
	}

	// Unknown accounts answer the same way as wrong passwords.
	if _, err := env.users.Login("nobody@example.com", "Sup3r$ecret"); !domain.IsUnauthorized(err) {
		t.Fatalf("expected Unauthorized for unknown email, got %v", err)
	}
}

func TestGetUserByID(t *testing.T) {
	env := newTestEnv(t)

	alice := env.createUser(t, "alice", domain.RoleUser)
	admin := env.createUser(t, "root", domain.RoleAdmin)

	got, err := env.users.GetByID(alice.ID, principalOf(admin))

	if err != nil {
		t.Fatalf("admin GetByID error: %v", err)
	}

	if got.ID != alice.ID || got.Email != "alice@example.com" {
		t.Fatalf("unexpected user: %+v", got)
	}

	if _, err := env.users.GetByID(alice.ID, principalOf(alice)); !domain.IsForbidden(err) {
		t.Fatalf("expected Forbidden for non-admin, got %v", err)
	}

	if _, err := env.users.GetByID(999, principalOf(admin)); !domain.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestUpdateMeRequiresCurrentPassword(t *testing.T) {
	env := newTestEnv(t)

	registered, err := env.users.Register(RegisterInput{
		Name:     "alice",
		Email:    "alice@example.com",
		Password: "Sup3r$ecret",
	})

	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	var user models.User

	if err := env.db.First(&user, registered.ID).Error; err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}

	name := "alice cooper"

	_, err = env.users.UpdateMe(UpdateUserInput{Name: &name, CurrentPassword: "wrong"}, principalOf(user))

	if !domain.IsBadRequest(err) {
		t.Fatalf("expected BadRequest for wrong password, got %v", err)
	}

	updated, err := env.users.UpdateMe(UpdateUserInput{Name: &name, CurrentPassword: "Sup3r$ecret"}, principalOf(user))

	if err != nil {
		t.Fatalf("UpdateMe error: %v", err)
	}

	if updated.Name != "alice cooper" {
		t.Fatalf("expected renamed user, got %q", updated.Name)
	}
}

func TestChangePassword(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	if err := auth.InitJWTSecret(); err != nil {
		t.Fatalf("failed to init jwt secret: %v", err)
	}

	env := newTestEnv(t)

	registered, err := env.users.Register(RegisterInput{
		Name:     "alice",
		Email:    "alice@example.com",
		Password: "Sup3r$ecret",
	})

	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	var user models.User

	if err := env.db.First(&user, registered.ID).Error; err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}

	if _, err := env.users.ChangePassword("Sup3r$ecret", "Sup3r$ecret", principalOf(user)); !domain.IsBadRequest(err) {
		t.Fatalf("expected BadRequest for unchanged password, got %v", err)
	}

	if _, err := env.users.ChangePassword("Sup3r$ecret", "N3w$ecret!", principalOf(user)); err != nil {
		t.Fatalf("ChangePassword error: %v", err)
	}

	if _, err := env.users.Login("alice@example.com", "N3w$ecret!"); err != nil {
		t.Fatalf("login with new password error: %v", err)
	}

	if _, err := env.users.Login("alice@example.com", "Sup3r$ecret"); !domain.IsUnauthorized(err) {
		t.Fatalf("old password must stop working, got %v", err)
	}
}

func TestUpdateRoleAnnouncesToProjects(t *testing.T) {
	env := newTestEnv(t)

	alice := env.createUser(t, "alice", domain.RoleUser)
	bob := env.createUser(t, "bob", domain.RoleUser)
	admin := env.createUser(t, "root", domain.RoleAdmin)
	env.createProject(t, "Alpha", alice, bob)

	if _, err := env.users.UpdateRole(alice.ID, domain.RoleAdmin, principalOf(bob)); !domain.IsForbidden(err) {
		t.Fatalf("expected Forbidden for non-admin, got %v", err)
	}

	updated, err := env.users.UpdateRole(alice.ID, domain.RoleAdmin, principalOf(admin))

	if err != nil {
		t.Fatalf("UpdateRole error: %v", err)
	}

	if updated.Role != domain.RoleAdmin {
		t.Fatalf("expected ADMIN, got %s", updated.Role)
	}

	var notice models.Notification

	err = env.db.Where("user_id = ? AND text = ?", bob.ID, "alice is now ADMIN").
		First(&notice).Error

	if err != nil {
		t.Fatalf("expected role announcement for project member: %v", err)
	}

	if _, err := env.users.UpdateRole(alice.ID, domain.RoleAdmin, principalOf(admin)); !domain.IsBadRequest(err) {
		t.Fatalf("expected BadRequest for same role, got %v", err)
	}
}

func TestListUsersIsAdminOnly(t *testing.T) {
	env := newTestEnv(t)

	alice := env.createUser(t, "alice", domain.RoleUser)
	admin := env.createUser(t, "root", domain.RoleAdmin)

	if _, err := env.users.List(principalOf(alice)); !domain.IsForbidden(err) {
		t.Fatalf("expected Forbidden, got %v", err)
	}

	all, err := env.users.List(principalOf(admin))

	if err != nil {
		t.Fatalf("List error: %v", err)
	}

	if len(all) != 2 {
		t.Fatalf("expected 2 users, got %d", len(all))
	}

	admins, err := env.users.ListByRole("ADMIN", principalOf(admin))

	if err != nil {
		t.Fatalf("ListByRole error: %v", err)
	}

	if len(admins) != 1 || admins[0].ID != admin.ID {
		t.Fatalf("unexpected admins: %+v", admins)
	}

	if _, err := env.users.ListByRole("WIZARD", principalOf(admin)); !domain.IsBadRequest(err) {
		t.Fatalf("expected BadRequest for unknown role, got %v", err)
	}
}

func TestDeleteUserCascades(t *testing.T) {
	env := newTestEnv(t)

	alice := env.createUser(t, "alice", domain.RoleUser)
	bob := env.createUser(t, "bob", domain.RoleUser)
	admin := env.createUser(t, "root", domain.RoleAdmin)
	project := env.createProject(t, "Alpha", alice, bob)

	task, err := env.tasks.Create(project.ID, CreateTaskInput{Title: "ship it"}, principalOf(alice))

	if err != nil {
		t.Fatalf("task Create error: %v", err)
	}

	if _, err := env.messages.Send(project.ID, "hi", principalOf(alice)); err != nil {
		t.Fatalf("Send error: %v", err)
	}

	if err := env.users.Delete(alice.ID, principalOf(bob)); !domain.IsForbidden(err) {
		t.Fatalf("expected Forbidden for non-admin, got %v", err)
	}

	if err := env.users.Delete(alice.ID, principalOf(admin)); err != nil {
		t.Fatalf("Delete error: %v", err)
	}

	if err := env.db.First(&models.User{}, alice.ID).Error; err == nil {
		t.Fatal("expected user row removed")
	}

	if got := env.countNotifications(t, alice.ID); got != 0 {
		t.Fatalf("expected notifications removed, got %d", got)
	}

	var membershipCount, messageCount int64

	if err := env.db.Model(&models.ProjectMembership{}).Where("user_id = ?", alice.ID).Count(&membershipCount).Error; err != nil {
		t.Fatalf("failed to count memberships: %v", err)
	}

	if err := env.db.Model(&models.Message{}).Where("user_id = ?", alice.ID).Count(&messageCount).Error; err != nil {
		t.Fatalf("failed to count messages: %v", err)
	}

	if membershipCount != 0 || messageCount != 0 {
		t.Fatalf("expected memberships and messages removed, got %d, %d", membershipCount, messageCount)
	}

	// Authored tasks survive without an owner.
	var orphan models.Task

	if err := env.db.First(&orphan, task.ID).Error; err != nil {
		t.Fatalf("task should survive its owner: %v", err)
	}

	if orphan.OwnerID != nil {
		t.Fatalf("expected ownerless task, got owner %d", *orphan.OwnerID)
	}
}

func TestDeletedEmailCanRegisterAgain(t *testing.T) {
	env := newTestEnv(t)

	admin := env.createUser(t, "root", domain.RoleAdmin)

	registered, err := env.users.Register(RegisterInput{
		Name:     "alice",
		Email:    "alice@example.com",
		Password: "Sup3r$ecret",
	})

	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	if err := env.users.Delete(registered.ID, principalOf(admin)); err != nil {
		t.Fatalf("Delete error: %v", err)
	}

	fresh, err := env.users.Register(RegisterInput{
		Name:     "alice",
		Email:    "alice@example.com",
		Password: "An0ther$ecret",
	})

	if err != nil {
		t.Fatalf("re-registering the email error: %v", err)
	}

	if fresh.ID == registered.ID {
		t.Fatal("expected a fresh user row")
	}
}
