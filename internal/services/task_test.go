package services

import (
	"testing"

	"github.com/taskfleet/taskfleet/internal/domain"
	"github.com/taskfleet/taskfleet/internal/models"
)

func TestCreateTask(t *testing.T) {
	env := newTestEnv(t)

	alice := env.createUser(t, "alice", domain.RoleUser)
	bob := env.createUser(t, "bob", domain.RoleUser)
	project := env.createProject(t, "Alpha", alice, bob)

	task, err := env.tasks.Create(project.ID, CreateTaskInput{Title: "ship it", Description: "v1"}, principalOf(alice))

	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if task.Status != domain.TaskToDo {
		t.Fatalf("expected TO_DO, got %s", task.Status)
	}

	if task.OwnerID == nil || *task.OwnerID != alice.ID {
		t.Fatalf("creator should own the task, got %v", task.OwnerID)
	}

	// Every member hears the announcement, the owner additionally gets
	// the assignment notice.
	if got := env.countNotifications(t, bob.ID); got != 1 {
		t.Fatalf("expected 1 notification for bob, got %d", got)
	}

	if got := env.countNotifications(t, alice.ID); got != 2 {
		t.Fatalf("expected 2 notifications for alice, got %d", got)
	}

	if _, err := env.tasks.Create(project.ID, CreateTaskInput{Title: "ship it"}, principalOf(bob)); !domain.IsBadRequest(err) {
		t.Fatalf("expected BadRequest for duplicate title, got %v", err)
	}

	if _, err := env.tasks.Create(999, CreateTaskInput{Title: "x"}, principalOf(alice)); !domain.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestCreateTaskTitleUniquePerProject(t *testing.T) {
	env := newTestEnv(t)

	alice := env.createUser(t, "alice", domain.RoleUser)
	alpha := env.createProject(t, "Alpha", alice)
	beta := env.createProject(t, "Beta", alice)

	if _, err := env.tasks.Create(alpha.ID, CreateTaskInput{Title: "ship it"}, principalOf(alice)); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	// The same title is fine in a different project.
	if _, err := env.tasks.Create(beta.ID, CreateTaskInput{Title: "ship it"}, principalOf(alice)); err != nil {
		t.Fatalf("Create in second project error: %v", err)
	}
}

func TestCreateTaskRejectsNonMember(t *testing.T) {
	env := newTestEnv(t)

	alice := env.createUser(t, "alice", domain.RoleUser)
	carol := env.createUser(t, "carol", domain.RoleUser)
	project := env.createProject(t, "Alpha", alice)

	if _, err := env.tasks.Create(project.ID, CreateTaskInput{Title: "x"}, principalOf(carol)); !domain.IsForbidden(err) {
		t.Fatalf("expected Forbidden, got %v", err)
	}
}

func TestUpdateTaskReassignsOwner(t *testing.T) {
	env := newTestEnv(t)

	alice := env.createUser(t, "alice", domain.RoleUser)
	bob := env.createUser(t, "bob", domain.RoleUser)
	carol := env.createUser(t, "carol", domain.RoleUser)
	project := env.createProject(t, "Alpha", alice, bob)

	task, err := env.tasks.Create(project.ID, CreateTaskInput{Title: "ship it"}, principalOf(alice))

	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	// The new owner must belong to the project.
	if _, err := env.tasks.Update(task.ID, UpdateTaskInput{OwnerID: &carol.ID}, principalOf(alice)); !domain.IsBadRequest(err) {
		t.Fatalf("expected BadRequest for outside owner, got %v", err)
	}

	unknown := uint(999)

	if _, err := env.tasks.Update(task.ID, UpdateTaskInput{OwnerID: &unknown}, principalOf(alice)); !domain.IsNotFound(err) {
		t.Fatalf("expected NotFound for unknown owner, got %v", err)
	}

	updated, err := env.tasks.Update(task.ID, UpdateTaskInput{OwnerID: &bob.ID}, principalOf(alice))

	if err != nil {
		t.Fatalf("Update error: %v", err)
	}

	if updated.OwnerID == nil || *updated.OwnerID != bob.ID {
		t.Fatalf("expected bob as owner, got %v", updated.OwnerID)
	}

	var notice models.Notification

	err = env.db.Where("user_id = ? AND text = ?", bob.ID, "You were reassigned to task 'ship it'.").
		First(&notice).Error

	if err != nil {
		t.Fatalf("expected reassignment notice: %v", err)
	}
}

func TestChangeTaskStatus(t *testing.T) {
	env := newTestEnv(t)

	alice := env.createUser(t, "alice", domain.RoleUser)
	project := env.createProject(t, "Alpha", alice)

	task, err := env.tasks.Create(project.ID, CreateTaskInput{Title: "ship it"}, principalOf(alice))

	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	updated, err := env.tasks.ChangeStatus(task.ID, domain.TaskInProgress, principalOf(alice))

	if err != nil {
		t.Fatalf("ChangeStatus error: %v", err)
	}

	if updated.Status != domain.TaskInProgress {
		t.Fatalf("expected IN_PROGRESS, got %s", updated.Status)
	}

	if _, err := env.tasks.ChangeStatus(task.ID, domain.TaskInProgress, principalOf(alice)); !domain.IsBadRequest(err) {
		t.Fatalf("expected BadRequest for same status, got %v", err)
	}
}

func TestListTasks(t *testing.T) {
	env := newTestEnv(t)

	alice := env.createUser(t, "alice", domain.RoleUser)
	bob := env.createUser(t, "bob", domain.RoleUser)
	carol := env.createUser(t, "carol", domain.RoleUser)
	project := env.createProject(t, "Alpha", alice, bob)

	if _, err := env.tasks.Create(project.ID, CreateTaskInput{Title: "one"}, principalOf(alice)); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if _, err := env.tasks.Create(project.ID, CreateTaskInput{Title: "two"}, principalOf(bob)); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	all, err := env.tasks.ListByProject(project.ID, principalOf(alice))

	if err != nil {
		t.Fatalf("ListByProject error: %v", err)
	}

	if len(all) != 2 || all[0].Title != "one" || all[1].Title != "two" {
		t.Fatalf("unexpected tasks: %+v", all)
	}

	if _, err := env.tasks.ListByProject(project.ID, principalOf(carol)); !domain.IsForbidden(err) {
		t.Fatalf("expected Forbidden for outsider, got %v", err)
	}

	mine, err := env.tasks.ListMine(principalOf(bob))

	if err != nil {
		t.Fatalf("ListMine error: %v", err)
	}

	if len(mine) != 1 || mine[0].Title != "two" {
		t.Fatalf("unexpected tasks for bob: %+v", mine)
	}
}

func TestDeleteTaskAnnouncesRemoval(t *testing.T) {
	env := newTestEnv(t)

	alice := env.createUser(t, "alice", domain.RoleUser)
	bob := env.createUser(t, "bob", domain.RoleUser)
	project := env.createProject(t, "Alpha", alice, bob)

	task, err := env.tasks.Create(project.ID, CreateTaskInput{Title: "ship it"}, principalOf(alice))

	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if err := env.tasks.Delete(task.ID, principalOf(alice)); err != nil {
		t.Fatalf("Delete error: %v", err)
	}

	if err := env.db.First(&models.Task{}, task.ID).Error; err == nil {
		t.Fatal("expected task row removed")
	}

	var notice models.Notification

	err = env.db.Where("user_id = ? AND text = ?", bob.ID, "Task 'ship it' was permanently removed from project Alpha").
		First(&notice).Error

	if err != nil {
		t.Fatalf("expected removal notice: %v", err)
	}

	// The title is free again within the project.
	if _, err := env.tasks.Create(project.ID, CreateTaskInput{Title: "ship it"}, principalOf(bob)); err != nil {
		t.Fatalf("re-using the deleted title error: %v", err)
	}
}
