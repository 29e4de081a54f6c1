package service

import (
	"errors"
	"testing"

	"procserv_training_backend/internal/model"
	"procserv_training_backend/internal/util"
)

func TestCompleteModuleWithoutQuizCompletesCourse(t *testing.T) {
	env := newTestEnv(t)
	user := seedUser(t, env.db, "s@example.com")
	course := seedCourse(t, env.db, "initial", 70)
	module := seedModule(t, env.db, course.ID, 1)

	enrollment, err := env.enrollment.Enroll(user.ID, course.ID)
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}

	updated, err := env.progress.CompleteModule(user.ID, enrollment.ID, module.ID, 25)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if updated.Status != model.EnrollmentCompleted {
		t.Fatalf("status %q, want completed", updated.Status)
	}
	if updated.FinalScore == nil || *updated.FinalScore != 100 {
		t.Fatalf("quiz-free course must score 100, got %v", updated.FinalScore)
	}
	if !updated.CertificateIssued || updated.CompletionDate == nil {
		t.Fatalf("completion must issue the certificate and set the date: %+v", updated)
	}
}

func TestCompleteModuleIsIdempotentAndAccumulatesTime(t *testing.T) {
	env := newTestEnv(t)
	user := seedUser(t, env.db, "s@example.com")
	course := seedCourse(t, env.db, "initial", 70)
	module := seedModule(t, env.db, course.ID, 1)

	enrollment, err := env.enrollment.Enroll(user.ID, course.ID)
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if _, err := env.progress.CompleteModule(user.ID, enrollment.ID, module.ID, 10); err != nil {
		t.Fatalf("first complete: %v", err)
	}
	if _, err := env.progress.CompleteModule(user.ID, enrollment.ID, module.ID, 5); err != nil {
		t.Fatalf("second complete: %v", err)
	}

	var rows []model.ModuleProgress
	if err := env.db.Where("enrollment_id = ?", enrollment.ID).Find(&rows).Error; err != nil {
		t.Fatalf("load progress: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one progress row, got %d", len(rows))
	}
	if rows[0].TimeSpentMinutes != 15 {
		t.Fatalf("time spent %d, want 15", rows[0].TimeSpentMinutes)
	}
}

func TestCompleteModuleFromOtherCourse(t *testing.T) {
	env := newTestEnv(t)
	user := seedUser(t, env.db, "s@example.com")
	course := seedCourse(t, env.db, "initial", 70)
	other := seedCourse(t, env.db, "renewal", 70)
	foreign := seedModule(t, env.db, other.ID, 1)
	seedModule(t, env.db, course.ID, 1)

	enrollment, err := env.enrollment.Enroll(user.ID, course.ID)
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}

	_, err = env.progress.CompleteModule(user.ID, enrollment.ID, foreign.ID, 5)
	if !errors.Is(err, util.ErrModuleNotFound) {
		t.Fatalf("expected ErrModuleNotFound, got %v", err)
	}
}

func TestCompleteModuleForeignEnrollment(t *testing.T) {
	env := newTestEnv(t)
	owner := seedUser(t, env.db, "owner@example.com")
	intruder := seedUser(t, env.db, "intruder@example.com")
	course := seedCourse(t, env.db, "initial", 70)
	module := seedModule(t, env.db, course.ID, 1)

	enrollment, err := env.enrollment.Enroll(owner.ID, course.ID)
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}

	_, err = env.progress.CompleteModule(intruder.ID, enrollment.ID, module.ID, 5)
	if !errors.Is(err, util.ErrEnrollmentNotFound) {
		t.Fatalf("expected ErrEnrollmentNotFound, got %v", err)
	}
}

func TestSubmitQuizGrading(t *testing.T) {
	env := newTestEnv(t)
	user := seedUser(t, env.db, "s@example.com")
	course := seedCourse(t, env.db, "initial", 70)
	module := seedModule(t, env.db, course.ID, 1)
	seedQuestion(t, env.db, module.ID)
	seedQuestion(t, env.db, module.ID)
	seedQuestion(t, env.db, module.ID)
	seedQuestion(t, env.db, module.ID)

	enrollment, err := env.enrollment.Enroll(user.ID, course.ID)
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}

	result, _, err := env.progress.SubmitQuiz(user.ID, enrollment.ID, module.ID, []int{0, 0, 0, 1})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Score != 75 || result.Correct != 3 || result.Total != 4 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if !result.Passed {
		t.Fatalf("75 against passing score 70 must pass: %+v", result)
	}
}

func TestSubmitQuizShortAnswerList(t *testing.T) {
	env := newTestEnv(t)
	user := seedUser(t, env.db, "s@example.com")
	course := seedCourse(t, env.db, "initial", 70)
	module := seedModule(t, env.db, course.ID, 1)
	seedQuestion(t, env.db, module.ID)
	seedQuestion(t, env.db, module.ID)

	enrollment, err := env.enrollment.Enroll(user.ID, course.ID)
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}

	// Missing answers count as wrong rather than erroring.
	result, _, err := env.progress.SubmitQuiz(user.ID, enrollment.ID, module.ID, []int{0})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Score != 50 || result.Passed {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestSubmitQuizNoQuestions(t *testing.T) {
	env := newTestEnv(t)
	user := seedUser(t, env.db, "s@example.com")
	course := seedCourse(t, env.db, "initial", 70)
	module := seedModule(t, env.db, course.ID, 1)

	enrollment, err := env.enrollment.Enroll(user.ID, course.ID)
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}

	_, _, err = env.progress.SubmitQuiz(user.ID, enrollment.ID, module.ID, []int{0})
	if !errors.Is(err, util.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}

func TestCompletionRequiresPassingEveryQuiz(t *testing.T) {
	env := newTestEnv(t)
	user := seedUser(t, env.db, "s@example.com")
	course := seedCourse(t, env.db, "initial", 70)
	m1 := seedModule(t, env.db, course.ID, 1)
	m2 := seedModule(t, env.db, course.ID, 2)
	seedQuestion(t, env.db, m2.ID)

	enrollment, err := env.enrollment.Enroll(user.ID, course.ID)
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}

	if _, err := env.progress.CompleteModule(user.ID, enrollment.ID, m1.ID, 10); err != nil {
		t.Fatalf("complete m1: %v", err)
	}
	updated, err := env.progress.CompleteModule(user.ID, enrollment.ID, m2.ID, 10)
	if err != nil {
		t.Fatalf("complete m2: %v", err)
	}
	if updated.Status != model.EnrollmentInProgress {
		t.Fatalf("course must stay in_progress until the quiz is passed, got %q", updated.Status)
	}

	// Fail the quiz first; still not complete.
	if _, _, err := env.progress.SubmitQuiz(user.ID, enrollment.ID, m2.ID, []int{3}); err != nil {
		t.Fatalf("failing submit: %v", err)
	}
	var current model.Enrollment
	if err := env.db.First(&current, "id = ?", enrollment.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if current.Status != model.EnrollmentInProgress {
		t.Fatalf("failed quiz must not complete the course, got %q", current.Status)
	}

	// Pass it; course completes with the best passing score.
	_, updated, err = env.progress.SubmitQuiz(user.ID, enrollment.ID, m2.ID, []int{0})
	if err != nil {
		t.Fatalf("passing submit: %v", err)
	}
	if updated.Status != model.EnrollmentCompleted {
		t.Fatalf("status %q, want completed", updated.Status)
	}
	if updated.FinalScore == nil || *updated.FinalScore != 100 {
		t.Fatalf("final score %v, want 100", updated.FinalScore)
	}
}

func TestGetQuizHidesAnswerKey(t *testing.T) {
	env := newTestEnv(t)
	user := seedUser(t, env.db, "s@example.com")
	course := seedCourse(t, env.db, "initial", 70)
	module := seedModule(t, env.db, course.ID, 1)
	seedQuestion(t, env.db, module.ID)

	if _, err := env.enrollment.Enroll(user.ID, course.ID); err != nil {
		t.Fatalf("enroll: %v", err)
	}

	quiz, err := env.progress.GetQuiz(user.ID, module.ID)
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if len(quiz) != 1 {
		t.Fatalf("expected one question, got %d", len(quiz))
	}
	if quiz[0].Question == "" || len(quiz[0].Options) == 0 {
		t.Fatalf("question payload incomplete: %+v", quiz[0])
	}
}

func TestGetQuizRequiresEnrollment(t *testing.T) {
	env := newTestEnv(t)
	user := seedUser(t, env.db, "s@example.com")
	course := seedCourse(t, env.db, "initial", 70)
	module := seedModule(t, env.db, course.ID, 1)
	seedQuestion(t, env.db, module.ID)

	_, err := env.progress.GetQuiz(user.ID, module.ID)
	if !errors.Is(err, util.ErrEnrollmentNotFound) {
		t.Fatalf("expected ErrEnrollmentNotFound, got %v", err)
	}
}
