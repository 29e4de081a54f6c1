package service

import (
	"encoding/json"
	"errors"
	"time"

	"procserv_training_backend/internal/model"
	"procserv_training_backend/internal/repository"
	"procserv_training_backend/internal/util"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProgressService struct {
	EnrollmentRepo *repository.EnrollmentRepository
	CourseRepo     *repository.CourseRepository
	ProgressRepo   *repository.ProgressRepository
}

func NewProgressService(
	enrollmentRepo *repository.EnrollmentRepository,
	courseRepo *repository.CourseRepository,
	progressRepo *repository.ProgressRepository,
) *ProgressService {
	return &ProgressService{
		EnrollmentRepo: enrollmentRepo,
		CourseRepo:     courseRepo,
		ProgressRepo:   progressRepo,
	}
}

// QuizResult is returned after grading a quiz submission.
type QuizResult struct {
	Score        int  `json:"score"`
	Passed       bool `json:"passed"`
	PassingScore int  `json:"passing_score"`
	Correct      int  `json:"correct"`
	Total        int  `json:"total"`
}

// QuizView is a question stripped of its answer key for students.
type QuizView struct {
	ID       string         `json:"id"`
	ModuleID string         `json:"module_id"`
	Question string         `json:"question"`
	Options  datatypes.JSON `json:"options"`
}

func (s *ProgressService) GetQuiz(userID, moduleID string) ([]QuizView, error) {
	module, err := s.CourseRepo.FindModuleByID(moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrModuleNotFound
		}
		return nil, err
	}
	if _, err := s.EnrollmentRepo.FindByUserAndCourse(userID, module.CourseTypeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrEnrollmentNotFound
		}
		return nil, err
	}

	questions, err := s.CourseRepo.FindQuestions(moduleID)
	if err != nil {
		return nil, err
	}

	views := make([]QuizView, 0, len(questions))
	for _, q := range questions {
		views = append(views, QuizView{
			ID:       q.ID,
			ModuleID: q.ModuleID,
			Question: q.Question,
			Options:  q.Options,
		})
	}
	return views, nil
}

// CompleteModule marks a module done for the caller's enrollment and
// re-evaluates course completion.
func (s *ProgressService) CompleteModule(userID, enrollmentID, moduleID string, timeSpentMinutes int) (*model.Enrollment, error) {
	enrollment, _, err := s.resolve(userID, enrollmentID, moduleID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	progress := &model.ModuleProgress{
		EnrollmentID:     enrollmentID,
		ModuleID:         moduleID,
		Completed:        true,
		CompletionDate:   &now,
		TimeSpentMinutes: timeSpentMinutes,
	}
	if err := s.ProgressRepo.UpsertModuleProgress(progress); err != nil {
		return nil, err
	}

	return s.evaluateCompletion(enrollment)
}

// SubmitQuiz grades the answers against the module's question set and the
// course passing score, stores the attempt, and re-evaluates completion.
func (s *ProgressService) SubmitQuiz(userID, enrollmentID, moduleID string, answers []int) (*QuizResult, *model.Enrollment, error) {
	enrollment, module, err := s.resolve(userID, enrollmentID, moduleID)
	if err != nil {
		return nil, nil, err
	}

	questions, err := s.CourseRepo.FindQuestions(moduleID)
	if err != nil {
		return nil, nil, err
	}
	if len(questions) == 0 {
		return nil, nil, util.ErrQuizNotFound
	}

	course, err := s.CourseRepo.FindByID(module.CourseTypeID)
	if err != nil {
		return nil, nil, err
	}

	correct := 0
	for i, q := range questions {
		if i < len(answers) && answers[i] == q.CorrectAnswer {
			correct++
		}
	}
	score := correct * 100 / len(questions)
	passed := score >= course.PassingScore

	encodedAnswers, err := json.Marshal(answers)
	if err != nil {
		return nil, nil, err
	}
	attempt := &model.QuizAttempt{
		EnrollmentID: enrollmentID,
		ModuleID:     moduleID,
		Score:        score,
		Answers:      datatypes.JSON(encodedAnswers),
		AttemptDate:  time.Now().UTC(),
		Passed:       passed,
	}
	if err := s.ProgressRepo.CreateAttempt(attempt); err != nil {
		return nil, nil, err
	}

	enrollment, err = s.evaluateCompletion(enrollment)
	if err != nil {
		return nil, nil, err
	}

	return &QuizResult{
		Score:        score,
		Passed:       passed,
		PassingScore: course.PassingScore,
		Correct:      correct,
		Total:        len(questions),
	}, enrollment, nil
}

func (s *ProgressService) resolve(userID, enrollmentID, moduleID string) (*model.Enrollment, *model.CourseModule, error) {
	enrollment, err := s.EnrollmentRepo.FindByIDAndUser(enrollmentID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, util.ErrEnrollmentNotFound
		}
		return nil, nil, err
	}

	module, err := s.CourseRepo.FindModuleByID(moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, util.ErrModuleNotFound
		}
		return nil, nil, err
	}
	if module.CourseTypeID != enrollment.CourseTypeID {
		return nil, nil, util.ErrModuleNotFound
	}

	return enrollment, module, nil
}

// evaluateCompletion promotes the enrollment to completed once every
// module is done and every quiz-bearing module has a passing attempt.
// Completion also flips certificate_issued, which is what makes the
// certificate endpoint reachable.
func (s *ProgressService) evaluateCompletion(enrollment *model.Enrollment) (*model.Enrollment, error) {
	if enrollment.Status == model.EnrollmentCompleted {
		return enrollment, nil
	}

	modules, err := s.CourseRepo.FindModules(enrollment.CourseTypeID)
	if err != nil {
		return nil, err
	}
	if len(modules) == 0 {
		return enrollment, nil
	}

	completed, err := s.ProgressRepo.CountCompleted(enrollment.ID)
	if err != nil {
		return nil, err
	}
	if completed < int64(len(modules)) {
		return enrollment, nil
	}

	moduleIDs := make([]string, 0, len(modules))
	for _, m := range modules {
		moduleIDs = append(moduleIDs, m.ID)
	}
	questionCounts, err := s.CourseRepo.CountQuestionsByModule(moduleIDs)
	if err != nil {
		return nil, err
	}
	bestScores, err := s.ProgressRepo.BestPassingScores(enrollment.ID)
	if err != nil {
		return nil, err
	}

	scoreSum, quizModules := 0, 0
	for _, m := range modules {
		if questionCounts[m.ID] == 0 {
			continue
		}
		best, ok := bestScores[m.ID]
		if !ok {
			return enrollment, nil
		}
		scoreSum += best
		quizModules++
	}

	finalScore := 100
	if quizModules > 0 {
		finalScore = scoreSum / quizModules
	}

	now := time.Now().UTC()
	enrollment.Status = model.EnrollmentCompleted
	enrollment.CompletionDate = &now
	enrollment.FinalScore = &finalScore
	enrollment.CertificateIssued = true
	if err := s.EnrollmentRepo.Update(enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}
