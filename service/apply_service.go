package service

import (
	"academy-api/common"
	"academy-api/logger"
	"academy-api/model"
	"academy-api/repository"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	duplicateWindow      = time.Hour
	defaultDuplicateHrs  = 24
	defaultDelayedDays   = 3
	applyCreatedContent  = "Application submitted"
	applyUpdatedFallback = "Application updated"

	applyAssignedContent   = "Assigned to %s"
	applyReassignedContent = "Reassigned from %s to %s"
)

var allowedSubjects = map[model.Division]map[model.SubjectCode]bool{
	model.DivisionMiddle: {
		model.SubjectKorean: true, model.SubjectEnglish: true, model.SubjectMath: true,
		model.SubjectScience: true, model.SubjectSocial: true,
	},
	model.DivisionHigh: {
		model.SubjectKorean: true, model.SubjectEnglish: true, model.SubjectMath: true,
	},
}

// ValidateSubjects checks subjects against the division and returns them
// without duplicates.
func ValidateSubjects(division model.Division, subjects []model.SubjectCode) ([]model.SubjectCode, error) {
	if division == model.DivisionSelfStudyRetake {
		if len(subjects) > 0 {
			return nil, common.ErrInvalidSubjectForDivision
		}
		return []model.SubjectCode{}, nil
	}
	if len(subjects) == 0 {
		return nil, common.ErrSubjectRequired
	}

	allowed := allowedSubjects[division]
	seen := make(map[model.SubjectCode]bool, len(subjects))
	out := make([]model.SubjectCode, 0, len(subjects))
	for _, code := range subjects {
		if !allowed[code] {
			if division == model.DivisionHigh {
				return nil, common.ErrInvalidSubjectForHigh
			}
			return nil, common.ErrInvalidSubjectForMiddle
		}
		if !seen[code] {
			seen[code] = true
			out = append(out, code)
		}
	}
	return out, nil
}

// ApplyService manages admission applications. Writes that touch several
// tables, file links included, run in one transaction.
type ApplyService struct {
	db         *sql.DB
	repo       repository.IApplyRepository
	memberRepo repository.IMemberRepository
	files      *FileService
}

func NewApplyService(db *sql.DB, repo repository.IApplyRepository, memberRepo repository.IMemberRepository, files *FileService) *ApplyService {
	return &ApplyService{db: db, repo: repo, memberRepo: memberRepo, files: files}
}

func applyFields(app *model.ApplyApplication, req model.ApplyApplicationRequest) {
	app.Division = req.Division
	app.StudentName = strings.TrimSpace(req.StudentName)
	app.Gender = req.Gender
	if app.Gender == "" {
		app.Gender = model.GenderUnknown
	}
	app.BirthDate = req.BirthDate
	app.StudentPhone = req.StudentPhone
	app.SchoolName = req.SchoolName
	app.SchoolGrade = req.SchoolGrade
	app.GradeLevel = req.GradeLevel
	app.EmailAddress = req.EmailAddress
	app.Address = req.Address
	app.Guardian1Name = req.Guardian1Name
	app.Guardian1Phone = req.Guardian1Phone
	app.Guardian1Relation = req.Guardian1Relation
	app.Guardian2Name = req.Guardian2Name
	app.Guardian2Phone = req.Guardian2Phone
	app.Guardian2Relation = req.Guardian2Relation
	app.DesiredUniversity = req.DesiredUniversity
	app.DesiredDepartment = req.DesiredDepartment
	app.ParentOpinion = req.ParentOpinion
}

// Create registers an application. actorID is nil for public submissions.
func (s *ApplyService) Create(ctx context.Context, req model.ApplyApplicationRequest, actorID *int64) (*model.ApplyApplication, error) {
	subjects, err := ValidateSubjects(req.Division, req.Subjects)
	if err != nil {
		return nil, err
	}

	log := logger.Log.WithFields(logrus.Fields{
		"division":     req.Division,
		"student_name": req.StudentName,
	})
	if dups, err := s.repo.FindByPhoneSince(ctx, req.StudentPhone, common.Now().Add(-duplicateWindow)); err == nil && len(dups) > 0 {
		log.WithField("duplicates", len(dups)).Warn("Application submitted again for the same phone within the last hour")
	}

	app := &model.ApplyApplication{Status: model.ApplyRegistered, CreatedBy: actorID, UpdatedBy: actorID}
	applyFields(app, req)
	app.Subjects = subjects

	err = s.files.InTx(ctx, s.db, func(tx *sql.Tx, files *FileLinker) error {
		if err := s.repo.Create(ctx, tx, app); err != nil {
			return err
		}
		if err := s.repo.ReplaceSubjects(ctx, tx, app.ID, subjects); err != nil {
			return err
		}
		content := applyCreatedContent
		if err := s.repo.AddLog(ctx, tx, &model.ApplyApplicationLog{
			ApplicationID: app.ID,
			LogType:       model.LogCreate,
			LogContent:    &content,
			CreatedBy:     actorID,
		}); err != nil {
			return err
		}
		return linkApplicationFiles(ctx, files, app.ID, req, actorID, false)
	})
	if err != nil {
		return nil, err
	}
	log.WithField("apply_id", app.ID).Info("Application registered")
	return app, nil
}

func linkApplicationFiles(ctx context.Context, files *FileLinker, id int64, req model.ApplyApplicationRequest, actorID *int64, replace bool) error {
	link := files.LinkFiles
	if replace {
		link = files.ReplaceLinks
	}
	if req.Transcripts != nil {
		if _, err := link(ctx, model.OwnerApplyApplications, id, model.FileRoleAttachment, req.Transcripts, actorID); err != nil {
			return err
		}
	}
	if req.Photo != nil {
		if _, err := link(ctx, model.OwnerApplyApplications, id, model.FileRoleCover, []model.FileReference{*req.Photo}, actorID); err != nil {
			return err
		}
	}
	return nil
}

func (s *ApplyService) find(ctx context.Context, id int64) (*model.ApplyApplication, error) {
	app, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrApplyNotFound
		}
		return nil, err
	}
	return app, nil
}

// Update rewrites an application and records an UPDATE log. Subjects are
// replaced only when given.
func (s *ApplyService) Update(ctx context.Context, id int64, req model.ApplyUpdateRequest, actorID int64) (*model.ApplyApplication, error) {
	app, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.Status == model.ApplyCompleted {
		return nil, common.ErrApplyAlreadyCompleted
	}

	subjects := app.Subjects
	if req.Subjects != nil {
		subjects = req.Subjects
	}
	if subjects, err = ValidateSubjects(req.Division, subjects); err != nil {
		return nil, err
	}

	applyFields(app, req.ApplyApplicationRequest)
	app.Subjects = subjects
	app.UpdatedBy = &actorID

	reason := strings.TrimSpace(req.UpdateReason)
	if reason == "" {
		reason = applyUpdatedFallback
	}
	err = s.files.InTx(ctx, s.db, func(tx *sql.Tx, files *FileLinker) error {
		if err := s.repo.Update(ctx, tx, app); err != nil {
			return err
		}
		if err := s.repo.ReplaceSubjects(ctx, tx, id, subjects); err != nil {
			return err
		}
		if err := s.repo.AddLog(ctx, tx, &model.ApplyApplicationLog{
			ApplicationID: id,
			LogType:       model.LogUpdate,
			LogContent:    &reason,
			CreatedBy:     &actorID,
		}); err != nil {
			return err
		}
		return linkApplicationFiles(ctx, files, id, req.ApplyApplicationRequest, &actorID, true)
	})
	if err != nil {
		return nil, err
	}
	logger.Log.WithFields(logrus.Fields{"apply_id": id, "actor_id": actorID}).Info("Application updated")
	return app, nil
}

func (s *ApplyService) Delete(ctx context.Context, id int64) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	err := s.files.InTx(ctx, s.db, func(tx *sql.Tx, files *FileLinker) error {
		if err := files.UnlinkAll(ctx, model.OwnerApplyApplications, id); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}
	logger.Log.WithField("apply_id", id).Info("Application deleted")
	return nil
}

// Get loads an application with its logs, files and neighbours.
func (s *ApplyService) Get(ctx context.Context, id int64) (*model.ApplyApplicationDetail, error) {
	app, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &model.ApplyApplicationDetail{ApplyApplication: *app}

	if detail.Logs, err = s.repo.ListLogs(ctx, id); err != nil {
		return nil, err
	}
	ptrs := make([]*int64, 0, len(detail.Logs))
	for i := range detail.Logs {
		ptrs = append(ptrs, detail.Logs[i].CreatedBy)
	}
	names := authorNames(ctx, s.memberRepo, collectIDs(ptrs...))
	for i := range detail.Logs {
		detail.Logs[i].CreatedByName = nameOf(names, detail.Logs[i].CreatedBy)
	}

	if detail.Transcripts, err = s.files.ListLinked(ctx, model.OwnerApplyApplications, id, model.FileRoleAttachment); err != nil {
		return nil, err
	}
	photos, err := s.files.ListLinked(ctx, model.OwnerApplyApplications, id, model.FileRoleCover)
	if err != nil {
		return nil, err
	}
	if len(photos) > 0 {
		detail.Photo = &photos[0]
	}
	if detail.Previous, err = s.repo.Previous(ctx, app); err != nil {
		return nil, err
	}
	if detail.Next, err = s.repo.Next(ctx, app); err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *ApplyService) List(ctx context.Context, search model.ApplySearch, page common.PageRequest) ([]model.ApplyApplication, int64, error) {
	if search.CreatedFrom != nil && search.CreatedTo != nil && search.CreatedFrom.After(*search.CreatedTo) {
		return nil, 0, common.ErrInvalidDateRange
	}
	return s.repo.Search(ctx, search, &page)
}

// AddLog records a consultation entry and applies its next status and next
// assignee in the same transaction.
func (s *ApplyService) AddLog(ctx context.Context, id int64, req model.ApplyLogRequest, actorID int64) (*model.ApplyApplicationLog, error) {
	if req.NextStatus != nil && !req.NextStatus.IsValid() {
		return nil, common.ErrInvalidApplicationStatus
	}
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	var assignee *model.Member
	if req.NextAssigneeID != nil {
		m, err := s.memberRepo.GetByID(ctx, *req.NextAssigneeID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, common.ErrMemberNotFound
			}
			return nil, err
		}
		assignee = m
	}

	content := req.LogContent
	entry := &model.ApplyApplicationLog{
		ApplicationID:  id,
		LogType:        req.LogType,
		LogContent:     &content,
		NextStatus:     req.NextStatus,
		NextAssigneeID: req.NextAssigneeID,
		CreatedBy:      &actorID,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.repo.AddLog(ctx, tx, entry); err != nil {
		return nil, err
	}
	if req.NextStatus != nil {
		if err := s.repo.UpdateStatus(ctx, tx, id, *req.NextStatus, &actorID); err != nil {
			return nil, err
		}
	}
	if assignee != nil {
		if err := s.repo.UpdateAssignee(ctx, tx, id, assignee.MemberName, &actorID); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("could not commit transaction: %w", err)
	}

	names := authorNames(ctx, s.memberRepo, []int64{actorID})
	entry.CreatedByName = nameOf(names, &actorID)
	return entry, nil
}

func (s *ApplyService) ChangeStatus(ctx context.Context, id int64, status model.ApplicationStatus, actorID int64) (*model.ApplyApplication, error) {
	if !status.IsValid() {
		return nil, common.ErrInvalidApplicationStatus
	}
	app, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, nil, id, status, &actorID); err != nil {
		return nil, err
	}
	logger.Log.WithFields(logrus.Fields{
		"apply_id": id,
		"from":     app.Status,
		"to":       status,
	}).Info("Application status changed")
	app.Status = status
	return app, nil
}

func (s *ApplyService) Assign(ctx context.Context, id int64, assigneeName string, actorID int64) (*model.ApplyApplication, error) {
	app, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(assigneeName)
	content := fmt.Sprintf(applyAssignedContent, name)
	if app.AssigneeName != nil && *app.AssigneeName != "" {
		content = fmt.Sprintf(applyReassignedContent, *app.AssigneeName, name)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.repo.UpdateAssignee(ctx, tx, id, name, &actorID); err != nil {
		return nil, err
	}
	if err := s.repo.AddLog(ctx, tx, &model.ApplyApplicationLog{
		ApplicationID: id,
		LogType:       model.LogAssign,
		LogContent:    &content,
		CreatedBy:     &actorID,
	}); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("could not commit transaction: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{"apply_id": id, "assignee": name}).Info("Application assigned")
	app.AssigneeName = &name
	return app, nil
}

// Duplicates lists applications for phone submitted within the last hours.
func (s *ApplyService) Duplicates(ctx context.Context, phone string, hours int) ([]model.ApplyApplication, error) {
	if hours <= 0 {
		hours = defaultDuplicateHrs
	}
	return s.repo.FindByPhoneSince(ctx, phone, common.Now().Add(-time.Duration(hours)*time.Hour))
}

// Delayed lists open applications older than days.
func (s *ApplyService) Delayed(ctx context.Context, days int) ([]model.ApplyApplication, error) {
	if days <= 0 {
		days = defaultDelayedDays
	}
	return s.repo.FindDelayed(ctx, common.Now().AddDate(0, 0, -days))
}

func (s *ApplyService) ByAssignee(ctx context.Context, assigneeName string) ([]model.ApplyApplication, error) {
	return s.repo.FindByAssignee(ctx, strings.TrimSpace(assigneeName))
}

func (s *ApplyService) Statistics(ctx context.Context) (*model.ApplyStatistics, error) {
	byStatus, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byDivision, err := s.repo.CountByDivision(ctx)
	if err != nil {
		return nil, err
	}
	stats := &model.ApplyStatistics{ByStatus: byStatus, ByDivision: byDivision}
	for _, n := range byStatus {
		stats.Total += n
	}
	return stats, nil
}

// Export renders the filtered list as an xlsx workbook.
func (s *ApplyService) Export(ctx context.Context, search model.ApplySearch) ([]byte, string, error) {
	apps, _, err := s.repo.Search(ctx, search, nil)
	if err != nil {
		return nil, "", err
	}
	data, err := WriteApplyWorkbook(apps)
	if err != nil {
		return nil, "", err
	}
	logger.Log.WithField("rows", len(apps)).Info("Application list exported")
	return data, ExportFileName(common.Now()), nil
}
