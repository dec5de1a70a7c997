package repository

import (
	"academy-api/common"
	"academy-api/db"
	"academy-api/logger"
	"academy-api/model"
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/sirupsen/logrus"
)

// IApplyRepository covers applications, their subjects and their logs.
// Methods taking a *sql.Tx run inside it when it is not nil.
type IApplyRepository interface {
	Create(ctx context.Context, tx *sql.Tx, app *model.ApplyApplication) error
	Update(ctx context.Context, tx *sql.Tx, app *model.ApplyApplication) error
	UpdateStatus(ctx context.Context, tx *sql.Tx, id int64, status model.ApplicationStatus, updatedBy *int64) error
	UpdateAssignee(ctx context.Context, tx *sql.Tx, id int64, assigneeName string, updatedBy *int64) error
	ReplaceSubjects(ctx context.Context, tx *sql.Tx, id int64, subjects []model.SubjectCode) error
	AddLog(ctx context.Context, tx *sql.Tx, log *model.ApplyApplicationLog) error
	GetByID(ctx context.Context, id int64) (*model.ApplyApplication, error)
	Delete(ctx context.Context, tx *sql.Tx, id int64) error
	Search(ctx context.Context, search model.ApplySearch, page *common.PageRequest) ([]model.ApplyApplication, int64, error)
	ListSubjects(ctx context.Context, ids []int64) (map[int64][]model.SubjectCode, error)
	ListLogs(ctx context.Context, id int64) ([]model.ApplyApplicationLog, error)
	FindByPhoneSince(ctx context.Context, phone string, since time.Time) ([]model.ApplyApplication, error)
	FindDelayed(ctx context.Context, before time.Time) ([]model.ApplyApplication, error)
	FindByAssignee(ctx context.Context, assigneeName string) ([]model.ApplyApplication, error)
	CountByStatus(ctx context.Context) (map[model.ApplicationStatus]int64, error)
	CountByDivision(ctx context.Context) (map[model.Division]int64, error)
	Previous(ctx context.Context, app *model.ApplyApplication) (*model.ApplyNav, error)
	Next(ctx context.Context, app *model.ApplyApplication) (*model.ApplyNav, error)
}

type ApplyRepository struct {
	baseRepository
}

func NewApplyRepository(conn *sql.DB, dialect db.Dialect) *ApplyRepository {
	return &ApplyRepository{baseRepository: newBase(conn, dialect)}
}

var applyColumns = []string{
	"id", "status", "division", "student_name", "gender", "birth_date", "student_phone",
	"school_name", "school_grade", "grade_level", "email_address", "address",
	"guardian1_name", "guardian1_phone", "guardian1_relation",
	"guardian2_name", "guardian2_phone", "guardian2_relation",
	"desired_university", "desired_department", "parent_opinion", "assignee_name",
	"created_by", "updated_by", "created_at", "updated_at",
}

func scanApplication(row rowScanner) (*model.ApplyApplication, error) {
	var (
		a                                              model.ApplyApplication
		status, division, gender                       string
		birthDate, schoolName, schoolGrade, gradeLevel sql.NullString
		email, address                                 sql.NullString
		g2Name, g2Phone, g2Relation                    sql.NullString
		university, department, opinion, assignee      sql.NullString
		createdBy, updatedBy                           sql.NullInt64
	)
	if err := row.Scan(&a.ID, &status, &division, &a.StudentName, &gender, &birthDate, &a.StudentPhone,
		&schoolName, &schoolGrade, &gradeLevel, &email, &address,
		&a.Guardian1Name, &a.Guardian1Phone, &a.Guardian1Relation,
		&g2Name, &g2Phone, &g2Relation,
		&university, &department, &opinion, &assignee,
		&createdBy, &updatedBy, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Status = model.ApplicationStatus(status)
	a.Division = model.Division(division)
	a.Gender = model.Gender(gender)
	a.BirthDate = stringPtr(birthDate)
	a.SchoolName = stringPtr(schoolName)
	a.SchoolGrade = stringPtr(schoolGrade)
	a.GradeLevel = stringPtr(gradeLevel)
	a.EmailAddress = stringPtr(email)
	a.Address = stringPtr(address)
	a.Guardian2Name = stringPtr(g2Name)
	a.Guardian2Phone = stringPtr(g2Phone)
	a.Guardian2Relation = stringPtr(g2Relation)
	a.DesiredUniversity = stringPtr(university)
	a.DesiredDepartment = stringPtr(department)
	a.ParentOpinion = stringPtr(opinion)
	a.AssigneeName = stringPtr(assignee)
	a.CreatedBy = int64Ptr(createdBy)
	a.UpdatedBy = int64Ptr(updatedBy)
	a.Subjects = []model.SubjectCode{}
	return &a, nil
}

func (r *ApplyRepository) list(ctx context.Context, q sq.SelectBuilder) ([]model.ApplyApplication, error) {
	rows, err := r.query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := make([]model.ApplyApplication, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *a)
	}
	return apps, rows.Err()
}

func (r *ApplyRepository) Create(ctx context.Context, tx *sql.Tx, app *model.ApplyApplication) error {
	log := logger.Log.WithFields(logrus.Fields{
		"division":     app.Division,
		"student_name": app.StudentName,
	})
	log.Info("Executing query to create an apply application")

	now := common.Now()
	app.CreatedAt, app.UpdatedAt = now, now
	id, err := r.insert(ctx, r.runner(tx), r.sb().Insert("apply_applications").
		Columns(applyColumns[1:]...).
		Values(string(app.Status), string(app.Division), app.StudentName, string(app.Gender), nullable(app.BirthDate), app.StudentPhone,
			nullable(app.SchoolName), nullable(app.SchoolGrade), nullable(app.GradeLevel), nullable(app.EmailAddress), nullable(app.Address),
			app.Guardian1Name, app.Guardian1Phone, app.Guardian1Relation,
			nullable(app.Guardian2Name), nullable(app.Guardian2Phone), nullable(app.Guardian2Relation),
			nullable(app.DesiredUniversity), nullable(app.DesiredDepartment), nullable(app.ParentOpinion), nullable(app.AssigneeName),
			nullable(app.CreatedBy), nullable(app.UpdatedBy), now, now))
	if err != nil {
		log.WithError(err).Error("Failed to execute create apply application query")
		return err
	}
	app.ID = id
	return nil
}

func (r *ApplyRepository) Update(ctx context.Context, tx *sql.Tx, app *model.ApplyApplication) error {
	log := logger.Log.WithField("application_id", app.ID)
	log.Info("Executing query to update an apply application")

	app.UpdatedAt = common.Now()
	_, err := r.exec(ctx, r.runner(tx), r.sb().Update("apply_applications").
		Set("division", string(app.Division)).
		Set("student_name", app.StudentName).
		Set("gender", string(app.Gender)).
		Set("birth_date", nullable(app.BirthDate)).
		Set("student_phone", app.StudentPhone).
		Set("school_name", nullable(app.SchoolName)).
		Set("school_grade", nullable(app.SchoolGrade)).
		Set("grade_level", nullable(app.GradeLevel)).
		Set("email_address", nullable(app.EmailAddress)).
		Set("address", nullable(app.Address)).
		Set("guardian1_name", app.Guardian1Name).
		Set("guardian1_phone", app.Guardian1Phone).
		Set("guardian1_relation", app.Guardian1Relation).
		Set("guardian2_name", nullable(app.Guardian2Name)).
		Set("guardian2_phone", nullable(app.Guardian2Phone)).
		Set("guardian2_relation", nullable(app.Guardian2Relation)).
		Set("desired_university", nullable(app.DesiredUniversity)).
		Set("desired_department", nullable(app.DesiredDepartment)).
		Set("parent_opinion", nullable(app.ParentOpinion)).
		Set("updated_by", nullable(app.UpdatedBy)).
		Set("updated_at", app.UpdatedAt).
		Where(sq.Eq{"id": app.ID}))
	if err != nil {
		log.WithError(err).Error("Failed to execute update apply application query")
	}
	return err
}

func (r *ApplyRepository) UpdateStatus(ctx context.Context, tx *sql.Tx, id int64, status model.ApplicationStatus, updatedBy *int64) error {
	_, err := r.exec(ctx, r.runner(tx), r.sb().Update("apply_applications").
		Set("status", string(status)).
		Set("updated_by", nullable(updatedBy)).
		Set("updated_at", common.Now()).
		Where(sq.Eq{"id": id}))
	if err != nil {
		logger.Log.WithError(err).WithField("application_id", id).Error("Failed to update application status")
	}
	return err
}

func (r *ApplyRepository) UpdateAssignee(ctx context.Context, tx *sql.Tx, id int64, assigneeName string, updatedBy *int64) error {
	_, err := r.exec(ctx, r.runner(tx), r.sb().Update("apply_applications").
		Set("assignee_name", assigneeName).
		Set("updated_by", nullable(updatedBy)).
		Set("updated_at", common.Now()).
		Where(sq.Eq{"id": id}))
	if err != nil {
		logger.Log.WithError(err).WithField("application_id", id).Error("Failed to update application assignee")
	}
	return err
}

// ReplaceSubjects deletes the current subjects and inserts the given ones.
func (r *ApplyRepository) ReplaceSubjects(ctx context.Context, tx *sql.Tx, id int64, subjects []model.SubjectCode) error {
	q := r.runner(tx)
	if _, err := r.exec(ctx, q, r.sb().Delete("apply_application_subjects").Where(sq.Eq{"application_id": id})); err != nil {
		return err
	}
	if len(subjects) == 0 {
		return nil
	}

	ib := r.sb().Insert("apply_application_subjects").Columns("application_id", "subject_code")
	for _, s := range subjects {
		ib = ib.Values(id, string(s))
	}
	_, err := r.exec(ctx, q, ib)
	if err != nil {
		logger.Log.WithError(err).WithField("application_id", id).Error("Failed to insert application subjects")
	}
	return err
}

func (r *ApplyRepository) AddLog(ctx context.Context, tx *sql.Tx, entry *model.ApplyApplicationLog) error {
	entry.CreatedAt = common.Now()
	var nextStatus interface{}
	if entry.NextStatus != nil {
		nextStatus = string(*entry.NextStatus)
	}
	id, err := r.insert(ctx, r.runner(tx), r.sb().Insert("apply_application_logs").
		Columns("application_id", "log_type", "log_content", "next_status", "next_assignee_id", "created_by", "created_at").
		Values(entry.ApplicationID, string(entry.LogType), nullable(entry.LogContent), nextStatus,
			nullable(entry.NextAssigneeID), nullable(entry.CreatedBy), entry.CreatedAt))
	if err != nil {
		logger.Log.WithError(err).WithField("application_id", entry.ApplicationID).Error("Failed to insert application log")
		return err
	}
	entry.ID = id
	return nil
}

func (r *ApplyRepository) GetByID(ctx context.Context, id int64) (*model.ApplyApplication, error) {
	log := logger.Log.WithField("application_id", id)
	log.Info("Executing query to get apply application by id")

	row, err := r.queryRow(ctx, r.sb().Select(applyColumns...).From("apply_applications").Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	a, err := scanApplication(row)
	if err != nil {
		if err != sql.ErrNoRows {
			log.WithError(err).Error("Failed to execute get apply application query")
		}
		return nil, err
	}

	subjects, err := r.ListSubjects(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	if s, ok := subjects[id]; ok {
		a.Subjects = s
	}
	return a, nil
}

func (r *ApplyRepository) Delete(ctx context.Context, tx *sql.Tx, id int64) error {
	log := logger.Log.WithField("application_id", id)
	log.Info("Executing query to delete an apply application")

	q := r.runner(tx)
	// children first, foreign keys are not enforced on every driver
	for _, table := range []string{"apply_application_logs", "apply_application_subjects"} {
		if _, err := r.exec(ctx, q, r.sb().Delete(table).Where(sq.Eq{"application_id": id})); err != nil {
			log.WithError(err).Error("Failed to delete application children")
			return err
		}
	}
	if _, err := r.exec(ctx, q, r.sb().Delete("apply_applications").Where(sq.Eq{"id": id})); err != nil {
		log.WithError(err).Error("Failed to execute delete apply application query")
		return err
	}
	return nil
}

func (r *ApplyRepository) searchWhere(s model.ApplySearch) sq.And {
	where := sq.And{}
	if s.Keyword != "" {
		where = append(where, sq.Or{
			r.like("student_name", s.Keyword),
			r.like("student_phone", s.Keyword),
			r.like("guardian1_name", s.Keyword),
			r.like("guardian1_phone", s.Keyword),
		})
	}
	if s.Status != nil {
		where = append(where, sq.Eq{"status": string(*s.Status)})
	}
	if s.Division != nil {
		where = append(where, sq.Eq{"division": string(*s.Division)})
	}
	if s.AssigneeName != "" {
		where = append(where, sq.Eq{"assignee_name": s.AssigneeName})
	}
	if s.CreatedFrom != nil {
		where = append(where, sq.GtOrEq{"created_at": *s.CreatedFrom})
	}
	if s.CreatedTo != nil {
		where = append(where, sq.LtOrEq{"created_at": *s.CreatedTo})
	}
	return where
}

// Search lists applications. A nil page returns every match.
func (r *ApplyRepository) Search(ctx context.Context, search model.ApplySearch, page *common.PageRequest) ([]model.ApplyApplication, int64, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"keyword":  search.Keyword,
		"status":   search.Status,
		"division": search.Division,
	})
	log.Info("Executing query to search apply applications")

	where := r.searchWhere(search)

	total, err := r.count(ctx, r.sb().Select("COUNT(*)").From("apply_applications").Where(where))
	if err != nil {
		log.WithError(err).Error("Failed to count apply applications")
		return nil, 0, err
	}

	order := []string{"created_at DESC", "id DESC"}
	if search.SortAsc {
		order = []string{"created_at ASC", "id ASC"}
	}
	q := r.sb().Select(applyColumns...).From("apply_applications").Where(where).OrderBy(order...)
	if page != nil {
		q = q.Limit(page.Limit()).Offset(page.Offset())
	}

	apps, err := r.list(ctx, q)
	if err != nil {
		log.WithError(err).Error("Failed to execute search apply applications query")
		return nil, 0, err
	}
	if err := r.attachSubjects(ctx, apps); err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

func (r *ApplyRepository) attachSubjects(ctx context.Context, apps []model.ApplyApplication) error {
	ids := make([]int64, len(apps))
	for i := range apps {
		ids[i] = apps[i].ID
	}
	subjects, err := r.ListSubjects(ctx, ids)
	if err != nil {
		return err
	}
	for i := range apps {
		if s, ok := subjects[apps[i].ID]; ok {
			apps[i].Subjects = s
		}
	}
	return nil
}

func (r *ApplyRepository) ListSubjects(ctx context.Context, ids []int64) (map[int64][]model.SubjectCode, error) {
	subjects := make(map[int64][]model.SubjectCode, len(ids))
	if len(ids) == 0 {
		return subjects, nil
	}

	rows, err := r.query(ctx, r.sb().Select("application_id", "subject_code").
		From("apply_application_subjects").
		Where(sq.Eq{"application_id": ids}).
		OrderBy("id ASC"))
	if err != nil {
		logger.Log.WithError(err).Error("Failed to load application subjects")
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id   int64
			code string
		)
		if err := rows.Scan(&id, &code); err != nil {
			return nil, err
		}
		subjects[id] = append(subjects[id], model.SubjectCode(code))
	}
	return subjects, rows.Err()
}

// ListLogs returns the logs of an application, newest first.
func (r *ApplyRepository) ListLogs(ctx context.Context, id int64) ([]model.ApplyApplicationLog, error) {
	rows, err := r.query(ctx, r.sb().
		Select("id", "application_id", "log_type", "log_content", "next_status", "next_assignee_id", "created_by", "created_at").
		From("apply_application_logs").
		Where(sq.Eq{"application_id": id}).
		OrderBy("created_at DESC", "id DESC"))
	if err != nil {
		logger.Log.WithError(err).WithField("application_id", id).Error("Failed to load application logs")
		return nil, err
	}
	defer rows.Close()

	logs := make([]model.ApplyApplicationLog, 0)
	for rows.Next() {
		var (
			l                     model.ApplyApplicationLog
			logType               string
			content, nextStatus   sql.NullString
			nextAssignee, creator sql.NullInt64
		)
		if err := rows.Scan(&l.ID, &l.ApplicationID, &logType, &content, &nextStatus, &nextAssignee, &creator, &l.CreatedAt); err != nil {
			return nil, err
		}
		l.LogType = model.ApplyLogType(logType)
		l.LogContent = stringPtr(content)
		if nextStatus.Valid {
			s := model.ApplicationStatus(nextStatus.String)
			l.NextStatus = &s
		}
		l.NextAssigneeID = int64Ptr(nextAssignee)
		l.CreatedBy = int64Ptr(creator)
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (r *ApplyRepository) FindByPhoneSince(ctx context.Context, phone string, since time.Time) ([]model.ApplyApplication, error) {
	return r.list(ctx, r.sb().Select(applyColumns...).From("apply_applications").
		Where(sq.Eq{"student_phone": phone}).
		Where(sq.GtOrEq{"created_at": since}).
		OrderBy("created_at DESC"))
}

// FindDelayed returns REGISTERED or REVIEW applications created before the
// cutoff, oldest first.
func (r *ApplyRepository) FindDelayed(ctx context.Context, before time.Time) ([]model.ApplyApplication, error) {
	apps, err := r.list(ctx, r.sb().Select(applyColumns...).From("apply_applications").
		Where(sq.Eq{"status": []string{string(model.ApplyRegistered), string(model.ApplyReview)}}).
		Where(sq.Lt{"created_at": before}).
		OrderBy("created_at ASC"))
	if err != nil {
		logger.Log.WithError(err).Error("Failed to find delayed applications")
	}
	return apps, err
}

func (r *ApplyRepository) FindByAssignee(ctx context.Context, assigneeName string) ([]model.ApplyApplication, error) {
	return r.list(ctx, r.sb().Select(applyColumns...).From("apply_applications").
		Where(sq.Eq{"assignee_name": assigneeName}).
		OrderBy("created_at DESC"))
}

func (r *ApplyRepository) groupCount(ctx context.Context, column string) (map[string]int64, error) {
	rows, err := r.query(ctx, r.sb().Select(column, "COUNT(*)").From("apply_applications").GroupBy(column))
	if err != nil {
		logger.Log.WithError(err).WithField("column", column).Error("Failed to count applications")
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int64{}
	for rows.Next() {
		var (
			key string
			n   int64
		)
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		counts[key] = n
	}
	return counts, rows.Err()
}

func (r *ApplyRepository) CountByStatus(ctx context.Context) (map[model.ApplicationStatus]int64, error) {
	raw, err := r.groupCount(ctx, "status")
	if err != nil {
		return nil, err
	}
	counts := make(map[model.ApplicationStatus]int64, len(raw))
	for k, v := range raw {
		counts[model.ApplicationStatus(k)] = v
	}
	return counts, nil
}

func (r *ApplyRepository) CountByDivision(ctx context.Context) (map[model.Division]int64, error) {
	raw, err := r.groupCount(ctx, "division")
	if err != nil {
		return nil, err
	}
	counts := make(map[model.Division]int64, len(raw))
	for k, v := range raw {
		counts[model.Division(k)] = v
	}
	return counts, nil
}

func (r *ApplyRepository) neighbour(ctx context.Context, where sq.Sqlizer, order ...string) (*model.ApplyNav, error) {
	row, err := r.queryRow(ctx, r.sb().Select("id", "student_name", "created_at").
		From("apply_applications").Where(where).OrderBy(order...).Limit(1))
	if err != nil {
		return nil, err
	}
	nav := &model.ApplyNav{}
	if err := row.Scan(&nav.ID, &nav.StudentName, &nav.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return nav, nil
}

// Previous returns the next newer application, or nil.
func (r *ApplyRepository) Previous(ctx context.Context, app *model.ApplyApplication) (*model.ApplyNav, error) {
	return r.neighbour(ctx, sq.Or{
		sq.Gt{"created_at": app.CreatedAt},
		sq.And{sq.Eq{"created_at": app.CreatedAt}, sq.Gt{"id": app.ID}},
	}, "created_at ASC", "id ASC")
}

// Next returns the next older application, or nil.
func (r *ApplyRepository) Next(ctx context.Context, app *model.ApplyApplication) (*model.ApplyNav, error) {
	return r.neighbour(ctx, sq.Or{
		sq.Lt{"created_at": app.CreatedAt},
		sq.And{sq.Eq{"created_at": app.CreatedAt}, sq.Lt{"id": app.ID}},
	}, "created_at DESC", "id DESC")
}
